// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/azauth"
	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/sharepoint"
	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/sharepoint/graphtest"
)

type staticTokens struct{}

func (staticTokens) Token(ctx context.Context) (azauth.Token, error) {
	return azauth.Token{Value: "test-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func newTestTools(t *testing.T) (*Tools, *graphtest.Server) {
	fake, srv := graphtest.NewServer()
	t.Cleanup(srv.Close)

	client, err := sharepoint.New(sharepoint.Config{
		SiteURL:      "https://contoso.sharepoint.com/sites/Engineering",
		GraphBaseURL: srv.URL,
	}, staticTokens{})
	require.NoError(t, err)

	return New(client), fake
}

func callReq(args map[string]interface{}) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Arguments = args
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func requireToolError(t *testing.T, result *mcp.CallToolResult, kind string) ToolError {
	require.True(t, result.IsError)

	var toolErr ToolError
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &toolErr))
	require.Equal(t, kind, toolErr.Kind)
	require.NotEmpty(t, toolErr.Message)
	return toolErr
}

func decodeResult(t *testing.T, result *mcp.CallToolResult, out interface{}) {
	require.False(t, result.IsError)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), out))
}

func TestListFiles(t *testing.T) {
	tools, fake := newTestTools(t)
	ctx := context.Background()

	fake.PutFolder("/docs")
	fake.PutFile("/docs/a.txt", []byte("alpha"))
	fake.PutFile("/docs/b.txt", []byte("bravo"))

	result, err := tools.ListFiles(ctx, callReq(map[string]interface{}{"folder_path": "/docs"}))
	require.NoError(t, err)

	var resp ListFilesResponse
	decodeResult(t, result, &resp)
	require.Equal(t, "/docs", resp.Path)
	require.Equal(t, 2, resp.Count)
	require.Contains(t, resp.Summary, "2 items")

	// Default path is the library root.
	result, err = tools.ListFiles(ctx, callReq(nil))
	require.NoError(t, err)
	decodeResult(t, result, &resp)
	require.Equal(t, "/", resp.Path)
}

func TestListFilesMissingFolder(t *testing.T) {
	tools, _ := newTestTools(t)

	result, err := tools.ListFiles(context.Background(), callReq(map[string]interface{}{"folder_path": "/nope"}))
	require.NoError(t, err)
	requireToolError(t, result, KindNotFound)
}

func TestReadFile(t *testing.T) {
	tools, fake := newTestTools(t)
	ctx := context.Background()

	fake.PutFile("/note.txt", []byte("hello"))

	result, err := tools.ReadFile(ctx, callReq(map[string]interface{}{"file_path": "/note.txt"}))
	require.NoError(t, err)

	var resp ReadFileResponse
	decodeResult(t, result, &resp)
	require.Equal(t, "hello", resp.Content)
	require.Equal(t, "utf-8", resp.Encoding)
	require.Equal(t, 5, resp.Size)
}

func TestReadFileBinary(t *testing.T) {
	tools, fake := newTestTools(t)
	ctx := context.Background()

	binary := []byte{0xff, 0xfe, 0x00, 0x01}
	fake.PutFile("/blob.bin", binary)

	// Reading binary content as UTF-8 fails with a decode error.
	result, err := tools.ReadFile(ctx, callReq(map[string]interface{}{"file_path": "/blob.bin"}))
	require.NoError(t, err)
	requireToolError(t, result, KindDecodeError)

	result, err = tools.ReadFile(ctx, callReq(map[string]interface{}{
		"file_path": "/blob.bin",
		"encoding":  "base64",
	}))
	require.NoError(t, err)

	var resp ReadFileResponse
	decodeResult(t, result, &resp)
	require.Equal(t, base64.StdEncoding.EncodeToString(binary), resp.Content)
}

func TestReadFileArguments(t *testing.T) {
	tools, fake := newTestTools(t)
	ctx := context.Background()

	// Missing and wrong-typed arguments fail before any Graph request.
	result, err := tools.ReadFile(ctx, callReq(nil))
	require.NoError(t, err)
	requireToolError(t, result, KindInvalidArguments)

	result, err = tools.ReadFile(ctx, callReq(map[string]interface{}{"file_path": 42}))
	require.NoError(t, err)
	requireToolError(t, result, KindInvalidArguments)

	require.Empty(t, fake.LastAuthorization)
}

func TestArgumentNames(t *testing.T) {
	tools, fake := newTestTools(t)
	ctx := context.Background()

	fake.PutFile("/note.txt", []byte("hello"))

	// File tools take file_path, folder tools take folder_path.
	result, err := tools.ReadFile(ctx, callReq(map[string]interface{}{"file_path": "/note.txt"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = tools.FileExists(ctx, callReq(map[string]interface{}{"file_path": "/note.txt"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = tools.ListFiles(ctx, callReq(map[string]interface{}{"folder_path": "/"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = tools.CreateFolder(ctx, callReq(map[string]interface{}{"folder_path": "/named"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	// A bare path key is not an accepted argument name.
	result, err = tools.ReadFile(ctx, callReq(map[string]interface{}{"path": "/note.txt"}))
	require.NoError(t, err)
	requireToolError(t, result, KindInvalidArguments)
}

func TestWriteFile(t *testing.T) {
	tools, fake := newTestTools(t)
	ctx := context.Background()

	result, err := tools.WriteFile(ctx, callReq(map[string]interface{}{
		"file_path": "/report.txt",
		"content":   "first draft",
	}))
	require.NoError(t, err)

	var resp WriteFileResponse
	decodeResult(t, result, &resp)
	require.Equal(t, "/report.txt", resp.Path)
	require.Equal(t, "created", resp.Status)

	content, ok := fake.FileContent("/report.txt")
	require.True(t, ok)
	require.Equal(t, []byte("first draft"), content)
}

func TestWriteFileNoOverwrite(t *testing.T) {
	tools, fake := newTestTools(t)
	ctx := context.Background()

	fake.PutFile("/report.txt", []byte("original"))

	result, err := tools.WriteFile(ctx, callReq(map[string]interface{}{
		"file_path": "/report.txt",
		"content":   "replacement",
	}))
	require.NoError(t, err)
	requireToolError(t, result, KindAlreadyExists)

	content, _ := fake.FileContent("/report.txt")
	require.Equal(t, []byte("original"), content)

	result, err = tools.WriteFile(ctx, callReq(map[string]interface{}{
		"file_path": "/report.txt",
		"content":   "replacement",
		"overwrite": true,
	}))
	require.NoError(t, err)

	var resp WriteFileResponse
	decodeResult(t, result, &resp)
	require.Equal(t, "written", resp.Status)

	content, _ = fake.FileContent("/report.txt")
	require.Equal(t, []byte("replacement"), content)
}

func TestWriteFileArguments(t *testing.T) {
	tools, _ := newTestTools(t)
	ctx := context.Background()

	result, err := tools.WriteFile(ctx, callReq(map[string]interface{}{"file_path": "/x.txt"}))
	require.NoError(t, err)
	requireToolError(t, result, KindInvalidArguments)

	result, err = tools.WriteFile(ctx, callReq(map[string]interface{}{
		"file_path": "/x.txt",
		"content":   "data",
		"overwrite": "yes",
	}))
	require.NoError(t, err)
	requireToolError(t, result, KindInvalidArguments)
}

func TestWriteFileBase64(t *testing.T) {
	tools, fake := newTestTools(t)
	ctx := context.Background()

	binary := []byte{0xde, 0xad, 0xbe, 0xef}
	result, err := tools.WriteFile(ctx, callReq(map[string]interface{}{
		"file_path": "/blob.bin",
		"content":   base64.StdEncoding.EncodeToString(binary),
		"encoding":  "base64",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	content, ok := fake.FileContent("/blob.bin")
	require.True(t, ok)
	require.Equal(t, binary, content)
}

func TestDeleteFile(t *testing.T) {
	tools, fake := newTestTools(t)
	ctx := context.Background()

	fake.PutFile("/temp.txt", []byte("x"))

	result, err := tools.DeleteFile(ctx, callReq(map[string]interface{}{"file_path": "/temp.txt"}))
	require.NoError(t, err)

	var resp DeleteFileResponse
	decodeResult(t, result, &resp)
	require.Equal(t, "deleted", resp.Status)

	result, err = tools.DeleteFile(ctx, callReq(map[string]interface{}{"file_path": "/temp.txt"}))
	require.NoError(t, err)
	requireToolError(t, result, KindNotFound)
}

func TestCreateFolder(t *testing.T) {
	tools, _ := newTestTools(t)
	ctx := context.Background()

	result, err := tools.CreateFolder(ctx, callReq(map[string]interface{}{"folder_path": "/reports"}))
	require.NoError(t, err)

	var resp CreateFolderResponse
	decodeResult(t, result, &resp)
	require.Equal(t, "created", resp.Status)

	result, err = tools.CreateFolder(ctx, callReq(map[string]interface{}{"folder_path": "/reports"}))
	require.NoError(t, err)
	requireToolError(t, result, KindAlreadyExists)

	result, err = tools.CreateFolder(ctx, callReq(map[string]interface{}{"folder_path": "/missing/sub"}))
	require.NoError(t, err)
	requireToolError(t, result, KindNotFound)
}

func TestFileExists(t *testing.T) {
	tools, fake := newTestTools(t)
	ctx := context.Background()

	result, err := tools.FileExists(ctx, callReq(map[string]interface{}{"file_path": "/ghost.txt"}))
	require.NoError(t, err)

	var resp FileExistsResponse
	decodeResult(t, result, &resp)
	require.False(t, resp.Exists)

	fake.PutFile("/ghost.txt", []byte("boo"))

	result, err = tools.FileExists(ctx, callReq(map[string]interface{}{"file_path": "/ghost.txt"}))
	require.NoError(t, err)
	decodeResult(t, result, &resp)
	require.True(t, resp.Exists)
}

func TestToolTestConnection(t *testing.T) {
	tools, _ := newTestTools(t)

	result, err := tools.TestConnection(context.Background(), callReq(nil))
	require.NoError(t, err)

	var resp TestConnectionResponse
	decodeResult(t, result, &resp)
	require.True(t, resp.OK)
	require.Equal(t, graphtest.SiteTitle, resp.SiteTitle)
}

func TestPermissionDeniedKind(t *testing.T) {
	tools, fake := newTestTools(t)
	fake.DenyAll = true

	result, err := tools.ListFiles(context.Background(), callReq(nil))
	require.NoError(t, err)
	requireToolError(t, result, KindPermissionDenied)
}
