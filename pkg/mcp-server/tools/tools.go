// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

// Package tools implements the MCP tools exposed by the SharePoint server.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/azauth"
	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/sharepoint"
)

var (
	mon = monkit.Package()

	errInvalidArgument = errs.Class("invalid argument")

	// maximum content size for a single write_file call.
	maxContentSize = 10 * 1024 * 1024 // 10 MiB
)

// Error kinds carried in failed tool results so callers can branch on the
// failure without parsing message text.
const (
	KindInvalidArguments = "invalid_arguments"
	KindAuthError        = "auth_error"
	KindNotFound         = "not_found"
	KindPermissionDenied = "permission_denied"
	KindAlreadyExists    = "already_exists"
	KindDecodeError      = "decode_error"
	KindTransportError   = "transport_error"
)

const (
	// ToolListFiles is the name of a tool for listing files in a folder.
	ToolListFiles = "list_files"

	// ToolReadFile is the name of a tool for reading a file's content.
	ToolReadFile = "read_file"

	// ToolWriteFile is the name of a tool for writing a file.
	ToolWriteFile = "write_file"

	// ToolDeleteFile is the name of a tool for deleting a file.
	ToolDeleteFile = "delete_file"

	// ToolCreateFolder is the name of a tool for creating a folder.
	ToolCreateFolder = "create_folder"

	// ToolFileExists is the name of a tool for checking whether a path exists.
	ToolFileExists = "file_exists"

	// ToolTestConnection is the name of a tool for probing site connectivity.
	ToolTestConnection = "test_connection"
)

// Tools is a collection of MCP server tools backed by a SharePoint document
// library.
type Tools struct {
	sharepoint *sharepoint.Client
}

// New creates a new Tools.
func New(client *sharepoint.Client) *Tools {
	return &Tools{sharepoint: client}
}

// Add adds the tools to an MCP server.
func (t *Tools) Add(mcpServer *server.MCPServer) {
	mcpServer.AddTool(mcp.NewTool(ToolListFiles,
		mcp.WithDescription("List files and folders in a SharePoint document library folder. Use folder_path='/' (the default) for the library root."),
		mcp.WithString("folder_path", mcp.Description("Folder path to list, e.g. '/reports/2025'"), mcp.DefaultString("/")),
	), t.ListFiles)

	mcpServer.AddTool(mcp.NewTool(ToolReadFile,
		mcp.WithDescription("Read the content of a file. Text files are returned as UTF-8 by default; request encoding='base64' for binary files."),
		mcp.WithString("file_path", mcp.Description("File path to read, e.g. '/reports/q1.txt'"), mcp.Required()),
		mcp.WithString("encoding", mcp.Description("Content encoding: 'utf-8' (default), 'ascii' or 'base64'"), mcp.DefaultString("utf-8")),
	), t.ReadFile)

	mcpServer.AddTool(mcp.NewTool(ToolWriteFile,
		mcp.WithDescription("Write content to a file. Fails if the file already exists unless overwrite=true. The parent folder must exist; use create_folder first if it doesn't."),
		mcp.WithString("file_path", mcp.Description("File path to write, e.g. '/reports/q1.txt'"), mcp.Required()),
		mcp.WithString("content", mcp.Description("Content to write"), mcp.Required()),
		mcp.WithBoolean("overwrite", mcp.Description("Replace the file if it already exists"), mcp.DefaultBool(false)),
		mcp.WithString("encoding", mcp.Description("Content encoding: 'utf-8' (default) or 'base64' for binary data"), mcp.DefaultString("utf-8")),
	), t.WriteFile)

	mcpServer.AddTool(mcp.NewTool(ToolDeleteFile,
		mcp.WithDescription("Delete a file or folder. Deleting a path that does not exist is an error."),
		mcp.WithString("file_path", mcp.Description("Path to delete"), mcp.Required()),
	), t.DeleteFile)

	mcpServer.AddTool(mcp.NewTool(ToolCreateFolder,
		mcp.WithDescription("Create a folder under an existing parent folder."),
		mcp.WithString("folder_path", mcp.Description("Folder path to create, e.g. '/reports/2025'"), mcp.Required()),
	), t.CreateFolder)

	mcpServer.AddTool(mcp.NewTool(ToolFileExists,
		mcp.WithDescription("Check whether a file or folder exists. Absence is a normal result, not an error."),
		mcp.WithString("file_path", mcp.Description("Path to check"), mcp.Required()),
	), t.FileExists)

	mcpServer.AddTool(mcp.NewTool(ToolTestConnection,
		mcp.WithDescription("Verify credentials and connectivity to the configured SharePoint site. Returns the site title on success."),
	), t.TestConnection)
}

// ListFiles implements the list_files MCP tool.
func (t *Tools) ListFiles(ctx context.Context, request mcp.CallToolRequest) (_ *mcp.CallToolResult, err error) {
	defer mon.Task()(&ctx)(&err)

	folderPath, err := stringArg(request, "folder_path", "/")
	if err != nil {
		return toolError(err)
	}
	folderPath = sharepoint.NormalizePath(folderPath)

	entries, err := t.sharepoint.List(ctx, folderPath)
	if err != nil {
		return toolError(err)
	}

	var summary string
	switch len(entries) {
	case 0:
		summary = fmt.Sprintf("Folder '%s' is empty.", folderPath)
	case 1:
		summary = fmt.Sprintf("Found 1 item in '%s': %s", folderPath, entries[0].Name)
	default:
		names := make([]string, len(entries))
		for i, entry := range entries {
			names[i] = entry.Name
		}
		summary = fmt.Sprintf("Found %d items in '%s': %s", len(entries), folderPath, strings.Join(names, ", "))
	}

	return toolResult(&ListFilesResponse{
		Summary: summary,
		Path:    folderPath,
		Entries: entries,
		Count:   len(entries),
	})
}

// ReadFile implements the read_file MCP tool.
func (t *Tools) ReadFile(ctx context.Context, request mcp.CallToolRequest) (_ *mcp.CallToolResult, err error) {
	defer mon.Task()(&ctx)(&err)

	filePath, err := requiredStringArg(request, "file_path")
	if err != nil {
		return toolError(err)
	}
	encoding, err := stringArg(request, "encoding", "utf-8")
	if err != nil {
		return toolError(err)
	}
	filePath = sharepoint.NormalizePath(filePath)

	data, err := t.sharepoint.Read(ctx, filePath)
	if err != nil {
		return toolError(err)
	}

	content, err := sharepoint.DecodeContent(data, encoding)
	if err != nil {
		return toolError(err)
	}

	return toolResult(&ReadFileResponse{
		Summary:  fmt.Sprintf("Read %s from '%s'", formatSize(int64(len(data))), filePath),
		Path:     filePath,
		Content:  content,
		Encoding: encoding,
		Size:     len(data),
	})
}

// WriteFile implements the write_file MCP tool.
func (t *Tools) WriteFile(ctx context.Context, request mcp.CallToolRequest) (_ *mcp.CallToolResult, err error) {
	defer mon.Task()(&ctx)(&err)

	filePath, err := requiredStringArg(request, "file_path")
	if err != nil {
		return toolError(err)
	}
	content, err := stringArg(request, "content", "")
	if err != nil {
		return toolError(err)
	}
	if _, ok := request.GetArguments()["content"]; !ok {
		return toolError(errInvalidArgument.New("content is required"))
	}
	overwrite, err := boolArg(request, "overwrite", false)
	if err != nil {
		return toolError(err)
	}
	encoding, err := stringArg(request, "encoding", "utf-8")
	if err != nil {
		return toolError(err)
	}
	if len(content) > maxContentSize {
		return toolError(errInvalidArgument.New("content exceeds the %s limit", formatSize(int64(maxContentSize))))
	}
	filePath = sharepoint.NormalizePath(filePath)

	data, err := sharepoint.EncodeContent(content, encoding)
	if err != nil {
		return toolError(err)
	}

	if _, err := t.sharepoint.Write(ctx, filePath, data, overwrite); err != nil {
		return toolError(err)
	}

	status := "created"
	if overwrite {
		status = "written"
	}
	return toolResult(&WriteFileResponse{
		Summary: fmt.Sprintf("Wrote %s to '%s'", formatSize(int64(len(data))), filePath),
		Path:    filePath,
		Size:    len(data),
		Status:  status,
	})
}

// DeleteFile implements the delete_file MCP tool.
func (t *Tools) DeleteFile(ctx context.Context, request mcp.CallToolRequest) (_ *mcp.CallToolResult, err error) {
	defer mon.Task()(&ctx)(&err)

	filePath, err := requiredStringArg(request, "file_path")
	if err != nil {
		return toolError(err)
	}
	filePath = sharepoint.NormalizePath(filePath)

	if err := t.sharepoint.Delete(ctx, filePath); err != nil {
		return toolError(err)
	}

	return toolResult(&DeleteFileResponse{
		Path:   filePath,
		Status: "deleted",
	})
}

// CreateFolder implements the create_folder MCP tool.
func (t *Tools) CreateFolder(ctx context.Context, request mcp.CallToolRequest) (_ *mcp.CallToolResult, err error) {
	defer mon.Task()(&ctx)(&err)

	folderPath, err := requiredStringArg(request, "folder_path")
	if err != nil {
		return toolError(err)
	}
	folderPath = sharepoint.NormalizePath(folderPath)

	if _, err := t.sharepoint.CreateFolder(ctx, folderPath); err != nil {
		return toolError(err)
	}

	return toolResult(&CreateFolderResponse{
		Summary: fmt.Sprintf("Created folder '%s'", folderPath),
		Path:    folderPath,
		Status:  "created",
	})
}

// FileExists implements the file_exists MCP tool.
func (t *Tools) FileExists(ctx context.Context, request mcp.CallToolRequest) (_ *mcp.CallToolResult, err error) {
	defer mon.Task()(&ctx)(&err)

	filePath, err := requiredStringArg(request, "file_path")
	if err != nil {
		return toolError(err)
	}
	filePath = sharepoint.NormalizePath(filePath)

	exists, err := t.sharepoint.Exists(ctx, filePath)
	if err != nil {
		return toolError(err)
	}

	return toolResult(&FileExistsResponse{
		Path:   filePath,
		Exists: exists,
	})
}

// TestConnection implements the test_connection MCP tool.
func (t *Tools) TestConnection(ctx context.Context, request mcp.CallToolRequest) (_ *mcp.CallToolResult, err error) {
	defer mon.Task()(&ctx)(&err)

	status := t.sharepoint.TestConnection(ctx)

	summary := "Connection failed: " + status.Detail
	if status.OK {
		summary = fmt.Sprintf("Connected to site '%s'", status.SiteTitle)
	}
	return toolResult(&TestConnectionResponse{
		Summary:   summary,
		OK:        status.OK,
		SiteTitle: status.SiteTitle,
		Detail:    status.Detail,
	})
}

// stringArg reads an optional string argument, rejecting values of the
// wrong type instead of silently substituting the default.
func stringArg(request mcp.CallToolRequest, key, def string) (string, error) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errInvalidArgument.New("%s must be a string", key)
	}
	return s, nil
}

func requiredStringArg(request mcp.CallToolRequest, key string) (string, error) {
	s, err := stringArg(request, key, "")
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", errInvalidArgument.New("%s is required", key)
	}
	return s, nil
}

func boolArg(request mcp.CallToolRequest, key string, def bool) (bool, error) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, errInvalidArgument.New("%s must be a boolean", key)
	}
	return b, nil
}

// errorKind maps a failure to the kind tag carried in the tool result.
func errorKind(err error) string {
	switch {
	case errInvalidArgument.Has(err):
		return KindInvalidArguments
	case azauth.ErrIncompleteCredentials.Has(err), azauth.ErrUnavailable.Has(err), azauth.Error.Has(err):
		return KindAuthError
	case sharepoint.ErrNotFound.Has(err):
		return KindNotFound
	case sharepoint.ErrPermissionDenied.Has(err):
		return KindPermissionDenied
	case sharepoint.ErrAlreadyExists.Has(err):
		return KindAlreadyExists
	case sharepoint.ErrDecode.Has(err):
		return KindDecodeError
	default:
		return KindTransportError
	}
}

// toolError renders err as a failed tool result with a structured payload.
// The Go error stays nil so the MCP layer reports the failure in-band.
func toolError(err error) (*mcp.CallToolResult, error) {
	payload, marshalErr := json.Marshal(&ToolError{
		Kind:    errorKind(err),
		Message: err.Error(),
	})
	if marshalErr != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultError(string(payload)), nil
}

func toolResult(resp interface{}) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(resp)
	if err != nil {
		return mcp.NewToolResultError("Failed to marshal result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

// formatSize formats a byte size into a human-readable string.
func formatSize(size int64) string {
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	} else if size < 1024*1024 {
		return fmt.Sprintf("%.1f KiB", float64(size)/1024)
	}
	return fmt.Sprintf("%.1f MiB", float64(size)/1024/1024)
}
