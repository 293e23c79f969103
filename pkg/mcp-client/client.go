// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

// Package mcpclient provides a typed Go client for the SharePoint MCP
// server's tools.
package mcpclient

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/zeebo/errs"

	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/mcp-server/tools"
)

// Error is a class of mcp-client errors.
var Error = errs.Class("mcp-client")

// ToolError is a failed tool call. Kind carries the server's error
// taxonomy tag, e.g. "not_found" or "already_exists".
type ToolError struct {
	Kind    string
	Message string
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e.Kind == "" {
		return "tool call failed: " + e.Message
	}
	return "tool call failed (" + e.Kind + "): " + e.Message
}

// Client is used to interact with MCP tools.
type Client struct {
	c *client.Client
}

// New creates a new Client connected to serverURL, which should point at
// the server's /mcp/jsonrpc endpoint.
func New(serverURL string) (*Client, error) {
	transport, err := transport.NewStreamableHTTP(serverURL)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	c := client.NewClient(transport)

	_, err = c.Initialize(context.Background(), mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
		},
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}

	return &Client{c: c}, nil
}

// ListFilesRequest is a type of request to list files in a folder.
type ListFilesRequest struct {
	Path string `json:"folder_path,omitempty"`
}

// ListFiles calls the list_files tool to list a folder's contents.
func (c *Client) ListFiles(ctx context.Context, req ListFilesRequest) (*tools.ListFilesResponse, error) {
	message, err := c.callTool(ctx, tools.ToolListFiles, req)
	if err != nil {
		return nil, err
	}
	var resp tools.ListFilesResponse
	if err := json.Unmarshal([]byte(message), &resp); err != nil {
		return nil, Error.New("failed to unmarshal response: %w", err)
	}
	return &resp, nil
}

// ReadFileRequest is a type of request to read a file.
type ReadFileRequest struct {
	Path     string `json:"file_path"`
	Encoding string `json:"encoding,omitempty"`
}

// ReadFile calls the read_file tool to retrieve a file's content.
func (c *Client) ReadFile(ctx context.Context, req ReadFileRequest) (*tools.ReadFileResponse, error) {
	message, err := c.callTool(ctx, tools.ToolReadFile, req)
	if err != nil {
		return nil, err
	}
	var resp tools.ReadFileResponse
	if err := json.Unmarshal([]byte(message), &resp); err != nil {
		return nil, Error.New("failed to unmarshal response: %w", err)
	}
	return &resp, nil
}

// WriteFileRequest is a type of request to write a file.
type WriteFileRequest struct {
	Path      string `json:"file_path"`
	Content   string `json:"content"`
	Overwrite bool   `json:"overwrite"`
	Encoding  string `json:"encoding,omitempty"`
}

// WriteFile calls the write_file tool to upload a file.
func (c *Client) WriteFile(ctx context.Context, req WriteFileRequest) (*tools.WriteFileResponse, error) {
	message, err := c.callTool(ctx, tools.ToolWriteFile, req)
	if err != nil {
		return nil, err
	}
	var resp tools.WriteFileResponse
	if err := json.Unmarshal([]byte(message), &resp); err != nil {
		return nil, Error.New("failed to unmarshal response: %w", err)
	}
	return &resp, nil
}

// DeleteFileRequest is a type of request to delete a file or folder.
type DeleteFileRequest struct {
	Path string `json:"file_path"`
}

// DeleteFile calls the delete_file tool to delete a file or folder.
func (c *Client) DeleteFile(ctx context.Context, req DeleteFileRequest) (*tools.DeleteFileResponse, error) {
	message, err := c.callTool(ctx, tools.ToolDeleteFile, req)
	if err != nil {
		return nil, err
	}
	var resp tools.DeleteFileResponse
	if err := json.Unmarshal([]byte(message), &resp); err != nil {
		return nil, Error.New("failed to unmarshal response: %w", err)
	}
	return &resp, nil
}

// CreateFolderRequest is a type of request to create a folder.
type CreateFolderRequest struct {
	Path string `json:"folder_path"`
}

// CreateFolder calls the create_folder tool to create a folder.
func (c *Client) CreateFolder(ctx context.Context, req CreateFolderRequest) (*tools.CreateFolderResponse, error) {
	message, err := c.callTool(ctx, tools.ToolCreateFolder, req)
	if err != nil {
		return nil, err
	}
	var resp tools.CreateFolderResponse
	if err := json.Unmarshal([]byte(message), &resp); err != nil {
		return nil, Error.New("failed to unmarshal response: %w", err)
	}
	return &resp, nil
}

// FileExistsRequest is a type of request to check whether a path exists.
type FileExistsRequest struct {
	Path string `json:"file_path"`
}

// FileExists calls the file_exists tool to check whether a path exists.
func (c *Client) FileExists(ctx context.Context, req FileExistsRequest) (*tools.FileExistsResponse, error) {
	message, err := c.callTool(ctx, tools.ToolFileExists, req)
	if err != nil {
		return nil, err
	}
	var resp tools.FileExistsResponse
	if err := json.Unmarshal([]byte(message), &resp); err != nil {
		return nil, Error.New("failed to unmarshal response: %w", err)
	}
	return &resp, nil
}

// TestConnection calls the test_connection tool to check connectivity.
func (c *Client) TestConnection(ctx context.Context) (*tools.TestConnectionResponse, error) {
	message, err := c.callTool(ctx, tools.ToolTestConnection, struct{}{})
	if err != nil {
		return nil, err
	}
	var resp tools.TestConnectionResponse
	if err := json.Unmarshal([]byte(message), &resp); err != nil {
		return nil, Error.New("failed to unmarshal response: %w", err)
	}
	return &resp, nil
}

func (c *Client) callTool(ctx context.Context, name string, req any) (string, error) {
	args := make(map[string]any)
	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", Error.Wrap(err)
	}
	if err := json.Unmarshal(jsonData, &args); err != nil {
		return "", Error.Wrap(err)
	}

	r, err := c.c.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return "", Error.Wrap(err)
	}

	var message string
	if len(r.Content) > 0 {
		if text, ok := r.Content[0].(mcp.TextContent); ok {
			message = text.Text
		}
	}

	if r.IsError {
		var toolErr tools.ToolError
		if err := json.Unmarshal([]byte(message), &toolErr); err == nil && toolErr.Message != "" {
			return "", Error.Wrap(&ToolError{Kind: toolErr.Kind, Message: toolErr.Message})
		}
		return "", Error.Wrap(&ToolError{Message: message})
	}

	return message, nil
}
