// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package tools

import "github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/sharepoint"

// ListFilesResponse is a response from the list_files tool.
type ListFilesResponse struct {
	Summary string                 `json:"summary"`
	Path    string                 `json:"path"`
	Entries []sharepoint.FileEntry `json:"entries"`
	Count   int                    `json:"count"`
}

// ReadFileResponse is a response from the read_file tool.
type ReadFileResponse struct {
	Summary  string `json:"summary"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	Size     int    `json:"size"`
}

// WriteFileResponse is a response from the write_file tool.
type WriteFileResponse struct {
	Summary string `json:"summary"`
	Path    string `json:"path"`
	Size    int    `json:"size"`
	Status  string `json:"status"`
}

// DeleteFileResponse is a response from the delete_file tool.
type DeleteFileResponse struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}

// CreateFolderResponse is a response from the create_folder tool.
type CreateFolderResponse struct {
	Summary string `json:"summary"`
	Path    string `json:"path"`
	Status  string `json:"status"`
}

// FileExistsResponse is a response from the file_exists tool.
type FileExistsResponse struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// TestConnectionResponse is a response from the test_connection tool.
type TestConnectionResponse struct {
	Summary   string `json:"summary"`
	OK        bool   `json:"ok"`
	SiteTitle string `json:"siteTitle,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// ToolError is the structured payload of a failed tool call.
type ToolError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
