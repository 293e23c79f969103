// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package sharepoint

// FileEntry describes a single file or folder, derived from a Graph
// driveItem.
type FileEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	IsFolder bool   `json:"isFolder"`
	Size     int64  `json:"size"`
	Modified string `json:"modified,omitempty"`
	Created  string `json:"created,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// ConnectionStatus reports the outcome of a connectivity probe. Ordinary
// connectivity failure is data, not an error.
type ConnectionStatus struct {
	OK        bool   `json:"ok"`
	SiteTitle string `json:"siteTitle,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// driveItem is the subset of Graph's driveItem resource this client reads.
type driveItem struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Size                 int64  `json:"size"`
	LastModifiedDateTime string `json:"lastModifiedDateTime"`
	CreatedDateTime      string `json:"createdDateTime"`
	Folder               *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder"`
	File *struct {
		MimeType string `json:"mimeType"`
	} `json:"file"`
}

func (item driveItem) toEntry(parentPath string) FileEntry {
	entry := FileEntry{
		Name:     item.Name,
		Path:     joinPath(parentPath, item.Name),
		IsFolder: item.Folder != nil,
		Size:     item.Size,
		Modified: item.LastModifiedDateTime,
		Created:  item.CreatedDateTime,
	}
	if item.File != nil {
		entry.MimeType = item.File.MimeType
	}
	return entry
}
