// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

// Package graphtest provides an in-memory fake of the Microsoft Graph
// drive endpoints the sharepoint client uses.
package graphtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"
)

// IDs the fake hands out.
const (
	SiteID    = "contoso.sharepoint.com,11111111-2222,33333333-4444"
	DriveID   = "b!fakedriveid"
	SiteTitle = "Engineering"
)

// Server is an in-memory fake Graph API holding a single site with a
// single document library.
type Server struct {
	mu      sync.Mutex
	files   map[string][]byte
	folders map[string]bool

	// DenyAll makes every drive-item operation fail with 403.
	DenyAll bool

	// FailFirst makes the next n requests fail with 503 before the fake
	// recovers, for exercising retry behavior.
	FailFirst int

	// LastAuthorization records the Authorization header of the most
	// recent request.
	LastAuthorization string
}

// New creates the fake with an empty root folder.
func New() *Server {
	return &Server{
		files:   map[string][]byte{},
		folders: map[string]bool{"/": true},
	}
}

// NewServer starts an httptest server around a fresh fake.
func NewServer() (*Server, *httptest.Server) {
	fake := New()
	return fake, httptest.NewServer(fake)
}

// PutFile seeds a file without going through the API.
func (s *Server) PutFile(path string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = content
}

// PutFolder seeds a folder without going through the API.
func (s *Server) PutFolder(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[path] = true
}

// FileContent returns the current content of a seeded or uploaded file.
func (s *Server) FileContent(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.files[path]
	return content, ok
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastAuthorization = r.Header.Get("Authorization")

	if s.FailFirst > 0 {
		s.FailFirst--
		writeError(w, http.StatusServiceUnavailable, "serviceNotAvailable", "try again later")
		return
	}

	p := r.URL.Path

	switch {
	case strings.HasPrefix(p, "/sites/"+SiteID+"/drives"):
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"value": []map[string]interface{}{{"id": DriveID, "name": "Documents"}},
		})
	case strings.HasPrefix(p, "/sites/"):
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":          SiteID,
			"displayName": SiteTitle,
		})
	case strings.HasPrefix(p, "/drives/"+DriveID+"/root"):
		s.serveItem(w, r, strings.TrimPrefix(p, "/drives/"+DriveID+"/root"))
	default:
		writeError(w, http.StatusNotFound, "itemNotFound", "unknown endpoint "+p)
	}
}

// serveItem handles drive-item addressing. rest is one of "", "/children",
// ":/path", ":/path:/children" or ":/path:/content".
func (s *Server) serveItem(w http.ResponseWriter, r *http.Request, rest string) {
	if s.DenyAll {
		writeError(w, http.StatusForbidden, "accessDenied", "caller does not have permission")
		return
	}

	itemPath, action := "/", ""
	switch {
	case rest == "":
	case rest == "/children":
		action = "children"
	case strings.HasPrefix(rest, ":/"):
		rest = strings.TrimPrefix(rest, ":/")
		for _, suffix := range []string{"children", "content"} {
			if strings.HasSuffix(rest, ":/"+suffix) {
				action = suffix
				rest = strings.TrimSuffix(rest, ":/"+suffix)
				break
			}
		}
		itemPath = "/" + strings.TrimSuffix(rest, ":")
	default:
		writeError(w, http.StatusBadRequest, "invalidRequest", "bad item path")
		return
	}

	switch action {
	case "children":
		switch r.Method {
		case http.MethodGet:
			s.listChildren(w, itemPath)
		case http.MethodPost:
			s.createChild(w, r, itemPath)
		default:
			writeError(w, http.StatusMethodNotAllowed, "invalidRequest", "unsupported method")
		}
	case "content":
		switch r.Method {
		case http.MethodGet:
			content, ok := s.files[itemPath]
			if !ok {
				writeError(w, http.StatusNotFound, "itemNotFound", "no file at "+itemPath)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(content)
		case http.MethodPut:
			s.uploadContent(w, r, itemPath)
		default:
			writeError(w, http.StatusMethodNotAllowed, "invalidRequest", "unsupported method")
		}
	default:
		switch r.Method {
		case http.MethodGet:
			s.statItem(w, itemPath)
		case http.MethodDelete:
			s.deleteItem(w, itemPath)
		default:
			writeError(w, http.StatusMethodNotAllowed, "invalidRequest", "unsupported method")
		}
	}
}

func (s *Server) listChildren(w http.ResponseWriter, folder string) {
	if !s.folders[folder] {
		writeError(w, http.StatusNotFound, "itemNotFound", "no folder at "+folder)
		return
	}

	var items []map[string]interface{}
	var names []string
	for f := range s.folders {
		if f != "/" && parentOf(f) == folder {
			names = append(names, f)
		}
	}
	for f := range s.files {
		if parentOf(f) == folder {
			names = append(names, f)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		items = append(items, s.itemJSON(name))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"value": items})
}

func (s *Server) createChild(w http.ResponseWriter, r *http.Request, parent string) {
	if !s.folders[parent] {
		writeError(w, http.StatusNotFound, "itemNotFound", "no folder at "+parent)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalidRequest", "missing name")
		return
	}

	target := parent + "/" + req.Name
	if parent == "/" {
		target = "/" + req.Name
	}
	if s.folders[target] || s.files[target] != nil {
		writeError(w, http.StatusConflict, "nameAlreadyExists", "an item with this name already exists")
		return
	}

	s.folders[target] = true
	writeJSON(w, http.StatusCreated, s.itemJSON(target))
}

func (s *Server) uploadContent(w http.ResponseWriter, r *http.Request, itemPath string) {
	if !s.folders[parentOf(itemPath)] {
		writeError(w, http.StatusNotFound, "itemNotFound", "no parent folder for "+itemPath)
		return
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalidRequest", "unreadable body")
		return
	}

	status := http.StatusCreated
	if _, ok := s.files[itemPath]; ok {
		status = http.StatusOK
	}
	s.files[itemPath] = content
	writeJSON(w, status, s.itemJSON(itemPath))
}

func (s *Server) statItem(w http.ResponseWriter, itemPath string) {
	if s.folders[itemPath] {
		writeJSON(w, http.StatusOK, s.itemJSON(itemPath))
		return
	}
	if _, ok := s.files[itemPath]; ok {
		writeJSON(w, http.StatusOK, s.itemJSON(itemPath))
		return
	}
	writeError(w, http.StatusNotFound, "itemNotFound", "no item at "+itemPath)
}

func (s *Server) deleteItem(w http.ResponseWriter, itemPath string) {
	if _, ok := s.files[itemPath]; ok {
		delete(s.files, itemPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if itemPath != "/" && s.folders[itemPath] {
		delete(s.folders, itemPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeError(w, http.StatusNotFound, "itemNotFound", "no item at "+itemPath)
}

func (s *Server) itemJSON(itemPath string) map[string]interface{} {
	name := itemPath[strings.LastIndex(itemPath, "/")+1:]
	if itemPath == "/" {
		name = "root"
	}
	item := map[string]interface{}{
		"id":                   "item!" + itemPath,
		"name":                 name,
		"lastModifiedDateTime": time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC).Format(time.RFC3339),
		"createdDateTime":      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}
	if content, ok := s.files[itemPath]; ok {
		item["size"] = len(content)
		item["file"] = map[string]interface{}{"mimeType": "application/octet-stream"}
	} else {
		item["folder"] = map[string]interface{}{"childCount": 0}
	}
	return item
}

func parentOf(p string) string {
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return "/"
	}
	return p[:i]
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{"code": code, "message": message},
	})
}
