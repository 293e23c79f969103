// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

// Package sharepoint translates file operations into Microsoft Graph calls
// against a SharePoint site's default document library.
package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/spacemonkeygo/monkit/v3"

	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/azauth"
	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/errdata"
)

var mon = monkit.Package()

// DefaultTimeout bounds a single Graph request unless configured otherwise.
const DefaultTimeout = 30 * time.Second

// TokenSource produces bearer tokens for Graph requests. *azauth.Resolver
// implements it.
type TokenSource interface {
	Token(ctx context.Context) (azauth.Token, error)
}

// Client performs file operations against a SharePoint site through
// Microsoft Graph.
type Client struct {
	config Config
	tokens TokenSource
	client *http.Client
	base   string

	// mu guards the lazily resolved site and drive IDs.
	mu      sync.Mutex
	siteID  string
	driveID string
}

// New creates a new Client for the configured site.
func New(config Config, tokens TokenSource) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	base := config.GraphBaseURL
	if base == "" {
		base = DefaultGraphBaseURL
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		config: config,
		tokens: tokens,
		client: &http.Client{Timeout: timeout},
		base:   strings.TrimSuffix(base, "/"),
	}, nil
}

// List returns the files and folders directly under folderPath, following
// Graph's pagination links.
func (c *Client) List(ctx context.Context, folderPath string) (entries []FileEntry, err error) {
	defer mon.Task()(&ctx)(&err)

	folderPath = NormalizePath(folderPath)
	_, driveID, err := c.ids(ctx)
	if err != nil {
		return nil, err
	}

	next := c.itemURL(driveID, folderPath, "/children")
	for next != "" {
		var page struct {
			Value    []driveItem `json:"value"`
			NextLink string      `json:"@odata.nextLink"`
		}
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		for _, item := range page.Value {
			entries = append(entries, item.toEntry(folderPath))
		}
		next = page.NextLink
	}
	return entries, nil
}

// Read returns the raw bytes of the file at filePath.
func (c *Client) Read(ctx context.Context, filePath string) (_ []byte, err error) {
	defer mon.Task()(&ctx)(&err)

	filePath = NormalizePath(filePath)
	if filePath == "/" {
		return nil, errdata.WithStatus(ErrNotFound.New("not a file: /"), http.StatusNotFound)
	}
	_, driveID, err := c.ids(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodGet, c.itemURL(driveID, filePath, "/content"), nil, "")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrTransport.New("reading content: %v", err)
	}
	return data, nil
}

// Write uploads content to filePath. With overwrite disabled an existing
// target fails with already exists before any upload; the check-then-act
// window against the remote API is accepted.
func (c *Client) Write(ctx context.Context, filePath string, content []byte, overwrite bool) (_ FileEntry, err error) {
	defer mon.Task()(&ctx)(&err)

	filePath = NormalizePath(filePath)
	if !overwrite {
		exists, err := c.Exists(ctx, filePath)
		if err != nil {
			return FileEntry{}, err
		}
		if exists {
			return FileEntry{}, errdata.WithStatus(
				ErrAlreadyExists.New("%s already exists and overwrite is disabled", filePath),
				http.StatusConflict)
		}
	}

	_, driveID, err := c.ids(ctx)
	if err != nil {
		return FileEntry{}, err
	}

	resp, err := c.do(ctx, http.MethodPut, c.itemURL(driveID, filePath, "/content"), content, "application/octet-stream")
	if err != nil {
		return FileEntry{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return FileEntry{}, apiError(resp)
	}

	var item driveItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return FileEntry{}, ErrTransport.New("malformed upload response: %v", err)
	}
	parent, _ := splitPath(filePath)
	return item.toEntry(parent), nil
}

// Delete removes the file at filePath. Deleting an absent path fails with
// not found; repeated deletes of the same path fail the same way.
func (c *Client) Delete(ctx context.Context, filePath string) (err error) {
	defer mon.Task()(&ctx)(&err)

	filePath = NormalizePath(filePath)
	if filePath == "/" {
		return errdata.WithStatus(ErrPermissionDenied.New("refusing to delete drive root"), http.StatusForbidden)
	}
	_, driveID, err := c.ids(ctx)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodDelete, c.itemURL(driveID, filePath, ""), nil, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// CreateFolder creates the folder at folderPath under an existing parent.
// An existing folder fails with already exists unless FolderExistsOK is
// configured, in which case the existing folder is reported unchanged.
func (c *Client) CreateFolder(ctx context.Context, folderPath string) (_ FileEntry, err error) {
	defer mon.Task()(&ctx)(&err)

	folderPath = NormalizePath(folderPath)
	if folderPath == "/" {
		if c.config.FolderExistsOK {
			return FileEntry{Name: "/", Path: "/", IsFolder: true}, nil
		}
		return FileEntry{}, errdata.WithStatus(ErrAlreadyExists.New("/ already exists"), http.StatusConflict)
	}

	_, driveID, err := c.ids(ctx)
	if err != nil {
		return FileEntry{}, err
	}

	parent, name := splitPath(folderPath)
	body, err := json.Marshal(map[string]interface{}{
		"name":                              name,
		"folder":                            map[string]interface{}{},
		"@microsoft.graph.conflictBehavior": "fail",
	})
	if err != nil {
		return FileEntry{}, Error.Wrap(err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.itemURL(driveID, parent, "/children"), body, "application/json")
	if err != nil {
		return FileEntry{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
		var item driveItem
		if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
			return FileEntry{}, ErrTransport.New("malformed create response: %v", err)
		}
		return item.toEntry(parent), nil
	}

	apiErr := apiError(resp)
	if ErrAlreadyExists.Has(apiErr) && c.config.FolderExistsOK {
		var item driveItem
		if err := c.getJSON(ctx, c.itemURL(driveID, folderPath, ""), &item); err != nil {
			return FileEntry{}, err
		}
		return item.toEntry(parent), nil
	}
	return FileEntry{}, apiErr
}

// Exists reports whether a file or folder exists at filePath. Absence is
// the false result, not a failure.
func (c *Client) Exists(ctx context.Context, filePath string) (_ bool, err error) {
	defer mon.Task()(&ctx)(&err)

	filePath = NormalizePath(filePath)
	_, driveID, err := c.ids(ctx)
	if err != nil {
		return false, err
	}

	resp, err := c.do(ctx, http.MethodGet, c.itemURL(driveID, filePath, ""), nil, "")
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, apiError(resp)
	}
}

// TestConnection performs a minimal read-only site metadata fetch and
// reports the outcome as a structured status instead of an error.
func (c *Client) TestConnection(ctx context.Context) ConnectionStatus {
	defer mon.Task()(&ctx)(nil)

	site, err := c.fetchSite(ctx)
	if err != nil {
		return ConnectionStatus{OK: false, Detail: err.Error()}
	}
	return ConnectionStatus{OK: true, SiteTitle: site.DisplayName}
}

type siteInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

func (c *Client) fetchSite(ctx context.Context) (siteInfo, error) {
	hostname, sitePath, err := splitSiteURL(c.config.SiteURL)
	if err != nil {
		return siteInfo{}, err
	}
	var site siteInfo
	if err := c.getJSON(ctx, c.base+"/sites/"+hostname+":"+sitePath, &site); err != nil {
		return siteInfo{}, err
	}
	return site, nil
}

// ids resolves and caches the site and default drive IDs. The first drive
// is the site's default document library.
func (c *Client) ids(ctx context.Context) (siteID, driveID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.driveID != "" {
		return c.siteID, c.driveID, nil
	}

	site, err := c.fetchSite(ctx)
	if err != nil {
		return "", "", err
	}

	var drives struct {
		Value []struct {
			ID string `json:"id"`
		} `json:"value"`
	}
	if err := c.getJSON(ctx, c.base+"/sites/"+site.ID+"/drives", &drives); err != nil {
		return "", "", err
	}
	if len(drives.Value) == 0 {
		return "", "", errdata.WithStatus(ErrNotFound.New("site has no document libraries"), http.StatusNotFound)
	}

	c.siteID, c.driveID = site.ID, drives.Value[0].ID
	return c.siteID, c.driveID, nil
}

// getJSON issues a GET and decodes a 200 response into out.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, url, nil, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return ErrTransport.New("malformed response: %v", err)
	}
	return nil
}

// do issues one Graph request with a resolved bearer token, retrying
// throttling, server-side failures and transient network errors with
// exponential backoff until the backoff maxes out.
func (c *Client) do(ctx context.Context, method, url string, body []byte, contentType string) (_ *http.Response, err error) {
	defer mon.Task()(&ctx)(&err)

	delay := c.config.BackOff
	for {
		// Resolve the token on every attempt so that long retry
		// sequences do not outlive a cached token's expiry.
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, ErrTransport.Wrap(err)
		}
		req.Header.Set("Authorization", "Bearer "+token.Value)
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if !delay.Maxed() {
				if err := delay.Wait(ctx); err != nil {
					return nil, ErrTransport.Wrap(err)
				}
				continue
			}
			return nil, ErrTransport.Wrap(err)
		}

		if retryableStatus(resp.StatusCode) && !delay.Maxed() {
			_ = resp.Body.Close()
			if err := delay.Wait(ctx); err != nil {
				return nil, ErrTransport.Wrap(err)
			}
			continue
		}
		return resp, nil
	}
}

func retryableStatus(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

// NormalizePath returns a slash-rooted, cleaned path without trailing
// slashes. The empty path is the drive root.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func joinPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func splitPath(p string) (parent, name string) {
	i := strings.LastIndex(p, "/")
	parent, name = p[:i], p[i+1:]
	if parent == "" {
		parent = "/"
	}
	return parent, name
}

func escapePath(p string) string {
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// itemURL builds a drive-item URL for p, with suffix one of "",
// "/children" or "/content".
func (c *Client) itemURL(driveID, p, suffix string) string {
	root := c.base + "/drives/" + driveID + "/root"
	if p == "/" {
		return root + suffix
	}
	if suffix == "" {
		return root + ":/" + escapePath(p)
	}
	return root + ":/" + escapePath(p) + ":" + suffix
}
