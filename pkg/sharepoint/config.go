// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package sharepoint

import (
	"net/url"
	"strings"
	"time"

	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/backoff"
)

// DefaultGraphBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

// Config describes configuration necessary to talk to a SharePoint site
// through Microsoft Graph.
type Config struct {
	// SiteURL is the SharePoint site URL, e.g.
	// https://contoso.sharepoint.com/sites/Engineering. Required.
	SiteURL string

	// GraphBaseURL overrides the Graph endpoint. Tests point this at a
	// fake server.
	GraphBaseURL string

	// Timeout bounds a single Graph request. Expiry surfaces as a
	// transport error.
	Timeout time.Duration

	// FolderExistsOK makes create_folder report success without
	// modification when the folder already exists. Default is to fail
	// with already exists.
	FolderExistsOK bool

	BackOff backoff.ExponentialBackoff
}

// Validate checks that the site URL is present and well formed.
func (c Config) Validate() error {
	if c.SiteURL == "" {
		return Error.New("site URL is required")
	}
	if _, _, err := splitSiteURL(c.SiteURL); err != nil {
		return err
	}
	return nil
}

// splitSiteURL splits a SharePoint site URL into the hostname and
// server-relative site path that Graph's site addressing expects.
func splitSiteURL(siteURL string) (hostname, sitePath string, err error) {
	u, err := url.Parse(siteURL)
	if err != nil {
		return "", "", Error.New("invalid site URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", Error.New("unexpected scheme in site URL: %q", u.Scheme)
	}
	if u.Host == "" {
		return "", "", Error.New("host missing in site URL")
	}
	sitePath = strings.TrimSuffix(u.EscapedPath(), "/")
	if !strings.HasPrefix(sitePath, "/sites/") && !strings.HasPrefix(sitePath, "/teams/") {
		return "", "", Error.New("site URL path must start with /sites/ or /teams/")
	}
	return u.Host, sitePath, nil
}
