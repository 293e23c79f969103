// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package mcpserver

import (
	"time"

	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/azauth"
	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/sharepoint"
)

// Config configures the MCP server.
type Config struct {
	// Address is the address to serve HTTP requests on.
	Address string

	// InsecureDisableTLS listens using insecure connections only.
	InsecureDisableTLS bool

	// CertFile and KeyFile are paths to a TLS keypair. Both are
	// required unless InsecureDisableTLS is set.
	CertFile string
	KeyFile  string

	// IdleTimeout is the maximum time to wait for the next request.
	IdleTimeout time.Duration

	// ShutdownDelay is how long shutdown returns 503s on the health
	// endpoint before draining connections.
	ShutdownDelay time.Duration

	// ShutdownTimeout is the maximum time to wait for in-flight
	// requests during shutdown.
	ShutdownTimeout time.Duration

	Auth       azauth.Config
	SharePoint sharepoint.Config
}
