// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

// Package mcpserver exposes SharePoint document library operations as MCP
// tools over streamable HTTP.
package mcpserver

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	mcpgo "github.com/mark3labs/mcp-go/server"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/azauth"
	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/httpserver"
	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/mcp-server/middleware"
	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/mcp-server/tools"
	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/sharepoint"
)

// Error is a class of mcp-server errors.
var Error = errs.Class("mcp-server")

// Name and Version identify the server during the MCP handshake.
const (
	Name    = "sharepoint-mcp-server"
	Version = "1.0.0"
)

// RPCPath is where the streamable HTTP MCP endpoint is mounted.
const RPCPath = "/mcp/jsonrpc"

// Peer represents an MCP server.
type Peer struct {
	log    *zap.Logger
	server *httpserver.Server
	config Config

	inShutdown int32
}

// New returns a new instance of an MCP server.
func New(log *zap.Logger, config Config) (*Peer, error) {
	resolver, err := azauth.NewResolver(config.Auth)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	spClient, err := sharepoint.New(config.SharePoint, resolver)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	mcpServer := mcpgo.NewMCPServer(Name, Version,
		mcpgo.WithToolCapabilities(false),
		mcpgo.WithRecovery(),
	)
	tools.New(spClient).Add(mcpServer)

	r := mux.NewRouter()
	r.Use(middleware.AddRequestID)

	mcpRPCRouter := r.PathPrefix(RPCPath).Subrouter()
	mcpRPCRouter.Use(middleware.NewLogRequests(log))
	mcpRPCRouter.Use(middleware.NewLogResponses(log))
	mcpRPCRouter.NewRoute().Handler(mcpgo.NewStreamableHTTPServer(mcpServer,
		mcpgo.WithEndpointPath(RPCPath),
	))

	var tlsConfig *httpserver.TLSConfig
	if !config.InsecureDisableTLS {
		tlsConfig = &httpserver.TLSConfig{
			CertFile: config.CertFile,
			KeyFile:  config.KeyFile,
		}
	}

	peer := Peer{
		log:    log,
		config: config,
	}

	r.HandleFunc("/health", peer.healthCheck)

	server, err := httpserver.New(log, r, httpserver.Config{
		Address:         config.Address,
		TLSConfig:       tlsConfig,
		IdleTimeout:     config.IdleTimeout,
		ShutdownTimeout: config.ShutdownTimeout,
	})
	if err != nil {
		return nil, err
	}
	peer.server = server

	return &peer, nil
}

// Run starts the MCP server.
func (s *Peer) Run(ctx context.Context) error {
	return s.server.Run(ctx)
}

// Close shuts down the server and all underlying resources.
func (s *Peer) Close() error {
	atomic.StoreInt32(&s.inShutdown, 1)
	if s.config.ShutdownDelay > 0 {
		s.log.Info("Waiting before server shutdown", zap.Duration("Delay", s.config.ShutdownDelay))
		time.Sleep(s.config.ShutdownDelay)
	}

	return s.server.Shutdown()
}

// Address returns the web address the peer is listening on.
func (s *Peer) Address() string {
	return s.server.Addr()
}

func (s *Peer) healthCheck(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&s.inShutdown) != 0 {
		http.Error(w, "down", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
