// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

// Package httpserver wraps net/http with listener setup, optional TLS and
// graceful shutdown.
package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var mon = monkit.Package()

// DefaultShutdownTimeout is the default ShutdownTimeout (see Config).
const DefaultShutdownTimeout = 10 * time.Second

// Config holds the HTTP server configuration.
type Config struct {
	// Address is the address to bind the server to. It must be set.
	Address string

	// TLSConfig configures TLS for the listener. It is optional; when nil
	// the server speaks plain HTTP, which is the expected mode behind a
	// TLS-terminating platform front end.
	TLSConfig *TLSConfig

	// IdleTimeout is the maximum time to wait for the next request.
	IdleTimeout time.Duration

	// ShutdownTimeout controls how long to wait for in-flight requests
	// before Shutdown returns. Defaults to 10 seconds if unset. A negative
	// value closes all connections immediately.
	ShutdownTimeout time.Duration
}

// TLSConfig is a struct to handle the configured TLS options.
type TLSConfig struct {
	// CertFile is a path to a file containing a corresponding cert for KeyFile.
	CertFile string

	// KeyFile is a path to a file containing a corresponding key for CertFile.
	KeyFile string
}

// Server is the HTTP server.
type Server struct {
	log     *zap.Logger
	handler http.Handler

	listener        net.Listener
	server          *http.Server
	shutdownTimeout time.Duration
}

// New creates a new Server bound to config.Address.
func New(log *zap.Logger, handler http.Handler, config Config) (*Server, error) {
	switch {
	case config.Address == "":
		return nil, errs.New("server address is required")
	case handler == nil:
		return nil, errs.New("server handler is required")
	}

	tlsConfig, err := configureTLS(config.TLSConfig)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", config.Address)
	if err != nil {
		return nil, errs.New("unable to listen on %s: %v", config.Address, err)
	}

	server := &http.Server{
		Handler:     handler,
		TLSConfig:   tlsConfig,
		IdleTimeout: config.IdleTimeout,
		ErrorLog:    zap.NewStdLog(log),
	}

	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}

	return &Server{
		log:             log,
		handler:         handler,
		listener:        listener,
		server:          server,
		shutdownTimeout: config.ShutdownTimeout,
	}, nil
}

// Run runs the server until Shutdown is called or serving fails.
func (server *Server) Run(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	var group errgroup.Group

	group.Go(func() (err error) {
		if server.server.TLSConfig != nil {
			server.log.Info("HTTPS server started", zap.String("addr", server.Addr()))
			err = server.server.ServeTLS(server.listener, "", "")
		} else {
			server.log.Info("HTTP server started", zap.String("addr", server.Addr()))
			err = server.server.Serve(server.listener)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		server.log.Error("Server closed unexpectedly", zap.Error(err))
		return err
	})

	return group.Wait()
}

// Shutdown gracefully shuts the server down, with the configured timeout.
func (server *Server) Shutdown() error {
	server.log.Info("HTTP server shutting down")

	if server.shutdownTimeout < 0 {
		return server.server.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), server.shutdownTimeout)
	defer cancel()

	return server.server.Shutdown(ctx)
}

// Addr returns the address the server is listening on.
func (server *Server) Addr() string {
	return server.listener.Addr().String()
}

// BaseTLSConfig returns a tls.Config with some good default settings for security.
func BaseTLSConfig() *tls.Config {
	return &tls.Config{
		NextProtos:             []string{"h2", "http/1.1"},
		MinVersion:             tls.VersionTLS12,
		SessionTicketsDisabled: true,
	}
}

func configureTLS(config *TLSConfig) (*tls.Config, error) {
	if config == nil {
		return nil, nil
	}

	switch {
	case config.CertFile != "" && config.KeyFile != "":
	case config.CertFile == "" && config.KeyFile == "":
		// A TLSConfig with no keypair would silently fall back to
		// plain HTTP, so reject it.
		return nil, errs.New("cert file and key file are required when TLS is enabled")
	case config.CertFile != "" && config.KeyFile == "":
		return nil, errs.New("key file must be provided with cert file")
	default:
		return nil, errs.New("cert file must be provided with key file")
	}

	cert, err := tls.LoadX509KeyPair(config.CertFile, config.KeyFile)
	if err != nil {
		return nil, errs.New("unable to load server keypair: %v", err)
	}

	tlsConfig := BaseTLSConfig()
	tlsConfig.Certificates = []tls.Certificate{cert}
	return tlsConfig, nil
}
