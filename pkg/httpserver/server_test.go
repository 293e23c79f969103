// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package httpserver

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestServeAndShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	server, err := New(zaptest.NewLogger(t), handler, Config{Address: "127.0.0.1:0"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Run(ctx) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get("http://" + server.Addr())
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, "ok", string(body))

	require.NoError(t, server.Shutdown())
	require.NoError(t, <-serveErr)
}

func TestNewRejectsBadConfig(t *testing.T) {
	log := zaptest.NewLogger(t)
	handler := http.NewServeMux()

	_, err := New(log, handler, Config{})
	require.Error(t, err)

	_, err = New(log, nil, Config{Address: "127.0.0.1:0"})
	require.Error(t, err)

	_, err = New(log, handler, Config{
		Address:   "127.0.0.1:0",
		TLSConfig: &TLSConfig{CertFile: "cert.pem"},
	})
	require.Error(t, err)

	// An empty keypair must not degrade a TLS listener to plain HTTP.
	_, err = New(log, handler, Config{
		Address:   "127.0.0.1:0",
		TLSConfig: &TLSConfig{},
	})
	require.Error(t, err)
}
