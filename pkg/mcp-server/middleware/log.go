// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/webhelp.v1/whmon"
	"gopkg.in/webhelp.v1/whroute"

	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/httplog"
)

// LogRequests logs requests.
func LogRequests(log *zap.Logger, h http.Handler) http.Handler {
	return whroute.HandlerFunc(h, func(w http.ResponseWriter, r *http.Request) {
		ce := log.Check(zap.DebugLevel, "access")
		if ce == nil {
			h.ServeHTTP(w, r)
			return
		}

		ce.Write([]zapcore.Field{
			zap.String("protocol", r.Proto),
			zap.String("method", r.Method),
			zap.String("request-uri", r.RequestURI),
			zap.Int64("request-size", r.ContentLength),
			zap.String("user-agent", r.UserAgent()),
			zap.String("remote-addr", r.RemoteAddr),
			zap.String("host", r.Host),
			zap.Object("request-headers", httplog.HeadersLogObject{Headers: r.Header}),
		}...)

		h.ServeHTTP(w, r)
	})
}

// LogResponses logs responses.
func LogResponses(log *zap.Logger, h http.Handler) http.Handler {
	return whmon.MonitorResponse(whroute.HandlerFunc(h,
		func(w http.ResponseWriter, r *http.Request) {
			rw := w.(whmon.ResponseWriter)
			start := time.Now()

			defer func() {
				rec := recover()
				if rec != nil {
					log.Error("panic", zap.Any("recover", rec))
					panic(rec)
				}
			}()
			h.ServeHTTP(rw, r)

			if !rw.WroteHeader() {
				rw.WriteHeader(http.StatusOK)
			}

			ce := log.Check(httplog.StatusLevel(rw.StatusCode()), "response")
			if ce == nil {
				return
			}

			ce.Write([]zapcore.Field{
				zap.String("protocol", r.Proto),
				zap.String("method", r.Method),
				zap.String("request-uri", r.RequestURI),
				zap.Int64("request-size", r.ContentLength),
				zap.Int64("response-size", rw.Written()),
				zap.Int("status", rw.StatusCode()),
				zap.String("user-agent", r.UserAgent()),
				zap.String("remote-addr", r.RemoteAddr),
				zap.Duration("latency", time.Since(start)),
				zap.String("host", r.Host),
				zap.String("request-id", RequestIDFromContext(r.Context())),
			}...)
		}))
}

// NewLogRequests is a convenience wrapper around LogRequests that returns
// LogRequests as mux.MiddlewareFunc.
func NewLogRequests(log *zap.Logger) mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return LogRequests(log, h)
	}
}

// NewLogResponses is a convenience wrapper around LogResponses that returns
// LogResponses as mux.MiddlewareFunc.
func NewLogResponses(log *zap.Logger) mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return LogResponses(log, h)
	}
}
