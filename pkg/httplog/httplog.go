// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

// Package httplog provides helpers for logging HTTP traffic without leaking
// credential material.
package httplog

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Headers that carry bearer tokens or secrets and must never be logged.
var confidentialHeaders = map[string]struct{}{
	"Authorization":       {},
	"Cookie":              {},
	"X-Ms-Client-Secret":  {},
	"Ocp-Apim-Trace":      {},
	"Proxy-Authorization": {},
}

// StatusLevel takes an HTTP status and returns an appropriate log level.
func StatusLevel(status int) zapcore.Level {
	switch {
	case status == http.StatusNotImplemented:
		return zap.WarnLevel
	case status >= 500:
		return zap.ErrorLevel
	default:
		return zap.DebugLevel
	}
}

// HeadersLogObject encodes an http.Header into a zap logging object,
// redacting confidential values.
type HeadersLogObject struct {
	Headers http.Header
}

// MarshalLogObject implements the zapcore.ObjectMarshaler interface.
func (o HeadersLogObject) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for k, v := range o.Headers {
		enc.AddString(k, redactConfidential(k, v))
	}
	return nil
}

func redactConfidential(k string, vals []string) string {
	if _, ok := confidentialHeaders[http.CanonicalHeaderKey(k)]; ok {
		return "[...]"
	}
	return strings.Join(vals, ",")
}
