// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package sharepoint

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// DecodeContent renders raw file bytes in the requested encoding. The
// default "utf-8" validates the bytes and returns text; "base64" is
// binary-safe and returns the bytes base64-encoded.
func DecodeContent(data []byte, encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		if !utf8.Valid(data) {
			return "", ErrDecode.New("content is not valid UTF-8; request encoding base64 instead")
		}
		return string(data), nil
	case "ascii":
		for _, b := range data {
			if b > 0x7f {
				return "", ErrDecode.New("content is not valid ASCII; request encoding base64 instead")
			}
		}
		return string(data), nil
	case "base64":
		return base64.StdEncoding.EncodeToString(data), nil
	default:
		return "", ErrDecode.New("unsupported encoding %q", encoding)
	}
}

// EncodeContent converts tool-supplied content into upload bytes using the
// requested encoding. "base64" decodes the string; anything textual is
// uploaded as-is.
func EncodeContent(content, encoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		data, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, ErrDecode.New("invalid base64 content: %v", err)
		}
		return data, nil
	case "", "utf-8", "utf8", "ascii":
		return []byte(content), nil
	default:
		return nil, ErrDecode.New("unsupported encoding %q", encoding)
	}
}
