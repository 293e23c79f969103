// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package sharepoint

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/zeebo/errs"

	"github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/errdata"
)

var (
	// Error is a class of sharepoint errors.
	Error = errs.Class("sharepoint")

	// ErrNotFound means the file or folder does not exist.
	ErrNotFound = errs.Class("not found")

	// ErrPermissionDenied means Graph rejected the caller's authorization.
	ErrPermissionDenied = errs.Class("permission denied")

	// ErrAlreadyExists means the target file or folder already exists.
	ErrAlreadyExists = errs.Class("already exists")

	// ErrDecode means retrieved bytes could not be decoded with the
	// requested encoding.
	ErrDecode = errs.Class("decode")

	// ErrTransport covers network failures, timeouts and any Graph
	// response outside the semantic taxonomy.
	ErrTransport = errs.Class("transport")
)

// graphError is the error envelope Graph returns on non-2xx responses.
type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 64 * 1024

// apiError translates a non-2xx Graph response into the typed taxonomy and
// annotates it with the originating status code.
func apiError(resp *http.Response) error {
	var ge graphError
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		_ = json.Unmarshal(body, &ge)
	}

	message := ge.Error.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	var wrapped error
	switch {
	case resp.StatusCode == http.StatusNotFound:
		wrapped = ErrNotFound.New("%s", message)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		wrapped = ErrPermissionDenied.New("%s", message)
	case resp.StatusCode == http.StatusConflict || ge.Error.Code == "nameAlreadyExists":
		wrapped = ErrAlreadyExists.New("%s", message)
	default:
		wrapped = ErrTransport.New("unexpected status %d: %s", resp.StatusCode, message)
	}

	return errdata.WithStatus(wrapped, resp.StatusCode)
}
