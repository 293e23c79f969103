// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package errdata

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/errs"
)

var testError = errs.Class("test")

func TestWithStatus(t *testing.T) {
	err := WithStatus(testError.New("folder missing"), http.StatusNotFound)
	require.Equal(t, http.StatusNotFound, GetStatus(err, http.StatusInternalServerError))

	// the most recent annotation wins
	err = WithStatus(err, http.StatusConflict)
	require.Equal(t, http.StatusConflict, GetStatus(err, 0))
}

func TestGetStatusDefault(t *testing.T) {
	require.Equal(t, http.StatusBadGateway, GetStatus(testError.New("no annotation"), http.StatusBadGateway))
	require.Equal(t, http.StatusOK, GetStatus(nil, http.StatusOK))
}

func TestAnnotateNil(t *testing.T) {
	require.NoError(t, WithStatus(nil, http.StatusNotFound))
}

func TestStatusSurvivesWrapping(t *testing.T) {
	err := WithStatus(testError.New("forbidden"), http.StatusForbidden)
	wrapped := testError.Wrap(err)
	require.Equal(t, http.StatusForbidden, GetStatus(wrapped, 0))

	name, ok := wrapped.(errs.Namer).Name()
	require.True(t, ok)
	require.Equal(t, "test", name)
}
