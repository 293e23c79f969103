// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package sharepoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeContent(t *testing.T) {
	out, err := DecodeContent([]byte("héllo"), "")
	require.NoError(t, err)
	require.Equal(t, "héllo", out)

	out, err = DecodeContent([]byte("hello"), "UTF-8")
	require.NoError(t, err)
	require.Equal(t, "hello", out)

	_, err = DecodeContent([]byte{0xff, 0xfe, 0x00}, "utf-8")
	require.Error(t, err)
	require.True(t, ErrDecode.Has(err))

	_, err = DecodeContent([]byte("héllo"), "ascii")
	require.Error(t, err)
	require.True(t, ErrDecode.Has(err))

	out, err = DecodeContent([]byte{0xff, 0xfe, 0x00}, "base64")
	require.NoError(t, err)
	require.Equal(t, "//4A", out)

	_, err = DecodeContent([]byte("x"), "ebcdic")
	require.Error(t, err)
	require.True(t, ErrDecode.Has(err))
}

func TestEncodeContent(t *testing.T) {
	data, err := EncodeContent("plain text", "")
	require.NoError(t, err)
	require.Equal(t, []byte("plain text"), data)

	data, err = EncodeContent("//4A", "base64")
	require.NoError(t, err)
	require.Equal(t, []byte{0xff, 0xfe, 0x00}, data)

	_, err = EncodeContent("not!base64", "base64")
	require.Error(t, err)
	require.True(t, ErrDecode.Has(err))

	_, err = EncodeContent("x", "ebcdic")
	require.Error(t, err)
	require.True(t, ErrDecode.Has(err))
}
