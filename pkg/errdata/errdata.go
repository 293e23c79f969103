// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

// Package errdata annotates errors with key/value data, most notably the
// HTTP status code an error originated from. Annotations survive wrapping
// with errs classes and fmt verbs that keep the error chain intact.
package errdata

import (
	"errors"

	"github.com/zeebo/errs"
)

type annotated struct {
	error
	key, val interface{}
}

type valuer interface {
	Value(key interface{}) interface{}
}

var _ valuer = annotated{}
var _ errs.Namer = annotated{}

func (a annotated) Unwrap() error { return a.error }

// Name walks the chain looking for the innermost errs class name.
func (a annotated) Name() (string, bool) {
	for i := a.error; i != nil; i = errors.Unwrap(i) {
		if n, ok := i.(errs.Namer); ok { //nolint: errorlint // custom unwrap loop.
			if name, ok := n.Name(); ok {
				return name, true
			}
		}
	}
	return "", false
}

func (a annotated) Value(key interface{}) interface{} {
	if a.key == key {
		return a.val
	}
	return Value(a.error, key)
}

// Value returns the most recent annotation by key on err, or nil.
func Value(err error, key interface{}) interface{} {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if v, ok := e.(valuer); ok { //nolint: errorlint // custom unwrap loop.
			return v.Value(key)
		}
	}
	return nil
}

// Annotate returns err annotated with key and val. A nil err stays nil.
func Annotate(err error, key, val interface{}) error {
	if err == nil {
		return nil
	}
	return annotated{error: err, key: key, val: val}
}
