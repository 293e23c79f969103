// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package errdata

type statusKey int

const errStatusCode statusKey = 1

// WithStatus annotates an error with an HTTP status code. A nil err stays nil.
func WithStatus(err error, statusCode int) error {
	return Annotate(err, errStatusCode, statusCode)
}

// GetStatus returns the most recent status code annotation on the error.
// If none is found, defValue is returned instead.
func GetStatus(err error, defValue int) int {
	if v, ok := Value(err, errStatusCode).(int); ok {
		return v
	}
	return defValue
}
