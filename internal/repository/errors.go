// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup by id matches no row. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering an email that is already
// taken.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenInvalid is returned for a refresh token that is unknown, expired
// or already used.
var ErrTokenInvalid = errors.New("refresh token invalid")

// isDuplicate reports whether err is a unique-key violation. MySQL reports
// error 1062; SQLite reports a UNIQUE constraint failure.
func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint")
}
