// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound indicates that a requested record does not
// exist, while ErrEmailExists signals that a user create or update
// would violate the unique email constraint.
package repository

import "errors"

// ErrNotFound is returned when a record does not exist. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user create or email update
// collides with an existing account, active or not. Handlers should
// translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")
