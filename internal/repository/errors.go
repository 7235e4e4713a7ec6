// Package repository defines error values that are shared across
// repositories. These sentinel values let handlers distinguish failure
// scenarios without inspecting driver errors. ErrApplicationNotFound
// deliberately covers both "no such row" and "row owned by someone else":
// ownership-scoped queries filter on id AND user_id, so a non-owner can
// never learn whether an id exists.
package repository

import "errors"

// ErrUserNotFound is returned when no user matches the given lookup key.
var ErrUserNotFound = errors.New("user not found")

// ErrApplicationNotFound is returned when an application does not exist or
// does not belong to the requesting user. Handlers translate this into an
// HTTP 404 response in either case.
var ErrApplicationNotFound = errors.New("application not found")
