// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values let the service layer distinguish a
// missing row or a uniqueness conflict from a database failure.
package repository

import "errors"

// ErrMovieNotFound is returned when no movie has the requested id.
var ErrMovieNotFound = errors.New("movie not found")

// ErrUserNotFound is returned when no user has the requested username.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when an insert hits the unique index on
// users.username.
var ErrUsernameExists = errors.New("username already exists")

// ErrActionNotFound is returned when the actions lookup table has no row
// for the requested action name.
var ErrActionNotFound = errors.New("action not found")
