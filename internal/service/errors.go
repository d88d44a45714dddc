package service

import (
	"errors"

	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

// Errors returned by the services.  Not-found errors are the repository
// sentinels so callers can match either layer with errors.Is.
var (
	ErrMovieNotFound      = repository.ErrMovieNotFound
	ErrUserNotFound       = repository.ErrUserNotFound
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooLong    = utils.ErrPasswordTooLong
)
