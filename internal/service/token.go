package service

import (
	"time"

	"github.com/iliyamo/movie-catalog/internal/utils"
)

// TokenIssuer turns an authenticated subject into an opaque credential.
type TokenIssuer interface {
	Issue(subject string, roles []string) (utils.AccessToken, error)
}

// JWTIssuer signs HS256 access tokens.
type JWTIssuer struct {
	Secret string
	TTL    time.Duration
}

func (j JWTIssuer) Issue(subject string, roles []string) (utils.AccessToken, error) {
	return utils.NewAccessToken(j.Secret, subject, roles, j.TTL)
}
