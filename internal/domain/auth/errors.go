package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrInvalidOAuthState   = errors.New("invalid oauth state")
	ErrEmailNotVerified    = errors.New("google account email is not verified")
	ErrAccountNotFound     = errors.New("no account is registered for this email")
)
