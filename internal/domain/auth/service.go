package auth

import (
	"context"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest, session Session) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest, session Session) (TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GoogleRedirectURL(ctx context.Context, userAgent string) (url string, state string)
	GoogleCallback(ctx context.Context, req GoogleCallbackRequest, expectedState string, session Session) (TokenResponse, error)
}
