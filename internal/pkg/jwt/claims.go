package jwt

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	ClaimUserID     = "user_id"
	ClaimEmail      = "email"
	ClaimEmployeeID = "employee_id"
	ClaimCompanyID  = "company_id"
	ClaimRole       = "role"
	ClaimType       = "type"

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	RefreshTokenCookieName = "refresh_token"
)

var (
	ErrMissingClaims = errors.New("authentication claims are missing")
)

// Claims is the typed view of an access token.
type Claims struct {
	UserID     string
	Email      string
	EmployeeID string
	CompanyID  string
	Role       user.Role
}

// ClaimsFromContext reads the access token claims put in ctx by
// jwtauth.Verifier. CompanyID is always present on a valid access token.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, raw, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, err
	}
	if raw == nil {
		return Claims{}, ErrMissingClaims
	}

	str := func(key string) string {
		v, _ := raw[key].(string)
		return v
	}
	c := Claims{
		UserID:     str(ClaimUserID),
		Email:      str(ClaimEmail),
		EmployeeID: str(ClaimEmployeeID),
		CompanyID:  str(ClaimCompanyID),
		Role:       user.Role(str(ClaimRole)),
	}
	if c.UserID == "" || c.CompanyID == "" {
		return Claims{}, ErrMissingClaims
	}
	return c, nil
}

// CompanyIDFromContext returns the tenant of the current request.
func CompanyIDFromContext(ctx context.Context) (string, error) {
	c, err := ClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	return c.CompanyID, nil
}

// NewContext returns ctx carrying c as if it had been verified from a
// bearer token. Background jobs use it to act on behalf of a company.
func NewContext(ctx context.Context, c Claims) context.Context {
	token := jwt.New()
	_ = token.Set(ClaimUserID, c.UserID)
	_ = token.Set(ClaimEmail, c.Email)
	_ = token.Set(ClaimCompanyID, c.CompanyID)
	_ = token.Set(ClaimRole, string(c.Role))
	_ = token.Set(ClaimType, TokenTypeAccess)
	if c.EmployeeID != "" {
		_ = token.Set(ClaimEmployeeID, c.EmployeeID)
	}
	return jwtauth.NewContext(ctx, token, nil)
}
