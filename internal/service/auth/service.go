package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/oauth"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const providerGoogle = "google"

// BranchSeeder creates the headquarters of a new company.
type BranchSeeder interface {
	Create(ctx context.Context, b branch.Branch) (branch.Branch, error)
}

// LeaveTypeSeeder creates the default leave types of a new company.
type LeaveTypeSeeder interface {
	Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error)
}

type AuthServiceImpl struct {
	users         user.UserRepository
	companies     company.CompanyRepository
	branches      BranchSeeder
	leaveTypes    LeaveTypeSeeder
	refreshTokens auth.RefreshTokenRepository
	tokens        jwt.Service
	google        oauth.GoogleService
	tx            database.Transactor
	bcryptCost    int
}

func NewAuthService(
	users user.UserRepository,
	companies company.CompanyRepository,
	branches BranchSeeder,
	leaveTypes LeaveTypeSeeder,
	refreshTokens auth.RefreshTokenRepository,
	tokens jwt.Service,
	google oauth.GoogleService,
	tx database.Transactor,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		users:         users,
		companies:     companies,
		branches:      branches,
		leaveTypes:    leaveTypes,
		refreshTokens: refreshTokens,
		tokens:        tokens,
		google:        google,
		tx:            tx,
		bcryptCost:    bcrypt.DefaultCost,
	}
}

// Register implements auth.AuthService. The company, its headquarters,
// the default leave types and the owner account are created atomically.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest, session auth.Session) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	taken, err := a.companies.ExistsByUsername(ctx, req.CompanyUsername)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to check company username: %w", err)
	}
	if taken {
		return auth.TokenResponse{}, company.ErrCompanyUsernameExists
	}
	exists, err := a.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return auth.TokenResponse{}, user.ErrUserEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.bcryptCost)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)

	var (
		owner  user.User
		tokens auth.TokenResponse
	)
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := a.companies.Create(ctx, company.Company{
			Name:     req.CompanyName,
			Username: req.CompanyUsername,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return company.ErrCompanyUsernameExists
			}
			return fmt.Errorf("failed to create company: %w", err)
		}

		if _, err := a.branches.Create(ctx, fixtures.DefaultBranch(c.ID, c.Name, req.Timezone)); err != nil {
			return fmt.Errorf("failed to create headquarters: %w", err)
		}
		for _, lt := range fixtures.DefaultLeaveTypes(c.ID) {
			if _, err := a.leaveTypes.Create(ctx, lt); err != nil {
				return fmt.Errorf("failed to create leave type %s: %w", lt.Code, err)
			}
		}

		owner, err = a.users.Create(ctx, user.User{
			CompanyID:    c.ID,
			Email:        req.Email,
			PasswordHash: &hashed,
			Role:         user.RoleOwner,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return user.ErrUserEmailExists
			}
			return fmt.Errorf("failed to create owner: %w", err)
		}

		tokens, err = a.issueTokens(ctx, owner, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("company registered", "company_id", owner.CompanyID, "username", req.CompanyUsername, "owner_id", owner.ID)
	return tokens, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, session auth.Session) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	u, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	// Accounts created through Google have no password.
	if u.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, u, session)
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	userID, err := a.tokens.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	revoked, err := a.refreshTokens.IsRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if revoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrInvalidToken
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	access, expiresAt, err := a.tokens.GenerateAccessToken(u.ID, u.Email, u.EmployeeID, u.CompanyID, u.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	return auth.AccessTokenResponse{AccessToken: access, AccessTokenExpiresAt: expiresAt}, nil
}

// Logout implements auth.AuthService. Logging out twice is not an error.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := a.refreshTokens.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// GoogleRedirectURL implements auth.AuthService.
func (a *AuthServiceImpl) GoogleRedirectURL(ctx context.Context, userAgent string) (string, string) {
	state := a.google.GenerateState(userAgent)
	return a.google.RedirectURL(state), state
}

// GoogleCallback implements auth.AuthService. Google sign-in only logs in
// an existing account; the Google identity is linked on first use.
func (a *AuthServiceImpl) GoogleCallback(ctx context.Context, req auth.GoogleCallbackRequest, expectedState string, session auth.Session) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}
	if expectedState == "" || subtle.ConstantTimeCompare([]byte(req.State), []byte(expectedState)) != 1 {
		return auth.TokenResponse{}, auth.ErrInvalidOAuthState
	}

	token, err := a.google.VerifyToken(ctx, req.Code)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("%w: %w", auth.ErrInvalidToken, err)
	}
	info, err := a.google.VerifyUser(ctx, token)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to fetch google profile: %w", err)
	}
	if !info.VerifiedEmail {
		return auth.TokenResponse{}, auth.ErrEmailNotVerified
	}

	u, err := a.users.GetByEmail(ctx, info.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrAccountNotFound
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if u.OAuthProviderID == nil || *u.OAuthProviderID != info.GoogleID {
		u, err = a.users.LinkGoogleAccount(ctx, info.GoogleID, u.Email)
		if err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to link google account: %w", err)
		}
		slog.Info("google account linked", "user_id", u.ID)
	}

	return a.issueTokens(ctx, u, session)
}

// issueTokens creates an access and refresh token pair and records the
// refresh token.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, session auth.Session) (auth.TokenResponse, error) {
	var resp auth.TokenResponse
	var err error

	resp.AccessToken, resp.AccessTokenExpiresAt, err = a.tokens.GenerateAccessToken(u.ID, u.Email, u.EmployeeID, u.CompanyID, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	resp.RefreshToken, resp.RefreshTokenExpiresAt, err = a.tokens.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}
	if err := a.refreshTokens.Create(ctx, u.ID, resp.RefreshToken, time.Unix(resp.RefreshTokenExpiresAt, 0).UTC(), session); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token: %w", err)
	}

	resp.User = user.NewUserResponse(u)
	return resp, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
