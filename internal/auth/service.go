package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clubsupply/supplydesk-backend/internal/users"
	pkgauth "github.com/clubsupply/supplydesk-backend/pkg/auth"
	"github.com/clubsupply/supplydesk-backend/pkg/auth/session"
	"github.com/clubsupply/supplydesk-backend/pkg/config"
	"github.com/clubsupply/supplydesk-backend/pkg/db"
	"github.com/clubsupply/supplydesk-backend/pkg/db/models"
	"github.com/clubsupply/supplydesk-backend/pkg/enums"
	pkgerrors "github.com/clubsupply/supplydesk-backend/pkg/errors"
	"github.com/clubsupply/supplydesk-backend/pkg/security"
	"gorm.io/gorm"
)

// Challenge purposes stored alongside the one-time code.
const (
	PurposeRegister      = "register"
	PurposePasswordReset = "password_reset"
)

const challengeCodeDigits = 6

// mailSender delivers one-time codes; stubbed in tests.
type mailSender interface {
	SendChallengeCode(ctx context.Context, toEmail, code, purpose string) error
}

// sessionManager is the slice of the refresh session store this service needs.
type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// roleSource resolves which emails may register and with what role.
type roleSource interface {
	Lookup(email string) (enums.UserRole, bool)
}

// Service exposes account and session flows.
type Service interface {
	IssueChallenge(ctx context.Context, email, purpose string) error
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	ResetPassword(ctx context.Context, input ResetPasswordInput) error
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
	Refresh(ctx context.Context, claims *pkgauth.AccessTokenClaims, refreshToken string) (*TokenPair, error)
}

type service struct {
	users    *users.Repository
	repo     *Repository
	allowed  roleSource
	sessions sessionManager
	mail     mailSender
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	codeTTL  time.Duration
	now      func() time.Time
}

// NewService builds the auth service.
func NewService(
	userRepo *users.Repository,
	repo *Repository,
	allowed roleSource,
	sessions sessionManager,
	mail mailSender,
	jwtCfg config.JWTConfig,
	pwCfg config.PasswordConfig,
	challengeCfg config.ChallengeConfig,
) (Service, error) {
	if userRepo == nil || repo == nil {
		return nil, fmt.Errorf("repositories required")
	}
	if allowed == nil {
		return nil, fmt.Errorf("allowlist required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if challengeCfg.CodeTTL <= 0 {
		return nil, fmt.Errorf("challenge code ttl must be positive")
	}
	return &service{
		users:    userRepo,
		repo:     repo,
		allowed:  allowed,
		sessions: sessions,
		mail:     mail,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
		codeTTL:  challengeCfg.CodeTTL,
		now:      time.Now,
	}, nil
}

// RegisterInput carries a code redemption plus the new account's fields.
type RegisterInput struct {
	Email    string
	Code     string
	Name     string
	Password string
}

// ResetPasswordInput carries a reset-code redemption.
type ResetPasswordInput struct {
	Email       string
	Code        string
	NewPassword string
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	AccessID     string         `json:"-"`
	User         *models.User   `json:"-"`
	Role         enums.UserRole `json:"role"`
}

// IssueChallenge mails a one-time code. Registration codes go only to
// allow-listed emails; reset codes only to existing accounts. Both failures
// surface as Forbidden/NotFound so callers can distinguish misuse from typos.
func (s *service) IssueChallenge(ctx context.Context, email, purpose string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	switch purpose {
	case PurposeRegister:
		if _, ok := s.allowed.Lookup(email); !ok {
			return pkgerrors.New(pkgerrors.CodeForbidden, "email is not allow-listed")
		}
		if _, err := s.users.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "account already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up account")
		}
	case PurposePasswordReset:
		if _, err := s.users.FindByEmail(ctx, email); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no account for this email")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up account")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown challenge purpose")
	}

	code, err := security.GenerateChallengeCode(challengeCodeDigits)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate challenge code")
	}

	if _, err := s.repo.CreateChallenge(ctx, &models.VerificationChallenge{
		Email:   email,
		Code:    code,
		Purpose: purpose,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist challenge")
	}

	if err := s.mail.SendChallengeCode(ctx, email, code, purpose); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send challenge code")
	}
	return nil
}

// verifyChallenge checks the provided code against the latest stored
// challenge. Expired, missing, or mismatched codes are all Unauthorized.
func (s *service) verifyChallenge(ctx context.Context, email, purpose, code string) error {
	challenge, err := s.repo.FindLatestChallenge(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired code")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up challenge")
	}
	if s.now().After(challenge.ExpiresAt(s.codeTTL)) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired code")
	}
	if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(strings.TrimSpace(code))) != 1 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired code")
	}
	return nil
}

// Register redeems a registration code and creates the account with the role
// from the allow-list row.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	role, ok := s.allowed.Lookup(email)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "email is not allow-listed")
	}

	if err := s.verifyChallenge(ctx, email, PurposeRegister, input.Code); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = email
	}

	user, err := s.users.Create(ctx, &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "uq_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "account already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
	}

	if err := s.repo.ConsumeChallenges(ctx, email, PurposeRegister); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consume challenges")
	}
	return user, nil
}

// ResetPassword redeems a reset code and replaces the stored hash.
func (s *service) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || strings.TrimSpace(input.NewPassword) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email and new password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no account for this email")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up account")
	}

	if err := s.verifyChallenge(ctx, email, PurposePasswordReset, input.Code); err != nil {
		return err
	}

	hash, err := security.HashPassword(input.NewPassword, s.pwCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}

	if err := s.repo.ConsumeChallenges(ctx, email, PurposePasswordReset); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consume challenges")
	}
	return nil
}

// Login verifies credentials and issues an access/refresh pair. A wrong email
// and a wrong password produce the same Unauthorized response.
func (s *service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up account")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.issuePair(ctx, user, session.NewAccessID())
}

func (s *service) issuePair(ctx context.Context, user *models.User, accessID string) (*TokenPair, error) {
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refresh session")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessID:     accessID,
		User:         user,
		Role:         user.Role,
	}, nil
}

// Logout revokes the refresh session tied to the access ID.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// Refresh rotates the refresh session identified by the (possibly expired)
// access token's jti and mints a fresh pair for the same account.
func (s *service) Refresh(ctx context.Context, claims *pkgauth.AccessTokenClaims, refreshToken string) (*TokenPair, error) {
	if claims == nil || strings.TrimSpace(refreshToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh request")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh request")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up account")
	}

	newAccessID, newRefreshToken, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		AccessID:     newAccessID,
		User:         user,
		Role:         user.Role,
	}, nil
}
