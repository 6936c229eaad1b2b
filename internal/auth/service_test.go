package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clubsupply/supplydesk-backend/internal/users"
	pkgauth "github.com/clubsupply/supplydesk-backend/pkg/auth"
	"github.com/clubsupply/supplydesk-backend/pkg/auth/session"
	"github.com/clubsupply/supplydesk-backend/pkg/config"
	"github.com/clubsupply/supplydesk-backend/pkg/db/models"
	"github.com/clubsupply/supplydesk-backend/pkg/enums"
	pkgerrors "github.com/clubsupply/supplydesk-backend/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubMail struct {
	sent []string
	err  error
}

func (m *stubMail) SendChallengeCode(ctx context.Context, toEmail, code, purpose string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, code)
	return nil
}

type stubSessions struct {
	tokens  map[string]string
	revoked []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{tokens: map[string]string{}}
}

func (s *stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	s.tokens[newID] = token
	return newID, token, nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	delete(s.tokens, accessID)
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubAllowlist map[string]enums.UserRole

func (a stubAllowlist) Lookup(email string) (enums.UserRole, bool) {
	role, ok := a[email]
	return role, ok
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "supplydesk-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

// small argon parameters keep the suite fast
func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

type fixture struct {
	svc      Service
	raw      *service
	mail     *stubMail
	sessions *stubSessions
	users    *users.Repository
	repo     *Repository
}

func newFixture(t *testing.T, allowed stubAllowlist) *fixture {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.VerificationChallenge{}))

	mail := &stubMail{}
	sessions := newStubSessions()
	userRepo := users.NewRepository(gdb)
	repo := NewRepository(gdb)

	svc, err := NewService(userRepo, repo, allowed, sessions, mail,
		testJWTConfig(), testPasswordConfig(), config.ChallengeConfig{CodeTTL: 15 * time.Minute})
	require.NoError(t, err)

	return &fixture{
		svc:      svc,
		raw:      svc.(*service),
		mail:     mail,
		sessions: sessions,
		users:    userRepo,
		repo:     repo,
	}
}

func (f *fixture) register(t *testing.T, email, password string) *models.User {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.IssueChallenge(ctx, email, PurposeRegister))
	code := f.mail.sent[len(f.mail.sent)-1]
	user, err := f.svc.Register(ctx, RegisterInput{Email: email, Code: code, Name: "Test User", Password: password})
	require.NoError(t, err)
	return user
}

func TestIssueChallengeRejectsUnlistedEmail(t *testing.T) {
	f := newFixture(t, stubAllowlist{})

	err := f.svc.IssueChallenge(context.Background(), "mallory@club.example", PurposeRegister)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
	require.Empty(t, f.mail.sent)
}

func TestRegisterUsesAllowlistRole(t *testing.T) {
	f := newFixture(t, stubAllowlist{"boss@club.example": enums.UserRoleBosslevel})

	user := f.register(t, "boss@club.example", "hunter2!")
	require.Equal(t, enums.UserRoleBosslevel, user.Role)
	require.Equal(t, "boss@club.example", user.Email)
}

func TestRegisterRejectsWrongCode(t *testing.T) {
	f := newFixture(t, stubAllowlist{"alice@club.example": enums.UserRoleUser})
	ctx := context.Background()

	require.NoError(t, f.svc.IssueChallenge(ctx, "alice@club.example", PurposeRegister))
	_, err := f.svc.Register(ctx, RegisterInput{
		Email: "alice@club.example", Code: "000000", Name: "Alice", Password: "pw",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestRegisterRejectsExpiredCode(t *testing.T) {
	f := newFixture(t, stubAllowlist{"alice@club.example": enums.UserRoleUser})
	ctx := context.Background()

	require.NoError(t, f.svc.IssueChallenge(ctx, "alice@club.example", PurposeRegister))
	code := f.mail.sent[0]

	f.raw.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	_, err := f.svc.Register(ctx, RegisterInput{
		Email: "alice@club.example", Code: code, Name: "Alice", Password: "pw",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestIssueChallengeConflictsWhenRegistered(t *testing.T) {
	f := newFixture(t, stubAllowlist{"alice@club.example": enums.UserRoleUser})

	f.register(t, "alice@club.example", "pw")

	err := f.svc.IssueChallenge(context.Background(), "alice@club.example", PurposeRegister)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestLoginAndRefresh(t *testing.T) {
	f := newFixture(t, stubAllowlist{"alice@club.example": enums.UserRoleUser})
	ctx := context.Background()

	f.register(t, "alice@club.example", "correct horse")

	pair, err := f.svc.Login(ctx, "alice@club.example", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleUser, claims.Role)
	require.Equal(t, pair.AccessID, claims.ID)

	rotated, err := f.svc.Refresh(ctx, claims, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessID, rotated.AccessID)

	// the old refresh token is single-use
	_, err = f.svc.Refresh(ctx, claims, pair.RefreshToken)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t, stubAllowlist{"alice@club.example": enums.UserRoleUser})
	ctx := context.Background()

	f.register(t, "alice@club.example", "correct horse")

	_, err := f.svc.Login(ctx, "alice@club.example", "wrong")
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = f.svc.Login(ctx, "nobody@club.example", "wrong")
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t, stubAllowlist{"alice@club.example": enums.UserRoleUser})
	ctx := context.Background()

	f.register(t, "alice@club.example", "old password")

	require.NoError(t, f.svc.IssueChallenge(ctx, "alice@club.example", PurposePasswordReset))
	code := f.mail.sent[len(f.mail.sent)-1]

	require.NoError(t, f.svc.ResetPassword(ctx, ResetPasswordInput{
		Email: "alice@club.example", Code: code, NewPassword: "new password",
	}))

	_, err := f.svc.Login(ctx, "alice@club.example", "old password")
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = f.svc.Login(ctx, "alice@club.example", "new password")
	require.NoError(t, err)
}

func TestPasswordResetForUnknownAccount(t *testing.T) {
	f := newFixture(t, stubAllowlist{})

	err := f.svc.IssueChallenge(context.Background(), "ghost@club.example", PurposePasswordReset)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t, stubAllowlist{"alice@club.example": enums.UserRoleUser})
	ctx := context.Background()

	f.register(t, "alice@club.example", "pw")
	pair, err := f.svc.Login(ctx, "alice@club.example", "pw")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, pair.AccessID))
	require.Contains(t, f.sessions.revoked, pair.AccessID)

	claims := &pkgauth.AccessTokenClaims{
		UserID:           pair.User.ID,
		Role:             pair.User.Role,
		RegisteredClaims: jwt.RegisteredClaims{ID: pair.AccessID},
	}
	_, err = f.svc.Refresh(ctx, claims, pair.RefreshToken)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestMailFailureIsDependencyError(t *testing.T) {
	f := newFixture(t, stubAllowlist{"alice@club.example": enums.UserRoleUser})
	f.mail.err = errors.New("sendgrid down")

	err := f.svc.IssueChallenge(context.Background(), "alice@club.example", PurposeRegister)
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestRegisterTwiceIsConflict(t *testing.T) {
	f := newFixture(t, stubAllowlist{"alice@club.example": enums.UserRoleUser})
	ctx := context.Background()

	f.register(t, "alice@club.example", "pw")

	// bypass the issue guard by writing a fresh challenge directly
	_, err := f.repo.CreateChallenge(ctx, &models.VerificationChallenge{
		ID: uuid.New(), Email: "alice@club.example", Code: "123456", Purpose: PurposeRegister,
	})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterInput{
		Email: "alice@club.example", Code: "123456", Name: "Alice", Password: "pw",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}
