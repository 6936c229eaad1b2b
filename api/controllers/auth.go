package controllers

import (
	"net/http"
	"strings"

	"github.com/clubsupply/supplydesk-backend/api/responses"
	"github.com/clubsupply/supplydesk-backend/api/validators"
	authsvc "github.com/clubsupply/supplydesk-backend/internal/auth"
	pkgAuth "github.com/clubsupply/supplydesk-backend/pkg/auth"
	"github.com/clubsupply/supplydesk-backend/pkg/config"
	"github.com/clubsupply/supplydesk-backend/pkg/db/models"
	pkgerrors "github.com/clubsupply/supplydesk-backend/pkg/errors"
	"github.com/clubsupply/supplydesk-backend/pkg/logger"
	"github.com/google/uuid"
)

type challengeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,len=6"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type passwordResetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type userView struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

func toUserView(u *models.User) userView {
	return userView{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}
}

type tokenPairView struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         userView `json:"user"`
}

func toTokenPairView(pair *authsvc.TokenPair) tokenPairView {
	return tokenPairView{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toUserView(pair.User),
	}
}

// AuthChallenge mails a registration code to an allow-listed email.
func AuthChallenge(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return issueChallenge(svc, logg, authsvc.PurposeRegister)
}

// AuthPasswordResetChallenge mails a reset code to an existing account.
func AuthPasswordResetChallenge(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return issueChallenge(svc, logg, authsvc.PurposePasswordReset)
}

func issueChallenge(svc authsvc.Service, logg *logger.Logger, purpose string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload challengeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.IssueChallenge(r.Context(), payload.Email, purpose); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "challenge sent"})
	}
}

// AuthRegister redeems a challenge code and creates the account.
func AuthRegister(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), authsvc.RegisterInput{
			Email:    payload.Email,
			Code:     payload.Code,
			Name:     payload.Name,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toUserView(user))
	}
}

// AuthPasswordReset redeems a reset code and replaces the password.
func AuthPasswordReset(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload passwordResetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ResetPassword(r.Context(), authsvc.ResetPasswordInput{
			Email:       payload.Email,
			Code:        payload.Code,
			NewPassword: payload.NewPassword,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "password updated"})
	}
}

func AuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pair, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toTokenPairView(pair))
	}
}

// AuthLogout revokes the session named by the bearer token's jti. Expired
// tokens are accepted; the point is to drop the refresh session.
func AuthLogout(svc authsvc.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := claimsFromHeader(jwtCfg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Logout(r.Context(), claims.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged out"})
	}
}

// AuthRefresh rotates the refresh session and returns a fresh token pair.
func AuthRefresh(svc authsvc.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := claimsFromHeader(jwtCfg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload refreshRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pair, err := svc.Refresh(r.Context(), claims, payload.RefreshToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toTokenPairView(pair))
	}
}

func claimsFromHeader(jwtCfg config.JWTConfig, r *http.Request) (*pkgAuth.AccessTokenClaims, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	claims, err := pkgAuth.ParseAccessTokenAllowExpired(jwtCfg, raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	return claims, nil
}
