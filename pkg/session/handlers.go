// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/storage"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/authentication"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/pipeline"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/tenant"
)

// levelingHash keeps login latency flat when the email is unknown: the
// password is verified against this throwaway hash so both branches cost one
// argon2 derivation.
const levelingHash = "$argon2id$v=19$m=65536,t=3,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

type API struct {
	users        UserStoreInterface
	sessions     authentication.SessionManagerInterface
	invites      InviteAcceptorInterface
	cookieDomain string
	cookieSecure bool
	validate     *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewAPI(
	users UserStoreInterface,
	sessions authentication.SessionManagerInterface,
	invites InviteAcceptorInterface,
	cookieDomain string,
	cookieSecure bool,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	return &API{
		users:        users,
		sessions:     sessions,
		invites:      invites,
		cookieDomain: cookieDomain,
		cookieSecure: cookieSecure,
		validate:     validator.New(),
		tracer:       tracer,
		monitor:      monitor,
		logger:       logger,
	}
}

// RegisterPublicEndpoints serves the unauthenticated auth surface.
func (a *API) RegisterPublicEndpoints(mux chi.Router) {
	mux.Post("/api/v1/auth/register", a.register)
	mux.Post("/api/v1/auth/login", a.login)
	mux.Post("/api/v1/auth/refresh", a.refresh)
	mux.Post("/api/v1/auth/logout", a.logout)
}

// RegisterEndpoints serves the authenticated auth surface.
func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v1/auth/me", a.me)
	mux.Post("/api/v1/auth/logout-all", a.logoutAll)
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "session.API.register")
	defer span.End()

	var req struct {
		Email       string `json:"email" validate:"required,email"`
		Password    string `json:"password" validate:"required,min=8,max=128"`
		InviteToken string `json:"invite_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := a.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid email or password")
		return
	}

	hash, err := authentication.HashPassword(authentication.DefaultPasswordParams, req.Password)
	if err != nil {
		a.logger.Errorf("failed to hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	user, err := a.users.CreateUser(ctx, &types.User{
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Enabled:      true,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		a.logger.Errorf("failed to create user: %v", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	if req.InviteToken != "" {
		if _, err := a.invites.AcceptInvite(ctx, req.InviteToken, user.ID); err != nil {
			if errors.Is(err, tenant.ErrInviteInvalid) {
				writeError(w, http.StatusBadRequest, "invitation is invalid or expired")
				return
			}
			a.logger.Errorf("failed to accept invite for user %s: %v", user.ID, err)
			writeError(w, http.StatusInternalServerError, "registration failed")
			return
		}
	}

	pair, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		a.logger.Errorf("failed to issue session for user %s: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	a.setSessionCookies(w, pair)
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":    user,
		"session": pair,
	})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "session.API.login")
	defer span.End()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.users.GetUserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if storage.IsNotFoundError(err) {
			authentication.VerifyPassword(req.Password, levelingHash)
			a.logger.Security().AuthnFailure("unknown", "unknown email")
			a.unauthenticated(w)
			return
		}
		a.logger.Errorf("failed to look up user: %v", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if !authentication.VerifyPassword(req.Password, user.PasswordHash) {
		a.logger.Security().AuthnFailure(user.ID, "wrong password")
		a.unauthenticated(w)
		return
	}
	if !user.Enabled {
		a.logger.Security().AuthnFailure(user.ID, "account disabled")
		a.unauthenticated(w)
		return
	}

	pair, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		a.logger.Errorf("failed to issue session for user %s: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	a.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, pair)
}

func (a *API) refresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "session.API.refresh")
	defer span.End()

	raw, ok := a.refreshToken(r)
	if !ok {
		a.unauthenticated(w)
		return
	}

	pair, err := a.sessions.Refresh(ctx, raw)
	if err != nil {
		if errors.Is(err, authentication.ErrUnauthenticated) {
			a.clearSessionCookies(w)
			a.unauthenticated(w)
			return
		}
		a.logger.Errorf("failed to refresh session: %v", err)
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}

	a.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, pair)
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "session.API.logout")
	defer span.End()

	if raw, ok := a.refreshToken(r); ok {
		if err := a.sessions.Revoke(ctx, raw); err != nil {
			a.logger.Warnf("failed to revoke session: %v", err)
		}
	}

	// Logout always succeeds from the client's point of view.
	a.clearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) logoutAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "session.API.logoutAll")
	defer span.End()

	rc, ok := pipeline.FromContext(ctx)
	if !ok || rc.CurrentUser() == "" {
		a.unauthenticated(w)
		return
	}

	revoked, err := a.sessions.RevokeAll(ctx, rc.CurrentUser())
	if err != nil {
		a.logger.Errorf("failed to revoke sessions for user %s: %v", rc.CurrentUser(), err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}

	a.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, map[string]any{"revoked_sessions": revoked})
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "session.API.me")
	defer span.End()

	rc, ok := pipeline.FromContext(ctx)
	if !ok || rc.CurrentUser() == "" {
		a.unauthenticated(w)
		return
	}

	user, err := a.users.GetUserByID(ctx, rc.CurrentUser())
	if err != nil {
		a.logger.Errorf("failed to load user %s: %v", rc.CurrentUser(), err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// refreshToken reads the refresh token from the request body, falling back
// to the browser cookie.
func (a *API) refreshToken(r *http.Request) (string, bool) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken, true
	}
	if cookie, err := r.Cookie(authentication.RefreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

func (a *API) setSessionCookies(w http.ResponseWriter, pair *authentication.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     authentication.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		Domain:   a.cookieDomain,
		Expires:  pair.ExpiresAt,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     authentication.RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/api/v1/auth",
		Domain:   a.cookieDomain,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (a *API) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authentication.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Domain:   a.cookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     authentication.RefreshTokenCookie,
		Value:    "",
		Path:     "/api/v1/auth",
		Domain:   a.cookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (a *API) unauthenticated(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthenticated")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"status":  status,
		"message": message,
	})
}
