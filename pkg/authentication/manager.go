// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/storage"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

// ErrUnauthenticated is the only error callers may surface to clients. The
// reason a credential was rejected is logged, never returned.
var ErrUnauthenticated = errors.New("unauthenticated")

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

var _ SessionManagerInterface = (*SessionManager)(nil)
var _ TokenVerifierInterface = (*SessionManager)(nil)

type SessionManager struct {
	signer     SignerInterface
	tokens     TokenStoreInterface
	refreshTTL time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (m *SessionManager) Issue(ctx context.Context, userID string) (*TokenPair, error) {
	ctx, span := m.tracer.Start(ctx, "authentication.SessionManager.Issue")
	defer span.End()

	familyID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token family: %w", err)
	}

	return m.issuePair(ctx, userID, familyID.String(), nil)
}

func (m *SessionManager) ValidateAccess(ctx context.Context, rawToken string) (string, error) {
	_, span := m.tracer.Start(ctx, "authentication.SessionManager.ValidateAccess")
	defer span.End()

	userID, err := m.signer.Verify(rawToken)
	if err != nil {
		m.logger.Debugf("access token verification failed: %v", err)
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// VerifyToken satisfies TokenVerifierInterface for the HTTP middleware.
func (m *SessionManager) VerifyToken(ctx context.Context, rawToken string) (string, error) {
	return m.ValidateAccess(ctx, rawToken)
}

func (m *SessionManager) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	ctx, span := m.tracer.Start(ctx, "authentication.SessionManager.Refresh")
	defer span.End()

	stored, err := m.tokens.GetRefreshTokenByHash(ctx, HashToken(rawToken))
	if err != nil {
		if storage.IsNotFoundError(err) {
			m.logger.Security().AuthnFailure("unknown", "unknown refresh token")
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	// A token that was already rotated or revoked is proof of replay:
	// either the legitimate client or a thief holds a stale copy, and there
	// is no way to tell which one is presenting it. Burn the whole family.
	if stored.RevokedAt != nil {
		m.logger.Security().TokenReplay(stored.UserID, stored.FamilyID)
		if err := m.tokens.RevokeRefreshTokenFamily(ctx, stored.FamilyID); err != nil {
			m.logger.Errorf("failed to revoke token family %s: %v", stored.FamilyID, err)
		}
		return nil, ErrUnauthenticated
	}

	if time.Now().After(stored.ExpiresAt) {
		m.logger.Security().AuthnFailure(stored.UserID, "expired refresh token")
		return nil, ErrUnauthenticated
	}

	rotated, err := m.tokens.RevokeRefreshToken(ctx, stored.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if !rotated {
		// Another presentation of the same token won the rotation between
		// our read and this update. That is the same replay signal as
		// finding the row already revoked: burn the family.
		m.logger.Security().TokenReplay(stored.UserID, stored.FamilyID)
		if err := m.tokens.RevokeRefreshTokenFamily(ctx, stored.FamilyID); err != nil {
			m.logger.Errorf("failed to revoke token family %s: %v", stored.FamilyID, err)
		}
		return nil, ErrUnauthenticated
	}

	return m.issuePair(ctx, stored.UserID, stored.FamilyID, &stored.ID)
}

func (m *SessionManager) Revoke(ctx context.Context, rawToken string) error {
	ctx, span := m.tracer.Start(ctx, "authentication.SessionManager.Revoke")
	defer span.End()

	stored, err := m.tokens.GetRefreshTokenByHash(ctx, HashToken(rawToken))
	if err != nil {
		if storage.IsNotFoundError(err) {
			// Logout with an unknown token is a no-op, not an error.
			return nil
		}
		return err
	}

	if err := m.tokens.RevokeRefreshTokenFamily(ctx, stored.FamilyID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	m.logger.Security().SessionRevoked(stored.UserID, "session")
	return nil
}

func (m *SessionManager) RevokeAll(ctx context.Context, userID string) (int64, error) {
	ctx, span := m.tracer.Start(ctx, "authentication.SessionManager.RevokeAll")
	defer span.End()

	n, err := m.tokens.RevokeAllRefreshTokens(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}

	m.logger.Security().SessionRevoked(userID, "all")
	return n, nil
}

func (m *SessionManager) issuePair(ctx context.Context, userID, familyID string, rotatedFrom *string) (*TokenPair, error) {
	access, err := m.signer.Sign(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := GenerateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(m.refreshTTL)
	if _, err := m.tokens.CreateRefreshToken(ctx, &types.RefreshToken{
		UserID:      userID,
		FamilyID:    familyID,
		TokenHash:   HashToken(refresh),
		ExpiresAt:   expiresAt,
		RotatedFrom: rotatedFrom,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

func NewSessionManager(
	signer SignerInterface,
	tokens TokenStoreInterface,
	refreshTTL time.Duration,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *SessionManager {
	return &SessionManager{
		signer:     signer,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		tracer:     tracer,
		monitor:    monitor,
		logger:     logger,
	}
}
