// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

type SignerInterface interface {
	// Sign issues a signed access token for the subject.
	Sign(subject string) (string, error)
	// Verify checks the signature and registered claims of a raw access token
	// and returns the subject if valid.
	Verify(rawToken string) (string, error)
}

type SessionManagerInterface interface {
	// Issue creates a new session: an access token plus a refresh token
	// opening a fresh rotation family.
	Issue(ctx context.Context, userID string) (*TokenPair, error)
	// ValidateAccess verifies a raw access token and returns the user ID.
	ValidateAccess(ctx context.Context, rawToken string) (string, error)
	// Refresh exchanges a refresh token for a new pair. Presenting an
	// already-rotated token revokes the whole family.
	Refresh(ctx context.Context, rawToken string) (*TokenPair, error)
	// Revoke invalidates the session the refresh token belongs to.
	Revoke(ctx context.Context, rawToken string) error
	// RevokeAll invalidates every session of the user.
	RevokeAll(ctx context.Context, userID string) (int64, error)
}

type TokenVerifierInterface interface {
	// VerifyToken verifies a raw access token.
	// Returns the subject (user ID) if the token is valid, otherwise an error.
	VerifyToken(ctx context.Context, rawToken string) (string, error)
}

type TokenStoreInterface interface {
	CreateRefreshToken(ctx context.Context, t *types.RefreshToken) (*types.RefreshToken, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*types.RefreshToken, error)
	// RevokeRefreshToken reports whether this call revoked the token; false
	// means it was already revoked by a concurrent presentation.
	RevokeRefreshToken(ctx context.Context, id string) (bool, error)
	RevokeRefreshTokenFamily(ctx context.Context, familyID string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) (int64, error)
}
