// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

const refreshTokenColumns = "id, user_id, family_id, token_hash, issued_at, expires_at, rotated_from, revoked_at"

func (s *Storage) CreateRefreshToken(ctx context.Context, t *types.RefreshToken) (*types.RefreshToken, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateRefreshToken")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token ID: %w", err)
	}

	var rotatedFrom any
	if t.RotatedFrom != nil {
		rotatedFrom = *t.RotatedFrom
	}

	var saved types.RefreshToken
	err = s.db.Statement(ctx).
		Insert("refresh_tokens").
		Columns("id", "user_id", "family_id", "token_hash", "expires_at", "rotated_from").
		Values(id.String(), t.UserID, t.FamilyID, t.TokenHash, t.ExpiresAt, rotatedFrom).
		Suffix("RETURNING " + refreshTokenColumns).
		QueryRowContext(ctx).
		Scan(&saved.ID, &saved.UserID, &saved.FamilyID, &saved.TokenHash, &saved.IssuedAt, &saved.ExpiresAt, &saved.RotatedFrom, &saved.RevokedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert refresh token: %w", err)
	}

	return &saved, nil
}

func (s *Storage) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*types.RefreshToken, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetRefreshTokenByHash")
	defer span.End()

	var t types.RefreshToken
	err := s.db.Statement(ctx).
		Select(refreshTokenColumns).
		From("refresh_tokens").
		Where(sq.Eq{"token_hash": tokenHash}).
		QueryRowContext(ctx).
		Scan(&t.ID, &t.UserID, &t.FamilyID, &t.TokenHash, &t.IssuedAt, &t.ExpiresAt, &t.RotatedFrom, &t.RevokedAt)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return &t, nil
}

// RevokeRefreshToken marks the token revoked and reports whether this call
// was the one that revoked it. A false result means another presentation of
// the same token won the race, which the session layer treats as replay.
func (s *Storage) RevokeRefreshToken(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "storage.RevokeRefreshToken")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("refresh_tokens").
		Set("revoked_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "revoked_at": nil}).
		ExecContext(ctx)

	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows == 1, nil
}

// RevokeRefreshTokenFamily revokes every live token descending from the same
// login. Fired on replay detection.
func (s *Storage) RevokeRefreshTokenFamily(ctx context.Context, familyID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.RevokeRefreshTokenFamily")
	defer span.End()

	_, err := s.db.Statement(ctx).
		Update("refresh_tokens").
		Set("revoked_at", sq.Expr("now()")).
		Where(sq.Eq{"family_id": familyID, "revoked_at": nil}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to revoke token family: %w", err)
	}
	return nil
}

func (s *Storage) RevokeAllRefreshTokens(ctx context.Context, userID string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.RevokeAllRefreshTokens")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("refresh_tokens").
		Set("revoked_at", sq.Expr("now()")).
		Where(sq.Eq{"user_id": userID, "revoked_at": nil}).
		ExecContext(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows, nil
}

// DeleteExpiredRefreshTokens removes rows that are past expiry. Revoked rows
// are kept until expiry so replayed descendants still match their family.
func (s *Storage) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteExpiredRefreshTokens")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("refresh_tokens").
		Where(sq.Lt{"expires_at": before}).
		ExecContext(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows, nil
}
