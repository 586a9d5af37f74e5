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

func (s *Storage) CreateInvite(ctx context.Context, invite *types.Invite) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateInvite")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite ID: %w", err)
	}

	var saved types.Invite
	err = s.db.Statement(ctx).
		Insert("invites").
		Columns("id", "tenant_id", "email", "role_id", "token_hash", "expires_at").
		Values(id.String(), invite.TenantID, invite.Email, invite.RoleID, invite.TokenHash, invite.ExpiresAt).
		Suffix("RETURNING id, tenant_id, email, role_id, token_hash, expires_at, created_at").
		QueryRowContext(ctx).
		Scan(&saved.ID, &saved.TenantID, &saved.Email, &saved.RoleID, &saved.TokenHash, &saved.ExpiresAt, &saved.CreatedAt)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, WrapForeignKeyError(err, "tenant or role does not exist")
		}
		return nil, fmt.Errorf("failed to insert invite: %w", err)
	}

	return &saved, nil
}

func (s *Storage) GetInviteByTokenHash(ctx context.Context, tokenHash string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetInviteByTokenHash")
	defer span.End()

	var invite types.Invite
	err := s.db.Statement(ctx).
		Select("id", "tenant_id", "email", "role_id", "token_hash", "expires_at", "created_at").
		From("invites").
		Where(sq.Eq{"token_hash": tokenHash}).
		QueryRowContext(ctx).
		Scan(&invite.ID, &invite.TenantID, &invite.Email, &invite.RoleID, &invite.TokenHash, &invite.ExpiresAt, &invite.CreatedAt)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	return &invite, nil
}

func (s *Storage) DeleteInvite(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteInvite")
	defer span.End()

	_, err := s.db.Statement(ctx).
		Delete("invites").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	return nil
}

// DeleteExpiredInvites removes invites that are past expiry.
func (s *Storage) DeleteExpiredInvites(ctx context.Context, before time.Time) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteExpiredInvites")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("invites").
		Where(sq.Lt{"expires_at": before}).
		ExecContext(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invites: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows, nil
}
