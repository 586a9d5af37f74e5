// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

// AddMember creates a membership with its initial role set. An active
// membership never exists with zero roles, so both writes happen in the same
// statement context (callers wrap this in a transaction).
func (s *Storage) AddMember(ctx context.Context, tenantID, userID string, roleIDs []string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.AddMember")
	defer span.End()

	if len(roleIDs) == 0 {
		return "", fmt.Errorf("membership requires at least one role")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate membership ID: %w", err)
	}

	_, err = s.db.Statement(ctx).
		Insert("memberships").
		Columns("id", "tenant_id", "user_id").
		Values(id.String(), tenantID, userID).
		ExecContext(ctx)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return "", ErrDuplicateKey
		}
		if IsForeignKeyViolation(err) {
			return "", ErrForeignKeyViolation
		}
		return "", fmt.Errorf("failed to add member: %w", err)
	}

	if err := s.insertMembershipRoles(ctx, id.String(), tenantID, roleIDs); err != nil {
		return "", err
	}

	return id.String(), nil
}

func (s *Storage) insertMembershipRoles(ctx context.Context, membershipID, tenantID string, roleIDs []string) error {
	insert := s.db.Statement(ctx).
		Insert("membership_roles").
		Columns("membership_id", "role_id", "tenant_id")
	for _, roleID := range roleIDs {
		insert = insert.Values(membershipID, roleID, tenantID)
	}

	if _, err := insert.ExecContext(ctx); err != nil {
		if IsForeignKeyViolation(err) {
			return WrapForeignKeyError(err, "role does not exist")
		}
		return fmt.Errorf("failed to attach roles: %w", err)
	}
	return nil
}

func (s *Storage) GetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetMembership")
	defer span.End()

	var m types.Membership
	err := s.db.Statement(ctx).
		Select("id", "tenant_id", "user_id", "created_at").
		From("memberships").
		Where(sq.Eq{"tenant_id": tenantID, "user_id": userID}).
		QueryRowContext(ctx).
		Scan(&m.ID, &m.TenantID, &m.UserID, &m.CreatedAt)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return &m, nil
}

func (s *Storage) RemoveMember(ctx context.Context, tenantID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.RemoveMember")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("memberships").
		Where(sq.Eq{"tenant_id": tenantID, "user_id": userID}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// SetMemberRoles replaces the membership's role set. The new set must be
// non-empty; removing a member entirely goes through RemoveMember.
func (s *Storage) SetMemberRoles(ctx context.Context, tenantID, userID string, roleIDs []string) error {
	ctx, span := s.tracer.Start(ctx, "storage.SetMemberRoles")
	defer span.End()

	if len(roleIDs) == 0 {
		return fmt.Errorf("membership requires at least one role")
	}

	m, err := s.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return err
	}

	if _, err := s.db.Statement(ctx).
		Delete("membership_roles").
		Where(sq.Eq{"membership_id": m.ID}).
		ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to clear roles: %w", err)
	}

	return s.insertMembershipRoles(ctx, m.ID, tenantID, roleIDs)
}

func (s *Storage) ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListMembersByTenantID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("id", "tenant_id", "user_id", "created_at").
		From("memberships").
		Where(sq.Eq{"tenant_id": tenantID}).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*types.Membership
	for rows.Next() {
		var m types.Membership
		if err := rows.Scan(&m.ID, &m.TenantID, &m.UserID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return members, nil
}
