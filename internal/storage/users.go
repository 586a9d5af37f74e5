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

func (s *Storage) CreateUser(ctx context.Context, u *types.User) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateUser")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	var newUser types.User
	err = s.db.Statement(ctx).
		Insert("users").
		Columns("id", "email", "password_hash", "verified", "enabled", "is_system").
		Values(id.String(), u.Email, u.PasswordHash, u.Verified, u.Enabled, u.IsSystem).
		Suffix("RETURNING id, email, password_hash, verified, enabled, is_system, created_at").
		QueryRowContext(ctx).
		Scan(&newUser.ID, &newUser.Email, &newUser.PasswordHash, &newUser.Verified, &newUser.Enabled, &newUser.IsSystem, &newUser.CreatedAt)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, WrapDuplicateKeyError(err, "email already registered")
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &newUser, nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetUserByID")
	defer span.End()

	return s.getUser(ctx, sq.Eq{"id": id})
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetUserByEmail")
	defer span.End()

	return s.getUser(ctx, sq.Eq{"email": email})
}

func (s *Storage) getUser(ctx context.Context, pred sq.Eq) (*types.User, error) {
	var u types.User
	err := s.db.Statement(ctx).
		Select("id", "email", "password_hash", "verified", "enabled", "is_system", "created_at").
		From("users").
		Where(pred).
		QueryRowContext(ctx).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Verified, &u.Enabled, &u.IsSystem, &u.CreatedAt)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// CountNonSystemUsers backs the setup-completion check: setup is complete once
// any human account exists, seeded system accounts excluded.
func (s *Storage) CountNonSystemUsers(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CountNonSystemUsers")
	defer span.End()

	var count int64
	err := s.db.Statement(ctx).
		Select("COUNT(*)").
		From("users").
		Where(sq.Eq{"is_system": false}).
		QueryRowContext(ctx).
		Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}
