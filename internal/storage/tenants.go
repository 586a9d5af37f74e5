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

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTenant")
	defer span.End()

	// Onboarding pre-generates the ID so the isolation scope can be bound
	// to the tenant before its row exists.
	id := t.ID
	if id == "" {
		generated, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
		}
		id = generated.String()
	}

	var newTenant types.Tenant
	err := s.db.Statement(ctx).
		Insert("tenants").
		Columns("id", "slug", "isolation_scope", "enabled").
		Values(id, t.Slug, t.IsolationScope, t.Enabled).
		Suffix("RETURNING id, slug, isolation_scope, enabled, created_at").
		QueryRowContext(ctx).
		Scan(&newTenant.ID, &newTenant.Slug, &newTenant.IsolationScope, &newTenant.Enabled, &newTenant.CreatedAt)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, WrapDuplicateKeyError(err, "tenant slug or isolation scope already taken")
		}
		return nil, fmt.Errorf("failed to insert tenant: %w", err)
	}

	return &newTenant, nil
}

func (s *Storage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByID")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"id": id})
}

func (s *Storage) GetTenantBySlug(ctx context.Context, slug string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantBySlug")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"slug": slug})
}

func (s *Storage) getTenant(ctx context.Context, pred sq.Eq) (*types.Tenant, error) {
	var t types.Tenant
	err := s.db.Statement(ctx).
		Select("id", "slug", "isolation_scope", "enabled", "created_at").
		From("tenants").
		Where(pred).
		QueryRowContext(ctx).
		Scan(&t.ID, &t.Slug, &t.IsolationScope, &t.Enabled, &t.CreatedAt)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return &t, nil
}

func (s *Storage) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTenants")
	defer span.End()

	query := s.db.Statement(ctx).
		Select("id", "slug", "isolation_scope", "enabled", "created_at").
		From("tenants")

	return s.scanTenants(ctx, query)
}

func (s *Storage) ListActiveTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error) {
	return s.listTenantsByUserID(ctx, userID, false)
}

func (s *Storage) ListTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error) {
	return s.listTenantsByUserID(ctx, userID, true)
}

func (s *Storage) listTenantsByUserID(ctx context.Context, userID string, showDisabled bool) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTenantsByUserID")
	defer span.End()

	query := s.db.Statement(ctx).
		Select("t.id", "t.slug", "t.isolation_scope", "t.enabled", "t.created_at").
		From("tenants t").
		Join("memberships m ON t.id = m.tenant_id").
		Where(sq.Eq{"m.user_id": userID})

	if !showDisabled {
		query = query.Where(sq.Eq{"t.enabled": true})
	}

	return s.scanTenants(ctx, query)
}

func (s *Storage) scanTenants(ctx context.Context, query sq.SelectBuilder) ([]*types.Tenant, error) {
	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*types.Tenant
	for rows.Next() {
		var t types.Tenant
		if err := rows.Scan(&t.ID, &t.Slug, &t.IsolationScope, &t.Enabled, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenant rows: %w", err)
	}

	return tenants, nil
}

// RenameTenant updates slug and isolation scope together. This is the only
// operation allowed to touch either after creation; row ownership keys on the
// immutable tenant id, so no tenant-owned rows need rewriting.
func (s *Storage) RenameTenant(ctx context.Context, id, slug, isolationScope string) error {
	ctx, span := s.tracer.Start(ctx, "storage.RenameTenant")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("tenants").
		Set("slug", slug).
		Set("isolation_scope", isolationScope).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return WrapDuplicateKeyError(err, "tenant slug or isolation scope already taken")
		}
		return fmt.Errorf("failed to rename tenant: %w", err)
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

func (s *Storage) SetTenantStatus(ctx context.Context, id string, enabled bool) error {
	ctx, span := s.tracer.Start(ctx, "storage.SetTenantStatus")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("tenants").
		Set("enabled", enabled).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to set tenant status: %w", err)
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
