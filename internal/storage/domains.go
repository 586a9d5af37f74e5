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

func (s *Storage) CreateDomain(ctx context.Context, d *types.Domain) (*types.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateDomain")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate domain ID: %w", err)
	}

	var newDomain types.Domain
	err = s.db.Statement(ctx).
		Insert("domains").
		Columns("id", "host", "tenant_id", "is_primary").
		Values(id.String(), d.Host, d.TenantID, d.IsPrimary).
		Suffix("RETURNING id, host, tenant_id, is_primary, created_at").
		QueryRowContext(ctx).
		Scan(&newDomain.ID, &newDomain.Host, &newDomain.TenantID, &newDomain.IsPrimary, &newDomain.CreatedAt)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, WrapDuplicateKeyError(err, "host already mapped")
		}
		if IsForeignKeyViolation(err) {
			return nil, WrapForeignKeyError(err, "tenant does not exist")
		}
		return nil, fmt.Errorf("failed to insert domain: %w", err)
	}

	return &newDomain, nil
}

func (s *Storage) GetDomainByHost(ctx context.Context, host string) (*types.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetDomainByHost")
	defer span.End()

	var d types.Domain
	err := s.db.Statement(ctx).
		Select("id", "host", "tenant_id", "is_primary", "created_at").
		From("domains").
		Where(sq.Eq{"host": host}).
		QueryRowContext(ctx).
		Scan(&d.ID, &d.Host, &d.TenantID, &d.IsPrimary, &d.CreatedAt)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get domain: %w", err)
	}

	return &d, nil
}

func (s *Storage) ListDomainsByTenantID(ctx context.Context, tenantID string) ([]*types.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListDomainsByTenantID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("id", "host", "tenant_id", "is_primary", "created_at").
		From("domains").
		Where(sq.Eq{"tenant_id": tenantID}).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []*types.Domain
	for rows.Next() {
		var d types.Domain
		if err := rows.Scan(&d.ID, &d.Host, &d.TenantID, &d.IsPrimary, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return domains, nil
}

func (s *Storage) DeleteDomain(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteDomain")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("domains").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete domain: %w", err)
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
