// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

// tenantRolePredicate matches roles owned by the tenant plus system-global
// roles (NULL tenant_id).
func tenantRolePredicate(tenantID string) sq.Sqlizer {
	return sq.Or{
		sq.Eq{"r.tenant_id": tenantID},
		sq.Eq{"r.tenant_id": nil},
	}
}

// permissionList maps the jsonb permissions column to []string.
type permissionList []string

func (p permissionList) Value() (driver.Value, error) {
	return json.Marshal([]string(p))
}

func (p *permissionList) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, (*[]string)(p))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(p))
	case nil:
		*p = nil
		return nil
	default:
		return fmt.Errorf("unsupported permissions type %T", src)
	}
}

func (s *Storage) CreateRole(ctx context.Context, r *types.Role) (*types.Role, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateRole")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate role ID: %w", err)
	}

	var tenantID any
	if r.TenantID != "" {
		tenantID = r.TenantID
	}

	var newRole types.Role
	var scanTenantID sql.NullString
	var perms permissionList
	err = s.db.Statement(ctx).
		Insert("roles").
		Columns("id", "tenant_id", "name", "permissions").
		Values(id.String(), tenantID, r.Name, permissionList(r.Permissions)).
		Suffix("RETURNING id, tenant_id, name, permissions").
		QueryRowContext(ctx).
		Scan(&newRole.ID, &scanTenantID, &newRole.Name, &perms)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, WrapDuplicateKeyError(err, "role name already exists in tenant")
		}
		return nil, fmt.Errorf("failed to insert role: %w", err)
	}
	newRole.TenantID = scanTenantID.String
	newRole.Permissions = perms

	return &newRole, nil
}

func (s *Storage) GetRoleByName(ctx context.Context, tenantID, name string) (*types.Role, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetRoleByName")
	defer span.End()

	query := s.db.Statement(ctx).
		Select("r.id", "r.tenant_id", "r.name", "r.permissions").
		From("roles r").
		Where(sq.Eq{"r.name": name})

	if tenantID == "" {
		query = query.Where(sq.Eq{"r.tenant_id": nil})
	} else {
		// Both the tenant's role and a system-global one of the same name can
		// match; the tenant's own definition wins.
		query = query.
			Where(tenantRolePredicate(tenantID)).
			OrderBy("r.tenant_id NULLS LAST").
			Limit(1)
	}

	var r types.Role
	var scanTenantID sql.NullString
	var perms permissionList
	err := query.
		QueryRowContext(ctx).
		Scan(&r.ID, &scanTenantID, &r.Name, &perms)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	r.TenantID = scanTenantID.String
	r.Permissions = perms

	return &r, nil
}

// ListRolesByMembership loads every role the user holds within the tenant.
// This is the single query the permission engine evaluates against.
func (s *Storage) ListRolesByMembership(ctx context.Context, tenantID, userID string) ([]*types.Role, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListRolesByMembership")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("r.id", "r.tenant_id", "r.name", "r.permissions").
		From("roles r").
		Join("membership_roles mr ON r.id = mr.role_id").
		Join("memberships m ON mr.membership_id = m.id").
		Where(sq.Eq{"m.tenant_id": tenantID, "m.user_id": userID}).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*types.Role
	for rows.Next() {
		var r types.Role
		var scanTenantID sql.NullString
		var perms permissionList
		if err := rows.Scan(&r.ID, &scanTenantID, &r.Name, &perms); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		r.TenantID = scanTenantID.String
		r.Permissions = perms
		roles = append(roles, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return roles, nil
}
