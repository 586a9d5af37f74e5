// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

type StorageInterface interface {
	// Tenants
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	ListTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error)
	ListActiveTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error)
	RenameTenant(ctx context.Context, id, slug, isolationScope string) error
	SetTenantStatus(ctx context.Context, id string, enabled bool) error

	// Domains
	CreateDomain(ctx context.Context, d *types.Domain) (*types.Domain, error)
	GetDomainByHost(ctx context.Context, host string) (*types.Domain, error)
	ListDomainsByTenantID(ctx context.Context, tenantID string) ([]*types.Domain, error)
	DeleteDomain(ctx context.Context, id string) error

	// Users
	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	CountNonSystemUsers(ctx context.Context) (int64, error)

	// Memberships
	AddMember(ctx context.Context, tenantID, userID string, roleIDs []string) (string, error)
	GetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error)
	RemoveMember(ctx context.Context, tenantID, userID string) error
	SetMemberRoles(ctx context.Context, tenantID, userID string, roleIDs []string) error
	ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error)

	// Roles
	CreateRole(ctx context.Context, r *types.Role) (*types.Role, error)
	GetRoleByName(ctx context.Context, tenantID, name string) (*types.Role, error)
	ListRolesByMembership(ctx context.Context, tenantID, userID string) ([]*types.Role, error)

	// Refresh tokens
	CreateRefreshToken(ctx context.Context, t *types.RefreshToken) (*types.RefreshToken, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*types.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string) (bool, error)
	RevokeRefreshTokenFamily(ctx context.Context, familyID string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) (int64, error)
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)

	// Invites
	CreateInvite(ctx context.Context, invite *types.Invite) (*types.Invite, error)
	GetInviteByTokenHash(ctx context.Context, tokenHash string) (*types.Invite, error)
	DeleteInvite(ctx context.Context, id string) error
	DeleteExpiredInvites(ctx context.Context, before time.Time) (int64, error)
}
