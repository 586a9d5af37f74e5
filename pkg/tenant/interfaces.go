// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"net/http"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

type ServiceInterface interface {
	CreateTenant(ctx context.Context, slug, host, ownerUserID string) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	ListTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error)
	RenameTenant(ctx context.Context, id, slug string) (*types.Tenant, error)
	SetTenantStatus(ctx context.Context, id string, enabled bool) error

	AddDomain(ctx context.Context, tenantID, host string, isPrimary bool) (*types.Domain, error)
	RemoveDomain(ctx context.Context, tenantID, domainID string) error
	ListDomains(ctx context.Context, tenantID string) ([]*types.Domain, error)

	InviteMember(ctx context.Context, tenantID, email, roleName string) (string, error)
	AcceptInvite(ctx context.Context, rawToken, userID string) (*types.Invite, error)
	ProvisionMember(ctx context.Context, tenantID, email string, roleNames []string) error
	ListMembers(ctx context.Context, tenantID string) ([]*types.TenantUser, error)
	SetMemberRoles(ctx context.Context, tenantID, userID string, roleNames []string) error
	RemoveMember(ctx context.Context, tenantID, userID string) error

	CreateRole(ctx context.Context, tenantID, name string, permissions []string) (*types.Role, error)
}

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	ListActiveTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error)
	RenameTenant(ctx context.Context, id, slug, isolationScope string) error
	SetTenantStatus(ctx context.Context, id string, enabled bool) error

	CreateDomain(ctx context.Context, d *types.Domain) (*types.Domain, error)
	ListDomainsByTenantID(ctx context.Context, tenantID string) ([]*types.Domain, error)
	DeleteDomain(ctx context.Context, id string) error

	GetUserByID(ctx context.Context, id string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)

	AddMember(ctx context.Context, tenantID, userID string, roleIDs []string) (string, error)
	RemoveMember(ctx context.Context, tenantID, userID string) error
	SetMemberRoles(ctx context.Context, tenantID, userID string, roleIDs []string) error
	ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error)

	CreateRole(ctx context.Context, r *types.Role) (*types.Role, error)
	GetRoleByName(ctx context.Context, tenantID, name string) (*types.Role, error)
	ListRolesByMembership(ctx context.Context, tenantID, userID string) ([]*types.Role, error)

	CreateInvite(ctx context.Context, invite *types.Invite) (*types.Invite, error)
	GetInviteByTokenHash(ctx context.Context, tokenHash string) (*types.Invite, error)
	DeleteInvite(ctx context.Context, id string) error
}

// HostInvalidatorInterface drops cached host mappings when domains change.
type HostInvalidatorInterface interface {
	InvalidateHost(ctx context.Context, host string)
}

// GuardInterface is the permission gate the router places in front of
// endpoints.
type GuardInterface interface {
	RequirePermission(permission string) func(http.Handler) http.Handler
}
