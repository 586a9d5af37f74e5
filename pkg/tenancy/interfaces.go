// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package tenancy

import (
	"context"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

type ResolverInterface interface {
	// ResolveHost maps an inbound host header to a tenant. The port, if any,
	// is stripped before lookup. Hosts matching no domain resolve to
	// ErrTenantNotFound.
	ResolveHost(ctx context.Context, host string) (*types.Tenant, error)
	// ResolveSelector honors an explicit tenant selector from an
	// authenticated caller, but only after verifying the caller holds an
	// active membership in that tenant.
	ResolveSelector(ctx context.Context, userID, tenantID string) (*types.Tenant, error)
	// InvalidateHost drops a cached host mapping, for use when a domain is
	// removed or a tenant deactivated.
	InvalidateHost(ctx context.Context, host string)
}

type TenantStoreInterface interface {
	GetDomainByHost(ctx context.Context, host string) (*types.Domain, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error)
}
