// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package tenancy

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"time"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/cache"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/db"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/storage"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

const hostCachePrefix = "tenancy:host:"

var _ ResolverInterface = (*Resolver)(nil)

// Resolver maps inbound hosts to tenants. Resolution is a pure lookup:
// reserved names are rejected at domain creation time, never here.
type Resolver struct {
	store    TenantStoreInterface
	db       db.DBClientInterface
	cache    cache.CacheInterface
	cacheTTL time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (r *Resolver) ResolveHost(ctx context.Context, host string) (*types.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "tenancy.Resolver.ResolveHost")
	defer span.End()

	host = NormalizeHost(host)
	if host == "" {
		return nil, ErrTenantNotFound
	}

	if cached, ok := r.cache.Get(ctx, hostCachePrefix+host); ok {
		var tenant types.Tenant
		if err := json.Unmarshal(cached, &tenant); err == nil {
			return &tenant, nil
		}
		r.cache.Delete(ctx, hostCachePrefix+host)
	}

	domain, err := r.store.GetDomainByHost(ctx, host)
	if err != nil {
		if storage.IsNotFoundError(err) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	tenant, err := r.store.GetTenantByID(ctx, domain.TenantID)
	if err != nil {
		if storage.IsNotFoundError(err) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	// Deactivated tenants stop resolving. Indistinguishable from an unknown
	// host so probers learn nothing.
	if !tenant.Enabled {
		r.logger.Debugf("host %s resolves to deactivated tenant %s", host, tenant.ID)
		return nil, ErrTenantNotFound
	}

	if encoded, err := json.Marshal(tenant); err == nil {
		r.cache.Set(ctx, hostCachePrefix+host, encoded, r.cacheTTL)
	}

	return tenant, nil
}

func (r *Resolver) ResolveSelector(ctx context.Context, userID, tenantID string) (*types.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "tenancy.Resolver.ResolveSelector")
	defer span.End()

	tenant, err := r.store.GetTenantByID(ctx, tenantID)
	if err != nil {
		if storage.IsNotFoundError(err) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	if !tenant.Enabled {
		return nil, ErrTenantNotFound
	}

	// The selector is an unverified claim until a membership backs it. The
	// lookup runs under the candidate scope so the membership row policy
	// admits it; a missing membership still comes back empty.
	err = r.db.WithTenantScope(ctx, db.Scope{TenantID: tenantID, UserID: userID}, func(ctx context.Context) error {
		_, err := r.store.GetMembership(ctx, tenantID, userID)
		return err
	})
	if err != nil {
		if storage.IsNotFoundError(err) {
			r.logger.Security().TenantProbe(userID, tenantID)
			return nil, ErrTenantMismatch
		}
		return nil, err
	}

	return tenant, nil
}

func (r *Resolver) InvalidateHost(ctx context.Context, host string) {
	r.cache.Delete(ctx, hostCachePrefix+NormalizeHost(host))
}

// NormalizeHost lowercases a host header and strips any port.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func NewResolver(
	store TenantStoreInterface,
	dbClient db.DBClientInterface,
	c cache.CacheInterface,
	cacheTTL time.Duration,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Resolver {
	return &Resolver{
		store:    store,
		db:       dbClient,
		cache:    c,
		cacheTTL: cacheTTL,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
