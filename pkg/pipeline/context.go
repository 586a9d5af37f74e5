// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"context"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/authorization"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

// Stage is the position of a request inside the pipeline. Transitions only
// move forward; Rejected is terminal and reachable from any stage.
type Stage int

const (
	StageUnresolved Stage = iota
	StageTenantResolved
	StageSessionValidated
	StageScopeBound
	StageReady
	StageRejected
)

func (s Stage) String() string {
	switch s {
	case StageUnresolved:
		return "unresolved"
	case StageTenantResolved:
		return "tenant_resolved"
	case StageSessionValidated:
		return "session_validated"
	case StageScopeBound:
		return "scope_bound"
	case StageReady:
		return "ready"
	case StageRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// RequestContext is the per-request unit the pipeline builds up. It is owned
// exclusively by the in-flight request; the current tenant is never stored
// anywhere wider than this.
type RequestContext struct {
	stage      Stage
	tenant     *types.Tenant
	userID     string
	authorizer authorization.AuthorizerInterface
}

// Stage reports how far the pipeline has advanced.
func (rc *RequestContext) Stage() Stage {
	return rc.stage
}

// CurrentTenant returns the resolved tenant, or nil on tenant-optional routes
// where no tenant matched.
func (rc *RequestContext) CurrentTenant() *types.Tenant {
	return rc.tenant
}

// CurrentUser returns the authenticated user ID, empty on public routes.
func (rc *RequestContext) CurrentUser() string {
	return rc.userID
}

// Authorize checks a permission for the bound (user, tenant) pair. Requests
// without both a tenant and a user are always denied.
func (rc *RequestContext) Authorize(ctx context.Context, permission string) (bool, error) {
	if rc.tenant == nil || rc.userID == "" {
		return false, nil
	}
	return rc.authorizer.Check(ctx, rc.tenant.ID, rc.userID, permission)
}

// Define a private custom type to avoid collisions
type contextKey struct{}

var requestContextKey = contextKey{}

func withRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// ContextWithRequest seeds a ready request context directly, bypassing the
// middleware chain. Intended for handler tests.
func ContextWithRequest(ctx context.Context, tenant *types.Tenant, userID string, authorizer authorization.AuthorizerInterface) context.Context {
	return withRequestContext(ctx, &RequestContext{
		stage:      StageReady,
		tenant:     tenant,
		userID:     userID,
		authorizer: authorizer,
	})
}

// FromContext retrieves the pipeline request context.
// Returns nil and false outside a pipeline-wrapped handler.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey).(*RequestContext)
	return rc, ok
}
