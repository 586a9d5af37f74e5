// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/authorization"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/db"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/authentication"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/tenancy"
)

// TenantSelectorHeader carries an explicit tenant selector from multi-tenant
// users. It is honored only after membership verification.
const TenantSelectorHeader = "X-Tenant-ID"

// RouteOptions control which pipeline stages a route group requires.
type RouteOptions struct {
	// Public skips session validation. The tenant is still resolved.
	Public bool
	// TenantOptional lets a request through with no resolved tenant, for
	// tenant creation and domain-agnostic endpoints. All other routes fail
	// closed when the host matches no domain.
	TenantOptional bool
}

type Pipeline struct {
	resolver   tenancy.ResolverInterface
	sessions   authentication.TokenVerifierInterface
	db         db.DBClientInterface
	authorizer authorization.AuthorizerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Middleware runs a request through the pipeline stages in order and hands a
// Ready context to the wrapped handler. Any stage failure moves the request
// to Rejected and ends it; the scoped connection, once acquired, is released
// on every exit path.
func (p *Pipeline) Middleware(opts RouteOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := p.tracer.Start(r.Context(), "pipeline.Pipeline.Middleware")
			defer span.End()

			rc := &RequestContext{stage: StageUnresolved, authorizer: p.authorizer}

			tenant, err := p.resolver.ResolveHost(ctx, r.Host)
			switch {
			case err == nil:
				rc.tenant = tenant
			case errors.Is(err, tenancy.ErrTenantNotFound):
				if !opts.TenantOptional {
					p.reject(w, rc, err)
					return
				}
			default:
				p.reject(w, rc, err)
				return
			}
			rc.stage = StageTenantResolved

			if !opts.Public {
				token, found := requestToken(r)
				if !found {
					p.reject(w, rc, authentication.ErrUnauthenticated)
					return
				}
				userID, err := p.sessions.VerifyToken(ctx, token)
				if err != nil {
					p.reject(w, rc, authentication.ErrUnauthenticated)
					return
				}
				rc.userID = userID

				// An explicit selector overrides host resolution, but only
				// once a membership backs it.
				if selector := r.Header.Get(TenantSelectorHeader); selector != "" {
					selected, err := p.resolver.ResolveSelector(ctx, userID, selector)
					if err != nil {
						p.reject(w, rc, err)
						return
					}
					rc.tenant = selected
				}
			}
			rc.stage = StageSessionValidated

			if rc.tenant == nil && rc.userID == "" {
				// Anonymous request outside any tenant: nothing to scope.
				rc.stage = StageReady
				next.ServeHTTP(w, r.WithContext(withRequestContext(ctx, rc)))
				return
			}

			// Without a tenant the scope carries only the user, which the row
			// policies accept for self-owned rows (e.g. listing one's own
			// memberships).
			sw := &statusWriter{ResponseWriter: w}
			scope := db.Scope{UserID: rc.userID}
			if rc.tenant != nil {
				scope.TenantID = rc.tenant.ID
			}
			err = p.db.WithTenantScope(ctx, scope, func(scoped context.Context) error {
				rc.stage = StageScopeBound
				// The permission engine is already bound, so the context is
				// immediately ready for on-demand checks by the handler.
				rc.stage = StageReady
				next.ServeHTTP(sw, r.WithContext(withRequestContext(scoped, rc)))
				return nil
			})
			if err != nil {
				p.logger.Errorf("scoped execution failed for tenant %q: %v", scope.TenantID, err)
				if !sw.written {
					p.reject(sw, rc, db.ErrScopeBind)
				}
			}
		})
	}
}

// RequirePermission rejects requests whose bound (user, tenant) pair lacks
// the permission. Denials do not leak whether the resource exists.
func (p *Pipeline) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := p.tracer.Start(r.Context(), "pipeline.Pipeline.RequirePermission")
			defer span.End()

			rc, ok := FromContext(ctx)
			if !ok {
				writeRejection(w, http.StatusForbidden, "forbidden")
				return
			}

			allowed, err := rc.Authorize(ctx, permission)
			if err != nil {
				p.logger.Errorf("permission check failed: %v", err)
				writeRejection(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !allowed {
				writeRejection(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (p *Pipeline) reject(w http.ResponseWriter, rc *RequestContext, err error) {
	rc.stage = StageRejected
	status, message := statusFor(err)
	writeRejection(w, status, message)
}

func requestToken(r *http.Request) (string, bool) {
	if bearer := r.Header.Get("Authorization"); bearer != "" {
		if !strings.HasPrefix(bearer, "Bearer ") {
			return "", false
		}
		return strings.TrimPrefix(bearer, "Bearer "), true
	}
	if cookie, err := r.Cookie(authentication.AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

type statusWriter struct {
	http.ResponseWriter
	written bool
}

func (w *statusWriter) WriteHeader(status int) {
	w.written = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

func NewPipeline(
	resolver tenancy.ResolverInterface,
	sessions authentication.TokenVerifierInterface,
	dbClient db.DBClientInterface,
	authorizer authorization.AuthorizerInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Pipeline {
	return &Pipeline{
		resolver:   resolver,
		sessions:   sessions,
		db:         dbClient,
		authorizer: authorizer,
		tracer:     tracer,
		monitor:    monitor,
		logger:     logger,
	}
}
