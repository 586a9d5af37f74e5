// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/metrics"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/pipeline"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/session"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/status"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/tenant"
)

func NewRouter(
	pl *pipeline.Pipeline,
	tenantAPI *tenant.API,
	sessionAPI *session.API,
	statusAPI *status.API,
	corsAllowedOrigins []string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(corsAllowedOrigins),
	)

	router.Use(middlewares...)

	// Operational surface, outside the request pipeline.
	metrics.NewAPI(logger).RegisterEndpoints(router)
	statusAPI.RegisterEndpoints(router)

	// Anonymous surface: the tenant is resolved when the host names one, but
	// neither credentials nor a tenant are required.
	router.Group(func(r chi.Router) {
		r.Use(pl.Middleware(pipeline.RouteOptions{Public: true, TenantOptional: true}))
		sessionAPI.RegisterPublicEndpoints(r)
	})

	// Authenticated surface that works from any host: account endpoints and
	// tenant onboarding.
	router.Group(func(r chi.Router) {
		r.Use(pl.Middleware(pipeline.RouteOptions{TenantOptional: true}))
		sessionAPI.RegisterEndpoints(r)
		tenantAPI.RegisterOnboardingEndpoints(r)
	})

	// Tenant-bound surface: every request below here runs with the database
	// scope bound to the resolved tenant.
	router.Group(func(r chi.Router) {
		r.Use(pl.Middleware(pipeline.RouteOptions{}))
		tenantAPI.RegisterEndpoints(r, pl)
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}

func middlewareCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", pipeline.TenantSelectorHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
