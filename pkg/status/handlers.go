// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
)

type PingerInterface interface {
	Ping(ctx context.Context) error
}

// SetupReaderInterface reports whether the instance has any real accounts
// yet. Seeded system accounts do not count.
type SetupReaderInterface interface {
	CountNonSystemUsers(ctx context.Context) (int64, error)
}

type API struct {
	db    PingerInterface
	users SetupReaderInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewAPI(
	db PingerInterface,
	users SetupReaderInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	return &API{
		db:      db,
		users:   users,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Get("/api/v1/status", a.alive)
	mux.Get("/api/v1/status/ready", a.ready)
	mux.Get("/api/v1/status/setup", a.setup)
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.ready")
	defer span.End()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.Errorf("readiness check failed: %v", err)
		writeStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}

	writeStatus(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (a *API) setup(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.setup")
	defer span.End()

	count, err := a.users.CountNonSystemUsers(ctx)
	if err != nil {
		a.logger.Errorf("setup check failed: %v", err)
		writeStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}

	writeStatus(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"setup_complete": count > 0,
	})
}

func writeStatus(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
