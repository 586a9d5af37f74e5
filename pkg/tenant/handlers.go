// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/authorization"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/storage"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/pipeline"
)

type API struct {
	service ServiceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewAPI(
	service ServiceInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	return &API{
		service: service,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// RegisterOnboardingEndpoints serves tenant creation and listing. The router
// mounts these tenant-optional: they work from any host, before the caller
// belongs anywhere.
func (a *API) RegisterOnboardingEndpoints(mux chi.Router) {
	mux.Post("/api/v1/tenants", a.createTenant)
	mux.Get("/api/v1/tenants", a.listMyTenants)
}

// RegisterEndpoints serves the tenant-bound management surface.
func (a *API) RegisterEndpoints(mux chi.Router, guard GuardInterface) {
	manage := guard.RequirePermission(authorization.TENANT_MANAGE_PERMISSION)
	invite := guard.RequirePermission(authorization.MEMBER_INVITE_PERMISSION)
	remove := guard.RequirePermission(authorization.MEMBER_REMOVE_PERMISSION)
	assign := guard.RequirePermission(authorization.ROLE_ASSIGN_PERMISSION)

	mux.Route("/api/v1/tenant", func(r chi.Router) {
		r.Get("/", a.getTenant)
		r.With(manage).Patch("/", a.renameTenant)
		r.With(manage).Delete("/", a.deactivateTenant)

		r.Route("/domains", func(r chi.Router) {
			r.Get("/", a.listDomains)
			r.With(manage).Post("/", a.addDomain)
			r.With(manage).Delete("/{domainID}", a.removeDomain)
		})

		r.Route("/members", func(r chi.Router) {
			r.Get("/", a.listMembers)
			r.With(invite).Post("/", a.provisionMember)
			r.With(invite).Post("/invite", a.inviteMember)
			r.With(assign).Put("/{userID}/roles", a.setMemberRoles)
			r.With(remove).Delete("/{userID}", a.removeMember)
		})

		r.With(assign).Post("/roles", a.createRole)
	})
}

func (a *API) createTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.createTenant")
	defer span.End()

	rc, ok := pipeline.FromContext(ctx)
	if !ok || rc.CurrentUser() == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req struct {
		Slug string `json:"slug"`
		Host string `json:"host"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenant, err := a.service.CreateTenant(ctx, req.Slug, req.Host, rc.CurrentUser())
	if err != nil {
		a.serviceError(w, err, "failed to create tenant")
		return
	}

	writeJSON(w, http.StatusCreated, tenant)
}

func (a *API) listMyTenants(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.listMyTenants")
	defer span.End()

	rc, ok := pipeline.FromContext(ctx)
	if !ok || rc.CurrentUser() == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	tenants, err := a.service.ListTenantsByUserID(ctx, rc.CurrentUser())
	if err != nil {
		a.serviceError(w, err, "failed to list tenants")
		return
	}

	writeJSON(w, http.StatusOK, tenants)
}

func (a *API) getTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.getTenant")
	defer span.End()

	rc, ok := pipeline.FromContext(ctx)
	if !ok || rc.CurrentTenant() == nil {
		writeError(w, http.StatusNotFound, "tenant not found")
		return
	}

	writeJSON(w, http.StatusOK, rc.CurrentTenant())
}

func (a *API) renameTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.renameTenant")
	defer span.End()

	rc, _ := pipeline.FromContext(ctx)

	var req struct {
		Slug string `json:"slug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenant, err := a.service.RenameTenant(ctx, rc.CurrentTenant().ID, req.Slug)
	if err != nil {
		a.serviceError(w, err, "failed to rename tenant")
		return
	}

	writeJSON(w, http.StatusOK, tenant)
}

func (a *API) deactivateTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.deactivateTenant")
	defer span.End()

	rc, _ := pipeline.FromContext(ctx)

	if err := a.service.SetTenantStatus(ctx, rc.CurrentTenant().ID, false); err != nil {
		a.serviceError(w, err, "failed to deactivate tenant")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listDomains(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.listDomains")
	defer span.End()

	rc, _ := pipeline.FromContext(ctx)

	domains, err := a.service.ListDomains(ctx, rc.CurrentTenant().ID)
	if err != nil {
		a.serviceError(w, err, "failed to list domains")
		return
	}

	writeJSON(w, http.StatusOK, domains)
}

func (a *API) addDomain(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.addDomain")
	defer span.End()

	rc, _ := pipeline.FromContext(ctx)

	var req struct {
		Host      string `json:"host"`
		IsPrimary bool   `json:"is_primary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	domain, err := a.service.AddDomain(ctx, rc.CurrentTenant().ID, req.Host, req.IsPrimary)
	if err != nil {
		a.serviceError(w, err, "failed to add domain")
		return
	}

	writeJSON(w, http.StatusCreated, domain)
}

func (a *API) removeDomain(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.removeDomain")
	defer span.End()

	rc, _ := pipeline.FromContext(ctx)

	if err := a.service.RemoveDomain(ctx, rc.CurrentTenant().ID, chi.URLParam(r, "domainID")); err != nil {
		a.serviceError(w, err, "failed to remove domain")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.listMembers")
	defer span.End()

	rc, _ := pipeline.FromContext(ctx)

	members, err := a.service.ListMembers(ctx, rc.CurrentTenant().ID)
	if err != nil {
		a.serviceError(w, err, "failed to list members")
		return
	}

	writeJSON(w, http.StatusOK, members)
}

func (a *API) inviteMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.inviteMember")
	defer span.End()

	rc, _ := pipeline.FromContext(ctx)

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := a.service.InviteMember(ctx, rc.CurrentTenant().ID, req.Email, req.Role)
	if err != nil {
		a.serviceError(w, err, "failed to invite member")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"status": "invited",
		"token":  token,
	})
}

func (a *API) provisionMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.provisionMember")
	defer span.End()

	rc, _ := pipeline.FromContext(ctx)

	var req struct {
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.service.ProvisionMember(ctx, rc.CurrentTenant().ID, req.Email, req.Roles); err != nil {
		a.serviceError(w, err, "failed to provision member")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "provisioned"})
}

func (a *API) setMemberRoles(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.setMemberRoles")
	defer span.End()

	rc, _ := pipeline.FromContext(ctx)

	var req struct {
		Roles []string `json:"roles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.service.SetMemberRoles(ctx, rc.CurrentTenant().ID, chi.URLParam(r, "userID"), req.Roles); err != nil {
		a.serviceError(w, err, "failed to set member roles")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) removeMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.removeMember")
	defer span.End()

	rc, _ := pipeline.FromContext(ctx)

	if err := a.service.RemoveMember(ctx, rc.CurrentTenant().ID, chi.URLParam(r, "userID")); err != nil {
		a.serviceError(w, err, "failed to remove member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) createRole(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.createRole")
	defer span.End()

	rc, _ := pipeline.FromContext(ctx)

	var req struct {
		Name        string   `json:"name"`
		Permissions []string `json:"permissions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := a.service.CreateRole(ctx, rc.CurrentTenant().ID, req.Name, req.Permissions)
	if err != nil {
		a.serviceError(w, err, "failed to create role")
		return
	}

	writeJSON(w, http.StatusCreated, role)
}

func (a *API) serviceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidSlug), errors.Is(err, ErrInvalidHost), errors.Is(err, ErrReservedName):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSlugTaken), errors.Is(err, ErrAlreadyMember), errors.Is(err, storage.ErrDuplicateKey):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrLastPrimaryDomain):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrDomainNotFound), errors.Is(err, ErrRoleNotFound), errors.Is(err, ErrUserNotFound), errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInviteInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		a.logger.Errorf("%s: %v", message, err)
		writeError(w, http.StatusInternalServerError, message)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"status":  status,
		"message": message,
	})
}
