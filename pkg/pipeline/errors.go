// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/db"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/authentication"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/tenancy"
)

// statusFor maps pipeline failures to HTTP status classes. Handlers never see
// these errors raw; the caller only learns the status class and a minimal,
// non-distinguishing message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, tenancy.ErrTenantNotFound):
		return http.StatusNotFound, "tenant not found"
	case errors.Is(err, tenancy.ErrTenantMismatch):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, authentication.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, db.ErrScopeBind):
		return http.StatusServiceUnavailable, "service unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeRejection(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  status,
		"message": message,
	})
}
