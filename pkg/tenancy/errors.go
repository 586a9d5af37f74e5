// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package tenancy

import "errors"

var (
	// ErrTenantNotFound covers hosts matching no domain and tenants that are
	// missing or deactivated. The three cases are indistinguishable to the
	// caller on purpose.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrTenantMismatch is returned when a caller supplies a tenant selector
	// without holding an active membership in that tenant.
	ErrTenantMismatch = errors.New("tenant selector does not match an active membership")
)
