// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

type AuthorizerInterface interface {
	// Check reports whether the user holds the requested permission inside the
	// tenant, either directly or through the wildcard tag.
	Check(ctx context.Context, tenantID, userID, permission string) (bool, error)
	// Permissions returns the union of permission tags across every role the
	// user holds inside the tenant. A user with no membership gets an empty set.
	Permissions(ctx context.Context, tenantID, userID string) ([]string, error)
	FilterPermissions(ctx context.Context, tenantID, userID string, permissions []string) ([]string, error)
}

type RoleReaderInterface interface {
	ListRolesByMembership(ctx context.Context, tenantID, userID string) ([]*types.Role, error)
}
