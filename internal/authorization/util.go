// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package authorization

const (
	WILDCARD_PERMISSION = "*"

	RESOURCE_CREATE_PERMISSION = "resource:create"
	RESOURCE_READ_PERMISSION   = "resource:read"
	RESOURCE_UPDATE_PERMISSION = "resource:update"
	RESOURCE_DELETE_PERMISSION = "resource:delete"

	ROLE_ASSIGN_PERMISSION   = "role:assign"
	MEMBER_INVITE_PERMISSION = "member:invite"
	MEMBER_REMOVE_PERMISSION = "member:remove"
	TENANT_MANAGE_PERMISSION = "tenant:manage"
)

// grants reports whether a single permission tag satisfies the requested one.
// The wildcard tag satisfies every request.
func grants(held, requested string) bool {
	return held == WILDCARD_PERMISSION || held == requested
}
