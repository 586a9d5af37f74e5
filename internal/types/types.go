// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

type Tenant struct {
	ID             string    `db:"id" json:"id"`
	Slug           string    `db:"slug" json:"slug"`
	IsolationScope string    `db:"isolation_scope" json:"isolation_scope"`
	Enabled        bool      `db:"enabled" json:"enabled"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Domain maps an inbound host to a tenant. A host resolves to at most one
// tenant; a tenant always keeps at least one primary domain.
type Domain struct {
	ID        string    `db:"id" json:"id"`
	Host      string    `db:"host" json:"host"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	IsPrimary bool      `db:"is_primary" json:"is_primary"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type User struct {
	ID           string `db:"id" json:"id"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Verified     bool   `db:"verified" json:"verified"`
	Enabled      bool   `db:"enabled" json:"enabled"`
	// IsSystem marks seeded accounts excluded from setup-completion checks.
	IsSystem  bool      `db:"is_system" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Membership binds a user to a tenant. Roles are attached separately; an
// active membership always holds at least one role.
type Membership struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Role is a named, flat permission bundle. TenantID is empty for
// system-global roles.
type Role struct {
	ID          string   `db:"id" json:"id"`
	TenantID    string   `db:"tenant_id" json:"tenant_id"`
	Name        string   `db:"name" json:"name"`
	Permissions []string `db:"permissions" json:"permissions"`
}

type RefreshToken struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	FamilyID    string     `db:"family_id"`
	TokenHash   string     `db:"token_hash"`
	IssuedAt    time.Time  `db:"issued_at"`
	ExpiresAt   time.Time  `db:"expires_at"`
	RotatedFrom *string    `db:"rotated_from"`
	RevokedAt   *time.Time `db:"revoked_at"`
}

type Invite struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Email     string    `db:"email" json:"email"`
	RoleID    string    `db:"role_id" json:"role_id"`
	TokenHash string    `db:"token_hash" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type TenantUser struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}
