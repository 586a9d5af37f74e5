// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

type UserStoreInterface interface {
	CreateUser(ctx context.Context, user *types.User) (*types.User, error)
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
}

// InviteAcceptorInterface lets registration consume an invitation token in
// the same request that creates the account.
type InviteAcceptorInterface interface {
	AcceptInvite(ctx context.Context, rawToken, userID string) (*types.Invite, error)
}
