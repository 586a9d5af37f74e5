// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"slices"
	"sort"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/storage"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
)

var _ AuthorizerInterface = (*Authorizer)(nil)

type Authorizer struct {
	roles RoleReaderInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *Authorizer) Check(ctx context.Context, tenantID, userID, permission string) (bool, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.Check")
	defer span.End()

	roles, err := a.roles.ListRolesByMembership(ctx, tenantID, userID)
	if err != nil {
		if storage.IsNotFoundError(err) {
			a.logger.Security().AuthzFailure(userID, permission)
			return false, nil
		}
		return false, err
	}

	for _, role := range roles {
		for _, held := range role.Permissions {
			if grants(held, permission) {
				return true, nil
			}
		}
	}

	a.logger.Security().AuthzFailure(userID, permission)
	return false, nil
}

func (a *Authorizer) Permissions(ctx context.Context, tenantID, userID string) ([]string, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.Permissions")
	defer span.End()

	roles, err := a.roles.ListRolesByMembership(ctx, tenantID, userID)
	if err != nil {
		if storage.IsNotFoundError(err) {
			return []string{}, nil
		}
		return nil, err
	}

	set := make(map[string]struct{})
	for _, role := range roles {
		for _, p := range role.Permissions {
			set[p] = struct{}{}
		}
	}

	ret := make([]string, 0, len(set))
	for p := range set {
		ret = append(ret, p)
	}
	sort.Strings(ret)
	return ret, nil
}

func (a *Authorizer) FilterPermissions(ctx context.Context, tenantID, userID string, permissions []string) ([]string, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.FilterPermissions")
	defer span.End()

	held, err := a.Permissions(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if slices.Contains(held, WILDCARD_PERMISSION) {
		return permissions, nil
	}

	var ret []string
	for _, p := range permissions {
		if slices.Contains(held, p) {
			ret = append(ret, p)
		}
	}
	return ret, nil
}

func NewAuthorizer(roles RoleReaderInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	authorizer := new(Authorizer)
	authorizer.roles = roles
	authorizer.tracer = tracer
	authorizer.monitor = monitor
	authorizer.logger = logger

	return authorizer
}
