// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/authorization"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/db"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/storage"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/authentication"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/tenancy"
)

var (
	ErrInvalidSlug       = errors.New("invalid tenant slug")
	ErrReservedName      = errors.New("name is reserved")
	ErrInvalidHost       = errors.New("invalid domain host")
	ErrLastPrimaryDomain = errors.New("cannot remove the last primary domain")
	ErrDomainNotFound    = errors.New("domain not found in tenant")
	ErrRoleNotFound      = errors.New("role not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInviteInvalid     = errors.New("invitation is invalid or expired")
	ErrAlreadyMember     = errors.New("user is already a member")
	ErrSlugTaken         = errors.New("tenant slug already taken")
)

// Names that never resolve to a tenant. Rejected at creation time so that
// resolution stays a pure lookup.
var reservedNames = map[string]struct{}{
	"www":    {},
	"admin":  {},
	"api":    {},
	"mail":   {},
	"static": {},
	"assets": {},
	"status": {},
}

const (
	OwnerRoleName  = "owner"
	MemberRoleName = "member"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage            StorageInterface
	db                 db.DBClientInterface
	hosts              HostInvalidatorInterface
	invitationLifetime time.Duration
	validate           *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// CreateTenant onboards a tenant: the tenant row, its primary domain, the
// default roles, and the creating user's owner membership, in one
// transaction. Either everything exists afterwards or nothing does.
func (s *Service) CreateTenant(ctx context.Context, slug, host, ownerUserID string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.CreateTenant")
	defer span.End()

	slug = strings.ToLower(strings.TrimSpace(slug))
	if err := s.validateSlug(slug); err != nil {
		return nil, err
	}
	host = tenancy.NormalizeHost(host)
	if err := s.validateHost(host); err != nil {
		return nil, err
	}

	// The ID is generated up front so the whole onboarding transaction can
	// run under the new tenant's isolation scope.
	tenantID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	var created *types.Tenant
	scope := db.Scope{TenantID: tenantID.String(), UserID: ownerUserID}
	err = s.db.WithTenantScope(ctx, scope, func(ctx context.Context) error {
		var err error
		created, err = s.storage.CreateTenant(ctx, &types.Tenant{
			ID:             tenantID.String(),
			Slug:           slug,
			IsolationScope: isolationScopeFor(slug),
			Enabled:        true,
		})
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				return ErrSlugTaken
			}
			return err
		}

		if _, err := s.storage.CreateDomain(ctx, &types.Domain{
			Host:      host,
			TenantID:  created.ID,
			IsPrimary: true,
		}); err != nil {
			return fmt.Errorf("failed to create primary domain: %w", err)
		}

		ownerRole, err := s.storage.CreateRole(ctx, &types.Role{
			TenantID:    created.ID,
			Name:        OwnerRoleName,
			Permissions: []string{authorization.WILDCARD_PERMISSION},
		})
		if err != nil {
			return fmt.Errorf("failed to create owner role: %w", err)
		}
		if _, err := s.storage.CreateRole(ctx, &types.Role{
			TenantID:    created.ID,
			Name:        MemberRoleName,
			Permissions: []string{authorization.RESOURCE_READ_PERMISSION},
		}); err != nil {
			return fmt.Errorf("failed to create member role: %w", err)
		}

		if _, err := s.storage.AddMember(ctx, created.ID, ownerUserID, []string{ownerRole.ID}); err != nil {
			return fmt.Errorf("failed to add owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *Service) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.GetTenantByID")
	defer span.End()

	return s.storage.GetTenantByID(ctx, id)
}

func (s *Service) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListTenants")
	defer span.End()

	return s.storage.ListTenants(ctx)
}

func (s *Service) ListTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListTenantsByUserID")
	defer span.End()

	// The listing spans every tenant the user belongs to, so it runs under a
	// user-only scope regardless of which host served the request.
	var tenants []*types.Tenant
	err := s.db.WithTenantScope(ctx, db.Scope{UserID: userID}, func(ctx context.Context) error {
		var err error
		tenants, err = s.storage.ListActiveTenantsByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

// RenameTenant updates the slug and the derived isolation scope label
// together. Row policies key on the immutable tenant ID, so no tenant-owned
// row needs rewriting.
func (s *Service) RenameTenant(ctx context.Context, id, slug string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.RenameTenant")
	defer span.End()

	slug = strings.ToLower(strings.TrimSpace(slug))
	if err := s.validateSlug(slug); err != nil {
		return nil, err
	}

	if err := s.storage.RenameTenant(ctx, id, slug, isolationScopeFor(slug)); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	return s.storage.GetTenantByID(ctx, id)
}

func (s *Service) SetTenantStatus(ctx context.Context, id string, enabled bool) error {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.SetTenantStatus")
	defer span.End()

	if err := s.storage.SetTenantStatus(ctx, id, enabled); err != nil {
		return err
	}

	// Cached host mappings must not outlive a deactivation.
	domains, err := s.storage.ListDomainsByTenantID(ctx, id)
	if err != nil {
		s.logger.Warnf("failed to list domains for cache invalidation: %v", err)
		return nil
	}
	for _, d := range domains {
		s.hosts.InvalidateHost(ctx, d.Host)
	}
	return nil
}

func (s *Service) AddDomain(ctx context.Context, tenantID, host string, isPrimary bool) (*types.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.AddDomain")
	defer span.End()

	host = tenancy.NormalizeHost(host)
	if err := s.validateHost(host); err != nil {
		return nil, err
	}

	domain, err := s.storage.CreateDomain(ctx, &types.Domain{
		Host:      host,
		TenantID:  tenantID,
		IsPrimary: isPrimary,
	})
	if err != nil {
		return nil, err
	}

	s.hosts.InvalidateHost(ctx, host)
	return domain, nil
}

func (s *Service) RemoveDomain(ctx context.Context, tenantID, domainID string) error {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.RemoveDomain")
	defer span.End()

	domains, err := s.storage.ListDomainsByTenantID(ctx, tenantID)
	if err != nil {
		return err
	}

	var target *types.Domain
	primaries := 0
	for _, d := range domains {
		if d.IsPrimary {
			primaries++
		}
		if d.ID == domainID {
			target = d
		}
	}
	if target == nil {
		return ErrDomainNotFound
	}
	// A tenant always keeps at least one primary domain.
	if target.IsPrimary && primaries <= 1 {
		return ErrLastPrimaryDomain
	}

	if err := s.storage.DeleteDomain(ctx, domainID); err != nil {
		return err
	}

	s.hosts.InvalidateHost(ctx, target.Host)
	return nil
}

func (s *Service) ListDomains(ctx context.Context, tenantID string) ([]*types.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListDomains")
	defer span.End()

	return s.storage.ListDomainsByTenantID(ctx, tenantID)
}

// InviteMember creates a single-use invitation and returns the raw token for
// out-of-band delivery. Only the token hash is stored.
func (s *Service) InviteMember(ctx context.Context, tenantID, email, roleName string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.InviteMember")
	defer span.End()

	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("invalid email: %w", err)
	}

	role, err := s.storage.GetRoleByName(ctx, tenantID, roleName)
	if err != nil {
		if storage.IsNotFoundError(err) {
			return "", ErrRoleNotFound
		}
		return "", err
	}

	token, err := authentication.GenerateOpaqueToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate invite token: %w", err)
	}

	if _, err := s.storage.CreateInvite(ctx, &types.Invite{
		TenantID:  tenantID,
		Email:     strings.ToLower(email),
		RoleID:    role.ID,
		TokenHash: authentication.HashToken(token),
		ExpiresAt: time.Now().UTC().Add(s.invitationLifetime),
	}); err != nil {
		return "", fmt.Errorf("failed to store invite: %w", err)
	}

	return token, nil
}

// AcceptInvite consumes an invitation and creates the membership it
// promised. Expired or unknown tokens are indistinguishable to the caller.
func (s *Service) AcceptInvite(ctx context.Context, rawToken, userID string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.AcceptInvite")
	defer span.End()

	// The token arrives before any tenant is known, so the lookup runs under
	// a user-only scope even when the request came in on a tenant host.
	var invite *types.Invite
	lookupErr := s.db.WithTenantScope(ctx, db.Scope{UserID: userID}, func(ctx context.Context) error {
		found, err := s.storage.GetInviteByTokenHash(ctx, authentication.HashToken(rawToken))
		if err != nil {
			return err
		}
		if time.Now().After(found.ExpiresAt) {
			if err := s.storage.DeleteInvite(ctx, found.ID); err != nil {
				s.logger.Warnf("failed to delete expired invite %s: %v", found.ID, err)
			}
			return storage.ErrNotFound
		}
		invite = found
		return nil
	})
	if lookupErr != nil {
		if storage.IsNotFoundError(lookupErr) {
			return nil, ErrInviteInvalid
		}
		return nil, lookupErr
	}

	// The invite itself authorizes the membership, so the write runs under
	// the invite's tenant scope.
	scope := db.Scope{TenantID: invite.TenantID, UserID: userID}
	err := s.db.WithTenantScope(ctx, scope, func(ctx context.Context) error {
		if _, err := s.storage.AddMember(ctx, invite.TenantID, userID, []string{invite.RoleID}); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				return ErrAlreadyMember
			}
			return err
		}
		return s.storage.DeleteInvite(ctx, invite.ID)
	})
	if err != nil {
		return nil, err
	}

	return invite, nil
}

func (s *Service) ProvisionMember(ctx context.Context, tenantID, email string, roleNames []string) error {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ProvisionMember")
	defer span.End()

	user, err := s.storage.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if storage.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return err
	}

	roleIDs, err := s.resolveRoleIDs(ctx, tenantID, roleNames)
	if err != nil {
		return err
	}

	if _, err := s.storage.AddMember(ctx, tenantID, user.ID, roleIDs); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return ErrAlreadyMember
		}
		return err
	}
	return nil
}

func (s *Service) ListMembers(ctx context.Context, tenantID string) ([]*types.TenantUser, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListMembers")
	defer span.End()

	members, err := s.storage.ListMembersByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var users []*types.TenantUser
	for _, m := range members {
		email := "unknown"
		if user, err := s.storage.GetUserByID(ctx, m.UserID); err == nil {
			email = user.Email
		} else {
			s.logger.Warnf("failed to get user %s: %v", m.UserID, err)
		}

		var roleNames []string
		if roles, err := s.storage.ListRolesByMembership(ctx, tenantID, m.UserID); err == nil {
			for _, r := range roles {
				roleNames = append(roleNames, r.Name)
			}
		}

		users = append(users, &types.TenantUser{
			UserID: m.UserID,
			Email:  email,
			Roles:  roleNames,
		})
	}

	return users, nil
}

func (s *Service) SetMemberRoles(ctx context.Context, tenantID, userID string, roleNames []string) error {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.SetMemberRoles")
	defer span.End()

	roleIDs, err := s.resolveRoleIDs(ctx, tenantID, roleNames)
	if err != nil {
		return err
	}

	return s.storage.SetMemberRoles(ctx, tenantID, userID, roleIDs)
}

func (s *Service) RemoveMember(ctx context.Context, tenantID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.RemoveMember")
	defer span.End()

	return s.storage.RemoveMember(ctx, tenantID, userID)
}

func (s *Service) CreateRole(ctx context.Context, tenantID, name string, permissions []string) (*types.Role, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.CreateRole")
	defer span.End()

	if err := s.validate.Var(name, "required,min=2,max=64"); err != nil {
		return nil, fmt.Errorf("invalid role name: %w", err)
	}

	return s.storage.CreateRole(ctx, &types.Role{
		TenantID:    tenantID,
		Name:        name,
		Permissions: permissions,
	})
}

func (s *Service) resolveRoleIDs(ctx context.Context, tenantID string, roleNames []string) ([]string, error) {
	if len(roleNames) == 0 {
		return nil, ErrRoleNotFound
	}
	roleIDs := make([]string, 0, len(roleNames))
	for _, name := range roleNames {
		role, err := s.storage.GetRoleByName(ctx, tenantID, name)
		if err != nil {
			if storage.IsNotFoundError(err) {
				return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
			}
			return nil, err
		}
		roleIDs = append(roleIDs, role.ID)
	}
	return roleIDs, nil
}

func (s *Service) validateSlug(slug string) error {
	if err := s.validate.Var(slug, "required,min=2,max=63,hostname_rfc1123"); err != nil {
		return ErrInvalidSlug
	}
	if _, reserved := reservedNames[slug]; reserved {
		return ErrReservedName
	}
	return nil
}

func (s *Service) validateHost(host string) error {
	if err := s.validate.Var(host, "required,fqdn"); err != nil {
		return ErrInvalidHost
	}
	if _, reserved := reservedNames[strings.SplitN(host, ".", 2)[0]]; reserved {
		return ErrReservedName
	}
	return nil
}

func isolationScopeFor(slug string) string {
	return "tenant_" + strings.ReplaceAll(slug, "-", "_")
}

func NewService(
	storage StorageInterface,
	dbClient db.DBClientInterface,
	hosts HostInvalidatorInterface,
	invitationLifetime time.Duration,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:            storage,
		db:                 dbClient,
		hosts:              hosts,
		invitationLifetime: invitationLifetime,
		validate:           validator.New(),
		tracer:             tracer,
		monitor:            monitor,
		logger:             logger,
	}
}
