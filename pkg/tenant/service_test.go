// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/authorization"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/db"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/storage"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/authentication"
)

//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_storage.go -source=./interfaces.go StorageInterface

// passthroughDB runs transaction bodies directly; service tests only care
// that storage calls happen inside the callback.
type passthroughDB struct{}

func (passthroughDB) Statement(context.Context) sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}
func (passthroughDB) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
func (passthroughDB) WithTenantScope(ctx context.Context, _ db.Scope, fn func(context.Context) error) error {
	return fn(ctx)
}
func (passthroughDB) WithPrivilegedScope(ctx context.Context, _, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}
func (passthroughDB) Ping(context.Context) error { return nil }
func (passthroughDB) Close()                     {}

type recordingInvalidator struct {
	hosts []string
}

func (r *recordingInvalidator) InvalidateHost(_ context.Context, host string) {
	r.hosts = append(r.hosts, host)
}

func newTestService(t *testing.T) (*Service, *MockStorageInterface, *recordingInvalidator) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockStorage := NewMockStorageInterface(ctrl)
	hosts := &recordingInvalidator{}
	svc := NewService(
		mockStorage,
		passthroughDB{},
		hosts,
		72*time.Hour,
		tracing.NewNoopTracer(),
		monitoring.NewNoopMonitor(),
		logging.NewNoopLogger(),
	)
	return svc, mockStorage, hosts
}

func TestCreateTenant(t *testing.T) {
	t.Run("creates tenant with primary domain, default roles and owner membership", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		var tenantID string
		mockStorage.EXPECT().
			CreateTenant(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tenant *types.Tenant) (*types.Tenant, error) {
				assert.Equal(t, "acme-corp", tenant.Slug)
				assert.Equal(t, "tenant_acme_corp", tenant.IsolationScope)
				assert.True(t, tenant.Enabled)
				assert.NotEmpty(t, tenant.ID)
				tenantID = tenant.ID
				return tenant, nil
			})
		mockStorage.EXPECT().
			CreateDomain(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, domain *types.Domain) (*types.Domain, error) {
				assert.Equal(t, "acme.example.com", domain.Host)
				assert.Equal(t, tenantID, domain.TenantID)
				assert.True(t, domain.IsPrimary)
				domain.ID = "domain-1"
				return domain, nil
			})
		mockStorage.EXPECT().
			CreateRole(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, role *types.Role) (*types.Role, error) {
				assert.Equal(t, OwnerRoleName, role.Name)
				assert.Equal(t, []string{authorization.WILDCARD_PERMISSION}, role.Permissions)
				role.ID = "role-owner"
				return role, nil
			})
		mockStorage.EXPECT().
			CreateRole(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, role *types.Role) (*types.Role, error) {
				assert.Equal(t, MemberRoleName, role.Name)
				role.ID = "role-member"
				return role, nil
			})
		mockStorage.EXPECT().
			AddMember(gomock.Any(), gomock.Any(), "user-1", []string{"role-owner"}).
			DoAndReturn(func(_ context.Context, tid, _ string, _ []string) (string, error) {
				assert.Equal(t, tenantID, tid)
				return "membership-1", nil
			})

		tenant, err := svc.CreateTenant(context.Background(), "Acme-Corp", "ACME.example.com:443", "user-1")

		require.NoError(t, err)
		require.NotNil(t, tenant)
		assert.Equal(t, tenantID, tenant.ID)
	})

	t.Run("rejects reserved slug", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.CreateTenant(context.Background(), "admin", "admin.example.com", "user-1")

		assert.ErrorIs(t, err, ErrReservedName)
	})

	t.Run("rejects malformed slug", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.CreateTenant(context.Background(), "no spaces allowed", "acme.example.com", "user-1")

		assert.ErrorIs(t, err, ErrInvalidSlug)
	})

	t.Run("rejects bare host", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.CreateTenant(context.Background(), "acme", "localhost", "user-1")

		assert.ErrorIs(t, err, ErrInvalidHost)
	})

	t.Run("maps duplicate slug to conflict", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		mockStorage.EXPECT().
			CreateTenant(gomock.Any(), gomock.Any()).
			Return(nil, storage.ErrDuplicateKey)

		_, err := svc.CreateTenant(context.Background(), "acme", "acme.example.com", "user-1")

		assert.ErrorIs(t, err, ErrSlugTaken)
	})
}

func TestRenameTenant(t *testing.T) {
	t.Run("relabels isolation scope alongside the slug", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		mockStorage.EXPECT().
			RenameTenant(gomock.Any(), "tenant-1", "new-name", "tenant_new_name").
			Return(nil)
		mockStorage.EXPECT().
			GetTenantByID(gomock.Any(), "tenant-1").
			Return(&types.Tenant{ID: "tenant-1", Slug: "new-name"}, nil)

		tenant, err := svc.RenameTenant(context.Background(), "tenant-1", "New-Name")

		require.NoError(t, err)
		assert.Equal(t, "new-name", tenant.Slug)
	})

	t.Run("rejects reserved slug without touching storage", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.RenameTenant(context.Background(), "tenant-1", "www")

		assert.ErrorIs(t, err, ErrReservedName)
	})
}

func TestSetTenantStatus(t *testing.T) {
	t.Run("invalidates every cached host on deactivation", func(t *testing.T) {
		svc, mockStorage, hosts := newTestService(t)

		mockStorage.EXPECT().
			SetTenantStatus(gomock.Any(), "tenant-1", false).
			Return(nil)
		mockStorage.EXPECT().
			ListDomainsByTenantID(gomock.Any(), "tenant-1").
			Return([]*types.Domain{
				{ID: "domain-1", Host: "acme.example.com"},
				{ID: "domain-2", Host: "www.acme.io"},
			}, nil)

		err := svc.SetTenantStatus(context.Background(), "tenant-1", false)

		require.NoError(t, err)
		assert.Equal(t, []string{"acme.example.com", "www.acme.io"}, hosts.hosts)
	})
}

func TestRemoveDomain(t *testing.T) {
	domains := []*types.Domain{
		{ID: "domain-1", Host: "acme.example.com", IsPrimary: true},
		{ID: "domain-2", Host: "alt.example.com", IsPrimary: false},
	}

	t.Run("removes a secondary domain and invalidates its host", func(t *testing.T) {
		svc, mockStorage, hosts := newTestService(t)

		mockStorage.EXPECT().
			ListDomainsByTenantID(gomock.Any(), "tenant-1").
			Return(domains, nil)
		mockStorage.EXPECT().
			DeleteDomain(gomock.Any(), "domain-2").
			Return(nil)

		err := svc.RemoveDomain(context.Background(), "tenant-1", "domain-2")

		require.NoError(t, err)
		assert.Equal(t, []string{"alt.example.com"}, hosts.hosts)
	})

	t.Run("refuses to remove the last primary domain", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		mockStorage.EXPECT().
			ListDomainsByTenantID(gomock.Any(), "tenant-1").
			Return(domains, nil)

		err := svc.RemoveDomain(context.Background(), "tenant-1", "domain-1")

		assert.ErrorIs(t, err, ErrLastPrimaryDomain)
	})

	t.Run("unknown domain", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		mockStorage.EXPECT().
			ListDomainsByTenantID(gomock.Any(), "tenant-1").
			Return(domains, nil)

		err := svc.RemoveDomain(context.Background(), "tenant-1", "domain-9")

		assert.ErrorIs(t, err, ErrDomainNotFound)
	})
}

func TestInviteMember(t *testing.T) {
	t.Run("stores the token hash and returns the raw token", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		mockStorage.EXPECT().
			GetRoleByName(gomock.Any(), "tenant-1", "member").
			Return(&types.Role{ID: "role-member", Name: "member"}, nil)
		var storedHash string
		mockStorage.EXPECT().
			CreateInvite(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, invite *types.Invite) (*types.Invite, error) {
				assert.Equal(t, "tenant-1", invite.TenantID)
				assert.Equal(t, "new@example.com", invite.Email)
				assert.Equal(t, "role-member", invite.RoleID)
				assert.WithinDuration(t, time.Now().Add(72*time.Hour), invite.ExpiresAt, time.Minute)
				storedHash = invite.TokenHash
				return invite, nil
			})

		token, err := svc.InviteMember(context.Background(), "tenant-1", "New@example.com", "member")

		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.NotEqual(t, token, storedHash)
		assert.Equal(t, authentication.HashToken(token), storedHash)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		mockStorage.EXPECT().
			GetRoleByName(gomock.Any(), "tenant-1", "ghost").
			Return(nil, storage.ErrNotFound)

		_, err := svc.InviteMember(context.Background(), "tenant-1", "new@example.com", "ghost")

		assert.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("invalid email", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.InviteMember(context.Background(), "tenant-1", "not-an-email", "member")

		assert.Error(t, err)
	})
}

func TestAcceptInvite(t *testing.T) {
	t.Run("creates the membership and consumes the invite", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		token, err := authentication.GenerateOpaqueToken()
		require.NoError(t, err)

		mockStorage.EXPECT().
			GetInviteByTokenHash(gomock.Any(), authentication.HashToken(token)).
			Return(&types.Invite{
				ID:        "invite-1",
				TenantID:  "tenant-1",
				RoleID:    "role-member",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil)
		mockStorage.EXPECT().
			AddMember(gomock.Any(), "tenant-1", "user-2", []string{"role-member"}).
			Return("membership-2", nil)
		mockStorage.EXPECT().
			DeleteInvite(gomock.Any(), "invite-1").
			Return(nil)

		invite, err := svc.AcceptInvite(context.Background(), token, "user-2")

		require.NoError(t, err)
		assert.Equal(t, "tenant-1", invite.TenantID)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		mockStorage.EXPECT().
			GetInviteByTokenHash(gomock.Any(), gomock.Any()).
			Return(nil, storage.ErrNotFound)

		_, err := svc.AcceptInvite(context.Background(), "bogus", "user-2")

		assert.ErrorIs(t, err, ErrInviteInvalid)
	})

	t.Run("expired invite is deleted and rejected", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		mockStorage.EXPECT().
			GetInviteByTokenHash(gomock.Any(), gomock.Any()).
			Return(&types.Invite{
				ID:        "invite-1",
				TenantID:  "tenant-1",
				ExpiresAt: time.Now().Add(-time.Hour),
			}, nil)
		mockStorage.EXPECT().
			DeleteInvite(gomock.Any(), "invite-1").
			Return(nil)

		_, err := svc.AcceptInvite(context.Background(), "stale", "user-2")

		assert.ErrorIs(t, err, ErrInviteInvalid)
	})

	t.Run("existing member", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		mockStorage.EXPECT().
			GetInviteByTokenHash(gomock.Any(), gomock.Any()).
			Return(&types.Invite{
				ID:        "invite-1",
				TenantID:  "tenant-1",
				RoleID:    "role-member",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil)
		mockStorage.EXPECT().
			AddMember(gomock.Any(), "tenant-1", "user-2", []string{"role-member"}).
			Return("", storage.ErrDuplicateKey)

		_, err := svc.AcceptInvite(context.Background(), "token", "user-2")

		assert.ErrorIs(t, err, ErrAlreadyMember)
	})
}

func TestProvisionMember(t *testing.T) {
	t.Run("resolves roles by name and adds the membership", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		mockStorage.EXPECT().
			GetUserByEmail(gomock.Any(), "new@example.com").
			Return(&types.User{ID: "user-2", Email: "new@example.com"}, nil)
		mockStorage.EXPECT().
			GetRoleByName(gomock.Any(), "tenant-1", "member").
			Return(&types.Role{ID: "role-member"}, nil)
		mockStorage.EXPECT().
			AddMember(gomock.Any(), "tenant-1", "user-2", []string{"role-member"}).
			Return("membership-2", nil)

		err := svc.ProvisionMember(context.Background(), "tenant-1", "New@example.com", []string{"member"})

		require.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		mockStorage.EXPECT().
			GetUserByEmail(gomock.Any(), "ghost@example.com").
			Return(nil, storage.ErrNotFound)

		err := svc.ProvisionMember(context.Background(), "tenant-1", "ghost@example.com", []string{"member"})

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("membership without roles is rejected", func(t *testing.T) {
		svc, mockStorage, _ := newTestService(t)

		mockStorage.EXPECT().
			GetUserByEmail(gomock.Any(), "new@example.com").
			Return(&types.User{ID: "user-2"}, nil)

		err := svc.ProvisionMember(context.Background(), "tenant-1", "new@example.com", nil)

		assert.ErrorIs(t, err, ErrRoleNotFound)
	})
}

func TestListMembers(t *testing.T) {
	svc, mockStorage, _ := newTestService(t)

	mockStorage.EXPECT().
		ListMembersByTenantID(gomock.Any(), "tenant-1").
		Return([]*types.Membership{
			{ID: "membership-1", TenantID: "tenant-1", UserID: "user-1"},
		}, nil)
	mockStorage.EXPECT().
		GetUserByID(gomock.Any(), "user-1").
		Return(&types.User{ID: "user-1", Email: "owner@example.com"}, nil)
	mockStorage.EXPECT().
		ListRolesByMembership(gomock.Any(), "tenant-1", "user-1").
		Return([]*types.Role{{ID: "role-owner", Name: "owner"}}, nil)

	members, err := svc.ListMembers(context.Background(), "tenant-1")

	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "owner@example.com", members[0].Email)
	assert.Equal(t, []string{"owner"}, members[0].Roles)
}
