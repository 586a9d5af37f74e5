// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_roles.go -source=./interfaces.go RoleReaderInterface

func role(name string, permissions ...string) *types.Role {
	return &types.Role{ID: "role-" + name, Name: name, Permissions: permissions}
}

func TestAuthorizer_Check(t *testing.T) {
	tenantID := "tenant-123"
	userID := "user-456"

	testCases := []struct {
		name           string
		permission     string
		setupMocks     func(*MockRoleReaderInterface)
		expectedResult bool
		expectedErr    bool
	}{
		{
			name:       "success - direct permission",
			permission: RESOURCE_READ_PERMISSION,
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return([]*types.Role{role("viewer", RESOURCE_READ_PERMISSION)}, nil)
			},
			expectedResult: true,
		},
		{
			name:       "success - wildcard grants everything",
			permission: TENANT_MANAGE_PERMISSION,
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return([]*types.Role{role("superadmin", WILDCARD_PERMISSION)}, nil)
			},
			expectedResult: true,
		},
		{
			name:       "success - union across roles",
			permission: RESOURCE_DELETE_PERMISSION,
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return([]*types.Role{
						role("viewer", RESOURCE_READ_PERMISSION),
						role("cleaner", RESOURCE_DELETE_PERMISSION),
					}, nil)
			},
			expectedResult: true,
		},
		{
			name:       "denied - permission not held",
			permission: ROLE_ASSIGN_PERMISSION,
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return([]*types.Role{role("viewer", RESOURCE_READ_PERMISSION)}, nil)
			},
			expectedResult: false,
		},
		{
			name:       "denied - no roles",
			permission: RESOURCE_READ_PERMISSION,
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return([]*types.Role{}, nil)
			},
			expectedResult: false,
		},
		{
			name:       "denied - wildcard held is not matched by prefix",
			permission: "resource:*",
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return([]*types.Role{role("viewer", RESOURCE_READ_PERMISSION)}, nil)
			},
			expectedResult: false,
		},
		{
			name:       "error - storage error",
			permission: RESOURCE_READ_PERMISSION,
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return(nil, errors.New("storage error"))
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRoles := NewMockRoleReaderInterface(ctrl)
			tc.setupMocks(mockRoles)

			a := NewAuthorizer(mockRoles, tracing.NewNoopTracer(), monitoring.NewNoopMonitor(), logging.NewNoopLogger())

			result, err := a.Check(context.Background(), tenantID, userID, tc.permission)

			if tc.expectedErr {
				if err == nil {
					t.Error("expected error but got none")
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if result != tc.expectedResult {
				t.Errorf("expected result %v, got %v", tc.expectedResult, result)
			}
		})
	}
}

func TestAuthorizer_Permissions(t *testing.T) {
	tenantID := "tenant-123"
	userID := "user-456"

	testCases := []struct {
		name           string
		setupMocks     func(*MockRoleReaderInterface)
		expectedResult []string
		expectedErr    bool
	}{
		{
			name: "success - union is deduplicated and sorted",
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return([]*types.Role{
						role("editor", RESOURCE_UPDATE_PERMISSION, RESOURCE_READ_PERMISSION),
						role("viewer", RESOURCE_READ_PERMISSION),
					}, nil)
			},
			expectedResult: []string{RESOURCE_READ_PERMISSION, RESOURCE_UPDATE_PERMISSION},
		},
		{
			name: "success - no membership yields empty set",
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return([]*types.Role{}, nil)
			},
			expectedResult: []string{},
		},
		{
			name: "error - storage error",
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return(nil, errors.New("storage error"))
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRoles := NewMockRoleReaderInterface(ctrl)
			tc.setupMocks(mockRoles)

			a := NewAuthorizer(mockRoles, tracing.NewNoopTracer(), monitoring.NewNoopMonitor(), logging.NewNoopLogger())

			result, err := a.Permissions(context.Background(), tenantID, userID)

			if tc.expectedErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(result, tc.expectedResult) {
				t.Errorf("expected permissions %v, got %v", tc.expectedResult, result)
			}
		})
	}
}

func TestAuthorizer_FilterPermissions(t *testing.T) {
	tenantID := "tenant-123"
	userID := "user-456"
	requested := []string{RESOURCE_READ_PERMISSION, RESOURCE_UPDATE_PERMISSION, TENANT_MANAGE_PERMISSION}

	testCases := []struct {
		name           string
		setupMocks     func(*MockRoleReaderInterface)
		expectedResult []string
		expectedErr    bool
	}{
		{
			name: "success - filters to held subset",
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return([]*types.Role{role("editor", RESOURCE_READ_PERMISSION, RESOURCE_UPDATE_PERMISSION)}, nil)
			},
			expectedResult: []string{RESOURCE_READ_PERMISSION, RESOURCE_UPDATE_PERMISSION},
		},
		{
			name: "success - wildcard passes everything through",
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return([]*types.Role{role("superadmin", WILDCARD_PERMISSION)}, nil)
			},
			expectedResult: requested,
		},
		{
			name: "success - no overlap",
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return([]*types.Role{role("inviter", MEMBER_INVITE_PERMISSION)}, nil)
			},
			expectedResult: nil,
		},
		{
			name: "error - storage error",
			setupMocks: func(mockRoles *MockRoleReaderInterface) {
				mockRoles.EXPECT().ListRolesByMembership(gomock.Any(), tenantID, userID).
					Return(nil, errors.New("storage error"))
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRoles := NewMockRoleReaderInterface(ctrl)
			tc.setupMocks(mockRoles)

			a := NewAuthorizer(mockRoles, tracing.NewNoopTracer(), monitoring.NewNoopMonitor(), logging.NewNoopLogger())

			result, err := a.FilterPermissions(context.Background(), tenantID, userID, requested)

			if tc.expectedErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(result, tc.expectedResult) {
				t.Errorf("expected permissions %v, got %v", tc.expectedResult, result)
			}
		})
	}
}
