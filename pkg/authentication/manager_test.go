// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/storage"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_interfaces.go -source=./interfaces.go

func newTestManager(signer SignerInterface, tokens TokenStoreInterface) *SessionManager {
	return NewSessionManager(signer, tokens, 30*24*time.Hour,
		tracing.NewNoopTracer(), monitoring.NewNoopMonitor(), logging.NewNoopLogger())
}

func TestSessionManager_Issue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSigner := NewMockSignerInterface(ctrl)
	mockTokens := NewMockTokenStoreInterface(ctrl)

	mockSigner.EXPECT().Sign("user-123").Return("signed-access", nil)

	var created *types.RefreshToken
	mockTokens.EXPECT().CreateRefreshToken(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tk *types.RefreshToken) (*types.RefreshToken, error) {
			created = tk
			return tk, nil
		})

	m := newTestManager(mockSigner, mockTokens)

	pair, err := m.Issue(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pair.AccessToken != "signed-access" {
		t.Errorf("expected access token signed-access, got %q", pair.AccessToken)
	}
	if pair.RefreshToken == "" {
		t.Error("expected a refresh token")
	}
	if created.UserID != "user-123" {
		t.Errorf("expected stored user ID user-123, got %q", created.UserID)
	}
	if created.FamilyID == "" {
		t.Error("expected a fresh token family")
	}
	if created.RotatedFrom != nil {
		t.Error("expected first token of a family not to be a rotation")
	}
	if created.TokenHash != HashToken(pair.RefreshToken) {
		t.Error("expected stored hash to match the issued refresh token")
	}
	if created.TokenHash == pair.RefreshToken {
		t.Error("refresh token must never be stored in plaintext")
	}
}

func TestSessionManager_Issue_SignError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSigner := NewMockSignerInterface(ctrl)
	mockTokens := NewMockTokenStoreInterface(ctrl)

	mockSigner.EXPECT().Sign("user-123").Return("", errors.New("sign error"))

	m := newTestManager(mockSigner, mockTokens)

	if _, err := m.Issue(context.Background(), "user-123"); err == nil {
		t.Error("expected error but got none")
	}
}

func TestSessionManager_Refresh(t *testing.T) {
	userID := "user-123"
	familyID := "family-1"
	raw, err := GenerateOpaqueToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testCases := []struct {
		name        string
		setupMocks  func(*MockSignerInterface, *MockTokenStoreInterface)
		expectedErr error
	}{
		{
			name: "success - rotates within the family",
			setupMocks: func(mockSigner *MockSignerInterface, mockTokens *MockTokenStoreInterface) {
				stored := &types.RefreshToken{
					ID:        "token-1",
					UserID:    userID,
					FamilyID:  familyID,
					TokenHash: HashToken(raw),
					ExpiresAt: time.Now().Add(time.Hour),
				}
				mockTokens.EXPECT().GetRefreshTokenByHash(gomock.Any(), HashToken(raw)).Return(stored, nil)
				mockTokens.EXPECT().RevokeRefreshToken(gomock.Any(), "token-1").Return(true, nil)
				mockSigner.EXPECT().Sign(userID).Return("new-access", nil)
				mockTokens.EXPECT().CreateRefreshToken(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tk *types.RefreshToken) (*types.RefreshToken, error) {
						if tk.FamilyID != familyID {
							t.Errorf("expected rotation to stay in family %s, got %s", familyID, tk.FamilyID)
						}
						if tk.RotatedFrom == nil || *tk.RotatedFrom != "token-1" {
							t.Error("expected rotation lineage to point at the consumed token")
						}
						return tk, nil
					})
			},
		},
		{
			name: "replay - rotated token burns the family",
			setupMocks: func(mockSigner *MockSignerInterface, mockTokens *MockTokenStoreInterface) {
				revokedAt := time.Now().Add(-time.Minute)
				stored := &types.RefreshToken{
					ID:        "token-1",
					UserID:    userID,
					FamilyID:  familyID,
					TokenHash: HashToken(raw),
					ExpiresAt: time.Now().Add(time.Hour),
					RevokedAt: &revokedAt,
				}
				mockTokens.EXPECT().GetRefreshTokenByHash(gomock.Any(), HashToken(raw)).Return(stored, nil)
				mockTokens.EXPECT().RevokeRefreshTokenFamily(gomock.Any(), familyID).Return(nil)
			},
			expectedErr: ErrUnauthenticated,
		},
		{
			name: "concurrent presentation - lost rotation burns the family",
			setupMocks: func(mockSigner *MockSignerInterface, mockTokens *MockTokenStoreInterface) {
				// Both presentations read the row before either revocation
				// commits, so the loser sees an unrevoked token but its
				// revoking update affects zero rows.
				stored := &types.RefreshToken{
					ID:        "token-1",
					UserID:    userID,
					FamilyID:  familyID,
					TokenHash: HashToken(raw),
					ExpiresAt: time.Now().Add(time.Hour),
				}
				mockTokens.EXPECT().GetRefreshTokenByHash(gomock.Any(), HashToken(raw)).Return(stored, nil)
				mockTokens.EXPECT().RevokeRefreshToken(gomock.Any(), "token-1").Return(false, nil)
				mockTokens.EXPECT().RevokeRefreshTokenFamily(gomock.Any(), familyID).Return(nil)
			},
			expectedErr: ErrUnauthenticated,
		},
		{
			name: "expired token is rejected",
			setupMocks: func(mockSigner *MockSignerInterface, mockTokens *MockTokenStoreInterface) {
				stored := &types.RefreshToken{
					ID:        "token-1",
					UserID:    userID,
					FamilyID:  familyID,
					TokenHash: HashToken(raw),
					ExpiresAt: time.Now().Add(-time.Hour),
				}
				mockTokens.EXPECT().GetRefreshTokenByHash(gomock.Any(), HashToken(raw)).Return(stored, nil)
			},
			expectedErr: ErrUnauthenticated,
		},
		{
			name: "unknown token is rejected",
			setupMocks: func(mockSigner *MockSignerInterface, mockTokens *MockTokenStoreInterface) {
				mockTokens.EXPECT().GetRefreshTokenByHash(gomock.Any(), HashToken(raw)).
					Return(nil, storage.ErrNotFound)
			},
			expectedErr: ErrUnauthenticated,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSigner := NewMockSignerInterface(ctrl)
			mockTokens := NewMockTokenStoreInterface(ctrl)
			tc.setupMocks(mockSigner, mockTokens)

			m := newTestManager(mockSigner, mockTokens)

			pair, err := m.Refresh(context.Background(), raw)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected error %v, got %v", tc.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pair.AccessToken != "new-access" {
				t.Errorf("expected access token new-access, got %q", pair.AccessToken)
			}
			if pair.RefreshToken == raw {
				t.Error("expected a different refresh token after rotation")
			}
		})
	}
}

func TestSessionManager_Revoke(t *testing.T) {
	raw, err := GenerateOpaqueToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testCases := []struct {
		name        string
		setupMocks  func(*MockTokenStoreInterface)
		expectedErr bool
	}{
		{
			name: "success - revokes the family",
			setupMocks: func(mockTokens *MockTokenStoreInterface) {
				stored := &types.RefreshToken{ID: "token-1", UserID: "user-123", FamilyID: "family-1", TokenHash: HashToken(raw)}
				mockTokens.EXPECT().GetRefreshTokenByHash(gomock.Any(), HashToken(raw)).Return(stored, nil)
				mockTokens.EXPECT().RevokeRefreshTokenFamily(gomock.Any(), "family-1").Return(nil)
			},
		},
		{
			name: "unknown token is a no-op",
			setupMocks: func(mockTokens *MockTokenStoreInterface) {
				mockTokens.EXPECT().GetRefreshTokenByHash(gomock.Any(), HashToken(raw)).
					Return(nil, storage.ErrNotFound)
			},
		},
		{
			name: "error - storage error",
			setupMocks: func(mockTokens *MockTokenStoreInterface) {
				mockTokens.EXPECT().GetRefreshTokenByHash(gomock.Any(), HashToken(raw)).
					Return(nil, errors.New("storage error"))
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSigner := NewMockSignerInterface(ctrl)
			mockTokens := NewMockTokenStoreInterface(ctrl)
			tc.setupMocks(mockTokens)

			m := newTestManager(mockSigner, mockTokens)

			err := m.Revoke(context.Background(), raw)
			if tc.expectedErr && err == nil {
				t.Error("expected error but got none")
			} else if !tc.expectedErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSessionManager_RevokeAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSigner := NewMockSignerInterface(ctrl)
	mockTokens := NewMockTokenStoreInterface(ctrl)

	mockTokens.EXPECT().RevokeAllRefreshTokens(gomock.Any(), "user-123").Return(int64(3), nil)

	m := newTestManager(mockSigner, mockTokens)

	n, err := m.RevokeAll(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 revoked sessions, got %d", n)
	}
}

func TestSessionManager_ValidateAccess(t *testing.T) {
	testCases := []struct {
		name        string
		setupMocks  func(*MockSignerInterface)
		expectedErr error
	}{
		{
			name: "valid token",
			setupMocks: func(mockSigner *MockSignerInterface) {
				mockSigner.EXPECT().Verify("raw-token").Return("user-123", nil)
			},
		},
		{
			name: "invalid token collapses to unauthenticated",
			setupMocks: func(mockSigner *MockSignerInterface) {
				mockSigner.EXPECT().Verify("raw-token").Return("", errors.New("bad signature"))
			},
			expectedErr: ErrUnauthenticated,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSigner := NewMockSignerInterface(ctrl)
			mockTokens := NewMockTokenStoreInterface(ctrl)
			tc.setupMocks(mockSigner)

			m := newTestManager(mockSigner, mockTokens)

			userID, err := m.ValidateAccess(context.Background(), "raw-token")

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected error %v, got %v", tc.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if userID != "user-123" {
				t.Errorf("expected user-123, got %q", userID)
			}
		})
	}
}
