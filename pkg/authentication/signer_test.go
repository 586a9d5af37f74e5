// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

const testIssuer = "https://id.example.com"

func testSeed(t *testing.T) string {
	t.Helper()
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	return base64.RawURLEncoding.EncodeToString(seed)
}

func TestSigner_SignAndVerify(t *testing.T) {
	signer, err := NewSigner(testIssuer, testSeed(t), 15*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := signer.Sign("user-123")
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	subject, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error verifying: %v", err)
	}
	if subject != "user-123" {
		t.Errorf("expected subject user-123, got %q", subject)
	}
}

func TestSigner_RejectsExpiredToken(t *testing.T) {
	signer, err := NewSigner(testIssuer, testSeed(t), -time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := signer.Sign("user-123")
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	if _, err := signer.Verify(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestSigner_RejectsForeignIssuer(t *testing.T) {
	issuing, err := NewSigner("https://other.example.com", testSeed(t), 15*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	verifying, err := NewSigner(testIssuer, testSeed(t), 15*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := issuing.Sign("user-123")
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	if _, err := verifying.Verify(token); err == nil {
		t.Error("expected token from foreign issuer to be rejected")
	}
}

func TestSigner_RejectsTamperedToken(t *testing.T) {
	signer, err := NewSigner(testIssuer, testSeed(t), 15*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := signer.Sign("user-123")
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := signer.Verify(tampered); err == nil {
		t.Error("expected tampered token to be rejected")
	}
}

func TestSigner_RejectsForeignKey(t *testing.T) {
	otherSeed := make([]byte, 32)
	for i := range otherSeed {
		otherSeed[i] = byte(255 - i)
	}

	issuing, err := NewSigner(testIssuer, base64.RawURLEncoding.EncodeToString(otherSeed), 15*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	verifying, err := NewSigner(testIssuer, testSeed(t), 15*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := issuing.Sign("user-123")
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	if _, err := verifying.Verify(token); err == nil {
		t.Error("expected token signed with foreign key to be rejected")
	}
}

func TestNewSigner_RejectsBadSeed(t *testing.T) {
	testCases := []struct {
		name string
		seed string
	}{
		{name: "not base64url", seed: "!!!not-base64!!!"},
		{name: "wrong length", seed: base64.RawURLEncoding.EncodeToString([]byte("short"))},
		{name: "empty", seed: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSigner(testIssuer, tc.seed, 15*time.Minute); err == nil {
				t.Error("expected error for invalid seed")
			}
		})
	}
}
