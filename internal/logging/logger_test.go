// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"testing"
)

func TestDebugLogger(t *testing.T) {
	func() {
		_ = recover()
		NewLogger("DEBUG")
	}()
}

func TestInvalidLevel(t *testing.T) {
	func() {
		_ = recover()
		NewLogger("invalid")
	}()
}

func TestSecurityLoggerIsAlwaysAvailable(t *testing.T) {
	l := NewNoopLogger()
	if l.Security() == nil {
		t.Fatal("expected security logger")
	}
	// Must not panic on any event.
	l.Security().AuthnFailure("user-1", "expired")
	l.Security().AuthzFailure("user-1", "resource:create")
	l.Security().TenantProbe("user-1", "tenant-2")
	l.Security().TokenReplay("user-1", "family-1")
	l.Security().ScopeBypass("admin-1", "support ticket 42")
	l.Security().SessionRevoked("user-1", "all")
}
