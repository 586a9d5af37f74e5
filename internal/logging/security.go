// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"go.uber.org/zap"
)

// SecurityLogger emits structured security events. Downstream log shipping is
// expected to route the "security" logger to the audit store, so every method
// here is an audit record, not a diagnostic.
type SecurityLogger struct {
	l *zap.Logger
}

func NewSecurityLogger(l *zap.Logger) *SecurityLogger {
	return &SecurityLogger{l: l}
}

func (s *SecurityLogger) SystemStartup() {
	s.l.Info("system startup", zap.String("event", "system_startup"))
}

func (s *SecurityLogger) SystemShutdown() {
	s.l.Info("system shutdown", zap.String("event", "system_shutdown"))
}

// AuthnFailure records a failed authentication attempt. The reason is kept
// internal; callers only ever see an undifferentiated unauthenticated result.
func (s *SecurityLogger) AuthnFailure(subject, reason string) {
	s.l.Warn("authentication failure",
		zap.String("event", "authn_failure"),
		zap.String("subject", subject),
		zap.String("reason", reason),
	)
}

// AuthzFailure records a permission denial.
func (s *SecurityLogger) AuthzFailure(subject, action string) {
	s.l.Warn("authorization failure",
		zap.String("event", "authz_failure"),
		zap.String("subject", subject),
		zap.String("action", action),
	)
}

// TenantProbe records a caller-supplied tenant selector that was not covered
// by an active membership, a potential cross-tenant probing attempt.
func (s *SecurityLogger) TenantProbe(subject, tenantID string) {
	s.l.Warn("tenant selector rejected",
		zap.String("event", "tenant_probe"),
		zap.String("subject", subject),
		zap.String("tenant_id", tenantID),
	)
}

// TokenReplay records a refresh token presented more than once. The whole
// session family is revoked when this fires.
func (s *SecurityLogger) TokenReplay(userID, familyID string) {
	s.l.Warn("refresh token replay detected",
		zap.String("event", "token_replay"),
		zap.String("user_id", userID),
		zap.String("family_id", familyID),
	)
}

// ScopeBypass records one use of the privileged isolation-scope bypass.
func (s *SecurityLogger) ScopeBypass(actorID, reason string) {
	s.l.Warn("isolation scope bypass",
		zap.String("event", "scope_bypass"),
		zap.String("actor_id", actorID),
		zap.String("reason", reason),
	)
}

// SessionRevoked records a session revocation; scope is "single" or "all".
func (s *SecurityLogger) SessionRevoked(userID, scope string) {
	s.l.Info("session revoked",
		zap.String("event", "session_revoked"),
		zap.String("user_id", userID),
		zap.String("scope", scope),
	)
}
