// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
)

// ErrScopeBind signals that the tenant scope could not be bound on the
// acquired connection. There is no degraded mode: the request must fail.
var ErrScopeBind = errors.New("failed to bind isolation scope")

// Scope carries the per-request isolation scope. It is bound as
// transaction-local settings (set_config with is_local=true), which the row
// policies in the schema reference; locality guarantees the settings vanish
// at COMMIT/ROLLBACK and can never leak through the connection pool.
type Scope struct {
	TenantID string
	UserID   string
	// Bypass grants unrestricted row access. It is only ever set through
	// WithPrivilegedScope, which audits each use.
	Bypass bool
}

type execerContext interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *Scope) bind(ctx context.Context, tx execerContext) error {
	bypass := ""
	if s.Bypass {
		bypass = "on"
	}
	_, err := tx.ExecContext(ctx,
		`SELECT set_config('app.tenant_id', $1, true),
		        set_config('app.user_id', $2, true),
		        set_config('app.bypass', $3, true)`,
		s.TenantID, s.UserID, bypass,
	)
	return err
}

// WithTenantScope executes fn within a transaction whose connection carries
// the given tenant scope. The transaction begins lazily on first database
// access; scope variables are bound on it before any other statement runs on
// that same connection. Release is guaranteed on all exit paths.
func (d *DBClient) WithTenantScope(ctx context.Context, scope Scope, fn func(context.Context) error) error {
	scope.Bypass = false
	return d.run(ctx, &lazyTx{db: d.db, scope: &scope, logger: d.logger}, fn)
}

// WithPrivilegedScope executes fn with the row-policy bypass enabled. This is
// the explicit super-administrator path; it is never a default, and every use
// emits exactly one audit event.
func (d *DBClient) WithPrivilegedScope(ctx context.Context, actorID, reason string, fn func(context.Context) error) error {
	d.logger.Security().ScopeBypass(actorID, reason)
	scope := Scope{UserID: actorID, Bypass: true}
	return d.run(ctx, &lazyTx{db: d.db, scope: &scope, logger: d.logger}, fn)
}

// failingRunner satisfies the statement builder's runner contract while
// refusing every operation. It backs statements whose isolation scope could
// not be bound.
type failingRunner struct {
	err error
}

var _ sq.BaseRunner = failingRunner{}

func (r failingRunner) Exec(string, ...interface{}) (sql.Result, error) {
	return nil, r.err
}

func (r failingRunner) Query(string, ...interface{}) (*sql.Rows, error) {
	return nil, r.err
}

func (r failingRunner) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, r.err
}

func (r failingRunner) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, r.err
}

func (r failingRunner) QueryRow(string, ...interface{}) sq.RowScanner {
	return failingRow{err: r.err}
}

func (r failingRunner) QueryRowContext(context.Context, string, ...interface{}) sq.RowScanner {
	return failingRow{err: r.err}
}

type failingRow struct {
	err error
}

func (r failingRow) Scan(...interface{}) error {
	return r.err
}
