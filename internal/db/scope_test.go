// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"sync"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
)

// stubState records everything the client drives through the sql driver so
// the transaction and scope-binding contract can be asserted without a
// database.
type stubState struct {
	mu        sync.Mutex
	execs     []string
	execArgs  [][]driver.NamedValue
	begins    int
	commits   int
	rollbacks int

	failBegin bool
	failBind  bool
}

type stubConnector struct{ st *stubState }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) {
	return &stubConn{st: c.st}, nil
}

func (c stubConnector) Driver() driver.Driver { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open via connector")
}

type stubConn struct{ st *stubState }

var (
	_ driver.Conn          = (*stubConn)(nil)
	_ driver.ConnBeginTx   = (*stubConn)(nil)
	_ driver.ExecerContext = (*stubConn)(nil)
)

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	if c.st.failBegin {
		return nil, errors.New("pool exhausted")
	}
	c.st.begins++
	return stubTx{st: c.st}, nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	if c.st.failBind && strings.Contains(query, "set_config") {
		return nil, errors.New("driver failure")
	}
	c.st.execs = append(c.st.execs, query)
	c.st.execArgs = append(c.st.execArgs, args)
	return driver.RowsAffected(1), nil
}

type stubTx struct{ st *stubState }

func (t stubTx) Commit() error {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	t.st.commits++
	return nil
}

func (t stubTx) Rollback() error {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	t.st.rollbacks++
	return nil
}

func newStubClient(st *stubState) *DBClient {
	sqlDB := sql.OpenDB(stubConnector{st: st})

	d := new(DBClient)
	d.db = sqlDB
	d.dbRunner = sqlDB
	d.logger = logging.NewNoopLogger()
	return d
}

func execWidgetUpdate(d *DBClient, ctx context.Context) error {
	_, err := d.Statement(ctx).
		Update("widgets").
		Set("name", "renamed").
		Where(sq.Eq{"id": "widget-1"}).
		ExecContext(ctx)
	return err
}

func TestWithTenantScope_BindsBeforeStatements(t *testing.T) {
	st := &stubState{}
	d := newStubClient(st)

	err := d.WithTenantScope(context.Background(), Scope{TenantID: "tenant-1", UserID: "user-1"}, func(ctx context.Context) error {
		return execWidgetUpdate(d, ctx)
	})
	require.NoError(t, err)

	require.Len(t, st.execs, 2)
	assert.Contains(t, st.execs[0], "set_config('app.tenant_id'")
	assert.Contains(t, st.execs[0], "set_config('app.user_id'")
	assert.Contains(t, st.execs[0], "set_config('app.bypass'")
	assert.Contains(t, st.execs[1], "UPDATE widgets")

	// Scope values travel as parameters, bypass stays off.
	require.Len(t, st.execArgs[0], 3)
	assert.Equal(t, "tenant-1", st.execArgs[0][0].Value)
	assert.Equal(t, "user-1", st.execArgs[0][1].Value)
	assert.Equal(t, "", st.execArgs[0][2].Value)

	assert.Equal(t, 1, st.begins)
	assert.Equal(t, 1, st.commits)
	assert.Equal(t, 0, st.rollbacks)
}

func TestWithTenantScope_LazyWithoutStatements(t *testing.T) {
	st := &stubState{}
	d := newStubClient(st)

	err := d.WithTenantScope(context.Background(), Scope{TenantID: "tenant-1"}, func(context.Context) error {
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 0, st.begins)
	assert.Equal(t, 0, st.commits)
	assert.Equal(t, 0, st.rollbacks)
}

func TestWithTenantScope_BindFailureIsSticky(t *testing.T) {
	st := &stubState{failBind: true}
	d := newStubClient(st)

	var firstErr, secondErr error
	err := d.WithTenantScope(context.Background(), Scope{TenantID: "tenant-1"}, func(ctx context.Context) error {
		firstErr = execWidgetUpdate(d, ctx)
		secondErr = execWidgetUpdate(d, ctx)
		// Swallowing the statement errors must not let the request commit.
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScopeBind)
	assert.ErrorIs(t, firstErr, ErrScopeBind)
	assert.ErrorIs(t, secondErr, ErrScopeBind)

	// Nothing ran unscoped: the failed transaction was rolled back once and
	// no statement reached the driver.
	assert.Empty(t, st.execs)
	assert.Equal(t, 1, st.rollbacks)
	assert.Equal(t, 0, st.commits)
}

func TestWithTenantScope_RollsBackOnError(t *testing.T) {
	st := &stubState{}
	d := newStubClient(st)

	boom := errors.New("boom")
	err := d.WithTenantScope(context.Background(), Scope{TenantID: "tenant-1"}, func(ctx context.Context) error {
		if err := execWidgetUpdate(d, ctx); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, st.rollbacks)
	assert.Equal(t, 0, st.commits)
}

func TestWithTenantScope_RollsBackOnPanic(t *testing.T) {
	st := &stubState{}
	d := newStubClient(st)

	func() {
		defer func() {
			require.NotNil(t, recover())
		}()
		_ = d.WithTenantScope(context.Background(), Scope{TenantID: "tenant-1"}, func(ctx context.Context) error {
			if err := execWidgetUpdate(d, ctx); err != nil {
				return err
			}
			panic("handler exploded")
		})
	}()

	assert.Equal(t, 1, st.rollbacks)
	assert.Equal(t, 0, st.commits)
}

func TestWithTenantScope_CanceledRequestStillReleases(t *testing.T) {
	st := &stubState{}
	d := newStubClient(st)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The transaction itself runs on a detached context, so the scope still
	// binds; the statement then fails on the dead request context and the
	// transaction is rolled back rather than left open.
	err := d.WithTenantScope(ctx, Scope{TenantID: "tenant-1"}, func(ctx context.Context) error {
		return execWidgetUpdate(d, ctx)
	})

	require.Error(t, err)
	assert.Equal(t, 1, st.begins)
	assert.Equal(t, 1, st.rollbacks)
	assert.Equal(t, 0, st.commits)
}

func TestWithPrivilegedScope_BindsBypass(t *testing.T) {
	st := &stubState{}
	d := newStubClient(st)

	err := d.WithPrivilegedScope(context.Background(), "operator", "support escalation", func(ctx context.Context) error {
		return execWidgetUpdate(d, ctx)
	})
	require.NoError(t, err)

	require.Len(t, st.execArgs, 2)
	assert.Equal(t, "on", st.execArgs[0][2].Value)
	assert.Equal(t, 1, st.commits)
}

func TestWithTx_NoScopeVariables(t *testing.T) {
	st := &stubState{}
	d := newStubClient(st)

	err := d.WithTx(context.Background(), func(ctx context.Context) error {
		return execWidgetUpdate(d, ctx)
	})
	require.NoError(t, err)

	require.Len(t, st.execs, 1)
	assert.NotContains(t, st.execs[0], "set_config")
	assert.Equal(t, 1, st.commits)
}
