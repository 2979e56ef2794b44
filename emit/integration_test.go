package emit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/richarddahl/sqlemit"
	"github.com/richarddahl/sqlemit/dialect"
	sqldrv "github.com/richarddahl/sqlemit/dialect/sql"
	"github.com/richarddahl/sqlemit/emit"
)

func sqliteDriver(t *testing.T) *sqldrv.Driver {
	t.Helper()
	drv, err := sqldrv.Open(dialect.SQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive for the
	// whole test.
	drv.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { _ = drv.Close() })
	return drv
}

func TestExecuteBatchSQLite(t *testing.T) {
	t.Parallel()

	table := sqlemit.MustStatement("create_orders", sqlemit.KindTable,
		"CREATE TABLE orders (id integer PRIMARY KEY, status text NOT NULL);")
	index := sqlemit.MustStatement("create_ix_orders_status", sqlemit.KindIndex,
		"CREATE INDEX ix_orders_status ON orders (status);", "create_orders")
	seed := sqlemit.MustStatement("seed_orders", sqlemit.KindInsert,
		"INSERT INTO orders (id, status) VALUES (1, 'open');", "create_orders")

	drv := sqliteDriver(t)
	ctx := context.Background()

	// The resolver schedules the index and seed after the table regardless
	// of input order.
	result, err := emit.ExecuteBatch(ctx, drv, mustResolve(t, seed, index, table))
	require.NoError(t, err)
	assert.Equal(t, []string{"create_orders", "create_ix_orders_status", "seed_orders"}, result.Succeeded)

	var rows sqldrv.Rows
	require.NoError(t, drv.Query(ctx, "SELECT status FROM orders WHERE id = 1", []any{}, &rows))
	require.True(t, rows.Next())
	var status string
	require.NoError(t, rows.Scan(&status))
	require.NoError(t, rows.Close())
	assert.Equal(t, "open", status)

	// Replaying the DDL without IF NOT EXISTS guards trips the duplicate
	// object classification and the skip policy records, not fails.
	rerun, err := emit.ExecuteBatch(ctx, drv, mustResolve(t, table, index), emit.WithOnExists(emit.ExistsSkip))
	require.NoError(t, err)
	assert.Empty(t, rerun.Succeeded)
	assert.Equal(t, []string{"create_orders", "create_ix_orders_status"}, rerun.Skipped)

	// Without the skip policy the same replay fails and rolls back.
	_, err = emit.ExecuteBatch(ctx, drv, mustResolve(t, table))
	require.Error(t, err)
	assert.True(t, sqlemit.IsAlreadyExistsError(err))
}

func TestExecuteBatchSQLiteRollback(t *testing.T) {
	t.Parallel()

	drv := sqliteDriver(t)
	ctx := context.Background()

	good := sqlemit.MustStatement("create_tenants", sqlemit.KindTable,
		"CREATE TABLE tenants (id integer PRIMARY KEY);")
	bad := sqlemit.MustStatement("create_broken", sqlemit.KindTable,
		"CREATE TABLE broken (id nosuchmodule();", "create_tenants")

	_, err := emit.ExecuteBatch(ctx, drv, mustResolve(t, good, bad))
	require.Error(t, err)
	assert.True(t, sqlemit.IsExecutionError(err))

	// The whole batch rolled back, so the first table must not exist.
	var rows sqldrv.Rows
	require.NoError(t, drv.Query(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'tenants'", []any{}, &rows))
	require.True(t, rows.Next())
	var n int
	require.NoError(t, rows.Scan(&n))
	require.NoError(t, rows.Close())
	assert.Zero(t, n)
}

// mustResolve orders statements for direct ExecuteBatch calls.
func mustResolve(t *testing.T, statements ...*sqlemit.Statement) []*sqlemit.Statement {
	t.Helper()
	ordered, err := emit.Resolve(statements)
	require.NoError(t, err)
	return ordered
}
