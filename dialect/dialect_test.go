package dialect_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richarddahl/sqlemit/dialect"
)

type opRecorder struct {
	ops       []string
	commits   int
	rollbacks int
}

func (r *opRecorder) Exec(_ context.Context, query string, _, _ any) error {
	r.ops = append(r.ops, "exec:"+query)
	return nil
}

func (r *opRecorder) Query(_ context.Context, query string, _, _ any) error {
	r.ops = append(r.ops, "query:"+query)
	return nil
}

func (r *opRecorder) Tx(context.Context) (dialect.Tx, error) {
	r.ops = append(r.ops, "tx")
	return recorderTx{r}, nil
}

func (r *opRecorder) Close() error    { return nil }
func (r *opRecorder) Dialect() string { return dialect.Postgres }

type recorderTx struct{ r *opRecorder }

func (t recorderTx) Exec(ctx context.Context, query string, args, v any) error {
	return t.r.Exec(ctx, query, args, v)
}

func (t recorderTx) Query(ctx context.Context, query string, args, v any) error {
	return t.r.Query(ctx, query, args, v)
}

func (t recorderTx) Commit() error   { t.r.commits++; return nil }
func (t recorderTx) Rollback() error { t.r.rollbacks++; return nil }

func TestNopTx(t *testing.T) {
	t.Parallel()

	rec := &opRecorder{}
	tx := dialect.NopTx(rec)
	require.NoError(t, tx.Exec(context.Background(), "CREATE INDEX CONCURRENTLY ix ON t (c)", []any{}, nil))
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Rollback())

	// Operations pass straight through and no transaction is opened.
	assert.Equal(t, []string{"exec:CREATE INDEX CONCURRENTLY ix ON t (c)"}, rec.ops)
	assert.Zero(t, rec.commits)
	assert.Zero(t, rec.rollbacks)
}

func TestDebugDriver(t *testing.T) {
	t.Parallel()

	rec := &opRecorder{}
	var logged []string
	drv := dialect.Debug(rec, func(args ...any) {
		logged = append(logged, fmt.Sprint(args...))
	})

	ctx := context.Background()
	require.NoError(t, drv.Exec(ctx, "CREATE TABLE t ()", []any{}, nil))
	require.NoError(t, drv.Query(ctx, "SELECT 1", []any{}, nil))

	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Exec(ctx, "CREATE TABLE u ()", []any{}, nil))
	require.NoError(t, tx.Commit())

	assert.Equal(t, dialect.Postgres, drv.Dialect())
	assert.Equal(t, 1, rec.commits)
	require.Len(t, logged, 5)
	assert.True(t, strings.Contains(logged[0], "CREATE TABLE t ()"))
	assert.True(t, strings.Contains(logged[1], "SELECT 1"))
	assert.True(t, strings.Contains(logged[4], "Commit"))
}
