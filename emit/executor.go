package emit

import (
	"context"
	"time"

	"github.com/richarddahl/sqlemit"
	"github.com/richarddahl/sqlemit/dialect"
	sqldialect "github.com/richarddahl/sqlemit/dialect/sql"
)

// ExecuteBatch applies an ordered statement batch to drv, or renders it
// without applying under WithDryRun. Statements run strictly sequentially in
// the given order; later DDL may reference objects created earlier in the
// same batch, so no intra-batch parallelism or reordering is permitted.
//
// In the default TxBatch scope the whole batch runs in one transaction: the
// first failure rolls everything back and is returned with the failing
// statement's name, kind and a truncated SQL excerpt; on success the
// transaction commits exactly once. The transaction is released (commit or
// rollback) on every exit path, including context cancellation mid-batch.
//
// The batch must never be executed concurrently against the same driver
// value; independent batches on independent connections may run in parallel.
func ExecuteBatch(ctx context.Context, drv dialect.Driver, ordered []*sqlemit.Statement, opts ...Option) (*BatchResult, error) {
	return executeBatch(ctx, drv, ordered, newOptions(opts))
}

func executeBatch(ctx context.Context, drv dialect.Driver, ordered []*sqlemit.Statement, o *options) (*BatchResult, error) {
	result := newBatchResult(o.label, ordered, o.dryRun)
	if o.dryRun {
		return result, nil
	}
	scope := o.scope
	if o.continueOnError && scope == TxBatch {
		// A shared transaction would poison every statement after the
		// first failure, so best-effort mode applies each on its own.
		scope = TxStatement
	}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	if scope == TxBatch {
		return result, applyInOneTx(ctx, drv, ordered, o, result)
	}
	return result, applyPerStatement(ctx, drv, ordered, scope, o, result)
}

// applyInOneTx runs the whole batch inside a single transaction.
func applyInOneTx(ctx context.Context, drv dialect.Driver, ordered []*sqlemit.Statement, o *options, result *BatchResult) error {
	tx, err := drv.Tx(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, s := range ordered {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := applyOne(ctx, tx, s, o, result); err != nil {
			result.Failures = append(result.Failures, &StatementFailure{Name: s.Name(), Kind: s.Kind(), Err: err})
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	result.Succeeded = succeededNames(ordered, result)
	return nil
}

// applyPerStatement runs each statement in its own transaction (TxStatement)
// or with no transaction at all (TxNone).
func applyPerStatement(ctx context.Context, drv dialect.Driver, ordered []*sqlemit.Statement, scope TxScope, o *options, result *BatchResult) error {
	var errs []error
	for _, s := range ordered {
		if err := ctx.Err(); err != nil {
			return sqlemit.NewAggregateError(append(errs, err)...)
		}
		err := func() error {
			var tx dialect.Tx
			if scope == TxNone {
				tx = dialect.NopTx(drv)
			} else {
				var err error
				if tx, err = drv.Tx(ctx); err != nil {
					return err
				}
			}
			if err := applyOne(ctx, tx, s, o, result); err != nil {
				_ = tx.Rollback()
				return err
			}
			return tx.Commit()
		}()
		if err != nil {
			result.Failures = append(result.Failures, &StatementFailure{Name: s.Name(), Kind: s.Kind(), Err: err})
			if !o.continueOnError {
				return err
			}
			errs = append(errs, err)
			continue
		}
		result.Succeeded = append(result.Succeeded, s.Name())
	}
	return sqlemit.NewAggregateError(errs...)
}

// applyOne executes a single statement, classifying duplicate-object errors
// and applying the configured idempotence policy. Statement text carries
// data values only as named parameters; nothing is bound here.
func applyOne(ctx context.Context, conn dialect.ExecQuerier, s *sqlemit.Statement, o *options, result *BatchResult) error {
	origin := o.originOf(s.Name())
	start := time.Now()
	err := conn.Exec(ctx, s.Text(), []any{}, nil)
	if err == nil {
		o.bus.Executed(origin, s, time.Since(start))
		return nil
	}
	if sqldialect.IsAlreadyExists(err) {
		if o.onExists == ExistsSkip {
			result.Skipped = append(result.Skipped, s.Name())
			return nil
		}
		exErr := sqlemit.NewAlreadyExistsError(s.Name(), s.Kind(), s.Text(), err)
		o.bus.Error(origin, s, exErr)
		return exErr
	}
	exErr := sqlemit.NewExecutionError(s.Name(), s.Kind(), s.Text(), err)
	o.bus.Error(origin, s, exErr)
	return exErr
}

// succeededNames lists all applied statements in order, minus the skipped ones.
func succeededNames(ordered []*sqlemit.Statement, result *BatchResult) []string {
	skipped := make(map[string]struct{}, len(result.Skipped))
	for _, n := range result.Skipped {
		skipped[n] = struct{}{}
	}
	names := make([]string, 0, len(ordered))
	for _, s := range ordered {
		if _, ok := skipped[s.Name()]; !ok {
			names = append(names, s.Name())
		}
	}
	return names
}
