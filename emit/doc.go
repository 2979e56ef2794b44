// Package emit contains the emission engine: emitters that produce
// statements, the dependency resolver that orders them, the executor that
// applies them transactionally (or renders them, dry-run), the registry for
// bulk cross-emitter emission, and the notification bus informing observers
// of each step.
//
// A typical bootstrap flow:
//
//	reg := emit.NewRegistry()
//	_ = reg.Register("meta", func() emit.Emitter { return emitters.NewSchema("meta") })
//	_ = reg.Register("orders", func() emit.Emitter { return ordersEmitter })
//
//	drv, _ := sql.Open(dialect.Postgres, dsn)
//	results, err := reg.EmitAll(ctx, drv)
//
// Dry-run is the recommended pre-flight step: it surfaces specification,
// template, cycle and missing-dependency errors with zero database risk.
//
//	results, err := reg.EmitAll(ctx, drv, emit.WithDryRun())
package emit
