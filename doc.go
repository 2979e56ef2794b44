// Package sqlemit provides declarative SQL statement emission with
// dependency-ordered, transactional execution.
//
// Components declare database objects (schemas, tables, functions, triggers,
// indexes, policies) as named statements with explicit dependencies. The
// engine computes a safe execution order, applies it inside a transaction,
// and supports dry-run inspection of the fully rendered SQL.
//
// # Statements
//
// A Statement is one immutable, named SQL unit:
//
//	s, err := sqlemit.NewStatement(
//	    "create_orders_table",
//	    sqlemit.KindTable,
//	    "CREATE TABLE app.orders (id bigint PRIMARY KEY);",
//	    "create_app_schema",
//	)
//
// Statement names must be unique within a batch, and every dependency must
// name a statement in the same batch or one declared as already applied.
//
// # Templates
//
// Format renders parameterized SQL text with identifier validation:
//
//	text, err := sqlemit.Format("CREATE SCHEMA {schema};", sqlemit.Vars{"schema": "app"})
//
// Identifier positions are restricted to [A-Za-z0-9_]. Data positions are
// declared with Param and render as named parameter placeholders (:value);
// data is never interpolated into SQL text.
//
// # Builders
//
// FunctionBuilder and TriggerBuilder compose multi-part SQL explicitly:
//
//	fn := sqlemit.NewFunction("audit", "record_change").Body("...")
//	tr := sqlemit.NewTrigger("app", "orders", "audit_orders").On("INSERT", "UPDATE").For(fn)
//
// # Sub-packages
//
//   - dialect: connection provider interfaces (Driver, Tx, ExecQuerier)
//   - dialect/sql: database/sql-backed driver with error classification
//   - emit: emitters, dependency resolver, executor, registry, notification bus
//   - emitters: built-in emitter families (schema bootstrap, audit, policies)
package sqlemit
