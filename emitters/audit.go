package emitters

import (
	"github.com/richarddahl/sqlemit"
	"github.com/richarddahl/sqlemit/emit"
)

// Audit emits a change-history subsystem: an audit schema with a history
// table, a trigger function recording row changes, and one trigger per
// audited table. The dynamic per-table loop is the canonical example of an
// emitter producing one statement per input element.
type Audit struct {
	// AuditSchema holds the history table and function. Defaults to "audit".
	AuditSchema string

	// Tables lists the audited tables as schema.table pairs.
	Tables [][2]string
}

// NewAudit returns an audit emitter for the given schema.table pairs.
func NewAudit(tables ...[2]string) *Audit {
	return &Audit{AuditSchema: "audit", Tables: tables}
}

// Name implements emit.Emitter.
func (a *Audit) Name() string { return "audit" }

// Generate implements emit.Emitter.
func (a *Audit) Generate() ([]*sqlemit.Statement, error) {
	if len(a.Tables) == 0 {
		return nil, sqlemit.NewSpecificationError(a.Name(), "", "no tables to audit")
	}
	schemaStmt := SchemaStatementName(a.AuditSchema)
	schemaText, err := sqlemit.Format("CREATE SCHEMA IF NOT EXISTS {schema};", sqlemit.Vars{
		"schema": sqlemit.Ident(a.AuditSchema),
	})
	if err != nil {
		return nil, err
	}
	schema, err := sqlemit.NewStatement(schemaStmt, sqlemit.KindSchema, schemaText)
	if err != nil {
		return nil, err
	}

	logStmt := TableStatementName(a.AuditSchema, "record_log")
	logText, err := sqlemit.Format(
		`CREATE TABLE IF NOT EXISTS {schema}.record_log (
    id bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    table_name text NOT NULL,
    operation text NOT NULL,
    old_row jsonb,
    new_row jsonb,
    changed_at timestamptz NOT NULL DEFAULT now()
);`, sqlemit.Vars{"schema": sqlemit.Ident(a.AuditSchema)})
	if err != nil {
		return nil, err
	}
	log, err := sqlemit.NewStatement(logStmt, sqlemit.KindTable, logText, schemaStmt)
	if err != nil {
		return nil, err
	}

	fn := sqlemit.NewFunction(a.AuditSchema, "record_change").
		SecurityDefiner().
		DependsOn(logStmt).
		Body(`BEGIN
    INSERT INTO ` + a.AuditSchema + `.record_log (table_name, operation, old_row, new_row)
    VALUES (TG_TABLE_NAME, TG_OP, to_jsonb(OLD), to_jsonb(NEW));
    RETURN COALESCE(NEW, OLD);
END;`)
	fnStmt, err := fn.Statement()
	if err != nil {
		return nil, err
	}

	statements := []*sqlemit.Statement{schema, log, fnStmt}
	for _, t := range a.Tables {
		schemaName, tableName := t[0], t[1]
		trigger, err := sqlemit.NewTrigger(schemaName, tableName, AuditTriggerName(tableName)).
			After().
			On("INSERT", "UPDATE", "DELETE").
			For(fn).
			DependsOn(TableStatementName(schemaName, tableName)).
			Statement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, trigger)
	}
	return statements, nil
}

var _ emit.Emitter = (*Audit)(nil)
