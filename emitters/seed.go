package emitters

import (
	"strconv"
	"strings"

	"github.com/richarddahl/sqlemit"
	"github.com/richarddahl/sqlemit/emit"
)

// Seed emits idempotent INSERT statements for reference data. The statement
// text carries named-parameter placeholders for the row values; the caller's
// connection layer binds the data when replaying the statements, so no data
// is ever interpolated into SQL text.
type Seed struct {
	Schema    string
	TableName string
	Columns   []string

	// Rows is the number of parameterized INSERTs to emit; each row's
	// parameters are suffixed with its position (e.g. :name_1).
	Rows int

	// ConflictColumns makes the inserts idempotent via ON CONFLICT DO NOTHING.
	ConflictColumns []string
}

// NewSeed returns a seed emitter for the given table.
func NewSeed(schema, table string, columns []string, rows int) *Seed {
	return &Seed{Schema: schema, TableName: table, Columns: columns, Rows: rows}
}

// OnConflict sets the conflict target making re-runs idempotent.
func (s *Seed) OnConflict(columns ...string) *Seed {
	s.ConflictColumns = append(s.ConflictColumns, columns...)
	return s
}

// Name implements emit.Emitter.
func (s *Seed) Name() string { return "seed:" + s.Schema + "." + s.TableName }

// Generate implements emit.Emitter.
func (s *Seed) Generate() ([]*sqlemit.Statement, error) {
	if len(s.Columns) == 0 || s.Rows <= 0 {
		return nil, sqlemit.NewSpecificationError(s.Name(), "", "seed requires columns and a positive row count")
	}
	tableStmt := TableStatementName(s.Schema, s.TableName)
	statements := make([]*sqlemit.Statement, 0, s.Rows)
	for row := 1; row <= s.Rows; row++ {
		vars := sqlemit.Vars{
			"schema": sqlemit.Ident(s.Schema),
			"table":  sqlemit.Ident(s.TableName),
			"cols":   sqlemit.Raw(strings.Join(s.Columns, ", ")),
		}
		params := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			key := "p" + strconv.Itoa(i)
			vars[key] = sqlemit.Param(c + "_" + strconv.Itoa(row))
			params[i] = "{" + key + "}"
		}
		template := "INSERT INTO {schema}.{table} ({cols}) VALUES (" + strings.Join(params, ", ") + ")"
		if len(s.ConflictColumns) > 0 {
			template += " ON CONFLICT (" + strings.Join(s.ConflictColumns, ", ") + ") DO NOTHING"
		}
		template += ";"
		text, err := sqlemit.Format(template, vars)
		if err != nil {
			return nil, err
		}
		stmt, err := sqlemit.NewStatement(
			"seed_"+Normalize(s.TableName)+"_"+strconv.Itoa(row),
			sqlemit.KindInsert, text, tableStmt,
		)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

var _ emit.Emitter = (*Seed)(nil)
