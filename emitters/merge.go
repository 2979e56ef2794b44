package emitters

import (
	"strings"

	"github.com/richarddahl/sqlemit"
	"github.com/richarddahl/sqlemit/emit"
)

// Merge emits an upsert function for one table, inserting a row or updating
// the non-key columns when the key already exists. The function arguments
// bind the data values; statement text itself never carries data.
type Merge struct {
	Schema      string
	TableName   string
	KeyColumns  []string
	DataColumns []string
}

// NewMerge returns a merge emitter for the given table.
func NewMerge(schema, table string, keys, data []string) *Merge {
	return &Merge{Schema: schema, TableName: table, KeyColumns: keys, DataColumns: data}
}

// Name implements emit.Emitter.
func (m *Merge) Name() string { return "merge:" + m.Schema + "." + m.TableName }

// Generate implements emit.Emitter.
func (m *Merge) Generate() ([]*sqlemit.Statement, error) {
	if len(m.KeyColumns) == 0 {
		return nil, sqlemit.NewSpecificationError(m.Name(), "", "merge requires key columns")
	}
	for _, c := range append(append([]string{}, m.KeyColumns...), m.DataColumns...) {
		if !sqlemit.IsValidIdentifier(c) {
			return nil, sqlemit.NewSpecificationError(m.Name(), "", "unsafe column name "+c)
		}
	}
	all := append(append([]string{}, m.KeyColumns...), m.DataColumns...)
	args := make([]string, len(all))
	vals := make([]string, len(all))
	sets := make([]string, len(m.DataColumns))
	// Argument types are copied from the table columns with %TYPE, so the
	// function tracks column type changes without regeneration.
	for i, c := range all {
		args[i] = "p_" + c + " " + m.Schema + "." + m.TableName + "." + c + "%TYPE"
		vals[i] = "p_" + c
	}
	for i, c := range m.DataColumns {
		sets[i] = c + " = EXCLUDED." + c
	}
	conflict := strings.Join(m.KeyColumns, ", ")
	body := "BEGIN\n    INSERT INTO " + m.Schema + "." + m.TableName +
		" (" + strings.Join(all, ", ") + ")\n    VALUES (" + strings.Join(vals, ", ") + ")\n" +
		"    ON CONFLICT (" + conflict + ")"
	if len(sets) > 0 {
		body += " DO UPDATE SET " + strings.Join(sets, ", ")
	} else {
		body += " DO NOTHING"
	}
	body += ";\nEND;"

	fn := sqlemit.NewFunction(m.Schema, MergeFunctionName(m.TableName)).
		Args(strings.Join(args, ", ")).
		Returns("void").
		DependsOn(TableStatementName(m.Schema, m.TableName)).
		Body(body)
	stmt, err := fn.Statement()
	if err != nil {
		return nil, err
	}
	return []*sqlemit.Statement{stmt}, nil
}

var _ emit.Emitter = (*Merge)(nil)
