package emitters

import (
	"strings"

	"github.com/richarddahl/sqlemit"
	"github.com/richarddahl/sqlemit/emit"
)

// Column describes one table column for the table emitter.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	Default    string // rendered verbatim, e.g. "now()" or "0"
	PrimaryKey bool
}

// Index describes one table index.
type Index struct {
	Name    string // derived from the columns when empty
	Columns []string
	Unique  bool
}

// ForeignKey describes a referencing constraint added after table creation.
type ForeignKey struct {
	Name       string
	Columns    []string
	RefSchema  string
	RefTable   string
	RefColumns []string
}

// TableStatementName returns the statement name created for a table.
func TableStatementName(schema, table string) string {
	return "create_table_" + Normalize(schema) + "_" + Normalize(table)
}

// Table emits one table with its indexes and foreign keys. The table
// depends on its schema statement, which may come from a Schema emitter in
// the same batch or from a prior, already-applied one.
type Table struct {
	Schema      string
	TableName   string
	Columns     []Column
	Indexes     []Index
	ForeignKeys []ForeignKey
}

// NewTable returns a table emitter.
func NewTable(schema, name string, columns ...Column) *Table {
	return &Table{Schema: schema, TableName: name, Columns: columns}
}

// WithIndexes adds indexes to the table.
func (t *Table) WithIndexes(indexes ...Index) *Table {
	t.Indexes = append(t.Indexes, indexes...)
	return t
}

// WithForeignKeys adds foreign key constraints to the table.
func (t *Table) WithForeignKeys(fks ...ForeignKey) *Table {
	t.ForeignKeys = append(t.ForeignKeys, fks...)
	return t
}

// Name implements emit.Emitter.
func (t *Table) Name() string { return "table:" + t.Schema + "." + t.TableName }

// Generate implements emit.Emitter.
func (t *Table) Generate() ([]*sqlemit.Statement, error) {
	if len(t.Columns) == 0 {
		return nil, sqlemit.NewSpecificationError(t.Name(), "", "table declares no columns")
	}
	tableStmt := TableStatementName(t.Schema, t.TableName)

	defs := make([]string, 0, len(t.Columns)+1)
	var pk []string
	for _, c := range t.Columns {
		def, err := columnDefinition(t.Name(), c)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	if len(pk) > 0 {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(pk, ", ")+")")
	}
	text, err := sqlemit.Format("CREATE TABLE IF NOT EXISTS {schema}.{table} (\n    {defs}\n);", sqlemit.Vars{
		"schema": sqlemit.Ident(t.Schema),
		"table":  sqlemit.Ident(t.TableName),
		"defs":   sqlemit.Raw(strings.Join(defs, ",\n    ")),
	})
	if err != nil {
		return nil, err
	}
	stmt, err := sqlemit.NewStatement(tableStmt, sqlemit.KindTable, text, SchemaStatementName(t.Schema))
	if err != nil {
		return nil, err
	}
	statements := []*sqlemit.Statement{stmt}

	for _, ix := range t.Indexes {
		name := ix.Name
		if name == "" {
			name = IndexName(t.TableName, ix.Columns...)
		}
		unique := ""
		if ix.Unique {
			unique = "UNIQUE "
		}
		text, err := sqlemit.Format("CREATE {unique}INDEX IF NOT EXISTS {name} ON {schema}.{table} ({cols});", sqlemit.Vars{
			"unique": sqlemit.Raw(unique),
			"name":   sqlemit.Ident(name),
			"schema": sqlemit.Ident(t.Schema),
			"table":  sqlemit.Ident(t.TableName),
			"cols":   sqlemit.Raw(strings.Join(ix.Columns, ", ")),
		})
		if err != nil {
			return nil, err
		}
		stmt, err := sqlemit.NewStatement("create_index_"+Normalize(name), sqlemit.KindIndex, text, tableStmt)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	for _, fk := range t.ForeignKeys {
		name := fk.Name
		if name == "" {
			name = "fk_" + Normalize(t.TableName) + "_" + strings.Join(fk.Columns, "_")
		}
		text, err := sqlemit.Format(
			"ALTER TABLE {schema}.{table} ADD CONSTRAINT {name} FOREIGN KEY ({cols}) REFERENCES {refschema}.{reftable} ({refcols});",
			sqlemit.Vars{
				"schema":    sqlemit.Ident(t.Schema),
				"table":     sqlemit.Ident(t.TableName),
				"name":      sqlemit.Ident(name),
				"cols":      sqlemit.Raw(strings.Join(fk.Columns, ", ")),
				"refschema": sqlemit.Ident(fk.RefSchema),
				"reftable":  sqlemit.Ident(fk.RefTable),
				"refcols":   sqlemit.Raw(strings.Join(fk.RefColumns, ", ")),
			})
		if err != nil {
			return nil, err
		}
		// The referenced table may be produced by another emitter in the
		// same batch, or pre-exist as already applied.
		stmt, err := sqlemit.NewStatement("add_constraint_"+Normalize(name), sqlemit.KindConstraint, text,
			tableStmt, TableStatementName(fk.RefSchema, fk.RefTable))
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

// columnDefinition formats one column for CREATE TABLE, validating the
// identifier position.
func columnDefinition(emitter string, c Column) (string, error) {
	if !sqlemit.IsValidIdentifier(c.Name) {
		return "", sqlemit.NewSpecificationError(emitter, "", "unsafe column name "+c.Name)
	}
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(" ")
	b.WriteString(c.Type)
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}
	return b.String(), nil
}

var _ emit.Emitter = (*Table)(nil)
