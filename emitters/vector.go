package emitters

import (
	"strconv"

	"github.com/richarddahl/sqlemit"
	"github.com/richarddahl/sqlemit/emit"
)

// VectorSearch emits a vector-search subsystem for one source table: the
// pgvector extension, an embeddings side table, an approximate index, and a
// similarity function. The query value binds as a named parameter; the
// engine never interpolates data into statement text.
type VectorSearch struct {
	Schema     string
	TableName  string // source table the embeddings belong to
	Dimensions int

	// Lists configures the ivfflat index. Defaults to 100.
	Lists int
}

// NewVectorSearch returns a vector-search emitter for the given table.
func NewVectorSearch(schema, table string, dimensions int) *VectorSearch {
	return &VectorSearch{Schema: schema, TableName: table, Dimensions: dimensions, Lists: 100}
}

// Name implements emit.Emitter.
func (v *VectorSearch) Name() string { return "vector:" + v.Schema + "." + v.TableName }

// Generate implements emit.Emitter.
func (v *VectorSearch) Generate() ([]*sqlemit.Statement, error) {
	if v.Dimensions <= 0 {
		return nil, sqlemit.NewSpecificationError(v.Name(), "", "dimensions must be positive")
	}
	embeddings := v.TableName + "_embeddings"
	extStmt := ExtensionStatementName("vector")
	tableStmt := TableStatementName(v.Schema, embeddings)

	extText, err := sqlemit.Format("CREATE EXTENSION IF NOT EXISTS {ext};", sqlemit.Vars{
		"ext": sqlemit.Ident("vector"),
	})
	if err != nil {
		return nil, err
	}
	ext, err := sqlemit.NewStatement(extStmt, sqlemit.KindExtension, extText)
	if err != nil {
		return nil, err
	}

	tableText, err := sqlemit.Format(
		`CREATE TABLE IF NOT EXISTS {schema}.{table} (
    source_id bigint PRIMARY KEY,
    embedding vector({dims}) NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT now()
);`, sqlemit.Vars{
			"schema": sqlemit.Ident(v.Schema),
			"table":  sqlemit.Ident(embeddings),
			"dims":   sqlemit.Raw(strconv.Itoa(v.Dimensions)),
		})
	if err != nil {
		return nil, err
	}
	table, err := sqlemit.NewStatement(tableStmt, sqlemit.KindTable, tableText,
		extStmt, SchemaStatementName(v.Schema), TableStatementName(v.Schema, v.TableName))
	if err != nil {
		return nil, err
	}

	indexName := IndexName(embeddings, "embedding")
	indexText, err := sqlemit.Format(
		"CREATE INDEX IF NOT EXISTS {name} ON {schema}.{table} USING ivfflat (embedding vector_cosine_ops) WITH (lists = {lists});",
		sqlemit.Vars{
			"name":   sqlemit.Ident(indexName),
			"schema": sqlemit.Ident(v.Schema),
			"table":  sqlemit.Ident(embeddings),
			"lists":  sqlemit.Raw(strconv.Itoa(v.Lists)),
		})
	if err != nil {
		return nil, err
	}
	index, err := sqlemit.NewStatement("create_index_"+Normalize(indexName), sqlemit.KindIndex, indexText, tableStmt)
	if err != nil {
		return nil, err
	}

	fn := sqlemit.NewFunction(v.Schema, Normalize(v.TableName)+"_similar").
		Args("p_query vector, p_limit int DEFAULT 10").
		Returns("TABLE (source_id bigint, distance float8)").
		Language("sql").
		Volatile("STABLE").
		DependsOn(tableStmt).
		Body(`SELECT source_id, embedding <=> p_query AS distance
FROM ` + v.Schema + `.` + embeddings + `
ORDER BY embedding <=> p_query
LIMIT p_limit;`)
	fnStmt, err := fn.Statement()
	if err != nil {
		return nil, err
	}
	return []*sqlemit.Statement{ext, table, index, fnStmt}, nil
}

var _ emit.Emitter = (*VectorSearch)(nil)
