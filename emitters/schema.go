package emitters

import (
	"github.com/richarddahl/sqlemit"
	"github.com/richarddahl/sqlemit/emit"
)

// SchemaStatementName returns the statement name created for a schema, so
// other emitters can depend on it across emitter boundaries.
func SchemaStatementName(schema string) string {
	return "create_schema_" + Normalize(schema)
}

// ExtensionStatementName returns the statement name created for an extension.
func ExtensionStatementName(ext string) string {
	return "create_extension_" + Normalize(ext)
}

// Schema emits the bootstrap statements for one database schema: the schema
// itself, required extensions, and usage grants.
type Schema struct {
	// SchemaName is the schema to create.
	SchemaName string

	// Extensions are created with IF NOT EXISTS before any grants.
	Extensions []string

	// Usage lists roles granted USAGE on the schema.
	Usage []string
}

// NewSchema returns a schema bootstrap emitter.
func NewSchema(name string) *Schema {
	return &Schema{SchemaName: name}
}

// WithExtensions adds extensions to create.
func (s *Schema) WithExtensions(exts ...string) *Schema {
	s.Extensions = append(s.Extensions, exts...)
	return s
}

// WithUsage grants USAGE on the schema to the given roles.
func (s *Schema) WithUsage(roles ...string) *Schema {
	s.Usage = append(s.Usage, roles...)
	return s
}

// Name implements emit.Emitter.
func (s *Schema) Name() string { return "schema:" + s.SchemaName }

// Generate implements emit.Emitter.
func (s *Schema) Generate() ([]*sqlemit.Statement, error) {
	if s.SchemaName == "" {
		return nil, sqlemit.NewSpecificationError(s.Name(), "", "schema name cannot be empty")
	}
	schemaStmt := SchemaStatementName(s.SchemaName)
	text, err := sqlemit.Format("CREATE SCHEMA IF NOT EXISTS {schema};", sqlemit.Vars{
		"schema": sqlemit.Ident(s.SchemaName),
	})
	if err != nil {
		return nil, err
	}
	stmt, err := sqlemit.NewStatement(schemaStmt, sqlemit.KindSchema, text)
	if err != nil {
		return nil, err
	}
	statements := []*sqlemit.Statement{stmt}

	for _, ext := range s.Extensions {
		text, err := sqlemit.Format("CREATE EXTENSION IF NOT EXISTS {ext};", sqlemit.Vars{
			"ext": sqlemit.Ident(ext),
		})
		if err != nil {
			return nil, err
		}
		stmt, err := sqlemit.NewStatement(ExtensionStatementName(ext), sqlemit.KindExtension, text)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	for _, role := range s.Usage {
		text, err := sqlemit.Format("GRANT USAGE ON SCHEMA {schema} TO {role};", sqlemit.Vars{
			"schema": sqlemit.Ident(s.SchemaName),
			"role":   sqlemit.Ident(role),
		})
		if err != nil {
			return nil, err
		}
		stmt, err := sqlemit.NewStatement(
			"grant_usage_"+Normalize(s.SchemaName)+"_"+Normalize(role),
			sqlemit.KindGrant, text, schemaStmt,
		)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

var _ emit.Emitter = (*Schema)(nil)
