package emitters

import (
	"github.com/richarddahl/sqlemit"
	"github.com/richarddahl/sqlemit/emit"
)

// TenantPolicy emits a row-level-security policy set for one table: RLS is
// enabled and forced, and every command is restricted to rows whose tenant
// column matches the current tenant setting. Row-security policies are
// classified under the constraint kind.
type TenantPolicy struct {
	Schema       string
	TableName    string
	TenantColumn string

	// Setting is the session setting carrying the tenant, read with
	// current_setting. Defaults to "app.tenant_id".
	Setting string
}

// NewTenantPolicy returns a tenant policy emitter for the given table.
func NewTenantPolicy(schema, table, tenantColumn string) *TenantPolicy {
	return &TenantPolicy{
		Schema:       schema,
		TableName:    table,
		TenantColumn: tenantColumn,
		Setting:      "app.tenant_id",
	}
}

// Name implements emit.Emitter.
func (p *TenantPolicy) Name() string { return "policy:" + p.Schema + "." + p.TableName }

// Generate implements emit.Emitter.
func (p *TenantPolicy) Generate() ([]*sqlemit.Statement, error) {
	if p.TenantColumn == "" {
		return nil, sqlemit.NewSpecificationError(p.Name(), "", "tenant column cannot be empty")
	}
	tableStmt := TableStatementName(p.Schema, p.TableName)

	enableText, err := sqlemit.Format(
		"ALTER TABLE {schema}.{table} ENABLE ROW LEVEL SECURITY;\nALTER TABLE {schema}.{table} FORCE ROW LEVEL SECURITY;",
		sqlemit.Vars{
			"schema": sqlemit.Ident(p.Schema),
			"table":  sqlemit.Ident(p.TableName),
		})
	if err != nil {
		return nil, err
	}
	enable, err := sqlemit.NewStatement(
		"enable_rls_"+Normalize(p.TableName), sqlemit.KindConstraint, enableText, tableStmt)
	if err != nil {
		return nil, err
	}

	policyText, err := sqlemit.Format(
		`CREATE POLICY {policy} ON {schema}.{table}
USING ({column} = current_setting('`+p.Setting+`')::uuid)
WITH CHECK ({column} = current_setting('`+p.Setting+`')::uuid);`,
		sqlemit.Vars{
			"policy": sqlemit.Ident(PolicyName(p.TableName, "all")),
			"schema": sqlemit.Ident(p.Schema),
			"table":  sqlemit.Ident(p.TableName),
			"column": sqlemit.Ident(p.TenantColumn),
		})
	if err != nil {
		return nil, err
	}
	policy, err := sqlemit.NewStatement(
		"create_policy_"+Normalize(p.TableName)+"_tenant", sqlemit.KindConstraint, policyText,
		enable.Name())
	if err != nil {
		return nil, err
	}
	return []*sqlemit.Statement{enable, policy}, nil
}

var _ emit.Emitter = (*TenantPolicy)(nil)
