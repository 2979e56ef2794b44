package emitters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richarddahl/sqlemit"
	"github.com/richarddahl/sqlemit/emitters"
)

// byName indexes generated statements for lookup assertions.
func byName(t *testing.T, statements []*sqlemit.Statement) map[string]*sqlemit.Statement {
	t.Helper()
	m := make(map[string]*sqlemit.Statement, len(statements))
	for _, s := range statements {
		require.NotContains(t, m, s.Name(), "duplicate statement name")
		m[s.Name()] = s
	}
	return m
}

func TestNaming(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "order_items", emitters.Normalize("OrderItems"))
	assert.Equal(t, "ix_orders_tenant_id_status", emitters.IndexName("orders", "tenant_id", "status"))
	assert.Equal(t, "order_history", emitters.HistoryTableName("orders"))
	assert.Equal(t, "audit_orders", emitters.AuditTriggerName("orders"))
	assert.Equal(t, "merge_order", emitters.MergeFunctionName("orders"))
	assert.Equal(t, "orders_tenant_all", emitters.PolicyName("orders", "ALL"))
}

func TestSchemaEmitter(t *testing.T) {
	t.Parallel()

	e := emitters.NewSchema("app").
		WithExtensions("pgcrypto").
		WithUsage("app_rw")
	assert.Equal(t, "schema:app", e.Name())

	statements, err := e.Generate()
	require.NoError(t, err)
	require.Len(t, statements, 3)
	m := byName(t, statements)

	schema := m["create_schema_app"]
	require.NotNil(t, schema)
	assert.Equal(t, sqlemit.KindSchema, schema.Kind())
	assert.Equal(t, "CREATE SCHEMA IF NOT EXISTS app;", schema.Text())
	assert.Empty(t, schema.Dependencies())

	ext := m["create_extension_pgcrypto"]
	require.NotNil(t, ext)
	assert.Equal(t, sqlemit.KindExtension, ext.Kind())
	assert.Equal(t, "CREATE EXTENSION IF NOT EXISTS pgcrypto;", ext.Text())

	grant := m["grant_usage_app_app_rw"]
	require.NotNil(t, grant)
	assert.Equal(t, sqlemit.KindGrant, grant.Kind())
	assert.Equal(t, "GRANT USAGE ON SCHEMA app TO app_rw;", grant.Text())
	assert.Equal(t, []string{"create_schema_app"}, grant.Dependencies())
}

func TestSchemaEmitterEmptyName(t *testing.T) {
	t.Parallel()

	_, err := emitters.NewSchema("").Generate()
	require.Error(t, err)
	assert.True(t, sqlemit.IsSpecificationError(err))
}

func TestSchemaEmitterUnsafeIdentifier(t *testing.T) {
	t.Parallel()

	_, err := emitters.NewSchema("app; DROP SCHEMA public").Generate()
	require.Error(t, err)
	assert.True(t, sqlemit.IsTemplateError(err))
}

func TestTableEmitter(t *testing.T) {
	t.Parallel()

	e := emitters.NewTable("app", "orders",
		emitters.Column{Name: "id", Type: "bigint", PrimaryKey: true},
		emitters.Column{Name: "tenant_id", Type: "uuid"},
		emitters.Column{Name: "note", Type: "text", Nullable: true},
		emitters.Column{Name: "created_at", Type: "timestamptz", Default: "now()"},
	).WithIndexes(
		emitters.Index{Columns: []string{"tenant_id"}},
		emitters.Index{Name: "ux_orders_note", Columns: []string{"note"}, Unique: true},
	).WithForeignKeys(
		emitters.ForeignKey{
			Columns:    []string{"tenant_id"},
			RefSchema:  "app",
			RefTable:   "tenants",
			RefColumns: []string{"id"},
		},
	)
	assert.Equal(t, "table:app.orders", e.Name())

	statements, err := e.Generate()
	require.NoError(t, err)
	require.Len(t, statements, 4)
	m := byName(t, statements)

	table := m["create_table_app_orders"]
	require.NotNil(t, table)
	assert.Equal(t, sqlemit.KindTable, table.Kind())
	assert.Equal(t, []string{"create_schema_app"}, table.Dependencies())
	assert.Contains(t, table.Text(), "CREATE TABLE IF NOT EXISTS app.orders (")
	assert.Contains(t, table.Text(), "id bigint NOT NULL")
	assert.Contains(t, table.Text(), "note text,")
	assert.Contains(t, table.Text(), "created_at timestamptz NOT NULL DEFAULT now()")
	assert.Contains(t, table.Text(), "PRIMARY KEY (id)")

	ix := m["create_index_ix_orders_tenant_id"]
	require.NotNil(t, ix)
	assert.Equal(t, sqlemit.KindIndex, ix.Kind())
	assert.Equal(t, "CREATE INDEX IF NOT EXISTS ix_orders_tenant_id ON app.orders (tenant_id);", ix.Text())
	assert.Equal(t, []string{"create_table_app_orders"}, ix.Dependencies())

	ux := m["create_index_ux_orders_note"]
	require.NotNil(t, ux)
	assert.Contains(t, ux.Text(), "CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_note")

	fk := m["add_constraint_fk_orders_tenant_id"]
	require.NotNil(t, fk)
	assert.Equal(t, sqlemit.KindConstraint, fk.Kind())
	assert.Contains(t, fk.Text(), "ADD CONSTRAINT fk_orders_tenant_id FOREIGN KEY (tenant_id) REFERENCES app.tenants (id);")
	assert.Equal(t, []string{"create_table_app_orders", "create_table_app_tenants"}, fk.Dependencies())
}

func TestTableEmitterValidation(t *testing.T) {
	t.Parallel()

	_, err := emitters.NewTable("app", "orders").Generate()
	require.Error(t, err)
	assert.True(t, sqlemit.IsSpecificationError(err))

	_, err = emitters.NewTable("app", "orders",
		emitters.Column{Name: "id; --", Type: "bigint"},
	).Generate()
	require.Error(t, err)
	assert.True(t, sqlemit.IsSpecificationError(err))
}

func TestAuditEmitter(t *testing.T) {
	t.Parallel()

	e := emitters.NewAudit([2]string{"app", "orders"}, [2]string{"app", "tenants"})
	statements, err := e.Generate()
	require.NoError(t, err)
	// Schema, log table, trigger function, one trigger per table.
	require.Len(t, statements, 5)
	m := byName(t, statements)

	log := m["create_table_audit_record_log"]
	require.NotNil(t, log)
	assert.Equal(t, []string{"create_schema_audit"}, log.Dependencies())
	assert.Contains(t, log.Text(), "old_row jsonb")

	fn := m["create_function_audit_record_change"]
	require.NotNil(t, fn)
	assert.Equal(t, sqlemit.KindFunction, fn.Kind())
	assert.Equal(t, []string{"create_table_audit_record_log"}, fn.Dependencies())
	assert.Contains(t, fn.Text(), "SECURITY DEFINER")
	assert.Contains(t, fn.Text(), "to_jsonb(OLD), to_jsonb(NEW)")

	trg := m["create_trigger_orders_audit_orders"]
	require.NotNil(t, trg)
	assert.Equal(t, sqlemit.KindTrigger, trg.Kind())
	assert.Contains(t, trg.Text(), "AFTER INSERT OR UPDATE OR DELETE ON app.orders")
	assert.Contains(t, trg.Text(), "EXECUTE FUNCTION audit.record_change();")
	// The trigger needs both its table and the recording function.
	assert.Equal(t, []string{"create_function_audit_record_change", "create_table_app_orders"}, trg.Dependencies())
}

func TestAuditEmitterNoTables(t *testing.T) {
	t.Parallel()

	_, err := emitters.NewAudit().Generate()
	require.Error(t, err)
	assert.True(t, sqlemit.IsSpecificationError(err))
}

func TestMergeEmitter(t *testing.T) {
	t.Parallel()

	e := emitters.NewMerge("app", "orders", []string{"id"}, []string{"status", "note"})
	statements, err := e.Generate()
	require.NoError(t, err)
	require.Len(t, statements, 1)

	s := statements[0]
	assert.Equal(t, "create_function_app_merge_order", s.Name())
	assert.Equal(t, sqlemit.KindFunction, s.Kind())
	assert.Equal(t, []string{"create_table_app_orders"}, s.Dependencies())
	assert.Contains(t, s.Text(), "p_id app.orders.id%TYPE")
	assert.Contains(t, s.Text(), "INSERT INTO app.orders (id, status, note)")
	assert.Contains(t, s.Text(), "ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, note = EXCLUDED.note")
	assert.Contains(t, s.Text(), "RETURNS void")
}

func TestMergeEmitterKeysOnly(t *testing.T) {
	t.Parallel()

	e := emitters.NewMerge("app", "tags", []string{"name"}, nil)
	statements, err := e.Generate()
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0].Text(), "ON CONFLICT (name) DO NOTHING")
}

func TestMergeEmitterValidation(t *testing.T) {
	t.Parallel()

	_, err := emitters.NewMerge("app", "orders", nil, []string{"status"}).Generate()
	require.Error(t, err)
	assert.True(t, sqlemit.IsSpecificationError(err))

	_, err = emitters.NewMerge("app", "orders", []string{"id"}, []string{"x; --"}).Generate()
	require.Error(t, err)
	assert.True(t, sqlemit.IsSpecificationError(err))
}

func TestTenantPolicyEmitter(t *testing.T) {
	t.Parallel()

	e := emitters.NewTenantPolicy("app", "orders", "tenant_id")
	statements, err := e.Generate()
	require.NoError(t, err)
	require.Len(t, statements, 2)
	m := byName(t, statements)

	enable := m["enable_rls_orders"]
	require.NotNil(t, enable)
	assert.Equal(t, sqlemit.KindConstraint, enable.Kind())
	assert.Equal(t, []string{"create_table_app_orders"}, enable.Dependencies())
	assert.Contains(t, enable.Text(), "ENABLE ROW LEVEL SECURITY")
	assert.Contains(t, enable.Text(), "FORCE ROW LEVEL SECURITY")

	policy := m["create_policy_orders_tenant"]
	require.NotNil(t, policy)
	assert.Equal(t, []string{"enable_rls_orders"}, policy.Dependencies())
	assert.Contains(t, policy.Text(), "CREATE POLICY orders_tenant_all ON app.orders")
	assert.Contains(t, policy.Text(), "tenant_id = current_setting('app.tenant_id')::uuid")
}

func TestVectorSearchEmitter(t *testing.T) {
	t.Parallel()

	e := emitters.NewVectorSearch("app", "documents", 1536)
	statements, err := e.Generate()
	require.NoError(t, err)
	require.Len(t, statements, 4)
	m := byName(t, statements)

	table := m["create_table_app_documents_embeddings"]
	require.NotNil(t, table)
	assert.Contains(t, table.Text(), "embedding vector(1536) NOT NULL")
	assert.Equal(t, []string{
		"create_extension_vector",
		"create_schema_app",
		"create_table_app_documents",
	}, table.Dependencies())

	ix := m["create_index_ix_documents_embeddings_embedding"]
	require.NotNil(t, ix)
	assert.Contains(t, ix.Text(), "USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)")

	fn := m["create_function_app_documents_similar"]
	require.NotNil(t, fn)
	assert.Contains(t, fn.Text(), "LANGUAGE sql")
	assert.Contains(t, fn.Text(), "STABLE")
	assert.Contains(t, fn.Text(), "embedding <=> p_query")
}

func TestVectorSearchEmitterValidation(t *testing.T) {
	t.Parallel()

	_, err := emitters.NewVectorSearch("app", "documents", 0).Generate()
	require.Error(t, err)
	assert.True(t, sqlemit.IsSpecificationError(err))
}

func TestSeedEmitter(t *testing.T) {
	t.Parallel()

	e := emitters.NewSeed("app", "statuses", []string{"code", "label"}, 2).OnConflict("code")
	statements, err := e.Generate()
	require.NoError(t, err)
	require.Len(t, statements, 2)

	first := statements[0]
	assert.Equal(t, "seed_statuses_1", first.Name())
	assert.Equal(t, sqlemit.KindInsert, first.Kind())
	assert.Equal(t,
		"INSERT INTO app.statuses (code, label) VALUES (:code_1, :label_1) ON CONFLICT (code) DO NOTHING;",
		first.Text())
	assert.Equal(t, []string{"create_table_app_statuses"}, first.Dependencies())
	assert.Equal(t, "seed_statuses_2", statements[1].Name())
	assert.Contains(t, statements[1].Text(), ":code_2, :label_2")
}

func TestSeedEmitterValidation(t *testing.T) {
	t.Parallel()

	_, err := emitters.NewSeed("app", "statuses", nil, 1).Generate()
	require.Error(t, err)
	assert.True(t, sqlemit.IsSpecificationError(err))

	_, err = emitters.NewSeed("app", "statuses", []string{"code"}, 0).Generate()
	require.Error(t, err)
	assert.True(t, sqlemit.IsSpecificationError(err))
}
