// Package emitters provides the built-in emitter families: schema
// bootstrap, tables, audit triggers, merge/upsert functions, tenant
// row-security policies, vector-search tables, and seed data.
package emitters

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// Normalize converts a name to the snake_case form used for derived
// database identifiers.
func Normalize(name string) string {
	return inflect.Underscore(name)
}

// IndexName derives the conventional name for an index on the given columns.
func IndexName(table string, columns ...string) string {
	parts := append([]string{"ix", Normalize(table)}, columns...)
	return strings.Join(parts, "_")
}

// HistoryTableName derives the audit history table name for a table: the
// singularized form with a _history suffix, e.g. "orders" -> "order_history".
func HistoryTableName(table string) string {
	return Normalize(inflect.Singularize(table)) + "_history"
}

// AuditTriggerName derives the audit trigger name for a table.
func AuditTriggerName(table string) string {
	return "audit_" + Normalize(table)
}

// MergeFunctionName derives the upsert function name for a table: the
// singularized form with a merge_ prefix, e.g. "orders" -> "merge_order".
func MergeFunctionName(table string) string {
	return "merge_" + Normalize(inflect.Singularize(table))
}

// PolicyName derives the row-security policy name for a table.
func PolicyName(table, action string) string {
	return Normalize(table) + "_tenant_" + strings.ToLower(action)
}
