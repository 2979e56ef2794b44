package sqlemit

import (
	"strings"
)

// FunctionBuilder builds a CREATE FUNCTION statement fluently. It replaces
// attribute introspection with an explicit, composable construction API for
// multi-part SQL such as function and trigger pairs.
type FunctionBuilder struct {
	schema   string
	name     string
	args     string
	returns  string
	language string
	volatile string
	security string
	body     string
	deps     []string
	stmtName string
}

// NewFunction returns a builder for a function in the given schema.
func NewFunction(schema, name string) *FunctionBuilder {
	return &FunctionBuilder{
		schema:   schema,
		name:     name,
		returns:  "TRIGGER",
		language: "plpgsql",
	}
}

// Args sets the function argument list (rendered verbatim).
func (b *FunctionBuilder) Args(args string) *FunctionBuilder {
	b.args = args
	return b
}

// Returns sets the return type. Defaults to TRIGGER.
func (b *FunctionBuilder) Returns(typ string) *FunctionBuilder {
	b.returns = typ
	return b
}

// Language sets the function language. Defaults to plpgsql.
func (b *FunctionBuilder) Language(lang string) *FunctionBuilder {
	b.language = lang
	return b
}

// Volatile marks the function VOLATILE, STABLE or IMMUTABLE.
func (b *FunctionBuilder) Volatile(v string) *FunctionBuilder {
	b.volatile = v
	return b
}

// SecurityDefiner marks the function SECURITY DEFINER.
func (b *FunctionBuilder) SecurityDefiner() *FunctionBuilder {
	b.security = "SECURITY DEFINER"
	return b
}

// Body sets the function body (the text between the dollar quotes).
func (b *FunctionBuilder) Body(body string) *FunctionBuilder {
	b.body = body
	return b
}

// DependsOn declares dependencies on other statement names.
func (b *FunctionBuilder) DependsOn(names ...string) *FunctionBuilder {
	b.deps = append(b.deps, names...)
	return b
}

// Named overrides the default statement name.
func (b *FunctionBuilder) Named(name string) *FunctionBuilder {
	b.stmtName = name
	return b
}

// StatementName returns the name the built statement will carry, so trigger
// builders can depend on it before Statement is called.
func (b *FunctionBuilder) StatementName() string {
	if b.stmtName != "" {
		return b.stmtName
	}
	return "create_function_" + b.schema + "_" + b.name
}

// Statement renders the CREATE FUNCTION statement.
func (b *FunctionBuilder) Statement() (*Statement, error) {
	if b.body == "" {
		return nil, NewSpecificationError("", b.StatementName(), "function body cannot be empty")
	}
	head, err := Format("CREATE OR REPLACE FUNCTION {schema}.{name}", Vars{
		"schema": Ident(b.schema),
		"name":   Ident(b.name),
	})
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString(head)
	sb.WriteString("(")
	sb.WriteString(b.args)
	sb.WriteString(")\nRETURNS ")
	sb.WriteString(b.returns)
	sb.WriteString("\nLANGUAGE ")
	sb.WriteString(b.language)
	if b.volatile != "" {
		sb.WriteString("\n")
		sb.WriteString(b.volatile)
	}
	if b.security != "" {
		sb.WriteString("\n")
		sb.WriteString(b.security)
	}
	sb.WriteString("\nAS $$\n")
	sb.WriteString(b.body)
	sb.WriteString("\n$$;")
	return NewStatement(b.StatementName(), KindFunction, sb.String(), b.deps...)
}

// TriggerBuilder builds a CREATE TRIGGER statement fluently. The trigger
// depends on its function statement automatically when built with For.
type TriggerBuilder struct {
	schema   string
	table    string
	name     string
	timing   string
	events   []string
	forEach  string
	when     string
	function string
	deps     []string
	stmtName string
}

// NewTrigger returns a builder for a trigger on schema.table.
func NewTrigger(schema, table, name string) *TriggerBuilder {
	return &TriggerBuilder{
		schema:  schema,
		table:   table,
		name:    name,
		timing:  "AFTER",
		forEach: "ROW",
	}
}

// Before sets the trigger timing to BEFORE.
func (b *TriggerBuilder) Before() *TriggerBuilder {
	b.timing = "BEFORE"
	return b
}

// After sets the trigger timing to AFTER (the default).
func (b *TriggerBuilder) After() *TriggerBuilder {
	b.timing = "AFTER"
	return b
}

// On declares the events firing the trigger (INSERT, UPDATE, DELETE).
func (b *TriggerBuilder) On(events ...string) *TriggerBuilder {
	b.events = append(b.events, events...)
	return b
}

// ForEachStatement fires the trigger once per statement instead of per row.
func (b *TriggerBuilder) ForEachStatement() *TriggerBuilder {
	b.forEach = "STATEMENT"
	return b
}

// When sets an optional trigger condition.
func (b *TriggerBuilder) When(cond string) *TriggerBuilder {
	b.when = cond
	return b
}

// For binds the trigger to the function built by fb, adding the function's
// statement name as a dependency.
func (b *TriggerBuilder) For(fb *FunctionBuilder) *TriggerBuilder {
	b.function = fb.schema + "." + fb.name
	b.deps = append(b.deps, fb.StatementName())
	return b
}

// Executes binds the trigger to an existing function by qualified name
// without adding a dependency.
func (b *TriggerBuilder) Executes(qualified string) *TriggerBuilder {
	b.function = qualified
	return b
}

// DependsOn declares dependencies on other statement names.
func (b *TriggerBuilder) DependsOn(names ...string) *TriggerBuilder {
	b.deps = append(b.deps, names...)
	return b
}

// Named overrides the default statement name.
func (b *TriggerBuilder) Named(name string) *TriggerBuilder {
	b.stmtName = name
	return b
}

// StatementName returns the name the built statement will carry.
func (b *TriggerBuilder) StatementName() string {
	if b.stmtName != "" {
		return b.stmtName
	}
	return "create_trigger_" + b.table + "_" + b.name
}

// Statement renders the CREATE TRIGGER statement.
func (b *TriggerBuilder) Statement() (*Statement, error) {
	if len(b.events) == 0 {
		return nil, NewSpecificationError("", b.StatementName(), "trigger declares no events")
	}
	if b.function == "" {
		return nil, NewSpecificationError("", b.StatementName(), "trigger has no function; call For or Executes")
	}
	head, err := Format("CREATE OR REPLACE TRIGGER {name}\n{timing} {events} ON {schema}.{table}", Vars{
		"name":   Ident(b.name),
		"timing": Raw(b.timing),
		"events": Raw(strings.Join(b.events, " OR ")),
		"schema": Ident(b.schema),
		"table":  Ident(b.table),
	})
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString(head)
	sb.WriteString("\nFOR EACH ")
	sb.WriteString(b.forEach)
	if b.when != "" {
		sb.WriteString("\nWHEN (")
		sb.WriteString(b.when)
		sb.WriteString(")")
	}
	sb.WriteString("\nEXECUTE FUNCTION ")
	sb.WriteString(b.function)
	sb.WriteString("();")
	return NewStatement(b.StatementName(), KindTrigger, sb.String(), b.deps...)
}
