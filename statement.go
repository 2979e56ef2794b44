package sqlemit

import (
	"sort"
	"strings"
)

// Kind classifies the database object a statement creates or modifies.
type Kind string

// Statement kinds, covering the DDL and DML families the engine emits.
const (
	KindSchema     Kind = "schema"
	KindExtension  Kind = "extension"
	KindTable      Kind = "table"
	KindFunction   Kind = "function"
	KindTrigger    Kind = "trigger"
	KindIndex      Kind = "index"
	KindConstraint Kind = "constraint"
	KindView       Kind = "view"
	KindGrant      Kind = "grant"
	KindRole       Kind = "role"
	KindProcedure  Kind = "procedure"
	KindDatabase   Kind = "database"
	KindInsert     Kind = "insert"
)

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// Valid reports whether k is one of the known statement kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSchema, KindExtension, KindTable, KindFunction, KindTrigger,
		KindIndex, KindConstraint, KindView, KindGrant, KindRole,
		KindProcedure, KindDatabase, KindInsert:
		return true
	}
	return false
}

// Statement is one named SQL unit with a kind and declared dependencies.
// Statements are immutable once constructed; their lifecycle is
// create, order, apply or discard.
type Statement struct {
	name      string
	kind      Kind
	text      string
	dependsOn map[string]struct{}
}

// NewStatement creates a Statement. The name must be unique within any batch
// the statement is resolved in; deps name the statements that must be applied
// first. It returns a SpecificationError if the name or text is empty, or if
// the kind is unknown.
func NewStatement(name string, kind Kind, text string, deps ...string) (*Statement, error) {
	switch {
	case name == "":
		return nil, NewSpecificationError("", "", "statement name cannot be empty")
	case strings.TrimSpace(text) == "":
		return nil, NewSpecificationError("", name, "statement text cannot be empty")
	case !kind.Valid():
		return nil, NewSpecificationError("", name, "unknown statement kind "+string(kind))
	}
	s := &Statement{name: name, kind: kind, text: text}
	if len(deps) > 0 {
		s.dependsOn = make(map[string]struct{}, len(deps))
		for _, d := range deps {
			if d == "" {
				return nil, NewSpecificationError("", name, "dependency name cannot be empty")
			}
			s.dependsOn[d] = struct{}{}
		}
	}
	return s, nil
}

// MustStatement is like NewStatement but panics on error. It is intended for
// statically-known statements in emitter definitions.
func MustStatement(name string, kind Kind, text string, deps ...string) *Statement {
	s, err := NewStatement(name, kind, text, deps...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the statement name.
func (s *Statement) Name() string { return s.name }

// Kind returns the statement kind.
func (s *Statement) Kind() Kind { return s.kind }

// Text returns the SQL text. Data values are carried as named parameters
// (e.g. :value) to be bound by the caller's connection layer.
func (s *Statement) Text() string { return s.text }

// DependsOn reports whether the statement declares a dependency on name.
func (s *Statement) DependsOn(name string) bool {
	_, ok := s.dependsOn[name]
	return ok
}

// Dependencies returns the declared dependency names in sorted order.
// The returned slice is a copy.
func (s *Statement) Dependencies() []string {
	if len(s.dependsOn) == 0 {
		return nil
	}
	deps := make([]string, 0, len(s.dependsOn))
	for d := range s.dependsOn {
		deps = append(deps, d)
	}
	sort.Strings(deps)
	return deps
}

// String returns a short description for logging.
func (s *Statement) String() string {
	return string(s.kind) + " " + s.name
}
