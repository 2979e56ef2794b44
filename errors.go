package sqlemit

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrSpecification is returned when an emitter specification is invalid.
	ErrSpecification = errors.New("sqlemit: invalid specification")

	// ErrTemplate is returned when template rendering fails.
	ErrTemplate = errors.New("sqlemit: template error")

	// ErrCycle is returned when statement dependencies form a cycle.
	ErrCycle = errors.New("sqlemit: dependency cycle")

	// ErrMissingDependency is returned when a statement depends on a name
	// that is neither in the batch nor declared as already applied.
	ErrMissingDependency = errors.New("sqlemit: missing dependency")

	// ErrExecution is returned when applying a statement to the database fails.
	ErrExecution = errors.New("sqlemit: execution failed")

	// ErrDuplicateRegistration is returned when registering an emitter name
	// that is already present without an explicit override.
	ErrDuplicateRegistration = errors.New("sqlemit: duplicate registration")

	// ErrNotFound is returned when a requested emitter is not registered.
	ErrNotFound = errors.New("sqlemit: emitter not found")
)

// SpecificationError represents an invalid emitter or statement specification.
// It is always raised before any database I/O occurs.
type SpecificationError struct {
	Emitter string // Emitter name (if known)
	Name    string // Statement name (if applicable)
	Message string
}

// Error returns the error string.
func (e *SpecificationError) Error() string {
	var b strings.Builder
	b.WriteString("sqlemit: invalid specification")
	if e.Emitter != "" {
		b.WriteString(" in emitter ")
		b.WriteString(e.Emitter)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, " for statement %q", e.Name)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for SpecificationError.
func (e *SpecificationError) Is(target error) bool {
	return target == ErrSpecification
}

// NewSpecificationError returns a new SpecificationError.
func NewSpecificationError(emitter, name, message string) *SpecificationError {
	return &SpecificationError{Emitter: emitter, Name: name, Message: message}
}

// IsSpecificationError returns true if the error is a SpecificationError.
func IsSpecificationError(err error) bool {
	if err == nil {
		return false
	}
	var e *SpecificationError
	return errors.As(err, &e) || errors.Is(err, ErrSpecification)
}

// TemplateError represents a template rendering failure, such as a missing
// placeholder variable or an identifier containing unsafe characters.
type TemplateError struct {
	Template string // Template text (possibly truncated)
	Var      string // Offending variable name (if applicable)
	Message  string
}

// Error returns the error string.
func (e *TemplateError) Error() string {
	if e.Var != "" {
		return fmt.Sprintf("sqlemit: template error for {%s}: %s", e.Var, e.Message)
	}
	return fmt.Sprintf("sqlemit: template error: %s", e.Message)
}

// Is reports whether the target matches the sentinel error for TemplateError.
func (e *TemplateError) Is(target error) bool {
	return target == ErrTemplate
}

// NewTemplateError returns a new TemplateError for the given variable.
func NewTemplateError(template, varName, message string) *TemplateError {
	return &TemplateError{Template: Excerpt(template), Var: varName, Message: message}
}

// IsTemplateError returns true if the error is a TemplateError.
func IsTemplateError(err error) bool {
	if err == nil {
		return false
	}
	var e *TemplateError
	return errors.As(err, &e) || errors.Is(err, ErrTemplate)
}

// CycleError represents a dependency cycle between statements in a batch.
type CycleError struct {
	// Chain holds the statement names forming the cycle, in dependency
	// order, with the first name repeated at the end.
	Chain []string
}

// Error returns the error string.
func (e *CycleError) Error() string {
	return fmt.Sprintf("sqlemit: dependency cycle: %s", strings.Join(e.Chain, " -> "))
}

// Is reports whether the target matches the sentinel error for CycleError.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// NewCycleError returns a new CycleError for the given chain of names.
func NewCycleError(chain ...string) *CycleError {
	return &CycleError{Chain: chain}
}

// IsCycleError returns true if the error is a CycleError.
func IsCycleError(err error) bool {
	if err == nil {
		return false
	}
	var e *CycleError
	return errors.As(err, &e) || errors.Is(err, ErrCycle)
}

// MissingDependencyError represents a depends-on entry naming neither a
// current-batch statement nor an already-applied one.
type MissingDependencyError struct {
	Statement string // Statement declaring the dependency
	Missing   string // The unresolved name
}

// Error returns the error string.
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("sqlemit: statement %q depends on unknown statement %q", e.Statement, e.Missing)
}

// Is reports whether the target matches the sentinel error for MissingDependencyError.
func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrMissingDependency
}

// NewMissingDependencyError returns a new MissingDependencyError.
func NewMissingDependencyError(statement, missing string) *MissingDependencyError {
	return &MissingDependencyError{Statement: statement, Missing: missing}
}

// IsMissingDependencyError returns true if the error is a MissingDependencyError.
func IsMissingDependencyError(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingDependencyError
	return errors.As(err, &e) || errors.Is(err, ErrMissingDependency)
}

// maxExcerptLen bounds the SQL excerpt carried by ExecutionError.
const maxExcerptLen = 120

// ExecutionError wraps a driver error raised while applying a statement.
// It carries the failing statement's name, kind, and a truncated rendering
// of its text for reporting.
type ExecutionError struct {
	Statement string // Failing statement name
	Kind      Kind   // Failing statement kind
	Excerpt   string // Truncated SQL text
	Err       error  // Underlying driver error
}

// Error returns the error string.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("sqlemit: executing %s %q: %v (sql: %s)", e.Kind, e.Statement, e.Err, e.Excerpt)
}

// Unwrap returns the underlying driver error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the sentinel error for ExecutionError.
func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecution
}

// NewExecutionError returns a new ExecutionError for the given statement.
// The statement text is truncated to a short excerpt.
func NewExecutionError(name string, kind Kind, text string, err error) *ExecutionError {
	return &ExecutionError{Statement: name, Kind: kind, Excerpt: Excerpt(text), Err: err}
}

// IsExecutionError returns true if the error is an ExecutionError.
func IsExecutionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ExecutionError
	return errors.As(err, &e) || errors.Is(err, ErrExecution)
}

// AlreadyExistsError is an ExecutionError raised because the database object
// a statement creates already exists. It is classified from structured
// driver error codes by the dialect layer, not from message matching, so
// callers can apply an explicit idempotence policy.
type AlreadyExistsError struct {
	ExecutionError
}

// NewAlreadyExistsError returns a new AlreadyExistsError for the given statement.
func NewAlreadyExistsError(name string, kind Kind, text string, err error) *AlreadyExistsError {
	return &AlreadyExistsError{ExecutionError: ExecutionError{
		Statement: name,
		Kind:      kind,
		Excerpt:   Excerpt(text),
		Err:       err,
	}}
}

// IsAlreadyExistsError returns true if the error is an AlreadyExistsError.
func IsAlreadyExistsError(err error) bool {
	if err == nil {
		return false
	}
	var e *AlreadyExistsError
	return errors.As(err, &e)
}

// DuplicateRegistrationError represents a conflicting emitter registration.
type DuplicateRegistrationError struct {
	Name string
}

// Error returns the error string.
func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("sqlemit: emitter %q already registered", e.Name)
}

// Is reports whether the target matches the sentinel error for DuplicateRegistrationError.
func (e *DuplicateRegistrationError) Is(target error) bool {
	return target == ErrDuplicateRegistration
}

// NewDuplicateRegistrationError returns a new DuplicateRegistrationError.
func NewDuplicateRegistrationError(name string) *DuplicateRegistrationError {
	return &DuplicateRegistrationError{Name: name}
}

// IsDuplicateRegistrationError returns true if the error is a DuplicateRegistrationError.
func IsDuplicateRegistrationError(err error) bool {
	if err == nil {
		return false
	}
	var e *DuplicateRegistrationError
	return errors.As(err, &e) || errors.Is(err, ErrDuplicateRegistration)
}

// NotFoundError represents a lookup of an unregistered emitter name.
type NotFoundError struct {
	Name string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sqlemit: emitter %q not found", e.Name)
}

// Is reports whether the target matches the sentinel error for NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError returns a new NotFoundError for the given emitter name.
func NewNotFoundError(name string) *NotFoundError {
	return &NotFoundError{Name: name}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// AggregateError represents multiple errors collected during a
// continue-on-error bulk operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "sqlemit: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("sqlemit: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors for errors.Is/As traversal.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}

// Excerpt truncates SQL text for error messages and notifications,
// collapsing interior whitespace.
func Excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxExcerptLen {
		return text[:maxExcerptLen] + "..."
	}
	return text
}
