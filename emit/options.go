package emit

// TxScope selects the transaction boundary used when applying a batch.
type TxScope int

const (
	// TxBatch opens one transaction for the whole batch. The first failure
	// rolls back everything already applied. This is the default.
	TxBatch TxScope = iota

	// TxStatement opens one transaction per statement. Statements applied
	// before a failure stay committed.
	TxStatement

	// TxNone applies statements outside any transaction. Required for DDL
	// that cannot run inside one, such as CREATE INDEX CONCURRENTLY.
	TxNone
)

// String returns the scope name.
func (s TxScope) String() string {
	switch s {
	case TxBatch:
		return "batch"
	case TxStatement:
		return "statement"
	case TxNone:
		return "none"
	default:
		return "unknown"
	}
}

// ExistsPolicy decides what happens when a statement fails because the
// object it creates already exists.
type ExistsPolicy int

const (
	// ExistsFail surfaces the failure like any other execution error.
	// This is the default.
	ExistsFail ExistsPolicy = iota

	// ExistsSkip records the statement as skipped and continues. Use for
	// idempotent re-runs of bootstrap DDL.
	ExistsSkip
)

// Option configures emission calls.
type Option func(*options)

type options struct {
	dryRun          bool
	scope           TxScope
	bus             Bus
	onExists        ExistsPolicy
	applied         map[string]struct{}
	exclude         map[string]struct{}
	continueOnError bool
	label           string
	origins         map[string]string
}

func newOptions(opts []Option) *options {
	o := &options{
		scope: TxBatch,
		bus:   NopBus{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// originOf returns the emitter that produced the named statement, falling
// back to the batch label.
func (o *options) originOf(name string) string {
	if e, ok := o.origins[name]; ok {
		return e
	}
	return o.label
}

// WithDryRun renders the batch without performing any connection I/O.
func WithDryRun() Option {
	return func(o *options) { o.dryRun = true }
}

// WithTxScope sets the transaction boundary. See TxScope.
func WithTxScope(scope TxScope) Option {
	return func(o *options) { o.scope = scope }
}

// WithBus subscribes a notification bus to generation and execution events.
func WithBus(bus Bus) Option {
	return func(o *options) {
		if bus != nil {
			o.bus = bus
		}
	}
}

// WithOnExists sets the idempotence policy applied when a statement fails
// because its object already exists.
func WithOnExists(policy ExistsPolicy) Option {
	return func(o *options) { o.onExists = policy }
}

// WithApplied declares statement names from prior, already-applied batches.
// Dependencies on these names are satisfied without the statements being
// present in the current batch.
func WithApplied(names ...string) Option {
	return func(o *options) {
		if o.applied == nil {
			o.applied = make(map[string]struct{}, len(names))
		}
		for _, n := range names {
			o.applied[n] = struct{}{}
		}
	}
}

// WithExclude skips the named emitters during EmitAll.
func WithExclude(names ...string) Option {
	return func(o *options) {
		if o.exclude == nil {
			o.exclude = make(map[string]struct{}, len(names))
		}
		for _, n := range names {
			o.exclude[n] = struct{}{}
		}
	}
}

// WithContinueOnError attempts every statement and collects all failures
// instead of aborting on the first one. It forces per-statement
// transactions. Intended for best-effort teardown and cleanup paths.
func WithContinueOnError() Option {
	return func(o *options) { o.continueOnError = true }
}

// WithLabel sets the batch label reported in results and bus events when a
// statement's emitter is unknown.
func WithLabel(label string) Option {
	return func(o *options) { o.label = label }
}

// withOrigins records which emitter produced each statement, keyed by
// statement name. Used by EmitAll for cross-emitter batches.
func withOrigins(origins map[string]string) Option {
	return func(o *options) { o.origins = origins }
}
