package emit

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/richarddahl/sqlemit"
	"github.com/richarddahl/sqlemit/dialect"
)

// Entry describes one registered emitter factory.
type Entry struct {
	Name        string
	Factory     Factory
	Description string
}

// Registry is an explicit catalog of named emitter factories enabling
// discovery and bulk, cross-emitter emission. It is a plain value owned by
// the application bootstrap process, not a global; tests construct a fresh
// instance per test.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// RegisterOption configures a single registration.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	override    bool
	description string
}

// WithOverride replaces an existing registration with the same name instead
// of failing.
func WithOverride() RegisterOption {
	return func(o *registerOptions) { o.override = true }
}

// WithDescription attaches a human-readable description to the entry.
func WithDescription(desc string) RegisterOption {
	return func(o *registerOptions) { o.description = desc }
}

// Register adds a named emitter factory. It fails with a
// DuplicateRegistrationError if the name is already present, unless
// WithOverride is given.
func (r *Registry) Register(name string, factory Factory, opts ...RegisterOption) error {
	if name == "" {
		return sqlemit.NewSpecificationError("", "", "registry entry name cannot be empty")
	}
	if factory == nil {
		return sqlemit.NewSpecificationError(name, "", "registry factory cannot be nil")
	}
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists && !o.override {
		return sqlemit.NewDuplicateRegistrationError(name)
	} else if !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = &Entry{Name: name, Factory: factory, Description: o.description}
	return nil
}

// Get returns the factory registered under name, or a NotFoundError.
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, sqlemit.NewNotFoundError(name)
	}
	return e.Factory, nil
}

// Deregister removes the named entry. Removing an absent name is a no-op.
func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// All returns every entry in registration order.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, *r.entries[name])
	}
	return all
}

// EmitAll instantiates every non-excluded registered emitter, generates
// their statements, unions them into one batch, resolves dependencies
// across emitter boundaries, and applies the batch to drv. A statement from
// one emitter may depend on a statement produced by another.
//
// Generation is pure, so emitters generate concurrently; execution of the
// resolved batch is strictly sequential. By default the batch runs in one
// transaction and the first execution failure aborts the rest. Under
// WithContinueOnError every statement is attempted on its own transaction
// and all failures are collected and returned together.
func (r *Registry) EmitAll(ctx context.Context, drv dialect.Driver, opts ...Option) ([]*BatchResult, error) {
	o := newOptions(append([]Option{WithLabel("registry")}, opts...))
	entries := r.All()

	type generated struct {
		name       string
		statements []*sqlemit.Statement
	}
	out := make([]generated, 0, len(entries))
	for _, e := range entries {
		if _, skip := o.exclude[e.Name]; skip {
			continue
		}
		out = append(out, generated{name: e.Name})
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := range out {
		idx := i
		name := out[idx].name
		factory, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			statements, err := factory().Generate()
			if err != nil {
				return err
			}
			out[idx].statements = statements
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Union statements in registration order so the resolver's stability
	// law keeps cross-run output deterministic.
	var batch []*sqlemit.Statement
	origins := make(map[string]string)
	for _, gen := range out {
		o.bus.Generated(gen.name, gen.statements)
		for _, s := range gen.statements {
			if prev, dup := origins[s.Name()]; dup {
				return nil, sqlemit.NewSpecificationError(gen.name, s.Name(),
					"statement name already produced by emitter "+prev)
			}
			origins[s.Name()] = gen.name
			batch = append(batch, s)
		}
	}
	ordered, err := resolve(batch, o.applied)
	if err != nil {
		return nil, err
	}
	o.origins = origins
	result, err := executeBatch(ctx, drv, ordered, o)
	if result == nil {
		return nil, err
	}
	return []*BatchResult{result}, err
}
