package emit

import (
	"context"

	"github.com/richarddahl/sqlemit"
	"github.com/richarddahl/sqlemit/dialect"
)

// Emitter produces the statements for one logical database-object family,
// for example a table plus its audit trigger, or a tenant security policy.
//
// Generate must be deterministic and side-effect free: identical emitter
// parameters always produce statements with identical name, kind and text.
// It is safe to call Generate repeatedly and concurrently.
type Emitter interface {
	// Name identifies the emitter in registries, results and bus events.
	Name() string

	// Generate produces the emitter's statements. It performs no I/O and
	// fails with a SpecificationError or TemplateError before any
	// statement could reach a connection.
	Generate() ([]*sqlemit.Statement, error)
}

// Factory constructs an emitter. Registries hold factories rather than
// instances so every emission starts from fresh construction parameters.
type Factory func() Emitter

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc struct {
	// EmitterName is returned by Name.
	EmitterName string
	// GenerateFunc is invoked by Generate.
	GenerateFunc func() ([]*sqlemit.Statement, error)
}

// Name implements Emitter.
func (f EmitterFunc) Name() string { return f.EmitterName }

// Generate implements Emitter.
func (f EmitterFunc) Generate() ([]*sqlemit.Statement, error) {
	return f.GenerateFunc()
}

// Static returns an emitter that always yields the given statements.
func Static(name string, statements ...*sqlemit.Statement) Emitter {
	return EmitterFunc{
		EmitterName: name,
		GenerateFunc: func() ([]*sqlemit.Statement, error) {
			out := make([]*sqlemit.Statement, len(statements))
			copy(out, statements)
			return out, nil
		},
	}
}

// Execute generates the emitter's statements, orders them, and applies them
// to drv inside a transaction. With WithDryRun it performs no connection I/O
// and returns the rendered batch instead.
func Execute(ctx context.Context, drv dialect.Driver, e Emitter, opts ...Option) (*BatchResult, error) {
	o := newOptions(append([]Option{WithLabel(e.Name())}, opts...))
	statements, err := e.Generate()
	if err != nil {
		return nil, err
	}
	o.bus.Generated(e.Name(), statements)
	ordered, err := resolve(statements, o.applied)
	if err != nil {
		return nil, err
	}
	return executeBatch(ctx, drv, ordered, o)
}
