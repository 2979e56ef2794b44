package emit

import (
	"sync"
	"time"

	"github.com/richarddahl/sqlemit"
)

// Bus receives generation, execution and error events for observability.
// Implementations must be safe for concurrent use; the engine calls them
// synchronously from the emitting goroutine.
type Bus interface {
	// Generated is called after an emitter produced its statements.
	Generated(emitter string, statements []*sqlemit.Statement)

	// Executed is called after a statement was applied successfully.
	Executed(emitter string, statement *sqlemit.Statement, d time.Duration)

	// Error is called when applying a statement failed.
	Error(emitter string, statement *sqlemit.Statement, err error)
}

// NopBus is a Bus that discards all events.
type NopBus struct{}

// Generated implements Bus.
func (NopBus) Generated(string, []*sqlemit.Statement) {}

// Executed implements Bus.
func (NopBus) Executed(string, *sqlemit.Statement, time.Duration) {}

// Error implements Bus.
func (NopBus) Error(string, *sqlemit.Statement, error) {}

// MultiBus fans events out to explicitly subscribed buses. There are no
// global listener lists; consumers subscribe to a MultiBus value they own.
type MultiBus struct {
	mu   sync.RWMutex
	next int
	subs map[int]Bus
}

// NewMultiBus returns an empty MultiBus.
func NewMultiBus() *MultiBus {
	return &MultiBus{subs: make(map[int]Bus)}
}

// Subscribe adds a bus and returns a function that removes it again.
func (m *MultiBus) Subscribe(b Bus) (unsubscribe func()) {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = b
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *MultiBus) each(f func(Bus)) {
	m.mu.RLock()
	subs := make([]Bus, 0, len(m.subs))
	for _, b := range m.subs {
		subs = append(subs, b)
	}
	m.mu.RUnlock()
	for _, b := range subs {
		f(b)
	}
}

// Generated implements Bus.
func (m *MultiBus) Generated(emitter string, statements []*sqlemit.Statement) {
	m.each(func(b Bus) { b.Generated(emitter, statements) })
}

// Executed implements Bus.
func (m *MultiBus) Executed(emitter string, statement *sqlemit.Statement, d time.Duration) {
	m.each(func(b Bus) { b.Executed(emitter, statement, d) })
}

// Error implements Bus.
func (m *MultiBus) Error(emitter string, statement *sqlemit.Statement, err error) {
	m.each(func(b Bus) { b.Error(emitter, statement, err) })
}
