// Package panel provides the fetch discipline shared by dashboard feature
// panels: every load is keyed by request identity, and a response that
// arrives after a newer load has started is discarded instead of
// overwriting fresher state.
package panel

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the panel-visible snapshot after a load settles: loading, error,
// empty, or data.
type State[T any] struct {
	// RequestID identifies the load that produced this state.
	RequestID string
	// Data is the committed payload. Zero when Err is set.
	Data T
	// Err is the failure of the committed load, when it failed.
	Err error
	// Loading reports whether a newer load is still in flight.
	Loading bool
	// UpdatedAt is when this state was committed.
	UpdatedAt time.Time
}

// Loader serializes state commits for one panel.
//
// Concurrent loads may overlap freely; only the most recently started load
// is allowed to commit. Responses from superseded loads are dropped without
// touching the state, as are responses whose context was cancelled, such as
// a visitor navigating away.
type Loader[T any] struct {
	mu    sync.Mutex
	seq   uint64
	state State[T]
}

// NewLoader creates an empty Loader.
func NewLoader[T any]() *Loader[T] {
	return &Loader[T]{}
}

// Load runs fetch and commits its result unless a newer load started in
// the meantime. It returns the state as seen after this load settled,
// which for a superseded load is the newer state, untouched by it.
func (l *Loader[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) State[T] {
	l.mu.Lock()
	l.seq++
	my := l.seq
	id := uuid.NewString()
	l.state.Loading = true
	l.mu.Unlock()

	data, err := fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if my != l.seq {
		// A newer load started while this one was in flight; its inputs
		// are the ones currently selected, so this result is stale.
		return l.state
	}
	if ctx.Err() != nil {
		// The view went away; leave existing state alone.
		l.state.Loading = false
		return l.state
	}

	l.state = State[T]{
		RequestID: id,
		UpdatedAt: time.Now(),
	}
	if err != nil {
		l.state.Err = err
	} else {
		l.state.Data = data
	}
	return l.state
}

// Current returns the last committed state without loading.
func (l *Loader[T]) Current() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
