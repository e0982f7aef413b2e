// Package screen tracks the fetch lifecycle of a single screen.
package screen

import "sync"

// Phase enumerates the lifecycle stages of a screen.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	LoadedEmpty
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadedEmpty:
		return "empty"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// State is the tagged variant held by a Machine. Data is meaningful when
// Phase is Loaded, Err when Phase is Failed. Key names the request the state
// answers, such as an identifier or a search window.
type State[T any] struct {
	Phase      Phase
	Data       T
	Err        error
	Generation uint64
	Key        string
}

func (s State[T]) IsIdle() bool    { return s.Phase == Idle }
func (s State[T]) IsLoading() bool { return s.Phase == Loading }
func (s State[T]) IsLoaded() bool  { return s.Phase == Loaded }
func (s State[T]) IsEmpty() bool   { return s.Phase == LoadedEmpty }
func (s State[T]) IsFailed() bool  { return s.Phase == Failed }

// Ticket identifies one issued request.
type Ticket struct {
	generation uint64
	key        string
}

// Generation returns the request sequence number.
func (t Ticket) Generation() uint64 {
	return t.generation
}

// Key returns the key the request was issued for.
func (t Ticket) Key() string {
	return t.key
}

// Machine serialises state transitions of a screen and discards completions
// that belong to a request older than the latest one issued.
type Machine[T any] struct {
	mu     sync.Mutex
	latest uint64
	state  State[T]
}

// NewMachine returns an Idle machine.
func NewMachine[T any]() *Machine[T] {
	return &Machine[T]{}
}

// Begin issues a new unkeyed request and moves to Loading.
func (m *Machine[T]) Begin() Ticket {
	return m.BeginFor("")
}

// BeginFor issues a new request for key and moves to Loading.
func (m *Machine[T]) BeginFor(key string) Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest++
	m.state = State[T]{Phase: Loading, Generation: m.latest, Key: key}
	return Ticket{generation: m.latest, key: key}
}

// Resolve records a successful completion. It returns false when the ticket
// is stale and the value was dropped.
func (m *Machine[T]) Resolve(t Ticket, value T, empty bool) bool {
	phase := Loaded
	if empty {
		phase = LoadedEmpty
	}
	return m.complete(t, State[T]{Phase: phase, Data: value, Generation: t.generation, Key: t.key})
}

// Fail records a failed completion. It returns false for stale tickets.
func (m *Machine[T]) Fail(t Ticket, err error) bool {
	return m.complete(t, State[T]{Phase: Failed, Err: err, Generation: t.generation, Key: t.key})
}

// Settle records the outcome of t and returns the state its caller should
// show. That is the held state while it answers the same key, so a newer
// request for the same key wins. When a request for another key has taken
// over, the caller gets its own outcome and never data for another key.
func (m *Machine[T]) Settle(t Ticket, value T, empty bool, err error) State[T] {
	own := State[T]{Phase: Loaded, Data: value, Generation: t.generation, Key: t.key}
	switch {
	case err != nil:
		var zero T
		own = State[T]{Phase: Failed, Data: zero, Err: err, Generation: t.generation, Key: t.key}
		m.Fail(t, err)
	case empty:
		own.Phase = LoadedEmpty
		m.Resolve(t, value, true)
	default:
		m.Resolve(t, value, false)
	}
	if held := m.Snapshot(); held.Key == t.key {
		return held
	}
	return own
}

// Reset returns the machine to Idle and invalidates outstanding tickets.
func (m *Machine[T]) Reset() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest++
	m.state = State[T]{Phase: Idle, Generation: m.latest}
	return m.state
}

// Update mutates loaded data in place under the machine lock. It is a no-op
// unless the machine holds data.
func (m *Machine[T]) Update(fn func(T) (T, bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != Loaded {
		return
	}
	value, empty := fn(m.state.Data)
	m.state.Data = value
	if empty {
		m.state.Phase = LoadedEmpty
	}
}

// Snapshot returns the current state.
func (m *Machine[T]) Snapshot() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine[T]) complete(t Ticket, next State[T]) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.generation != m.latest {
		return false
	}
	m.state = next
	return true
}
