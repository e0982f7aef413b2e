// Package overlay holds the single active overlay of an application shell and
// distributes its controls through request contexts.
package overlay

import (
	"html/template"
	"sync"
)

// State is a snapshot of the overlay. The zero value is Hidden.
type State struct {
	Visible bool
	Content template.HTML
}

// Hidden reports whether no overlay is shown.
func (s State) Hidden() bool {
	return !s.Visible
}

// Listener observes effective transitions of a Store.
type Listener func(prev, next State)

// Store is the single source of truth for the overlay of one shell.
// Opening replaces any current content; there is no stacking.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners []Listener
}

// NewStore returns a hidden Store.
func NewStore() *Store {
	return &Store{}
}

// Open shows content, replacing whatever was displayed before.
func (s *Store) Open(content template.HTML) {
	s.transition(State{Visible: true, Content: content})
}

// Close hides the overlay. Closing a hidden overlay is a no-op.
func (s *Store) Close() {
	s.transition(State{})
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// OnChange registers a listener invoked after every effective transition.
func (s *Store) OnChange(fn Listener) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) transition(next State) {
	s.mu.Lock()
	prev := s.state
	if !prev.Visible && !next.Visible {
		s.mu.Unlock()
		return
	}
	s.state = next
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(prev, next)
	}
}
