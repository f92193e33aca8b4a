package state

import (
	"sync"
)

// Action is a named state transition request. Concrete actions are plain
// structs owned by the slice that handles them.
type Action interface {
	ActionName() string
}

// Reducer computes the next state from the current state and an action.
// Reducers must be pure: no I/O, no mutation of the input.
type Reducer[S any] func(S, Action) S

// Middleware observes every dispatched action after it has been applied.
type Middleware[S any] func(action Action, before, after S)

// Store holds application state and applies actions through a reducer.
// Dispatch is serialized, so two transitions never interleave.
type Store[S any] struct {
	mu      sync.Mutex
	current S
	reduce  Reducer[S]

	subsMu sync.Mutex
	subs   map[int]chan S
	nextID int

	middleware []Middleware[S]
}

// NewStore creates a store with an initial state and a root reducer.
func NewStore[S any](initial S, reduce Reducer[S], mw ...Middleware[S]) *Store[S] {
	return &Store[S]{
		current:    initial,
		reduce:     reduce,
		subs:       make(map[int]chan S),
		middleware: mw,
	}
}

// State returns a snapshot of the current state.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Dispatch applies an action and notifies subscribers. It returns the new state.
func (s *Store[S]) Dispatch(action Action) S {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.current
	after := s.reduce(before, action)
	s.current = after
	for _, mw := range s.middleware {
		mw(action, before, after)
	}

	// Broadcast under the lock so subscribers never observe states out of order.
	s.broadcast(after)
	return after
}

// Subscribe returns a channel that receives the state after every dispatch.
// Delivery is newest-wins: a slow reader sees the latest state, not every
// intermediate one. Call cancel to unsubscribe; the channel is then closed.
func (s *Store[S]) Subscribe() (<-chan S, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan S, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store[S]) broadcast(st S) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, ch := range s.subs {
		// Drop a stale pending value so the newest state always fits.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}
