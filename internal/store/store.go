// Package store implements the in-memory reactive store holding the full
// application state. Mutations are synchronous; an optional interceptor
// installed at construction observes every state transition and is how
// the sync mirror attaches itself.
//
// Copy-on-write discipline: a setter that changes a top-level slice must
// produce a new slice value, never mutate the old one in place. The
// mirror's change detection compares slice identity, so in-place edits
// would be invisible to it.
package store

import (
	"sync"

	"github.com/gorohovAv/fit-plot-sub000/internal/model"
)

// Interceptor observes a completed state transition. It runs synchronously
// inside the setter, after the new state has been applied, with copies of
// both states.
type Interceptor func(prev, next model.AppState)

// Option configures a Store at construction.
type Option func(*Store)

// WithInterceptor installs the transition observer. At most one is
// supported; the last option wins.
func WithInterceptor(i Interceptor) Option {
	return func(s *Store) { s.intercept = i }
}

// Store holds the application state behind a mutex. All methods are safe
// for concurrent use, though the surrounding application is effectively
// single-writer.
type Store struct {
	mu        sync.RWMutex
	state     model.AppState
	intercept Interceptor
}

// New creates a Store seeded with the given initial state.
func New(initial model.AppState, opts ...Option) *Store {
	s := &Store{state: initial}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetState returns the current state value.
func (s *Store) GetState() model.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Set applies a full-replace update: fn receives the previous state and
// returns the complete next state. The interceptor (if any) runs before
// Set returns.
func (s *Store) Set(fn func(prev model.AppState) model.AppState) {
	s.mu.Lock()
	prev := s.state
	next := fn(prev)
	s.state = next
	intercept := s.intercept
	s.mu.Unlock()

	if intercept != nil {
		intercept(prev, next)
	}
}

// Patch is a shallow partial update: only non-nil fields are applied.
// MaintenanceCalories can be set to a value but not cleared back to nil;
// the unset state exists only before the first bulk load.
type Patch struct {
	Plans               *[]model.Plan
	Settings            *model.Settings
	Calories            *[]model.CalorieEntry
	MaintenanceCalories *int
}

// Merge applies a shallow-merge update: fields present in the patch
// replace the corresponding top-level state field, everything else is
// kept. The interceptor (if any) runs before Merge returns.
func (s *Store) Merge(p Patch) {
	s.Set(func(prev model.AppState) model.AppState {
		next := prev
		if p.Plans != nil {
			next.Plans = *p.Plans
		}
		if p.Settings != nil {
			next.Settings = *p.Settings
		}
		if p.Calories != nil {
			next.Calories = *p.Calories
		}
		if p.MaintenanceCalories != nil {
			v := *p.MaintenanceCalories
			next.MaintenanceCalories = &v
		}
		return next
	})
}
