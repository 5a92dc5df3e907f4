package sync

import (
	"context"
	"log/slog"

	"github.com/gorohovAv/fit-plot-sub000/internal/model"
	"github.com/gorohovAv/fit-plot-sub000/internal/store"
)

// Bootstrap seeds the reactive store from storage at process start. It
// holds the gate for the whole operation so the mirror never writes back
// the rows the loader just read, and releases it whether or not loading
// succeeded.
type Bootstrap struct {
	loader *Loader
	gate   *Gate
	log    *slog.Logger
}

// NewBootstrap creates a Bootstrap around the given loader and gate.
func NewBootstrap(loader *Loader, gate *Gate, logger *slog.Logger) *Bootstrap {
	return &Bootstrap{loader: loader, gate: gate, log: logger}
}

// Run loads the snapshot and replaces the store's state with it. When
// loading fails the store is seeded with empty collections and default
// settings instead. Returns true if a snapshot was loaded.
func (b *Bootstrap) Run(ctx context.Context, st *store.Store) bool {
	b.gate.Enter()
	defer b.gate.Exit()

	snap := b.loader.Load(ctx)
	if snap == nil {
		b.log.Warn("starting with default state")
		st.Set(func(model.AppState) model.AppState {
			return model.AppState{Settings: model.DefaultSettings()}
		})
		return false
	}

	st.Set(func(model.AppState) model.AppState { return *snap })
	b.log.Info("state loaded",
		"plans", len(snap.Plans),
		"calories", len(snap.Calories),
	)
	return true
}
