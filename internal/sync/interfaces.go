// Package sync mirrors the in-memory reactive store into the embedded
// database and reconstructs it back at startup.
//
// The package contains three main components:
//
//   - [Mirror] intercepts every store mutation and re-persists the
//     changed top-level slices, fire-and-forget.
//   - [Loader] rebuilds the full in-memory snapshot from storage in one
//     pass.
//   - [Bootstrap] runs the loader with the mirror suppressed and seeds
//     the store, falling back to defaults when loading fails.
package sync

import (
	"context"

	"github.com/gorohovAv/fit-plot-sub000/internal/model"
)

// Persister is the persistence service surface the mirror and loader
// consume. Implemented by [storage.Store]. All writes are idempotent
// upserts on their natural keys; all reads return empty collections,
// never nil-with-no-error, when there are no rows.
type Persister interface {
	SavePlan(ctx context.Context, name string) error
	SaveTraining(ctx context.Context, id, planName, name string) error
	SaveExercise(ctx context.Context, trainingID string, ex model.Exercise) error
	SaveResult(ctx context.Context, row model.ResultRow) error
	SaveSetting(ctx context.Context, key, value string) error
	SaveCalorieEntry(ctx context.Context, entry model.CalorieEntry) error
	SaveMaintenanceCalories(ctx context.Context, kcal int) error

	PlanNames(ctx context.Context) ([]string, error)
	TrainingsByPlan(ctx context.Context, planName string) ([]model.TrainingRow, error)
	ExercisesByTraining(ctx context.Context, trainingID string) ([]model.Exercise, error)
	ResultsForExercises(ctx context.Context, exerciseIDs []string) ([]model.ResultRow, error)
	AllSettings(ctx context.Context) (map[string]string, error)
	CalorieEntries(ctx context.Context) ([]model.CalorieEntry, error)
	MaintenanceCalories(ctx context.Context) (kcal int, ok bool, err error)
}
