package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gorohovAv/fit-plot-sub000/internal/model"
)

// Loader reconstructs the full in-memory snapshot from storage in one
// top-to-bottom traversal. It is used at process start and for explicit
// "reload from database" actions.
type Loader struct {
	persist Persister
	log     *slog.Logger
}

// NewLoader creates a Loader reading from the given persister.
func NewLoader(persist Persister, logger *slog.Logger) *Loader {
	return &Loader{persist: persist, log: logger}
}

// Load returns the reconstructed snapshot, or nil on any error. Errors
// are logged, never returned: the caller interprets nil as "proceed with
// empty/default state".
func (l *Loader) Load(ctx context.Context) *model.AppState {
	snap, err := l.load(ctx)
	if err != nil {
		l.log.Error("bulk load failed", "error", err)
		return nil
	}
	return snap
}

func (l *Loader) load(ctx context.Context) (*model.AppState, error) {
	plans, err := l.loadPlans(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := l.persist.AllSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	settings := coerceSettings(raw)

	calories, err := l.persist.CalorieEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading calorie entries: %w", err)
	}

	var maintenance *int
	if kcal, ok, err := l.persist.MaintenanceCalories(ctx); err != nil {
		return nil, fmt.Errorf("loading maintenance calories: %w", err)
	} else if ok {
		maintenance = &kcal
	}

	return &model.AppState{
		Plans:               plans,
		Settings:            settings,
		Calories:            calories,
		MaintenanceCalories: maintenance,
	}, nil
}

// loadPlans walks plans → trainings → exercises, then fetches all results
// for a training's exercises in a single batched query rather than one
// query per exercise. Row order as returned by storage is preserved.
func (l *Loader) loadPlans(ctx context.Context) ([]model.Plan, error) {
	names, err := l.persist.PlanNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}

	plans := make([]model.Plan, 0, len(names))
	for _, name := range names {
		rows, err := l.persist.TrainingsByPlan(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("loading trainings for plan %q: %w", name, err)
		}

		trainings := make([]model.Training, 0, len(rows))
		for _, tr := range rows {
			training, err := l.loadTraining(ctx, tr)
			if err != nil {
				return nil, err
			}
			trainings = append(trainings, training)
		}
		plans = append(plans, model.Plan{Name: name, Trainings: trainings})
	}
	return plans, nil
}

func (l *Loader) loadTraining(ctx context.Context, tr model.TrainingRow) (model.Training, error) {
	exercises, err := l.persist.ExercisesByTraining(ctx, tr.ID)
	if err != nil {
		return model.Training{}, fmt.Errorf("loading exercises for training %q: %w", tr.ID, err)
	}

	ids := make([]string, 0, len(exercises))
	for _, ex := range exercises {
		ids = append(ids, ex.ID)
	}

	resultRows, err := l.persist.ResultsForExercises(ctx, ids)
	if err != nil {
		return model.Training{}, fmt.Errorf("loading results for training %q: %w", tr.ID, err)
	}

	training := model.Training{
		ID:        tr.ID,
		Name:      tr.Name,
		Exercises: exercises,
	}
	for _, row := range resultRows {
		if row.IsPlanned {
			training.PlannedResults = append(training.PlannedResults, row.PlannedResult())
		} else {
			training.Results = append(training.Results, row.Result())
		}
	}
	return training, nil
}

// coerceSettings projects the raw key/value rows onto typed settings,
// falling back to the canonical defaults for missing or unparsable
// values.
func coerceSettings(raw map[string]string) model.Settings {
	s := model.DefaultSettings()
	if theme, ok := raw[model.SettingTheme]; ok && theme != "" {
		s.Theme = model.Theme(theme)
	}
	if weight, ok := raw[model.SettingWeight]; ok {
		if v, err := strconv.ParseFloat(weight, 64); err == nil {
			s.Weight = v
		}
	}
	s.DevMode = raw[model.SettingDevMode] == "true"
	return s
}
