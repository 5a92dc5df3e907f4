package codec

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/gorohovAv/fit-plot-sub000/internal/model"
)

// catchAllTraining names the synthetic training that collects exercise
// blocks appearing before any explicit "Тренировка <name>" header.
const catchAllTraining = "Imported"

// Writer is the persistence surface the importer writes through. The
// import path bypasses the reactive store and talks to storage directly.
// Implemented by [storage.Store].
type Writer interface {
	SavePlan(ctx context.Context, name string) error
	SaveTraining(ctx context.Context, id, planName, name string) error
	SaveExercise(ctx context.Context, trainingID string, ex model.Exercise) error
	SaveResult(ctx context.Context, row model.ResultRow) error
	SaveCalorieEntry(ctx context.Context, entry model.CalorieEntry) error
}

// ImportStats counts what an import materialised.
type ImportStats struct {
	Trainings int
	Exercises int
	Results   int
	Calories  int
	Orphans   int // result lines dropped for lack of a preceding exercise
}

// Importer materialises validated notation text into storage.
type Importer struct {
	write   Writer
	catalog Catalog
	log     *slog.Logger
}

// NewImporter creates an Importer writing through the given surface.
func NewImporter(write Writer, catalog Catalog, logger *slog.Logger) *Importer {
	return &Importer{write: write, catalog: catalog, log: logger}
}

// Run imports text under the given plan name. It assumes the text has
// already passed [Validate]: unlike the validator it returns an error on
// the first catalog miss or malformed line instead of a line-numbered
// diagnostic, so callers must validate-before-import.
//
// Every materialised Training and Exercise gets a fresh generated id —
// ids from a previous import of the same text are never reused. Result
// lines with no preceding exercise name are dropped with a warning.
// Calorie lines are persisted immediately and independently of the
// training import path.
func (im *Importer) Run(ctx context.Context, text, planName string) (ImportStats, error) {
	var stats ImportStats

	parsed, calories, err := im.parse(text, &stats)
	if err != nil {
		return stats, err
	}

	for _, entry := range calories {
		if err := im.write.SaveCalorieEntry(ctx, entry); err != nil {
			return stats, fmt.Errorf("saving calorie entry %q: %w", entry.Date, err)
		}
		stats.Calories++
	}

	if len(parsed) == 0 {
		return stats, nil
	}

	if err := im.write.SavePlan(ctx, planName); err != nil {
		return stats, fmt.Errorf("saving plan %q: %w", planName, err)
	}
	for _, tr := range parsed {
		if err := im.write.SaveTraining(ctx, tr.ID, planName, tr.Name); err != nil {
			return stats, fmt.Errorf("saving training %q: %w", tr.Name, err)
		}
		stats.Trainings++
		for _, ex := range tr.Exercises {
			if err := im.write.SaveExercise(ctx, tr.ID, ex); err != nil {
				return stats, fmt.Errorf("saving exercise %q: %w", ex.Name, err)
			}
			stats.Exercises++
		}
		for _, res := range tr.Results {
			if err := im.write.SaveResult(ctx, res.Row()); err != nil {
				return stats, fmt.Errorf("saving result for %q: %w", res.ExerciseID, err)
			}
			stats.Results++
		}
	}
	return stats, nil
}

// parse walks the text once, binding each result line to the most
// recently seen exercise name and opening a new synthetic training at
// every explicit header.
func (im *Importer) parse(text string, stats *ImportStats) ([]model.Training, []model.CalorieEntry, error) {
	var trainings []model.Training
	var calories []model.CalorieEntry
	var current *model.Training
	var currentExercise *model.Exercise
	inCalories := false

	openTraining := func(name string) {
		trainings = append(trainings, model.Training{ID: uuid.NewString(), Name: name})
		current = &trainings[len(trainings)-1]
		currentExercise = nil
	}

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		if line == "" {
			inCalories = false
			continue
		}
		if isCalorieHeader(line) {
			inCalories = true
			continue
		}
		if inCalories {
			parsed, err := parseCalorieLine(line)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			calories = append(calories, model.CalorieEntry{
				Date:     parsed.Date,
				Calories: parsed.Calories,
				Weight:   parsed.Weight,
			})
			continue
		}
		if reAnnotation.MatchString(line) || isDateOnly(line) {
			continue
		}
		if name, ok := trainingHeaderName(line); ok {
			openTraining(name)
			continue
		}

		if reResultStart.MatchString(line) {
			weight, reps, date, err := parseResultLine(line)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			if currentExercise == nil {
				// A result with no exercise bound has nothing to attach
				// to; it is dropped, matching the exporter's source
				// format expectations.
				im.log.Warn("dropping orphaned result line", "line", i+1)
				stats.Orphans++
				continue
			}
			current.Results = append(current.Results, model.Result{
				ExerciseID: currentExercise.ID,
				Weight:     weight,
				Reps:       reps,
				Date:       date,
				Amplitude:  currentExercise.Amplitude,
			})
			continue
		}

		entry, ok := im.catalog.Lookup(line)
		if !ok {
			return nil, nil, fmt.Errorf("line %d: unknown exercise %q", i+1, line)
		}
		if current == nil {
			openTraining(catchAllTraining)
		}
		current.Exercises = append(current.Exercises, model.Exercise{
			ID:          uuid.NewString(),
			Name:        entry.Name,
			MuscleGroup: entry.MuscleGroup,
			Type:        entry.Type,
			Unilateral:  entry.Unilateral,
			Amplitude:   entry.Amplitude,
		})
		currentExercise = &current.Exercises[len(current.Exercises)-1]
	}

	// Trainings that ended up with no exercises carry no information.
	kept := trainings[:0]
	for _, tr := range trainings {
		if len(tr.Exercises) > 0 {
			kept = append(kept, tr)
		}
	}
	return kept, calories, nil
}
