// Package storage manages the SQLite database that mirrors the reactive
// store: plans, trainings, exercises, results, settings, and calorie
// entries.
//
// Only this package may open or query the database. All other packages
// receive a [*Store] and call its methods. Every write is an idempotent
// upsert on the record's natural key, which is what lets the mirror
// re-persist the whole plans tree on every change without creating
// duplicates.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/gorohovAv/fit-plot-sub000/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS plans (
    plan_name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS trainings (
    id        TEXT PRIMARY KEY,
    plan_name TEXT NOT NULL,
    name      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS exercises (
    id             TEXT PRIMARY KEY,
    training_id    TEXT NOT NULL,
    name           TEXT NOT NULL,
    muscle_group   TEXT NOT NULL DEFAULT '',
    equipment      TEXT NOT NULL DEFAULT '',
    unilateral     INTEGER NOT NULL DEFAULT 0,
    amplitude      TEXT NOT NULL DEFAULT 'full',
    comment        TEXT NOT NULL DEFAULT '',
    timer_duration INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS results (
    exercise_id TEXT    NOT NULL,
    weight      REAL    NOT NULL,
    reps        INTEGER NOT NULL,
    date        TEXT    NOT NULL,
    amplitude   TEXT    NOT NULL DEFAULT 'full',
    is_planned  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS calorie_entries (
    date     TEXT PRIMARY KEY,
    calories INTEGER NOT NULL,
    weight   REAL NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_results_natural
    ON results (exercise_id, weight, reps, date, amplitude, is_planned);
CREATE INDEX IF NOT EXISTS idx_trainings_plan     ON trainings (plan_name);
CREATE INDEX IF NOT EXISTS idx_exercises_training ON exercises (training_id);
CREATE INDEX IF NOT EXISTS idx_results_date       ON results (date DESC);
`

// maintenanceKey is the settings row carrying the maintenance-calories
// value. It is exposed through its own save/get pair rather than the
// generic settings surface because it changes on its own cadence.
const maintenanceKey = "maintenanceCalories"

// Store is the SQLite-backed persistence service.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default path for the database:
// ~/.local/share/fitplot/fitplot.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "fitplot", "fitplot.db"), nil
}

// Open opens (or creates) the SQLite database at path, applies the schema,
// and configures WAL mode for better concurrent read performance.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}

	// Single writer to avoid SQLITE_BUSY under WAL.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies the schema DDL idempotently (CREATE IF NOT EXISTS).
func migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// --- writes ------------------------------------------------------------------

// SavePlan upserts a plan row. The plan name is the primary key, so two
// in-memory plans sharing a name collapse into one row, last write wins.
func (s *Store) SavePlan(ctx context.Context, name string) error {
	const q = `INSERT INTO plans (plan_name) VALUES (?) ON CONFLICT(plan_name) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, q, name); err != nil {
		return fmt.Errorf("upserting plan %q: %w", name, err)
	}
	return nil
}

// SaveTraining upserts a training row keyed by id. Re-upserting with a
// different plan name reparents the training.
func (s *Store) SaveTraining(ctx context.Context, id, planName, name string) error {
	const q = `
		INSERT INTO trainings (id, plan_name, name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    plan_name = excluded.plan_name,
		    name      = excluded.name`
	if _, err := s.db.ExecContext(ctx, q, id, planName, name); err != nil {
		return fmt.Errorf("upserting training %q: %w", id, err)
	}
	return nil
}

// SaveExercise upserts an exercise row keyed by id, attached to the
// given training.
func (s *Store) SaveExercise(ctx context.Context, trainingID string, ex model.Exercise) error {
	const q = `
		INSERT INTO exercises
		    (id, training_id, name, muscle_group, equipment, unilateral,
		     amplitude, comment, timer_duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    training_id    = excluded.training_id,
		    name           = excluded.name,
		    muscle_group   = excluded.muscle_group,
		    equipment      = excluded.equipment,
		    unilateral     = excluded.unilateral,
		    amplitude      = excluded.amplitude,
		    comment        = excluded.comment,
		    timer_duration = excluded.timer_duration`
	_, err := s.db.ExecContext(ctx, q,
		ex.ID,
		trainingID,
		ex.Name,
		string(ex.MuscleGroup),
		string(ex.Type),
		ex.Unilateral,
		string(ex.Amplitude),
		ex.Comment,
		ex.TimerDuration,
	)
	if err != nil {
		return fmt.Errorf("upserting exercise %q: %w", ex.ID, err)
	}
	return nil
}

// SaveResult inserts a result row unless an identical
// (exercise_id, weight, reps, date, amplitude, is_planned) tuple already
// exists. Results have no surrogate id; this natural-key dedup is what
// makes full-tree resync idempotent.
func (s *Store) SaveResult(ctx context.Context, row model.ResultRow) error {
	const q = `
		INSERT OR IGNORE INTO results
		    (exercise_id, weight, reps, date, amplitude, is_planned)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		row.ExerciseID,
		row.Weight,
		row.Reps,
		row.Date,
		string(row.Amplitude),
		row.IsPlanned,
	)
	if err != nil {
		return fmt.Errorf("inserting result for exercise %q: %w", row.ExerciseID, err)
	}
	return nil
}

// SaveSetting upserts a key/value settings row.
func (s *Store) SaveSetting(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("upserting setting %q: %w", key, err)
	}
	return nil
}

// SaveCalorieEntry upserts a calorie row keyed by date.
func (s *Store) SaveCalorieEntry(ctx context.Context, entry model.CalorieEntry) error {
	const q = `
		INSERT INTO calorie_entries (date, calories, weight) VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
		    calories = excluded.calories,
		    weight   = excluded.weight`
	if _, err := s.db.ExecContext(ctx, q, entry.Date, entry.Calories, entry.Weight); err != nil {
		return fmt.Errorf("upserting calorie entry %q: %w", entry.Date, err)
	}
	return nil
}

// SaveMaintenanceCalories upserts the maintenance-calories value. A "not
// set" state is represented by the absence of the row; callers never
// write a tombstone.
func (s *Store) SaveMaintenanceCalories(ctx context.Context, kcal int) error {
	return s.SaveSetting(ctx, maintenanceKey, fmt.Sprintf("%d", kcal))
}

// --- reads -------------------------------------------------------------------

// PlanNames returns all plan names in insertion order.
func (s *Store) PlanNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT plan_name FROM plans ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning plan row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TrainingsByPlan returns the flat training rows belonging to a plan.
func (s *Store) TrainingsByPlan(ctx context.Context, planName string) ([]model.TrainingRow, error) {
	const q = `SELECT id, name FROM trainings WHERE plan_name = ? ORDER BY rowid`
	rows, err := s.db.QueryContext(ctx, q, planName)
	if err != nil {
		return nil, fmt.Errorf("querying trainings for plan %q: %w", planName, err)
	}
	defer func() { _ = rows.Close() }()

	trainings := []model.TrainingRow{}
	for rows.Next() {
		var tr model.TrainingRow
		if err := rows.Scan(&tr.ID, &tr.Name); err != nil {
			return nil, fmt.Errorf("scanning training row: %w", err)
		}
		trainings = append(trainings, tr)
	}
	return trainings, rows.Err()
}

// ExercisesByTraining returns all exercises attached to a training.
func (s *Store) ExercisesByTraining(ctx context.Context, trainingID string) ([]model.Exercise, error) {
	const q = `
		SELECT id, name, muscle_group, equipment, unilateral,
		       amplitude, comment, timer_duration
		FROM exercises WHERE training_id = ? ORDER BY rowid`
	rows, err := s.db.QueryContext(ctx, q, trainingID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises for training %q: %w", trainingID, err)
	}
	defer func() { _ = rows.Close() }()

	exercises := []model.Exercise{}
	for rows.Next() {
		var ex model.Exercise
		var group, equipment, amplitude string
		err := rows.Scan(&ex.ID, &ex.Name, &group, &equipment,
			&ex.Unilateral, &amplitude, &ex.Comment, &ex.TimerDuration)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise row: %w", err)
		}
		ex.MuscleGroup = model.MuscleGroup(group)
		ex.Type = model.EquipmentType(equipment)
		ex.Amplitude = model.Amplitude(amplitude)
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}

// ResultsForExercises returns all result rows (actual and planned) for
// the given exercise ids in a single batched query, newest first. An
// empty id list returns an empty slice without touching the database.
func (s *Store) ResultsForExercises(ctx context.Context, exerciseIDs []string) ([]model.ResultRow, error) {
	if len(exerciseIDs) == 0 {
		return []model.ResultRow{}, nil
	}

	placeholders := strings.Repeat("?,", len(exerciseIDs))
	placeholders = placeholders[:len(placeholders)-1]
	q := fmt.Sprintf(`
		SELECT exercise_id, weight, reps, date, amplitude, is_planned
		FROM results WHERE exercise_id IN (%s)
		ORDER BY date DESC`, placeholders)

	args := make([]any, len(exerciseIDs))
	for i, id := range exerciseIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying results for %d exercises: %w", len(exerciseIDs), err)
	}
	defer func() { _ = rows.Close() }()

	results := []model.ResultRow{}
	for rows.Next() {
		var row model.ResultRow
		var amplitude string
		if err := rows.Scan(&row.ExerciseID, &row.Weight, &row.Reps, &row.Date, &amplitude, &row.IsPlanned); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		row.Amplitude = model.Amplitude(amplitude)
		results = append(results, row)
	}
	return results, rows.Err()
}

// AllSettings returns every settings row as a key → value map. The
// maintenance-calories row is filtered out; it has its own accessor.
func (s *Store) AllSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	settings := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting row: %w", err)
		}
		if key == maintenanceKey {
			continue
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// CalorieEntries returns all calorie rows verbatim, newest first.
func (s *Store) CalorieEntries(ctx context.Context) ([]model.CalorieEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, calories, weight FROM calorie_entries ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying calorie entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []model.CalorieEntry{}
	for rows.Next() {
		var e model.CalorieEntry
		if err := rows.Scan(&e.Date, &e.Calories, &e.Weight); err != nil {
			return nil, fmt.Errorf("scanning calorie row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MaintenanceCalories returns the stored maintenance-calories value and
// whether one is set.
func (s *Store) MaintenanceCalories(ctx context.Context) (int, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, maintenanceKey).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying maintenance calories: %w", err)
	}
	var kcal int
	if _, err := fmt.Sscanf(value, "%d", &kcal); err != nil {
		return 0, false, fmt.Errorf("parsing maintenance calories %q: %w", value, err)
	}
	return kcal, true, nil
}
