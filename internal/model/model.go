// Package model defines the shared domain types used across the sync
// mirror, bulk loader, text codec, and persistence layer.
package model

// MuscleGroup names the primary muscle group an exercise targets.
// Values are free-form catalog strings ("chest", "back", "legs", ...);
// the type exists to keep signatures honest, not to enumerate anatomy.
type MuscleGroup string

// EquipmentType classifies how an exercise is loaded.
type EquipmentType string

const (
	EquipmentMachine    EquipmentType = "machine"
	EquipmentFreeWeight EquipmentType = "free weight"
	EquipmentOwnWeight  EquipmentType = "own weight"
	EquipmentCables     EquipmentType = "cables"
)

// Amplitude is the range of motion a set was performed with.
type Amplitude string

const (
	AmplitudeFull    Amplitude = "full"
	AmplitudePartial Amplitude = "partial"
)

// Theme is the UI theme preference stored in settings.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Plan is a named collection of trainings (a workout program). Name acts
// as the persistence primary key; the in-memory store does not enforce
// uniqueness, so duplicate names collapse last-write-wins when mirrored.
type Plan struct {
	Name      string
	Trainings []Training
}

// Training is a single workout session template within a plan.
// ID is caller-generated (uuid or timestamp) and unique for the process
// lifetime; the owning plan is carried by name at write time.
type Training struct {
	ID             string
	Name           string
	Exercises      []Exercise
	Results        []Result
	PlannedResults []PlannedResult
}

// Exercise is a movement definition belonging to exactly one training.
type Exercise struct {
	ID            string
	Name          string
	MuscleGroup   MuscleGroup
	Type          EquipmentType
	Unilateral    bool
	Amplitude     Amplitude
	Comment       string
	TimerDuration int // rest timer in seconds, 0 when unset
}

// Result is an actually-performed set for an exercise. It has no id of
// its own; (ExerciseID, Weight, Reps, Date, Amplitude) is the natural key
// the persistence layer de-duplicates on.
type Result struct {
	ExerciseID string
	Weight     float64
	Reps       int
	Date       string // ISO YYYY-MM-DD
	Amplitude  Amplitude
}

// PlannedResult is a future-dated target set, the planned twin of Result.
// It shares Result's storage table, discriminated by the IsPlanned flag
// and with the Planned* fields remapped onto the generic columns.
type PlannedResult struct {
	ExerciseID    string
	PlannedWeight float64
	PlannedReps   int
	PlannedDate   string // ISO YYYY-MM-DD
	Amplitude     Amplitude
}

// ResultRow is the flattened storage shape shared by actual and planned
// results. IsPlanned is the sole discriminator once flattened.
type ResultRow struct {
	ExerciseID string
	Weight     float64
	Reps       int
	Date       string
	Amplitude  Amplitude
	IsPlanned  bool
}

// Row flattens an actual result for storage.
func (r Result) Row() ResultRow {
	return ResultRow{
		ExerciseID: r.ExerciseID,
		Weight:     r.Weight,
		Reps:       r.Reps,
		Date:       r.Date,
		Amplitude:  r.Amplitude,
		IsPlanned:  false,
	}
}

// Row flattens a planned result for storage, remapping the Planned*
// fields onto the generic columns.
func (p PlannedResult) Row() ResultRow {
	return ResultRow{
		ExerciseID: p.ExerciseID,
		Weight:     p.PlannedWeight,
		Reps:       p.PlannedReps,
		Date:       p.PlannedDate,
		Amplitude:  p.Amplitude,
		IsPlanned:  true,
	}
}

// Result converts a stored row back into an actual result. Callers must
// check IsPlanned first; the conversion itself does not.
func (row ResultRow) Result() Result {
	return Result{
		ExerciseID: row.ExerciseID,
		Weight:     row.Weight,
		Reps:       row.Reps,
		Date:       row.Date,
		Amplitude:  row.Amplitude,
	}
}

// PlannedResult converts a stored row back into a planned result,
// remapping the generic columns onto the Planned* fields.
func (row ResultRow) PlannedResult() PlannedResult {
	return PlannedResult{
		ExerciseID:    row.ExerciseID,
		PlannedWeight: row.Weight,
		PlannedReps:   row.Reps,
		PlannedDate:   row.Date,
		Amplitude:     row.Amplitude,
	}
}

// TrainingRow is the flat training record as stored, without its child
// collections. The bulk loader hydrates children from the other tables.
type TrainingRow struct {
	ID   string
	Name string
}

// Settings holds the user preferences mirrored into the key/value table.
type Settings struct {
	Theme   Theme
	Weight  float64
	DevMode bool
}

// Setting keys as stored in the key/value table.
const (
	SettingTheme   = "theme"
	SettingWeight  = "weight"
	SettingDevMode = "devMode"
)

// DefaultSettings returns the canonical zero-values used when the
// persistence layer has no row for a key.
func DefaultSettings() Settings {
	return Settings{Theme: ThemeSystem, Weight: 70, DevMode: false}
}

// CalorieEntry is one day's calorie/body-weight record. Date is the
// natural key.
type CalorieEntry struct {
	Date     string // ISO YYYY-MM-DD
	Calories int
	Weight   float64
}

// AppState is the full reactive-store state. MaintenanceCalories is a
// sibling of Settings rather than a field of it because it changes on an
// independent cadence; nil means "not yet set" and is never persisted.
type AppState struct {
	Plans               []Plan
	Settings            Settings
	Calories            []CalorieEntry
	MaintenanceCalories *int
}
