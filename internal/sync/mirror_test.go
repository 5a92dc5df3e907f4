package sync

import (
	"context"
	"log/slog"
	"testing"

	"github.com/gorohovAv/fit-plot-sub000/internal/model"
	"github.com/gorohovAv/fit-plot-sub000/internal/store"
)

var testLogger = slog.Default()

func newTestMirror(p Persister) (*Mirror, *Gate) {
	gate := &Gate{}
	return NewMirror(p, gate, testLogger), gate
}

// samplePlan is one plan with one training, two exercises, two actual
// results and one planned result.
func samplePlan() model.Plan {
	return model.Plan{
		Name: "Bulk",
		Trainings: []model.Training{{
			ID:   "t1",
			Name: "Push day",
			Exercises: []model.Exercise{
				{ID: "e1", Name: "Жим лёжа", MuscleGroup: "chest", Type: model.EquipmentFreeWeight, Amplitude: model.AmplitudeFull},
				{ID: "e2", Name: "Жим стоя", MuscleGroup: "shoulders", Type: model.EquipmentFreeWeight, Amplitude: model.AmplitudeFull},
			},
			Results: []model.Result{
				{ExerciseID: "e1", Weight: 80, Reps: 8, Date: "2026-02-10", Amplitude: model.AmplitudeFull},
				{ExerciseID: "e2", Weight: 50, Reps: 10, Date: "2026-02-10", Amplitude: model.AmplitudeFull},
			},
			PlannedResults: []model.PlannedResult{
				{ExerciseID: "e1", PlannedWeight: 82.5, PlannedReps: 8, PlannedDate: "2026-02-17", Amplitude: model.AmplitudeFull},
			},
		}},
	}
}

// ---------------------------------------------------------------------------
// Scenario: a new plans tree is persisted in full
// ---------------------------------------------------------------------------

func TestSyncPass_PersistsPlansTree(t *testing.T) {
	p := newMockPersister()
	m, _ := newTestMirror(p)

	prev := model.AppState{}
	next := model.AppState{Plans: []model.Plan{samplePlan()}}
	m.SyncPass(context.Background(), &prev, &next)

	if len(p.plans) != 1 || p.plans[0] != "Bulk" {
		t.Errorf("plans = %v, want [Bulk]", p.plans)
	}
	if len(p.trainings) != 1 || p.trainings[0].plan != "Bulk" {
		t.Fatalf("trainings = %+v, want one under Bulk", p.trainings)
	}
	if len(p.exercises) != 2 {
		t.Errorf("exercises = %d, want 2", len(p.exercises))
	}
	if len(p.results) != 3 {
		t.Errorf("result rows = %d, want 3 (2 actual + 1 planned)", len(p.results))
	}
}

// ---------------------------------------------------------------------------
// Scenario: re-running the pass over an unchanged tree creates nothing (P1)
// ---------------------------------------------------------------------------

func TestSyncPass_Idempotent(t *testing.T) {
	p := newMockPersister()
	m, _ := newTestMirror(p)

	prev := model.AppState{}
	next := model.AppState{Plans: []model.Plan{samplePlan()}}
	m.SyncPass(context.Background(), &prev, &next)
	m.SyncPass(context.Background(), &prev, &next)

	if len(p.plans) != 1 {
		t.Errorf("plans = %d, want 1 after double sync", len(p.plans))
	}
	if len(p.trainings) != 1 {
		t.Errorf("trainings = %d, want 1 after double sync", len(p.trainings))
	}
	if len(p.results) != 3 {
		t.Errorf("result rows = %d, want 3 after double sync", len(p.results))
	}
}

// ---------------------------------------------------------------------------
// Scenario: planned results are remapped onto the generic columns
// ---------------------------------------------------------------------------

func TestSyncPass_PlannedResultRemap(t *testing.T) {
	p := newMockPersister()
	m, _ := newTestMirror(p)

	prev := model.AppState{}
	next := model.AppState{Plans: []model.Plan{samplePlan()}}
	m.SyncPass(context.Background(), &prev, &next)

	var planned []model.ResultRow
	for _, row := range p.results {
		if row.IsPlanned {
			planned = append(planned, row)
		}
	}
	if len(planned) != 1 {
		t.Fatalf("planned rows = %d, want 1", len(planned))
	}
	got := planned[0]
	if got.Weight != 82.5 || got.Reps != 8 || got.Date != "2026-02-17" {
		t.Errorf("planned row = %+v, want weight=82.5 reps=8 date=2026-02-17", got)
	}
}

// ---------------------------------------------------------------------------
// Scenario: malformed records are skipped, the rest persists (P6)
// ---------------------------------------------------------------------------

func TestSyncPass_OrphanTolerance(t *testing.T) {
	plan := samplePlan()
	plan.Trainings[0].Results = append(plan.Trainings[0].Results,
		model.Result{Weight: 100, Reps: 5, Date: "2026-02-11"}) // no exercise id

	p := newMockPersister()
	m, _ := newTestMirror(p)

	prev := model.AppState{}
	next := model.AppState{Plans: []model.Plan{plan}}
	m.SyncPass(context.Background(), &prev, &next)

	// 2 actual + 1 planned, the orphan contributes zero rows.
	if len(p.results) != 3 {
		t.Errorf("result rows = %d, want 3 (orphan skipped)", len(p.results))
	}
	for _, row := range p.results {
		if row.ExerciseID == "" {
			t.Error("orphaned result was persisted")
		}
	}
}

func TestSyncPass_SkipsRecordsMissingIdentity(t *testing.T) {
	plans := []model.Plan{
		{Name: ""}, // unnamed plan
		{Name: "Cut", Trainings: []model.Training{
			{ID: "", Name: "broken"}, // training without id
			{ID: "t2", Name: "Legs", Exercises: []model.Exercise{
				{ID: "", Name: "no id"}, // exercise without id
				{ID: "e3", Name: "Приседания"},
			}},
		}},
	}

	p := newMockPersister()
	m, _ := newTestMirror(p)

	prev := model.AppState{}
	next := model.AppState{Plans: plans}
	m.SyncPass(context.Background(), &prev, &next)

	if len(p.plans) != 1 || p.plans[0] != "Cut" {
		t.Errorf("plans = %v, want [Cut]", p.plans)
	}
	if len(p.trainings) != 1 || p.trainings[0].id != "t2" {
		t.Errorf("trainings = %+v, want only t2", p.trainings)
	}
	if len(p.exercises) != 1 || p.exercises[0].ex.ID != "e3" {
		t.Errorf("exercises = %+v, want only e3", p.exercises)
	}
}

// ---------------------------------------------------------------------------
// Scenario: any settings change rewrites all three keys
// ---------------------------------------------------------------------------

func TestSyncPass_SettingsTripleWrite(t *testing.T) {
	p := newMockPersister()
	m, _ := newTestMirror(p)

	prev := model.AppState{Settings: model.DefaultSettings()}
	next := prev
	next.Settings.Theme = model.ThemeDark // only the theme changed

	m.SyncPass(context.Background(), &prev, &next)

	if got := p.callCount("SaveSetting"); got != 3 {
		t.Errorf("SaveSetting calls = %d, want 3", got)
	}
	if p.settings[model.SettingTheme] != "dark" {
		t.Errorf("theme = %q, want dark", p.settings[model.SettingTheme])
	}
	if p.settings[model.SettingWeight] != "70" {
		t.Errorf("weight = %q, want 70", p.settings[model.SettingWeight])
	}
	if p.settings[model.SettingDevMode] != "false" {
		t.Errorf("devMode = %q, want false", p.settings[model.SettingDevMode])
	}
}

// ---------------------------------------------------------------------------
// Scenario: unchanged slices are not re-persisted
// ---------------------------------------------------------------------------

func TestSyncPass_UnchangedSlicesSkipped(t *testing.T) {
	p := newMockPersister()
	m, _ := newTestMirror(p)

	prev := model.AppState{
		Plans:    []model.Plan{samplePlan()},
		Settings: model.DefaultSettings(),
	}
	next := prev // same plans slice identity
	next.Settings.Weight = 72

	m.SyncPass(context.Background(), &prev, &next)

	if got := p.callCount("SavePlan"); got != 0 {
		t.Errorf("SavePlan calls = %d, want 0 for an unchanged plans slice", got)
	}
	if got := p.callCount("SaveSetting"); got != 3 {
		t.Errorf("SaveSetting calls = %d, want 3", got)
	}
}

// ---------------------------------------------------------------------------
// Scenario: calorie entries rewritten on change, maintenance only when set
// ---------------------------------------------------------------------------

func TestSyncPass_CaloriesRewritten(t *testing.T) {
	p := newMockPersister()
	m, _ := newTestMirror(p)

	prev := model.AppState{}
	next := model.AppState{Calories: []model.CalorieEntry{
		{Date: "2026-02-10", Calories: 2400, Weight: 74.5},
		{Date: "2026-02-12", Calories: 2600, Weight: 75},
	}}
	m.SyncPass(context.Background(), &prev, &next)

	if got := p.callCount("SaveCalorieEntry"); got != 2 {
		t.Errorf("SaveCalorieEntry calls = %d, want 2", got)
	}
}

func TestSyncPass_NilMaintenanceNeverWritten(t *testing.T) {
	p := newMockPersister()
	m, _ := newTestMirror(p)

	kcal := 2500
	prev := model.AppState{MaintenanceCalories: &kcal}
	next := model.AppState{MaintenanceCalories: nil}
	m.SyncPass(context.Background(), &prev, &next)

	if got := p.callCount("SaveMaintenanceCalories"); got != 0 {
		t.Errorf("SaveMaintenanceCalories calls = %d, want 0 for nil value", got)
	}
}

func TestSyncPass_MaintenanceWrittenWhenChanged(t *testing.T) {
	p := newMockPersister()
	m, _ := newTestMirror(p)

	kcal := 2500
	prev := model.AppState{}
	next := model.AppState{MaintenanceCalories: &kcal}
	m.SyncPass(context.Background(), &prev, &next)

	if p.maint == nil || *p.maint != 2500 {
		t.Errorf("maintenance = %v, want 2500", p.maint)
	}
}

// ---------------------------------------------------------------------------
// Scenario: a persistence error abandons the pass
// ---------------------------------------------------------------------------

func TestSyncPass_AbandonedOnError(t *testing.T) {
	p := newMockPersister()
	p.failOn = "SaveTraining"
	m, _ := newTestMirror(p)

	prev := model.AppState{}
	next := model.AppState{
		Plans:    []model.Plan{samplePlan()},
		Calories: []model.CalorieEntry{{Date: "2026-02-10", Calories: 2400, Weight: 74.5}},
	}
	// Must not panic and must not reach later steps.
	m.SyncPass(context.Background(), &prev, &next)

	if got := p.callCount("SaveExercise"); got != 0 {
		t.Errorf("SaveExercise calls = %d, want 0 after abandoned pass", got)
	}
	if got := p.callCount("SaveCalorieEntry"); got != 0 {
		t.Errorf("SaveCalorieEntry calls = %d, want 0 after abandoned pass", got)
	}
}

// ---------------------------------------------------------------------------
// Scenario: the gate suppresses every pass during bootstrap (P4)
// ---------------------------------------------------------------------------

func TestMirror_GateSuppression(t *testing.T) {
	p := newMockPersister()
	m, gate := newTestMirror(p)

	st := store.New(model.AppState{Settings: model.DefaultSettings()},
		store.WithInterceptor(m.Interceptor()))

	gate.Enter()
	for i := 0; i < 5; i++ {
		st.Set(func(prev model.AppState) model.AppState {
			next := prev
			next.Plans = []model.Plan{samplePlan()}
			return next
		})
	}
	m.Wait()

	if got := p.totalWrites(); got != 0 {
		t.Fatalf("writes during bootstrap = %d, want 0", got)
	}

	gate.Exit()
	entries := []model.CalorieEntry{{Date: "2026-02-10", Calories: 2400, Weight: 74.5}}
	st.Merge(store.Patch{Calories: &entries})
	m.Wait()

	// Only the calorie mutation syncs; the plans slice identity is
	// unchanged by the merge.
	if got := p.callCount("SaveCalorieEntry"); got != 1 {
		t.Errorf("SaveCalorieEntry calls = %d, want 1", got)
	}
	if got := p.totalWrites(); got != 1 {
		t.Errorf("total writes after gate exit = %d, want 1", got)
	}
}
