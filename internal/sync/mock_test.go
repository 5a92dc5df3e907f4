package sync

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/gorohovAv/fit-plot-sub000/internal/model"
)

// mockPersister is an in-memory Persister that records every call and
// de-duplicates results on their natural key, the same way the SQLite
// store does.
type mockPersister struct {
	mu gosync.Mutex

	plans     []string
	trainings []mockTraining
	exercises []mockExercise
	results   []model.ResultRow
	resultSet map[model.ResultRow]bool
	settings  map[string]string
	calories  map[string]model.CalorieEntry
	maint     *int

	calls  []string
	failOn string // method name that returns an injected error
}

type mockTraining struct {
	id, plan, name string
}

type mockExercise struct {
	trainingID string
	ex         model.Exercise
}

func newMockPersister() *mockPersister {
	return &mockPersister{
		resultSet: make(map[model.ResultRow]bool),
		settings:  make(map[string]string),
		calories:  make(map[string]model.CalorieEntry),
	}
}

func (m *mockPersister) record(method string) error {
	m.calls = append(m.calls, method)
	if m.failOn == method {
		return fmt.Errorf("injected %s failure", method)
	}
	return nil
}

func (m *mockPersister) callCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (m *mockPersister) totalWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		switch c {
		case "SavePlan", "SaveTraining", "SaveExercise", "SaveResult",
			"SaveSetting", "SaveCalorieEntry", "SaveMaintenanceCalories":
			n++
		}
	}
	return n
}

// --- writes ------------------------------------------------------------------

func (m *mockPersister) SavePlan(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SavePlan"); err != nil {
		return err
	}
	for _, p := range m.plans {
		if p == name {
			return nil
		}
	}
	m.plans = append(m.plans, name)
	return nil
}

func (m *mockPersister) SaveTraining(_ context.Context, id, planName, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SaveTraining"); err != nil {
		return err
	}
	for i, tr := range m.trainings {
		if tr.id == id {
			m.trainings[i] = mockTraining{id: id, plan: planName, name: name}
			return nil
		}
	}
	m.trainings = append(m.trainings, mockTraining{id: id, plan: planName, name: name})
	return nil
}

func (m *mockPersister) SaveExercise(_ context.Context, trainingID string, ex model.Exercise) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SaveExercise"); err != nil {
		return err
	}
	for i, e := range m.exercises {
		if e.ex.ID == ex.ID {
			m.exercises[i] = mockExercise{trainingID: trainingID, ex: ex}
			return nil
		}
	}
	m.exercises = append(m.exercises, mockExercise{trainingID: trainingID, ex: ex})
	return nil
}

func (m *mockPersister) SaveResult(_ context.Context, row model.ResultRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SaveResult"); err != nil {
		return err
	}
	if m.resultSet[row] {
		return nil // identical tuple already present
	}
	m.resultSet[row] = true
	m.results = append(m.results, row)
	return nil
}

func (m *mockPersister) SaveSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SaveSetting"); err != nil {
		return err
	}
	m.settings[key] = value
	return nil
}

func (m *mockPersister) SaveCalorieEntry(_ context.Context, entry model.CalorieEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SaveCalorieEntry"); err != nil {
		return err
	}
	m.calories[entry.Date] = entry
	return nil
}

func (m *mockPersister) SaveMaintenanceCalories(_ context.Context, kcal int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SaveMaintenanceCalories"); err != nil {
		return err
	}
	m.maint = &kcal
	return nil
}

// --- reads -------------------------------------------------------------------

func (m *mockPersister) PlanNames(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("PlanNames"); err != nil {
		return nil, err
	}
	return append([]string{}, m.plans...), nil
}

func (m *mockPersister) TrainingsByPlan(_ context.Context, planName string) ([]model.TrainingRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("TrainingsByPlan"); err != nil {
		return nil, err
	}
	rows := []model.TrainingRow{}
	for _, tr := range m.trainings {
		if tr.plan == planName {
			rows = append(rows, model.TrainingRow{ID: tr.id, Name: tr.name})
		}
	}
	return rows, nil
}

func (m *mockPersister) ExercisesByTraining(_ context.Context, trainingID string) ([]model.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ExercisesByTraining"); err != nil {
		return nil, err
	}
	exs := []model.Exercise{}
	for _, e := range m.exercises {
		if e.trainingID == trainingID {
			exs = append(exs, e.ex)
		}
	}
	return exs, nil
}

func (m *mockPersister) ResultsForExercises(_ context.Context, exerciseIDs []string) ([]model.ResultRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ResultsForExercises"); err != nil {
		return nil, err
	}
	idSet := make(map[string]bool, len(exerciseIDs))
	for _, id := range exerciseIDs {
		idSet[id] = true
	}
	rows := []model.ResultRow{}
	for _, row := range m.results {
		if idSet[row.ExerciseID] {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (m *mockPersister) AllSettings(_ context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AllSettings"); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(m.settings))
	for k, v := range m.settings {
		out[k] = v
	}
	return out, nil
}

func (m *mockPersister) CalorieEntries(_ context.Context) ([]model.CalorieEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CalorieEntries"); err != nil {
		return nil, err
	}
	out := []model.CalorieEntry{}
	for _, e := range m.calories {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockPersister) MaintenanceCalories(_ context.Context) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("MaintenanceCalories"); err != nil {
		return 0, false, err
	}
	if m.maint == nil {
		return 0, false, nil
	}
	return *m.maint, true, nil
}
