package codec

import (
	"context"
	"strings"
	"testing"

	"github.com/gorohovAv/fit-plot-sub000/internal/model"
)

func TestExport_Format(t *testing.T) {
	plans := []model.Plan{{
		Name: "Bulk",
		Trainings: []model.Training{{
			ID:   "t1",
			Name: "Грудь",
			Exercises: []model.Exercise{
				{ID: "e1", Name: "Жим лёжа"},
			},
			Results: []model.Result{
				{ExerciseID: "e1", Weight: 80, Reps: 8, Date: "2026-02-10"},
				{ExerciseID: "e1", Weight: 82.5, Reps: 8, Date: "2026-02-12"},
			},
		}},
	}}
	calories := []model.CalorieEntry{
		{Date: "2026-02-10", Calories: 2400, Weight: 74.5},
	}

	got := Export(plans, calories)
	want := strings.Join([]string{
		"Тренировка Грудь",
		"1) Жим лёжа",
		"",
		"Жим лёжа",
		"80х8 10.02.2026",
		"82.5х8 12.02.2026",
		"",
		"КАЛЛОРАЖ",
		"2400 ккал 74.5 кг 10.02.2026",
		"",
	}, "\n")
	if got != want {
		t.Errorf("Export output:\n%s\nwant:\n%s", got, want)
	}
}

func TestExport_NoCalorieSectionWhenEmpty(t *testing.T) {
	got := Export([]model.Plan{{Name: "Bulk"}}, nil)
	if strings.Contains(got, calorieHeader) {
		t.Errorf("output %q contains a calorie section for zero entries", got)
	}
}

// Exporting and re-importing reproduces equivalent trainings, exercises,
// results, and calorie entries, with fresh ids.
func TestExport_ImportRoundTrip(t *testing.T) {
	plans := []model.Plan{{
		Name: "Bulk",
		Trainings: []model.Training{
			{
				ID:   "t1",
				Name: "Грудь",
				Exercises: []model.Exercise{
					{ID: "e1", Name: "Жим лёжа", Amplitude: model.AmplitudeFull},
				},
				Results: []model.Result{
					{ExerciseID: "e1", Weight: 80, Reps: 8, Date: "2026-02-10", Amplitude: model.AmplitudeFull},
					{ExerciseID: "e1", Weight: 82.5, Reps: 8, Date: "2026-02-12", Amplitude: model.AmplitudeFull},
				},
			},
			{
				ID:   "t2",
				Name: "Спина",
				Exercises: []model.Exercise{
					{ID: "e2", Name: "Подтягивания", Amplitude: model.AmplitudeFull},
				},
				Results: []model.Result{
					{ExerciseID: "e2", Weight: 0, Reps: 10, Date: "2026-02-11", Amplitude: model.AmplitudeFull},
				},
			},
		},
	}}
	calories := []model.CalorieEntry{
		{Date: "2026-02-10", Calories: 2400, Weight: 74.5},
		{Date: "2026-02-12", Calories: 2600, Weight: 75},
	}

	text := Export(plans, calories)

	verdict, lineErr := Validate(text, DefaultCatalog())
	if verdict != VerdictValid {
		t.Fatalf("exported text is %v (%v), want valid:\n%s", verdict, lineErr, text)
	}

	w := &mockWriter{}
	stats, err := newTestImporter(w).Run(context.Background(), text, "Bulk")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Trainings != 2 || stats.Exercises != 2 || stats.Results != 3 || stats.Calories != 2 {
		t.Errorf("stats = %+v, want 2/2/3 plus 2 calories", stats)
	}
	if stats.Orphans != 0 {
		t.Errorf("orphans = %d, want 0", stats.Orphans)
	}

	// Fresh identity, same substance.
	for i, tr := range w.trainings {
		if tr.id == plans[0].Trainings[i].ID {
			t.Errorf("training %d reused the original id %q", i, tr.id)
		}
		if tr.name != plans[0].Trainings[i].Name {
			t.Errorf("training %d name = %q, want %q", i, tr.name, plans[0].Trainings[i].Name)
		}
	}

	type tuple struct {
		weight float64
		reps   int
		date   string
	}
	want := map[tuple]bool{
		{80, 8, "2026-02-10"}:   true,
		{82.5, 8, "2026-02-12"}: true,
		{0, 10, "2026-02-11"}:   true,
	}
	for _, row := range w.results {
		if !want[tuple{row.Weight, row.Reps, row.Date}] {
			t.Errorf("unexpected result tuple %+v", row)
		}
	}
	for i, e := range calories {
		if w.calories[i] != e {
			t.Errorf("calorie entry %d = %+v, want %+v", i, w.calories[i], e)
		}
	}
}
