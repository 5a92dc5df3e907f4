package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gorohovAv/fit-plot-sub000/internal/model"
)

// Export serialises plans and calorie entries to the notation text. It
// covers the result/exercise/calorie subset of the grammar: exporting
// and then importing the output reproduces equivalent Training,
// Exercise, Result, and CalorieEntry sets, with fresh ids.
//
// Planned results, comments, and timer durations have no wire form and
// are not exported.
func Export(plans []model.Plan, calories []model.CalorieEntry) string {
	var b strings.Builder

	for _, plan := range plans {
		for _, tr := range plan.Trainings {
			exportTraining(&b, tr)
		}
	}

	if len(calories) > 0 {
		b.WriteString(calorieHeader)
		b.WriteByte('\n')
		for _, e := range calories {
			fmt.Fprintf(&b, "%d ккал %s кг %s\n",
				e.Calories, formatWeight(e.Weight), toWireDate(e.Date))
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// exportTraining writes one training section: the header, a numbered
// exercise listing, then each exercise name followed by its result lines.
func exportTraining(b *strings.Builder, tr model.Training) {
	fmt.Fprintf(b, "Тренировка %s\n", tr.Name)
	for i, ex := range tr.Exercises {
		fmt.Fprintf(b, "%d) %s\n", i+1, ex.Name)
	}
	b.WriteByte('\n')

	resultsByExercise := make(map[string][]model.Result, len(tr.Exercises))
	for _, res := range tr.Results {
		resultsByExercise[res.ExerciseID] = append(resultsByExercise[res.ExerciseID], res)
	}

	for _, ex := range tr.Exercises {
		b.WriteString(ex.Name)
		b.WriteByte('\n')
		for _, res := range resultsByExercise[ex.ID] {
			fmt.Fprintf(b, "%sх%d %s\n", formatWeight(res.Weight), res.Reps, toWireDate(res.Date))
		}
		b.WriteByte('\n')
	}
}

// formatWeight renders a weight without a trailing ".0" for whole values.
func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
