package codec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Line forms of the notation. Blank lines separate sections; everything
// else is classified by the predicates below, in the order the validator
// and importer apply them.

const (
	// calorieHeader introduces the calorie/nutrition section.
	calorieHeader = "КАЛЛОРАЖ"

	wireDateLayout = "02.01.2006"
	isoDateLayout  = "2006-01-02"
)

var (
	// Numbered exercise annotations inside a training listing, e.g. "3) Жим лёжа".
	// Informational only; the data-import pass ignores them.
	reAnnotation = regexp.MustCompile(`^\d+\)`)

	// Result lines start with <weight>х<reps>. The separator accepts the
	// Cyrillic "х" the notation was typed with as well as the visually
	// identical Latin "x".
	reResultStart = regexp.MustCompile(`^\d+([.,]\d+)?[xхXХ]\d`)
	reResultToken = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)[xхXХ](\d+)$`)

	reWireDate = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

	// Training section headers, e.g. "Тренировка Грудь" / "Training Push".
	reTrainingHeader = regexp.MustCompile(`(?i)^(тренировка|training)\s+(.+)$`)
)

func isCalorieHeader(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), calorieHeader)
}

func trainingHeaderName(line string) (string, bool) {
	m := reTrainingHeader.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[2]), true
}

func isDateOnly(line string) bool {
	return reWireDate.MatchString(strings.TrimSpace(line))
}

// toISODate converts a wire DD.MM.YYYY date to the internal YYYY-MM-DD
// form, validating it along the way.
func toISODate(wire string) (string, error) {
	t, err := time.Parse(wireDateLayout, wire)
	if err != nil {
		return "", fmt.Errorf("malformed date %q, expected DD.MM.YYYY", wire)
	}
	return t.Format(isoDateLayout), nil
}

// toWireDate converts an internal ISO date back to the wire form. Dates
// that fail to parse are passed through unchanged; export never fails on
// a single field.
func toWireDate(iso string) string {
	t, err := time.Parse(isoDateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format(wireDateLayout)
}

// parseDecimal parses a number accepting both "." and "," as the decimal
// separator.
func parseDecimal(tok string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseResultLine splits and validates a result line. The first
// whitespace-separated token is <weight>х<reps>, the second a wire date.
// The two sub-parts are diagnosed independently.
func parseResultLine(line string) (weight float64, reps int, isoDate string, err error) {
	fields := strings.Fields(line)
	m := reResultToken.FindStringSubmatch(fields[0])
	if m == nil {
		return 0, 0, "", fmt.Errorf("malformed set %q, expected <weight>х<reps>", fields[0])
	}
	weight, ok := parseDecimal(m[1])
	if !ok {
		return 0, 0, "", fmt.Errorf("malformed weight %q", m[1])
	}
	reps, convErr := strconv.Atoi(m[2])
	if convErr != nil {
		return 0, 0, "", fmt.Errorf("malformed reps %q", m[2])
	}

	if len(fields) < 2 {
		return 0, 0, "", fmt.Errorf("set %q is missing its date", fields[0])
	}
	isoDate, dateErr := toISODate(fields[1])
	if dateErr != nil {
		return 0, 0, "", dateErr
	}
	return weight, reps, isoDate, nil
}

// parsedCalorieLine is one decoded calorie/nutrition line.
type parsedCalorieLine struct {
	Date     string // ISO
	Calories int
	Weight   float64
}

// Unit tokens accepted after a number: the source-language word or the
// English abbreviation.
func unitKind(tok string) string {
	switch strings.ToLower(tok) {
	case "ккал", "kcal":
		return "kcal"
	case "кг", "kg":
		return "kg"
	default:
		return ""
	}
}

// parseCalorieLine decodes a calorie section line. Numbers are bound by
// the unit token that follows them, so "<calories> ккал <weight> кг" and
// "<weight> кг <calories> ккал" both parse; bare numbers fall back to
// calories-then-weight order. Decimal commas are accepted.
func parseCalorieLine(line string) (parsedCalorieLine, error) {
	var out parsedCalorieLine
	var haveCalories, haveWeight, haveDate bool

	fields := strings.Fields(line)
	for i := 0; i < len(fields); i++ {
		tok := fields[i]

		if reWireDate.MatchString(tok) {
			iso, err := toISODate(tok)
			if err != nil {
				return out, err
			}
			out.Date = iso
			haveDate = true
			continue
		}

		num, ok := parseDecimal(tok)
		if !ok {
			return out, fmt.Errorf("unrecognised token %q in calorie line", tok)
		}

		kind := ""
		if i+1 < len(fields) {
			if k := unitKind(fields[i+1]); k != "" {
				kind = k
				i++ // consume the unit token
			}
		}
		if kind == "" {
			if !haveCalories {
				kind = "kcal"
			} else {
				kind = "kg"
			}
		}

		switch kind {
		case "kcal":
			out.Calories = int(num)
			haveCalories = true
		case "kg":
			out.Weight = num
			haveWeight = true
		}
	}

	switch {
	case !haveCalories:
		return out, fmt.Errorf("calorie line is missing a calories value")
	case !haveWeight:
		return out, fmt.Errorf("calorie line is missing a weight value")
	case !haveDate:
		return out, fmt.Errorf("calorie line is missing a date")
	}
	return out, nil
}
