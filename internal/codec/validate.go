package codec

import (
	"fmt"
	"strings"
)

// Verdict classifies an import text.
type Verdict int

const (
	// VerdictEmpty means the input contained nothing but whitespace.
	VerdictEmpty Verdict = iota
	// VerdictValid means every non-blank line matched a recognised form
	// and the text carries at least one data line.
	VerdictValid
	// VerdictInvalid means a line failed to parse, or the text carried
	// no data lines at all.
	VerdictInvalid
)

// String returns the lower-case verdict label.
func (v Verdict) String() string {
	switch v {
	case VerdictEmpty:
		return "empty"
	case VerdictValid:
		return "valid"
	default:
		return "invalid"
	}
}

// LineError is a user-facing validation failure pinned to a 1-based line
// number. Line 0 means the failure concerns the text as a whole.
type LineError struct {
	Line int
	Msg  string
}

func (e *LineError) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Validate classifies text against the notation grammar. It reports the
// first violation found. A well-formed text with zero data lines (no
// result lines and no calorie lines) is invalid: an import with nothing
// actionable is not useful.
//
// Validate never modifies anything and never panics; it is the mandatory
// precondition for [Import].
func Validate(text string, catalog Catalog) (Verdict, *LineError) {
	if strings.TrimSpace(text) == "" {
		return VerdictEmpty, nil
	}

	dataLines := 0
	inCalories := false

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)

		// Blank lines separate sections and close the calorie block.
		if line == "" {
			inCalories = false
			continue
		}
		if isCalorieHeader(line) {
			inCalories = true
			continue
		}
		if inCalories {
			if _, err := parseCalorieLine(line); err != nil {
				return VerdictInvalid, &LineError{Line: lineNo, Msg: err.Error()}
			}
			dataLines++
			continue
		}

		// Numbered listing annotations and bare dates are informational.
		if reAnnotation.MatchString(line) || isDateOnly(line) {
			continue
		}
		if _, ok := trainingHeaderName(line); ok {
			continue
		}

		if reResultStart.MatchString(line) {
			if _, _, _, err := parseResultLine(line); err != nil {
				return VerdictInvalid, &LineError{Line: lineNo, Msg: err.Error()}
			}
			dataLines++
			continue
		}

		// Anything else must be a catalog exercise name.
		if _, ok := catalog.Lookup(line); !ok {
			return VerdictInvalid, &LineError{Line: lineNo, Msg: fmt.Sprintf("unknown exercise %q", line)}
		}
	}

	if dataLines == 0 {
		return VerdictInvalid, &LineError{Msg: "no result or calorie lines found"}
	}
	return VerdictValid, nil
}
