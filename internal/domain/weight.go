package domain

import (
	"strconv"
	"strings"
)

const defaultUnitKg = 1.0

// KilogramEquivalent converts a per-unit weight label and a purchased unit
// count into the total stock delta in kilograms. A label containing "g" but
// not "kg" is read as grams; anything else as kilograms. Missing labels and
// labels without a parseable numeric prefix fall back to 1kg per unit.
func KilogramEquivalent(label string, quantity int) float64 {
	perUnit := parseWeightLabel(label)
	return perUnit * float64(quantity)
}

func parseWeightLabel(label string) float64 {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return defaultUnitKg
	}

	value, ok := parseNumericPrefix(label)
	if !ok {
		return defaultUnitKg
	}

	if strings.Contains(label, "g") && !strings.Contains(label, "kg") {
		return value / 1000
	}
	return value
}

func parseNumericPrefix(s string) (float64, bool) {
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end == 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
