package signals

import (
	"regexp"
	"strconv"
	"strings"
)

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// firstNumber parses the first decimal number embedded in s.
func firstNumber(s string) (float64, bool) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// delta returns new-old when both values carry a number.
func delta(oldVal, newVal string) (float64, bool) {
	a, ok := firstNumber(oldVal)
	if !ok {
		return 0, false
	}
	b, ok := firstNumber(newVal)
	if !ok {
		return 0, false
	}
	return b - a, true
}

// FormatDelta renders d signed, with a trailing ".0" on whole numbers:
// 50 -> "+50.0", -50 -> "-50.0", 0.5 -> "+0.5".
func FormatDelta(d float64) string {
	s := strconv.FormatFloat(d, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	if d >= 0 {
		// -0 prints as "-0"
		s = "+" + strings.TrimPrefix(s, "-")
	}
	return s
}
