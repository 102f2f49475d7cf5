package signals

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultRemarksWindow is how many characters after a remarks heading are
// kept as the remark block.
const DefaultRemarksWindow = 400

// Ellipsis marks text that was cut short.
const Ellipsis = "…"

// SignalSet maps a label to its values in order of appearance. A label is
// only present when at least one value was found.
type SignalSet map[Label][]string

// Get returns the values for l, or nil.
func (s SignalSet) Get(l Label) []string {
	if s == nil {
		return nil
	}
	return s[l]
}

// Extractor applies a fixed rule table to page text.
type Extractor struct {
	rules  []PatternRule
	window int
}

// NewExtractor returns an extractor over rules. A window <= 0 falls back to
// DefaultRemarksWindow.
func NewExtractor(rules []PatternRule, window int) *Extractor {
	if window <= 0 {
		window = DefaultRemarksWindow
	}
	r := make([]PatternRule, len(rules))
	copy(r, rules)
	return &Extractor{rules: r, window: window}
}

var defaultExtractor = NewExtractor(defaultRules, DefaultRemarksWindow)

// ExtractSignals runs the built-in rules over text.
func ExtractSignals(text string) SignalSet {
	return defaultExtractor.Extract(text)
}

// Extract scans text once per rule. It never fails; text without any
// recognisable signal yields an empty set.
func (e *Extractor) Extract(text string) SignalSet {
	out := make(SignalSet)
	if text == "" {
		return out
	}
	text = norm.NFC.String(text)

	for _, rule := range e.rules {
		var vals []string
		switch rule.Mode {
		case TrailingBlock:
			for _, loc := range rule.Pattern.FindAllStringIndex(text, -1) {
				vals = append(vals, remarkBlock(text[loc[1]:], e.window))
			}
		case WholeMatch:
			vals = rule.Pattern.FindAllString(text, -1)
		default:
			for _, m := range rule.Pattern.FindAllStringSubmatch(text, -1) {
				if len(m) > 1 {
					vals = append(vals, m[1])
				} else {
					vals = append(vals, m[0])
				}
			}
		}
		if len(vals) > 0 {
			out[rule.Label] = append(out[rule.Label], vals...)
		}
	}
	return out
}

// remarkBlock keeps the first window runes of rest, trimmed, and marks the
// block with an ellipsis when the text ran on past the window.
func remarkBlock(rest string, window int) string {
	block := strings.TrimSpace(runeWindow(rest, window))
	if utf8.RuneCountInString(rest) > window && block != "" {
		block += Ellipsis
	}
	return block
}

// runeWindow returns at most n runes from the start of s.
func runeWindow(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
