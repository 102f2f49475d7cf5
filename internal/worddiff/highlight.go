package worddiff

import (
	"sort"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the similarity ratio at or above which a replaced
// word counts as a near-match.
const DefaultThreshold = 85

// Salience grades a highlighted word.
type Salience int

const (
	// Full marks a new or substantially changed word.
	Full Salience = iota + 1
	// Near marks a word that differs only slightly from the one it replaced.
	Near
)

func (s Salience) String() string {
	switch s {
	case Full:
		return "full"
	case Near:
		return "near"
	default:
		return "none"
	}
}

// HighlightSet maps new-side word indexes to their salience.
type HighlightSet struct {
	m map[int]Salience
}

// Len is the number of highlighted words.
func (h HighlightSet) Len() int { return len(h.m) }

// Has reports whether index i is highlighted.
func (h HighlightSet) Has(i int) bool {
	_, ok := h.m[i]
	return ok
}

// Salience returns the grade for i, or 0 when i is not highlighted.
func (h HighlightSet) Salience(i int) Salience { return h.m[i] }

// Indices returns highlighted indexes in ascending order.
func (h HighlightSet) Indices() []int {
	out := make([]int, 0, len(h.m))
	for i := range h.m {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Count returns how many words carry salience s.
func (h HighlightSet) Count(s Salience) int {
	n := 0
	for _, v := range h.m {
		if v == s {
			n++
		}
	}
	return n
}

// All marks every index in [0, n) as Full.
func All(n int) HighlightSet {
	h := HighlightSet{m: make(map[int]Salience, n)}
	for i := 0; i < n; i++ {
		h.m[i] = Full
	}
	return h
}

// Highlights collects the new-side indexes of insert and replace opcodes.
// Inside a replace, words are paired with the old word at the same offset;
// a pair whose Ratio is at least threshold is graded Near. A threshold
// <= 0 disables the fuzzy pass.
func Highlights(ops []Opcode, oldTokens, newTokens []string, threshold int) HighlightSet {
	h := HighlightSet{m: make(map[int]Salience)}
	for _, op := range ops {
		switch op.Kind {
		case Insert:
			for j := op.NewStart; j < op.NewEnd; j++ {
				h.m[j] = Full
			}
		case Replace:
			for j := op.NewStart; j < op.NewEnd; j++ {
				h.m[j] = Full
				i := op.OldStart + (j - op.NewStart)
				if threshold > 0 && i < op.OldEnd && Ratio(oldTokens[i], newTokens[j]) >= threshold {
					h.m[j] = Near
				}
			}
		}
	}
	return h
}

// Removed returns the delete opcodes: old words with no counterpart on the
// new side.
func Removed(ops []Opcode) []Opcode {
	var out []Opcode
	for _, op := range ops {
		if op.Kind == Delete {
			out = append(out, op)
		}
	}
	return out
}

// Ratio scores the similarity of a and b from 0 to 100 using the
// Levenshtein distance over runes.
func Ratio(a, b string) int {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return int(100 * float64(longest-d) / float64(longest))
}
