package signals

import "fmt"

// Placeholder stands in for a value that exists on one side only.
const Placeholder = "—"

// Side marks which edition a display line belongs to.
type Side int

const (
	Old Side = iota
	New
)

func (s Side) String() string {
	if s == Old {
		return "OLD"
	}
	return "NEW"
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "OLD":
		*s = Old
	case "NEW":
		*s = New
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

// DisplayLine is one rendered row of a change entry.
type DisplayLine struct {
	Side  Side   `json:"side"`
	Value string `json:"value"`
	// Delta is set on NEW lines when both sides had a number.
	Delta *float64 `json:"delta,omitempty"`
}

// Text renders the value with its delta suffix, e.g. "250 (+50.0)".
func (d DisplayLine) Text() string {
	if d.Delta == nil {
		return d.Value
	}
	return fmt.Sprintf("%s (%s)", d.Value, FormatDelta(*d.Delta))
}

func (d DisplayLine) String() string {
	return d.Side.String() + ": " + d.Text()
}

// ChangeEntry lists the OLD/NEW rows for one label that changed.
type ChangeEntry struct {
	Label Label         `json:"label"`
	Lines []DisplayLine `json:"lines"`
}

// ChangeSet holds entries in canonical label order. Unchanged labels are
// absent and no entry has an empty line list.
type ChangeSet struct {
	Entries []ChangeEntry `json:"entries"`
}

// Get returns the entry for l.
func (c ChangeSet) Get(l Label) (ChangeEntry, bool) {
	for _, e := range c.Entries {
		if e.Label == l {
			return e, true
		}
	}
	return ChangeEntry{}, false
}

// Labels lists the labels that changed, in order.
func (c ChangeSet) Labels() []Label {
	out := make([]Label, 0, len(c.Entries))
	for _, e := range c.Entries {
		out = append(out, e.Label)
	}
	return out
}

// Empty reports whether nothing changed.
func (c ChangeSet) Empty() bool { return len(c.Entries) == 0 }

// CompareSignals walks the canonical labels and pairs values by position.
// A position whose values differ yields an OLD line and a NEW line; the
// NEW line carries a numeric delta when both sides parse as numbers.
//
// Pairing is positional only: a value inserted at the front of a list
// shifts every later pair.
func CompareSignals(oldSet, newSet SignalSet) ChangeSet {
	var cs ChangeSet
	for _, l := range canonicalLabels {
		if lines := comparePositional(oldSet.Get(l), newSet.Get(l), true); len(lines) > 0 {
			cs.Entries = append(cs.Entries, ChangeEntry{Label: l, Lines: lines})
		}
	}
	return cs
}

// CompareRemarks pairs remark blocks the same way, without deltas. The
// result has at most one entry, labelled REMARKS.
func CompareRemarks(oldSet, newSet SignalSet) ChangeSet {
	var cs ChangeSet
	if lines := comparePositional(oldSet.Get(REMARKS), newSet.Get(REMARKS), false); len(lines) > 0 {
		cs.Entries = append(cs.Entries, ChangeEntry{Label: REMARKS, Lines: lines})
	}
	return cs
}

func comparePositional(ov, nv []string, withDelta bool) []DisplayLine {
	n := max(len(ov), len(nv))
	var lines []DisplayLine
	for i := 0; i < n; i++ {
		var a, b string
		hasA, hasB := i < len(ov), i < len(nv)
		if hasA {
			a = ov[i]
		}
		if hasB {
			b = nv[i]
		}
		if hasA && hasB && a == b {
			continue
		}

		oldLine := DisplayLine{Side: Old, Value: Placeholder}
		if hasA && a != "" {
			oldLine.Value = a
		}
		newLine := DisplayLine{Side: New, Value: Placeholder}
		if hasB && b != "" {
			newLine.Value = b
		}
		if withDelta && a != "" && b != "" {
			if d, ok := delta(a, b); ok {
				newLine.Delta = &d
			}
		}
		lines = append(lines, oldLine, newLine)
	}
	return lines
}
