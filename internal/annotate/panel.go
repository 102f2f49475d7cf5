package annotate

import (
	"strings"
	"unicode/utf8"

	"github.com/Ashu-N26/PDF-diff-tool/internal/signals"
)

// LineKind says how a panel line is styled.
type LineKind int

const (
	Heading LineKind = iota
	OldValue
	NewValue
	Note
)

// PanelLine is one row of text in a summary or minima panel.
type PanelLine struct {
	Kind LineKind
	Text string
}

// Shorten collapses runs of whitespace and cuts s to at most n runes,
// ending it with an ellipsis when something was dropped.
func Shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + signals.Ellipsis
}

// Visible drops the entries whose detection toggle is off. COURSE needs
// DetectCourses, DME needs DetectDME and REMARKS needs DetectNotes.
func Visible(cs signals.ChangeSet, opts Options) signals.ChangeSet {
	var out signals.ChangeSet
	for _, e := range cs.Entries {
		switch e.Label {
		case signals.COURSE:
			if !opts.DetectCourses {
				continue
			}
		case signals.DME:
			if !opts.DetectDME {
				continue
			}
		case signals.REMARKS:
			if !opts.DetectNotes {
				continue
			}
		}
		out.Entries = append(out.Entries, e)
	}
	return out
}

// minimaOnly keeps MDA, DA, OCA, OCH, RVR, VIS and CAT.
func minimaOnly(cs signals.ChangeSet) signals.ChangeSet {
	var out signals.ChangeSet
	for _, e := range cs.Entries {
		if signals.IsMinima(e.Label) {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// SummaryLines renders the change and remark entries of one page for the
// front summary. Toggles are applied first.
func SummaryLines(changes, remarks signals.ChangeSet, opts Options) []PanelLine {
	all := signals.ChangeSet{Entries: append(append([]signals.ChangeEntry{}, changes.Entries...), remarks.Entries...)}
	return entryLines(Visible(all, opts), opts)
}

// MinimaLines renders the minima entries of one page for its panel.
func MinimaLines(changes signals.ChangeSet, opts Options) []PanelLine {
	return entryLines(minimaOnly(changes), opts)
}

func entryLines(cs signals.ChangeSet, opts Options) []PanelLine {
	var out []PanelLine
	for _, e := range cs.Entries {
		out = append(out, PanelLine{Kind: Heading, Text: string(e.Label)})
		for _, l := range e.Lines {
			text := l.Text()
			if e.Label == signals.REMARKS {
				text = Shorten(text, opts.remarksLimit())
			}
			kind := NewValue
			if l.Side == signals.Old {
				kind = OldValue
			}
			out = append(out, PanelLine{Kind: kind, Text: l.Side.String() + ": " + text})
		}
	}
	return out
}
