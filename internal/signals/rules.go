// Package signals pulls operational values (minima, visibility, courses,
// DME distances and remark blocks) out of AIP page text and reports how
// they moved between two editions of a page.
package signals

import "regexp"

// Label names one kind of operational signal.
type Label string

const (
	MDA     Label = "MDA"
	DA      Label = "DA"
	OCA     Label = "OCA"
	OCH     Label = "OCH"
	RVR     Label = "RVR"
	VIS     Label = "VIS"
	CAT     Label = "CAT"
	COURSE  Label = "COURSE"
	DME     Label = "DME"
	REMARKS Label = "REMARKS"
)

// ExtractionMode selects what a rule records for each match.
type ExtractionMode int

const (
	// SingleCapture records the first capture group.
	SingleCapture ExtractionMode = iota
	// WholeMatch records the full matched text.
	WholeMatch
	// TrailingBlock records a window of text following the match.
	TrailingBlock
)

func (m ExtractionMode) String() string {
	switch m {
	case SingleCapture:
		return "single-capture"
	case WholeMatch:
		return "whole-match"
	case TrailingBlock:
		return "trailing-block"
	default:
		return "unknown"
	}
}

// PatternRule binds a label to the expression that finds it.
type PatternRule struct {
	Label   Label
	Pattern *regexp.Regexp
	Mode    ExtractionMode
}

const (
	num = `(?:\d+(?:\.\d+)?)`
	deg = `(?:\d{2,3}(?:\.\d+)?(?:°|º)?)`
	nm  = `(?:NM|nm)`
	ft  = `(?:FT|ft)`
)

// canonicalLabels is the order labels are compared and reported in.
// REMARKS is not part of it; remark blocks go through CompareRemarks.
var canonicalLabels = []Label{MDA, DA, OCA, OCH, RVR, VIS, CAT, COURSE, DME}

// minimaLabels are the labels shown in the per-page minima panel.
var minimaLabels = []Label{MDA, DA, OCA, OCH, RVR, VIS, CAT}

// defaultRules is built once at init and never mutated.
var defaultRules = []PatternRule{
	heightRule(MDA),
	heightRule(DA),
	heightRule(OCA),
	heightRule(OCH),
	valueRule(RVR),
	valueRule(VIS),
	{Label: CAT, Pattern: regexp.MustCompile(`(?i)\bCAT\s*(I{1,3}|[123])\b`), Mode: SingleCapture},
	{Label: COURSE, Pattern: regexp.MustCompile(`(?i)\b(?:FINAL\s+COURSE|COURSE|QDM|QDR|TRACK)\b[:\-\s]*(` + deg + `)`), Mode: SingleCapture},
	{Label: DME, Pattern: regexp.MustCompile(`(?is)\bDME\b.*?(` + num + `)\s*` + nm), Mode: SingleCapture},
	{Label: REMARKS, Pattern: regexp.MustCompile(`(?i)\b(?:REMARKS?|NOTES?)\b[:\-]?`), Mode: TrailingBlock},
}

func heightRule(l Label) PatternRule {
	return PatternRule{
		Label:   l,
		Pattern: regexp.MustCompile(`(?i)\b` + string(l) + `\b[:\-\s]*(` + num + `)\s*` + ft),
		Mode:    SingleCapture,
	}
}

func valueRule(l Label) PatternRule {
	return PatternRule{
		Label:   l,
		Pattern: regexp.MustCompile(`(?i)\b` + string(l) + `\b[:\-\s]*(` + num + `)\b`),
		Mode:    SingleCapture,
	}
}

// DefaultRules returns a copy of the built-in rule table.
func DefaultRules() []PatternRule {
	out := make([]PatternRule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// CanonicalLabels returns the comparison order.
func CanonicalLabels() []Label {
	out := make([]Label, len(canonicalLabels))
	copy(out, canonicalLabels)
	return out
}

// MinimaLabels returns the labels that belong on the minima panel.
func MinimaLabels() []Label {
	out := make([]Label, len(minimaLabels))
	copy(out, minimaLabels)
	return out
}

// IsMinima reports whether l is shown on the minima panel.
func IsMinima(l Label) bool {
	for _, m := range minimaLabels {
		if m == l {
			return true
		}
	}
	return false
}
