// Package annotate marks up a copy of the newer edition of an AIP document:
// changed words get highlight annotations, changed pages an optional minima
// panel, and an optional summary goes in front.
package annotate

import "github.com/Ashu-N26/PDF-diff-tool/internal/pdfio"

// DefaultRemarksLimit is the display length of a remark block.
const DefaultRemarksLimit = 240

var (
	// ChangedColor marks new values and changed words.
	ChangedColor = pdfio.Color{R: 0.95, G: 0, B: 0}
	// OldColor marks values as they were in the previous edition.
	OldColor = pdfio.Color{R: 0, G: 0.6, B: 0}

	fullFill  = pdfio.Color{R: 1, G: 0.78, B: 0.78}
	nearFill  = pdfio.Color{R: 1, G: 0.92, B: 0.62}
	panelFill = pdfio.Color{R: 1, G: 1, B: 0.96}
	textColor = pdfio.Color{R: 0.1, G: 0.1, B: 0.1}
	mutedText = pdfio.Color{R: 0.4, G: 0.4, B: 0.4}
)

// Options are the user-facing switches of one comparison. The zero value
// disables everything optional.
type Options struct {
	FrontSummary  bool `json:"add_front_summary" mapstructure:"add_front_summary"`
	MinimaPanels  bool `json:"add_minima_panels" mapstructure:"add_minima_panels"`
	DetectCourses bool `json:"detect_courses" mapstructure:"detect_courses"`
	DetectDME     bool `json:"detect_dme" mapstructure:"detect_dme"`
	DetectNotes   bool `json:"detect_notes" mapstructure:"detect_notes"`

	// MarkDeletions draws a caret where old words were removed.
	MarkDeletions bool `json:"mark_deletions" mapstructure:"mark_deletions"`
	// RemarksLimit caps displayed remark text; <= 0 means DefaultRemarksLimit.
	RemarksLimit int `json:"remarks_limit" mapstructure:"remarks_display_limit"`
}

func (o Options) remarksLimit() int {
	if o.RemarksLimit <= 0 {
		return DefaultRemarksLimit
	}
	return o.RemarksLimit
}
