package compare

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Ashu-N26/PDF-diff-tool/internal/signals"
	"github.com/Ashu-N26/PDF-diff-tool/internal/worddiff"
)

// Artifact file names inside a session directory.
const (
	AnnotatedFile  = "annotated_latest.pdf"
	SideBySideFile = "side_by_side.pdf"
	SummaryFile    = "summary.json"
	BundleFile     = "artifacts.tar.lz4"
)

// maxSummaryLines caps the line-level changes kept per page.
const maxSummaryLines = 25

// PageResult is what changed on one page of the new edition.
type PageResult struct {
	Number      int                   `json:"number"`
	Added       bool                  `json:"added,omitempty"`
	Changes     signals.ChangeSet     `json:"changes"`
	Remarks     signals.ChangeSet     `json:"remarks"`
	Highlighted int                   `json:"highlighted"`
	Near        int                   `json:"near"`
	Removed     int                   `json:"removed"`
	Lines       []worddiff.LineChange `json:"lines,omitempty"`
}

// Changed reports whether anything on the page differs.
func (p PageResult) Changed() bool {
	return p.Added || p.Highlighted > 0 || p.Removed > 0 || !p.Changes.Empty() || !p.Remarks.Empty()
}

// Result describes one finished comparison.
type Result struct {
	OldName      string        `json:"old_name"`
	NewName      string        `json:"new_name"`
	OldPages     int           `json:"old_pages"`
	NewPages     int           `json:"new_pages"`
	Pages        []PageResult  `json:"pages"`
	RemovedPages []int         `json:"removed_pages,omitempty"`
	Artifacts    []string      `json:"artifacts"`
	Duration     time.Duration `json:"duration_ns"`
}

// ChangedPages counts pages with any difference.
func (r *Result) ChangedPages() int {
	n := 0
	for _, p := range r.Pages {
		if p.Changed() {
			n++
		}
	}
	return n + len(r.RemovedPages)
}

// Identical reports whether the editions have no differences at all.
func (r *Result) Identical() bool { return r.ChangedPages() == 0 }

// WriteSummary stores the result as indented JSON.
func (r *Result) WriteSummary(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
