package compare

import (
	"fmt"
	"strings"

	"github.com/Ashu-N26/PDF-diff-tool/internal/signals"
)

// Report renders a plain-text digest of a comparison for terminals.
func Report(r *Result) string {
	var report strings.Builder

	report.WriteString("AIP Comparison Report\n")
	report.WriteString(strings.Repeat("=", 50) + "\n")
	report.WriteString(fmt.Sprintf("Old: %s (%d pages)\n", r.OldName, r.OldPages))
	report.WriteString(fmt.Sprintf("New: %s (%d pages)\n\n", r.NewName, r.NewPages))

	if r.Identical() {
		report.WriteString("✅ Editions are IDENTICAL\n")
		return report.String()
	}
	report.WriteString(fmt.Sprintf("❌ %d page(s) differ\n", r.ChangedPages()))

	for _, p := range r.Pages {
		if !p.Changed() {
			continue
		}
		report.WriteString(fmt.Sprintf("\nPage %d", p.Number))
		if p.Added {
			report.WriteString(" (new page)")
		}
		report.WriteString(":\n")
		report.WriteString(fmt.Sprintf("  Words changed: %d (near matches: %d), removed: %d\n", p.Highlighted, p.Near, p.Removed))
		for _, cs := range [][]string{entryLines(p.Changes.Entries), entryLines(p.Remarks.Entries)} {
			for _, l := range cs {
				report.WriteString("  " + l + "\n")
			}
		}
	}

	if len(r.RemovedPages) > 0 {
		nums := make([]string, len(r.RemovedPages))
		for i, n := range r.RemovedPages {
			nums[i] = fmt.Sprint(n)
		}
		report.WriteString(fmt.Sprintf("\nPages only in the old edition: %s\n", strings.Join(nums, ", ")))
	}
	return report.String()
}

func entryLines(entries []signals.ChangeEntry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, string(e.Label)+":")
		for _, l := range e.Lines {
			out = append(out, "  "+l.String())
		}
	}
	return out
}
