package compare

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Ashu-N26/PDF-diff-tool/internal/annotate"
	"github.com/Ashu-N26/PDF-diff-tool/internal/compressor"
	"github.com/Ashu-N26/PDF-diff-tool/internal/pdfio"
	"github.com/Ashu-N26/PDF-diff-tool/internal/signals"
	"github.com/Ashu-N26/PDF-diff-tool/pkg/logging"
)

// writePDF writes one page per entry; each entry is a list of lines.
func writePDF(t *testing.T, path string, pages ...[]string) {
	t.Helper()
	b := pdfio.NewBuilder()
	for _, lines := range pages {
		p := b.NewPage(pdfio.PageSizeA4)
		for i, l := range lines {
			p.Text(72, 760-float64(i)*16, pdfio.Helvetica, 10, pdfio.Black, l)
		}
	}
	if err := b.WriteFile(path); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	r, err := pdfio.NewReader(pdfio.BackendRSC)
	if err != nil {
		t.Fatal(err)
	}
	return NewEngine(r, cfg, logging.Component("compare-test"))
}

func TestRunRemovedPages(t *testing.T) {
	dir := t.TempDir()
	oldPath, newPath := filepath.Join(dir, "old.pdf"), filepath.Join(dir, "new.pdf")
	writePDF(t, oldPath,
		[]string{"RWY 27 LOC", "MDA 200 FT", "DME 10 NM"},
		[]string{"VIS 1500"},
		[]string{"REMARKS: circling west only"},
	)
	writePDF(t, newPath,
		[]string{"RWY 27 LOC", "MDA 250 FT", "DME 12 NM"},
		[]string{"VIS 1500"},
	)

	e := newEngine(t, Config{Workers: 2, Bundle: true})
	out := filepath.Join(dir, "out")
	res, err := e.Run(context.Background(), Request{
		OldPath: oldPath,
		NewPath: newPath,
		OutDir:  out,
		Options: annotate.Options{FrontSummary: true, MinimaPanels: true, DetectDME: true},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(res.Pages) != 2 || res.OldPages != 3 {
		t.Fatalf("pages = %d, old pages = %d", len(res.Pages), res.OldPages)
	}
	if len(res.RemovedPages) != 1 || res.RemovedPages[0] != 3 {
		t.Errorf("removed pages = %v", res.RemovedPages)
	}

	p1 := res.Pages[0]
	mda, ok := p1.Changes.Get(signals.MDA)
	if !ok || mda.Lines[1].Text() != "250 (+50.0)" {
		t.Errorf("MDA change = %+v", mda)
	}
	if _, ok := p1.Changes.Get(signals.DME); !ok {
		t.Errorf("DME change missing")
	}
	if p1.Highlighted != 2 {
		t.Errorf("expected 250 and 12 highlighted, got %d", p1.Highlighted)
	}
	if res.Pages[1].Changed() {
		t.Errorf("page 2 is unchanged but reported %+v", res.Pages[1])
	}
	if res.ChangedPages() != 2 {
		t.Errorf("changed pages = %d", res.ChangedPages())
	}

	for _, name := range []string{AnnotatedFile, SideBySideFile, SummaryFile, BundleFile} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}
	entries, err := compressor.ReadBundle(filepath.Join(out, BundleFile))
	if err != nil {
		t.Fatalf("failed to read bundle: %v", err)
	}
	if _, ok := entries[AnnotatedFile]; !ok {
		t.Errorf("bundle lacks the annotated document")
	}

	r, _ := pdfio.NewReader(pdfio.BackendRSC)
	doc, err := r.Open(filepath.Join(out, AnnotatedFile))
	if err != nil {
		t.Fatalf("annotated output unreadable: %v", err)
	}
	if doc.NumPages() != 3 {
		t.Errorf("annotated pages = %d, want summary + 2", doc.NumPages())
	}
	sbs, err := r.Open(filepath.Join(out, SideBySideFile))
	if err != nil {
		t.Fatalf("side-by-side output unreadable: %v", err)
	}
	if sbs.NumPages() != 3 {
		t.Errorf("side-by-side pages = %d, want one per old page", sbs.NumPages())
	}

	report := Report(res)
	for _, want := range []string{"Page 1:", "NEW: 250 (+50.0)", "Pages only in the old edition: 3"} {
		if !strings.Contains(report, want) {
			t.Errorf("report lacks %q:\n%s", want, report)
		}
	}
}

func TestRunAddedPage(t *testing.T) {
	dir := t.TempDir()
	oldPath, newPath := filepath.Join(dir, "old.pdf"), filepath.Join(dir, "new.pdf")
	writePDF(t, oldPath, []string{"COURSE 045"})
	writePDF(t, newPath, []string{"COURSE 045"}, []string{"CAT II", "RVR 300"})

	res, err := newEngine(t, Config{}).Run(context.Background(), Request{OldPath: oldPath, NewPath: newPath, OutDir: filepath.Join(dir, "out")})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !res.Pages[0].Changes.Empty() || res.Pages[0].Changed() {
		t.Errorf("unchanged COURSE page reported as changed: %+v", res.Pages[0])
	}
	added := res.Pages[1]
	if !added.Added || added.Highlighted != 4 || added.Near != 0 {
		t.Errorf("every word of an added page is a full change: %+v", added)
	}
	if _, ok := added.Changes.Get(signals.CAT); !ok {
		t.Errorf("signals on an added page compare against nothing")
	}
}

func TestRunFuzzyThreshold(t *testing.T) {
	dir := t.TempDir()
	oldPath, newPath := filepath.Join(dir, "old.pdf"), filepath.Join(dir, "new.pdf")
	writePDF(t, oldPath, []string{"STRAIGHT-IN MINIMUMS 200"})
	writePDF(t, newPath, []string{"STRAIGHT-IN MINIMUM 200"})

	tests := []struct {
		name      string
		threshold int
		near      int
	}{
		{"disabled", 0, 0},
		{"negative", -1, 0},
		{"default", 85, 1},
		{"strict", 95, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, Config{FuzzyThreshold: tt.threshold})
			res, err := e.Run(context.Background(), Request{OldPath: oldPath, NewPath: newPath, OutDir: filepath.Join(dir, tt.name)})
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			p := res.Pages[0]
			if p.Highlighted != 1 {
				t.Errorf("highlighted = %d, want 1", p.Highlighted)
			}
			if p.Near != tt.near {
				t.Errorf("near = %d, want %d", p.Near, tt.near)
			}
		})
	}
}

func TestRunIdentical(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "same.pdf")
	writePDF(t, path, []string{"MDA 460 FT", "NOTES: none"})

	res, err := newEngine(t, Config{}).Run(context.Background(), Request{OldPath: path, NewPath: path, OutDir: filepath.Join(dir, "out")})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !res.Identical() {
		t.Errorf("expected identical result, got %+v", res.Pages)
	}
	if !strings.Contains(Report(res), "IDENTICAL") {
		t.Errorf("report should say identical")
	}
}

func TestRunRendererFailure(t *testing.T) {
	dir := t.TempDir()
	good, bad := filepath.Join(dir, "good.pdf"), filepath.Join(dir, "bad.pdf")
	writePDF(t, good, []string{"MDA 200 FT"})
	if err := os.WriteFile(bad, []byte("%PDF-1.4 truncated"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := newEngine(t, Config{}).Run(context.Background(), Request{OldPath: good, NewPath: bad, OutDir: filepath.Join(dir, "out")})
	if !errors.Is(err, pdfio.ErrRenderer) {
		t.Fatalf("expected a renderer failure, got %v", err)
	}
	var de *pdfio.DocumentError
	if !errors.As(err, &de) || de.Doc != "bad.pdf" {
		t.Errorf("error should name the failing document: %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	writePDF(t, path, []string{"MDA 200 FT"}, []string{"DA 300 FT"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newEngine(t, Config{}).Run(ctx, Request{OldPath: path, NewPath: path, OutDir: filepath.Join(dir, "out")}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
