package sidebyside

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Ashu-N26/PDF-diff-tool/internal/pdfio"
	"github.com/Ashu-N26/PDF-diff-tool/pkg/logging"
	"rsc.io/pdf"
)

var chartFill = pdfio.Color{R: 0.1234, G: 0.5678, B: 0.9}

// writeDoc writes one page per text, each with a filled box and a rule
// under the text, and opens the result.
func writeDoc(t *testing.T, path string, size pdfio.PageSize, pages ...string) pdfio.Document {
	t.Helper()
	b := pdfio.NewBuilder()
	for _, text := range pages {
		pb := b.NewPage(size)
		pb.FillRect(pdfio.BBox{X: 300, Y: 300, Width: 80, Height: 40}, chartFill)
		pb.Line(72, 690, 300, 690, pdfio.Black, 1.5)
		pb.Text(72, 700, pdfio.Helvetica, 10, pdfio.Black, text)
	}
	if err := b.WriteFile(path); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	r, _ := pdfio.NewReader(pdfio.BackendRSC)
	doc, err := r.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	return doc
}

func appendStream(sb *strings.Builder, v pdf.Value) {
	rc := v.Reader()
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	sb.Write(data)
	sb.WriteByte('\n')
}

// drawing returns the decoded content of a page together with every form
// XObject it paints.
func drawing(node pdf.Value, depth int) string {
	var sb strings.Builder
	switch c := node.Key("Contents"); c.Kind() {
	case pdf.Stream:
		appendStream(&sb, c)
	case pdf.Array:
		for i := 0; i < c.Len(); i++ {
			appendStream(&sb, c.Index(i))
		}
	}
	if depth > 4 {
		return sb.String()
	}
	xobjs := node.Key("Resources").Key("XObject")
	for _, name := range xobjs.Keys() {
		x := xobjs.Key(name)
		if x.Key("Subtype").Name() != "Form" {
			continue
		}
		appendStream(&sb, x)
		sb.WriteString(drawing(x, depth+1))
	}
	return sb.String()
}

func TestPlanUnevenPageCounts(t *testing.T) {
	dir := t.TempDir()
	oldDoc := writeDoc(t, filepath.Join(dir, "old.pdf"), pdfio.PageSizeA4, "MDA 200 FT", "VIS 1500", "NOTE")
	newDoc := writeDoc(t, filepath.Join(dir, "new.pdf"), pdfio.PageSizeLetter, "MDA 250 FT")

	pairs, blanks, err := Plan(oldDoc, newDoc)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		i           int
		left, right pdfio.PageRef
	}{
		{0, pdfio.PageRef{File: oldFile, Page: 0}, pdfio.PageRef{File: newFile, Page: 0}},
		{1, pdfio.PageRef{File: oldFile, Page: 1}, pdfio.PageRef{File: placeholderFile, Page: 0}},
		{2, pdfio.PageRef{File: oldFile, Page: 2}, pdfio.PageRef{File: placeholderFile, Page: 1}},
	}
	if len(pairs) != len(tests) {
		t.Fatalf("expected %d pairs, got %d", len(tests), len(pairs))
	}
	for _, tt := range tests {
		if pairs[tt.i][0] != tt.left || pairs[tt.i][1] != tt.right {
			t.Errorf("pair %d = %+v, want %+v %+v", tt.i, pairs[tt.i], tt.left, tt.right)
		}
	}
	if blanks.NumPages() != 2 {
		t.Errorf("expected 2 placeholder pages, got %d", blanks.NumPages())
	}
}

func TestComposeKeepsOriginalGraphics(t *testing.T) {
	dir := t.TempDir()
	oldDoc := writeDoc(t, filepath.Join(dir, "old.pdf"), pdfio.PageSizeA4, "MDA 200 FT", "VIS 1500")
	newDoc := writeDoc(t, filepath.Join(dir, "new.pdf"), pdfio.PageSizeA4, "MDA 250 FT")

	out := filepath.Join(dir, "sbs.pdf")
	if err := ComposeFile(oldDoc, newDoc, out, logging.Component("sbs-test")); err != nil {
		t.Fatalf("failed to compose: %v", err)
	}

	r, err := pdf.Open(out)
	if err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}
	if r.NumPage() != 2 {
		t.Fatalf("expected 2 pages, got %d", r.NumPage())
	}

	sized, _ := pdfio.NewReader(pdfio.BackendRSC)
	doc, err := sized.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if size, _ := doc.PageSize(0); size.Width <= size.Height {
		t.Errorf("page 1 should be landscape, got %+v", size)
	}

	first := drawing(r.Page(1).V, 0)
	for _, want := range []string{"(MDA 200 FT) Tj", "(MDA 250 FT) Tj", "0.1234 0.5678 0.9000 rg", " re\nf", " l\nS"} {
		if !strings.Contains(first, want) {
			t.Errorf("page 1 lost %q", want)
		}
	}
	second := drawing(r.Page(2).V, 0)
	if !strings.Contains(second, "(VIS 1500) Tj") || !strings.Contains(second, `(\(no page\)) Tj`) {
		t.Errorf("page 2 should show the old page and a placeholder:\n%s", second)
	}
}
