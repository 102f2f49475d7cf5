package pdfio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeSample(t *testing.T, dir string) string {
	t.Helper()
	b := NewBuilder()
	p := b.NewPage(PageSizeLetter)
	p.Text(72, 700, Helvetica, 10, Black, "MDA 200 FT")
	p.Text(72, 680, HelveticaBold, 10, Black, "CAT II")
	p.FillRect(BBox{X: 70, Y: 695, Width: 40, Height: 12}, Color{1, 0.8, 0.8})
	b.NewPage(PageSizeA4).Text(72, 760, Helvetica, 12, Black, "REMARKS: (see note)")

	path := filepath.Join(dir, "sample.pdf")
	if err := b.WriteFile(path); err != nil {
		t.Fatalf("failed to write sample: %v", err)
	}
	return path
}

func TestRoundTripRSC(t *testing.T) {
	path := writeSample(t, t.TempDir())

	r, err := NewReader("")
	if err != nil {
		t.Fatalf("failed to create reader: %v", err)
	}
	doc, err := r.Open(path)
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	defer doc.Close()

	if doc.NumPages() != 2 {
		t.Fatalf("expected 2 pages, got %d", doc.NumPages())
	}
	words, err := doc.PageWords(0)
	if err != nil {
		t.Fatalf("failed to read words: %v", err)
	}
	if got := Texts(words); !reflect.DeepEqual(got, []string{"MDA", "200", "FT", "CAT", "II"}) {
		t.Fatalf("words = %v", got)
	}
	if words[0].Line != 0 || words[3].Line != 1 {
		t.Errorf("line numbers = %d, %d", words[0].Line, words[3].Line)
	}
	if words[1].Box.Left() <= words[0].Box.Right() {
		t.Errorf("words overlap: %+v %+v", words[0].Box, words[1].Box)
	}
	if words[0].Box.X < 71 || words[0].Box.X > 73 {
		t.Errorf("first word starts at %.2f", words[0].Box.X)
	}

	text, err := doc.PageText(0)
	if err != nil {
		t.Fatalf("failed to read text: %v", err)
	}
	if text != "MDA 200 FT\nCAT II" {
		t.Errorf("text = %q", text)
	}

	size, err := doc.PageSize(1)
	if err != nil {
		t.Fatalf("failed to read size: %v", err)
	}
	if size != PageSizeA4 {
		t.Errorf("size = %+v", size)
	}

	text, _ = doc.PageText(1)
	if text != "REMARKS: (see note)" {
		t.Errorf("escaped text = %q", text)
	}

	_, err = doc.PageWords(5)
	var pe *PageError
	if !errors.As(err, &pe) || pe.Page != 5 {
		t.Errorf("expected a PageError for page 5, got %v", err)
	}
	if !errors.Is(err, ErrRenderer) {
		t.Errorf("page errors must match ErrRenderer")
	}
}

func TestRoundTripLedongthuc(t *testing.T) {
	path := writeSample(t, t.TempDir())
	r, err := NewReader(BackendLedongthuc)
	if err != nil {
		t.Fatalf("failed to create reader: %v", err)
	}
	doc, err := r.Open(path)
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	defer doc.Close()

	words, err := doc.PageWords(0)
	if err != nil {
		t.Fatalf("failed to read words: %v", err)
	}
	if got := Texts(words); !reflect.DeepEqual(got, []string{"MDA", "200", "FT", "CAT", "II"}) {
		t.Errorf("words = %v", got)
	}
	text, err := doc.PageText(0)
	if err != nil {
		t.Fatalf("failed to read text: %v", err)
	}
	if !strings.Contains(text, "200") {
		t.Errorf("plain text lost content: %q", text)
	}
}

func TestOpenGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, backend := range []string{BackendRSC, BackendLedongthuc} {
		r, _ := NewReader(backend)
		_, err := r.Open(path)
		var de *DocumentError
		if !errors.As(err, &de) || !errors.Is(err, ErrRenderer) {
			t.Errorf("%s: expected DocumentError, got %v", backend, err)
		}
	}
	r, _ := NewReader(BackendRSC)
	if _, err := r.Open(filepath.Join(dir, "missing.pdf")); !errors.Is(err, ErrRenderer) {
		t.Errorf("missing file should be a renderer failure, got %v", err)
	}
	if _, err := NewReader("mupdf"); err == nil {
		t.Errorf("unknown backend should fail")
	}
}

func TestBuilderInsertPage(t *testing.T) {
	b := NewBuilder()
	b.NewPage(PageSizeA4)
	b.NewPage(PageSizeA4)
	front := b.InsertPage(0, PageSizeLetter)
	if b.NumPages() != 3 || b.pages[0] != front {
		t.Fatalf("inserted page is not first")
	}

	var buf bytes.Buffer
	if err := b.Write(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-1.4") || !strings.HasSuffix(out, "%%EOF\n") {
		t.Errorf("malformed envelope")
	}
	if !strings.Contains(out, "/Count 3") {
		t.Errorf("page tree does not count 3 pages")
	}
}

func TestEncodeWinAnsi(t *testing.T) {
	got := encodeWinAnsi("—…°✈")
	want := []byte{0x97, 0x85, 0xB0, '?'}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
	if got := string(escapeString([]byte{'(', 'a', ')', '\\', 0x97})); got != `\(a\)\\\227` {
		t.Errorf("escape = %q", got)
	}
}

func TestGroupWordsGap(t *testing.T) {
	gs := []glyph{
		{S: "R", X: 10, Y: 100, W: 6, FontSize: 10},
		{S: "W", X: 16, Y: 100, W: 8, FontSize: 10},
		{S: "Y", X: 24, Y: 100, W: 6, FontSize: 10},
		{S: "27", X: 40, Y: 100.2, W: 10, FontSize: 10},
		{S: "next line", X: 10, Y: 80, W: 40, FontSize: 10},
	}
	words := groupWords(gs)
	if got := Texts(words); !reflect.DeepEqual(got, []string{"RWY", "27", "next", "line"}) {
		t.Fatalf("words = %v", got)
	}
	if words[1].Line != 0 || words[2].Line != 1 {
		t.Errorf("lines = %d %d", words[1].Line, words[2].Line)
	}
	if u := words[0].Box.Union(words[1].Box); u.Left() != 10 || u.Right() != 50 {
		t.Errorf("union = %+v", u)
	}
}
