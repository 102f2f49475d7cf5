package annotate

import (
	"strings"

	"github.com/Ashu-N26/PDF-diff-tool/internal/pdfio"
)

// wrap breaks text into lines no wider than width. Words longer than a
// line are split by rune.
func wrap(text string, f pdfio.Font, size, width float64) []string {
	var lines []string
	cur := ""
	for _, word := range strings.Fields(text) {
		for pdfio.TextWidth(word, f, size) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			head, tail := splitToFit(word, f, size, width)
			lines = append(lines, head)
			word = tail
		}
		if word == "" {
			continue
		}
		next := word
		if cur != "" {
			next = cur + " " + word
		}
		if pdfio.TextWidth(next, f, size) > width && cur != "" {
			lines = append(lines, cur)
			next = word
		}
		cur = next
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func splitToFit(word string, f pdfio.Font, size, width float64) (string, string) {
	r := []rune(word)
	n := 1
	for n < len(r) && pdfio.TextWidth(string(r[:n+1]), f, size) <= width {
		n++
	}
	return string(r[:n]), string(r[n:])
}

// flow lays text out top to bottom over as many pages as it needs. New
// pages are inserted into the builder starting at index at.
type flow struct {
	b      *pdfio.Builder
	at     int
	size   pdfio.PageSize
	margin float64

	page  *pdfio.PageBuilder
	y     float64
	added int
}

func newFlow(b *pdfio.Builder, at int, size pdfio.PageSize) *flow {
	return &flow{b: b, at: at, size: size, margin: 48}
}

func (fl *flow) width() float64 { return fl.size.Width - 2*fl.margin }

func (fl *flow) ensure(height float64) {
	if fl.page == nil || fl.y-height < fl.margin {
		fl.page = fl.b.InsertPage(fl.at+fl.added, fl.size)
		fl.added++
		fl.y = fl.size.Height - fl.margin
	}
}

// line writes one wrapped paragraph indented by indent points.
func (fl *flow) line(text string, f pdfio.Font, size float64, c pdfio.Color, indent float64) {
	for _, l := range wrap(text, f, size, fl.width()-indent) {
		lead := size * 1.35
		fl.ensure(lead)
		fl.y -= lead
		fl.page.Text(fl.margin+indent, fl.y, f, size, c, l)
	}
}

func (fl *flow) gap(h float64) {
	if fl.page != nil {
		fl.y -= h
	}
}
