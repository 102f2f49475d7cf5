package annotate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Ashu-N26/PDF-diff-tool/internal/pdfio"
	"github.com/Ashu-N26/PDF-diff-tool/internal/signals"
	"github.com/Ashu-N26/PDF-diff-tool/internal/worddiff"
	"github.com/sirupsen/logrus"
)

// Removal is a run of old words that has no counterpart in the new page.
// At is the index of the new word the run preceded.
type Removal struct {
	At    int
	Words []string
}

// Page is everything the composer needs to mark up one new-side page.
type Page struct {
	// Number is the 1-based page number shown to readers.
	Number     int
	Size       pdfio.PageSize
	Words      []pdfio.Word
	Highlights worddiff.HighlightSet
	Removals   []Removal
	Changes    signals.ChangeSet
	Remarks    signals.ChangeSet
	// Added is set when the old edition has no page at this position.
	Added bool
}

// Comparison is the input of one annotated document.
type Comparison struct {
	// Source is the new edition's file. Its pages are copied unchanged and
	// the marks are added as annotations on top.
	Source  string
	OldName string
	NewName string
	Pages   []Page
	// RemovedPages lists 1-based numbers of old pages past the end of the
	// new edition.
	RemovedPages []int
}

// Composer writes annotated documents.
type Composer struct {
	opts Options
	log  *logrus.Entry
}

func NewComposer(opts Options, log *logrus.Entry) *Composer {
	return &Composer{opts: opts, log: log}
}

// Annotate marks up every page of cmp in ed.
func (c *Composer) Annotate(ed *pdfio.Editor, cmp Comparison) error {
	for _, p := range cmp.Pages {
		if err := c.annotatePage(ed, p); err != nil {
			return err
		}
	}
	return nil
}

// Summary lays out the front summary pages.
func (c *Composer) Summary(cmp Comparison) *pdfio.Builder {
	b := pdfio.NewBuilder()
	size := pdfio.PageSizeA4
	if len(cmp.Pages) > 0 {
		size = cmp.Pages[0].Size
	}
	n := c.drawSummary(b, size, cmp)
	c.log.WithField("pages", n).Debug("📝 Front summary laid out")
	return b
}

// ComposeFile copies cmp.Source to path with its changes annotated and,
// when enabled, the summary pages in front. The source is only read.
func (c *Composer) ComposeFile(cmp Comparison, path string) error {
	ed, err := pdfio.OpenEditor(cmp.Source)
	if err != nil {
		return err
	}
	if err := c.Annotate(ed, cmp); err != nil {
		return err
	}
	if !c.opts.FrontSummary {
		return ed.WriteFile(path)
	}

	dir, err := os.MkdirTemp(filepath.Dir(path), ".annotate-*")
	if err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(dir)

	body := filepath.Join(dir, "pages.pdf")
	if err := ed.WriteFile(body); err != nil {
		return err
	}
	summary := filepath.Join(dir, "summary.pdf")
	if err := c.Summary(cmp).WriteFile(summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if err := pdfio.MergeFiles(path, summary, body); err != nil {
		return fmt.Errorf("failed to write annotated document: %w", err)
	}
	return nil
}

// highlightRun is a stretch of neighbouring words on one line sharing a
// salience, marked with a single annotation.
type highlightRun struct {
	salience worddiff.Salience
	line     int
	box      pdfio.BBox
	words    []string
}

func highlightRuns(p Page) []highlightRun {
	var runs []highlightRun
	last := -2
	for i, w := range p.Words {
		s := p.Highlights.Salience(i)
		if s != worddiff.Full && s != worddiff.Near {
			continue
		}
		n := len(runs)
		if n > 0 && last == i-1 && runs[n-1].salience == s && runs[n-1].line == w.Line {
			runs[n-1].box = runs[n-1].box.Union(w.Box)
			runs[n-1].words = append(runs[n-1].words, w.Text)
		} else {
			runs = append(runs, highlightRun{salience: s, line: w.Line, box: w.Box, words: []string{w.Text}})
		}
		last = i
	}
	return runs
}

func (c *Composer) annotatePage(ed *pdfio.Editor, p Page) error {
	idx := p.Number - 1
	changedLines := map[int]pdfio.BBox{}
	for _, run := range highlightRuns(p) {
		fill, label := fullFill, "Changed"
		if run.salience == worddiff.Near {
			fill, label = nearFill, "Near match"
		}
		box := run.box.Expand(1)
		ap := pdfio.NewCanvas(box.Width, box.Height)
		ap.Tint(pdfio.BBox{Width: box.Width, Height: box.Height}, fill)
		err := ed.Annotate(idx, pdfio.Annotation{
			Kind:       pdfio.AnnotHighlight,
			Rect:       box,
			Color:      fill,
			Contents:   label + ": " + strings.Join(run.words, " "),
			Appearance: ap,
		})
		if err != nil {
			return err
		}
		changedLines[run.line] = changedLines[run.line].Union(run.box)
	}

	if len(changedLines) > 0 {
		page, _, err := ed.PageBox(idx)
		if err != nil {
			return err
		}
		lineNums := make([]int, 0, len(changedLines))
		for n := range changedLines {
			lineNums = append(lineNums, n)
		}
		sort.Ints(lineNums)
		for _, n := range lineNums {
			line := changedLines[n]
			bar := pdfio.BBox{X: page.Left() + 10.75, Y: line.Bottom(), Width: 2.5, Height: line.Height}
			ap := pdfio.NewCanvas(bar.Width, bar.Height)
			ap.FillRect(pdfio.BBox{Width: bar.Width, Height: bar.Height}, ChangedColor)
			err := ed.Annotate(idx, pdfio.Annotation{
				Kind:       pdfio.AnnotSquare,
				Rect:       bar,
				Color:      ChangedColor,
				Contents:   "Changed line",
				Appearance: ap,
			})
			if err != nil {
				return err
			}
		}
	}

	if c.opts.MarkDeletions {
		for _, r := range p.Removals {
			if err := c.markRemoval(ed, idx, p.Words, r); err != nil {
				return err
			}
		}
	}

	if p.Added {
		const label, size = "NEW PAGE", 8.0
		w := pdfio.TextWidth(label, pdfio.HelveticaBold, size) + 4
		rect, err := ed.CornerRect(idx, pdfio.TopLeft, w, 12, 8)
		if err != nil {
			return err
		}
		ap := pdfio.NewCanvas(w, 12)
		ap.Text(2, 3, pdfio.HelveticaBold, size, ChangedColor, label)
		err = ed.Annotate(idx, pdfio.Annotation{
			Kind:       pdfio.AnnotFreeText,
			Rect:       rect,
			Color:      ChangedColor,
			Contents:   "New page: not present in the old edition",
			Appearance: ap,
			Upright:    true,
		})
		if err != nil {
			return err
		}
	}

	if c.opts.MinimaPanels {
		if lines := MinimaLines(p.Changes, c.opts); len(lines) > 0 {
			return c.addMinimaPanel(ed, idx, lines)
		}
	}
	return nil
}

// markRemoval puts a caret before the word that followed the removed run,
// or after the last word when the run was at the end of the page.
func (c *Composer) markRemoval(ed *pdfio.Editor, idx int, words []pdfio.Word, r Removal) error {
	if len(words) == 0 {
		return nil
	}
	var x, y, h float64
	if r.At < len(words) {
		w := words[r.At]
		x, y, h = w.Box.Left()-1.5, w.Box.Bottom(), w.Box.Height
	} else {
		w := words[len(words)-1]
		x, y, h = w.Box.Right()+1.5, w.Box.Bottom(), w.Box.Height
	}
	rect := pdfio.BBox{X: x - 2.5, Y: y - 1.5, Width: 5, Height: h + 2}
	ap := pdfio.NewCanvas(rect.Width, rect.Height)
	ap.Line(2.5, 0.5, 2.5, rect.Height, ChangedColor, 1)
	ap.Line(0.5, 0.5, 4.5, 0.5, ChangedColor, 1)
	return ed.Annotate(idx, pdfio.Annotation{
		Kind:       pdfio.AnnotCaret,
		Rect:       rect,
		Color:      ChangedColor,
		Contents:   "Removed: " + strings.Join(r.Words, " "),
		Appearance: ap,
	})
}

const (
	panelWidth  = 210.0
	panelPad    = 6.0
	panelSize   = 7.5
	panelMargin = 10.0
)

// addMinimaPanel places the panel in the displayed top-right corner of the
// page, upright whatever the page rotation.
func (c *Composer) addMinimaPanel(ed *pdfio.Editor, idx int, lines []PanelLine) error {
	type row struct {
		text  string
		font  pdfio.Font
		color pdfio.Color
	}
	inner := panelWidth - 2*panelPad
	rows := []row{{"MINIMA CHANGES", pdfio.HelveticaBold, ChangedColor}}
	contents := []string{"MINIMA CHANGES"}
	for _, l := range lines {
		font, color := styleOf(l.Kind)
		for _, w := range wrap(l.Text, font, panelSize, inner) {
			rows = append(rows, row{w, font, color})
		}
		contents = append(contents, l.Text)
	}

	lead := panelSize * 1.3
	height := float64(len(rows))*lead + 2*panelPad
	rect, err := ed.CornerRect(idx, pdfio.TopRight, panelWidth, height, panelMargin)
	if err != nil {
		return err
	}

	ap := pdfio.NewCanvas(panelWidth, height)
	box := pdfio.BBox{Width: panelWidth, Height: height}
	ap.FillRect(box, panelFill)
	ap.StrokeRect(box.Expand(-0.4), ChangedColor, 0.8)
	y := box.Top() - panelPad
	for _, r := range rows {
		y -= lead
		ap.Text(panelPad, y+0.25*panelSize, r.font, panelSize, r.color, r.text)
	}

	return ed.Annotate(idx, pdfio.Annotation{
		Kind:       pdfio.AnnotFreeText,
		Rect:       rect,
		Color:      ChangedColor,
		Contents:   strings.Join(contents, "\n"),
		Appearance: ap,
		Upright:    true,
	})
}

func styleOf(k LineKind) (pdfio.Font, pdfio.Color) {
	switch k {
	case Heading:
		return pdfio.HelveticaBold, textColor
	case OldValue:
		return pdfio.Helvetica, OldColor
	case NewValue:
		return pdfio.Helvetica, ChangedColor
	default:
		return pdfio.Helvetica, mutedText
	}
}

// drawSummary prepends the summary and returns how many pages it took.
func (c *Composer) drawSummary(b *pdfio.Builder, size pdfio.PageSize, cmp Comparison) int {
	fl := newFlow(b, 0, size)
	fl.line("AIP comparison summary", pdfio.HelveticaBold, 16, textColor, 0)
	fl.gap(4)
	fl.line("Old edition: "+cmp.OldName, pdfio.Helvetica, 9, OldColor, 0)
	fl.line("New edition: "+cmp.NewName, pdfio.Helvetica, 9, ChangedColor, 0)

	var full, near int
	for _, p := range cmp.Pages {
		full += p.Highlights.Count(worddiff.Full)
		near += p.Highlights.Count(worddiff.Near)
	}
	fl.line(fmt.Sprintf("Pages: %d   Changed words: %d   Near matches: %d", len(cmp.Pages), full, near),
		pdfio.Helvetica, 9, mutedText, 0)
	fl.gap(8)

	found := false
	for _, p := range cmp.Pages {
		lines := SummaryLines(p.Changes, p.Remarks, c.opts)
		if len(lines) == 0 && p.Highlights.Len() == 0 && !p.Added {
			continue
		}
		found = true
		title := fmt.Sprintf("Page %d", p.Number)
		if p.Added {
			title += " (new page)"
		}
		fl.gap(4)
		fl.line(title, pdfio.HelveticaBold, 11, textColor, 0)
		if len(lines) == 0 {
			fl.line(fmt.Sprintf("Text changes only (%d words highlighted)", p.Highlights.Len()),
				pdfio.Helvetica, 8.5, mutedText, 12)
			continue
		}
		for _, l := range lines {
			font, color := styleOf(l.Kind)
			indent := 24.0
			if l.Kind == Heading {
				indent = 12
			}
			fl.line(l.Text, font, 9, color, indent)
		}
	}

	if len(cmp.RemovedPages) > 0 {
		pages := append([]int(nil), cmp.RemovedPages...)
		sort.Ints(pages)
		nums := make([]string, len(pages))
		for i, n := range pages {
			nums[i] = fmt.Sprint(n)
		}
		found = true
		fl.gap(6)
		fl.line("Pages only in the old edition: "+strings.Join(nums, ", "), pdfio.HelveticaBold, 10, OldColor, 0)
	}

	if !found {
		fl.gap(6)
		fl.line("No differences found.", pdfio.Helvetica, 10, mutedText, 0)
	}
	return fl.added
}
