package pdfio

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Word is one whitespace-delimited token with its position on the page.
// Line numbers start at 0 at the top of the page.
type Word struct {
	Text     string  `json:"text"`
	Box      BBox    `json:"box"`
	Line     int     `json:"line"`
	FontSize float64 `json:"font_size"`
}

// glyph is a positioned run of text as reported by a PDF library.
type glyph struct {
	S        string
	X, Y     float64
	W        float64
	FontSize float64
}

// end estimates where the glyph stops when the font carried no widths.
func (g glyph) end() float64 {
	if g.W > 0 {
		return g.X + g.W
	}
	return g.X + 0.5*g.FontSize*float64(len([]rune(g.S)))
}

// groupWords sorts glyphs into lines (top to bottom) and splits each line
// into words at whitespace and at horizontal gaps.
func groupWords(glyphs []glyph) []Word {
	var gs []glyph
	for _, g := range glyphs {
		if g.S != "" {
			gs = append(gs, splitRuns(g)...)
		}
	}
	if len(gs) == 0 {
		return nil
	}

	sort.SliceStable(gs, func(i, j int) bool { return gs[i].Y > gs[j].Y })

	var lines [][]glyph
	lineY := math.Inf(1)
	for _, g := range gs {
		tol := math.Max(1, 0.4*g.FontSize)
		if len(lines) == 0 || math.Abs(g.Y-lineY) > tol {
			lines = append(lines, nil)
			lineY = g.Y
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], g)
	}

	var words []Word
	for li, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })

		var cur []glyph
		flush := func() {
			if len(cur) > 0 {
				words = append(words, makeWord(cur, li))
				cur = nil
			}
		}
		for _, g := range line {
			if strings.TrimSpace(g.S) == "" {
				flush()
				continue
			}
			if len(cur) > 0 {
				prev := cur[len(cur)-1]
				if g.X-prev.end() > 0.15*math.Max(g.FontSize, 1) {
					flush()
				}
			}
			cur = append(cur, g)
		}
		flush()
	}
	return words
}

// splitRuns breaks a multi-character run that contains whitespace into
// per-token glyphs, sharing the run width evenly between characters.
func splitRuns(g glyph) []glyph {
	if !strings.ContainsFunc(g.S, unicode.IsSpace) {
		return []glyph{g}
	}
	rs := []rune(g.S)
	per := (g.end() - g.X) / float64(len(rs))
	var out []glyph
	for i, r := range rs {
		out = append(out, glyph{
			S:        string(r),
			X:        g.X + per*float64(i),
			Y:        g.Y,
			W:        per,
			FontSize: g.FontSize,
		})
	}
	return out
}

func makeWord(gs []glyph, line int) Word {
	var sb strings.Builder
	size := 0.0
	for _, g := range gs {
		sb.WriteString(g.S)
		size = math.Max(size, g.FontSize)
	}
	first, last := gs[0], gs[len(gs)-1]
	return Word{
		Text: sb.String(),
		Box: BBox{
			X:      first.X,
			Y:      first.Y - 0.2*size,
			Width:  last.end() - first.X,
			Height: size,
		},
		Line:     line,
		FontSize: size,
	}
}

// JoinWords rebuilds page text from words: words on a line are separated
// by a space and lines by a newline.
func JoinWords(words []Word) string {
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			if w.Line != words[i-1].Line {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(w.Text)
	}
	return sb.String()
}

// Texts returns the word strings in order.
func Texts(words []Word) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.Text
	}
	return out
}
