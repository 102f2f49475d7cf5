package pdfio

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Font selects one of the standard fonts the writer embeds by reference.
type Font int

const (
	Helvetica Font = iota
	HelveticaBold
)

func (f Font) resource() string {
	if f == HelveticaBold {
		return "F2"
	}
	return "F1"
}

func (f Font) baseFont() string {
	if f == HelveticaBold {
		return "Helvetica-Bold"
	}
	return "Helvetica"
}

// helveticaWidths holds the AFM advance widths for codes 32..126, in
// thousandths of an em. Other codes use defaultWidth.
var helveticaWidths = [...]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

const (
	firstChar    = 32
	lastChar     = 255
	defaultWidth = 556
	// bold glyphs run roughly this much wider than regular ones
	boldFactor = 1.06
)

func charWidth(c byte) int {
	if c >= firstChar && int(c-firstChar) < len(helveticaWidths) {
		return helveticaWidths[c-firstChar]
	}
	return defaultWidth
}

// encodeWinAnsi converts UTF-8 text to WinAnsi bytes; characters outside
// the code page become '?'.
func encodeWinAnsi(s string) []byte {
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		out := make([]byte, 0, len(s))
		for _, r := range s {
			if r < 0x80 {
				out = append(out, byte(r))
			} else {
				out = append(out, '?')
			}
		}
		return out
	}
	return b
}

// TextWidth measures s set in f at size points.
func TextWidth(s string, f Font, size float64) float64 {
	total := 0
	for _, c := range encodeWinAnsi(s) {
		total += charWidth(c)
	}
	w := float64(total) * size / 1000
	if f == HelveticaBold {
		w *= boldFactor
	}
	return w
}

// widthsArray renders the /Widths entry for codes firstChar..lastChar.
func widthsArray(f Font) []int {
	out := make([]int, 0, lastChar-firstChar+1)
	for c := firstChar; c <= lastChar; c++ {
		w := charWidth(byte(c))
		if f == HelveticaBold {
			w = int(float64(w) * boldFactor)
		}
		out = append(out, w)
	}
	return out
}
