package pdfio

import (
	"bytes"
	"fmt"
)

// Color is an RGB fill or stroke colour with components in [0,1].
type Color struct {
	R, G, B float64
}

var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
)

// PageBuilder accumulates the content stream of one output page or of an
// annotation appearance.
type PageBuilder struct {
	size   PageSize
	rotate int
	buf    bytes.Buffer
}

// NewCanvas returns a free-standing drawing surface of the given size, used
// as an annotation appearance by Editor.Annotate.
func NewCanvas(w, h float64) *PageBuilder {
	return &PageBuilder{size: PageSize{Width: w, Height: h}}
}

// Size returns the page's media box.
func (p *PageBuilder) Size() PageSize { return p.size }

// SetRotate sets the page's /Rotate entry, in degrees clockwise.
func (p *PageBuilder) SetRotate(deg int) {
	deg = (deg%360 + 360) % 360
	p.rotate = deg - deg%90
}

// tintState names the multiply-blend graphics state in appearance
// resources.
const tintState = "GM"

// Tint paints r with c multiplied onto whatever lies underneath, so text
// below stays readable. Only appearance streams carry the blend state.
func (p *PageBuilder) Tint(r BBox, c Color) {
	fmt.Fprintf(&p.buf, "q\n/%s gs\n", tintState)
	p.fill(c)
	fmt.Fprintf(&p.buf, "%.2f %.2f %.2f %.2f re\nf\nQ\n", r.X, r.Y, r.Width, r.Height)
}

func (p *PageBuilder) fill(c Color) {
	fmt.Fprintf(&p.buf, "%.4f %.4f %.4f rg\n", c.R, c.G, c.B)
}

func (p *PageBuilder) stroke(c Color, width float64) {
	fmt.Fprintf(&p.buf, "%.4f %.4f %.4f RG\n%.2f w\n", c.R, c.G, c.B, width)
}

// FillRect paints a solid rectangle.
func (p *PageBuilder) FillRect(r BBox, c Color) {
	p.buf.WriteString("q\n")
	p.fill(c)
	fmt.Fprintf(&p.buf, "%.2f %.2f %.2f %.2f re\nf\nQ\n", r.X, r.Y, r.Width, r.Height)
}

// StrokeRect outlines a rectangle.
func (p *PageBuilder) StrokeRect(r BBox, c Color, width float64) {
	p.buf.WriteString("q\n")
	p.stroke(c, width)
	fmt.Fprintf(&p.buf, "%.2f %.2f %.2f %.2f re\nS\nQ\n", r.X, r.Y, r.Width, r.Height)
}

// Line strokes a straight segment.
func (p *PageBuilder) Line(x1, y1, x2, y2 float64, c Color, width float64) {
	p.buf.WriteString("q\n")
	p.stroke(c, width)
	fmt.Fprintf(&p.buf, "%.2f %.2f m\n%.2f %.2f l\nS\nQ\n", x1, y1, x2, y2)
}

// Text draws s with its baseline starting at x, y.
func (p *PageBuilder) Text(x, y float64, f Font, size float64, c Color, s string) {
	if s == "" || size <= 0 {
		return
	}
	p.buf.WriteString("BT\n")
	p.fill(c)
	fmt.Fprintf(&p.buf, "/%s %.2f Tf\n", f.resource(), size)
	fmt.Fprintf(&p.buf, "%.2f %.2f Td\n", x, y)
	p.buf.WriteString("(")
	p.buf.Write(escapeString(encodeWinAnsi(s)))
	p.buf.WriteString(") Tj\nET\n")
}

// escapeString escapes a byte string for a PDF literal. Bytes outside
// printable ASCII are written as octal escapes.
func escapeString(b []byte) []byte {
	var out bytes.Buffer
	for _, c := range b {
		switch {
		case c == '(' || c == ')' || c == '\\':
			out.WriteByte('\\')
			out.WriteByte(c)
		case c < 32 || c > 126:
			fmt.Fprintf(&out, "\\%03o", c)
		default:
			out.WriteByte(c)
		}
	}
	return out.Bytes()
}
