package pdfio

import "math"

// BBox is an axis-aligned rectangle in PDF user space (origin bottom-left).
type BBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b BBox) Left() float64   { return b.X }
func (b BBox) Right() float64  { return b.X + b.Width }
func (b BBox) Bottom() float64 { return b.Y }
func (b BBox) Top() float64    { return b.Y + b.Height }

// IsEmpty reports whether the box has no area.
func (b BBox) IsEmpty() bool { return b.Width <= 0 || b.Height <= 0 }

// Union returns the smallest box covering both.
func (b BBox) Union(o BBox) BBox {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	left := math.Min(b.Left(), o.Left())
	bottom := math.Min(b.Bottom(), o.Bottom())
	right := math.Max(b.Right(), o.Right())
	top := math.Max(b.Top(), o.Top())
	return BBox{X: left, Y: bottom, Width: right - left, Height: top - bottom}
}

// Expand grows the box by d on every side.
func (b BBox) Expand(d float64) BBox {
	return BBox{X: b.X - d, Y: b.Y - d, Width: b.Width + 2*d, Height: b.Height + 2*d}
}

// PageSize is a page's media box extent in points.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var (
	PageSizeA4     = PageSize{Width: 595, Height: 842}
	PageSizeLetter = PageSize{Width: 612, Height: 792}
)
