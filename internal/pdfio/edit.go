package pdfio

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/filter"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/unicode"
)

func init() {
	// pdfcpu would otherwise create a config directory under $HOME.
	api.DisableConfigDir()
}

// AnnotKind selects the annotation subtype.
type AnnotKind int

const (
	AnnotHighlight AnnotKind = iota
	AnnotSquare
	AnnotCaret
	AnnotFreeText
)

func (k AnnotKind) subtype() string {
	switch k {
	case AnnotSquare:
		return "Square"
	case AnnotCaret:
		return "Caret"
	case AnnotFreeText:
		return "FreeText"
	default:
		return "Highlight"
	}
}

// Annotation is one mark placed on an existing page. Rect is in the page's
// user space, the same space Word boxes are reported in.
type Annotation struct {
	Kind     AnnotKind
	Rect     BBox
	Color    Color
	Contents string
	// Appearance is drawn into a form spanning Rect. When nil the viewer
	// draws its default appearance.
	Appearance *PageBuilder
	// Upright turns the appearance against the page's /Rotate so its text
	// reads the right way up on screen.
	Upright bool
}

// Corner names a corner of a page as it is displayed.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
)

// Editor adds annotations to a copy of an existing PDF. The page content
// itself is written back untouched.
type Editor struct {
	name string
	ctx  *model.Context
	res  *types.IndirectRef
}

// OpenEditor reads path into memory for annotating.
func OpenEditor(path string) (*Editor, error) {
	name := filepath.Base(path)
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, &DocumentError{Doc: name, Err: err}
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &DocumentError{Doc: name, Err: err}
	}
	return &Editor{name: name, ctx: ctx}, nil
}

func (e *Editor) Name() string { return e.name }

func (e *Editor) NumPages() int { return e.ctx.PageCount }

func (e *Editor) page(i int) (types.Dict, error) {
	if err := checkIndex(e.name, i, e.NumPages()); err != nil {
		return nil, err
	}
	d, _, _, err := e.ctx.PageDict(i+1, false)
	if err != nil {
		return nil, &PageError{Doc: e.name, Page: i, Err: err}
	}
	if d == nil {
		return nil, &PageError{Doc: e.name, Page: i, Err: fmt.Errorf("missing page object")}
	}
	return d, nil
}

// inherited looks key up on the page and then on its ancestors.
func (e *Editor) inherited(d types.Dict, key string) types.Object {
	for depth := 0; d != nil && depth < 32; depth++ {
		if o, ok := d.Find(key); ok {
			if o, err := e.ctx.Dereference(o); err == nil && o != nil {
				return o
			}
		}
		parent, ok := d.Find("Parent")
		if !ok {
			return nil
		}
		pd, err := e.ctx.DereferenceDict(parent)
		if err != nil {
			return nil
		}
		d = pd
	}
	return nil
}

func (e *Editor) number(o types.Object) (float64, bool) {
	o, err := e.ctx.Dereference(o)
	if err != nil {
		return 0, false
	}
	switch v := o.(type) {
	case types.Integer:
		return float64(v), true
	case types.Float:
		return float64(v), true
	}
	return 0, false
}

func (e *Editor) rect(o types.Object) (BBox, bool) {
	arr, ok := o.(types.Array)
	if !ok || len(arr) != 4 {
		return BBox{}, false
	}
	var v [4]float64
	for i, x := range arr {
		f, ok := e.number(x)
		if !ok {
			return BBox{}, false
		}
		v[i] = f
	}
	box := BBox{
		X:      math.Min(v[0], v[2]),
		Y:      math.Min(v[1], v[3]),
		Width:  math.Abs(v[2] - v[0]),
		Height: math.Abs(v[3] - v[1]),
	}
	return box, !box.IsEmpty()
}

// PageBox returns the visible area of page i in user space (the crop box,
// else the media box, with its real origin) and the clockwise display
// rotation in degrees.
func (e *Editor) PageBox(i int) (BBox, int, error) {
	d, err := e.page(i)
	if err != nil {
		return BBox{}, 0, err
	}
	box := BBox{Width: PageSizeA4.Width, Height: PageSizeA4.Height}
	if b, ok := e.rect(e.inherited(d, "CropBox")); ok {
		box = b
	} else if b, ok := e.rect(e.inherited(d, "MediaBox")); ok {
		box = b
	}
	rot := 0
	if r, ok := e.number(e.inherited(d, "Rotate")); ok {
		deg := (int(r)%360 + 360) % 360
		rot = deg - deg%90
	}
	return box, rot, nil
}

// CornerRect places a w x h rectangle (as displayed) margin points in from
// corner c of page i, and returns it in user space.
func (e *Editor) CornerRect(i int, c Corner, w, h, margin float64) (BBox, error) {
	box, rot, err := e.PageBox(i)
	if err != nil {
		return BBox{}, err
	}
	dw, dh := box.Width, box.Height
	if rot == 90 || rot == 270 {
		dw, dh = dh, dw
	}
	dx := margin
	if c == TopRight {
		dx = dw - margin - w
	}
	dy := dh - margin - h
	return displayToUser(box, rot, BBox{X: dx, Y: dy, Width: w, Height: h}), nil
}

// displayToUser maps a rectangle given in displayed page coordinates
// (origin at the displayed bottom-left) back to user space.
func displayToUser(box BBox, rot int, r BBox) BBox {
	pt := func(u, v float64) (float64, float64) {
		switch rot {
		case 90:
			return box.Width - v, u
		case 180:
			return box.Width - u, box.Height - v
		case 270:
			return v, box.Height - u
		default:
			return u, v
		}
	}
	x1, y1 := pt(r.Left(), r.Bottom())
	x2, y2 := pt(r.Right(), r.Top())
	return BBox{
		X:      box.X + math.Min(x1, x2),
		Y:      box.Y + math.Min(y1, y2),
		Width:  math.Abs(x2 - x1),
		Height: math.Abs(y2 - y1),
	}
}

// Annotate appends a to the annotations of page i.
func (e *Editor) Annotate(i int, a Annotation) error {
	d, err := e.page(i)
	if err != nil {
		return err
	}
	r := a.Rect
	col := types.NewNumberArray(a.Color.R, a.Color.G, a.Color.B)
	annot := types.Dict{
		"Type":     types.Name("Annot"),
		"Subtype":  types.Name(a.Kind.subtype()),
		"Rect":     types.NewNumberArray(r.Left(), r.Bottom(), r.Right(), r.Top()),
		"C":        col,
		"F":        types.Integer(4), // print
		"T":        textString("pdfdiff"),
		"Contents": textString(a.Contents),
		"Border":   types.NewIntegerArray(0, 0, 0),
	}
	switch a.Kind {
	case AnnotHighlight:
		annot["QuadPoints"] = types.NewNumberArray(
			r.Left(), r.Top(), r.Right(), r.Top(),
			r.Left(), r.Bottom(), r.Right(), r.Bottom())
	case AnnotSquare:
		annot["IC"] = col
	case AnnotFreeText:
		annot["DA"] = types.StringLiteral("/F1 8 Tf 0 g")
	}

	if a.Appearance != nil {
		rot := 0
		if a.Upright {
			if _, rot, err = e.PageBox(i); err != nil {
				return err
			}
		}
		ap, err := e.appearance(a.Appearance, rot)
		if err != nil {
			return &PageError{Doc: e.name, Page: i, Err: err}
		}
		annot["AP"] = types.Dict{"N": *ap}
	}

	ir, err := e.ctx.IndRefForNewObject(annot)
	if err != nil {
		return &PageError{Doc: e.name, Page: i, Err: err}
	}
	var annots types.Array
	if o, ok := d.Find("Annots"); ok {
		existing, err := e.ctx.DereferenceArray(o)
		if err != nil {
			return &PageError{Doc: e.name, Page: i, Err: err}
		}
		annots = append(annots, existing...)
	}
	annots = append(annots, *ir)
	d.Update("Annots", annots)
	return nil
}

// appearance stores a canvas as a form XObject, rotated counter-clockwise
// by rot degrees.
func (e *Editor) appearance(p *PageBuilder, rot int) (*types.IndirectRef, error) {
	res, err := e.resources()
	if err != nil {
		return nil, err
	}
	rad := float64(rot) * math.Pi / 180
	cos, sin := math.Round(math.Cos(rad)), math.Round(math.Sin(rad))
	sd := types.StreamDict{
		Dict: types.Dict{
			"Type":      types.Name("XObject"),
			"Subtype":   types.Name("Form"),
			"BBox":      types.NewNumberArray(0, 0, p.size.Width, p.size.Height),
			"Matrix":    types.NewNumberArray(cos, sin, -sin, cos, 0, 0),
			"Resources": *res,
		},
		Content:        bytes.Clone(p.buf.Bytes()),
		FilterPipeline: []types.PDFFilter{{Name: filter.Flate, DecodeParms: nil}},
	}
	sd.InsertName("Filter", filter.Flate)
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return e.ctx.IndRefForNewObject(sd)
}

// resources is the resource dictionary shared by every appearance stream.
func (e *Editor) resources() (*types.IndirectRef, error) {
	if e.res != nil {
		return e.res, nil
	}
	d := types.Dict{
		"Font": types.Dict{
			Helvetica.resource():     fontDict(Helvetica),
			HelveticaBold.resource(): fontDict(HelveticaBold),
		},
		"ExtGState": types.Dict{
			tintState: types.Dict{
				"Type": types.Name("ExtGState"),
				"BM":   types.Name("Multiply"),
				"ca":   types.Float(0.6),
				"CA":   types.Float(0.6),
			},
		},
	}
	ir, err := e.ctx.IndRefForNewObject(d)
	if err != nil {
		return nil, err
	}
	e.res = ir
	return ir, nil
}

func fontDict(f Font) types.Dict {
	widths := widthsArray(f)
	arr := make(types.Array, len(widths))
	for i, w := range widths {
		arr[i] = types.Integer(w)
	}
	return types.Dict{
		"Type":      types.Name("Font"),
		"Subtype":   types.Name("Type1"),
		"BaseFont":  types.Name(f.baseFont()),
		"Encoding":  types.Name("WinAnsiEncoding"),
		"FirstChar": types.Integer(firstChar),
		"LastChar":  types.Integer(lastChar),
		"Widths":    arr,
	}
}

// textString encodes s as a UTF-16BE hex string with byte order mark, the
// form PDF text strings take outside PDFDocEncoding.
func textString(s string) types.HexLiteral {
	b, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		b = []byte{0xFE, 0xFF}
	}
	return types.HexLiteral(hex.EncodeToString(b))
}

// WriteFile writes the annotated document to path.
func (e *Editor) WriteFile(path string) error {
	setWriteOptions(e.ctx.Configuration)
	if err := api.WriteContextFile(e.ctx, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// setWriteOptions keeps output to a classic xref table, which every reader
// in this package handles.
func setWriteOptions(conf *model.Configuration) {
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
}
