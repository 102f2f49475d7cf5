package pdfio

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"strings"
)

// Builder assembles pages into a new PDF file.
type Builder struct {
	pages []*PageBuilder
}

// NewBuilder returns an empty document builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// NewPage appends a page of the given size and returns it for drawing.
func (b *Builder) NewPage(size PageSize) *PageBuilder {
	if size.Width <= 0 || size.Height <= 0 {
		size = PageSizeA4
	}
	p := &PageBuilder{size: size}
	b.pages = append(b.pages, p)
	return p
}

// InsertPage puts a new page at index i, shifting later pages back.
func (b *Builder) InsertPage(i int, size PageSize) *PageBuilder {
	p := b.NewPage(size)
	b.pages = b.pages[:len(b.pages)-1]
	if i < 0 {
		i = 0
	}
	if i > len(b.pages) {
		i = len(b.pages)
	}
	b.pages = append(b.pages[:i], append([]*PageBuilder{p}, b.pages[i:]...)...)
	return p
}

// NumPages is the number of pages added so far.
func (b *Builder) NumPages() int { return len(b.pages) }

// object numbers of the fixed objects
const (
	catalogObj = 1
	pagesObj   = 2
	fontObj    = 3
	boldObj    = 4
	firstPage  = 5
)

// Write serialises the document. A builder without pages gets one blank
// page so the output is always a valid PDF.
func (b *Builder) Write(out io.Writer) error {
	if len(b.pages) == 0 {
		b.NewPage(PageSizeA4)
	}

	var buf bytes.Buffer
	var offsets []int
	begin := func(num int) {
		for len(offsets) < num {
			offsets = append(offsets, 0)
		}
		offsets[num-1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", num)
	}
	end := func() { buf.WriteString("endobj\n") }

	buf.WriteString("%PDF-1.4\n")
	buf.Write([]byte{'%', 0xE2, 0xE3, 0xCF, 0xD3, '\n'})

	begin(catalogObj)
	fmt.Fprintf(&buf, "<< /Type /Catalog /Pages %d 0 R >>\n", pagesObj)
	end()

	kids := make([]string, len(b.pages))
	for i := range b.pages {
		kids[i] = fmt.Sprintf("%d 0 R", firstPage+2*i)
	}
	begin(pagesObj)
	fmt.Fprintf(&buf, "<< /Type /Pages /Kids [%s] /Count %d >>\n", strings.Join(kids, " "), len(b.pages))
	end()

	for _, f := range []struct {
		num  int
		font Font
	}{{fontObj, Helvetica}, {boldObj, HelveticaBold}} {
		begin(f.num)
		fmt.Fprintf(&buf, "<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding /FirstChar %d /LastChar %d /Widths %s >>\n",
			f.font.baseFont(), firstChar, lastChar, intArray(widthsArray(f.font)))
		end()
	}

	for i, p := range b.pages {
		pageNum := firstPage + 2*i
		contentNum := pageNum + 1

		begin(pageNum)
		rotate := ""
		if p.rotate != 0 {
			rotate = fmt.Sprintf(" /Rotate %d", p.rotate)
		}
		fmt.Fprintf(&buf, "<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %.2f %.2f]%s /Resources << /Font << /F1 %d 0 R /F2 %d 0 R >> >> /Contents %d 0 R >>\n",
			pagesObj, p.size.Width, p.size.Height, rotate, fontObj, boldObj, contentNum)
		end()

		data, err := deflate(p.buf.Bytes())
		if err != nil {
			return fmt.Errorf("failed to compress page %d: %w", i+1, err)
		}
		begin(contentNum)
		fmt.Fprintf(&buf, "<< /Length %d /Filter /FlateDecode >>\nstream\n", len(data))
		buf.Write(data)
		buf.WriteString("\nendstream\n")
		end()
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, catalogObj, xref)

	_, err := out.Write(buf.Bytes())
	return err
}

// WriteFile writes the document to path.
func (b *Builder) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := b.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func intArray(vals []int) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vals {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", v)
	}
	sb.WriteByte(']')
	return sb.String()
}
