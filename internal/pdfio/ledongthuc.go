package pdfio

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ledongthuc/pdf"
)

// ledongthucReader uses github.com/ledongthuc/pdf, whose plain text
// extraction copes better with some font encodings.
type ledongthucReader struct{}

func (ledongthucReader) Name() string { return BackendLedongthuc }

func (ledongthucReader) Open(path string) (d Document, err error) {
	name := filepath.Base(path)
	data, err := readAll(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, &DocumentError{Doc: name, Err: fmt.Errorf("%v", r)}
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &DocumentError{Doc: name, Err: err}
	}
	return &ledongthucDocument{name: name, path: path, r: r, words: make(map[int][]Word)}, nil
}

type ledongthucDocument struct {
	name  string
	path  string
	mu    sync.Mutex
	r     *pdf.Reader
	words map[int][]Word
}

func (d *ledongthucDocument) Name() string { return d.name }

func (d *ledongthucDocument) Path() string { return d.path }

func (d *ledongthucDocument) NumPages() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.NumPage()
}

func (d *ledongthucDocument) page(i int) (pdf.Page, error) {
	if err := checkIndex(d.name, i, d.r.NumPage()); err != nil {
		return pdf.Page{}, err
	}
	p := d.r.Page(i + 1)
	if p.V.IsNull() {
		return pdf.Page{}, &PageError{Doc: d.name, Page: i, Err: fmt.Errorf("missing page object")}
	}
	return p, nil
}

func (d *ledongthucDocument) PageWords(i int) (words []Word, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if w, ok := d.words[i]; ok {
		return w, nil
	}
	defer recoverPage(d.name, i, &err)

	p, err := d.page(i)
	if err != nil {
		return nil, err
	}
	content := p.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, glyph{S: t.S, X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize})
	}
	words = groupWords(glyphs)
	d.words[i] = words
	return words, nil
}

func (d *ledongthucDocument) PageText(i int) (text string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer recoverPage(d.name, i, &err)

	p, err := d.page(i)
	if err != nil {
		return "", err
	}
	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", &PageError{Doc: d.name, Page: i, Err: err}
	}
	return text, nil
}

func (d *ledongthucDocument) PageSize(i int) (size PageSize, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer recoverPage(d.name, i, &err)

	p, err := d.page(i)
	if err != nil {
		return PageSize{}, err
	}
	if s, ok := mediaBox(p.V); ok {
		return s, nil
	}
	return PageSizeA4, nil
}

func (d *ledongthucDocument) Close() error { return nil }
