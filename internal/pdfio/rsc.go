package pdfio

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"

	"rsc.io/pdf"
)

type rscReader struct{}

func (rscReader) Name() string { return BackendRSC }

func (rscReader) Open(path string) (d Document, err error) {
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
	return &rscDocument{name: name, path: path, r: r, words: make(map[int][]Word)}, nil
}

// rscDocument serialises access to the underlying reader and caches the
// words of each page.
type rscDocument struct {
	name  string
	path  string
	mu    sync.Mutex
	r     *pdf.Reader
	words map[int][]Word
}

func (d *rscDocument) Name() string { return d.name }

func (d *rscDocument) Path() string { return d.path }

func (d *rscDocument) NumPages() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.NumPage()
}

func (d *rscDocument) page(i int) (pdf.Page, error) {
	if err := checkIndex(d.name, i, d.r.NumPage()); err != nil {
		return pdf.Page{}, err
	}
	p := d.r.Page(i + 1)
	if p.V.IsNull() {
		return pdf.Page{}, &PageError{Doc: d.name, Page: i, Err: fmt.Errorf("missing page object")}
	}
	return p, nil
}

func (d *rscDocument) PageWords(i int) (words []Word, err error) {
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

func (d *rscDocument) PageText(i int) (string, error) {
	words, err := d.PageWords(i)
	if err != nil {
		return "", err
	}
	return JoinWords(words), nil
}

func (d *rscDocument) PageSize(i int) (size PageSize, err error) {
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

func (d *rscDocument) Close() error { return nil }
