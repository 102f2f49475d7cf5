// Package pdfio reads words and geometry out of PDF pages, annotates
// existing PDFs in place and writes simple generated pages.
package pdfio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Document is an opened PDF. Page indexes are 0-based.
type Document interface {
	Name() string
	// Path is the file the document was opened from.
	Path() string
	NumPages() int
	PageText(i int) (string, error)
	PageWords(i int) ([]Word, error)
	PageSize(i int) (PageSize, error)
	Close() error
}

// Reader opens documents with one PDF library.
type Reader interface {
	Name() string
	Open(path string) (Document, error)
}

const (
	BackendRSC        = "rsc"
	BackendLedongthuc = "ledongthuc"
)

// NewReader returns the reader for a backend name. An empty name selects
// the rsc.io/pdf backend.
func NewReader(backend string) (Reader, error) {
	switch strings.ToLower(backend) {
	case "", BackendRSC:
		return rscReader{}, nil
	case BackendLedongthuc:
		return ledongthucReader{}, nil
	default:
		return nil, fmt.Errorf("unknown pdf reader backend %q", backend)
	}
}

func readAll(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DocumentError{Doc: filepath.Base(path), Err: err}
	}
	return data, nil
}

// pdfValue is the subset of the object model shared by the PDF libraries.
type pdfValue[V any] interface {
	Key(string) V
	Index(int) V
	Len() int
	Float64() float64
	IsNull() bool
}

// inheritedKey reads key from a page dictionary or the nearest parent page
// tree node carrying it.
func inheritedKey[V pdfValue[V]](page V, key string) V {
	node := page
	for depth := 0; depth < 32 && !node.IsNull(); depth++ {
		if v := node.Key(key); !v.IsNull() {
			return v
		}
		node = node.Key("Parent")
	}
	return node.Key(key)
}

// mediaBox reports the displayed size of a page: the extent of its
// /MediaBox, swapped when /Rotate turns the page on its side.
func mediaBox[V pdfValue[V]](page V) (PageSize, bool) {
	box := inheritedKey(page, "MediaBox")
	if box.IsNull() || box.Len() != 4 {
		return PageSize{}, false
	}
	w := math.Abs(box.Index(2).Float64() - box.Index(0).Float64())
	h := math.Abs(box.Index(3).Float64() - box.Index(1).Float64())
	if w == 0 || h == 0 {
		return PageSize{}, false
	}
	if rot := int(inheritedKey(page, "Rotate").Float64()); ((rot%360)+360)%180 == 90 {
		w, h = h, w
	}
	return PageSize{Width: w, Height: h}, true
}

func checkIndex(doc string, i, n int) error {
	if i < 0 || i >= n {
		return &PageError{Doc: doc, Page: i, Err: fmt.Errorf("page index out of range [0,%d)", n)}
	}
	return nil
}
