package pdfio

import (
	"errors"
	"fmt"
)

// ErrRenderer is matched by every error that comes from reading or
// decoding a PDF.
var ErrRenderer = errors.New("pdf renderer failure")

// DocumentError reports a document that could not be opened at all.
type DocumentError struct {
	Doc string
	Err error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("failed to open %s: %v", e.Doc, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

func (e *DocumentError) Is(target error) bool { return target == ErrRenderer }

// PageError reports a page that could not be decoded. Page is 0-based.
type PageError struct {
	Doc  string
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("failed to read page %d of %s: %v", e.Page+1, e.Doc, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

func (e *PageError) Is(target error) bool { return target == ErrRenderer }

// recoverPage turns a panic raised by a PDF library into a PageError.
func recoverPage(doc string, page int, err *error) {
	if r := recover(); r != nil {
		*err = &PageError{Doc: doc, Page: page, Err: fmt.Errorf("%v", r)}
	}
}
