// Package sidebyside lays both editions of a document next to each other,
// one output page per page index with the original pages imported whole.
package sidebyside

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Ashu-N26/PDF-diff-tool/internal/pdfio"
	"github.com/sirupsen/logrus"
)

// Placeholder is the caption of the blank half standing in for a page one
// edition does not have.
const Placeholder = "(no page)"

var captionColor = pdfio.Color{R: 0.35, G: 0.35, B: 0.35}

const (
	oldFile = iota
	newFile
	placeholderFile
)

// Plan pairs old and new pages by index. Where one edition has run out of
// pages the pair points at a page of the returned placeholder document.
func Plan(oldDoc, newDoc pdfio.Document) ([][2]pdfio.PageRef, *pdfio.Builder, error) {
	docs := [2]pdfio.Document{oldDoc, newDoc}
	n := max(oldDoc.NumPages(), newDoc.NumPages())
	pairs := make([][2]pdfio.PageRef, 0, n)
	b := pdfio.NewBuilder()

	for i := 0; i < n; i++ {
		var pair [2]pdfio.PageRef
		for s, doc := range docs {
			if i < doc.NumPages() {
				pair[s] = pdfio.PageRef{File: s, Page: i}
				continue
			}
			// a missing half borrows the other half's size
			size, err := docs[1-s].PageSize(i)
			if err != nil {
				return nil, nil, err
			}
			pb := b.NewPage(size)
			w := pdfio.TextWidth(Placeholder, pdfio.Helvetica, 12)
			pb.Text((size.Width-w)/2, size.Height/2, pdfio.Helvetica, 12, captionColor, Placeholder)
			pair[s] = pdfio.PageRef{File: placeholderFile, Page: b.NumPages() - 1}
		}
		pairs = append(pairs, pair)
	}
	return pairs, b, nil
}

// ComposeFile writes old pages on the left and new pages on the right to
// path. Both inputs are only read.
func ComposeFile(oldDoc, newDoc pdfio.Document, path string, log *logrus.Entry) error {
	pairs, placeholders, err := Plan(oldDoc, newDoc)
	if err != nil {
		return err
	}
	srcs := []string{oldFile: oldDoc.Path(), newFile: newDoc.Path()}
	if placeholders.NumPages() > 0 {
		dir, err := os.MkdirTemp(filepath.Dir(path), ".sbs-*")
		if err != nil {
			return fmt.Errorf("failed to create work directory: %w", err)
		}
		defer os.RemoveAll(dir)
		blank := filepath.Join(dir, "placeholders.pdf")
		if err := placeholders.WriteFile(blank); err != nil {
			return fmt.Errorf("failed to write placeholder pages: %w", err)
		}
		srcs = append(srcs, blank)
	}

	if err := pdfio.SideBySide(path, srcs, pairs); err != nil {
		return fmt.Errorf("failed to write side-by-side document: %w", err)
	}
	log.WithFields(logrus.Fields{
		"pages":        len(pairs),
		"placeholders": placeholders.NumPages(),
		"old":          oldDoc.Name(),
		"new":          newDoc.Name(),
	}).Debug("📑 Side-by-side composed")
	return nil
}
