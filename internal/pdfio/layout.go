package pdfio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// gutter is the margin kept around each half of a side-by-side page, in
// points.
const gutter = 9

func writeConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	setWriteOptions(conf)
	return conf
}

// MergeFiles concatenates the pages of srcs, in order, into dst.
func MergeFiles(dst string, srcs ...string) error {
	if len(srcs) == 0 {
		return fmt.Errorf("nothing to merge into %s", filepath.Base(dst))
	}
	if err := api.MergeCreateFile(srcs, dst, false, writeConf()); err != nil {
		return fmt.Errorf("failed to merge into %s: %w", filepath.Base(dst), err)
	}
	return nil
}

// PageRef picks page Page (0-based) of the File-th input.
type PageRef struct {
	File int
	Page int
}

// SideBySide writes one output page per pair, the two referenced source
// pages placed left and right on a 1x2 grid. The source pages are imported
// as they are, with all of their graphics.
func SideBySide(dst string, srcs []string, pairs [][2]PageRef) error {
	if len(pairs) == 0 {
		return fmt.Errorf("no page pairs for %s", filepath.Base(dst))
	}
	offsets := make([]int, len(srcs))
	counts := make([]int, len(srcs))
	total := 0
	for i, src := range srcs {
		n, err := api.PageCountFile(src)
		if err != nil {
			return &DocumentError{Doc: filepath.Base(src), Err: err}
		}
		offsets[i], counts[i] = total, n
		total += n
	}

	sel := make([]string, 0, 2*len(pairs))
	for _, pair := range pairs {
		for _, ref := range pair {
			if ref.File < 0 || ref.File >= len(srcs) {
				return fmt.Errorf("page pair refers to input %d of %d", ref.File, len(srcs))
			}
			if err := checkIndex(filepath.Base(srcs[ref.File]), ref.Page, counts[ref.File]); err != nil {
				return err
			}
			sel = append(sel, strconv.Itoa(offsets[ref.File]+ref.Page+1))
		}
	}

	dir, err := os.MkdirTemp(filepath.Dir(dst), ".layout-*")
	if err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(dir)

	merged := filepath.Join(dir, "merged.pdf")
	if err := MergeFiles(merged, srcs...); err != nil {
		return err
	}
	ordered := filepath.Join(dir, "ordered.pdf")
	if err := api.CollectFile(merged, ordered, sel, writeConf()); err != nil {
		return fmt.Errorf("failed to order pages: %w", err)
	}

	conf := writeConf()
	grid, err := api.PDFGridConfig(1, 2, fmt.Sprintf("margin:%d, border:off", gutter), conf)
	if err != nil {
		return fmt.Errorf("failed to configure grid: %w", err)
	}
	if err := api.NUpFile([]string{ordered}, dst, nil, grid, conf); err != nil {
		return fmt.Errorf("failed to lay out %s: %w", filepath.Base(dst), err)
	}
	return nil
}
