// Package compare runs the full comparison of two AIP editions: signal
// extraction and comparison, word diffing, and rendering of the annotated
// and side-by-side documents.
package compare

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Ashu-N26/PDF-diff-tool/internal/annotate"
	"github.com/Ashu-N26/PDF-diff-tool/internal/compressor"
	"github.com/Ashu-N26/PDF-diff-tool/internal/pdfio"
	"github.com/Ashu-N26/PDF-diff-tool/internal/sidebyside"
	"github.com/Ashu-N26/PDF-diff-tool/internal/signals"
	"github.com/Ashu-N26/PDF-diff-tool/internal/worddiff"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Config tunes the engine.
type Config struct {
	// Workers is how many pages are processed at once; <= 0 means one.
	Workers int
	// FuzzyThreshold is the similarity from which a replaced word is
	// graded Near instead of Full. Zero or below turns near-match grading
	// off; the config layer defaults it to worddiff.DefaultThreshold.
	FuzzyThreshold int
	RemarksWindow  int
	RemarksLimit   int
	MarkDeletions  bool
	// Bundle additionally packs the artifacts into BundleFile.
	Bundle bool
}

// Request names the two editions and where the artifacts go.
type Request struct {
	OldPath string
	NewPath string
	OutDir  string
	Options annotate.Options
}

// Engine compares document pairs. It is safe for concurrent use; each Run
// owns its documents and output directory.
type Engine struct {
	reader    pdfio.Reader
	extractor *signals.Extractor
	cfg       Config
	log       *logrus.Entry
}

func NewEngine(reader pdfio.Reader, cfg Config, log *logrus.Entry) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Engine{
		reader:    reader,
		extractor: signals.NewExtractor(signals.DefaultRules(), cfg.RemarksWindow),
		cfg:       cfg,
		log:       log,
	}
}

// pageWork carries one page from diffing to rendering.
type pageWork struct {
	page   annotate.Page
	result PageResult
}

// Run compares req.OldPath with req.NewPath. Pages present in both are
// compared pairwise; extra new pages count as wholly inserted and extra
// old pages are reported in RemovedPages. A renderer failure on any page
// aborts the run with a *pdfio.PageError.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	log := e.log.WithField("out", req.OutDir)

	if err := os.MkdirAll(req.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	oldDoc, err := e.reader.Open(req.OldPath)
	if err != nil {
		return nil, err
	}
	defer oldDoc.Close()
	newDoc, err := e.reader.Open(req.NewPath)
	if err != nil {
		return nil, err
	}
	defer newDoc.Close()

	nOld, nNew := oldDoc.NumPages(), newDoc.NumPages()
	log.WithFields(logrus.Fields{"old_pages": nOld, "new_pages": nNew, "workers": e.cfg.Workers}).Info("🔍 Comparing editions")

	work := make([]pageWork, nNew)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i := 0; i < nNew; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w, err := e.comparePage(oldDoc, newDoc, i)
			if err != nil {
				return err
			}
			work[i] = w
			log.WithFields(logrus.Fields{"page": i + 1, "highlighted": w.result.Highlighted, "signals": len(w.result.Changes.Entries)}).Debug("📄 Page compared")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		OldName:  filepath.Base(req.OldPath),
		NewName:  filepath.Base(req.NewPath),
		OldPages: nOld,
		NewPages: nNew,
		Pages:    make([]PageResult, nNew),
	}
	cmp := annotate.Comparison{
		Source:  req.NewPath,
		OldName: res.OldName,
		NewName: res.NewName,
		Pages:   make([]annotate.Page, nNew),
	}
	for i, w := range work {
		res.Pages[i] = w.result
		cmp.Pages[i] = w.page
	}
	for i := nNew; i < nOld; i++ {
		res.RemovedPages = append(res.RemovedPages, i+1)
	}
	cmp.RemovedPages = res.RemovedPages

	opts := req.Options
	opts.MarkDeletions = opts.MarkDeletions || e.cfg.MarkDeletions
	if opts.RemarksLimit <= 0 {
		opts.RemarksLimit = e.cfg.RemarksLimit
	}

	annotated := filepath.Join(req.OutDir, AnnotatedFile)
	if err := annotate.NewComposer(opts, log).ComposeFile(cmp, annotated); err != nil {
		return nil, err
	}
	sbs := filepath.Join(req.OutDir, SideBySideFile)
	if err := sidebyside.ComposeFile(oldDoc, newDoc, sbs, log); err != nil {
		return nil, err
	}
	res.Artifacts = []string{AnnotatedFile, SideBySideFile, SummaryFile}
	res.Duration = time.Since(start)

	summary := filepath.Join(req.OutDir, SummaryFile)
	if err := res.WriteSummary(summary); err != nil {
		return nil, err
	}

	if e.cfg.Bundle {
		bundle := filepath.Join(req.OutDir, BundleFile)
		if err := compressor.Bundle(bundle, annotated, sbs, summary); err != nil {
			return nil, err
		}
		res.Artifacts = append(res.Artifacts, BundleFile)
	}

	log.WithFields(logrus.Fields{"changed_pages": res.ChangedPages(), "took": res.Duration.String()}).Info("✅ Comparison finished")
	return res, nil
}

func (e *Engine) comparePage(oldDoc, newDoc pdfio.Document, i int) (pageWork, error) {
	newWords, err := newDoc.PageWords(i)
	if err != nil {
		return pageWork{}, err
	}
	newText, err := newDoc.PageText(i)
	if err != nil {
		return pageWork{}, err
	}
	size, err := newDoc.PageSize(i)
	if err != nil {
		return pageWork{}, err
	}

	added := i >= oldDoc.NumPages()
	var oldWords []pdfio.Word
	var oldText string
	if !added {
		if oldWords, err = oldDoc.PageWords(i); err != nil {
			return pageWork{}, err
		}
		if oldText, err = oldDoc.PageText(i); err != nil {
			return pageWork{}, err
		}
	}

	oldSignals := e.extractor.Extract(oldText)
	newSignals := e.extractor.Extract(newText)
	changes := signals.CompareSignals(oldSignals, newSignals)
	remarks := signals.CompareRemarks(oldSignals, newSignals)

	oldTokens, newTokens := pdfio.Texts(oldWords), pdfio.Texts(newWords)
	ops := worddiff.Diff(oldTokens, newTokens)
	highlights := worddiff.All(len(newTokens))
	if !added {
		highlights = worddiff.Highlights(ops, oldTokens, newTokens, e.cfg.FuzzyThreshold)
	}

	var removals []annotate.Removal
	removed := 0
	for _, op := range worddiff.Removed(ops) {
		removals = append(removals, annotate.Removal{At: op.NewStart, Words: oldTokens[op.OldStart:op.OldEnd]})
		removed += op.OldEnd - op.OldStart
	}

	lines := worddiff.LineDiff(oldText, newText)
	if len(lines) > maxSummaryLines {
		lines = lines[:maxSummaryLines]
	}

	return pageWork{
		page: annotate.Page{
			Number:     i + 1,
			Size:       size,
			Words:      newWords,
			Highlights: highlights,
			Removals:   removals,
			Changes:    changes,
			Remarks:    remarks,
			Added:      added,
		},
		result: PageResult{
			Number:      i + 1,
			Added:       added,
			Changes:     changes,
			Remarks:     remarks,
			Highlighted: highlights.Len(),
			Near:        highlights.Count(worddiff.Near),
			Removed:     removed,
			Lines:       lines,
		},
	}, nil
}
