package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ashu-N26/PDF-diff-tool/config"
	"github.com/Ashu-N26/PDF-diff-tool/internal/annotate"
	"github.com/Ashu-N26/PDF-diff-tool/internal/compare"
	"github.com/Ashu-N26/PDF-diff-tool/internal/metadata"
	"github.com/Ashu-N26/PDF-diff-tool/internal/pdfio"
	"github.com/Ashu-N26/PDF-diff-tool/internal/storage"
	"github.com/Ashu-N26/PDF-diff-tool/pkg/env"
	"github.com/Ashu-N26/PDF-diff-tool/pkg/httpserver"
	"github.com/Ashu-N26/PDF-diff-tool/pkg/logging"
	"github.com/urfave/cli/v2"
)

func main() {
	env.LoadEnv()

	app := &cli.App{
		Name:  "pdfdiff",
		Usage: "Compare two editions of an AIP chart PDF",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config", Usage: "directory holding config.yaml"},
			&cli.BoolFlag{Name: "debug", Value: env.GetEnvBool("PDFDIFF_DEBUG", false), Usage: "verbose text logging"},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			logging.InitLogger(cfg.Debug || c.Bool("debug"))
			return nil
		},
		Commands: []*cli.Command{compareCommand(), serveCommand()},
	}

	if err := app.Run(os.Args); err != nil {
		if logging.Log != nil {
			logging.Log.Fatal(err)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func compareCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "old", Required: true, Usage: "previous edition"},
		&cli.StringFlag{Name: "new", Required: true, Usage: "current edition"},
		&cli.StringFlag{Name: "out", Value: "pdfdiff-out", Usage: "output directory"},
		&cli.StringFlag{Name: "reader", Usage: "text reader backend (rsc or ledongthuc)"},
		&cli.IntFlag{Name: "workers", Usage: "pages processed at once"},
	}
	return &cli.Command{
		Name:    "compare",
		Aliases: []string{"c"},
		Usage:   "Compare two PDFs and write the annotated and side-by-side documents",
		Flags:   append(flags, optionFlags()...),
		Action: func(c *cli.Context) error {
			cfg := config.Config
			if c.IsSet("reader") {
				cfg.PDF.Reader = c.String("reader")
			}
			if c.IsSet("workers") {
				cfg.Workers = c.Int("workers")
			}
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(c.String("out"), 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			res, err := engine.Run(c.Context, compare.Request{
				OldPath: c.String("old"),
				NewPath: c.String("new"),
				OutDir:  c.String("out"),
				Options: optionsFromFlags(c),
			})
			if err != nil {
				return err
			}
			fmt.Print(compare.Report(res))
			logging.Log.WithField("out", c.String("out")).Info("✅ Comparison written")
			return nil
		},
	}
}

// optionFlags are the per-comparison switches. Like the upload form's
// checkboxes, each is off unless given.
func optionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "front-summary", Usage: "prepend a summary of all changes"},
		&cli.BoolFlag{Name: "minima-panels", Usage: "add a minima panel to changed pages"},
		&cli.BoolFlag{Name: "detect-courses", Usage: "report COURSE changes"},
		&cli.BoolFlag{Name: "detect-dme", Usage: "report DME changes"},
		&cli.BoolFlag{Name: "detect-notes", Usage: "report REMARKS changes"},
	}
}

func optionsFromFlags(c *cli.Context) annotate.Options {
	return annotate.Options{
		FrontSummary:  c.Bool("front-summary"),
		MinimaPanels:  c.Bool("minima-panels"),
		DetectCourses: c.Bool("detect-courses"),
		DetectDME:     c.Bool("detect-dme"),
		DetectNotes:   c.Bool("detect-notes"),
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the upload form and HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "listen port (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Config
			if c.IsSet("port") {
				cfg.Port = c.Int("port")
			}

			store, err := storage.NewLocalStorage(cfg.WorkRoot)
			if err != nil {
				return err
			}
			meta, err := metadata.OpenMetadataStore(cfg.Session.IndexPath, cfg.Session.TTL)
			if err != nil {
				return err
			}
			defer meta.Close()
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := httpserver.NewServer(store, meta, engine, logging.Component("http"))
			go srv.RunSweeper(ctx, cfg.Session.SweepInterval)
			return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Port))
		},
	}
}

func newEngine(cfg *config.AppConfig) (*compare.Engine, error) {
	reader, err := pdfio.NewReader(cfg.PDF.Reader)
	if err != nil {
		return nil, err
	}
	return compare.NewEngine(reader, compare.Config{
		Workers:        cfg.Workers,
		FuzzyThreshold: cfg.Diff.FuzzyThreshold,
		RemarksWindow:  cfg.Signals.RemarksWindow,
		RemarksLimit:   cfg.Annotate.RemarksDisplayLimit,
		MarkDeletions:  cfg.Annotate.MarkDeletions,
		Bundle:         cfg.Session.Bundle,
	}, logging.Component("engine")), nil
}
