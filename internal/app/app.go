// Package app wires configuration, the store, the source reader, the
// pipeline and the report engine into the commands of the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/JonMunkholm/ecomrevenue/internal/config"
	"github.com/JonMunkholm/ecomrevenue/internal/core"
	"github.com/JonMunkholm/ecomrevenue/internal/ingest"
	"github.com/JonMunkholm/ecomrevenue/internal/logging"
	"github.com/JonMunkholm/ecomrevenue/internal/report"
	"github.com/JonMunkholm/ecomrevenue/internal/source"
	"github.com/JonMunkholm/ecomrevenue/internal/store"
	"github.com/JonMunkholm/ecomrevenue/internal/web"
)

// App runs commands against one configuration. Every command opens the
// store once and closes it before returning.
type App struct {
	cfg    *config.Config
	out    io.Writer
	logger *slog.Logger
}

// New creates an App writing command output to out.
func New(cfg *config.Config, out io.Writer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{cfg: cfg, out: out, logger: logger}
}

func (a *App) openStore(ctx context.Context) (store.Store, error) {
	s, err := store.Open(ctx, a.cfg.Store.URL, store.Options{
		MaxConns:        int32(a.cfg.Store.MaxConns),
		MinConns:        int32(a.cfg.Store.MinConns),
		MaxConnLifetime: a.cfg.Store.MaxConnLifetime,
		MaxConnIdleTime: a.cfg.Store.MaxConnIdleTime,
		Logger:          a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("store opened", "url", config.MaskURL(a.cfg.Store.URL), "backend", store.Scheme(a.cfg.Store.URL))
	return s, nil
}

// withStore runs fn with a store scoped to the call and bounded by the
// store timeout.
func (a *App) withStore(ctx context.Context, fn func(context.Context, store.Store) error) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Store.Timeout)
	defer cancel()

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			a.logger.Warn("store close failed", "error", cerr)
		}
	}()
	return fn(ctx, s)
}

// Load reads the data directory and loads it into the store.
// In strict mode the report is printed before the failure is returned.
func (a *App) Load(ctx context.Context) (*ingest.LoadReport, error) {
	var lr *ingest.LoadReport
	err := a.withStore(ctx, func(ctx context.Context, s store.Store) error {
		var err error
		lr, err = a.load(ctx, s)
		return err
	})
	return lr, err
}

// Report computes the customer revenue report, writes the CSV file and
// prints the console summary.
func (a *App) Report(ctx context.Context) error {
	return a.withStore(ctx, a.report)
}

// Run loads and then reports on the same store. A strict-mode abort stops
// before the report.
func (a *App) Run(ctx context.Context) error {
	return a.withStore(ctx, func(ctx context.Context, s store.Store) error {
		if _, err := a.load(ctx, s); err != nil {
			return err
		}
		return a.report(ctx, s)
	})
}

// Serve starts the read-only HTTP server and blocks until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	srv := web.NewServer(s, web.Options{
		TopN:           a.cfg.Report.TopN,
		RequestTimeout: a.cfg.Server.RequestTimeout,
	})
	return srv.Run(ctx, a.cfg.Server)
}

func (a *App) load(ctx context.Context, s store.Store) (*ingest.LoadReport, error) {
	logger := logging.WithFields(ctx, "command", "load", "data_dir", a.cfg.Ingest.DataDir)

	datasets, err := source.ReadDir(ctx, a.cfg.Ingest.DataDir, source.Options{
		MaxFileSize: a.cfg.Ingest.MaxFileSize,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	lr, loadErr := ingest.New(s, ingest.Options{
		Strict: a.cfg.Ingest.Strict,
		Audit:  a.cfg.Ingest.Audit,
		Logger: logger,
	}).Load(ctx, datasets)
	if lr == nil {
		return nil, loadErr
	}

	counts, err := ingest.TableCounts(ctx, s)
	if err != nil {
		return lr, err
	}
	PrintLoadReport(a.out, lr, counts)
	return lr, loadErr
}

func (a *App) report(ctx context.Context, s store.Store) error {
	engine := report.New(s).WithLogger(logging.WithFields(ctx, "command", "report"))
	rows, err := engine.ComputeCustomerRevenue(ctx)
	if err != nil {
		return err
	}

	if err := report.ExportFile(a.cfg.Report.Output, rows); err != nil {
		return &core.ReportComputeError{Err: fmt.Errorf("write %s: %w", a.cfg.Report.Output, err)}
	}
	a.logger.Info("report written", "path", a.cfg.Report.Output, "rows", len(rows))

	report.PrintConsole(a.out, rows, report.ExportSummary(rows, a.cfg.Report.TopN), a.cfg.Report.Currency)
	return nil
}
