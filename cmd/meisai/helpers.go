package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/meisai/internal/common"
	"github.com/Veraticus/meisai/internal/config"
	"github.com/Veraticus/meisai/internal/engine"
	"github.com/Veraticus/meisai/internal/ingest"
	"github.com/Veraticus/meisai/internal/model"
	"github.com/Veraticus/meisai/internal/ofx"
	"github.com/Veraticus/meisai/internal/report"
	"github.com/Veraticus/meisai/internal/sheets"
	"github.com/Veraticus/meisai/internal/storage"
)

// workspace bundles the opened store and the session over it.
type workspace struct {
	store   *storage.SQLiteStorage
	session *engine.Session
	config  config.App
}

// openWorkspace resolves configuration, opens and migrates the database and
// loads the session. The returned cleanup closes the database.
func (a *app) openWorkspace(ctx context.Context) (*workspace, func(), error) {
	cfg, err := config.Load(a.v)
	if err != nil {
		return nil, func() {}, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, func() {}, err
	}
	cleanup := func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close database", "error", closeErr)
		}
	}

	if err := store.Migrate(ctx); err != nil {
		cleanup()
		if errors.Is(err, common.ErrDatabaseCorrupted) {
			return nil, func() {}, common.NewUserError(
				"The database at "+cfg.DatabasePath+" is damaged or from a newer version. Restore a backup or point database.path elsewhere.", err)
		}
		return nil, func() {}, fmt.Errorf("failed to run migrations: %w", err)
	}

	session, err := engine.NewSession(ctx, store, engine.Options{
		Logger:            slog.Default(),
		Sentinel:          cfg.Sentinel,
		DefaultCategories: cfg.DefaultCategories,
	})
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	return &workspace{store: store, session: session, config: cfg}, cleanup, nil
}

// newLoader returns a loader for the configured CSV encodings that also
// understands OFX and QFX downloads.
func newLoader(encodings []string) *ingest.Loader {
	parser := ofx.NewParser()
	return ingest.NewLoader(encodings).
		Register(".ofx", parser).
		Register(".qfx", parser)
}

// reportOptions selects where a report goes.
type reportOptions struct {
	output   string
	language string
	toSheets bool
}

// writeReport builds the report for rows and writes it to a CSV file and,
// when requested, to Google Sheets. It returns the CSV path.
func (a *app) writeReport(ctx context.Context, rows []model.Row, summary model.Summary, opts reportOptions) (string, error) {
	if len(rows) == 0 {
		return "", common.NewUserError("No transactions yet. Run 'meisai analyze <files>' first.", common.ErrNoTransactions)
	}

	doc, err := report.Build(rows, summary, opts.language)
	if err != nil {
		return "", common.NewUserError(err.Error(), err)
	}

	path := opts.output
	if path == "" {
		path = doc.Filename
	}
	path = config.ExpandPath(path)

	if err := writeCSVFile(path, doc); err != nil {
		return "", err
	}

	if opts.toSheets {
		sheetsConfig, err := config.LoadSheetsConfig(a.v)
		if err != nil {
			return path, fmt.Errorf("invalid sheets configuration: %w", err)
		}
		writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
		if err != nil {
			return path, err
		}
		if err := writer.Write(ctx, doc); err != nil {
			return path, fmt.Errorf("failed to export to Google Sheets: %w", err)
		}
	}

	return path, nil
}

func writeCSVFile(path string, doc *report.Document) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // path comes from the user
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close report: %w", closeErr)
		}
	}()

	return report.WriteCSV(f, doc)
}
