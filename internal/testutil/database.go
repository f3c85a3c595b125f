// Package testutil provides shared helpers for tests that need a real store
// or a populated workspace.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/meisai/internal/engine"
	"github.com/Veraticus/meisai/internal/ingest"
	"github.com/Veraticus/meisai/internal/model"
	"github.com/Veraticus/meisai/internal/storage"
)

// SetupTestStore creates a migrated SQLite store in a temporary directory.
// It is closed when the test ends.
func SetupTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "meisai.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SessionOptions configures SetupTestSession.
type SessionOptions struct {
	Categories []string
	Rules      []model.Rule
}

// SetupTestSession creates a session over a fresh store seeded with the
// given categories (TestCategories when empty) and rules. Row IDs are
// deterministic: row-1, row-2, ...
func SetupTestSession(t *testing.T, opts SessionOptions) (*engine.Session, *storage.SQLiteStorage) {
	t.Helper()

	store := SetupTestStore(t)
	ctx := context.Background()

	if len(opts.Categories) == 0 {
		opts.Categories = TestCategories
	}

	n := 0
	session, err := engine.NewSession(ctx, store, engine.Options{
		DefaultCategories: opts.Categories,
		NewID: func() string {
			n++
			return fmt.Sprintf("row-%d", n)
		},
	})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if len(opts.Rules) > 0 {
		if err := session.ReplaceRules(ctx, opts.Rules); err != nil {
			t.Fatalf("failed to seed rules: %v", err)
		}
	}

	return session, store
}

// AnalyzeCSV stages a UTF-8 CSV statement on session and classifies it using
// the Description and Amount columns.
func AnalyzeCSV(t *testing.T, session *engine.Session, name, data string) []model.Row {
	t.Helper()

	ctx := context.Background()
	table, err := ingest.NewLoader(nil).Load(ctx, ingest.File{Reader: strings.NewReader(data), Name: name})
	if err != nil {
		t.Fatalf("failed to load %s: %v", name, err)
	}
	if _, err := session.Stage(table); err != nil {
		t.Fatalf("failed to stage %s: %v", name, err)
	}

	rows, err := session.Analyze(ctx, "Description", "Amount")
	if err != nil {
		t.Fatalf("failed to analyze %s: %v", name, err)
	}
	return rows
}
