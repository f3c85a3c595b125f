package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/meisai/internal/common"
	"github.com/Veraticus/meisai/internal/model"
	"github.com/Veraticus/meisai/internal/service"
)

var _ service.Storage = (*SQLiteStorage)(nil)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	version, err := store.schemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestMigrate_NewerSchemaRefused(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, "PRAGMA user_version = 99")
	require.NoError(t, err)

	err = store.Migrate(ctx)
	assert.ErrorIs(t, err, common.ErrDatabaseCorrupted)
}

func TestMigrate_NilContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // testing nil context handling
	err := store.Migrate(nil)
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestRules_RoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rules, err := store.LoadRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)

	want := []model.Rule{
		{Keyword: "ＥＴＣ", Category: "旅費・交通費"},
		{Keyword: "ENEOS", Category: "燃料費"},
		{Keyword: "AMAZON", Category: "消耗品"},
	}
	require.NoError(t, store.SaveRules(ctx, want))

	got, err := store.LoadRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.SaveRules(ctx, want[:1]))
	got, err = store.LoadRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, want[:1], got)

	require.NoError(t, store.SaveRules(ctx, nil))
	got, err = store.LoadRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRules_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveRules(ctx, []model.Rule{{Keyword: "A", Category: "x"}}))

	err := store.SaveRules(ctx, []model.Rule{{Keyword: "B", Category: "x"}, {Keyword: " ", Category: "x"}})
	assert.ErrorIs(t, err, ErrInvalidRule)

	got, err := store.LoadRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Rule{{Keyword: "A", Category: "x"}}, got)
}

func TestCategories_RoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.LoadCategories(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.SaveCategories(ctx, model.DefaultCategories))
	got, err := store.LoadCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCategories, got)

	err = store.SaveCategories(ctx, []string{"A", "A"})
	assert.Error(t, err)

	got, err = store.LoadCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCategories, got)
}

func testRows() []model.Row {
	return []model.Row{
		{
			ID:         "b7c1",
			Content:    "ETC 首都高速",
			Amount:     1500,
			Category:   "旅費・交通費",
			SourceFile: "jan.csv",
			Columns: []model.Column{
				{Name: "利用日", Value: "2024/01/15"},
				{Name: "利用店名", Value: "ETC 首都高速"},
			},
		},
		{
			ID:       "a9f0",
			Content:  "STARBUCKS",
			Amount:   -480,
			Category: model.DefaultSentinel,
			Locked:   true,
		},
	}
}

func TestTransactions_RoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	want := testRows()
	require.NoError(t, store.SaveTransactions(ctx, want))

	got, err := store.LoadTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, want[0], got[0])
	assert.Equal(t, want[1].ID, got[1].ID)
	assert.True(t, got[1].Locked)
	assert.Equal(t, int64(-480), got[1].Amount)
	assert.Empty(t, got[1].Columns)

	require.NoError(t, store.SaveTransactions(ctx, want[1:]))
	got, err = store.LoadTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a9f0", got[0].ID)

	require.NoError(t, store.ClearTransactions(ctx))
	got, err = store.LoadTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransactions_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name string
		rows []model.Row
	}{
		{name: "missing id", rows: []model.Row{{Category: "x"}}},
		{name: "missing category", rows: []model.Row{{ID: "1"}}},
		{name: "duplicate id", rows: []model.Row{{ID: "1", Category: "x"}, {ID: "1", Category: "y"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SaveTransactions(ctx, tt.rows)
			assert.ErrorIs(t, err, ErrInvalidTransaction)
		})
	}
}

func TestStorage_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "meisai.db")
	ctx := context.Background()

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.SaveRules(ctx, []model.Rule{{Keyword: "ETC", Category: "Travel"}}))
	require.NoError(t, store.SaveTransactions(ctx, testRows()))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.Migrate(ctx))

	rules, err := reopened.LoadRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	rows, err := reopened.LoadTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
