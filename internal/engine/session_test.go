package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/meisai/internal/common"
	"github.com/Veraticus/meisai/internal/ingest"
	"github.com/Veraticus/meisai/internal/model"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory service.Storage that records saves.
type memStore struct {
	rules         []model.Rule
	categories    []string
	rows          []model.Row
	calls         []string
	failSaveRules bool
	failSaveRows  bool
}

func (m *memStore) LoadRules(_ context.Context) ([]model.Rule, error) {
	return append([]model.Rule(nil), m.rules...), nil
}

func (m *memStore) SaveRules(_ context.Context, rules []model.Rule) error {
	m.calls = append(m.calls, "rules")
	if m.failSaveRules {
		return errStoreDown
	}
	m.rules = append([]model.Rule(nil), rules...)
	return nil
}

func (m *memStore) LoadCategories(_ context.Context) ([]string, error) {
	if m.categories == nil {
		return nil, common.ErrNotFound
	}
	return append([]string(nil), m.categories...), nil
}

func (m *memStore) SaveCategories(_ context.Context, labels []string) error {
	m.calls = append(m.calls, "categories")
	m.categories = append([]string{}, labels...)
	return nil
}

func (m *memStore) LoadTransactions(_ context.Context) ([]model.Row, error) {
	return append([]model.Row(nil), m.rows...), nil
}

func (m *memStore) SaveTransactions(_ context.Context, rows []model.Row) error {
	m.calls = append(m.calls, "transactions")
	if m.failSaveRows {
		return errStoreDown
	}
	m.rows = append([]model.Row(nil), rows...)
	return nil
}

func (m *memStore) ClearTransactions(_ context.Context) error {
	m.calls = append(m.calls, "clear")
	m.rows = nil
	return nil
}

func (m *memStore) Migrate(_ context.Context) error { return nil }
func (m *memStore) Close() error                    { return nil }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("row-%d", n)
	}
}

func newTestSession(t *testing.T, store *memStore) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), store, Options{
		DefaultCategories: []string{"Travel", "Food", "Books"},
		NewID:             sequentialIDs(),
	})
	require.NoError(t, err)
	return s
}

func statementTable() *ingest.Table {
	return &ingest.Table{
		Columns: []string{"Date", "Description", "Amount", ingest.SourceFileColumn},
		Records: [][]string{
			{"2024-01-15", "ETC TOLL ROAD", "1,500.75", "jan.csv"},
			{"2024-01-16", "STARBUCKS SHIBUYA", "480", "jan.csv"},
			{"2024-01-17", "", "-200", "jan.csv"},
		},
	}
}

func TestNewSession_Defaults(t *testing.T) {
	store := &memStore{}
	s := newTestSession(t, store)

	assert.Equal(t, []string{model.DefaultSentinel, "Travel", "Food", "Books"}, s.Categories().Labels())
	assert.Empty(t, s.Rules())
	assert.Empty(t, s.Rows())
	assert.Empty(t, store.calls)
}

func TestNewSession_LoadsStoredState(t *testing.T) {
	store := &memStore{
		rules:      []model.Rule{{Keyword: "etc", Category: "Car"}},
		categories: []string{"Car"},
		rows:       []model.Row{{ID: "a", Content: "ETC", Category: "Car", Amount: 10}},
	}
	s := newTestSession(t, store)

	assert.Equal(t, []string{model.DefaultSentinel, "Car"}, s.Categories().Labels())
	assert.Equal(t, store.rules, s.Rules())
	assert.Len(t, s.Rows(), 1)
}

func TestSession_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	s := newTestSession(t, store)

	saved, err := s.UpsertRule(ctx, "ETC", "Travel")
	require.NoError(t, err)
	require.True(t, saved)

	suggestion, err := s.Stage(statementTable())
	require.NoError(t, err)
	assert.Equal(t, "Description", suggestion.Description)
	assert.Equal(t, "Amount", suggestion.Amount)
	assert.Equal(t, 3, suggestion.Rows)

	rows, err := s.Analyze(ctx, suggestion.Description, suggestion.Amount)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "row-1", rows[0].ID)
	assert.Equal(t, "Travel", rows[0].Category)
	assert.Equal(t, int64(1500), rows[0].Amount)
	assert.Equal(t, "jan.csv", rows[0].SourceFile)
	assert.Equal(t, "2024-01-15", rows[0].Value("Date"))
	assert.Len(t, rows[0].Columns, 3)

	assert.Equal(t, model.DefaultSentinel, rows[1].Category)
	assert.Equal(t, model.DefaultSentinel, rows[2].Category)

	summary := s.Summary()
	assert.Equal(t, int64(1780), summary.Total)
	assert.Equal(t, 2, summary.UnclassifiedCount)
	assert.Equal(t, map[string]int64{"Travel": 1500, model.DefaultSentinel: 280}, Aggregate(s.Rows()))
	assert.Equal(t, s.Rows(), store.rows)
}

func TestSession_UpsertRule(t *testing.T) {
	ctx := context.Background()

	t.Run("empty keyword is a no-op", func(t *testing.T) {
		store := &memStore{}
		s := newTestSession(t, store)

		saved, err := s.UpsertRule(ctx, "   ", "Travel")
		require.NoError(t, err)
		assert.False(t, saved)
		assert.Empty(t, store.calls)
	})

	t.Run("unknown category", func(t *testing.T) {
		s := newTestSession(t, &memStore{})
		_, err := s.UpsertRule(ctx, "ETC", "Nope")
		assert.ErrorIs(t, err, ErrUnknownCategory)
	})

	t.Run("sentinel target", func(t *testing.T) {
		s := newTestSession(t, &memStore{})
		_, err := s.UpsertRule(ctx, "ETC", model.DefaultSentinel)
		assert.ErrorIs(t, err, ErrSentinelTarget)
	})

	t.Run("same normalized keyword replaces and moves to the end", func(t *testing.T) {
		s := newTestSession(t, &memStore{})
		_, err := s.UpsertRule(ctx, "etc", "Travel")
		require.NoError(t, err)
		_, err = s.UpsertRule(ctx, "BOOK", "Books")
		require.NoError(t, err)
		_, err = s.UpsertRule(ctx, "ＥＴＣ", "Food")
		require.NoError(t, err)

		assert.Equal(t, []model.Rule{
			{Keyword: "BOOK", Category: "Books"},
			{Keyword: "ＥＴＣ", Category: "Food"},
		}, s.Rules())
	})

	t.Run("store failure leaves rules untouched", func(t *testing.T) {
		store := &memStore{failSaveRules: true}
		s := newTestSession(t, store)

		_, err := s.UpsertRule(ctx, "ETC", "Travel")
		assert.ErrorIs(t, err, errStoreDown)
		assert.Empty(t, s.Rules())
	})
}

func TestSession_RuleChangeReclassifiesUnlockedRows(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}

	var events []Event
	s, err := NewSession(ctx, store, Options{
		DefaultCategories: []string{"Travel", "Food"},
		NewID:             sequentialIDs(),
		OnEvent:           func(ev Event) { events = append(events, ev) },
	})
	require.NoError(t, err)

	_, err = s.Stage(statementTable())
	require.NoError(t, err)
	rows, err := s.Analyze(ctx, "Description", "Amount")
	require.NoError(t, err)

	_, err = s.SetRowCategory(ctx, rows[0].ID, "Food")
	require.NoError(t, err)

	store.calls = nil
	_, err = s.UpsertRule(ctx, "ETC", "Travel")
	require.NoError(t, err)
	_, err = s.UpsertRule(ctx, "STARBUCKS", "Food")
	require.NoError(t, err)

	// rules are written before the rows they reclassify
	assert.Equal(t, []string{"rules", "transactions", "rules", "transactions"}, store.calls)

	got := s.Rows()
	assert.Equal(t, "Food", got[0].Category, "locked row keeps its override")
	assert.True(t, got[0].Locked)
	assert.Equal(t, "Food", got[1].Category)

	require.Len(t, events, 3)
	assert.Equal(t, EventDatasetReplaced, events[0].Kind)
	assert.Equal(t, EventRulesChanged, events[1].Kind)
	assert.Equal(t, 0, events[1].Reclassified)
	assert.Equal(t, 1, events[2].Reclassified)

	changed, err := s.Reclassify(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	got = s.Rows()
	assert.Equal(t, "Travel", got[0].Category)
	assert.False(t, got[0].Locked)
}

func TestSession_DeleteRule(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, &memStore{})

	_, err := s.Stage(statementTable())
	require.NoError(t, err)
	_, err = s.UpsertRule(ctx, "ETC", "Travel")
	require.NoError(t, err)
	_, err = s.Analyze(ctx, "Description", "Amount")
	require.NoError(t, err)

	removed, err := s.DeleteRule(ctx, "etc")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, s.Rules())
	assert.Len(t, s.Unclassified(), 3)

	removed, err = s.DeleteRule(ctx, "etc")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSession_ReplaceRules(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, &memStore{})

	err := s.ReplaceRules(ctx, []model.Rule{
		{Keyword: "ETC", Category: "Travel"},
		{Keyword: "", Category: "Food"},
		{Keyword: "BOOK", Category: "Books"},
		{Keyword: "etc", Category: "Food"},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.Rule{
		{Keyword: "BOOK", Category: "Books"},
		{Keyword: "etc", Category: "Food"},
	}, s.Rules())

	err = s.ReplaceRules(ctx, []model.Rule{{Keyword: "X", Category: "Missing"}})
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Len(t, s.Rules(), 2)
}

func TestNewSession_CollapsesStoredDuplicates(t *testing.T) {
	s := newTestSession(t, &memStore{rules: []model.Rule{
		{Keyword: "ETC", Category: "Travel"},
		{Keyword: "etc", Category: "Food"},
	}})

	assert.Equal(t, []model.Rule{{Keyword: "etc", Category: "Food"}}, s.Rules())
}

func TestSession_ReplaceRules_SentinelTarget(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	s := newTestSession(t, store)

	_, err := s.Stage(statementTable())
	require.NoError(t, err)
	_, err = s.Analyze(ctx, "Description", "Amount")
	require.NoError(t, err)

	err = s.ReplaceRules(ctx, []model.Rule{
		{Keyword: "REFUND", Category: model.DefaultSentinel},
		{Keyword: "ETC", Category: "Travel"},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.Rule{
		{Keyword: "REFUND", Category: model.DefaultSentinel},
		{Keyword: "ETC", Category: "Travel"},
	}, s.Rules())
	assert.Equal(t, s.Rules(), store.rules)
	assert.Equal(t, "Travel", s.Rows()[0].Category)

	_, err = s.UpsertRule(ctx, "REFUND", model.DefaultSentinel)
	assert.ErrorIs(t, err, ErrSentinelTarget)
}

func TestSession_SetCategories(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	s := newTestSession(t, store)

	require.NoError(t, s.SetCategories(ctx, []string{" Car ", "", "Car", "Rent"}))

	want := []string{model.DefaultSentinel, "Car", "Rent"}
	assert.Equal(t, want, s.Categories().Labels())
	assert.Equal(t, want, store.categories)
}

func TestSession_AnalyzeErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, &memStore{})

	_, err := s.Analyze(ctx, "Description", "Amount")
	assert.ErrorIs(t, err, ErrNothingStaged)

	_, err = s.Stage(nil)
	assert.ErrorIs(t, err, ErrNothingStaged)

	_, err = s.Stage(statementTable())
	require.NoError(t, err)
	_, err = s.Analyze(ctx, "Merchant", "Amount")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestSession_SetRowCategory(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	s := newTestSession(t, store)

	_, err := s.Stage(statementTable())
	require.NoError(t, err)
	rows, err := s.Analyze(ctx, "Description", "Amount")
	require.NoError(t, err)

	_, err = s.SetRowCategory(ctx, "missing", "Food")
	assert.ErrorIs(t, err, ErrRowNotFound)

	_, err = s.SetRowCategory(ctx, rows[1].ID, "Nope")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	row, err := s.SetRowCategory(ctx, rows[1].ID, "Food")
	require.NoError(t, err)
	assert.Equal(t, "Food", row.Category)
	assert.True(t, row.Locked)
	assert.Len(t, s.Unclassified(), 2)

	store.failSaveRows = true
	_, err = s.SetRowCategory(ctx, rows[2].ID, "Food")
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, model.DefaultSentinel, s.Rows()[2].Category)
}

func TestSession_Reset(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	s := newTestSession(t, store)

	_, err := s.UpsertRule(ctx, "ETC", "Travel")
	require.NoError(t, err)
	require.NoError(t, s.SetCategories(ctx, []string{"Travel", "Extra"}))
	_, err = s.Stage(statementTable())
	require.NoError(t, err)
	_, err = s.Analyze(ctx, "Description", "Amount")
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx, false))
	assert.Empty(t, s.Rows())
	_, err = s.Analyze(ctx, "Description", "Amount")
	assert.ErrorIs(t, err, ErrNothingStaged)
	assert.Len(t, s.Rules(), 1)
	assert.Equal(t, []string{model.DefaultSentinel, "Travel", "Extra"}, s.Categories().Labels())

	require.NoError(t, s.Reset(ctx, true))
	assert.Empty(t, s.Rules())
	assert.Empty(t, store.rules)
	assert.Equal(t, []string{model.DefaultSentinel, "Travel", "Food", "Books"}, s.Categories().Labels())
}
