// Package engine holds the classification workspace: amount parsing,
// aggregation and the Session that owns rules, categories and rows.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Veraticus/meisai/internal/common"
	"github.com/Veraticus/meisai/internal/ingest"
	"github.com/Veraticus/meisai/internal/model"
	"github.com/Veraticus/meisai/internal/pattern"
	"github.com/Veraticus/meisai/internal/service"
)

// EventKind identifies what changed in a session.
type EventKind int

// Session events.
const (
	EventRulesChanged EventKind = iota + 1
	EventCategoriesChanged
	EventDatasetReplaced
)

func (k EventKind) String() string {
	switch k {
	case EventRulesChanged:
		return "rules_changed"
	case EventCategoriesChanged:
		return "categories_changed"
	case EventDatasetReplaced:
		return "dataset_replaced"
	default:
		return "unknown"
	}
}

// Event is raised after a session mutation has been applied and persisted.
// Reclassified counts rows whose category changed as a consequence.
type Event struct {
	Kind         EventKind
	Reclassified int
}

// Options configures a Session.
type Options struct {
	Logger            *slog.Logger
	OnEvent           func(Event)
	NewID             func() string
	Sentinel          string
	DefaultCategories []string
}

// Suggestion is returned when files are staged: the available columns and
// the ones that look like the description and the amount.
type Suggestion struct {
	Columns     []string `json:"columns"`
	Description string   `json:"description_column"`
	Amount      string   `json:"amount_column"`
	Rows        int      `json:"rows"`
}

// Session is the workspace of a single user. Every mutation is written to
// the store before it becomes visible. A Session is not safe for concurrent
// use; callers serialise access.
type Session struct {
	store      service.Storage
	logger     *slog.Logger
	onEvent    func(Event)
	newID      func() string
	matcher    *pattern.Matcher
	staged     *ingest.Table
	defaults   []string
	rules      []model.Rule
	rows       []model.Row
	categories model.CategorySet
}

// NewSession loads rules, categories and the current dataset from store.
// Categories that were never saved start from the configured defaults.
func NewSession(ctx context.Context, store service.Storage, opts Options) (*Session, error) {
	if store == nil {
		return nil, errors.New("session requires a store")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if len(opts.DefaultCategories) == 0 {
		opts.DefaultCategories = model.DefaultCategories
	}

	rules, err := store.LoadRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	labels, err := store.LoadCategories(ctx)
	switch {
	case errors.Is(err, common.ErrNotFound):
		labels = opts.DefaultCategories
	case err != nil:
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	rows, err := store.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	if pattern.HasDuplicates(rules) {
		opts.Logger.Warn("stored rules repeat a keyword, keeping the later entries", "rules", len(rules))
	}

	s := &Session{
		store:      store,
		logger:     opts.Logger,
		onEvent:    opts.OnEvent,
		newID:      opts.NewID,
		defaults:   opts.DefaultCategories,
		rules:      pattern.ReplaceRules(rules),
		rows:       rows,
		categories: model.NewCategorySet(opts.Sentinel, labels),
	}
	s.matcher = pattern.NewMatcher(s.rules, s.categories.Sentinel())

	s.logger.Debug("session loaded",
		"rules", len(s.rules),
		"categories", s.categories.Len(),
		"rows", len(s.rows))

	return s, nil
}

// Rules returns the rule table in precedence order.
func (s *Session) Rules() []model.Rule {
	out := make([]model.Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Categories returns the category set.
func (s *Session) Categories() model.CategorySet {
	return s.categories
}

// Rows returns the current dataset.
func (s *Session) Rows() []model.Row {
	out := make([]model.Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Unclassified returns the rows still carrying the sentinel category.
func (s *Session) Unclassified() []model.Row {
	var out []model.Row
	for _, row := range s.rows {
		if s.categories.IsSentinel(row.Category) {
			out = append(out, row)
		}
	}
	return out
}

// Summary aggregates the current dataset.
func (s *Session) Summary() model.Summary {
	return Summarize(s.rows, s.categories)
}

// UpsertRule adds keyword → category, replacing any rule with the same
// normalized keyword. An empty keyword is ignored and reported as not saved.
func (s *Session) UpsertRule(ctx context.Context, keyword, category string) (bool, error) {
	if pattern.Normalize(keyword) == "" {
		return false, nil
	}
	if err := s.checkCategory(category); err != nil {
		return false, err
	}
	if s.categories.IsSentinel(category) {
		return false, ErrSentinelTarget
	}

	updated, ok := pattern.UpsertRule(s.rules, keyword, category)
	if !ok {
		return false, nil
	}
	if err := s.applyRules(ctx, updated); err != nil {
		return false, err
	}

	s.logger.Info("rule saved", "keyword", keyword, "category", category)
	return true, nil
}

// ReplaceRules swaps the whole rule table. Rows with empty keywords are
// dropped and duplicate keywords collapse to the later entry. Unlike
// UpsertRule, a rule may target the sentinel.
func (s *Session) ReplaceRules(ctx context.Context, rules []model.Rule) error {
	cleaned := pattern.ReplaceRules(rules)
	for _, r := range cleaned {
		if err := s.checkCategory(r.Category); err != nil {
			return fmt.Errorf("rule %q: %w", r.Keyword, err)
		}
	}

	if err := s.applyRules(ctx, cleaned); err != nil {
		return err
	}

	s.logger.Info("rules replaced", "count", len(cleaned))
	return nil
}

// DeleteRule removes the rule with the given keyword. It reports whether a
// rule was removed.
func (s *Session) DeleteRule(ctx context.Context, keyword string) (bool, error) {
	updated, ok := pattern.DeleteRule(s.rules, keyword)
	if !ok {
		return false, nil
	}
	if err := s.applyRules(ctx, updated); err != nil {
		return false, err
	}

	s.logger.Info("rule deleted", "keyword", keyword)
	return true, nil
}

func (s *Session) checkCategory(category string) error {
	if !s.categories.Contains(category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return nil
}

// applyRules persists rules, then reclassifies every unlocked row.
func (s *Session) applyRules(ctx context.Context, rules []model.Rule) error {
	if err := s.store.SaveRules(ctx, rules); err != nil {
		return fmt.Errorf("failed to save rules: %w", err)
	}
	s.rules = rules
	s.matcher = pattern.NewMatcher(rules, s.categories.Sentinel())

	changed, err := s.reclassify(ctx, false)
	if err != nil {
		return err
	}
	s.emit(Event{Kind: EventRulesChanged, Reclassified: changed})
	return nil
}

// SetCategories replaces the category list. The sentinel is inserted at the
// front when the input lacks it. Rows and rules keep their labels even when a
// label is removed from the list.
func (s *Session) SetCategories(ctx context.Context, labels []string) error {
	set := model.NewCategorySet(s.categories.Sentinel(), labels)
	if err := s.store.SaveCategories(ctx, set.Labels()); err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}

	s.categories = set
	s.logger.Info("categories saved", "count", set.Len())
	s.emit(Event{Kind: EventCategoriesChanged})
	return nil
}

// Stage keeps a merged upload until the user picks the description and
// amount columns.
func (s *Session) Stage(table *ingest.Table) (Suggestion, error) {
	if table == nil || len(table.Columns) == 0 {
		return Suggestion{}, ErrNothingStaged
	}
	s.staged = table

	desc, amount := ingest.SuggestColumns(table.Columns)
	return Suggestion{
		Columns:     append([]string(nil), table.Columns...),
		Description: desc,
		Amount:      amount,
		Rows:        table.Len(),
	}, nil
}

// Analyze builds the dataset from the staged table: every record gets its
// description, parsed amount and the category of the first matching rule.
// The previous dataset, overrides included, is replaced.
func (s *Session) Analyze(ctx context.Context, descriptionColumn, amountColumn string) ([]model.Row, error) {
	if s.staged == nil {
		return nil, ErrNothingStaged
	}
	for _, col := range []string{descriptionColumn, amountColumn} {
		if s.staged.ColumnIndex(col) < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
		}
	}

	table := s.staged
	rows := make([]model.Row, 0, table.Len())
	for i, rec := range table.Records {
		content := table.Value(i, descriptionColumn)
		row := model.Row{
			ID:         s.newID(),
			Content:    content,
			Amount:     ParseAmount(table.Value(i, amountColumn)),
			Category:   s.matcher.Classify(content),
			SourceFile: table.Value(i, ingest.SourceFileColumn),
		}
		for j, col := range table.Columns {
			if col == ingest.SourceFileColumn {
				continue
			}
			row.Columns = append(row.Columns, model.Column{Name: col, Value: rec[j]})
		}
		rows = append(rows, row)
	}

	if err := s.store.SaveTransactions(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to save transactions: %w", err)
	}
	s.rows = rows

	s.logger.Info("statements analyzed",
		"rows", len(rows),
		"unclassified", len(s.Unclassified()),
		"description_column", descriptionColumn,
		"amount_column", amountColumn)
	s.emit(Event{Kind: EventDatasetReplaced})

	return s.Rows(), nil
}

// SetRowCategory records a user override. The row is locked so later rule
// changes leave it alone. The sentinel is an allowed target.
func (s *Session) SetRowCategory(ctx context.Context, id, category string) (model.Row, error) {
	if !s.categories.Contains(category) {
		return model.Row{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	idx := -1
	for i := range s.rows {
		if s.rows[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Row{}, fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}

	rows := s.Rows()
	rows[idx].Category = category
	rows[idx].Locked = true

	if err := s.store.SaveTransactions(ctx, rows); err != nil {
		return model.Row{}, fmt.Errorf("failed to save transactions: %w", err)
	}
	s.rows = rows

	s.logger.Debug("row category set", "id", id, "category", category)
	return rows[idx], nil
}

// Reclassify reruns the rules over the dataset. Locked rows are skipped
// unless force is set, in which case they are recomputed and unlocked. It
// returns how many rows changed category.
func (s *Session) Reclassify(ctx context.Context, force bool) (int, error) {
	changed, err := s.reclassify(ctx, force)
	if err != nil {
		return 0, err
	}
	s.logger.Info("dataset reclassified", "changed", changed, "force", force)
	return changed, nil
}

func (s *Session) reclassify(ctx context.Context, force bool) (int, error) {
	if len(s.rows) == 0 {
		return 0, nil
	}

	rows := s.Rows()
	changed := 0
	for i := range rows {
		if rows[i].Locked && !force {
			continue
		}
		category := s.matcher.Classify(rows[i].Content)
		if category != rows[i].Category {
			changed++
		}
		rows[i].Category = category
		rows[i].Locked = false
	}

	if err := s.store.SaveTransactions(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to save transactions: %w", err)
	}
	s.rows = rows
	return changed, nil
}

// Reset discards the dataset and anything staged. With all set, rules are
// cleared and the categories return to their defaults as well.
func (s *Session) Reset(ctx context.Context, all bool) error {
	if err := s.store.ClearTransactions(ctx); err != nil {
		return fmt.Errorf("failed to clear transactions: %w", err)
	}
	s.rows = nil
	s.staged = nil

	if all {
		if err := s.store.SaveRules(ctx, nil); err != nil {
			return fmt.Errorf("failed to clear rules: %w", err)
		}
		s.rules = nil
		s.matcher = pattern.NewMatcher(nil, s.categories.Sentinel())

		set := model.NewCategorySet(s.categories.Sentinel(), s.defaults)
		if err := s.store.SaveCategories(ctx, set.Labels()); err != nil {
			return fmt.Errorf("failed to reset categories: %w", err)
		}
		s.categories = set
	}

	s.logger.Info("workspace reset", "all", all)
	s.emit(Event{Kind: EventDatasetReplaced})
	return nil
}

func (s *Session) emit(ev Event) {
	s.logger.Debug("session event", "kind", ev.Kind.String(), "reclassified", ev.Reclassified)
	if s.onEvent != nil {
		s.onEvent(ev)
	}
}
