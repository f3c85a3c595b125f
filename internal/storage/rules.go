package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/meisai/internal/model"
)

// LoadRules returns the rule table in precedence order.
func (s *SQLiteStorage) LoadRules(ctx context.Context) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT keyword, category FROM rules ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.Rule
	for rows.Next() {
		var r model.Rule
		if err := rows.Scan(&r.Keyword, &r.Category); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

// SaveRules replaces the stored rule table.
func (s *SQLiteStorage) SaveRules(ctx context.Context, rules []model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRules(rules); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rules`); err != nil {
			return fmt.Errorf("failed to clear rules: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO rules (position, keyword, category) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, r := range rules {
			if _, err := stmt.ExecContext(ctx, i, r.Keyword, r.Category); err != nil {
				return fmt.Errorf("failed to insert rule %q: %w", r.Keyword, err)
			}
		}
		return nil
	})
}
