package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/meisai/internal/common"
)

// LoadCategories returns the saved category list in display order. It
// returns common.ErrNotFound when no list has been saved yet.
func (s *SQLiteStorage) LoadCategories(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var labels []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		labels = append(labels, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("categories: %w", common.ErrNotFound)
	}

	return labels, nil
}

// SaveCategories replaces the stored category list.
func (s *SQLiteStorage) SaveCategories(ctx context.Context, labels []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategories(labels); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
			return fmt.Errorf("failed to clear categories: %w", err)
		}

		for i, name := range labels {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (position, name) VALUES (?, ?)`, i, name); err != nil {
				return fmt.Errorf("failed to insert category %q: %w", name, err)
			}
		}
		return nil
	})
}
