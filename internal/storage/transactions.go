package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Veraticus/meisai/internal/model"
)

// LoadTransactions returns the current dataset in upload order.
func (s *SQLiteStorage) LoadTransactions(ctx context.Context) ([]model.Row, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, amount, category, locked, source_file, columns
		FROM transactions
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []model.Row
	for rows.Next() {
		var (
			row         model.Row
			locked      int
			sourceFile  sql.NullString
			columnsJSON sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.Content, &row.Amount, &row.Category,
			&locked, &sourceFile, &columnsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		row.Locked = locked != 0
		row.SourceFile = sourceFile.String
		if columnsJSON.Valid && columnsJSON.String != "" {
			if err := json.Unmarshal([]byte(columnsJSON.String), &row.Columns); err != nil {
				slog.Warn("failed to unmarshal transaction columns",
					"id", row.ID,
					"error", err)
			}
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return result, nil
}

// SaveTransactions replaces the stored dataset with rows.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, rows []model.Row) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRows(rows); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
			return fmt.Errorf("failed to clear transactions: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transactions (
				position, id, content, amount, category, locked, source_file, columns
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, row := range rows {
			columnsJSON, err := json.Marshal(row.Columns)
			if err != nil {
				return fmt.Errorf("failed to marshal columns for %s: %w", row.ID, err)
			}

			locked := 0
			if row.Locked {
				locked = 1
			}

			if _, err := stmt.ExecContext(ctx, i, row.ID, row.Content, row.Amount,
				row.Category, locked, row.SourceFile, string(columnsJSON)); err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", row.ID, err)
			}
		}

		slog.Debug("saved transactions", "count", len(rows))
		return nil
	})
}

// ClearTransactions removes the dataset.
func (s *SQLiteStorage) ClearTransactions(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("failed to clear transactions: %w", err)
	}
	return nil
}

