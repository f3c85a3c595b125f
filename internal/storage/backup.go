package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Backup errors.
var (
	ErrBackupExists    = errors.New("backup file already exists")
	ErrBackupCorrupted = errors.New("backup integrity check failed")
	ErrInvalidPath     = errors.New("invalid backup path")
)

// BackupInfo describes a finished backup.
type BackupInfo struct {
	CreatedAt     time.Time
	Path          string
	FileSize      int64
	Rules         int
	Categories    int
	Transactions  int
	SchemaVersion int
}

// Backup writes a consistent copy of the database to destPath and verifies
// it. An empty destPath picks a timestamped file next to the database.
func (s *SQLiteStorage) Backup(ctx context.Context, destPath string) (*BackupInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	if destPath == "" {
		destPath = filepath.Join(filepath.Dir(s.dbPath), "backups",
			fmt.Sprintf("meisai-%s.db", time.Now().Format("2006-01-02-150405")))
	}

	destPath, err := filepath.Abs(destPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	// VACUUM INTO takes a literal, so quoting characters are refused.
	if strings.ContainsAny(destPath, `'";`) {
		return nil, fmt.Errorf("%w: contains forbidden characters", ErrInvalidPath)
	}
	if _, statErr := os.Stat(destPath); statErr == nil {
		return nil, ErrBackupExists
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	version, err := s.schemaVersion(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.rowCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect row counts: %w", err)
	}

	// #nosec G201 - destPath is validated above
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", destPath)); err != nil {
		return nil, fmt.Errorf("failed to back up database: %w", err)
	}

	if err := verifyIntegrity(destPath); err != nil {
		if rmErr := os.Remove(destPath); rmErr != nil {
			slog.Error("failed to remove corrupt backup", "path", destPath, "error", rmErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrBackupCorrupted, err)
	}

	stat, err := os.Stat(destPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}

	slog.Info("database backed up", "path", destPath, "size", stat.Size())

	return &BackupInfo{
		CreatedAt:     time.Now(),
		Path:          destPath,
		FileSize:      stat.Size(),
		Rules:         counts["rules"],
		Categories:    counts["categories"],
		Transactions:  counts["transactions"],
		SchemaVersion: version,
	}, nil
}

func (s *SQLiteStorage) rowCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, 3)
	for _, table := range []string{"rules", "categories", "transactions"} {
		var n int
		// #nosec G201 - table names are constants
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}
