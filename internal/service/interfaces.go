// Package service defines the interfaces shared between the workspace engine
// and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/meisai/internal/model"
	"github.com/Veraticus/meisai/internal/report"
)

// Storage defines the contract for our persistence layer. Rules, categories
// and transactions are each stored as one flat, ordered list that is
// replaced wholesale on save.
type Storage interface {
	// Rule operations
	LoadRules(ctx context.Context) ([]model.Rule, error)
	SaveRules(ctx context.Context, rules []model.Rule) error

	// Category operations. LoadCategories returns common.ErrNotFound when
	// the list was never saved.
	LoadCategories(ctx context.Context) ([]string, error)
	SaveCategories(ctx context.Context, labels []string) error

	// Transaction operations
	LoadTransactions(ctx context.Context) ([]model.Row, error)
	SaveTransactions(ctx context.Context, rows []model.Row) error
	ClearTransactions(ctx context.Context) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ReportWriter exports a finished report somewhere outside the workspace.
type ReportWriter interface {
	Write(ctx context.Context, doc *report.Document) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
