package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/meisai/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrInvalidRule        = errors.New("invalid rule")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRules(rules []model.Rule) error {
	for i, r := range rules {
		if strings.TrimSpace(r.Keyword) == "" {
			return fmt.Errorf("%w at index %d: missing keyword", ErrInvalidRule, i)
		}
		if strings.TrimSpace(r.Category) == "" {
			return fmt.Errorf("%w at index %d: missing category", ErrInvalidRule, i)
		}
	}
	return nil
}

func validateCategories(labels []string) error {
	seen := make(map[string]struct{}, len(labels))
	for i, label := range labels {
		if err := validateString(label, fmt.Sprintf("category at index %d", i)); err != nil {
			return err
		}
		if _, ok := seen[label]; ok {
			return fmt.Errorf("duplicate category %q", label)
		}
		seen[label] = struct{}{}
	}
	return nil
}

func validateRows(rows []model.Row) error {
	seen := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		if row.ID == "" {
			return fmt.Errorf("%w at index %d: missing ID", ErrInvalidTransaction, i)
		}
		if row.Category == "" {
			return fmt.Errorf("%w at index %d: missing category", ErrInvalidTransaction, i)
		}
		if _, ok := seen[row.ID]; ok {
			return fmt.Errorf("%w: duplicate ID %s", ErrInvalidTransaction, row.ID)
		}
		seen[row.ID] = struct{}{}
	}
	return nil
}
