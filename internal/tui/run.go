package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Result describes how a review session ended.
type Result struct {
	Edits int
	Saved bool
}

// Run opens the review screen over ws and blocks until the user leaves it.
func Run(ctx context.Context, ws Workspace, opts ...Option) (Result, error) {
	if ws == nil {
		return Result{}, errors.New("workspace is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(ws.Rows()) == 0 {
		return Result{}, errors.New("no transactions to review; run 'meisai analyze' first")
	}

	p := tea.NewProgram(newModel(ctx, ws, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("review screen failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return Result{}, fmt.Errorf("unexpected model type %T", final)
	}
	return Result{Edits: m.Edits(), Saved: m.Saved()}, nil
}
