package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// save writes every pending edit back to the workspace in row order.
func (m Model) save() tea.Cmd {
	ids := make([]string, 0, len(m.edits))
	categories := make([]string, 0, len(m.edits))
	for _, row := range m.rows {
		if category, ok := m.edits[row.ID]; ok {
			ids = append(ids, row.ID)
			categories = append(categories, category)
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, 30*time.Second)
		defer cancel()

		for i, id := range ids {
			if _, err := m.workspace.SetRowCategory(ctx, id, categories[i]); err != nil {
				return savedMsg{err: fmt.Errorf("failed to save row %s: %w", id, err), saved: i}
			}
		}
		return savedMsg{saved: len(ids)}
	}
}

// reclassify reruns the rules over unlocked rows.
func (m Model) reclassify() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, 30*time.Second)
		defer cancel()

		changed, err := m.workspace.Reclassify(ctx, false)
		if err != nil {
			return reclassifiedMsg{err: fmt.Errorf("failed to reclassify: %w", err)}
		}
		return reclassifiedMsg{rows: m.workspace.Rows(), changed: changed}
	}
}
