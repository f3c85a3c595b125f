package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/meisai/internal/cli"
	"github.com/Veraticus/meisai/internal/engine"
)

const (
	categoryWidth = 18
	amountWidth   = 11
	sourceWidth   = 16
	minContent    = 20
	lockedMark    = "*"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := m.theme.Title.Render(cli.ReceiptIcon + " Review classifications")
	if m.unclassifiedOnly {
		title += " " + m.theme.Subtitle.Render("(unclassified only)")
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		m.theme.Box.Render(m.table.View()),
		m.renderFooter(),
		m.help.View(m.keymap),
	)
}

// renderFooter shows the running totals, the unclassified warning and the
// last status message.
func (m Model) renderFooter() string {
	summary := engine.Summarize(m.rows, m.categories)

	parts := []string{
		m.theme.Normal.Render(fmt.Sprintf("%d rows  total %s", summary.Count, cli.FormatYen(summary.Total))),
	}
	if len(m.edits) > 0 {
		parts = append(parts, m.theme.StatusInfo.Render(pluralize(len(m.edits), "unsaved edit", "unsaved edits")))
	}
	if summary.UnclassifiedCount > 0 {
		parts = append(parts, m.theme.StatusWarning.Render(fmt.Sprintf("%s %d unclassified (%s)",
			cli.WarningIcon, summary.UnclassifiedCount, cli.FormatYen(summary.UnclassifiedAmount))))
	}

	switch {
	case m.err != nil:
		parts = append(parts, m.theme.StatusError.Render(m.err.Error()))
	case m.status != "":
		parts = append(parts, m.theme.StatusSuccess.Render(m.status))
	}

	return strings.Join(parts, "  ")
}

func (m Model) contentWidth() int {
	// Box border and padding take 4 cells, each column adds 2 cells of padding.
	w := m.width - 4 - categoryWidth - amountWidth - sourceWidth - 8
	return max(w, minContent)
}

func (m Model) columns() []table.Column {
	return []table.Column{
		{Title: "Category", Width: categoryWidth},
		{Title: "Content", Width: m.contentWidth()},
		{Title: "Amount", Width: amountWidth},
		{Title: "Source", Width: sourceWidth},
	}
}

func (m Model) tableRows() []table.Row {
	rows := make([]table.Row, 0, len(m.visible))
	for _, idx := range m.visible {
		row := m.rows[idx]
		category := row.Category
		if row.Locked {
			category = lockedMark + category
		}
		amount := cli.FormatYen(row.Amount)
		if n := lipgloss.Width(amount); n < amountWidth {
			amount = strings.Repeat(" ", amountWidth-n) + amount
		}
		rows = append(rows, table.Row{category, row.Content, amount, row.SourceFile})
	}
	return rows
}

// resize fits the table to the terminal, leaving room for the title, box
// border, footer and help.
func (m *Model) resize() {
	helpHeight := 1
	if m.help.ShowAll {
		helpHeight = 5
	}
	m.help.Width = m.width

	m.table.SetColumns(m.columns())
	m.table.SetHeight(max(m.height-4-helpHeight, 3))
	m.table.SetWidth(max(m.width-4, minContent))
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
