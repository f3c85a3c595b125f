package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Veraticus/meisai/internal/model"
)

var yen = message.NewPrinter(language.Japanese)

// FormatYen formats a whole-yen amount with thousands separators.
func FormatYen(amount int64) string {
	return yen.Sprintf("¥%d", amount)
}

// RenderSummary writes the per-category totals as an aligned table followed
// by the grand total and, when rows remain unclassified, a warning.
func RenderSummary(w io.Writer, summary model.Summary) error {
	visible := summary.Visible()

	width := lipgloss.Width("Category")
	for _, c := range visible {
		width = max(width, lipgloss.Width(c.Category))
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(pad("Category", width)+"  "+"Amount") + "\n")
	for _, c := range visible {
		fmt.Fprintf(&b, "%s  %s  %s\n",
			pad(c.Category, width),
			FormatYen(c.Amount),
			SubtleStyle.Render(fmt.Sprintf("(%d)", c.Count)))
	}
	b.WriteString(TotalStyle.Render(pad("Total", width)+"  "+FormatYen(summary.Total)) + "\n")

	if summary.UnclassifiedCount > 0 {
		b.WriteString("\n" + FormatWarning(fmt.Sprintf("%d unclassified rows totalling %s",
			summary.UnclassifiedCount, FormatYen(summary.UnclassifiedAmount))) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// pad right-pads s to width display cells. Wide characters count double.
func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
