// Package report lays out a classified dataset as a summary plus detail
// listing and writes it as CSV.
package report

import (
	"fmt"

	"github.com/Veraticus/meisai/internal/model"
)

// Labels holds the fixed text of a report in one language.
type Labels struct {
	Title          string
	SummaryHeading string
	Category       string
	Amount         string
	Total          string
	DetailHeading  string
	Content        string
	SourceFile     string
	Filename       string
}

var labels = map[string]Labels{
	"ja": {
		Title:          "【クレカ明細仕分け結果】",
		SummaryHeading: "■ 集計表",
		Category:       "カテゴリー",
		Amount:         "金額",
		Total:          "総合計",
		DetailHeading:  "■ 明細一覧",
		Content:        "内容",
		SourceFile:     "元ファイル",
		Filename:       "クレカ明細仕分け結果.csv",
	},
	"en": {
		Title:          "[Card statement classification]",
		SummaryHeading: "■ Summary",
		Category:       "Category",
		Amount:         "Amount",
		Total:          "Total",
		DetailHeading:  "■ Details",
		Content:        "Content",
		SourceFile:     "Source file",
		Filename:       "card-statement-classification.csv",
	},
}

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "ja"

// LabelsFor returns the labels of a language ("ja" or "en").
func LabelsFor(lang string) (Labels, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	l, ok := labels[lang]
	if !ok {
		return Labels{}, fmt.Errorf("unsupported report language %q", lang)
	}
	return l, nil
}

// Line is one category line of the summary.
type Line struct {
	Category string
	Amount   int64
}

// Document is a report ready to be written by any writer.
type Document struct {
	Title          string
	Filename       string
	SummaryHeading string
	SummaryHeader  []string
	Lines          []Line
	TotalLabel     string
	Total          int64
	DetailHeading  string
	DetailHeader   []string
	Details        [][]string
}

// Build lays out rows and their summary. Summary lines skip categories that
// net to zero; the grand total covers every row. Detail records list the
// category, content, amount and source file of each row followed by its
// passthrough columns.
func Build(rows []model.Row, summary model.Summary, lang string) (*Document, error) {
	l, err := LabelsFor(lang)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Title:          l.Title,
		Filename:       l.Filename,
		SummaryHeading: l.SummaryHeading,
		SummaryHeader:  []string{l.Category, l.Amount},
		TotalLabel:     l.Total,
		Total:          summary.Total,
		DetailHeading:  l.DetailHeading,
	}

	for _, c := range summary.Visible() {
		doc.Lines = append(doc.Lines, Line{Category: c.Category, Amount: c.Amount})
	}

	extra := passthroughColumns(rows)
	doc.DetailHeader = append([]string{l.Category, l.Content, l.Amount, l.SourceFile}, extra...)

	doc.Details = make([][]string, 0, len(rows))
	for _, row := range rows {
		rec := make([]string, 0, len(doc.DetailHeader))
		rec = append(rec, row.Category, row.Content, fmt.Sprintf("%d", row.Amount), row.SourceFile)
		for _, name := range extra {
			rec = append(rec, row.Value(name))
		}
		doc.Details = append(doc.Details, rec)
	}

	return doc, nil
}

// passthroughColumns returns every column name found on rows in first-seen
// order.
func passthroughColumns(rows []model.Row) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, row := range rows {
		for _, c := range row.Columns {
			if _, ok := seen[c.Name]; ok {
				continue
			}
			seen[c.Name] = struct{}{}
			names = append(names, c.Name)
		}
	}
	return names
}
