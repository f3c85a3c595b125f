package ingest

import "strings"

var (
	descriptionHints = []string{"description", "details", "merchant", "payee", "内容", "店名", "利用先", "摘要"}
	amountHints      = []string{"amount", "金額", "支払"}
)

// SuggestColumns picks the columns most likely to hold the transaction text
// and the amount, by matching header substrings. When nothing matches, the
// first column is suggested.
func SuggestColumns(columns []string) (description, amount string) {
	candidates := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != SourceFileColumn {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return "", ""
	}

	description = firstMatching(candidates, descriptionHints)
	amount = firstMatching(candidates, amountHints)

	if description == "" {
		description = candidates[0]
	}
	if amount == "" {
		amount = candidates[0]
	}
	return description, amount
}

// firstMatching returns the first column containing the highest priority
// hint. Hints are ordered by preference.
func firstMatching(columns, hints []string) string {
	for _, hint := range hints {
		for _, c := range columns {
			if strings.Contains(strings.ToLower(c), hint) {
				return c
			}
		}
	}
	return ""
}
