package engine

import "github.com/Veraticus/meisai/internal/model"

// Aggregate sums row amounts per category.
func Aggregate(rows []model.Row) map[string]int64 {
	totals := make(map[string]int64)
	for _, row := range rows {
		totals[row.Category] += row.Amount
	}
	return totals
}

// Summarize aggregates rows into a summary ordered by the canonical category
// list. Categories that are not in the list (rules may point anywhere) follow
// in the order their first row appears. Only categories with at least one
// row are listed.
func Summarize(rows []model.Row, categories model.CategorySet) model.Summary {
	type bucket struct {
		amount int64
		count  int
	}

	buckets := make(map[string]*bucket)
	var extras []string
	summary := model.Summary{Count: len(rows)}

	for _, row := range rows {
		b, ok := buckets[row.Category]
		if !ok {
			b = &bucket{}
			buckets[row.Category] = b
			if !categories.Contains(row.Category) {
				extras = append(extras, row.Category)
			}
		}
		b.amount += row.Amount
		b.count++

		summary.Total += row.Amount
		if categories.IsSentinel(row.Category) {
			summary.UnclassifiedCount++
			summary.UnclassifiedAmount += row.Amount
		}
	}

	order := append(categories.Labels(), extras...)
	summary.Categories = make([]model.CategoryTotal, 0, len(buckets))
	for _, name := range order {
		b, ok := buckets[name]
		if !ok {
			continue
		}
		summary.Categories = append(summary.Categories, model.CategoryTotal{
			Category: name,
			Amount:   b.amount,
			Count:    b.count,
		})
	}

	return summary
}
