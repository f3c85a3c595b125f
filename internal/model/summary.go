package model

// CategoryTotal is the summed amount of every row in one category.
type CategoryTotal struct {
	Category string `json:"category"`
	Amount   int64  `json:"amount"`
	Count    int    `json:"count"`
}

// Summary is the per-category aggregation of a row set.
type Summary struct {
	Categories         []CategoryTotal `json:"categories"`
	Total              int64           `json:"total"`
	Count              int             `json:"count"`
	UnclassifiedCount  int             `json:"unclassified_count"`
	UnclassifiedAmount int64           `json:"unclassified_amount"`
}

// Visible returns the category totals worth displaying: categories whose net
// total is zero are left out. The underlying data is not modified.
func (s Summary) Visible() []CategoryTotal {
	out := make([]CategoryTotal, 0, len(s.Categories))
	for _, c := range s.Categories {
		if c.Amount != 0 {
			out = append(out, c)
		}
	}
	return out
}
