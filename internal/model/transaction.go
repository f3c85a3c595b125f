package model

// Column is a passthrough cell carried verbatim from the imported file.
type Column struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Row is a single classified statement line.
type Row struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	Category   string   `json:"category"`
	SourceFile string   `json:"source_file"`
	Columns    []Column `json:"columns"`
	Amount     int64    `json:"amount"`
	// Locked is set once the user picks a category by hand. Locked rows are
	// skipped when rules change.
	Locked bool `json:"locked"`
}

// Value returns the passthrough value for the named column, or "" when the
// row has no such column.
func (r Row) Value(name string) string {
	for _, c := range r.Columns {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
