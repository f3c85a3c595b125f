// Package ingest turns uploaded statement files into a uniform table of
// string cells.
package ingest

// SourceFileColumn is appended to every table and holds the name of the file
// each record came from.
const SourceFileColumn = "source_file"

// Table is a header plus records. Every record has exactly len(Columns)
// cells.
type Table struct {
	Columns []string
	Records [][]string
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell of record i in the named column. Unknown columns
// read as empty.
func (t *Table) Value(i int, column string) string {
	idx := t.ColumnIndex(column)
	if idx < 0 || i < 0 || i >= t.Len() {
		return ""
	}
	return t.Records[i][idx]
}

// Merge concatenates tables. The result has the union of all columns in the
// order they are first seen; cells missing from a table are empty.
func Merge(tables ...*Table) *Table {
	merged := &Table{}
	index := make(map[string]int)

	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if _, ok := index[c]; !ok {
				index[c] = len(merged.Columns)
				merged.Columns = append(merged.Columns, c)
			}
		}
	}

	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, rec := range t.Records {
			out := make([]string, len(merged.Columns))
			for i, c := range t.Columns {
				if i < len(rec) {
					out[index[c]] = rec[i]
				}
			}
			merged.Records = append(merged.Records, out)
		}
	}

	return merged
}
