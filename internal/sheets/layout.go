package sheets

import (
	"strconv"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/meisai/internal/report"
)

// layout records where each section of a report landed, as zero-based row
// indexes, so formatting can target them.
type layout struct {
	summaryHeader int
	totalRow      int
	detailHeader  int
	rows          int
	detailColumns int
}

// prepareValues lays a report document out as sheet rows. Amounts are
// written as numbers so the sheet can total them.
func prepareValues(doc *report.Document) ([][]any, layout) {
	values := make([][]any, 0, 8+len(doc.Lines)+len(doc.Details))
	var l layout

	values = append(values,
		[]any{doc.Title},
		[]any{},
		[]any{doc.SummaryHeading},
	)

	l.summaryHeader = len(values)
	values = append(values, toAny(doc.SummaryHeader))
	for _, line := range doc.Lines {
		values = append(values, []any{line.Category, line.Amount})
	}

	l.totalRow = len(values)
	values = append(values,
		[]any{doc.TotalLabel, doc.Total},
		[]any{},
		[]any{doc.DetailHeading},
	)

	l.detailHeader = len(values)
	l.detailColumns = len(doc.DetailHeader)
	values = append(values, toAny(doc.DetailHeader))

	// the amount is the third detail column
	for _, rec := range doc.Details {
		row := toAny(rec)
		if len(rec) > 2 {
			if n, err := strconv.ParseInt(rec[2], 10, 64); err == nil {
				row[2] = n
			}
		}
		values = append(values, row)
	}

	l.rows = len(values)
	return values, l
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// a1Range qualifies a range with a quoted sheet name.
func a1Range(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}

// formatRequests builds the batch update that styles a written report.
func formatRequests(sheetID int64, l layout, currencyPattern string) []*sheets.Request {
	bold := func(start, end int, cols int64) *sheets.Request {
		return &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(start),
					EndRowIndex:      int64(end),
					StartColumnIndex: 0,
					EndColumnIndex:   cols,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		}
	}

	currency := func(start, end int, col int64) *sheets.Request {
		return &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(start),
					EndRowIndex:      int64(end),
					StartColumnIndex: col,
					EndColumnIndex:   col + 1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "CURRENCY",
							Pattern: currencyPattern,
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		}
	}

	cols := int64(max(l.detailColumns, 2))

	return []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:       sheetID,
					StartRowIndex: 0,
					EndRowIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true, FontSize: 14},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		bold(l.summaryHeader, l.summaryHeader+1, 2),
		bold(l.totalRow, l.totalRow+1, 2),
		bold(l.detailHeader, l.detailHeader+1, cols),
		currency(l.summaryHeader+1, l.totalRow+1, 1),
		currency(l.detailHeader+1, l.rows, 2),
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   cols,
				},
			},
		},
	}
}
