package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes doc as UTF-8 with a byte order mark so spreadsheet
// applications detect the encoding.
func WriteCSV(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)

	line := func(s string) error {
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		_, err := bw.WriteString(s + "\n")
		return err
	}

	if _, err := bw.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	steps := []func() error{
		func() error { return line(doc.Title) },
		func() error { return line("") },
		func() error { return line(doc.SummaryHeading) },
		func() error { return cw.Write(doc.SummaryHeader) },
		func() error {
			for _, l := range doc.Lines {
				if err := cw.Write([]string{l.Category, strconv.FormatInt(l.Amount, 10)}); err != nil {
					return err
				}
			}
			return nil
		},
		func() error { return cw.Write([]string{doc.TotalLabel, strconv.FormatInt(doc.Total, 10)}) },
		func() error { return line("") },
		func() error { return line(doc.DetailHeading) },
		func() error { return cw.Write(doc.DetailHeader) },
		func() error { return cw.WriteAll(doc.Details) },
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
