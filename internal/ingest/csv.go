package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncodings is the order in which encodings are tried when reading a
// CSV file. Shift_JIS here is the Windows code page 932 superset.
var DefaultEncodings = []string{"utf-8", "shift_jis", "euc-jp"}

// Errors returned while reading files.
var (
	ErrUnreadableFile = errors.New("file could not be read with any configured encoding")
	ErrEmptyFile      = errors.New("file has no header row")
	errInvalidText    = errors.New("decoded text is not valid")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// encodingAliases maps names accepted in configuration onto WHATWG labels.
var encodingAliases = map[string]string{
	"cp932":  "shift_jis",
	"ms932":  "shift_jis",
	"sjis":   "shift_jis",
	"eucjp":  "euc-jp",
	"utf8":   "utf-8",
	"latin1": "windows-1252",
}

// ReadCSV reads a CSV file whose text encoding is unknown. Each encoding is
// tried in turn; the first one that decodes cleanly and parses as CSV wins.
// The first record is the header. A SourceFileColumn holding name is
// appended to every record.
func ReadCSV(name string, r io.Reader, encodings []string) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}

	for _, enc := range encodings {
		text, err := decode(data, enc)
		if err != nil {
			slog.Debug("encoding rejected", "file", name, "encoding", enc, "error", err)
			continue
		}

		table, err := parseCSV(text)
		if err != nil {
			slog.Debug("csv parse failed", "file", name, "encoding", enc, "error", err)
			continue
		}

		table.Columns = append(table.Columns, SourceFileColumn)
		for i := range table.Records {
			table.Records[i] = append(table.Records[i], name)
		}

		slog.Info("read csv file",
			"file", name,
			"encoding", enc,
			"rows", table.Len(),
			"columns", len(table.Columns)-1)
		return table, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnreadableFile, name)
}

// decode converts data from the named encoding to UTF-8. A decoding that
// produces replacement characters is treated as a failure so that the next
// encoding gets a chance.
func decode(data []byte, name string) (string, error) {
	key := encodingKey(name)

	if key == "utf-8" {
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", errInvalidText
		}
		return string(data), nil
	}

	enc, err := htmlindex.Get(key)
	if err != nil {
		return "", fmt.Errorf("unknown encoding %q: %w", name, err)
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding as %s: %w", name, err)
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", errInvalidText
	}

	return strings.TrimPrefix(string(out), "\ufeff"), nil
}

// KnownEncoding reports whether name is an encoding ReadCSV can try.
func KnownEncoding(name string) bool {
	key := encodingKey(name)
	if key == "utf-8" {
		return true
	}
	_, err := htmlindex.Get(key)
	return err == nil
}

func encodingKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := encodingAliases[key]; ok {
		return alias
	}
	return key
}

func parseCSV(text string) (*Table, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}

	table := &Table{Columns: headerNames(records[0], width)}
	for _, rec := range records[1:] {
		row := make([]string, width)
		copy(row, rec)
		table.Records = append(table.Records, row)
	}

	return table, nil
}

// headerNames trims the header, names blank or missing columns after their
// position and disambiguates repeated names with a numeric suffix.
// SourceFileColumn is reserved, so a file's own column of that name is
// suffixed too.
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	seen := map[string]int{SourceFileColumn: 0}

	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}

	return names
}
