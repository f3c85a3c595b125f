package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// StatementParser reads a non-CSV statement format into a table.
type StatementParser interface {
	ParseTable(ctx context.Context, name string, r io.Reader) (*Table, error)
}

// File is one uploaded statement.
type File struct {
	Reader io.Reader
	Name   string
}

// Result is the outcome of loading a batch of files.
type Result struct {
	Table   *Table
	Skipped []string
}

// Loader reads statement files, picking a parser by file extension and
// falling back to CSV.
type Loader struct {
	parsers   map[string]StatementParser
	onFile    func(name string, err error)
	encodings []string
}

// NewLoader creates a loader that tries encodings in order for CSV input.
func NewLoader(encodings []string) *Loader {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}
	return &Loader{
		encodings: encodings,
		parsers:   make(map[string]StatementParser),
	}
}

// Register routes files with the given extension (".ofx") to parser.
func (l *Loader) Register(ext string, parser StatementParser) *Loader {
	l.parsers[strings.ToLower(ext)] = parser
	return l
}

// OnFile sets a callback LoadAll invokes after each file, with the error
// that made the file unreadable or nil.
func (l *Loader) OnFile(fn func(name string, err error)) *Loader {
	l.onFile = fn
	return l
}

// Load reads a single file.
func (l *Loader) Load(ctx context.Context, f File) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	if parser, ok := l.parsers[ext]; ok {
		table, err := parser.ParseTable(ctx, f.Name, f.Reader)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, f.Name, err)
		}
		return table, nil
	}

	return ReadCSV(f.Name, f.Reader, l.encodings)
}

// LoadAll reads every file and merges the readable ones. Unreadable files
// are skipped and reported in Result.Skipped; when no file can be read the
// error wraps ErrUnreadableFile.
func (l *Loader) LoadAll(ctx context.Context, files []File) (Result, error) {
	var (
		tables []*Table
		result Result
	)

	for _, f := range files {
		table, err := l.Load(ctx, f)
		if l.onFile != nil {
			l.onFile(f.Name, err)
		}
		if err != nil {
			if !errors.Is(err, ErrUnreadableFile) {
				return Result{}, err
			}
			slog.Warn("skipping unreadable file", "file", f.Name, "error", err)
			result.Skipped = append(result.Skipped, f.Name)
			continue
		}
		tables = append(tables, table)
	}

	if len(tables) == 0 {
		return result, fmt.Errorf("%w: no readable files among %d", ErrUnreadableFile, len(files))
	}

	result.Table = Merge(tables...)
	return result, nil
}
