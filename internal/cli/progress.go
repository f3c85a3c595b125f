package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// FileProgress shows how many statement files have been read.
type FileProgress struct {
	bar     *progressbar.ProgressBar
	skipped int
}

// NewFileProgress creates a progress bar over total files written to w.
func NewFileProgress(w io.Writer, total int) *FileProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan]"+FolderIcon+" Reading statements[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[magenta]#[reset]",
			SaucerPadding: ".",
			BarStart:      "|",
			BarEnd:        "|",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("failed to finish progress bar", "error", err)
			}
		}),
	)
	return &FileProgress{bar: bar}
}

// Done records one finished file. Its signature matches ingest.Loader.OnFile.
func (p *FileProgress) Done(name string, err error) {
	if err != nil {
		p.skipped++
	}
	p.bar.Describe(fmt.Sprintf("[cyan]%s %s[reset]", FolderIcon, name))
	if addErr := p.bar.Add(1); addErr != nil {
		slog.Warn("failed to update progress bar", "file", name, "error", addErr)
	}
}

// Skipped returns how many files failed to load.
func (p *FileProgress) Skipped() int {
	return p.skipped
}
