package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/meisai/internal/cli"
	"github.com/Veraticus/meisai/internal/ingest"
)

func (a *app) analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <files...>",
		Short: "Classify one or more statement files",
		Long: `Read statement exports (CSV in UTF-8, Shift_JIS or EUC-JP, or OFX/QFX),
classify every line with the saved rules, replace the current dataset with the
result and write the report.

Columns are guessed from the header when --description-column and
--amount-column are not given. Files that cannot be read are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runAnalyze,
	}

	cmd.Flags().String("description-column", "", "column holding the transaction text")
	cmd.Flags().String("amount-column", "", "column holding the amount")
	cmd.Flags().StringP("output", "o", "", "report file (default: localized report name in the current directory)")
	cmd.Flags().String("lang", "", "report language (ja, en)")
	cmd.Flags().Bool("sheets", false, "also export the report to Google Sheets")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := interrupts.HandleInterrupts(cmd.Context(), "Rerun with: meisai analyze "+filepath.Base(args[0])+" ...")
	defer stop()

	ws, cleanup, err := a.openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	files := make([]ingest.File, 0, len(args))
	for _, path := range args {
		f, openErr := os.Open(path) //nolint:gosec // user supplied statement files
		if openErr != nil {
			return fmt.Errorf("failed to open %s: %w", path, openErr)
		}
		defer func() { _ = f.Close() }()
		files = append(files, ingest.File{Reader: f, Name: filepath.Base(path)})
	}

	loader := newLoader(ws.config.Encodings)
	if hide, _ := cmd.Flags().GetBool("no-progress"); !hide {
		loader.OnFile(cli.NewFileProgress(cmd.ErrOrStderr(), len(files)).Done)
	}

	result, err := loader.LoadAll(ctx, files)
	for _, name := range result.Skipped {
		fmt.Fprintln(out, cli.FormatWarning("Skipped unreadable file: "+name))
	}
	if err != nil {
		if errors.Is(err, ingest.ErrUnreadableFile) {
			return fmt.Errorf("none of the files could be read: %w", err)
		}
		return err
	}

	suggestion, err := ws.session.Stage(result.Table)
	if err != nil {
		return err
	}

	description, _ := cmd.Flags().GetString("description-column")
	if description == "" {
		description = suggestion.Description
	}
	amount, _ := cmd.Flags().GetString("amount-column")
	if amount == "" {
		amount = suggestion.Amount
	}
	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Using %q as description and %q as amount", description, amount)))

	rows, err := ws.session.Analyze(ctx, description, amount)
	if err != nil {
		return err
	}

	summary := ws.session.Summary()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Classified %d rows from %d files", len(rows), len(files)-len(result.Skipped))))
	fmt.Fprintln(out)
	if err := cli.RenderSummary(out, summary); err != nil {
		return err
	}

	opts, err := a.reportFlags(cmd, ws.config.Language)
	if err != nil {
		return err
	}
	path, err := a.writeReport(ctx, rows, summary, opts)
	if path != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.FormatSuccess("Report written to "+path))
	}
	return err
}

// reportFlags reads --output, --lang and --sheets.
func (a *app) reportFlags(cmd *cobra.Command, defaultLanguage string) (reportOptions, error) {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return reportOptions{}, err
	}
	language, err := cmd.Flags().GetString("lang")
	if err != nil {
		return reportOptions{}, err
	}
	if language == "" {
		language = defaultLanguage
	}
	toSheets, err := cmd.Flags().GetBool("sheets")
	if err != nil {
		return reportOptions{}, err
	}
	return reportOptions{output: output, language: language, toSheets: toSheets}, nil
}
