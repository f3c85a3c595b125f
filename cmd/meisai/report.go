package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/meisai/internal/cli"
)

func (a *app) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the report for the current dataset",
		Long: `Write the per-category summary and the detail table of the current dataset
as a UTF-8 CSV file with a byte order mark, and optionally to Google Sheets.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			ws, cleanup, err := a.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			opts, err := a.reportFlags(cmd, ws.config.Language)
			if err != nil {
				return err
			}

			summary := ws.session.Summary()
			path, err := a.writeReport(ctx, ws.session.Rows(), summary, opts)
			if err != nil {
				return err
			}

			if err := cli.RenderSummary(out, summary); err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, cli.FormatSuccess("Report written to "+path))
			if opts.toSheets {
				fmt.Fprintln(out, cli.FormatSuccess("Exported to Google Sheets"))
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "report file (default: localized report name in the current directory)")
	cmd.Flags().String("lang", "", "report language (ja, en)")
	cmd.Flags().Bool("sheets", false, "also export the report to Google Sheets")

	return cmd
}
