package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/meisai/internal/cli"
	"github.com/Veraticus/meisai/internal/tui"
	"github.com/Veraticus/meisai/internal/tui/themes"
)

func (a *app) reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review and correct classifications in the terminal",
		Long: `Open an interactive table of the current dataset.

  ↑/↓  move            ←/→  change the row's category
  u    unclassified only   r    rerun the rules
  s    save and quit       q    quit without saving`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ws, cleanup, err := a.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			theme, _ := cmd.Flags().GetString("theme")
			result, err := tui.Run(ctx, ws.session, tui.WithTheme(themes.GetTheme(theme)))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case result.Saved:
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%d corrections saved", result.Edits)))
				return cli.RenderSummary(out, ws.session.Summary())
			case result.Edits > 0:
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d corrections discarded", result.Edits)))
			}
			return nil
		},
	}

	cmd.Flags().String("theme", "default", "color theme (default, catppuccin-mocha)")
	return cmd
}
