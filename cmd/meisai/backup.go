package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/meisai/internal/cli"
	"github.com/Veraticus/meisai/internal/config"
)

func (a *app) backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [destination]",
		Short: "Write a verified copy of the database",
		Long: `Write a consistent copy of the database and check its integrity. Without a
destination the copy goes to a timestamped file in a backups directory next to
the database.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, cleanup, err := a.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			dest := ""
			if len(args) == 1 {
				dest = config.ExpandPath(args[0])
			}

			info, err := ws.store.Backup(ctx, dest)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Backup of %s written to %s", ws.store.Path(), info.Path)))
			fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d rules, %d categories, %d transactions, schema v%d, %d bytes",
				info.Rules, info.Categories, info.Transactions, info.SchemaVersion, info.FileSize)))
			return nil
		},
	}
}
