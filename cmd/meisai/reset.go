package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/meisai/internal/cli"
)

func (a *app) resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the current dataset",
		Long: `Reset removes the classified dataset. With --all the rules are deleted and the
category list returns to its defaults as well.

This is a destructive operation; take a backup first with 'meisai backup'.`,
		Args: cobra.NoArgs,
		RunE: a.runReset,
	}

	cmd.Flags().Bool("all", false, "also delete rules and restore the default categories")
	cmd.Flags().BoolP("force", "f", false, "skip the confirmation prompt")

	return cmd
}

func (a *app) runReset(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	all, _ := cmd.Flags().GetBool("all")
	force, _ := cmd.Flags().GetBool("force")

	ws, cleanup, err := a.openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if !force {
		fmt.Fprintf(out, "This will delete %d transactions.\n", len(ws.session.Rows()))
		if all {
			fmt.Fprintf(out, "This will also delete %d rules and restore the default categories.\n", len(ws.session.Rules()))
		}
		fmt.Fprint(out, "\nAre you sure you want to continue? [y/N]: ")

		response, readErr := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if readErr != nil && response == "" {
			return fmt.Errorf("failed to read input: %w", readErr)
		}
		if answer := strings.TrimSpace(response); answer != "y" && answer != "Y" {
			fmt.Fprintln(out, "Reset canceled.")
			return nil
		}
	}

	if err := ws.session.Reset(ctx, all); err != nil {
		return err
	}

	if all {
		fmt.Fprintln(out, cli.FormatSuccess("Dataset, rules and categories reset"))
	} else {
		fmt.Fprintln(out, cli.FormatSuccess("Dataset cleared. Run 'meisai analyze <files>' to start over."))
	}
	return nil
}
