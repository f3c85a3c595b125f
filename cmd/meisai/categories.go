package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Veraticus/meisai/internal/cli"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
		Long: `List and edit the ordered category list. The unclassified label is always
kept as the first category.`,
	}

	cmd.AddCommand(a.listCategoriesCmd())
	cmd.AddCommand(a.setCategoriesCmd())
	cmd.AddCommand(a.addCategoryCmd())
	cmd.AddCommand(a.removeCategoryCmd())

	return cmd
}

func (a *app) listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, cleanup, err := a.openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			set := ws.session.Categories()
			out := cmd.OutOrStdout()
			for i, label := range set.Labels() {
				if set.IsSentinel(label) {
					fmt.Fprintf(out, "%2d. %s %s\n", i+1, label, cli.SubtleStyle.Render("(unclassified)"))
					continue
				}
				fmt.Fprintf(out, "%2d. %s\n", i+1, label)
			}
			return nil
		},
	}
}

func (a *app) setCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <labels...>",
		Short: "Replace the category list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.updateCategories(cmd, func([]string) []string { return args })
		},
	}
}

func (a *app) addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <label>",
		Short: "Append a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.updateCategories(cmd, func(labels []string) []string {
				return append(labels, args[0])
			})
		},
	}
}

func (a *app) removeCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <label>",
		Aliases: []string{"rm"},
		Short:   "Remove a category",
		Long: `Remove a category from the list. Rules and rows that use it keep their label
until they are edited.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.updateCategories(cmd, func(labels []string) []string {
				return slices.DeleteFunc(labels, func(l string) bool { return l == args[0] })
			})
		},
	}
}

// updateCategories applies edit to the current labels and saves the result.
func (a *app) updateCategories(cmd *cobra.Command, edit func([]string) []string) error {
	ctx := cmd.Context()
	ws, cleanup, err := a.openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := ws.session.SetCategories(ctx, edit(ws.session.Categories().Labels())); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%d categories saved", ws.session.Categories().Len())))
	return nil
}
