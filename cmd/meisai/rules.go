package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/meisai/internal/cli"
	"github.com/Veraticus/meisai/internal/ingest"
	"github.com/Veraticus/meisai/internal/model"
)

func (a *app) rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage keyword rules",
		Long: `A rule maps a keyword to a category. A statement line whose text contains
the keyword (ignoring case and full-width/half-width differences) gets the
category. Earlier rules win.`,
	}

	cmd.AddCommand(a.listRulesCmd())
	cmd.AddCommand(a.addRuleCmd())
	cmd.AddCommand(a.deleteRuleCmd())
	cmd.AddCommand(a.importRulesCmd())

	return cmd
}

func (a *app) listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all rules in precedence order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, cleanup, err := a.openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			rules := ws.session.Rules()
			out := cmd.OutOrStdout()
			if len(rules) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No rules yet. Use 'meisai rules add <keyword> <category>' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\n", "#", "KEYWORD", "CATEGORY")
			for i, r := range rules {
				fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, r.Keyword, r.Category)
			}
			return w.Flush()
		},
	}
}

func (a *app) addRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <keyword> <category>",
		Short: "Add a rule or change the category of an existing keyword",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, cleanup, err := a.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			before := ws.session.Summary().UnclassifiedCount
			saved, err := ws.session.UpsertRule(ctx, args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !saved {
				fmt.Fprintln(out, cli.FormatWarning("Empty keyword, nothing saved"))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Rule saved: %s → %s", args[0], args[1])))
			if after := ws.session.Summary().UnclassifiedCount; after != before {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Unclassified rows: %d → %d", before, after)))
			}
			return nil
		},
	}
}

func (a *app) deleteRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <keyword>",
		Aliases: []string{"rm"},
		Short:   "Delete the rule for a keyword",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, cleanup, err := a.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			deleted, err := ws.session.DeleteRule(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !deleted {
				fmt.Fprintln(out, cli.FormatWarning("No rule for "+args[0]))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess("Rule deleted: "+args[0]))
			return nil
		},
	}
}

func (a *app) importRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import rules from a CSV file",
		Long: `Import rules from a CSV file with "keyword" and "category" columns (the first
two columns are used when the header has neither). Imported rules are appended
after the existing ones; a keyword that already exists takes the imported
category. Use --replace to discard the existing rules first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, cleanup, err := a.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			imported, err := readRulesCSV(args[0], ws.config.Encodings)
			if err != nil {
				return err
			}

			replace, _ := cmd.Flags().GetBool("replace")
			rules := imported
			if !replace {
				rules = append(ws.session.Rules(), imported...)
			}
			if err := ws.session.ReplaceRules(ctx, rules); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d rules (%d total)",
				len(imported), len(ws.session.Rules()))))
			return nil
		},
	}

	cmd.Flags().Bool("replace", false, "replace the existing rules instead of merging")
	return cmd
}

// readRulesCSV reads keyword/category pairs from a CSV file in any of the
// configured encodings.
func readRulesCSV(path string, encodings []string) ([]model.Rule, error) {
	f, err := os.Open(path) //nolint:gosec // user supplied rules file
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	table, err := ingest.ReadCSV(filepath.Base(path), f, encodings)
	if err != nil {
		return nil, err
	}

	keywordCol, categoryCol := "", ""
	var dataCols []string
	for _, c := range table.Columns {
		if c == ingest.SourceFileColumn {
			continue
		}
		dataCols = append(dataCols, c)
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "keyword", "キーワード":
			keywordCol = c
		case "category", "カテゴリー", "カテゴリ":
			categoryCol = c
		}
	}
	if keywordCol == "" || categoryCol == "" {
		if len(dataCols) < 2 {
			return nil, fmt.Errorf("%s: expected keyword and category columns", path)
		}
		keywordCol, categoryCol = dataCols[0], dataCols[1]
	}

	rules := make([]model.Rule, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		rules = append(rules, model.Rule{
			Keyword:  table.Value(i, keywordCol),
			Category: table.Value(i, categoryCol),
		})
	}
	return rules, nil
}
