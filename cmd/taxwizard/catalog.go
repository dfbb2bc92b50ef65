package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/taxwizard/internal/presentation/graph"
	"github.com/aretw0/taxwizard/internal/presentation/tui"
	"github.com/aretw0/taxwizard/pkg/catalog"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate question catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a catalog file for consistency",
	Long: `Parses a YAML catalog and reports duplicate IDs, bad options and
relevance rules that reference unknown or later questions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, source, err := loadCatalog(cmd, args)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Catalog %s is valid: %d questions ✅\n", source, c.Len())
		return nil
	},
}

var catalogGraphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Export the question flow as a Mermaid diagram",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := loadCatalog(cmd, args)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.Mermaid(c, nil))
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print the questions and their options",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, source, err := loadCatalog(cmd, args)
		if err != nil {
			return err
		}
		render := tui.NewRenderer()
		out, err := render(catalogMarkdown(c, source))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogGraphCmd)
	catalogCmd.AddCommand(catalogShowCmd)
}

// loadCatalog reads the positional file, then --catalog, then the built-in catalog.
func loadCatalog(cmd *cobra.Command, args []string) (*catalog.Catalog, string, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return catalog.Default(), "built-in", nil
	}
	c, err := catalog.LoadFile(path)
	return c, path, err
}

func catalogMarkdown(c *catalog.Catalog, source string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Catalog (%s)\n\n", source)
	for i, q := range c.Questions() {
		fmt.Fprintf(&sb, "## %d. %s\n\n", i+1, q.Prompt)
		fmt.Fprintf(&sb, "`%s`", q.ID)
		if q.Condition != "" {
			fmt.Fprintf(&sb, " asked when `%s`", q.Condition)
		}
		sb.WriteString("\n\n")
		for _, opt := range q.Options {
			hidden := ""
			if opt.Hidden {
				hidden = " *(hidden)*"
			}
			fmt.Fprintf(&sb, "- `%s` %s%s\n", opt.Value, opt.Label, hidden)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
