package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/autoaudit/estimator/rules"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rules in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := catalogFor(cmd)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tWEIGHT\tBANDS\tFALLBACK")
			for _, r := range c.Rules {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%t\n", r.ID, r.Category, r.Weight, len(r.Bands), r.Fallback)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Validate and compile a catalog file without loading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rules.LoadCatalog(args[0])
			if err != nil {
				return err
			}
			if _, err := rules.NewEngine(c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rules OK\n", args[0], len(c.Rules))
			return nil
		},
	})

	return cmd
}

func catalogFor(cmd *cobra.Command) (*rules.Catalog, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		return rules.DefaultCatalog()
	}
	return rules.LoadCatalog(path)
}
