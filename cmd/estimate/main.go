// estimate runs the maintenance exposure engine from the command line.
//
// Usage:
//
//	estimate report --year=2015 --mileage=65000 --fuel=diesel --transmission=automatic --timing=belt --make=Ford [--full]
//	estimate explain --year=2015 --mileage=65000 --fuel=diesel --transmission=automatic
//	estimate rules [--catalog=<path>]
//	estimate batch --workers=4 stock.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate near-term maintenance exposure for a used vehicle",
		Long: "estimate evaluates the maintenance rule catalog against a vehicle's age, mileage\n" +
			"and drivetrain and prints the preview or full report payload as JSON.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.Version = version
	root.PersistentFlags().String("catalog", "", "Path to a rule catalog YAML file (defaults to the built-in catalog)")

	root.AddCommand(newReportCmd())
	root.AddCommand(newExplainCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newBatchCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
