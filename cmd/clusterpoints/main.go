package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clusterpoints",
	Short: "Cluster point locations with K-means or hierarchical clustering",
	Long: `clusterpoints partitions point locations into a fixed number of clusters.

Distances are planar lengths, optionally blended with a numeric attribute
(--attribute, --attribute-percent).

Available commands:
  run       - Cluster the points of a CSV file
  linkages  - List the hierarchical linkages

Examples:
  clusterpoints run -i stores.csv -k 5
  clusterpoints run -i wells.csv -a hierarchical -l ward -k 8 -o labels.csv
  clusterpoints run -i wells.csv --attribute depth --attribute-percent 30`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(linkagesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		if hint := errors.FlattenHints(err); hint != "" {
			pterm.Info.Println(hint)
		}
		os.Exit(1)
	}
}
