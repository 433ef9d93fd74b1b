package main

import (
	"fmt"

	"github.com/TrevorS/clusterpoints"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var linkageDescriptions = map[clusterpoints.Linkage]string{
	clusterpoints.LinkageSLINK:    "single linkage with SLINK, O(n²) time and O(n) memory",
	clusterpoints.LinkageSingle:   "single linkage, nearest members",
	clusterpoints.LinkageComplete: "complete linkage, farthest members",
	clusterpoints.LinkageMedian:   "median linkage (WPGMC)",
	clusterpoints.LinkageAverage:  "unweighted average linkage (UPGMA)",
	clusterpoints.LinkageWard:     "Ward's minimum variance",
	clusterpoints.LinkageCentroid: "centroid linkage (UPGMC)",
}

var linkagesCmd = &cobra.Command{
	Use:   "linkages",
	Short: "List the hierarchical linkages",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, l := range clusterpoints.Linkages() {
			pterm.Printf("  %s %s\n", pterm.LightCyan(fmt.Sprintf("%-10s", l)), linkageDescriptions[l])
		}
		pterm.Info.Println("All linkages except slink use the Lance-Williams engine (O(n³) time, O(n²) memory).")
	},
}
