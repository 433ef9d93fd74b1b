package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/TrevorS/clusterpoints"
	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Cluster the points of a CSV file",
		Long: `Cluster the points of a CSV file and write id,cluster_id rows.

The input needs a header row with x and y columns (see --x-column,
--y-column). An id column is optional; without one the row number is used.
Rows with an empty attribute cell are left out when the attribute
contributes to the distance, and get an empty cluster_id in the output.

Every flag can also be set through a CLUSTERPOINTS_* environment variable
(CLUSTERPOINTS_ATTRIBUTE_PERCENT=30) or a --config file.

Interrupting the run cancels the clustering task.`,
		Args: cobra.NoArgs,
		RunE: runClustering,
	}

	defaults := clusterpoints.DefaultConfig()
	f := cmd.Flags()
	f.String("config", "", "Configuration file (TOML, YAML or JSON)")
	f.StringP("input", "i", "", "Input CSV file (default stdin)")
	f.StringP("output", "o", "", "Output CSV file (default stdout)")
	f.String("id-column", "id", "Name of the id column")
	f.String("x-column", "x", "Name of the x coordinate column")
	f.String("y-column", "y", "Name of the y coordinate column")
	f.StringP("algorithm", "a", string(defaults.Algorithm), "Clustering algorithm (kmeans/hierarchical)")
	f.StringP("linkage", "l", "", "Hierarchical linkage (see 'clusterpoints linkages')")
	f.StringP("distance", "d", string(defaults.DistanceType), "Distance type (euclidean/manhattan)")
	f.IntP("clusters", "k", defaults.Clusters, "Number of clusters")
	f.Int64("seed", defaults.Seed, "Random seed for K-means++ seeding")
	f.Int("percentile", 0, "Aggregation percentile for Lance-Williams linkages; needs a cluster-feature reducer, which the CLI does not provide")
	f.String("attribute", "", "Numeric attribute column blended into the distance")
	f.Float64("attribute-percent", 0, "Share of the attribute distance in percent")
	f.Int("workers", 0, "Goroutines for the distance cache (0 = all CPUs)")
	f.Duration("poll-interval", defaults.PollInterval, "How often the running task is checked")
	return cmd
}

func runClustering(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	verbosity, _ := cmd.Flags().GetCount("verbose")
	logger, err := newLogger(verbosity)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	defer logger.Sync()

	cfg, err := settings.Config()
	if err != nil {
		return err
	}
	cfg.Logger = logger

	obs, err := readInput(settings.Input, settings)
	if err != nil {
		return err
	}
	logger.Info("points loaded", zap.Int("points", len(obs)), zap.String("input", settings.Input))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	view := &progressView{}
	cfg.OnProgress = view.update
	res, err := clusterpoints.Cluster(ctx, obs, cfg)
	view.stop()
	if errors.Is(err, clusterpoints.ErrCanceled) {
		pterm.Warning.Println("Clustering canceled")
		return err
	}
	if err != nil {
		return err
	}

	if err := writeOutput(settings.Output, obs, res.Labels); err != nil {
		return err
	}
	pterm.Success.Printf("Clustered %d points into %d clusters\n", res.Points, len(res.Clusters))
	if dropped := len(obs) - res.Points; dropped > 0 {
		pterm.Info.Printf("%d points without %s were left out\n", dropped, settings.Attribute)
	}
	return nil
}

func readInput(path string, s *Settings) ([]clusterpoints.Observation, error) {
	if path == "" || path == "-" {
		return readObservations(os.Stdin, s)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open input")
	}
	defer file.Close()
	return readObservations(file, s)
}

func writeOutput(path string, obs []clusterpoints.Observation, labels map[int64]int) error {
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "failed to create output")
		}
		defer file.Close()
		w = file
	}
	return writeLabels(w, obs, labels)
}
