package clusterpoints

import (
	"context"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Algorithm selects the clustering family.
type Algorithm string

const (
	AlgorithmKMeans       Algorithm = "kmeans"
	AlgorithmHierarchical Algorithm = "hierarchical"
)

// DefaultPollInterval is how often Cluster checks on its running tasks.
const DefaultPollInterval = 100 * time.Millisecond

// Config controls one clustering request.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Algorithm chooses K-means or hierarchical clustering.
	// Default: "kmeans".
	Algorithm Algorithm

	// Seed initializes the K-means++ random draw. Runs with the same seed
	// and the same point order are identical. Must be >= 1. Default: 1.
	Seed int64

	// Linkage is the hierarchical link function. Required iff Algorithm is
	// "hierarchical"; ignored (with an info log) for K-means.
	Linkage Linkage

	// DistanceType selects Euclidean or the four-leg Manhattan estimate
	// for the planar part of the distance. Default: "euclidean".
	DistanceType DistanceType

	// Clusters is the number of clusters k. Must be >= 2 and no larger than
	// the number of usable points. Default: 2.
	Clusters int

	// AggregationPercentile is handed to Reducer for Lance-Williams runs.
	// 0 disables aggregation. Must be in [0, 99]. Default: 5.
	AggregationPercentile int

	// AttributePercent is the share (pz) of the attribute distance in the
	// blended metric. Must be in [0, 100]. Default: 0.
	AttributePercent float64

	// AttributeField names the attribute that feeds Z. With an empty name
	// AttributePercent is reset to 0.
	AttributeField string

	// Oracle measures planar segment lengths. Default: PlanarOracle.
	Oracle DistanceOracle

	// Reducer is the optional cluster-feature preprocessing step used when
	// AggregationPercentile > 0 and a Lance-Williams linkage is selected.
	// Without one, all points are clustered directly.
	Reducer FeatureReducer

	// Workers bounds the goroutines filling the Lance-Williams distance
	// cache. 0 means runtime.NumCPU(). Default: 0 (auto).
	Workers int

	// PollInterval is how often running tasks are checked.
	// Default: DefaultPollInterval.
	PollInterval time.Duration

	// Logger receives structured progress logs. Default: no-op.
	Logger *zap.Logger

	// OnProgress, when set, receives the task name and its progress in
	// percent. It is called from the worker goroutine.
	OnProgress func(task string, percent int)
}

// Result is the outcome of a successful Cluster call.
type Result struct {
	// Labels maps every clustered point ID to its cluster in [0, k).
	// Cluster numbers carry no meaning beyond grouping.
	Labels map[int64]int

	// Clusters holds the member IDs of each cluster.
	Clusters Partition

	// Points is the number of points clustered after preparation.
	Points int

	// AttributePercent is the blend weight actually used.
	AttributePercent float64

	// Merges is the dendrogram of hierarchical runs: the n-k merges of a
	// Lance-Williams run or the full single-linkage tree of a SLINK run.
	// With cluster-feature aggregation the leaves are cluster features.
	Merges []Merge

	// Iterations is the number of Lloyd rounds of a K-means run.
	Iterations int

	// TaskID identifies the clustering task in the logs.
	TaskID string
}

// DefaultConfig returns a Config with the defaults of the original tool.
func DefaultConfig() Config {
	return Config{
		Algorithm:             AlgorithmKMeans,
		Seed:                  1,
		DistanceType:          DistanceEuclidean,
		Clusters:              2,
		AggregationPercentile: 5,
		Oracle:                PlanarOracle{},
		PollInterval:          DefaultPollInterval,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	switch cfg.Algorithm {
	case AlgorithmKMeans, AlgorithmHierarchical:
	default:
		return configErrorf("Algorithm must be %q or %q, got %q", AlgorithmKMeans, AlgorithmHierarchical, cfg.Algorithm)
	}
	if cfg.Seed < 1 {
		return configErrorf("Seed must be >= 1, got %d", cfg.Seed)
	}
	if cfg.Clusters < 2 {
		return configErrorf("Clusters must be >= 2, got %d", cfg.Clusters)
	}
	if cfg.Algorithm == AlgorithmHierarchical {
		if cfg.Linkage == LinkageNone {
			return markConfig(errors.WithHint(errors.WithStack(ErrMissingLinkage),
				"linkage must be slink, single, complete, median, average, ward or centroid"))
		}
	}
	if cfg.Linkage != LinkageNone && !cfg.Linkage.Valid() {
		return markConfig(errors.Wrapf(ErrUnknownLinkage, "%s", cfg.Linkage))
	}
	switch cfg.DistanceType {
	case DistanceEuclidean, DistanceManhattan:
	default:
		return configErrorf("DistanceType must be %q or %q, got %q", DistanceEuclidean, DistanceManhattan, cfg.DistanceType)
	}
	if cfg.AggregationPercentile < 0 || cfg.AggregationPercentile > 99 {
		return configErrorf("AggregationPercentile must be in [0, 99], got %d", cfg.AggregationPercentile)
	}
	if cfg.AttributePercent < 0 || cfg.AttributePercent > 100 {
		return configErrorf("AttributePercent must be in [0, 100], got %g", cfg.AttributePercent)
	}
	if cfg.Workers < 0 {
		return configErrorf("Workers must be >= 0 (0 means runtime.NumCPU()), got %d", cfg.Workers)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmKMeans
	}
	if cfg.DistanceType == "" {
		cfg.DistanceType = DistanceEuclidean
	}
	if cfg.Oracle == nil {
		cfg.Oracle = PlanarOracle{}
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// Cluster runs one clustering request end to end: it prepares and
// standardizes the observations, optionally aggregates them into cluster
// features, runs the selected engine as a Task and maps the result back to
// point IDs. Cancelling ctx cancels the running task; Cluster then returns
// ErrCanceled and no result.
func Cluster(ctx context.Context, obs []Observation, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if cfg.Algorithm == AlgorithmKMeans && cfg.Linkage != LinkageNone {
		logger.Info("linkage is ignored by k-means", zap.Stringer("linkage", cfg.Linkage))
	}

	points, pz, err := Prepare(obs, cfg, logger)
	if err != nil {
		return nil, err
	}
	if pz > 0 {
		if err := Standardize(points, cfg.DistanceType == DistanceManhattan); err != nil {
			return nil, errors.Wrapf(err, "field %s", cfg.AttributeField)
		}
	}
	metric := NewMetric(cfg.Oracle, cfg.DistanceType, pz)

	input := points
	var reduction Reduction
	if usesReducer(cfg) {
		if cfg.Reducer == nil {
			logger.Warn("no cluster-feature reducer configured, clustering all points",
				zap.Int("aggregation_percentile", cfg.AggregationPercentile))
		} else {
			reduction, err = reduce(ctx, points, metric, cfg)
			if err != nil {
				return nil, err
			}
			input = reduction.Centroids()
			if cfg.Clusters > len(input) {
				return nil, markConfig(errors.Wrapf(ErrTooFewPoints,
					"%d cluster features available for %d clusters", len(input), cfg.Clusters))
			}
		}
	}

	engine, err := newEngine(input, metric, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("processing clustering", zap.String("task", engine.Name()), zap.Int("points", len(input)))

	task := NewTask(engine.Name(), engine.Run, logger, progressFor(cfg, engine.Name()))
	partition, err := runTask(ctx, task, cfg.PollInterval)
	if err != nil {
		return nil, err
	}
	if reduction != nil {
		partition = expandPartition(partition, reduction)
	}

	res := &Result{
		Labels:           partition.Labels(),
		Clusters:         partition,
		Points:           len(points),
		AttributePercent: pz,
		TaskID:           task.ID().String(),
	}
	if d, ok := engine.(Dendrogram); ok {
		res.Merges = d.Merges()
	}
	if km, ok := engine.(*KMeans); ok {
		res.Iterations = km.Rounds()
	}
	return res, nil
}

// reduce runs the cluster-feature preprocessing in its own task.
func reduce(ctx context.Context, points []Point, metric Metric, cfg Config) (Reduction, error) {
	const name = "BIRCH-like preprocessing"
	job := func(ctx context.Context, report ProgressFunc) (Reduction, error) {
		return cfg.Reducer.Reduce(ctx, points, metric, cfg.AggregationPercentile, report)
	}
	task := NewTask(name, job, cfg.Logger, progressFor(cfg, name))
	r, err := runTask(ctx, task, cfg.PollInterval)
	if err != nil {
		return nil, errors.Wrap(err, "cluster-feature preprocessing")
	}
	return r, nil
}

// runTask starts task, polls it to a terminal state and returns its result.
func runTask[T any](ctx context.Context, task *Task[T], interval time.Duration) (T, error) {
	if err := task.Start(ctx); err != nil {
		var zero T
		return zero, err
	}
	Poll(ctx, task, interval)
	return task.Result()
}

func progressFor(cfg Config, name string) ProgressFunc {
	if cfg.OnProgress == nil {
		return nil
	}
	return func(percent int) { cfg.OnProgress(name, percent) }
}
