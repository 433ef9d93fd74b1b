package clusterpoints

import (
	"context"

	"go.uber.org/zap"
)

// Partition groups point IDs into clusters. Every input point appears in
// exactly one cluster.
type Partition [][]int64

// Labels maps each point ID to the index of its cluster in p.
func (p Partition) Labels() map[int64]int {
	labels := make(map[int64]int)
	for c, ids := range p {
		for _, id := range ids {
			labels[id] = c
		}
	}
	return labels
}

// Sizes returns the member count of each cluster.
func (p Partition) Sizes() []int {
	sizes := make([]int, len(p))
	for c, ids := range p {
		sizes[c] = len(ids)
	}
	return sizes
}

// Engine is one clustering run. Run is meant to be wrapped in a Task: it
// checks ctx cooperatively and may report coarse progress.
type Engine interface {
	Name() string
	Run(ctx context.Context, report ProgressFunc) (Partition, error)
}

// Dendrogram is implemented by the hierarchical engines.
type Dendrogram interface {
	Merges() []Merge
}

var (
	_ Engine     = (*KMeans)(nil)
	_ Engine     = (*Agglomerative)(nil)
	_ Engine     = (*SLINK)(nil)
	_ Dendrogram = (*Agglomerative)(nil)
	_ Dendrogram = (*SLINK)(nil)
)

// newEngine builds the engine selected by cfg. cfg must be validated and
// its attribute percentage already resolved into metric.
func newEngine(points []Point, metric Metric, cfg Config) (Engine, error) {
	logger := cfg.Logger
	switch cfg.Algorithm {
	case AlgorithmKMeans:
		if cfg.Linkage != LinkageNone {
			logger.Info("linkage not used for K-Means", zap.Stringer("linkage", cfg.Linkage))
		}
		return NewKMeans(points, metric, cfg.Clusters, cfg.Seed, logger)
	default:
		if cfg.Linkage == LinkageSLINK {
			return NewSLINK(points, metric, cfg.Clusters, logger)
		}
		return NewAgglomerative(points, metric, cfg.Linkage, cfg.Clusters, cfg.Workers, logger)
	}
}

// usesReducer reports whether cfg asks for cluster-feature aggregation
// before clustering. Only Lance-Williams runs are aggregated.
func usesReducer(cfg Config) bool {
	return cfg.Algorithm == AlgorithmHierarchical && cfg.Linkage.LanceWilliams() && cfg.AggregationPercentile > 0
}
