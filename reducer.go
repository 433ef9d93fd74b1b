package clusterpoints

import "context"

// FeatureReducer is the optional cluster-feature (CF) preprocessing step
// that coarsens a large point set before Lance-Williams clustering, whose
// cost grows with the cube of the point count. It is supplied by the caller.
//
// Reduce runs inside its own Task and must honour ctx like an Engine does.
// percentile is the aggregation percentile in [1, 99].
type FeatureReducer interface {
	Reduce(ctx context.Context, points []Point, metric Metric, percentile int, report ProgressFunc) (Reduction, error)
}

// Reduction is the outcome of a FeatureReducer run.
type Reduction interface {
	// Centroids returns one point per cluster feature. Their IDs are
	// cluster-feature ids, not point ids.
	Centroids() []Point

	// Expand maps a cluster of cluster-feature ids back to the ids of the
	// original points they aggregate.
	Expand(features []int64) []int64
}

// expandPartition replaces every cluster of cluster-feature ids with the
// original point ids.
func expandPartition(p Partition, r Reduction) Partition {
	out := make(Partition, len(p))
	for c, features := range p {
		out[c] = r.Expand(features)
	}
	return out
}
