// Package clusterpoints partitions point locations into a requested number
// of clusters, optionally blending a numeric attribute into the distance.
//
// Two families are available: K-means with K-means++ seeding, and
// hierarchical clustering with either Sibson's SLINK (single linkage in
// O(n²) time and O(n) memory) or the Lance-Williams engine for single,
// complete, median, average, Ward and centroid linkage.
//
// Basic usage:
//
//	cfg := clusterpoints.DefaultConfig()
//	cfg.Clusters = 5
//	res, err := clusterpoints.Cluster(ctx, observations, cfg)
//	// res.Labels[id] is the cluster of the point with that ID
//
// # Distance
//
// The distance between two points blends planar length, measured by a
// DistanceOracle, with the standardized attribute difference:
//
//	d = (1 - pz/100)·planar + pz/100·|Δz|
//
// With Manhattan distance the planar leg is the sum of four axis-aligned
// legs and the attribute term is doubled. See Metric.
//
// # Tasks
//
// Every engine runs inside a Task, which owns a worker goroutine, exposes
// coarse progress and honours cancellation. Cluster drives its tasks with
// Poll; callers who need finer control can build engines with NewKMeans,
// NewSLINK or NewAgglomerative and run them through NewTask directly:
//
//	km, err := clusterpoints.NewKMeans(points, metric, 4, 1, logger)
//	task := clusterpoints.NewTask(km.Name(), km.Run, logger, nil)
//	_ = task.Start(ctx)
//	clusterpoints.Poll(ctx, task, time.Second)
//	partition, err := task.Result()
package clusterpoints
