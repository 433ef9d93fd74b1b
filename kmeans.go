package clusterpoints

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// machineEpsilon is the float64 spacing at 1.0.
const machineEpsilon = 0x1p-52

// convergenceTolerance is the largest centroid shift that still counts as
// converged. It is fixed; there is no iteration cap, so cancellation is the
// only way out of a run that does not converge.
const convergenceTolerance = 10 * machineEpsilon

// KMeans partitions points into k clusters with K-means++ seeding followed
// by Lloyd iteration. A KMeans value runs once.
type KMeans struct {
	points []Point
	metric Metric
	k      int
	rng    *rand.Rand
	logger *zap.Logger
	debug  *rate.Sometimes

	centroids []Point
	costs     []float64
}

// NewKMeans prepares a K-means run. The seed makes the run reproducible:
// the same seed, points and point order give the same partition.
func NewKMeans(points []Point, metric Metric, k int, seed int64, logger *zap.Logger) (*KMeans, error) {
	if k < 1 || k > len(points) {
		return nil, markConfig(errors.Wrapf(ErrTooFewPoints, "%d points for %d clusters", len(points), k))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KMeans{
		points: points,
		metric: metric,
		k:      k,
		rng:    rand.New(rand.NewPCG(uint64(seed), 0)),
		logger: logger.With(zap.String("engine", "kmeans")),
		debug:  &rate.Sometimes{First: 1, Interval: time.Second},
	}, nil
}

func (km *KMeans) Name() string { return "K-Means clustering" }

// Centroids returns the final cluster centers of a finished run.
func (km *KMeans) Centroids() []Point { return km.centroids }

// Costs returns the total point-to-center distance of every Lloyd round,
// measured at assignment time.
func (km *KMeans) Costs() []float64 { return km.costs }

// Rounds returns the number of Lloyd rounds performed.
func (km *KMeans) Rounds() int { return len(km.costs) }

// Run seeds the centers and iterates until the largest centroid shift drops
// below the convergence tolerance. It fails with ErrEmptyCluster when a
// round leaves a cluster empty and checks ctx once per round.
func (km *KMeans) Run(ctx context.Context, _ ProgressFunc) (Partition, error) {
	km.logger.Info("initializing clusters with k-means++", zap.Int("points", len(km.points)))
	centers, err := km.seed()
	if err != nil {
		return nil, err
	}
	km.logger.Info("clusters initialized", zap.Int("clusters", km.k))

	n := len(km.points)
	assign := make([]int, n)
	members := make([][]int, km.k)
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	zs := make([]float64, 0, n)

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var cost float64
		for i, p := range km.points {
			best, bestDist := 0, math.MaxFloat64
			for c := range centers {
				if d := km.metric.Distance(centers[c], p); d < bestDist {
					best, bestDist = c, d
				}
			}
			assign[i] = best
			cost += bestDist
		}
		km.costs = append(km.costs, cost)

		for c := range members {
			members[c] = members[c][:0]
		}
		for i, c := range assign {
			members[c] = append(members[c], i)
		}

		var shift float64
		for c := range centers {
			if len(members[c]) == 0 {
				km.logger.Error("algorithm failed", zap.Int("iteration", round))
				return nil, errors.WithHint(
					errors.Wrapf(ErrEmptyCluster, "cluster %d is empty after %d iterations", c, round),
					"choose a different random seed or a smaller number of clusters")
			}
			xs, ys, zs = xs[:0], ys[:0], zs[:0]
			for _, i := range members[c] {
				p := km.points[i]
				xs, ys, zs = append(xs, p.X), append(ys, p.Y), append(zs, p.Z)
			}
			center := Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil), Z: stat.Mean(zs, nil)}
			shift = max(shift, km.metric.Distance(center, centers[c]))
			centers[c] = center
		}

		km.debug.Do(func() {
			km.logger.Debug("lloyd round", zap.Int("iteration", round),
				zap.Float64("shift", shift), zap.Float64("cost", cost))
		})

		if shift < convergenceTolerance {
			km.logger.Info("converged", zap.Int("iterations", round))
			break
		}
	}

	km.centroids = centers
	partition := make(Partition, km.k)
	for c := range members {
		ids := make([]int64, len(members[c]))
		for j, i := range members[c] {
			ids[j] = km.points[i].ID
		}
		partition[c] = ids
	}
	return partition, nil
}

// seed picks k initial centers with K-means++ (Arthur & Vassilvitskii, 2007):
// the first uniformly, each next one with probability proportional to its
// distance to the nearest center chosen so far.
func (km *KMeans) seed() ([]Point, error) {
	n := len(km.points)
	first := km.points[km.rng.IntN(n)]
	centers := make([]Point, 0, km.k)
	centers = append(centers, Point{X: first.X, Y: first.Y, Z: first.Z})

	nearest := make([]float64, n)
	for i := range nearest {
		nearest[i] = math.Inf(1)
	}
	cum := make([]float64, n)

	for len(centers) < km.k {
		last := centers[len(centers)-1]
		for i, p := range km.points {
			nearest[i] = min(nearest[i], km.metric.Distance(last, p))
		}

		floats.CumSum(cum, nearest)
		total := cum[n-1]
		if !(total > 0) || math.IsInf(total, 1) {
			return nil, errors.WithHint(
				errors.Wrapf(ErrEmptyCluster, "only %d distinct seed points for %d clusters", len(centers), km.k),
				"choose a smaller number of clusters")
		}

		r := km.rng.Float64() * total
		idx := sort.Search(n, func(i int) bool { return cum[i] > r })
		if idx == n {
			idx = n - 1
		}
		p := km.points[idx]
		centers = append(centers, Point{X: p.X, Y: p.Y, Z: p.Z})
	}
	return centers, nil
}
