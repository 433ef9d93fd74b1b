package clusterpoints

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// lwNode is a cluster in the Lance-Williams arena. id follows the logical
// scheme: points get n-1 … 0 in input order, merges get -1, -2, …
type lwNode struct {
	id      int
	members []int
}

// Agglomerative builds clusters bottom-up with Lance-Williams distance
// updates until exactly k clusters remain. It keeps a packed triangular
// cache of the distances between all live clusters, so memory is O(n²) and
// time O(n³); it is meant for small or pre-aggregated point sets.
type Agglomerative struct {
	points  []Point
	metric  Metric
	linkage Linkage
	k       int
	workers int
	logger  *zap.Logger

	merges []Merge
}

// NewAgglomerative prepares a Lance-Williams run. linkage must be one of the
// Lance-Williams linkages; LinkageSLINK belongs to the SLINK engine. k may be
// 1, which builds the complete dendrogram.
func NewAgglomerative(points []Point, metric Metric, linkage Linkage, k, workers int, logger *zap.Logger) (*Agglomerative, error) {
	if !linkage.LanceWilliams() {
		return nil, markConfig(errors.Wrapf(ErrUnknownLinkage, "%s is not a Lance-Williams linkage", linkage))
	}
	if k < 1 || k > len(points) {
		return nil, markConfig(errors.Wrapf(ErrTooFewPoints, "%d points for %d clusters", len(points), k))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agglomerative{
		points:  points,
		metric:  metric,
		linkage: linkage,
		k:       k,
		workers: workers,
		logger:  logger.With(zap.String("engine", "lance-williams"), zap.Stringer("linkage", linkage)),
	}, nil
}

func (a *Agglomerative) Name() string {
	return "Hierarchical clustering using Lance-Williams distance updates"
}

// Merges returns the merges performed by a finished run, in order.
func (a *Agglomerative) Merges() []Merge { return a.merges }

// Run performs the n-k merges. Each step merges the globally closest pair
// (the first one found on ties), derives the distances of the new cluster
// with the linkage recurrence and retires both merged clusters. ctx is
// checked once per merge.
func (a *Agglomerative) Run(ctx context.Context, report ProgressFunc) (Partition, error) {
	n := len(a.points)
	a.logger.Info("building cluster tree", zap.Int("points", n), zap.Int("clusters", a.k))

	// Arena slots start out as input indices. A merge reuses the slot of its
	// first cluster and frees the other, so the cache never grows.
	nodes := make([]lwNode, n)
	alive := make([]int, n)
	for i := range nodes {
		nodes[i] = lwNode{id: n - 1 - i, members: []int{i}}
		alive[i] = i
	}

	cache := make([]float64, triSize(n))
	if err := fillDistanceCache(ctx, cache, a.points, a.metric, a.workers); err != nil {
		return nil, err
	}

	leaf := func(id int) int {
		if id >= 0 {
			return n - 1 - id
		}
		return id
	}

	lastStep := 0
	for current := -1; current >= a.k-n; current-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// alive is ordered by decreasing id, so every pair is visited as
		// (higher id, lower id) exactly as a scan over the id order would.
		closest := math.MaxFloat64
		ai, aj := 0, 1
		for x := 0; x < len(alive); x++ {
			row := alive[x]
			for y := x + 1; y < len(alive); y++ {
				if d := cache[triIndex(row, alive[y])]; d < closest {
					closest, ai, aj = d, x, y
				}
			}
		}

		si, sj := alive[ai], alive[aj]
		ni, nj := nodes[si], nodes[sj]
		sizeI, sizeJ := float64(len(ni.members)), float64(len(nj.members))

		for _, sl := range alive {
			if sl == si || sl == sj {
				continue
			}
			il, jl := triIndex(sl, si), triIndex(sl, sj)
			c := a.linkage.coefficients(sizeI, sizeJ, float64(len(nodes[sl].members)))
			cache[il] = c.update(cache[il], cache[jl], closest)
		}

		members := make([]int, 0, len(ni.members)+len(nj.members))
		members = append(members, ni.members...)
		members = append(members, nj.members...)
		nodes[si] = lwNode{id: current, members: members}
		nodes[sj] = lwNode{}

		a.merges = append(a.merges, Merge{
			Left:   leaf(ni.id),
			Right:  leaf(nj.id),
			ID:     current,
			Height: closest,
			Size:   len(members),
		})

		copy(alive[aj:], alive[aj+1:])
		alive = alive[:len(alive)-1]
		copy(alive[ai:], alive[ai+1:])
		alive[len(alive)-1] = si

		if step := 20 * current / (a.k - n); step > lastStep {
			lastStep = step
			a.logger.Info("cluster tree built", zap.Int("progress", 5*step))
			if report != nil {
				report(5 * step)
			}
		}
	}
	a.logger.Info("cluster tree fully computed", zap.Int("merges", len(a.merges)))

	partition := make(Partition, 0, len(alive))
	for _, slot := range alive {
		ids := make([]int64, len(nodes[slot].members))
		for j, i := range nodes[slot].members {
			ids[j] = a.points[i].ID
		}
		partition = append(partition, ids)
	}
	return partition, nil
}
