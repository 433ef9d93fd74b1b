package clusterpoints

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// SLINK computes single-linkage clusters with Sibson's SLINK algorithm
// (1973) in O(n²) time and O(n) memory. The dendrogram is kept in pointer
// representation: pi[p] is the point p joins next and lambda[p] the height at
// which it does so; the last point has pi = itself and lambda = +Inf.
type SLINK struct {
	points []Point
	metric Metric
	k      int
	logger *zap.Logger

	pi     []int
	lambda []float64
}

// NewSLINK prepares a SLINK run producing k clusters, 1 <= k <= len(points).
func NewSLINK(points []Point, metric Metric, k int, logger *zap.Logger) (*SLINK, error) {
	if k < 1 || k > len(points) {
		return nil, markConfig(errors.Wrapf(ErrTooFewPoints, "%d points for %d clusters", len(points), k))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SLINK{
		points: points,
		metric: metric,
		k:      k,
		logger: logger.With(zap.String("engine", "slink")),
	}, nil
}

func (s *SLINK) Name() string { return "Hierarchical clustering using SLINK" }

// Pointer returns the pointer representation of a finished run.
func (s *SLINK) Pointer() (pi []int, lambda []float64) { return s.pi, s.lambda }

// Merges returns the full single-linkage dendrogram of a finished run.
func (s *SLINK) Merges() []Merge { return pointerToMerges(s.pi, s.lambda) }

// Run builds the pointer representation point by point and cuts it into k
// clusters. ctx is checked once per inserted point.
func (s *SLINK) Run(ctx context.Context, report ProgressFunc) (Partition, error) {
	n := len(s.points)
	s.logger.Info("building cluster tree", zap.Int("points", n), zap.Int("clusters", s.k))

	pi := make([]int, n)
	lambda := make([]float64, n)
	m := make([]float64, n)
	lambda[0] = math.Inf(1)

	lastStep := 0
	for i := 1; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pi[i] = i
		lambda[i] = math.Inf(1)
		for p := 0; p < i; p++ {
			m[p] = s.metric.Distance(s.points[p], s.points[i])
		}

		for p := 0; p < i; p++ {
			if lambda[p] >= m[p] {
				m[pi[p]] = min(m[pi[p]], lambda[p])
				lambda[p] = m[p]
				pi[p] = i
			} else {
				m[pi[p]] = min(m[pi[p]], m[p])
			}
		}

		// Re-point p at i when its successor merges no higher than p
		// itself; the chain heights must rise strictly.
		for p := 0; p < i; p++ {
			if lambda[p] >= lambda[pi[p]] {
				pi[p] = i
			}
		}

		if step := 20 * i / n; step > lastStep {
			lastStep = step
			s.logger.Info("cluster tree built", zap.Int("progress", 5*step))
			if report != nil {
				report(5 * step)
			}
		}
	}
	s.pi, s.lambda = pi, lambda
	s.logger.Info("cluster tree fully computed")

	return s.extract(), nil
}

// extract cuts the k-1 highest links of the pointer representation. Each
// cut point becomes the root of a cluster holding every point whose pointer
// chain leads to it without passing another root. Roots are processed from
// the lowest cut to the highest, so nested finer clusters claim their points
// before the coarser clusters around them. Whatever no root claims forms the
// last cluster.
func (s *SLINK) extract() Partition {
	n := len(s.points)

	roots := make([]int, n-1)
	for p := range roots {
		roots[p] = p
	}
	slices.SortFunc(roots, func(a, b int) int {
		if c := cmp.Compare(s.lambda[a], s.lambda[b]); c != 0 {
			return c
		}
		// Among equal heights the lowest index is cut first and
		// processed last.
		return cmp.Compare(b, a)
	})
	roots = roots[len(roots)-(s.k-1):]

	children := make([][]int, n)
	for p := 0; p < n; p++ {
		if q := s.pi[p]; q != p {
			children[q] = append(children[q], p)
		}
	}

	claimed := make([]bool, n)
	partition := make(Partition, 0, s.k)
	var stack []int
	for _, root := range roots {
		claimed[root] = true
		members := []int64{s.points[root].ID}
		stack = append(stack[:0], root)
		for len(stack) > 0 {
			q := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			// A claimed child heads a finer cluster whose whole subtree
			// is already taken.
			for c := len(children[q]) - 1; c >= 0; c-- {
				child := children[q][c]
				if claimed[child] {
					continue
				}
				claimed[child] = true
				members = append(members, s.points[child].ID)
				stack = append(stack, child)
			}
		}
		partition = append(partition, members)
	}

	rest := make([]int64, 0, n)
	for p := 0; p < n; p++ {
		if !claimed[p] {
			rest = append(rest, s.points[p].ID)
		}
	}
	return append(partition, rest)
}
