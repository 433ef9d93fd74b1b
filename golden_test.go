package clusterpoints

import (
	"cmp"
	"context"
	"encoding/json"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

type goldenLinkage struct {
	Clusters [][]int64  `json:"clusters"`
	Merges   [][]float64 `json:"merges"`
	Pi       []int       `json:"pi"`
	Lambda   []float64   `json:"lambda"`
}

type goldenData struct {
	Dataset          string                   `json:"dataset"`
	K                int                      `json:"k"`
	AttributePercent float64                  `json:"attribute_percent"`
	Manhattan        bool                     `json:"manhattan"`
	Points           [][]float64              `json:"points"`
	Linkages         map[string]goldenLinkage `json:"linkages"`
}

const floatTolerance = 1e-9

var goldenFiles = []string{
	"golden_blobs_euclidean.json",
	"golden_blobs_euclidean_attr.json",
	"golden_blobs_manhattan_attr.json",
}

func loadGoldenFile(t *testing.T, name string) goldenData {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	var g goldenData
	require.NoError(t, json.Unmarshal(raw, &g))
	return g
}

// points uses the input index as ID and the raw attribute as Z.
func (g goldenData) points() []Point {
	points := make([]Point, len(g.Points))
	for i, p := range g.Points {
		points[i] = Point{ID: int64(i), X: p[0], Y: p[1], Z: p[2]}
	}
	return points
}

func (g goldenData) metric() Metric {
	dt := DistanceEuclidean
	if g.Manhattan {
		dt = DistanceManhattan
	}
	return NewMetric(PlanarOracle{}, dt, g.AttributePercent)
}

// canonical sorts the members of every cluster and then the clusters by
// their smallest member, so partitions compare independent of label order.
func canonical(p [][]int64) [][]int64 {
	out := make([][]int64, len(p))
	for i, ids := range p {
		out[i] = slices.Sorted(slices.Values(ids))
	}
	slices.SortFunc(out, func(a, b []int64) int {
		if len(a) == 0 || len(b) == 0 {
			return cmp.Compare(len(a), len(b))
		}
		return cmp.Compare(a[0], b[0])
	})
	return out
}

func randomPoints(n int, seed uint64) []Point {
	rng := rand.New(rand.NewPCG(seed, 0))
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{ID: int64(i), X: rng.Float64() * 100, Y: rng.Float64() * 100}
	}
	return points
}

// blobPoints places perBlob points within half a unit of every center. IDs
// run blob by blob.
func blobPoints(centers []r2.Vec, perBlob int, seed uint64) []Point {
	rng := rand.New(rand.NewPCG(seed, 0))
	points := make([]Point, 0, len(centers)*perBlob)
	for _, c := range centers {
		for range perBlob {
			points = append(points, Point{
				ID: int64(len(points)),
				X:  c.X + rng.Float64() - 0.5,
				Y:  c.Y + rng.Float64() - 0.5,
			})
		}
	}
	return points
}

func TestGolden_LanceWilliams(t *testing.T) {
	for _, file := range goldenFiles {
		g := loadGoldenFile(t, file)
		for _, l := range Linkages()[1:] {
			t.Run(g.Dataset+"/"+l.String(), func(t *testing.T) {
				want, ok := g.Linkages[l.String()]
				require.True(t, ok)

				a, err := NewAgglomerative(g.points(), g.metric(), l, g.K, 2, nil)
				require.NoError(t, err)
				partition, err := a.Run(context.Background(), nil)
				require.NoError(t, err)

				assert.Equal(t, canonical(want.Clusters), canonical(partition))

				merges := a.Merges()
				require.Len(t, merges, len(want.Merges))
				for i, m := range want.Merges {
					got := merges[i]
					assert.Equal(t, int(m[0]), got.Left, "merge %d left", i)
					assert.Equal(t, int(m[1]), got.Right, "merge %d right", i)
					assert.Equal(t, int(m[2]), got.ID, "merge %d id", i)
					assert.InDelta(t, m[3], got.Height, floatTolerance, "merge %d height", i)
					assert.Equal(t, int(m[4]), got.Size, "merge %d size", i)
				}
			})
		}
	}
}

func TestGolden_SLINK(t *testing.T) {
	for _, file := range goldenFiles {
		g := loadGoldenFile(t, file)
		t.Run(g.Dataset, func(t *testing.T) {
			want := g.Linkages["slink"]

			s, err := NewSLINK(g.points(), g.metric(), g.K, nil)
			require.NoError(t, err)
			partition, err := s.Run(context.Background(), nil)
			require.NoError(t, err)

			assert.Equal(t, canonical(want.Clusters), canonical(partition))

			pi, lambda := s.Pointer()
			n := len(g.Points)
			assert.Equal(t, want.Pi, pi)
			require.Len(t, want.Lambda, n-1)
			for p := range want.Lambda {
				assert.InDelta(t, want.Lambda[p], lambda[p], floatTolerance, "lambda[%d]", p)
			}
			assert.Equal(t, n-1, pi[n-1])
			assert.True(t, math.IsInf(lambda[n-1], 1))
		})
	}
}

func TestGolden_SingleLinkageAgreement(t *testing.T) {
	for _, file := range goldenFiles {
		g := loadGoldenFile(t, file)
		assert.Equal(t,
			canonical(g.Linkages["slink"].Clusters),
			canonical(g.Linkages["single"].Clusters),
			g.Dataset)
	}
}
