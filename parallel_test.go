package clusterpoints

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriIndex_Packs(t *testing.T) {
	const n = 7
	seen := make([]bool, triSize(n))
	for a := 0; a < n; a++ {
		for b := 0; b < a; b++ {
			idx := triIndex(a, b)
			require.Less(t, idx, len(seen))
			assert.False(t, seen[idx], "slot (%d,%d) collides", a, b)
			seen[idx] = true
			assert.Equal(t, idx, triIndex(b, a))
		}
	}
	for i, ok := range seen {
		assert.True(t, ok, "slot %d unused", i)
	}
}

func TestFillDistanceCache_WorkersAgree(t *testing.T) {
	points := randomPoints(101, 17)
	metric := NewMetric(nil, DistanceManhattan, 0)

	serial := make([]float64, triSize(len(points)))
	require.NoError(t, fillDistanceCache(context.Background(), serial, points, metric, 1))

	for _, workers := range []int{2, 3, 7, 16, 200} {
		parallel := make([]float64, triSize(len(points)))
		require.NoError(t, fillDistanceCache(context.Background(), parallel, points, metric, workers))
		assert.Equal(t, serial, parallel, "workers=%d", workers)
	}

	assert.Equal(t, metric.Distance(points[3], points[9]), serial[triIndex(9, 3)])
}

func TestFillDistanceCache_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	points := randomPoints(50, 1)
	cache := make([]float64, triSize(len(points)))
	err := fillDistanceCache(ctx, cache, points, Metric{}, 4)
	assert.ErrorIs(t, err, context.Canceled)
}
