package clusterpoints

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fivePoints is a small textbook set: two tight pairs and an outlier.
var fivePoints = []Point{
	{ID: 0, X: 1, Y: 1},
	{ID: 1, X: 2, Y: 1},
	{ID: 2, X: 4, Y: 3},
	{ID: 3, X: 5, Y: 4},
	{ID: 4, X: 1, Y: 5},
}

func TestAgglomerative_FivePointDendrograms(t *testing.T) {
	first := []Merge{
		{Left: 0, Right: 1, ID: -1, Height: 1, Size: 2},
		{Left: 2, Right: 3, ID: -2, Height: 1.4142135623730951, Size: 2},
	}
	tests := []struct {
		linkage Linkage
		rest    []Merge
	}{
		{LinkageWard, []Merge{
			{Left: 4, Right: -2, ID: -3, Height: 4.6810334132634015, Size: 3},
			{Left: -1, Right: -3, ID: -4, Height: 6.481791094924251, Size: 5},
		}},
		{LinkageSingle, []Merge{
			{Left: -1, Right: -2, ID: -3, Height: 2.82842712474619, Size: 4},
			{Left: 4, Right: -3, ID: -4, Height: 3.6055512754639887, Size: 5},
		}},
		{LinkageComplete, []Merge{
			{Left: 4, Right: -2, ID: -3, Height: 4.123105625617661, Size: 3},
			{Left: -1, Right: -3, ID: -4, Height: 5.0, Size: 5},
		}},
		{LinkageAverage, []Merge{
			{Left: 4, Right: -2, ID: -3, Height: 3.8643284505408246, Size: 3},
			{Left: -1, Right: -3, ID: -4, Height: 3.9666207854911875, Size: 5},
		}},
		{LinkageCentroid, []Merge{
			{Left: -1, Right: -2, ID: -3, Height: 3.315601381239092, Size: 4},
			{Left: 4, Right: -3, ID: -4, Height: 2.8322635910684175, Size: 5},
		}},
		{LinkageMedian, []Merge{
			{Left: -1, Right: -2, ID: -3, Height: 3.315601381239092, Size: 4},
			{Left: 4, Right: -3, ID: -4, Height: 2.8322635910684175, Size: 5},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.linkage.String(), func(t *testing.T) {
			a, err := NewAgglomerative(fivePoints, NewMetric(nil, DistanceEuclidean, 0), tt.linkage, 1, 1, nil)
			require.NoError(t, err)
			partition, err := a.Run(context.Background(), nil)
			require.NoError(t, err)

			require.Len(t, partition, 1)
			assert.Len(t, partition[0], 5)

			want := append(append([]Merge{}, first...), tt.rest...)
			got := a.Merges()
			require.Len(t, got, len(want))
			for i := range want {
				assert.Equal(t, want[i].Left, got[i].Left, "merge %d", i)
				assert.Equal(t, want[i].Right, got[i].Right, "merge %d", i)
				assert.Equal(t, want[i].ID, got[i].ID, "merge %d", i)
				assert.Equal(t, want[i].Size, got[i].Size, "merge %d", i)
				assert.InDelta(t, want[i].Height, got[i].Height, 1e-12, "merge %d", i)
			}
		})
	}
}

func TestAgglomerative_StopsAtK(t *testing.T) {
	a, err := NewAgglomerative(fivePoints, NewMetric(nil, DistanceEuclidean, 0), LinkageWard, 2, 1, nil)
	require.NoError(t, err)
	partition, err := a.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Len(t, a.Merges(), 3)
	assert.Equal(t, [][]int64{{0, 1}, {2, 3, 4}}, canonical(partition))
}

func TestAgglomerative_KEqualsN(t *testing.T) {
	a, err := NewAgglomerative(fivePoints, Metric{}, LinkageAverage, 5, 1, nil)
	require.NoError(t, err)
	partition, err := a.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, a.Merges())
	assert.Equal(t, [][]int64{{0}, {1}, {2}, {3}, {4}}, canonical(partition))
}

func TestAgglomerative_WorkersAgree(t *testing.T) {
	points := randomPoints(60, 5)
	metric := NewMetric(nil, DistanceManhattan, 0)

	run := func(workers int) []Merge {
		a, err := NewAgglomerative(points, metric, LinkageComplete, 4, workers, nil)
		require.NoError(t, err)
		_, err = a.Run(context.Background(), nil)
		require.NoError(t, err)
		return a.Merges()
	}

	serial := run(1)
	for _, workers := range []int{2, 3, 8} {
		assert.Equal(t, serial, run(workers), "workers=%d", workers)
	}
}

func TestAgglomerative_ReportsProgress(t *testing.T) {
	points := randomPoints(21, 8)
	a, err := NewAgglomerative(points, Metric{}, LinkageAverage, 1, 1, nil)
	require.NoError(t, err)

	var reports []int
	_, err = a.Run(context.Background(), func(p int) { reports = append(reports, p) })
	require.NoError(t, err)

	require.Len(t, reports, 20)
	for i, p := range reports {
		assert.Equal(t, 5*(i+1), p)
	}
}

func TestAgglomerative_RejectsSLINK(t *testing.T) {
	_, err := NewAgglomerative(fivePoints, Metric{}, LinkageSLINK, 2, 1, nil)
	assert.True(t, errors.Is(err, ErrUnknownLinkage))

	_, err = NewAgglomerative(fivePoints, Metric{}, LinkageWard, 6, 1, nil)
	assert.True(t, errors.Is(err, ErrTooFewPoints))
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestAgglomerative_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, err := NewAgglomerative(randomPoints(30, 1), Metric{}, LinkageWard, 2, 4, nil)
	require.NoError(t, err)
	_, err = a.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
