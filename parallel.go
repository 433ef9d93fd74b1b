package clusterpoints

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// triIndex returns the position of the unordered slot pair (a, b), a != b,
// in a packed lower-triangular array.
func triIndex(a, b int) int {
	if a < b {
		a, b = b, a
	}
	return a*(a-1)/2 + b
}

// triSize is the length of a packed lower-triangular array over n slots.
func triSize(n int) int {
	return n * (n - 1) / 2
}

// fillDistanceCache computes the distance between every pair of points into
// cache, laid out by triIndex. Work is split into contiguous row blocks, one
// per worker; rows never overlap, so writes need no synchronization. With
// workers <= 1 it runs on the calling goroutine. ctx is checked once per row.
//
// The result is identical for any worker count.
func fillDistanceCache(ctx context.Context, cache []float64, points []Point, metric Metric, workers int) error {
	n := len(points)
	if workers <= 1 || n <= 2 {
		return fillDistanceRows(ctx, cache, points, metric, 1, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	rowsPerWorker := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= n {
			break
		}
		g.Go(func() error {
			return fillDistanceRows(gctx, cache, points, metric, max(start, 1), end)
		})
	}
	return g.Wait()
}

func fillDistanceRows(ctx context.Context, cache []float64, points []Point, metric Metric, start, end int) error {
	for a := start; a < end; a++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := a * (a - 1) / 2
		for b := 0; b < a; b++ {
			cache[row+b] = metric.Distance(points[b], points[a])
		}
	}
	return nil
}
