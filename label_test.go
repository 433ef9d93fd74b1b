package clusterpoints

import (
	"math"
	"testing"
)

func TestMergeID(t *testing.T) {
	tests := []struct {
		label, n, want int
	}{
		{0, 4, 0},
		{3, 4, 3},
		{4, 4, -1},
		{5, 4, -2},
		{6, 4, -3},
	}
	for _, tt := range tests {
		if got := mergeID(tt.label, tt.n); got != tt.want {
			t.Errorf("mergeID(%d, %d) = %d, want %d", tt.label, tt.n, got, tt.want)
		}
	}
}

func TestPointerToMerges_Chain(t *testing.T) {
	// 0 joins 1 at 1.0, 1 joins 2 at 2.0.
	pi := []int{1, 2, 2}
	lambda := []float64{1, 2, math.Inf(1)}

	got := pointerToMerges(pi, lambda)
	want := []Merge{
		{Left: 0, Right: 1, ID: -1, Height: 1, Size: 2},
		{Left: -1, Right: 2, ID: -2, Height: 2, Size: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d merges, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("merge %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPointerToMerges_OutOfOrderHeights(t *testing.T) {
	// Links are replayed by height: 2-3 (0.5) first, then 0-3 (1.5), then 1-3 (3).
	pi := []int{3, 3, 3, 3}
	lambda := []float64{1.5, 3, 0.5, math.Inf(1)}

	got := pointerToMerges(pi, lambda)
	if len(got) != 3 {
		t.Fatalf("expected 3 merges, got %d", len(got))
	}
	if got[0].Left != 2 || got[0].Right != 3 || got[0].Height != 0.5 {
		t.Errorf("first merge = %+v, want 2 and 3 at 0.5", got[0])
	}
	if got[1].Left != 0 || got[1].Right != -1 || got[1].Size != 3 {
		t.Errorf("second merge = %+v, want 0 and -1 with size 3", got[1])
	}
	if got[2].Left != 1 || got[2].Right != -2 || got[2].ID != -3 || got[2].Size != 4 {
		t.Errorf("last merge = %+v, want 1 and -2 into -3 with size 4", got[2])
	}
}

func TestPointerToMerges_Degenerate(t *testing.T) {
	if got := pointerToMerges(nil, nil); got != nil {
		t.Errorf("expected nil for no points, got %v", got)
	}
	if got := pointerToMerges([]int{0}, []float64{math.Inf(1)}); got != nil {
		t.Errorf("expected nil for one point, got %v", got)
	}
}
