package clusterpoints

import (
	"cmp"
	"slices"
)

// Merge is one step of a dendrogram. Left and Right are node ids: leaves are
// input indices (0..n-1), merged clusters are -1, -2, … in creation order.
// ID is the id of the cluster the merge creates, Height the linkage distance
// at which it happens and Size its member count.
type Merge struct {
	Left, Right int
	ID          int
	Height      float64
	Size        int
}

// mergeID maps a union-find label to the dendrogram id scheme.
func mergeID(label, n int) int {
	if label < n {
		return label
	}
	return n - 1 - label
}

// pointerToMerges expands an SLINK pointer representation into the n-1
// merges of the single-linkage dendrogram. Each point p < n-1 joins the
// cluster of pi[p] at height lambda[p]; replaying those links in order of
// height through a union-find yields the merges. Equal heights keep point
// order.
func pointerToMerges(pi []int, lambda []float64) []Merge {
	n := len(pi)
	if n < 2 {
		return nil
	}

	links := make([]int, n-1)
	for p := range links {
		links[p] = p
	}
	slices.SortStableFunc(links, func(a, b int) int {
		return cmp.Compare(lambda[a], lambda[b])
	})

	uf := newUnionFind(n)
	merges := make([]Merge, 0, n-1)
	for _, p := range links {
		ra, rb := uf.find(p), uf.find(pi[p])
		label := uf.merge(ra, rb)
		merges = append(merges, Merge{
			Left:   mergeID(ra, n),
			Right:  mergeID(rb, n),
			ID:     mergeID(label, n),
			Height: lambda[p],
			Size:   uf.size[label],
		})
	}
	return merges
}
