package clusterpoints

// unionFind is a disjoint-set forest with path compression over 2n-1
// elements: points 0..n-1 and merged clusters n..2n-2. Every merge creates a
// fresh root label, so the labels replay the merge order of a dendrogram.
type unionFind struct {
	parent []int
	size   []int
	// next is the label of the next merged cluster, starting at n.
	next int
}

func newUnionFind(n int) *unionFind {
	total := max(2*n-1, 1)
	parent := make([]int, total)
	size := make([]int, total)
	for i := range parent {
		parent[i] = -1 // root
	}
	for i := 0; i < n; i++ {
		size[i] = 1
	}
	return &unionFind{parent: parent, size: size, next: n}
}

// find returns the root label of the set containing x.
func (uf *unionFind) find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// merge joins the sets rooted at ra and rb under a new label and returns it.
// Both arguments must be roots of different sets.
func (uf *unionFind) merge(ra, rb int) int {
	label := uf.next
	uf.size[label] = uf.size[ra] + uf.size[rb]
	uf.parent[ra] = label
	uf.parent[rb] = label
	uf.next++
	return label
}
