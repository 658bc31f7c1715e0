// Package topo provides a small topological-sort-by-min-heap utility over
// an index-based dependency graph, the shape the task planner (§4.6 of the
// design spec) needs to walk a previous task graph in dependency order.
package topo

import "container/heap"

// Graph describes dependencies purely by index into a caller-owned slice.
// DependsOn(i) lists indices that must be visited before i.
type Graph interface {
	Len() int
	DependsOn(i int) []int
}

type item struct {
	index      int
	unresolved int
}

type minHeap []item

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].unresolved != h[j].unresolved {
		return h[i].unresolved < h[j].unresolved
	}
	return h[i].index < h[j].index
}
func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)   { *h = append(*h, x.(item)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// Sort returns graph indices ordered so that every index appears after all
// indices it DependsOn. Ties among simultaneously ready indices (unresolved
// dependency count 0) are broken by lowest index first. Entries in the
// heap go stale as dependency counts drop; stale pops are re-pushed with
// the current count instead of being acted on twice.
func Sort(g Graph) []int {
	n := g.Len()
	unresolved := make([]int, n)
	dependents := make([][]int, n)
	for i := 0; i < n; i++ {
		deps := g.DependsOn(i)
		unresolved[i] = len(deps)
		for _, d := range deps {
			dependents[d] = append(dependents[d], i)
		}
	}

	h := make(minHeap, 0, n)
	for i := 0; i < n; i++ {
		h = append(h, item{index: i, unresolved: unresolved[i]})
	}
	heap.Init(&h)

	visited := make([]bool, n)
	order := make([]int, 0, n)
	for h.Len() > 0 {
		top := heap.Pop(&h).(item)
		if visited[top.index] {
			continue
		}
		if top.unresolved != unresolved[top.index] {
			// Stale: dependency count changed since this entry was
			// pushed. Re-push with the current count.
			heap.Push(&h, item{index: top.index, unresolved: unresolved[top.index]})
			continue
		}
		visited[top.index] = true
		order = append(order, top.index)
		for _, dep := range dependents[top.index] {
			unresolved[dep]--
			heap.Push(&h, item{index: dep, unresolved: unresolved[dep]})
		}
	}
	return order
}
