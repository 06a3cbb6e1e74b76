package graph

import (
	"container/heap"

	werrors "github.com/maxkimambo/windmill/internal/errors"
)

type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoOrder runs Kahn's algorithm with the ready set ordered by insertion
// index. The result is short when the graph has a cycle.
func (g *Graph) topoOrder() []string {
	indeg := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		indeg[n] = len(g.pred[n])
	}

	ready := &indexHeap{}
	for i, n := range g.nodes {
		if indeg[n] == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]string, 0, len(g.nodes))
	for ready.Len() > 0 {
		n := g.nodes[heap.Pop(ready).(int)]
		out = append(out, n)
		for _, m := range g.succ[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, g.index[m])
			}
		}
	}
	return out
}

// TopologicalSort returns the nodes so that every edge points forward.
func (g *Graph) TopologicalSort() ([]string, error) {
	order := g.topoOrder()
	if len(order) != len(g.nodes) {
		return nil, werrors.NewCycleError(g.findCycle())
	}
	return order, nil
}

// findCycle returns one cycle as a closed walk, first node repeated at the end.
func (g *Graph) findCycle() []string {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(g.nodes))
	parent := make(map[string]string, len(g.nodes))
	var cycle []string

	var visit func(u string) bool
	visit = func(u string) bool {
		color[u] = grey
		for _, v := range g.succ[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if visit(v) {
					return true
				}
			case grey:
				walk := []string{v}
				for cur := u; cur != v; cur = parent[cur] {
					walk = append(walk, cur)
				}
				walk = append(walk, v)
				for i, j := 0, len(walk)-1; i < j; i, j = i+1, j-1 {
					walk[i], walk[j] = walk[j], walk[i]
				}
				cycle = walk
				return true
			}
		}
		color[u] = black
		return false
	}

	for _, n := range g.nodes {
		if color[n] == white && visit(n) {
			break
		}
	}
	return cycle
}

// LongestPath returns a longest path counted in edges. Among predecessors
// with equal distance the first inserted wins; among end nodes with equal
// distance the one latest in topological order wins. A graph without edges
// yields its last node alone, and an empty graph yields nil.
func (g *Graph) LongestPath() []string {
	order := g.topoOrder()
	if len(order) == 0 {
		return nil
	}

	dist := make(map[string]int, len(order))
	prev := make(map[string]string, len(order))
	end, best := order[0], 0
	for _, v := range order {
		d := 0
		for _, u := range g.pred[v] {
			if dist[u]+1 > d {
				d = dist[u] + 1
				prev[v] = u
			}
		}
		dist[v] = d
		if d >= best {
			end, best = v, d
		}
	}

	path := []string{end}
	for cur := end; ; {
		p, ok := prev[cur]
		if !ok {
			break
		}
		path = append(path, p)
		cur = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Decompose covers the edges of an acyclic graph with simple paths by
// repeatedly taking the longest remaining path and deleting its edges. Each
// edge belongs to exactly one returned path. g is not modified.
func Decompose(g *Graph) [][]string {
	work := g.Clone()
	var paths [][]string
	for work.EdgeCount() > 0 {
		path := work.LongestPath()
		if len(path) < 2 {
			break
		}
		for i := 0; i+1 < len(path); i++ {
			work.RemoveEdge(path[i], path[i+1])
		}
		paths = append(paths, path)
	}
	return paths
}
