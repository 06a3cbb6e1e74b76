// Package graph holds the directed task graph behind a workflow: construction
// from editor links, acyclicity checks, path-cover decomposition and layered
// layout. Every traversal follows node insertion order so results are stable
// across runs.
package graph

import (
	werrors "github.com/maxkimambo/windmill/internal/errors"
)

// Edge is a directed dependency: From runs before To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a directed graph whose nodes and edges keep insertion order.
// Parallel edges collapse into one.
type Graph struct {
	nodes []string
	index map[string]int
	succ  map[string][]string
	pred  map[string][]string
	edges int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[string]int),
		succ:  make(map[string][]string),
		pred:  make(map[string][]string),
	}
}

// AddNode adds a node if it is not already present.
func (g *Graph) AddNode(id string) {
	if _, ok := g.index[id]; ok {
		return
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, id)
}

// AddEdge adds from -> to, creating missing nodes.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if g.HasEdge(from, to) {
		return
	}
	g.succ[from] = append(g.succ[from], to)
	g.pred[to] = append(g.pred[to], from)
	g.edges++
}

// RemoveEdge deletes from -> to. Both nodes stay in the graph.
func (g *Graph) RemoveEdge(from, to string) {
	if !g.HasEdge(from, to) {
		return
	}
	g.succ[from] = without(g.succ[from], to)
	g.pred[to] = without(g.pred[to], from)
	g.edges--
}

// HasNode reports whether id is a node.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// HasEdge reports whether from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	for _, n := range g.succ[from] {
		if n == to {
			return true
		}
	}
	return false
}

// Nodes returns node ids in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Edges returns every edge, grouped by source in node order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for _, from := range g.nodes {
		for _, to := range g.succ[from] {
			out = append(out, Edge{From: from, To: to})
		}
	}
	return out
}

// Successors returns the direct downstream nodes of id in insertion order.
func (g *Graph) Successors(id string) []string {
	return append([]string(nil), g.succ[id]...)
}

// Predecessors returns the direct upstream nodes of id in insertion order.
func (g *Graph) Predecessors(id string) []string {
	return append([]string(nil), g.pred[id]...)
}

func (g *Graph) NodeCount() int { return len(g.nodes) }

func (g *Graph) EdgeCount() int { return g.edges }

// Clone returns an independent copy.
func (g *Graph) Clone() *Graph {
	c := New()
	for _, n := range g.nodes {
		c.AddNode(n)
	}
	for _, e := range g.Edges() {
		c.AddEdge(e.From, e.To)
	}
	return c
}

// LinkEnds is an editor connection between two nodes. Reversed is set when
// the link was drawn from an input port to an output port.
type LinkEnds struct {
	FromNode string
	ToNode   string
	Reversed bool
}

// BuildFromLinks creates the task graph described by links. idMapping maps
// editor node ids to task identifiers; a link naming an unknown node is an
// error, as is any cycle.
func BuildFromLinks(links []LinkEnds, idMapping map[string]string) (*Graph, error) {
	g := New()
	for _, l := range links {
		from, to := l.FromNode, l.ToNode
		if l.Reversed {
			from, to = to, from
		}
		src, ok := idMapping[from]
		if !ok {
			return nil, werrors.NewUnresolvedLinkError(from)
		}
		dst, ok := idMapping[to]
		if !ok {
			return nil, werrors.NewUnresolvedLinkError(to)
		}
		g.AddEdge(src, dst)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate rejects graphs with a cycle, self loops included.
func (g *Graph) Validate() error {
	if order := g.topoOrder(); len(order) == len(g.nodes) {
		return nil
	}
	return werrors.NewCycleError(g.findCycle())
}

func without(list []string, v string) []string {
	out := list[:0:0]
	for _, n := range list {
		if n != v {
			out = append(out, n)
		}
	}
	return out
}
