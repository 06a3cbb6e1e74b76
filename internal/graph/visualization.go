package graph

import (
	"fmt"
	"strings"
)

// chainColors cycles through fill colours so each decomposed chain is
// recognisable in the rendered graph.
var chainColors = []string{"lightblue", "lightgreen", "khaki", "salmon", "plum", "lightcyan", "peachpuff"}

// NodeInfo describes one node for visualisation.
type NodeInfo struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Level int    `json:"level"`
	Chain int    `json:"chain"` // index of the first chain through the node, -1 if unlinked

	Upstream   []string `json:"upstream,omitempty"`
	Downstream []string `json:"downstream,omitempty"`
}

// Info is a graph together with its decomposition, ready for display.
type Info struct {
	Nodes  []NodeInfo `json:"nodes"`
	Edges  []Edge     `json:"edges"`
	Chains [][]string `json:"chains"`
	Levels [][]string `json:"levels"`
}

// Describe collects the nodes, edges, chains and levels of g. Labels are
// optional per-node captions.
func Describe(g *Graph, labels map[string]string) *Info {
	var chains [][]string
	for _, p := range Decompose(g) {
		if len(p) > 1 {
			chains = append(chains, p)
		}
	}
	levels := g.Levels()

	level := make(map[string]int, g.NodeCount())
	for l, lv := range levels {
		for _, n := range lv {
			level[n] = l
		}
	}
	chainOf := make(map[string]int, g.NodeCount())
	for i := len(chains) - 1; i >= 0; i-- {
		for _, n := range chains[i] {
			chainOf[n] = i
		}
	}

	info := &Info{Edges: g.Edges(), Chains: chains, Levels: levels}
	for _, n := range g.Nodes() {
		c, ok := chainOf[n]
		if !ok {
			c = -1
		}
		info.Nodes = append(info.Nodes, NodeInfo{
			ID:         n,
			Label:      labels[n],
			Level:      level[n],
			Chain:      c,
			Upstream:   g.Predecessors(n),
			Downstream: g.Successors(n),
		})
	}
	return info
}

// DOT renders the graph in Graphviz format. Nodes are coloured by the first
// chain through them; edges carry the colour of the chain that covers them.
func (i *Info) DOT(title string) string {
	var sb strings.Builder
	sb.WriteString("digraph workflow {\n")
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=box, style=\"rounded,filled\"];\n")
	if title != "" {
		fmt.Fprintf(&sb, "  label=%q;\n  labelloc=\"t\";\n", title)
	}
	sb.WriteString("\n")

	for _, n := range i.Nodes {
		label := escapeLabel(n.ID)
		if n.Label != "" {
			label += `\n` + escapeLabel(n.Label)
		}
		fmt.Fprintf(&sb, "  %q [label=\"%s\", fillcolor=%q];\n", n.ID, label, colorOf(n.Chain))
	}
	sb.WriteString("\n")

	for c, chain := range i.Chains {
		for k := 0; k+1 < len(chain); k++ {
			fmt.Fprintf(&sb, "  %q -> %q [color=%q, penwidth=2];\n", chain[k], chain[k+1], colorOf(c))
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Text renders a plain summary: counts, levels and chains.
func (i *Info) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Nodes: %d\nEdges: %d\nChains: %d\n\n", len(i.Nodes), len(i.Edges), len(i.Chains))

	sb.WriteString("Levels:\n")
	for l, lv := range i.Levels {
		fmt.Fprintf(&sb, "  %d: %s\n", l+1, strings.Join(lv, ", "))
	}
	if len(i.Chains) > 0 {
		sb.WriteString("\nChains:\n")
		for _, c := range i.Chains {
			fmt.Fprintf(&sb, "  %s\n", strings.Join(c, " >> "))
		}
	}
	return sb.String()
}

func colorOf(chain int) string {
	if chain < 0 {
		return "white"
	}
	return chainColors[chain%len(chainColors)]
}

func escapeLabel(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
