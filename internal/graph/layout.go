package graph

// Point is a node position on the editor canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutOptions sizes the layout grid.
type LayoutOptions struct {
	NodeWidth     float64
	NodeHeight    float64
	SpacingFactor float64
}

// DefaultLayoutOptions matches the editor's node size.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{NodeWidth: 200, NodeHeight: 80, SpacingFactor: 2}
}

// Levels groups nodes by their distance from a root: level 0 holds nodes
// without predecessors, every other node sits one below its deepest
// predecessor. Nodes appear in topological order within a level.
func (g *Graph) Levels() [][]string {
	level := make(map[string]int, len(g.nodes))
	var levels [][]string
	for _, n := range g.topoOrder() {
		l := 0
		for _, p := range g.pred[n] {
			if level[p]+1 > l {
				l = level[p] + 1
			}
		}
		level[n] = l
		for len(levels) <= l {
			levels = append(levels, nil)
		}
		levels[l] = append(levels[l], n)
	}
	return levels
}

// Layout places nodes on a grid, one row per level, with every row centred
// on the same vertical axis.
func Layout(g *Graph, opts LayoutOptions) map[string]Point {
	levels := g.Levels()
	maxWidth := 0
	for _, lv := range levels {
		if len(lv) > maxWidth {
			maxWidth = len(lv)
		}
	}

	cellW := opts.NodeWidth * opts.SpacingFactor
	cellH := opts.NodeHeight * opts.SpacingFactor
	points := make(map[string]Point, len(g.nodes))
	for l, lv := range levels {
		step := float64(maxWidth+1) / float64(len(lv)+1)
		for i, n := range lv {
			points[n] = Point{
				X: float64(i+1) * step * cellW,
				Y: float64(l+1) * cellH,
			}
		}
	}
	return points
}
