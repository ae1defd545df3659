package layout

import "github.com/aretw0/carepath/pkg/graph"

// DFS colouring.
const (
	white = iota
	gray
	black
)

// topology is the index-based view of a graph the layout phases work on.
// Nodes and edges are addressed by declaration index.
type topology struct {
	ids     []string
	src     []int // edge -> source node
	dst     []int // edge -> target node
	out     [][]int
	reach   []bool
	startIx int
}

func newTopology(g *graph.Graph) topology {
	nodes := g.Nodes()
	edges := g.Edges()
	t := topology{
		ids:     make([]string, len(nodes)),
		src:     make([]int, len(edges)),
		dst:     make([]int, len(edges)),
		out:     make([][]int, len(nodes)),
		reach:   make([]bool, len(nodes)),
		startIx: g.Index(g.StartNodeID()),
	}
	reachable := g.Reachable()
	for i, n := range nodes {
		t.ids[i] = n.ID
		t.reach[i] = reachable[n.ID]
	}
	for i, e := range edges {
		t.src[i] = g.Index(e.Source)
		t.dst[i] = g.Index(e.Target)
		t.out[t.src[i]] = append(t.out[t.src[i]], i)
	}
	return t
}

// ranking is the result of the first phase.
type ranking struct {
	rank []int  // by node
	back []bool // by edge; true when the DFS closed a cycle through it
	max  int
}

// rankNodes assigns every node its longest-path distance from a DFS root.
// The DFS starts at the start node and then restarts from each unvisited
// node in declaration order; edges into a gray node are back edges and
// are ignored, which leaves a DAG. Edges from unreachable nodes into the
// reachable part do not push reachable nodes down.
func rankNodes(t topology) ranking {
	n := len(t.ids)
	r := ranking{
		rank: make([]int, n),
		back: make([]bool, len(t.src)),
	}

	state := make([]int, n)
	post := make([]int, 0, n)
	var visit func(u int)
	visit = func(u int) {
		state[u] = gray
		for _, ei := range t.out[u] {
			switch v := t.dst[ei]; state[v] {
			case white:
				visit(v)
			case gray:
				r.back[ei] = true
			}
		}
		state[u] = black
		post = append(post, u)
	}

	if t.startIx >= 0 {
		visit(t.startIx)
	}
	for u := 0; u < n; u++ {
		if state[u] == white {
			visit(u)
		}
	}

	// Reverse post-order is topological for the non-back edges.
	for i := len(post) - 1; i >= 0; i-- {
		u := post[i]
		for _, ei := range t.out[u] {
			v := t.dst[ei]
			if r.back[ei] || t.reach[u] != t.reach[v] {
				continue
			}
			if r.rank[u]+1 > r.rank[v] {
				r.rank[v] = r.rank[u] + 1
			}
		}
	}

	for _, rk := range r.rank {
		if rk > r.max {
			r.max = rk
		}
	}
	return r
}
