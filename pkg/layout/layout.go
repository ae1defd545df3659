package layout

import (
	"math"
	"unicode/utf8"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/graph"
)

// NodeBox is the placed box of one node.
type NodeBox struct {
	ID    string          `json:"id"`
	Type  domain.NodeType `json:"type"`
	Label string          `json:"label"`
	Rank  int             `json:"rank"`
	Order int             `json:"order"`
	Box   Rect            `json:"box"`
}

// EdgeRoute is the routed connector of one edge.
type EdgeRoute struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Label  string  `json:"label,omitempty"`
	Points []Point `json:"points"`

	// LabelPos is the midpoint of the route. Halo is the background box
	// drawn behind the label; it is zero for unlabeled edges.
	LabelPos Point `json:"label_pos"`
	Halo     Rect  `json:"halo"`

	// Back marks edges that close a cycle. They leave and enter boxes from
	// the side instead of bottom to top.
	Back bool `json:"back,omitempty"`
}

// Result is the full geometry of a graph. Nodes and Edges keep the
// declaration order of the definition.
type Result struct {
	GraphID   string         `json:"graph_id"`
	Nodes     []NodeBox      `json:"nodes"`
	Edges     []EdgeRoute    `json:"edges"`
	Ranks     map[string]int `json:"ranks"`
	Crossings int            `json:"crossings"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`

	nodeIdx map[string]int
	edgeIdx map[string]int
}

// Clone returns a copy that shares no mutable memory with r. The lookup
// indexes are never written after Compute and stay shared.
func (r Result) Clone() Result {
	out := r
	out.Nodes = append([]NodeBox(nil), r.Nodes...)
	out.Edges = make([]EdgeRoute, len(r.Edges))
	for i, e := range r.Edges {
		e.Points = append([]Point(nil), e.Points...)
		out.Edges[i] = e
	}
	if r.Ranks != nil {
		out.Ranks = make(map[string]int, len(r.Ranks))
		for id, rank := range r.Ranks {
			out.Ranks[id] = rank
		}
	}
	return out
}

// Node returns the box of a node.
func (r Result) Node(id string) (NodeBox, bool) {
	if r.nodeIdx != nil {
		i, ok := r.nodeIdx[id]
		if !ok {
			return NodeBox{}, false
		}
		return r.Nodes[i], true
	}
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeBox{}, false
}

// Edge returns the route of an edge.
func (r Result) Edge(id string) (EdgeRoute, bool) {
	if r.edgeIdx != nil {
		i, ok := r.edgeIdx[id]
		if !ok {
			return EdgeRoute{}, false
		}
		return r.Edges[i], true
	}
	for _, e := range r.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return EdgeRoute{}, false
}

// Bounds returns the rectangle covering the whole drawing.
func (r Result) Bounds() Rect {
	return Rect{W: r.Width, H: r.Height}
}

// Compute lays out g. The result depends only on the graph and cfg:
// identical inputs give identical geometry.
func Compute(g *graph.Graph, cfg Config) Result {
	cfg = cfg.withDefaults()
	t := newTopology(g)
	rk := rankNodes(t)
	ord, cross := orderRanks(t, rk, cfg.Iterations)

	res := Result{
		GraphID:   g.ID(),
		Nodes:     make([]NodeBox, len(t.ids)),
		Edges:     make([]EdgeRoute, len(t.src)),
		Ranks:     make(map[string]int, len(t.ids)),
		Crossings: cross,
		nodeIdx:   make(map[string]int, len(t.ids)),
		edgeIdx:   make(map[string]int, len(t.src)),
	}

	placeNodes(&res, g, t, rk, ord, cfg)
	routeEdges(&res, g, t, rk, cfg)
	normalize(&res)
	return res
}

func placeNodes(res *Result, g *graph.Graph, t topology, rk ranking, ord ordering, cfg Config) {
	widest := 0.0
	for _, layer := range ord.layers {
		widest = math.Max(widest, rowWidth(len(layer), cfg))
	}

	nodes := g.Nodes()
	for r, layer := range ord.layers {
		offset := (widest - rowWidth(len(layer), cfg)) / 2
		for i, v := range layer {
			n := nodes[v]
			res.Nodes[v] = NodeBox{
				ID:    n.ID,
				Type:  n.Type,
				Label: n.Label,
				Rank:  r,
				Order: i,
				Box: Rect{
					X: offset + float64(i)*(cfg.NodeWidth+cfg.NodeGap),
					Y: float64(r) * (cfg.NodeHeight + cfg.RankGap),
					W: cfg.NodeWidth,
					H: cfg.NodeHeight,
				},
			}
		}
	}
	for i, id := range t.ids {
		res.Ranks[id] = rk.rank[i]
		res.nodeIdx[id] = i
	}
}

func rowWidth(n int, cfg Config) float64 {
	if n == 0 {
		return 0
	}
	return float64(n)*cfg.NodeWidth + float64(n-1)*cfg.NodeGap
}

func routeEdges(res *Result, g *graph.Graph, t topology, rk ranking, cfg Config) {
	lanes := 0
	for ei, e := range g.Edges() {
		from := res.Nodes[t.src[ei]].Box
		to := res.Nodes[t.dst[ei]].Box

		var pts []Point
		if rk.rank[t.src[ei]] < rk.rank[t.dst[ei]] {
			start := Point{X: from.Center().X, Y: from.Bottom()}
			end := Point{X: to.Center().X, Y: to.Y}
			if start.X == end.X {
				pts = []Point{start, end}
			} else {
				elbow := from.Bottom() + cfg.RankGap/2
				pts = []Point{start, {X: start.X, Y: elbow}, {X: end.X, Y: elbow}, end}
			}
		} else {
			// Side lane to the right of both boxes; each side route gets
			// its own lane so parallel returns stay apart.
			lane := math.Max(from.Right(), to.Right()) + cfg.NodeGap/2 + float64(lanes)*cfg.NodeGap/4
			lanes++
			start := Point{X: from.Right(), Y: from.Y + from.H*2/3}
			end := Point{X: to.Right(), Y: to.Y + to.H/3}
			pts = []Point{start, {X: lane, Y: start.Y}, {X: lane, Y: end.Y}, end}
		}

		mid := midpoint(pts)
		route := EdgeRoute{
			ID:       e.ID,
			Source:   e.Source,
			Target:   e.Target,
			Label:    e.Label,
			Points:   pts,
			LabelPos: mid,
			Back:     rk.back[ei],
		}
		if e.Label != "" {
			w := float64(utf8.RuneCountInString(e.Label))*cfg.CharWidth + 2*cfg.LabelPadding
			h := cfg.LabelHeight + 2*cfg.LabelPadding
			route.Halo = Rect{X: mid.X - w/2, Y: mid.Y - h/2, W: w, H: h}
		}
		res.Edges[ei] = route
		res.edgeIdx[e.ID] = ei
	}
}

// normalize shifts the drawing so nothing lies left of or above the origin
// and records the overall size.
func normalize(res *Result) {
	var bounds Rect
	for _, n := range res.Nodes {
		bounds = bounds.Union(n.Box)
	}
	for _, e := range res.Edges {
		bounds = bounds.Union(pointsRect(e.Points))
		bounds = bounds.Union(e.Halo)
	}

	dx := math.Max(0, -bounds.X)
	dy := math.Max(0, -bounds.Y)
	if dx != 0 || dy != 0 {
		for i := range res.Nodes {
			res.Nodes[i].Box.X += dx
			res.Nodes[i].Box.Y += dy
		}
		for i := range res.Edges {
			e := &res.Edges[i]
			for j := range e.Points {
				e.Points[j].X += dx
				e.Points[j].Y += dy
			}
			e.LabelPos.X += dx
			e.LabelPos.Y += dy
			if !e.Halo.IsZero() {
				e.Halo.X += dx
				e.Halo.Y += dy
			}
		}
	}
	res.Width = bounds.Right() + dx
	res.Height = bounds.Bottom() + dy
}
