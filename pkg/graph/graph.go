package graph

import (
	"log/slog"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/pkg/domain"
)

// Graph is a validated, read-only view over a GraphDefinition.
type Graph struct {
	def      domain.GraphDefinition
	nodes    map[string]int // id -> declaration index
	edges    map[string]int
	outgoing map[string][]int // node id -> edge indexes in declaration order
	incoming map[string][]int
	logger   *slog.Logger
}

// Option configures Load.
type Option func(*Graph)

// WithLogger sets the logger used for load-time warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Load validates def and builds the adjacency maps.
// It returns a *domain.ValidationError when the definition is malformed.
func Load(def domain.GraphDefinition, opts ...Option) (*Graph, error) {
	g := &Graph{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(g)
	}

	if err := Validate(def); err != nil {
		return nil, err
	}

	g.def = def.Clone()
	g.nodes = make(map[string]int, len(def.Nodes))
	g.edges = make(map[string]int, len(def.Edges))
	g.outgoing = make(map[string][]int, len(def.Nodes))
	g.incoming = make(map[string][]int, len(def.Nodes))

	for i, n := range g.def.Nodes {
		g.nodes[n.ID] = i
	}
	for i, e := range g.def.Edges {
		g.edges[e.ID] = i
		g.outgoing[e.Source] = append(g.outgoing[e.Source], i)
		g.incoming[e.Target] = append(g.incoming[e.Target], i)
	}

	reachable := g.Reachable()
	for _, n := range g.def.Nodes {
		if !reachable[n.ID] {
			g.logger.Warn("node is unreachable from start", "graph", def.ID, "node_id", n.ID)
		}
	}

	return g, nil
}

// MustLoad is like Load but panics on error. Intended for tests and static fixtures.
func MustLoad(def domain.GraphDefinition) *Graph {
	g, err := Load(def)
	if err != nil {
		panic(err)
	}
	return g
}

// ID returns the definition id.
func (g *Graph) ID() string { return g.def.ID }

// StartNodeID returns the entry node id.
func (g *Graph) StartNodeID() string { return g.def.StartNodeID }

// Definition returns a deep copy of the underlying definition.
func (g *Graph) Definition() domain.GraphDefinition { return g.def.Clone() }

// GetNode looks up a node by id.
func (g *Graph) GetNode(id string) (domain.Node, bool) {
	i, ok := g.nodes[id]
	if !ok {
		return domain.Node{}, false
	}
	n := g.def.Nodes[i]
	n.Content = n.Content.Clone()
	return n, true
}

// GetEdge looks up an edge by id.
func (g *Graph) GetEdge(id string) (domain.Edge, bool) {
	i, ok := g.edges[id]
	if !ok {
		return domain.Edge{}, false
	}
	return g.def.Edges[i], true
}

// GetOutgoingEdges returns the edges leaving id, in declaration order.
// Unknown ids and outcome nodes yield an empty slice.
func (g *Graph) GetOutgoingEdges(id string) []domain.Edge {
	return g.collect(g.outgoing[id])
}

// GetIncomingEdges returns the edges entering id, in declaration order.
func (g *Graph) GetIncomingEdges(id string) []domain.Edge {
	return g.collect(g.incoming[id])
}

func (g *Graph) collect(idx []int) []domain.Edge {
	out := make([]domain.Edge, len(idx))
	for i, ei := range idx {
		out[i] = g.def.Edges[ei]
	}
	return out
}

// Nodes returns all nodes in declaration order.
func (g *Graph) Nodes() []domain.Node {
	return g.Definition().Nodes
}

// Edges returns all edges in declaration order.
func (g *Graph) Edges() []domain.Edge {
	return append([]domain.Edge(nil), g.def.Edges...)
}

// Index returns the declaration index of a node, or -1.
func (g *Graph) Index(id string) int {
	if i, ok := g.nodes[id]; ok {
		return i
	}
	return -1
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.def.Nodes) }

// Reachable returns the set of nodes reachable from the start node.
func (g *Graph) Reachable() map[string]bool {
	seen := map[string]bool{g.def.StartNodeID: true}
	queue := []string{g.def.StartNodeID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, ei := range g.outgoing[id] {
			next := g.def.Edges[ei].Target
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}
