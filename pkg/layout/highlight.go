package layout

import "github.com/aretw0/carepath/pkg/domain"

// NodeState is the emphasis of a node for one snapshot.
type NodeState string

const (
	StateIdle    NodeState = "idle"
	StateVisited NodeState = "visited"
	StateActive  NodeState = "active"
)

// Highlight is the traversal overlay for a Result. It carries no geometry.
type Highlight struct {
	Active string               `json:"active"`
	Nodes  map[string]NodeState `json:"nodes"`
	Taken  map[string]bool      `json:"taken"`
}

// Annotate derives the overlay of snap over res. Node and edge ids unknown
// to res are ignored.
func Annotate(res Result, snap domain.Snapshot) Highlight {
	h := Highlight{
		Nodes: make(map[string]NodeState, len(res.Nodes)),
		Taken: make(map[string]bool, len(snap.Path)),
	}

	visited := snap.Visited()
	for _, n := range res.Nodes {
		switch {
		case n.ID == snap.CurrentNodeID:
			h.Nodes[n.ID] = StateActive
			h.Active = n.ID
		case visited[n.ID]:
			h.Nodes[n.ID] = StateVisited
		default:
			h.Nodes[n.ID] = StateIdle
		}
	}

	for id := range snap.Taken() {
		if _, ok := res.Edge(id); ok {
			h.Taken[id] = true
		}
	}
	return h
}

// State returns the emphasis of a node; unknown ids are idle.
func (h Highlight) State(id string) NodeState {
	if s, ok := h.Nodes[id]; ok {
		return s
	}
	return StateIdle
}

// IsTaken reports whether the edge is on the recorded path.
func (h Highlight) IsTaken(id string) bool {
	return h.Taken[id]
}
