package domain

// Snapshot is the read-only view of a traversal at one instant.
// Every subscriber of a session receives the same Snapshot for a given revision.
type Snapshot struct {
	// GraphID identifies the definition the snapshot was taken against.
	GraphID string `json:"graph_id"`

	// Revision increases by one on every state change of the session.
	Revision uint64 `json:"revision"`

	// CurrentNodeID is the node reached by the last path entry, or the start node.
	CurrentNodeID string `json:"current_node_id"`

	// Path is the ordered record of choices made so far.
	Path []PathEntry `json:"path"`

	// Terminal is true when the current node is an outcome.
	Terminal bool `json:"terminal"`
}

// Visited returns the set of node ids on the recorded path, including the current node.
func (s Snapshot) Visited() map[string]bool {
	visited := make(map[string]bool, len(s.Path)+1)
	for _, entry := range s.Path {
		visited[entry.NodeID] = true
	}
	if s.CurrentNodeID != "" {
		visited[s.CurrentNodeID] = true
	}
	return visited
}

// Taken returns the set of edge ids on the recorded path.
func (s Snapshot) Taken() map[string]bool {
	taken := make(map[string]bool, len(s.Path))
	for _, entry := range s.Path {
		taken[entry.EdgeID] = true
	}
	return taken
}

// Clone returns a copy that shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Path = append([]PathEntry(nil), s.Path...)
	return out
}
