package domain

// PathEntry records one traversal step: the node the user was on,
// the edge they chose and that edge's label at the time.
type PathEntry struct {
	NodeID    string `json:"node_id"`
	EdgeID    string `json:"edge_id"`
	EdgeLabel string `json:"edge_label"`
}

// IndexOf returns the index of the first entry that originated at nodeID, or -1.
func IndexOf(path []PathEntry, nodeID string) int {
	for i, entry := range path {
		if entry.NodeID == nodeID {
			return i
		}
	}
	return -1
}
