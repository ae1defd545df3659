package runtime

import (
	"fmt"

	"github.com/aretw0/carepath/pkg/domain"
)

// Advance follows edgeID from the current node and records the step.
//
// The edge must be one of Available(). An edge id unknown to the graph wraps
// domain.ErrUnknownEdge; an edge that exists but leaves another node yields a
// *domain.InvalidTransitionError. In both cases state is unchanged.
func (m *Machine) Advance(edgeID string) error {
	edge, ok := m.graph.GetEdge(edgeID)
	if !ok {
		return m.reject(edgeID, fmt.Errorf("advance from %q: %w %q", m.current, domain.ErrUnknownEdge, edgeID))
	}
	if edge.Source != m.current {
		return m.reject(edgeID, &domain.InvalidTransitionError{CurrentNodeID: m.current, EdgeID: edgeID})
	}

	from := m.current
	m.path = append(m.path, domain.PathEntry{
		NodeID:    from,
		EdgeID:    edge.ID,
		EdgeLabel: edge.Label,
	})
	m.current = edge.Target

	m.logger.Debug("advance", "graph", m.graph.ID(), "from", from, "to", m.current, "edge", edgeID)
	m.emit(domain.EventAdvance, from, m.current, edgeID, nil)
	return nil
}

func (m *Machine) reject(edgeID string, err error) error {
	m.logger.Debug("transition rejected", "graph", m.graph.ID(), "node_id", m.current, "edge", edgeID, "error", err)
	m.emit(domain.EventRejected, m.current, "", edgeID, err)
	return err
}

// Back undoes the last step. On an empty path it returns a *domain.NoOpError.
func (m *Machine) Back() error {
	if len(m.path) == 0 {
		return m.noop("back", "path is empty")
	}

	from := m.current
	last := m.path[len(m.path)-1]
	m.path = m.path[:len(m.path)-1]
	m.current = last.NodeID

	m.logger.Debug("back", "graph", m.graph.ID(), "from", from, "to", m.current)
	m.emit(domain.EventBack, from, m.current, last.EdgeID, nil)
	return nil
}

// JumpTo rewinds to the first visit of nodeID on the recorded path, dropping
// that step and everything after it. Nodes not on the path, including the
// current node when it was never left, yield a *domain.NoOpError. A node
// absent from the graph wraps domain.ErrUnknownNode.
func (m *Machine) JumpTo(nodeID string) error {
	if _, ok := m.graph.GetNode(nodeID); !ok {
		return fmt.Errorf("jump: %w %q", domain.ErrUnknownNode, nodeID)
	}
	i := domain.IndexOf(m.path, nodeID)
	if i < 0 {
		return m.noop("jump", fmt.Sprintf("node %q is not on the recorded path", nodeID))
	}

	from := m.current
	m.path = m.path[:i:i]
	m.current = nodeID

	m.logger.Debug("jump", "graph", m.graph.ID(), "from", from, "to", nodeID, "depth", i)
	m.emit(domain.EventJump, from, nodeID, "", nil)
	return nil
}

// Reset clears the path and returns to the start node.
func (m *Machine) Reset() {
	from := m.current
	m.path = nil
	m.current = m.graph.StartNodeID()

	m.logger.Debug("reset", "graph", m.graph.ID(), "from", from)
	m.emit(domain.EventReset, from, m.current, "", nil)
}

// Replay resets the machine and advances through edgeIDs in order. It stops
// at the first failing edge and returns its error wrapped with the step
// index; the steps before it remain applied.
func (m *Machine) Replay(edgeIDs ...string) error {
	m.Reset()
	for i, id := range edgeIDs {
		if err := m.Advance(id); err != nil {
			return fmt.Errorf("replay step %d: %w", i, err)
		}
	}
	return nil
}

func (m *Machine) noop(op, reason string) error {
	err := &domain.NoOpError{Op: op, Reason: reason}
	m.logger.Debug("ignored", "graph", m.graph.ID(), "op", op, "reason", reason)
	return err
}

// EdgeIDs returns the edge ids of a path, in order. Feeding them to Replay
// reproduces the path.
func EdgeIDs(path []domain.PathEntry) []string {
	ids := make([]string, len(path))
	for i, e := range path {
		ids[i] = e.EdgeID
	}
	return ids
}
