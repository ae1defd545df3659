// Package summary compiles a completed traversal into a structured document
// and hands it to an export collaborator.
package summary

import (
	"errors"
	"fmt"

	"github.com/aretw0/carepath/pkg/domain"
)

// ErrNotTerminal is returned by Build when the traversal has not reached an outcome.
var ErrNotTerminal = errors.New("traversal has not reached an outcome")

type (
	Document = domain.Summary
	Step     = domain.SummaryStep
	Outcome  = domain.SummaryOutcome
)

// Build compiles path and the current node into a Document. It fails with
// ErrNotTerminal unless currentNodeID is an outcome, and with
// domain.ErrUnknownNode or domain.ErrUnknownEdge for entries that do not
// belong to def.
func Build(def domain.GraphDefinition, path []domain.PathEntry, currentNodeID string) (Document, error) {
	nodes := make(map[string]domain.Node, len(def.Nodes))
	for _, n := range def.Nodes {
		nodes[n.ID] = n
	}
	edges := make(map[string]domain.Edge, len(def.Edges))
	for _, e := range def.Edges {
		edges[e.ID] = e
	}

	current, ok := nodes[currentNodeID]
	if !ok {
		return Document{}, fmt.Errorf("summary: %w %q", domain.ErrUnknownNode, currentNodeID)
	}
	if !current.IsTerminal() {
		return Document{}, fmt.Errorf("summary at %q: %w", currentNodeID, ErrNotTerminal)
	}

	doc := Document{
		GraphID:   def.ID,
		Version:   def.Version,
		Guideline: def.Guideline,
		Steps:     make([]Step, 0, len(path)),
		Outcome: Outcome{
			NodeID:  current.ID,
			Label:   current.Label,
			Content: current.Content.Clone(),
		},
	}
	for i, entry := range path {
		n, ok := nodes[entry.NodeID]
		if !ok {
			return Document{}, fmt.Errorf("summary step %d: %w %q", i, domain.ErrUnknownNode, entry.NodeID)
		}
		e, ok := edges[entry.EdgeID]
		if !ok {
			return Document{}, fmt.Errorf("summary step %d: %w %q", i, domain.ErrUnknownEdge, entry.EdgeID)
		}
		doc.Steps = append(doc.Steps, Step{
			NodeID:    n.ID,
			NodeLabel: n.Label,
			EdgeID:    e.ID,
			Choice:    entry.EdgeLabel,
			Note:      e.Note,
		})
	}
	return doc, nil
}

// FromSnapshot is Build over a snapshot.
func FromSnapshot(def domain.GraphDefinition, snap domain.Snapshot) (Document, error) {
	return Build(def, snap.Path, snap.CurrentNodeID)
}
