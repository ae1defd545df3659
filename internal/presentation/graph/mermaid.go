package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/carepath/pkg/domain"
	cgraph "github.com/aretw0/carepath/pkg/graph"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
	TakenEdges   []string
}

// OverlayFromSnapshot builds the overlay of a traversal snapshot.
func OverlayFromSnapshot(s domain.Snapshot) *GraphOverlay {
	o := &GraphOverlay{CurrentNode: s.CurrentNodeID}
	for _, e := range s.Path {
		o.VisitedNodes = append(o.VisitedNodes, e.NodeID)
		o.TakenEdges = append(o.TakenEdges, e.EdgeID)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of g.
// Node shapes follow the node type:
// - Start: ((Circle))
// - Question: [/Parallelogram/]
// - Decision: {Rhombus}
// - Outcome: ([Stadium])
// - Info: [[Subroutine]]
// - Action: [Rectangle]
// It also applies overlay styles (Visited/Current/Taken) if provided.
func GenerateMermaid(g *cgraph.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range g.Nodes() {
		opener, closer := "[", "]"
		switch node.Type {
		case domain.NodeTypeStart:
			opener, closer = "((", "))"
		case domain.NodeTypeQuestion:
			opener, closer = "[/", "/]"
		case domain.NodeTypeDecision:
			opener, closer = "{", "}"
		case domain.NodeTypeOutcome:
			opener, closer = "([", "])"
		case domain.NodeTypeInfo:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(node.ID), opener, escapeLabel(node.Label), closer)
	}

	// Edges are written in declaration order so that linkStyle indices match.
	edgeIndex := make(map[string]int)
	for i, e := range g.Edges() {
		edgeIndex[e.ID] = i
		arrow := "-->"
		if e.Label != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(e.Label))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.Source), arrow, sanitizeMermaidID(e.Target))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if _, ok := g.GetNode(id); !ok || visitedSet[safeID] || id == overlay.CurrentNode {
				continue
			}
			visitedSet[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}
		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}

		styled := make(map[int]bool)
		for _, id := range overlay.TakenEdges {
			i, ok := edgeIndex[id]
			if !ok || styled[i] {
				continue
			}
			styled[i] = true
			fmt.Fprintf(&sb, "    linkStyle %d stroke:#01579b,stroke-width:3px;\n", i)
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
