package view

import (
	"sync"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/graph"
	"github.com/aretw0/carepath/pkg/layout"
)

// GraphView is the full-graph view: static geometry plus the overlay of the
// latest snapshot and a viewport framing the current decision.
type GraphView struct {
	mu        sync.RWMutex
	graph     *graph.Graph
	result    layout.Result
	highlight layout.Highlight
	viewport  layout.Rect
	snapshot  domain.Snapshot
	padding   float64
}

func newGraphView(g *graph.Graph, res layout.Result, padding float64) *GraphView {
	return &GraphView{graph: g, result: res, padding: padding}
}

func (v *GraphView) setGraph(g *graph.Graph, res layout.Result) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.graph = g
	v.result = res
}

// Notify recomputes the overlay and the viewport. Geometry is untouched.
func (v *GraphView) Notify(s domain.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.snapshot = s
	v.highlight = layout.Annotate(v.result, s)

	focus := []string{s.CurrentNodeID}
	for _, e := range v.graph.GetOutgoingEdges(s.CurrentNodeID) {
		focus = append(focus, e.Target)
	}
	v.viewport = layout.Fit(v.result, focus, v.padding)
}

// Layout returns a copy of the static geometry.
func (v *GraphView) Layout() layout.Result {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.result.Clone()
}

// Highlight returns the overlay of the latest snapshot.
func (v *GraphView) Highlight() layout.Highlight {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.highlight
}

// Viewport returns the rectangle framing the current node and its choices.
func (v *GraphView) Viewport() layout.Rect {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.viewport
}

// ActiveNodeID returns the node flagged active by the overlay.
func (v *GraphView) ActiveNodeID() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.highlight.Active
}

// Revision returns the revision of the snapshot last rendered.
func (v *GraphView) Revision() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshot.Revision
}
