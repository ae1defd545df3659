package view

import (
	"sync"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/graph"
)

// WizardView presents one decision at a time.
type WizardView struct {
	mu       sync.RWMutex
	graph    *graph.Graph
	node     domain.Node
	choices  []domain.Edge
	snapshot domain.Snapshot
	expanded bool
}

func newWizardView(g *graph.Graph) *WizardView {
	return &WizardView{graph: g}
}

func (w *WizardView) setGraph(g *graph.Graph) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.graph = g
}

// Notify moves the wizard to the snapshot's node. Leaving a node collapses
// the educational panel.
func (w *WizardView) Notify(s domain.Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if s.CurrentNodeID != w.node.ID || len(s.Path) != len(w.snapshot.Path) {
		w.expanded = false
	}
	w.snapshot = s
	w.node, _ = w.graph.GetNode(s.CurrentNodeID)
	w.choices = w.graph.GetOutgoingEdges(s.CurrentNodeID)
}

// Node returns the node on screen.
func (w *WizardView) Node() domain.Node {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.node
}

// CurrentNodeID returns the id of the node on screen.
func (w *WizardView) CurrentNodeID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.node.ID
}

// Choices returns the edges offered as answers.
func (w *WizardView) Choices() []domain.Edge {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]domain.Edge(nil), w.choices...)
}

// Breadcrumb returns the recorded path.
func (w *WizardView) Breadcrumb() []domain.PathEntry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]domain.PathEntry(nil), w.snapshot.Path...)
}

// Terminal reports whether the node on screen is an outcome.
func (w *WizardView) Terminal() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot.Terminal
}

// Expanded reports whether the educational panel is open.
func (w *WizardView) Expanded() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.expanded
}

// ToggleExpanded opens or closes the educational panel and returns the new
// state. Nodes without content never expand.
func (w *WizardView) ToggleExpanded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.node.Content.IsZero() {
		w.expanded = false
		return false
	}
	w.expanded = !w.expanded
	return w.expanded
}

// Revision returns the revision of the snapshot last rendered.
func (w *WizardView) Revision() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot.Revision
}
