package view

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/internal/runtime"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/graph"
	"github.com/aretw0/carepath/pkg/layout"
)

// Subscriber receives every published snapshot. Notify is called with the
// controller lock held: it must not call back into the Controller. Wrap slow
// subscribers with Debounce.
type Subscriber interface {
	Notify(domain.Snapshot)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(domain.Snapshot)

// Notify calls f(s).
func (f SubscriberFunc) Notify(s domain.Snapshot) { f(s) }

// Controller serializes traversal operations and fans snapshots out.
type Controller struct {
	mu       sync.Mutex
	machine  *runtime.Machine
	result   layout.Result
	last     domain.Snapshot
	revision uint64
	subs     []*subscription
	nextID   int

	graphView *GraphView
	wizard    *WizardView

	cfg         layout.Config
	padding     float64
	machineOpts []runtime.Option
	logger      *slog.Logger
}

type subscription struct {
	id  int
	sub Subscriber
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLayoutConfig sets the spacing used for the graph view.
func WithLayoutConfig(cfg layout.Config) Option {
	return func(c *Controller) { c.cfg = cfg }
}

// WithViewportPadding sets the margin kept around the fitted viewport.
func WithViewportPadding(p float64) Option {
	return func(c *Controller) { c.padding = p }
}

// WithMachineOptions sets the options used when Reload builds a new machine.
// They should match the ones the initial machine was created with.
func WithMachineOptions(opts ...runtime.Option) Option {
	return func(c *Controller) { c.machineOpts = append(c.machineOpts, opts...) }
}

// WithSubscriber registers a subscriber before the initial snapshot is published.
func WithSubscriber(s Subscriber) Option {
	return func(c *Controller) {
		c.nextID++
		c.subs = append(c.subs, &subscription{id: c.nextID, sub: s})
	}
}

// NewController computes the layout once and publishes the initial snapshot.
func NewController(m *runtime.Machine, opts ...Option) *Controller {
	c := &Controller{
		machine: m,
		cfg:     layout.DefaultConfig(),
		padding: 24,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.result = layout.Compute(m.Graph(), c.cfg)
	c.graphView = newGraphView(m.Graph(), c.result, c.padding)
	c.wizard = newWizardView(m.Graph())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.publish()
	return c
}

// GraphView returns the full-graph view.
func (c *Controller) GraphView() *GraphView { return c.graphView }

// Wizard returns the step-by-step view.
func (c *Controller) Wizard() *WizardView { return c.wizard }

// Subscribe registers s and immediately delivers the latest snapshot to it.
// The returned function removes the subscription.
func (c *Controller) Subscribe(s Subscriber) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, &subscription{id: id, sub: s})
	s.Notify(c.last.Clone())

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.subs {
			if sub.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns the last published snapshot.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last.Clone()
}

// Layout returns a copy of the static geometry of the current graph.
func (c *Controller) Layout() layout.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result.Clone()
}

// State is everything a client needs to draw both views for one revision.
type State struct {
	Snapshot  domain.Snapshot
	Node      domain.Node
	Choices   []domain.Edge
	Highlight layout.Highlight
	Viewport  layout.Rect
}

// View returns the last published snapshot together with the wizard node,
// its choices and the graph overlay, all taken under one lock.
func (c *Controller) View() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.machine.Graph()
	node, _ := g.GetNode(c.last.CurrentNodeID)
	return State{
		Snapshot:  c.last.Clone(),
		Node:      node,
		Choices:   g.GetOutgoingEdges(c.last.CurrentNodeID),
		Highlight: c.graphView.Highlight(),
		Viewport:  c.graphView.Viewport(),
	}
}

// Graph returns the graph being traversed.
func (c *Controller) Graph() *graph.Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Graph()
}

// Current returns the current node.
func (c *Controller) Current() domain.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Current()
}

// Available returns the choices leaving the current node.
func (c *Controller) Available() []domain.Edge {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Available()
}

// Advance follows edgeID. See runtime.Machine.Advance.
func (c *Controller) Advance(edgeID string) error {
	return c.apply("advance", func(m *runtime.Machine) error { return m.Advance(edgeID) })
}

// Choose follows the i-th available edge, counting from zero.
func (c *Controller) Choose(i int) error {
	return c.apply("choose", func(m *runtime.Machine) error {
		avail := m.Available()
		if i < 0 || i >= len(avail) {
			return &domain.NoOpError{Op: "choose", Reason: fmt.Sprintf("choice %d out of range [0,%d)", i, len(avail))}
		}
		return m.Advance(avail[i].ID)
	})
}

// Back undoes the last step.
func (c *Controller) Back() error {
	return c.apply("back", (*runtime.Machine).Back)
}

// JumpTo rewinds to a node on the recorded path.
func (c *Controller) JumpTo(nodeID string) error {
	return c.apply("jump", func(m *runtime.Machine) error { return m.JumpTo(nodeID) })
}

// Select handles a click on a node of the graph view: nodes on the recorded
// path are jumped to, anything else is a no-op.
func (c *Controller) Select(nodeID string) error {
	return c.apply("select", func(m *runtime.Machine) error { return m.JumpTo(nodeID) })
}

// Reset returns to the start node.
func (c *Controller) Reset() {
	_ = c.apply("reset", func(m *runtime.Machine) error {
		m.Reset()
		return nil
	})
}

// Retry starts the algorithm over after an outcome was reached.
func (c *Controller) Retry() {
	c.Reset()
}

// Replay resets and follows edgeIDs. Steps before a failing edge are kept
// and published as one snapshot.
func (c *Controller) Replay(edgeIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.machine.Replay(edgeIDs...)
	c.publish()
	return err
}

// Reload swaps in a new definition. The current path is replayed onto the
// new graph when every step is still valid, starts at the same nodes and
// still ends on the same current node; otherwise the session restarts. It reports whether the path survived.
// An invalid definition leaves the controller untouched.
func (c *Controller) Reload(def domain.GraphDefinition) (bool, error) {
	g, err := graph.Load(def, graph.WithLogger(c.logger))
	if err != nil {
		return false, fmt.Errorf("reload %s: %w", def.ID, err)
	}
	result := layout.Compute(g, c.cfg)

	c.mu.Lock()
	defer c.mu.Unlock()

	old, oldCurrent := c.machine.Path(), c.machine.CurrentID()
	m := runtime.NewMachine(g, c.machineOpts...)
	kept := m.Replay(runtime.EdgeIDs(old)...) == nil &&
		sameNodes(old, m.Path()) &&
		m.CurrentID() == oldCurrent
	if !kept {
		m.Reset()
		c.logger.Info("reload discarded path", "graph", g.ID(), "steps", len(old), "node_id", oldCurrent)
	}

	c.machine = m
	c.result = result
	c.graphView.setGraph(g, result)
	c.wizard.setGraph(g)
	c.publish()
	return kept, nil
}

func sameNodes(a, b []domain.PathEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].NodeID != b[i].NodeID {
			return false
		}
	}
	return true
}

func (c *Controller) apply(op string, fn func(*runtime.Machine) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := fn(c.machine); err != nil {
		if !errors.Is(err, domain.ErrNoOp) {
			c.logger.Debug("operation failed", "op", op, "node_id", c.machine.CurrentID(), "error", err)
		}
		return err
	}
	c.publish()
	return nil
}

// publish must be called with c.mu held.
func (c *Controller) publish() {
	snap := c.machine.Snapshot()
	snap.Revision = c.revision
	c.revision++
	c.last = snap

	c.graphView.Notify(snap.Clone())
	c.wizard.Notify(snap.Clone())
	for _, s := range c.subs {
		s.sub.Notify(snap.Clone())
	}
}
