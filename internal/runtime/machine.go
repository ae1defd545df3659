package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/graph"
)

// Machine tracks one traversal over a loaded graph: the current node and the
// ordered path of choices that led there. It is not safe for concurrent use;
// callers serialize access (see pkg/view.Controller).
type Machine struct {
	graph   *graph.Graph
	current string
	path    []domain.PathEntry

	ctx    context.Context
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the machine logger. Rejected transitions are logged at debug.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// WithContext sets the context handed to lifecycle hooks.
func WithContext(ctx context.Context) Option {
	return func(m *Machine) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMachine creates a machine positioned on the start node with an empty path.
func NewMachine(g *graph.Graph, opts ...Option) *Machine {
	m := &Machine{
		graph:   g,
		current: g.StartNodeID(),
		ctx:     context.Background(),
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Graph returns the graph being traversed.
func (m *Machine) Graph() *graph.Graph { return m.graph }

// CurrentID returns the id of the current node.
func (m *Machine) CurrentID() string { return m.current }

// Current returns the current node.
func (m *Machine) Current() domain.Node {
	n, _ := m.graph.GetNode(m.current)
	return n
}

// Path returns a copy of the recorded path.
func (m *Machine) Path() []domain.PathEntry {
	out := make([]domain.PathEntry, len(m.path))
	copy(out, m.path)
	return out
}

// Terminal reports whether the current node is an outcome.
func (m *Machine) Terminal() bool {
	return m.Current().IsTerminal()
}

// Available returns the edges the user may choose from the current node.
func (m *Machine) Available() []domain.Edge {
	return m.graph.GetOutgoingEdges(m.current)
}

// Snapshot returns an immutable copy of the traversal state. Revision is left
// to the publisher (see pkg/view.Controller).
func (m *Machine) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		GraphID:       m.graph.ID(),
		CurrentNodeID: m.current,
		Path:          m.Path(),
		Terminal:      m.Terminal(),
	}
}

func (m *Machine) emit(typ domain.EventType, from, to, edgeID string, err error) {
	m.hooks.Emit(m.ctx, &domain.TransitionEvent{
		Timestamp: m.now(),
		Type:      typ,
		GraphID:   m.graph.ID(),
		FromNode:  from,
		ToNode:    to,
		EdgeID:    edgeID,
		Depth:     len(m.path),
		Err:       err,
	})
}
