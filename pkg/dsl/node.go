package dsl

import (
	"fmt"

	"github.com/aretw0/carepath/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	edges   []domain.Edge
	builder *Builder
}

// EdgeOption customizes an edge added with Go.
type EdgeOption func(*domain.Edge)

// WithID sets an explicit edge id. The default is "<source>-><target>".
func WithID(id string) EdgeOption {
	return func(e *domain.Edge) { e.ID = id }
}

// WithNote attaches an educational note to the edge.
func WithNote(note string) EdgeOption {
	return func(e *domain.Edge) { e.Note = note }
}

// Go adds an outgoing edge to the target node.
func (n *NodeBuilder) Go(target, label string, opts ...EdgeOption) *NodeBuilder {
	e := domain.Edge{
		ID:     fmt.Sprintf("%s->%s", n.node.ID, target),
		Source: n.node.ID,
		Target: target,
		Label:  label,
	}
	for _, opt := range opts {
		opt(&e)
	}
	n.edges = append(n.edges, e)
	return n
}

func (n *NodeBuilder) content() *domain.Content {
	if n.node.Content == nil {
		n.node.Content = &domain.Content{}
	}
	return n.node.Content
}

// Why sets the rationale shown in the educational panel.
func (n *NodeBuilder) Why(text string) *NodeBuilder {
	n.content().Why = text
	return n
}

// Detail sets the long-form educational text (markdown).
func (n *NodeBuilder) Detail(text string) *NodeBuilder {
	n.content().Detail = text
	return n
}

// KeyPoints appends bullet points.
func (n *NodeBuilder) KeyPoints(points ...string) *NodeBuilder {
	c := n.content()
	c.KeyPoints = append(c.KeyPoints, points...)
	return n
}

// References appends literature references.
func (n *NodeBuilder) References(refs ...string) *NodeBuilder {
	c := n.content()
	c.References = append(c.References, refs...)
	return n
}

// Build returns the underlying domain.Node.
func (n *NodeBuilder) Build() domain.Node {
	out := n.node
	out.Content = out.Content.Clone()
	return out
}

// Graph returns the owning builder, for chaining.
func (n *NodeBuilder) Graph() *Builder {
	return n.builder
}
