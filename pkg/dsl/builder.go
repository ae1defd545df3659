package dsl

import (
	"fmt"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/graph"
)

// Builder manages the graph construction. Declaration order is preserved.
type Builder struct {
	def   domain.GraphDefinition
	order []*NodeBuilder
	nodes map[string]*NodeBuilder
}

// New creates a new graph builder for the definition id.
func New(id string) *Builder {
	return &Builder{
		def:   domain.GraphDefinition{ID: id},
		nodes: make(map[string]*NodeBuilder),
	}
}

// Version sets the definition version.
func (b *Builder) Version(v string) *Builder {
	b.def.Version = v
	return b
}

// Guideline sets the guideline citation.
func (b *Builder) Guideline(citation string) *Builder {
	b.def.Guideline = citation
	return b
}

// FAQ appends a presentation-only question/answer pair.
func (b *Builder) FAQ(question, answer string) *Builder {
	b.def.FAQ = append(b.def.FAQ, domain.FAQEntry{Question: question, Answer: answer})
	return b
}

// Add creates a node of the given type in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string, typ domain.NodeType, label string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id, Type: typ, Label: label},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, nb)
	if typ == domain.NodeTypeStart && b.def.StartNodeID == "" {
		b.def.StartNodeID = id
	}
	return nb
}

// Start adds the start node and makes it the entry point.
func (b *Builder) Start(id, label string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeStart, label)
}

// Question adds a question node.
func (b *Builder) Question(id, label string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeQuestion, label)
}

// Decision adds a decision node.
func (b *Builder) Decision(id, label string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeDecision, label)
}

// Action adds an action node.
func (b *Builder) Action(id, label string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeAction, label)
}

// Info adds an info node.
func (b *Builder) Info(id, label string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeInfo, label)
}

// Outcome adds a terminal outcome node.
func (b *Builder) Outcome(id, label string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeOutcome, label)
}

// StartAt overrides the entry node id.
func (b *Builder) StartAt(id string) *Builder {
	b.def.StartNodeID = id
	return b
}

// Definition compiles the builder into a definition without validating it.
func (b *Builder) Definition() domain.GraphDefinition {
	def := b.def
	def.Nodes = make([]domain.Node, 0, len(b.order))
	def.Edges = nil
	for _, nb := range b.order {
		def.Nodes = append(def.Nodes, nb.node)
		def.Edges = append(def.Edges, nb.edges...)
	}
	return def.Clone()
}

// Load compiles and validates the graph.
func (b *Builder) Load(opts ...graph.Option) (*graph.Graph, error) {
	g, err := graph.Load(b.Definition(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph %s: %w", b.def.ID, err)
	}
	return g, nil
}
