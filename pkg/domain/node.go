package domain

// NodeType defines the role a node plays in a clinical algorithm.
type NodeType string

const (
	// NodeTypeStart is the single entry point of the algorithm.
	NodeTypeStart NodeType = "start"
	// NodeTypeQuestion asks the clinician for an observation or measurement.
	NodeTypeQuestion NodeType = "question"
	// NodeTypeDecision branches on a classification already established.
	NodeTypeDecision NodeType = "decision"
	// NodeTypeAction recommends an intervention and continues.
	NodeTypeAction NodeType = "action"
	// NodeTypeOutcome is a terminal recommendation. It has no outgoing edges.
	NodeTypeOutcome NodeType = "outcome"
	// NodeTypeInfo displays supporting information.
	NodeTypeInfo NodeType = "info"
)

// NodeTypes lists every valid node type in declaration order.
var NodeTypes = []NodeType{
	NodeTypeStart,
	NodeTypeQuestion,
	NodeTypeDecision,
	NodeTypeAction,
	NodeTypeOutcome,
	NodeTypeInfo,
}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Content is the optional educational material attached to a node.
type Content struct {
	Why        string   `json:"why,omitempty" yaml:"why,omitempty" mapstructure:"why"`
	Detail     string   `json:"detail,omitempty" yaml:"detail,omitempty" mapstructure:"detail"`
	KeyPoints  []string `json:"key_points,omitempty" yaml:"key_points,omitempty" mapstructure:"key_points"`
	References []string `json:"references,omitempty" yaml:"references,omitempty" mapstructure:"references"`
}

// IsZero reports whether the content carries no material at all.
func (c *Content) IsZero() bool {
	return c == nil || (c.Why == "" && c.Detail == "" && len(c.KeyPoints) == 0 && len(c.References) == 0)
}

// Clone returns a deep copy of the content. A nil receiver yields nil.
func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	out := *c
	out.KeyPoints = append([]string(nil), c.KeyPoints...)
	out.References = append([]string(nil), c.References...)
	return &out
}

// Node represents a logical unit in the algorithm graph.
type Node struct {
	ID      string   `json:"id" yaml:"id" validate:"required"`
	Type    NodeType `json:"type" yaml:"type" validate:"required,oneof=start question decision action outcome info"`
	Label   string   `json:"label" yaml:"label" validate:"required"`
	Content *Content `json:"content,omitempty" yaml:"content,omitempty"`
}

// IsTerminal reports whether the node ends a traversal.
func (n Node) IsTerminal() bool {
	return n.Type == NodeTypeOutcome
}
