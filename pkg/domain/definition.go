package domain

// FAQEntry is presentation-only material shown alongside an algorithm.
type FAQEntry struct {
	Question string `json:"question" yaml:"question" mapstructure:"question"`
	Answer   string `json:"answer" yaml:"answer" mapstructure:"answer"`
}

// GraphDefinition is the static declarative description of one clinical algorithm.
// Node and edge order is significant: it is the declaration order used for
// deterministic tie-breaking.
type GraphDefinition struct {
	ID          string     `json:"id" yaml:"id" validate:"required"`
	Version     string     `json:"version" yaml:"version"`
	Guideline   string     `json:"guideline" yaml:"guideline"`
	StartNodeID string     `json:"start_node_id" yaml:"start_node_id" validate:"required"`
	Nodes       []Node     `json:"nodes" yaml:"nodes" validate:"required,min=1,dive"`
	Edges       []Edge     `json:"edges" yaml:"edges" validate:"dive"`
	FAQ         []FAQEntry `json:"faq,omitempty" yaml:"faq,omitempty"`
}

// Clone returns a deep copy of the definition.
func (d GraphDefinition) Clone() GraphDefinition {
	out := d
	out.Nodes = make([]Node, len(d.Nodes))
	for i, n := range d.Nodes {
		n.Content = n.Content.Clone()
		out.Nodes[i] = n
	}
	out.Edges = append([]Edge(nil), d.Edges...)
	out.FAQ = append([]FAQEntry(nil), d.FAQ...)
	return out
}
