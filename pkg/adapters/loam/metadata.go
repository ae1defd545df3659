package loam

// NodeMetadata is the frontmatter of one document in a loam directory.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
//
// A document whose kind is "graph" is the manifest and carries the
// definition-level fields; every other document is a node whose markdown
// body becomes the node's detail text.
type NodeMetadata struct {
	Kind string `json:"kind,omitempty" mapstructure:"kind"`

	// Node fields.
	ID         string         `json:"id" mapstructure:"id"`
	Type       string         `json:"type" mapstructure:"type"`
	Label      string         `json:"label" mapstructure:"label"`
	Title      string         `json:"title,omitempty" mapstructure:"title"` // alias of label
	Order      int            `json:"order,omitempty" mapstructure:"order"`
	Why        string         `json:"why,omitempty" mapstructure:"why"`
	KeyPoints  []string       `json:"key_points,omitempty" mapstructure:"key_points"`
	References []string       `json:"references,omitempty" mapstructure:"references"`
	Edges      []EdgeMetadata `json:"edges,omitempty" mapstructure:"edges"`
	Options    []EdgeMetadata `json:"options,omitempty" mapstructure:"options"` // alias of edges
	To         string         `json:"to,omitempty" mapstructure:"to"`           // single unlabeled edge

	// Manifest fields.
	GraphID   string        `json:"graph_id,omitempty" mapstructure:"graph_id"`
	Version   string        `json:"version,omitempty" mapstructure:"version"`
	Guideline string        `json:"guideline,omitempty" mapstructure:"guideline"`
	Start     string        `json:"start,omitempty" mapstructure:"start"`
	FAQ       []FAQMetadata `json:"faq,omitempty" mapstructure:"faq"`
}

// EdgeMetadata is one outgoing edge declared in a node's frontmatter.
type EdgeMetadata struct {
	ID     string `json:"id" mapstructure:"id"`
	To     string `json:"to" mapstructure:"to"`
	ToFull string `json:"to_node_id" mapstructure:"to_node_id"`
	Label  string `json:"label" mapstructure:"label"`
	// Text is accepted as the label, for option-style frontmatter.
	Text string `json:"text" mapstructure:"text"`
	Note string `json:"note" mapstructure:"note"`
}

// FAQMetadata is a question/answer pair in the manifest.
type FAQMetadata struct {
	Question string `json:"question" mapstructure:"question"`
	Answer   string `json:"answer" mapstructure:"answer"`
}

const kindGraph = "graph"
