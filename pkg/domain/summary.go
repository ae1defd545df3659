package domain

// Summary is the structured record of a completed traversal, handed to an
// export collaborator. It contains no formatting.
type Summary struct {
	GraphID   string         `json:"graph_id" yaml:"graph_id"`
	Version   string         `json:"version,omitempty" yaml:"version,omitempty"`
	Guideline string         `json:"guideline,omitempty" yaml:"guideline,omitempty"`
	Steps     []SummaryStep  `json:"steps" yaml:"steps"`
	Outcome   SummaryOutcome `json:"outcome" yaml:"outcome"`
}

// SummaryStep is one decision: the node shown and the answer chosen.
type SummaryStep struct {
	NodeID    string `json:"node_id" yaml:"node_id"`
	NodeLabel string `json:"node_label" yaml:"node_label"`
	EdgeID    string `json:"edge_id" yaml:"edge_id"`
	Choice    string `json:"choice" yaml:"choice"`
	Note      string `json:"note,omitempty" yaml:"note,omitempty"`
}

// SummaryOutcome is the terminal node reached.
type SummaryOutcome struct {
	NodeID  string   `json:"node_id" yaml:"node_id"`
	Label   string   `json:"label" yaml:"label"`
	Content *Content `json:"content,omitempty" yaml:"content,omitempty"`
}
