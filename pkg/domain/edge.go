package domain

// Edge is an explicit, user-selectable transition between two nodes.
type Edge struct {
	ID     string `json:"id" yaml:"id" validate:"required"`
	Source string `json:"source" yaml:"source" validate:"required"`
	Target string `json:"target" yaml:"target" validate:"required"`
	Label  string `json:"label" yaml:"label"`

	// Note is optional educational text explaining the choice.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}
