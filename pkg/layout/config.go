package layout

// Config holds the spacing constants of a layout. Zero fields fall back to
// DefaultConfig values.
type Config struct {
	NodeWidth  float64 `mapstructure:"node_width" json:"node_width" yaml:"node_width" validate:"gte=0"`
	NodeHeight float64 `mapstructure:"node_height" json:"node_height" yaml:"node_height" validate:"gte=0"`
	// RankGap is the vertical distance between two ranks.
	RankGap float64 `mapstructure:"rank_gap" json:"rank_gap" yaml:"rank_gap" validate:"gte=0"`
	// NodeGap is the horizontal distance between neighbours in a rank.
	NodeGap float64 `mapstructure:"node_gap" json:"node_gap" yaml:"node_gap" validate:"gte=0"`
	// Iterations is the number of barycenter sweeps, alternating down and up.
	// At least one sweep always runs; zero in code means DefaultConfig.
	Iterations int `mapstructure:"iterations" json:"iterations" yaml:"iterations" validate:"gte=1,lte=64"`

	// CharWidth and LabelHeight size edge label halos.
	CharWidth    float64 `mapstructure:"char_width" json:"char_width" yaml:"char_width" validate:"gte=0"`
	LabelHeight  float64 `mapstructure:"label_height" json:"label_height" yaml:"label_height" validate:"gte=0"`
	LabelPadding float64 `mapstructure:"label_padding" json:"label_padding" yaml:"label_padding" validate:"gte=0"`
}

// DefaultConfig returns the spacing used by the CLI and the HTTP API.
func DefaultConfig() Config {
	return Config{
		NodeWidth:    180,
		NodeHeight:   56,
		RankGap:      72,
		NodeGap:      40,
		Iterations:   4,
		CharWidth:    7,
		LabelHeight:  14,
		LabelPadding: 4,
	}
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.NodeWidth == 0 {
		c.NodeWidth = d.NodeWidth
	}
	if c.NodeHeight == 0 {
		c.NodeHeight = d.NodeHeight
	}
	if c.RankGap == 0 {
		c.RankGap = d.RankGap
	}
	if c.NodeGap == 0 {
		c.NodeGap = d.NodeGap
	}
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	if c.CharWidth == 0 {
		c.CharWidth = d.CharWidth
	}
	if c.LabelHeight == 0 {
		c.LabelHeight = d.LabelHeight
	}
	if c.LabelPadding == 0 {
		c.LabelPadding = d.LabelPadding
	}
	return c
}
