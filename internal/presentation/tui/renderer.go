package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour,
// wrapped at width columns. Zero keeps glamour's default.
func NewRenderer(width int) func(string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ContentMarkdown formats the educational material of a node. It returns
// an empty string when the node has none.
func ContentMarkdown(n domain.Node) string {
	c := n.Content
	if c.IsZero() {
		return ""
	}
	var sb strings.Builder
	if c.Why != "" {
		fmt.Fprintf(&sb, "**Why:** %s\n\n", c.Why)
	}
	if c.Detail != "" {
		fmt.Fprintf(&sb, "%s\n\n", c.Detail)
	}
	if len(c.KeyPoints) > 0 {
		sb.WriteString("**Key points**\n\n")
		for _, p := range c.KeyPoints {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
		sb.WriteString("\n")
	}
	if len(c.References) > 0 {
		sb.WriteString("**References**\n\n")
		for _, r := range c.References {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}
	return strings.TrimSpace(sb.String()) + "\n"
}
