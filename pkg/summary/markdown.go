package summary

import (
	"fmt"
	"strings"
)

// Markdown renders doc as a markdown report, the format the terminal
// renderer and the file exporter share.
func Markdown(doc Document) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Decision summary: %s\n\n", doc.GraphID)
	if doc.Guideline != "" {
		fmt.Fprintf(&sb, "_%s_", doc.Guideline)
		if doc.Version != "" {
			fmt.Fprintf(&sb, " (version %s)", doc.Version)
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Steps\n\n")
	for i, s := range doc.Steps {
		fmt.Fprintf(&sb, "%d. **%s**: %s\n", i+1, s.NodeLabel, s.Choice)
		if s.Note != "" {
			fmt.Fprintf(&sb, "   > %s\n", s.Note)
		}
	}

	fmt.Fprintf(&sb, "\n## Outcome\n\n**%s**\n", doc.Outcome.Label)
	c := doc.Outcome.Content
	if c.IsZero() {
		return sb.String()
	}
	if c.Why != "" {
		fmt.Fprintf(&sb, "\n%s\n", c.Why)
	}
	if c.Detail != "" {
		fmt.Fprintf(&sb, "\n%s\n", c.Detail)
	}
	if len(c.KeyPoints) > 0 {
		sb.WriteString("\n### Key points\n\n")
		for _, p := range c.KeyPoints {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}
	if len(c.References) > 0 {
		sb.WriteString("\n### References\n\n")
		for _, r := range c.References {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}
	return sb.String()
}
