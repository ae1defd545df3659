package tui

import (
	"sort"
	"strings"

	"github.com/aretw0/carepath/pkg/layout"
	"github.com/charmbracelet/lipgloss"
)

// maxChip bounds the width of a node label in the graph pane.
const maxChip = 18

// renderGraph draws the layout rank by rank, keeping the in-rank order the
// layout computed. cursor marks a node selected with the keyboard.
func renderGraph(res layout.Result, hl layout.Highlight, cursor string) string {
	rows := make([][]layout.NodeBox, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		for len(rows) <= n.Rank {
			rows = append(rows, nil)
		}
		rows[n.Rank] = append(rows[n.Rank], n)
	}

	lines := make([]string, 0, len(rows))
	width := 0
	for _, row := range rows {
		sort.Slice(row, func(i, j int) bool { return row[i].Order < row[j].Order })
		chips := make([]string, 0, len(row))
		for _, n := range row {
			chips = append(chips, chip(n, hl.State(n.ID), n.ID == cursor))
		}
		line := strings.Join(chips, " ")
		if w := lipgloss.Width(line); w > width {
			width = w
		}
		lines = append(lines, line)
	}
	for i, l := range lines {
		lines[i] = lipgloss.PlaceHorizontal(width, lipgloss.Center, l)
	}
	return strings.Join(lines, "\n")
}

func chip(n layout.NodeBox, state layout.NodeState, cursor bool) string {
	label := n.Label
	if r := []rune(label); len(r) > maxChip {
		label = string(r[:maxChip-1]) + "…"
	}
	style := nodeIdleStyle
	switch state {
	case layout.StateActive:
		style = nodeActiveStyle
	case layout.StateVisited:
		style = nodeVisitedStyle
	}
	if cursor {
		style = style.Inherit(nodeCursorStyle).Underline(true)
	}
	return style.Render(label)
}
