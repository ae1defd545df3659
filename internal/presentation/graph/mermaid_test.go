package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/carepath/internal/presentation/graph"
	"github.com/aretw0/carepath/internal/testutils"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	b := dsl.New("shapes")
	b.Start("s", "Begin").Go("q", "")
	b.Question("q", `Ask "why"`).Go("d", "next")
	b.Decision("d", "Pick").Go("a", "left").Go("i", "right")
	b.Action("a", "Act").Go("path/to/o.md", "done")
	b.Info("i", "Read").Go("path/to/o.md", "done")
	b.Outcome("path/to/o.md", "End")
	g, err := b.Load()
	require.NoError(t, err)

	got := graph.GenerateMermaid(g, nil)

	for _, want := range []string{
		"graph TD\n",
		`s(("Begin"))`,
		`q[/"Ask 'why'"/]`,
		`d{"Pick"}`,
		`a["Act"]`,
		`i[["Read"]]`,
		`path_to_o_md(["End"])`,
		"s --> q",
		`q -- "next" --> d`,
		`i -- "done" --> path_to_o_md`,
	} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	g := testutils.HypertensionGraph()
	snap := domain.Snapshot{
		GraphID:       "hypertension",
		CurrentNodeID: "compelling",
		Path: []domain.PathEntry{
			{NodeID: "measure", EdgeID: "e-measure"},
			{NodeID: "classify", EdgeID: "e-stage2"},
		},
	}

	got := graph.GenerateMermaid(g, graph.OverlayFromSnapshot(snap))

	assert.Contains(t, got, "class measure visited;")
	assert.Contains(t, got, "class classify visited;")
	assert.Contains(t, got, "class compelling current;")
	assert.NotContains(t, got, "class compelling visited;")
	// e-measure is edge 0 and e-stage2 edge 3 in declaration order.
	assert.Contains(t, got, "linkStyle 0 stroke")
	assert.Contains(t, got, "linkStyle 3 stroke")
	assert.Equal(t, 2, strings.Count(got, "linkStyle"))
}
