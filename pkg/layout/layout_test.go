package layout_test

import (
	"testing"

	"github.com/aretw0/carepath/internal/testutils"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/graph"
	"github.com/aretw0/carepath/pkg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_RanksHypertension(t *testing.T) {
	res := layout.Compute(testutils.HypertensionGraph(), layout.DefaultConfig())

	assert.Equal(t, map[string]int{
		"measure":    0,
		"classify":   1,
		"lifestyle":  2,
		"risk":       2,
		"compelling": 3, // longest path goes through risk
		"recheck":    3,
		"acei":       4,
		"hf":         4,
		"first-line": 4,
		"two-drugs":  5,
	}, res.Ranks)
}

func TestCompute_RanksCyclic(t *testing.T) {
	g, err := graph.Load(testutils.Cyclic())
	require.NoError(t, err)

	res := layout.Compute(g, layout.DefaultConfig())

	assert.Equal(t, 0, res.Ranks["start"])
	assert.Equal(t, 1, res.Ranks["assess"])
	assert.Equal(t, 2, res.Ranks["treat"])
	assert.Equal(t, 3, res.Ranks["reassess"])
	assert.Equal(t, 4, res.Ranks["done"])

	// Unreachable nodes are still placed.
	assert.Equal(t, 0, res.Ranks["orphan"])
	assert.Equal(t, 1, res.Ranks["orphan-end"])
	assert.Len(t, res.Nodes, 7)

	back, ok := res.Edge("reassess->assess")
	require.True(t, ok)
	assert.True(t, back.Back)

	from, _ := res.Node("reassess")
	require.Len(t, back.Points, 4)
	assert.Equal(t, from.Box.Right(), back.Points[0].X)
	assert.Greater(t, back.Points[1].X, from.Box.Right())

	for _, e := range res.Edges {
		if e.ID != "reassess->assess" {
			assert.False(t, e.Back, e.ID)
		}
	}
}

func TestCompute_IsDeterministic(t *testing.T) {
	def := testutils.Hypertension().Definition()
	g1, err := graph.Load(def)
	require.NoError(t, err)
	g2, err := graph.Load(def)
	require.NoError(t, err)

	first := layout.Compute(g1, layout.DefaultConfig())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, layout.Compute(g2, layout.DefaultConfig()))
	}
}

func TestCompute_ZeroConfigUsesDefaults(t *testing.T) {
	g := testutils.HypertensionGraph()
	assert.Equal(t, layout.Compute(g, layout.DefaultConfig()), layout.Compute(g, layout.Config{}))
}

func TestResult_Clone(t *testing.T) {
	res := layout.Compute(testutils.HypertensionGraph(), layout.DefaultConfig())
	want := layout.Compute(testutils.HypertensionGraph(), layout.DefaultConfig())

	c := res.Clone()
	require.Equal(t, res, c)

	c.Nodes[0].Box.X += 500
	c.Edges[0].Points[0].Y = -1
	c.Edges = append(c.Edges[:1], c.Edges[2:]...)
	c.Ranks["measure"] = 9
	delete(c.Ranks, "acei")

	assert.Equal(t, want, res)
	n, ok := c.Node(c.Nodes[0].ID)
	require.True(t, ok)
	assert.Equal(t, c.Nodes[0].Box, n.Box)
}

func TestCompute_Geometry(t *testing.T) {
	cfg := layout.DefaultConfig()
	res := layout.Compute(testutils.HypertensionGraph(), cfg)

	byRank := map[int][]layout.NodeBox{}
	for _, n := range res.Nodes {
		assert.Equal(t, cfg.NodeWidth, n.Box.W)
		assert.Equal(t, cfg.NodeHeight, n.Box.H)
		byRank[n.Rank] = append(byRank[n.Rank], n)
	}

	for rank, row := range byRank {
		for _, n := range row {
			assert.Equal(t, float64(rank)*(cfg.NodeHeight+cfg.RankGap), n.Box.Y-res.Nodes[0].Box.Y, n.ID)
		}
		// Boxes of one rank never overlap.
		for i := range row {
			for j := range row {
				if i == j {
					continue
				}
				dx := row[i].Box.X - row[j].Box.X
				if dx < 0 {
					dx = -dx
				}
				assert.GreaterOrEqual(t, dx, cfg.NodeWidth+cfg.NodeGap)
			}
		}
	}

	// Every rank is centred on the widest one (rank 4).
	widest := byRank[4]
	require.Len(t, widest, 3)
	left, right := widest[0].Box.Center().X, widest[0].Box.Center().X
	for _, n := range widest {
		left = min(left, n.Box.Center().X)
		right = max(right, n.Box.Center().X)
	}
	measure, ok := res.Node("measure")
	require.True(t, ok)
	assert.InDelta(t, (left+right)/2, measure.Box.Center().X, 1e-9)

	for _, n := range res.Nodes {
		assert.LessOrEqual(t, n.Box.Right(), res.Width)
		assert.LessOrEqual(t, n.Box.Bottom(), res.Height)
		assert.GreaterOrEqual(t, n.Box.X, 0.0)
	}
}

func TestCompute_EdgeRoutes(t *testing.T) {
	cfg := layout.DefaultConfig()
	res := layout.Compute(testutils.HypertensionGraph(), cfg)
	require.Len(t, res.Edges, 10)

	for _, e := range res.Edges {
		from, ok := res.Node(e.Source)
		require.True(t, ok)
		to, ok := res.Node(e.Target)
		require.True(t, ok)

		first, last := e.Points[0], e.Points[len(e.Points)-1]
		assert.Equal(t, layout.Point{X: from.Box.Center().X, Y: from.Box.Bottom()}, first, e.ID)
		assert.Equal(t, layout.Point{X: to.Box.Center().X, Y: to.Box.Y}, last, e.ID)

		require.NotEmpty(t, e.Label)
		assert.InDelta(t, e.LabelPos.X, e.Halo.Center().X, 1e-9)
		assert.InDelta(t, e.LabelPos.Y, e.Halo.Center().Y, 1e-9)
	}

	measure, _ := res.Edge("e-measure")
	// "BP recorded" is 11 runes.
	assert.InDelta(t, 11*cfg.CharWidth+2*cfg.LabelPadding, measure.Halo.W, 1e-9)
	assert.InDelta(t, cfg.LabelHeight+2*cfg.LabelPadding, measure.Halo.H, 1e-9)
}

func TestCompute_OrderTieBreaksByDeclaration(t *testing.T) {
	def := domain.GraphDefinition{
		ID:          "fan",
		StartNodeID: "s",
		Nodes: []domain.Node{
			{ID: "s", Type: domain.NodeTypeStart, Label: "S"},
			{ID: "c", Type: domain.NodeTypeOutcome, Label: "C"},
			{ID: "a", Type: domain.NodeTypeOutcome, Label: "A"},
			{ID: "b", Type: domain.NodeTypeOutcome, Label: "B"},
		},
		Edges: []domain.Edge{
			{ID: "1", Source: "s", Target: "a"},
			{ID: "2", Source: "s", Target: "b"},
			{ID: "3", Source: "s", Target: "c"},
		},
	}
	res := layout.Compute(graph.MustLoad(def), layout.DefaultConfig())

	for id, want := range map[string]int{"c": 0, "a": 1, "b": 2} {
		n, ok := res.Node(id)
		require.True(t, ok)
		assert.Equal(t, want, n.Order, id)
	}
	assert.Zero(t, res.Crossings)

	// Unlabeled edges get no halo.
	e, _ := res.Edge("1")
	assert.True(t, e.Halo.IsZero())
}

func TestAnnotate_DoesNotTouchGeometry(t *testing.T) {
	g := testutils.HypertensionGraph()
	res := layout.Compute(g, layout.DefaultConfig())
	pristine := layout.Compute(g, layout.DefaultConfig())

	snap := domain.Snapshot{
		GraphID:       "hypertension",
		CurrentNodeID: "compelling",
		Path: []domain.PathEntry{
			{NodeID: "measure", EdgeID: "e-measure", EdgeLabel: "BP recorded"},
			{NodeID: "classify", EdgeID: "e-stage2", EdgeLabel: "Stage 2"},
			{NodeID: "ghost", EdgeID: "e-ghost"},
		},
	}
	h := layout.Annotate(res, snap)

	assert.Equal(t, pristine, res)
	assert.Equal(t, "compelling", h.Active)
	assert.Equal(t, layout.StateActive, h.State("compelling"))
	assert.Equal(t, layout.StateVisited, h.State("measure"))
	assert.Equal(t, layout.StateVisited, h.State("classify"))
	assert.Equal(t, layout.StateIdle, h.State("acei"))
	assert.Equal(t, layout.StateIdle, h.State("ghost"))
	assert.True(t, h.IsTaken("e-measure"))
	assert.True(t, h.IsTaken("e-stage2"))
	assert.False(t, h.IsTaken("e-ghost"))
	assert.False(t, h.IsTaken("e-ckd"))
	assert.Len(t, h.Nodes, 10)
}

func TestFit(t *testing.T) {
	res := layout.Compute(testutils.HypertensionGraph(), layout.DefaultConfig())

	measure, _ := res.Node("measure")
	assert.Equal(t, measure.Box.Inset(10), layout.Fit(res, []string{"measure"}, 10))

	classify, _ := res.Node("classify")
	both := layout.Fit(res, []string{"measure", "classify", "ghost"}, 0)
	assert.True(t, both.Contains(measure.Box.Center()))
	assert.True(t, both.Contains(classify.Box.Center()))
	assert.Equal(t, measure.Box.Y, both.Y)
	assert.Equal(t, classify.Box.Bottom(), both.Bottom())

	assert.Equal(t, res.Bounds(), layout.Fit(res, nil, 0))
}

func TestRect_Union(t *testing.T) {
	a := layout.Rect{X: 0, Y: 0, W: 10, H: 10}
	b := layout.Rect{X: 5, Y: -5, W: 10, H: 10}
	assert.Equal(t, layout.Rect{X: 0, Y: -5, W: 15, H: 15}, a.Union(b))
	assert.Equal(t, b, layout.Rect{}.Union(b))
}
