package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/carepath/internal/runtime"
	"github.com/aretw0/carepath/internal/testutils"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_Initial(t *testing.T) {
	m := runtime.NewMachine(testutils.HypertensionGraph())

	assert.Equal(t, "measure", m.CurrentID())
	assert.Equal(t, domain.NodeTypeStart, m.Current().Type)
	assert.Empty(t, m.Path())
	assert.False(t, m.Terminal())

	avail := m.Available()
	require.Len(t, avail, 1)
	assert.Equal(t, "e-measure", avail[0].ID)

	snap := m.Snapshot()
	assert.Equal(t, "hypertension", snap.GraphID)
	assert.NotNil(t, snap.Path)
}

func TestMachine_HypertensionEndToEnd(t *testing.T) {
	m := runtime.NewMachine(testutils.HypertensionGraph())

	require.NoError(t, m.Advance("e-measure"))
	assert.Equal(t, "classify", m.CurrentID())
	require.NoError(t, m.Advance("e-stage2"))
	assert.Equal(t, "compelling", m.CurrentID())
	assert.GreaterOrEqual(t, len(m.Available()), 2)
	require.NoError(t, m.Advance("e-ckd"))

	assert.Equal(t, "acei", m.CurrentID())
	assert.True(t, m.Terminal())
	assert.Empty(t, m.Available())
	assert.Equal(t, []domain.PathEntry{
		{NodeID: "measure", EdgeID: "e-measure", EdgeLabel: "BP recorded"},
		{NodeID: "classify", EdgeID: "e-stage2", EdgeLabel: "Stage 2"},
		{NodeID: "compelling", EdgeID: "e-ckd", EdgeLabel: "CKD or diabetes"},
	}, m.Path())
}

func TestMachine_AdvanceRejects(t *testing.T) {
	tests := []struct {
		name   string
		edgeID string
		is     error
	}{
		{name: "Edge Of Another Node", edgeID: "e-ckd", is: domain.ErrInvalidTransition},
		{name: "Unknown Edge", edgeID: "e-ghost", is: domain.ErrUnknownEdge},
		{name: "Empty Edge", edgeID: "", is: domain.ErrUnknownEdge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := runtime.NewMachine(testutils.HypertensionGraph())
			require.NoError(t, m.Advance("e-measure"))
			before := m.Snapshot()

			err := m.Advance(tt.edgeID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)
			assert.True(t, domain.IsRecoverable(err))
			assert.Equal(t, before, m.Snapshot())
		})
	}

	t.Run("Typed Error", func(t *testing.T) {
		m := runtime.NewMachine(testutils.HypertensionGraph())
		err := m.Advance("e-stage1")
		var terr *domain.InvalidTransitionError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, "measure", terr.CurrentNodeID)
		assert.Equal(t, "e-stage1", terr.EdgeID)
	})

	t.Run("From Outcome", func(t *testing.T) {
		m := runtime.NewMachine(testutils.HypertensionGraph())
		require.NoError(t, m.Replay("e-measure", "e-elevated"))
		require.True(t, m.Terminal())
		assert.ErrorIs(t, m.Advance("e-measure"), domain.ErrInvalidTransition)
	})
}

func TestMachine_BackOnEmptyPathIsNoOp(t *testing.T) {
	m := runtime.NewMachine(testutils.HypertensionGraph())
	before := m.Snapshot()

	err := m.Back()
	assert.ErrorIs(t, err, domain.ErrNoOp)
	var noop *domain.NoOpError
	require.ErrorAs(t, err, &noop)
	assert.Equal(t, "back", noop.Op)
	assert.Equal(t, before, m.Snapshot())
}

// pathTo returns the edge ids of a shortest path from start to target.
func pathTo(g *graph.Graph, target string) []string {
	prev := map[string]domain.Edge{}
	seen := map[string]bool{g.StartNodeID(): true}
	queue := []string{g.StartNodeID()}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range g.GetOutgoingEdges(id) {
			if !seen[e.Target] {
				seen[e.Target] = true
				prev[e.Target] = e
				queue = append(queue, e.Target)
			}
		}
	}
	var ids []string
	for n := target; n != g.StartNodeID(); {
		e := prev[n]
		ids = append([]string{e.ID}, ids...)
		n = e.Source
	}
	return ids
}

func TestMachine_AdvanceBackRoundTrip(t *testing.T) {
	graphs := map[string]*graph.Graph{
		"hypertension": testutils.HypertensionGraph(),
		"cyclic":       graph.MustLoad(testutils.Cyclic()),
	}

	for name, g := range graphs {
		t.Run(name, func(t *testing.T) {
			reachable := g.Reachable()
			checked := 0
			for _, n := range g.Nodes() {
				if !reachable[n.ID] || n.IsTerminal() {
					continue
				}
				m := runtime.NewMachine(g)
				require.NoError(t, m.Replay(pathTo(g, n.ID)...))
				require.Equal(t, n.ID, m.CurrentID())

				for _, e := range m.Available() {
					before := m.Snapshot()
					require.NoError(t, m.Advance(e.ID), e.ID)
					require.NoError(t, m.Back(), e.ID)

					after := m.Snapshot()
					assert.Equal(t, before.CurrentNodeID, after.CurrentNodeID, e.ID)
					assert.Equal(t, before.Path, after.Path, e.ID)
					checked++
				}
			}
			assert.Positive(t, checked)
		})
	}
}

func TestMachine_Reset(t *testing.T) {
	m := runtime.NewMachine(testutils.HypertensionGraph())
	require.NoError(t, m.Replay("e-measure", "e-stage1", "e-risk-high", "e-none"))
	require.Equal(t, "first-line", m.CurrentID())

	m.Reset()
	assert.Equal(t, "measure", m.CurrentID())
	assert.Empty(t, m.Path())
	assert.False(t, m.Terminal())
}

func TestMachine_JumpTo(t *testing.T) {
	setup := func(t *testing.T) *runtime.Machine {
		m := runtime.NewMachine(testutils.HypertensionGraph())
		require.NoError(t, m.Replay("e-measure", "e-stage1", "e-risk-high"))
		require.Equal(t, "compelling", m.CurrentID())
		return m
	}

	t.Run("Truncates Before Target", func(t *testing.T) {
		m := setup(t)
		require.NoError(t, m.JumpTo("classify"))
		assert.Equal(t, "classify", m.CurrentID())
		assert.Equal(t, []domain.PathEntry{
			{NodeID: "measure", EdgeID: "e-measure", EdgeLabel: "BP recorded"},
		}, m.Path())

		// A fresh choice after the jump replaces the truncated history.
		require.NoError(t, m.Advance("e-elevated"))
		assert.Equal(t, []string{"e-measure", "e-elevated"}, runtime.EdgeIDs(m.Path()))
	})

	t.Run("To Start Empties Path", func(t *testing.T) {
		m := setup(t)
		require.NoError(t, m.JumpTo("measure"))
		assert.Equal(t, "measure", m.CurrentID())
		assert.Empty(t, m.Path())
	})

	t.Run("Not On Path", func(t *testing.T) {
		m := setup(t)
		before := m.Snapshot()
		for _, id := range []string{"acei", "compelling"} {
			err := m.JumpTo(id)
			assert.ErrorIs(t, err, domain.ErrNoOp, id)
			assert.Equal(t, before, m.Snapshot(), id)
		}
	})

	t.Run("Unknown Node", func(t *testing.T) {
		m := setup(t)
		before := m.Snapshot()
		assert.ErrorIs(t, m.JumpTo("ghost"), domain.ErrUnknownNode)
		assert.Equal(t, before, m.Snapshot())
	})

	t.Run("First Occurrence In A Loop", func(t *testing.T) {
		m := runtime.NewMachine(graph.MustLoad(testutils.Cyclic()))
		require.NoError(t, m.Replay("start->assess", "assess->treat", "treat->reassess", "reassess->assess", "assess->treat"))
		require.Len(t, m.Path(), 5)

		require.NoError(t, m.JumpTo("assess"))
		assert.Equal(t, "assess", m.CurrentID())
		assert.Equal(t, []string{"start->assess"}, runtime.EdgeIDs(m.Path()))
	})
}

func TestMachine_Replay(t *testing.T) {
	g := testutils.HypertensionGraph()
	edges := []string{"e-measure", "e-stage2", "e-none", "e-continue"}

	a := runtime.NewMachine(g)
	b := runtime.NewMachine(g)
	require.NoError(t, a.Replay(edges...))
	require.NoError(t, b.Advance("e-measure"))
	require.NoError(t, b.Replay(edges...))

	assert.Equal(t, a.Path(), b.Path())
	assert.Equal(t, "two-drugs", a.CurrentID())
	assert.Equal(t, edges, runtime.EdgeIDs(a.Path()))

	err := a.Replay("e-measure", "e-ckd")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "replay step 1")
	assert.Equal(t, "classify", a.CurrentID())
}

func TestMachine_PathIsACopy(t *testing.T) {
	m := runtime.NewMachine(testutils.HypertensionGraph())
	require.NoError(t, m.Advance("e-measure"))

	snap := m.Snapshot()
	snap.Path[0].EdgeLabel = "tampered"
	p := m.Path()
	p[0].NodeID = "tampered"

	assert.Equal(t, domain.PathEntry{NodeID: "measure", EdgeID: "e-measure", EdgeLabel: "BP recorded"}, m.Path()[0])
}

func TestMachine_LifecycleHooks(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "session-1")
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	var events []domain.TransitionEvent
	record := func(c context.Context, e *domain.TransitionEvent) {
		assert.Equal(t, "session-1", c.Value(key{}))
		events = append(events, *e)
	}
	hooks := domain.LifecycleHooks{
		OnAdvance:  record,
		OnBack:     record,
		OnJump:     record,
		OnReset:    record,
		OnRejected: record,
	}

	m := runtime.NewMachine(testutils.HypertensionGraph(),
		runtime.WithLifecycleHooks(hooks),
		runtime.WithContext(ctx),
		runtime.WithClock(func() time.Time { return fixed }),
	)

	require.NoError(t, m.Advance("e-measure"))
	require.NoError(t, m.Advance("e-stage1"))
	require.Error(t, m.Advance("e-ckd"))
	require.NoError(t, m.Back())
	require.NoError(t, m.JumpTo("measure"))
	require.ErrorIs(t, m.Back(), domain.ErrNoOp) // silent
	m.Reset()

	require.Len(t, events, 6)
	types := make([]domain.EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
		assert.Equal(t, fixed, e.Timestamp)
		assert.Equal(t, "hypertension", e.GraphID)
	}
	assert.Equal(t, []domain.EventType{
		domain.EventAdvance, domain.EventAdvance, domain.EventRejected,
		domain.EventBack, domain.EventJump, domain.EventReset,
	}, types)

	assert.Equal(t, "risk", events[1].ToNode)
	assert.Equal(t, 2, events[1].Depth)
	assert.Equal(t, "e-ckd", events[2].EdgeID)
	assert.ErrorIs(t, events[2].Err, domain.ErrInvalidTransition)
	assert.Equal(t, "classify", events[3].ToNode)
}
