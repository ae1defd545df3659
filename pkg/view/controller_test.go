package view_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/carepath/internal/runtime"
	"github.com/aretw0/carepath/internal/testutils"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/dsl"
	"github.com/aretw0/carepath/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	snaps []domain.Snapshot
}

func (r *recorder) Notify(s domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Snapshot(nil), r.snaps...)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func newController(t *testing.T, opts ...view.Option) (*view.Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append(opts, view.WithSubscriber(rec))
	c := view.NewController(runtime.NewMachine(testutils.HypertensionGraph()), opts...)
	return c, rec
}

func assertInSync(t *testing.T, c *view.Controller, rec *recorder) {
	t.Helper()
	snap := c.Snapshot()
	snaps := rec.all()
	require.NotEmpty(t, snaps)
	last := snaps[len(snaps)-1]

	assert.Equal(t, snap, last)
	assert.Equal(t, snap.CurrentNodeID, c.GraphView().ActiveNodeID())
	assert.Equal(t, snap.CurrentNodeID, c.Wizard().CurrentNodeID())
	assert.Equal(t, snap.Revision, c.GraphView().Revision())
	assert.Equal(t, snap.Revision, c.Wizard().Revision())
	assert.Equal(t, snap.Path, c.Wizard().Breadcrumb())
}

func TestController_DualViewConsistency(t *testing.T) {
	c, rec := newController(t)
	require.Equal(t, 1, rec.len(), "initial snapshot")
	assertInSync(t, c, rec)

	steps := []struct {
		name string
		op   func() error
		want string
	}{
		{"advance measure", func() error { return c.Advance("e-measure") }, "classify"},
		{"advance stage 1", func() error { return c.Advance("e-stage1") }, "risk"},
		{"advance high risk", func() error { return c.Advance("e-risk-high") }, "compelling"},
		{"back", c.Back, "risk"},
		{"choose first", func() error { return c.Choose(0) }, "compelling"},
		{"jump", func() error { return c.JumpTo("classify") }, "classify"},
		{"select path node", func() error {
			require.NoError(t, c.Advance("e-stage2"))
			return c.Select("measure")
		}, "measure"},
		{"reset", func() error { c.Reset(); return nil }, "measure"},
	}

	for _, s := range steps {
		before := rec.len()
		require.NoError(t, s.op(), s.name)
		assert.Equal(t, s.want, c.Wizard().CurrentNodeID(), s.name)
		assert.Greater(t, rec.len(), before, s.name)
		assertInSync(t, c, rec)
	}

	// Revisions are strictly increasing, one per published snapshot.
	for i, s := range rec.all() {
		assert.Equal(t, uint64(i), s.Revision)
	}
}

func TestController_FailedOperationsDoNotPublish(t *testing.T) {
	c, rec := newController(t)
	require.NoError(t, c.Advance("e-measure"))
	before := c.Snapshot()
	count := rec.len()

	assert.ErrorIs(t, c.Advance("e-ghost"), domain.ErrUnknownEdge)
	assert.ErrorIs(t, c.Advance("e-ckd"), domain.ErrInvalidTransition)
	assert.ErrorIs(t, c.JumpTo("ghost"), domain.ErrUnknownNode)
	assert.ErrorIs(t, c.JumpTo("acei"), domain.ErrNoOp)
	assert.ErrorIs(t, c.Select("hf"), domain.ErrNoOp)
	assert.ErrorIs(t, c.Choose(7), domain.ErrNoOp)

	assert.Equal(t, count, rec.len())
	assert.Equal(t, before, c.Snapshot())
	assertInSync(t, c, rec)

	require.NoError(t, c.Back())
	assert.ErrorIs(t, c.Back(), domain.ErrNoOp)
}

func TestController_LayoutIsStaticAcrossTraversal(t *testing.T) {
	c, _ := newController(t)
	before := c.Layout()

	require.NoError(t, c.Advance("e-measure"))
	require.NoError(t, c.Advance("e-stage2"))
	require.NoError(t, c.Back())

	assert.Equal(t, before, c.Layout())
	assert.Equal(t, before, c.GraphView().Layout())

	h := c.GraphView().Highlight()
	assert.Equal(t, "classify", h.Active)
	assert.True(t, h.IsTaken("e-measure"))
	assert.False(t, h.IsTaken("e-stage2"))

	box, ok := before.Node("classify")
	require.True(t, ok)
	assert.True(t, c.GraphView().Viewport().Contains(box.Box.Center()))
}

func TestController_LayoutIsACopy(t *testing.T) {
	c, _ := newController(t)
	want := c.Layout()

	res := c.Layout()
	res.Nodes[0].Box.X = -100
	res.Edges[0].Points[0].X = -100
	res.Ranks["measure"] = 42

	gv := c.GraphView().Layout()
	gv.Ranks["classify"] = 42

	assert.Equal(t, want, c.Layout())
	assert.Equal(t, want, c.GraphView().Layout())
}

func TestController_View(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.Replay("e-measure", "e-stage2"))

	st := c.View()
	assert.Equal(t, c.Snapshot(), st.Snapshot)
	assert.Equal(t, "compelling", st.Node.ID)
	assert.Equal(t, c.Available(), st.Choices)
	assert.Equal(t, "compelling", st.Highlight.Active)
	assert.True(t, st.Highlight.IsTaken("e-stage2"))
	assert.Equal(t, c.GraphView().Viewport(), st.Viewport)
}

func TestController_ViewIsNeverTorn(t *testing.T) {
	c, _ := newController(t)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			_ = c.Advance("e-measure")
			_ = c.Back()
		}
	}()

	for i := 0; i < 5000; i++ {
		st := c.View()
		require.Equal(t, st.Snapshot.CurrentNodeID, st.Node.ID, "revision %d", st.Snapshot.Revision)
		require.Equal(t, st.Snapshot.CurrentNodeID, st.Highlight.Active, "revision %d", st.Snapshot.Revision)
		for _, e := range st.Choices {
			require.Equal(t, st.Node.ID, e.Source, "revision %d", st.Snapshot.Revision)
		}
	}
	cancel()
	wg.Wait()
}

func TestController_WizardPanel(t *testing.T) {
	c, _ := newController(t)
	w := c.Wizard()

	assert.False(t, w.Expanded())
	assert.True(t, w.ToggleExpanded(), "measure has content")
	assert.True(t, w.Expanded())

	require.NoError(t, c.Advance("e-measure"))
	assert.False(t, w.Expanded(), "advance collapses")
	assert.False(t, w.ToggleExpanded(), "classify has no content")

	require.NoError(t, c.Replay("e-measure", "e-stage2", "e-ckd"))
	assert.True(t, w.Terminal())
	assert.Empty(t, w.Choices())
	assert.Equal(t, "Start ACE inhibitor or ARB", w.Node().Label)
	assert.True(t, w.ToggleExpanded())

	require.NoError(t, c.Back())
	assert.False(t, w.Expanded(), "back collapses")
	assert.Len(t, w.Choices(), 3)

	// A rejected operation leaves the panel alone.
	require.NoError(t, c.Advance("e-ckd"))
	require.True(t, w.ToggleExpanded())
	require.Error(t, c.Advance("e-hf"))
	assert.True(t, w.Expanded())
}

func TestController_Subscribe(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.Advance("e-measure"))

	late := &recorder{}
	unsubscribe := c.Subscribe(late)
	require.Equal(t, 1, late.len())
	assert.Equal(t, "classify", late.all()[0].CurrentNodeID)

	require.NoError(t, c.Advance("e-elevated"))
	assert.Equal(t, 2, late.len())

	unsubscribe()
	c.Retry()
	assert.Equal(t, 2, late.len())
	assert.Equal(t, "measure", c.Snapshot().CurrentNodeID)
}

func TestController_Reload(t *testing.T) {
	t.Run("Keeps A Valid Path", func(t *testing.T) {
		c, rec := newController(t)
		require.NoError(t, c.Replay("e-measure", "e-stage2"))

		b := testutils.Hypertension()
		b.Question("classify", "").Go("extra", "Isolated systolic", dsl.WithID("e-isolated"))
		b.Outcome("extra", "Extra outcome")
		def := b.Definition()
		def.Edges[0].Label = "Reading recorded"

		kept, err := c.Reload(def)
		require.NoError(t, err)
		assert.True(t, kept)
		assert.Equal(t, "compelling", c.Snapshot().CurrentNodeID)
		assert.Equal(t, "Reading recorded", c.Snapshot().Path[0].EdgeLabel)
		_, ok := c.Layout().Node("extra")
		assert.True(t, ok, "layout recomputed on reload")
		assertInSync(t, c, rec)
	})

	t.Run("Resets When A Step Disappears", func(t *testing.T) {
		c, rec := newController(t)
		require.NoError(t, c.Replay("e-measure", "e-stage2"))

		def := testutils.Hypertension().Definition()
		for i, e := range def.Edges {
			if e.ID == "e-stage2" {
				def.Edges = append(def.Edges[:i], def.Edges[i+1:]...)
				break
			}
		}

		kept, err := c.Reload(def)
		require.NoError(t, err)
		assert.False(t, kept)
		assert.Equal(t, "measure", c.Snapshot().CurrentNodeID)
		assert.Empty(t, c.Snapshot().Path)
		assertInSync(t, c, rec)
	})

	t.Run("Resets When The Last Edge Is Retargeted", func(t *testing.T) {
		c, rec := newController(t)
		require.NoError(t, c.Replay("e-measure", "e-stage2"))
		require.Equal(t, "compelling", c.Snapshot().CurrentNodeID)

		def := testutils.Hypertension().Definition()
		for i, e := range def.Edges {
			if e.ID == "e-stage2" {
				def.Edges[i].Target = "lifestyle"
			}
		}

		kept, err := c.Reload(def)
		require.NoError(t, err)
		assert.False(t, kept)
		assert.Equal(t, "measure", c.Snapshot().CurrentNodeID)
		assert.Empty(t, c.Snapshot().Path)
		assertInSync(t, c, rec)
	})

	t.Run("Rejects An Invalid Definition", func(t *testing.T) {
		c, rec := newController(t)
		require.NoError(t, c.Advance("e-measure"))
		before := c.Snapshot()
		count := rec.len()

		def := testutils.Hypertension().Definition()
		def.StartNodeID = "ghost"

		_, err := c.Reload(def)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, before, c.Snapshot())
		assert.Equal(t, count, rec.len())
	})
}

func TestController_ConcurrentOperations(t *testing.T) {
	c, rec := newController(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = c.Advance("e-measure")
				_ = c.Back()
				_ = c.Select("measure")
			}
		}()
	}
	wg.Wait()

	assertInSync(t, c, rec)
	for i, s := range rec.all() {
		assert.Equal(t, uint64(i), s.Revision)
	}
}

func TestDebounce(t *testing.T) {
	t.Run("Delivers The Latest Of A Burst", func(t *testing.T) {
		rec := &recorder{}
		d := view.Debounce(context.Background(), rec, 20*time.Millisecond)

		for i := 1; i <= 5; i++ {
			d.Notify(domain.Snapshot{Revision: uint64(i)})
		}
		assert.Zero(t, rec.len())

		require.Eventually(t, func() bool { return rec.len() == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, uint64(5), rec.all()[0].Revision)

		d.Notify(domain.Snapshot{Revision: 6})
		d.Flush()
		require.Equal(t, 2, rec.len())
		assert.Equal(t, uint64(6), rec.all()[1].Revision)
	})

	t.Run("Stops With Its Context", func(t *testing.T) {
		rec := &recorder{}
		ctx, cancel := context.WithCancel(context.Background())
		d := view.Debounce(ctx, rec, 200*time.Millisecond)

		d.Notify(domain.Snapshot{Revision: 1})
		cancel()
		time.Sleep(50 * time.Millisecond)
		d.Notify(domain.Snapshot{Revision: 2})
		d.Flush()
		time.Sleep(250 * time.Millisecond)
		assert.Zero(t, rec.len())
	})

	t.Run("Behind A Controller", func(t *testing.T) {
		rec := &recorder{}
		d := view.Debounce(context.Background(), rec, 10*time.Millisecond)
		defer d.Close()
		c := view.NewController(runtime.NewMachine(testutils.HypertensionGraph()), view.WithSubscriber(d))

		require.NoError(t, c.Replay("e-measure", "e-stage1"))
		require.NoError(t, c.Advance("e-risk-low"))

		require.Eventually(t, func() bool {
			snaps := rec.all()
			return len(snaps) > 0 && snaps[len(snaps)-1].CurrentNodeID == "recheck"
		}, time.Second, 5*time.Millisecond)
	})
}
