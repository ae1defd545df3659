package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/carepath/internal/runtime"
	"github.com/aretw0/carepath/internal/testutils"
	"github.com/aretw0/carepath/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestHooks_CountTraversal(t *testing.T) {
	m := metrics.New()
	g := testutils.HypertensionGraph()
	terminal := func(id string) bool {
		n, ok := g.GetNode(id)
		return ok && n.IsTerminal()
	}
	machine := runtime.NewMachine(g, runtime.WithLifecycleHooks(m.Hooks(terminal)))

	require.NoError(t, machine.Replay("e-measure", "e-stage2", "e-ckd"))
	require.NoError(t, machine.Back())
	assert.Error(t, machine.Advance("e-measure"))

	out := scrape(t, m)
	assert.Contains(t, out, `carepath_transitions_total{graph_id="hypertension",type="advance"} 3`)
	assert.Contains(t, out, `carepath_transitions_total{graph_id="hypertension",type="reset"} 1`)
	assert.Contains(t, out, `carepath_transitions_total{graph_id="hypertension",type="back"} 1`)
	assert.Contains(t, out, `carepath_transitions_total{graph_id="hypertension",type="rejected"} 1`)
	assert.Contains(t, out, `carepath_node_visits_total{graph_id="hypertension",node_id="acei"} 1`)
	assert.Contains(t, out, `carepath_outcomes_total{graph_id="hypertension",node_id="acei"} 1`)
	assert.Contains(t, out, `carepath_path_depth_count{graph_id="hypertension"} 3`)
}

func TestSessionsGauge(t *testing.T) {
	m := metrics.New()
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	assert.Contains(t, scrape(t, m), "carepath_active_sessions 1")
}
