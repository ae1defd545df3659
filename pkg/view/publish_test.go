package view_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/carepath/internal/runtime"
	"github.com/aretw0/carepath/internal/testutils"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu    sync.Mutex
	snaps []domain.Snapshot
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, s domain.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.snaps = append(p.snaps, s)
	return nil
}

func TestForward(t *testing.T) {
	pub := &recordingPublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	c := view.NewController(runtime.NewMachine(testutils.HypertensionGraph()), view.WithSubscriber(view.Forward(ctx, pub, nil)))

	require.NoError(t, c.Advance("e-measure"))
	require.Len(t, pub.snaps, 2)
	assert.Equal(t, "classify", pub.snaps[1].CurrentNodeID)

	cancel()
	require.NoError(t, c.Advance("e-elevated"))
	assert.Len(t, pub.snaps, 2, "cancelled context stops forwarding")
}

func TestForward_ErrorsDoNotBreakTraversal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("connection refused")}
	c := view.NewController(runtime.NewMachine(testutils.HypertensionGraph()),
		view.WithSubscriber(view.Forward(context.Background(), pub, nil)))

	require.NoError(t, c.Advance("e-measure"))
	assert.Equal(t, "classify", c.Snapshot().CurrentNodeID)
}
