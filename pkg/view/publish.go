package view

import (
	"context"
	"log/slog"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/ports"
)

// Forward returns a Subscriber that hands every snapshot to pub. Publish
// errors are logged and never reach the traversal. Publishing happens under
// the controller lock, so remote publishers are usually wrapped in Debounce.
func Forward(ctx context.Context, pub ports.SnapshotPublisher, logger *slog.Logger) Subscriber {
	if logger == nil {
		logger = logging.NewNop()
	}
	return SubscriberFunc(func(s domain.Snapshot) {
		if ctx.Err() != nil {
			return
		}
		if err := pub.Publish(ctx, s); err != nil {
			logger.Warn("snapshot publish failed", "graph_id", s.GraphID, "revision", s.Revision, "err", err)
		}
	})
}
