package ports

import (
	"context"

	"github.com/aretw0/carepath/pkg/domain"
)

// Exporter hands a completed traversal to a document generator.
type Exporter interface {
	Export(ctx context.Context, doc domain.Summary) error
}

// SnapshotPublisher forwards snapshots to renderers outside the process.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}
