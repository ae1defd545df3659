package ports

import (
	"context"

	"github.com/aretw0/carepath/pkg/domain"
)

// DefinitionSource loads a graph definition from a backing store.
// Loading does not validate; graph.Load does.
type DefinitionSource interface {
	Load(ctx context.Context) (domain.GraphDefinition, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying definition changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
