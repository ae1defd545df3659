package summary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/pkg/ports"
)

// Resetter restarts a traversal. *view.Controller satisfies it.
type Resetter interface {
	Retry()
}

// Service exports summaries off the traversal path.
type Service struct {
	exporter ports.Exporter
	resetter Resetter
	timeout  time.Duration
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeout bounds every export. Zero means no bound.
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = d }
}

// NewService creates a Service exporting through exp and restarting
// traversals through r. r may be nil when Retry is not used.
func NewService(exp ports.Exporter, r Resetter, opts ...ServiceOption) *Service {
	s := &Service{
		exporter: exp,
		resetter: r,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportAsync exports doc in its own goroutine. The returned channel yields
// exactly one value, nil on success, and is then closed. Export failures
// never touch traversal state.
func (s *Service) ExportAsync(ctx context.Context, doc Document) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		start := time.Now()
		err := s.exporter.Export(ctx, doc)
		if err != nil {
			err = fmt.Errorf("export %s: %w", doc.GraphID, err)
			s.logger.Warn("summary export failed", "graph", doc.GraphID, "outcome", doc.Outcome.NodeID, "error", err)
		} else {
			s.logger.Info("summary exported", "graph", doc.GraphID, "outcome", doc.Outcome.NodeID, "steps", len(doc.Steps), "took", time.Since(start))
		}
		done <- err
	}()
	return done
}

// Retry restarts the traversal from the start node.
func (s *Service) Retry() {
	if s.resetter != nil {
		s.resetter.Retry()
	}
}
