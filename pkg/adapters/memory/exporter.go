package memory

import (
	"context"
	"sync"

	"github.com/aretw0/carepath/pkg/domain"
)

// Exporter implements ports.Exporter by keeping summaries in memory.
// Safe for concurrent use.
type Exporter struct {
	mu   sync.RWMutex
	docs []domain.Summary
	fail error
}

// NewExporter creates an empty exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// FailWith makes every following Export return err. Nil restores success.
func (e *Exporter) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail = err
}

// Export records doc.
func (e *Exporter) Export(ctx context.Context, doc domain.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail != nil {
		return e.fail
	}
	e.docs = append(e.docs, doc)
	return nil
}

// Documents returns the exported summaries in order.
func (e *Exporter) Documents() []domain.Summary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.Summary(nil), e.docs...)
}
