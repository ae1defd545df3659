package view

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/carepath/pkg/domain"
)

// Debounced coalesces bursts of snapshots for an expensive subscriber.
type Debounced struct {
	mu       sync.Mutex
	deliver  sync.Mutex // keeps deliveries in order
	next     Subscriber
	interval time.Duration
	pending  *domain.Snapshot
	timer    *time.Timer
	closed   bool
	stop     func() bool
}

// Debounce wraps sub so that a burst of snapshots is delivered as a single
// call carrying the latest one, at most interval after the first snapshot
// of the burst. Notify never blocks on sub. Pending deliveries are dropped
// once ctx is done.
func Debounce(ctx context.Context, sub Subscriber, interval time.Duration) *Debounced {
	d := &Debounced{next: sub, interval: interval}
	d.stop = context.AfterFunc(ctx, d.close)
	return d
}

// Notify records s as the latest snapshot and arms the delivery timer.
func (d *Debounced) Notify(s domain.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	latest := s.Clone()
	d.pending = &latest
	if d.timer == nil {
		d.timer = time.AfterFunc(d.interval, d.flush)
	}
}

// Flush delivers the pending snapshot now, if any.
func (d *Debounced) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.flush()
}

// Close drops any pending snapshot and stops further deliveries.
func (d *Debounced) Close() {
	d.stop()
	d.close()
}

func (d *Debounced) flush() {
	d.deliver.Lock()
	defer d.deliver.Unlock()

	d.mu.Lock()
	s := d.pending
	d.pending = nil
	d.timer = nil
	closed := d.closed
	d.mu.Unlock()

	if s != nil && !closed {
		d.next.Notify(*s)
	}
}

func (d *Debounced) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
