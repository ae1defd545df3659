package domain

import (
	"context"
	"time"
)

// EventType defines the category of a traversal event.
type EventType string

const (
	EventAdvance  EventType = "advance"
	EventBack     EventType = "back"
	EventJump     EventType = "jump"
	EventReset    EventType = "reset"
	EventRejected EventType = "rejected"
)

// TransitionEvent describes one attempted or completed state change.
type TransitionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	GraphID   string    `json:"graph_id"`
	FromNode  string    `json:"from_node"`
	ToNode    string    `json:"to_node"`
	EdgeID    string    `json:"edge_id,omitempty"`
	Depth     int       `json:"depth"`

	// Err is set on rejected events.
	Err error `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnAdvance  func(context.Context, *TransitionEvent)
	OnBack     func(context.Context, *TransitionEvent)
	OnJump     func(context.Context, *TransitionEvent)
	OnReset    func(context.Context, *TransitionEvent)
	OnRejected func(context.Context, *TransitionEvent)
}

// Emit dispatches evt to the hook matching its type.
func (h LifecycleHooks) Emit(ctx context.Context, evt *TransitionEvent) {
	var fn func(context.Context, *TransitionEvent)
	switch evt.Type {
	case EventAdvance:
		fn = h.OnAdvance
	case EventBack:
		fn = h.OnBack
	case EventJump:
		fn = h.OnJump
	case EventReset:
		fn = h.OnReset
	case EventRejected:
		fn = h.OnRejected
	}
	if fn != nil {
		fn(ctx, evt)
	}
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	chain := func(a, b func(context.Context, *TransitionEvent)) func(context.Context, *TransitionEvent) {
		if a == nil {
			return b
		}
		if b == nil {
			return a
		}
		return func(ctx context.Context, e *TransitionEvent) {
			a(ctx, e)
			b(ctx, e)
		}
	}
	return LifecycleHooks{
		OnAdvance:  chain(h.OnAdvance, other.OnAdvance),
		OnBack:     chain(h.OnBack, other.OnBack),
		OnJump:     chain(h.OnJump, other.OnJump),
		OnReset:    chain(h.OnReset, other.OnReset),
		OnRejected: chain(h.OnRejected, other.OnRejected),
	}
}
