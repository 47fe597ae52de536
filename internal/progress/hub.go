package progress

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub fans each Event out to the registered sinks. Delivery is synchronous and
// serialized, so sinks observe events in the order they were emitted.
type Hub struct {
	mu     sync.Mutex
	sinks  []Sink
	logger *zap.Logger
	closed bool
}

// NewHub returns a Hub delivering to sinks. A nil logger is replaced with a no-op.
func NewHub(logger *zap.Logger, sinks ...Sink) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		sinks:  append([]Sink(nil), sinks...),
		logger: logger,
	}
}

// Emit validates evt and hands it to every sink. Invalid events and events
// emitted after Close are discarded.
func (h *Hub) Emit(ctx context.Context, evt Event) {
	if h == nil {
		return
	}
	if err := evt.Validate(); err != nil {
		h.logger.Debug("discarding invalid progress event", zap.Error(err))
		return
	}
	batch := []Event{evt}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for _, sink := range h.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Consume(ctx, batch); err != nil {
			h.logger.Warn("progress sink consume failed", zap.String("stage", string(evt.Stage)), zap.Error(err))
		}
	}
}

// Close closes every sink once. Later calls are no-ops.
func (h *Hub) Close(ctx context.Context) error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for _, sink := range h.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Close(ctx); err != nil {
			h.logger.Warn("progress sink close failed", zap.Error(err))
		}
	}
	return nil
}
