package progress

import "context"

// Sink consumes batches of progress events. Implementations must be safe for
// repeated calls and may be invoked from several workers.
type Sink interface {
	Consume(ctx context.Context, batch []Event) error
	Close(ctx context.Context) error
}

// Emitter publishes individual events; Hub satisfies this interface so the
// lookup pipeline stays agnostic about where events end up.
type Emitter interface {
	Emit(ctx context.Context, evt Event)
}
