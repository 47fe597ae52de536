package weather

import (
	"context"
	"io"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata. The static search
// fetch and the headless render both satisfy it.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Formatter renders a metrics table for display.
type Formatter func(w io.Writer, table *Table) error
