package weather

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/JakeFAU/weather-lookup/internal/progress"
)

// MockFetcher is a mock implementation of the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(FetchResponse), args.Error(1)
}

// pageFetcher serves canned bodies keyed by URL.
type pageFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	err      error
	requests []FetchRequest
}

func (f *pageFetcher) Fetch(_ context.Context, request FetchRequest) (FetchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request)
	if f.err != nil {
		return FetchResponse{}, f.err
	}
	body, ok := f.pages[request.URL]
	if !ok {
		body = "<html><body></body></html>"
	}
	return FetchResponse{URL: request.URL, StatusCode: 200, Body: []byte(body)}, nil
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recordingEmitter) Emit(_ context.Context, evt progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingEmitter) Stages() []progress.Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]progress.Stage, 0, len(r.events))
	for _, evt := range r.events {
		out = append(out, evt.Stage)
	}
	return out
}

// stepClock advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}
