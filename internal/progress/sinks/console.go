package sinks

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/JakeFAU/weather-lookup/internal/progress"
)

const notFoundRule = "--+--+--+--+--+--+--"

// ConsoleSink prints lookup progress and weather blocks for a human reader.
// Each event is written with a single Write call so lines from different
// workers never tear, although they may interleave.
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleSink writes to w, usually os.Stdout.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Consume renders every event in the batch.
func (s *ConsoleSink) Consume(_ context.Context, batch []progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evt := range batch {
		text := render(evt)
		if text == "" {
			continue
		}
		if _, err := io.WriteString(s.w, text); err != nil {
			return fmt.Errorf("write console event: %w", err)
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *ConsoleSink) Close(context.Context) error {
	return nil
}

func render(evt progress.Event) string {
	worker := evt.Worker
	if worker == "" {
		worker = "main"
	}
	switch evt.Stage {
	case progress.StageSearch:
		return fmt.Sprintf("\n%s: Search Page URL for %s: %s\nLoading query results...\n", worker, evt.Query, evt.URL)
	case progress.StageResolved:
		return fmt.Sprintf("%s: Result url: %s\n", worker, evt.URL)
	case progress.StageNotFound:
		return fmt.Sprintf("\n%s\n\n%s: No results found for %s.\n\n%s\n\n",
			notFoundRule, worker, strings.ToUpper(evt.Query), notFoundRule)
	case progress.StageRender:
		return fmt.Sprintf("\n%s: Loading result details...\n", worker)
	case progress.StageDetails:
		return fmt.Sprintf("\n\n%s: Weather details for %s\n\n%s", worker, strings.ToUpper(evt.Query), evt.Body)
	case progress.StageFailed:
		return fmt.Sprintf("\n%s: Weather lookup failed for %s.\n", worker, strings.ToUpper(evt.Query))
	default:
		return ""
	}
}
