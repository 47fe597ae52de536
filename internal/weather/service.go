package weather

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/weather-lookup/internal/clock/system"
	"github.com/JakeFAU/weather-lookup/internal/progress"
)

// Service runs the full lookup pipeline for one query at a time. It is safe
// for concurrent use; every call owns its own fetches and browser session.
type Service struct {
	resolver  *Resolver
	extractor *Extractor
	format    Formatter
	emitter   progress.Emitter
	clock     Clock
	logger    *zap.Logger
}

// NewService wires the pipeline stages together.
func NewService(
	resolver *Resolver,
	extractor *Extractor,
	format Formatter,
	emitter progress.Emitter,
	clock Clock,
	logger *zap.Logger,
) (*Service, error) {
	if resolver == nil || extractor == nil {
		return nil, errors.New("service requires a resolver and an extractor")
	}
	if format == nil {
		return nil, errors.New("service requires a formatter")
	}
	if clock == nil {
		clock = system.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver:  resolver,
		extractor: extractor,
		format:    format,
		emitter:   emitter,
		clock:     clock,
		logger:    logger,
	}, nil
}

// Run looks up lk.Query and reports every milestone through the emitter. A
// query without a matching result is reported and returns nil; fetch, render
// and format failures are reported and returned.
func (s *Service) Run(ctx context.Context, lk Lookup) error {
	logger := s.logger.With(zap.String("query", lk.Query), zap.String("worker", lk.Worker))

	s.emit(ctx, lk, progress.Event{Stage: progress.StageSearch, URL: s.resolver.SearchURL(lk.Query)})

	start := s.clock.Now()
	res, err := s.resolver.Resolve(ctx, lk.Query)
	if err != nil {
		return s.fail(ctx, lk, fmt.Errorf("resolve %q: %w", lk.Query, err))
	}
	if !res.Found {
		logger.Info("no matching search result")
		s.emit(ctx, lk, progress.Event{Stage: progress.StageNotFound, Dur: s.since(start)})
		return nil
	}
	s.emit(ctx, lk, progress.Event{Stage: progress.StageResolved, URL: res.URL, Dur: s.since(start)})

	s.emit(ctx, lk, progress.Event{Stage: progress.StageRender, URL: res.URL})
	start = s.clock.Now()
	table, err := s.extractor.Extract(ctx, res.URL)
	if err != nil {
		return s.fail(ctx, lk, fmt.Errorf("extract %q: %w", res.URL, err))
	}

	var buf bytes.Buffer
	if err := s.format(&buf, table); err != nil {
		return s.fail(ctx, lk, fmt.Errorf("format metrics: %w", err))
	}
	s.emit(ctx, lk, progress.Event{
		Stage: progress.StageDetails,
		URL:   res.URL,
		Body:  buf.String(),
		Dur:   s.since(start),
	})
	logger.Info("lookup complete", zap.String("url", res.URL), zap.Int("metrics", table.Len()))
	return nil
}

func (s *Service) fail(ctx context.Context, lk Lookup, err error) error {
	s.emit(ctx, lk, progress.Event{Stage: progress.StageFailed, Note: err.Error()})
	return err
}

func (s *Service) emit(ctx context.Context, lk Lookup, evt progress.Event) {
	if s.emitter == nil {
		return
	}
	evt.LookupID = lk.ID
	evt.TS = s.clock.Now()
	evt.Worker = lk.Worker
	evt.Query = lk.Query
	s.emitter.Emit(ctx, evt)
}

func (s *Service) since(start time.Time) time.Duration {
	d := s.clock.Now().Sub(start)
	if d < 0 {
		return 0
	}
	return d
}
