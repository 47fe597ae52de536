package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JakeFAU/weather-lookup/internal/progress"
)

// PrometheusSink exports lookup progress via Prometheus. It owns the
// collectors for lookups started, lookups completed by result, and per-stage
// latency.
type PrometheusSink struct {
	lookupsStarted   prometheus.Counter
	lookupsCompleted *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		lookupsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_lookups_started_total",
			Help: "Total location lookups that have started.",
		}),
		lookupsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_lookups_completed_total",
			Help: "Total location lookups completed partitioned by result.",
		}, []string{"result"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weather_lookup_stage_duration_seconds",
			Help:    "Latency of each lookup stage.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"stage"}),
	}
	for _, collector := range []prometheus.Collector{
		s.lookupsStarted,
		s.lookupsCompleted,
		s.stageDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors using the provided batch.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageSearch:
		s.lookupsStarted.Inc()
	case progress.StageNotFound:
		s.lookupsCompleted.WithLabelValues("not_found").Inc()
	case progress.StageDetails:
		s.lookupsCompleted.WithLabelValues("found").Inc()
	case progress.StageFailed:
		s.lookupsCompleted.WithLabelValues("error").Inc()
	}
	if evt.Dur > 0 {
		s.stageDuration.WithLabelValues(string(evt.Stage)).Observe(evt.Dur.Seconds())
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
