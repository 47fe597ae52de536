package weather

import (
	"net/http"
	"time"
)

// TemperatureLabel keys the temperature entry in every Table.
const TemperatureLabel = "Temperature"

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}

// Metric is one weather attribute: a magnitude, its unit, and an optional
// direction such as "NW" for wind.
type Metric struct {
	Magnitude string
	Unit      string
	Direction string
}

// NewTemperature builds the temperature metric, which never has a direction.
func NewTemperature(value, unit string) Metric {
	return Metric{Magnitude: value, Unit: unit}
}

// HasDirection reports whether the metric carries a directional qualifier.
func (m Metric) HasDirection() bool {
	return m.Direction != ""
}

// Value joins magnitude and unit for display.
func (m Metric) Value() string {
	return m.Magnitude + " " + m.Unit
}

// Table maps metric labels to metrics. Labels are unique; iteration follows
// first insertion so output is stable across runs.
type Table struct {
	labels  []string
	entries map[string]Metric
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[string]Metric)}
}

// Set stores m under label, replacing any previous value in place.
func (t *Table) Set(label string, m Metric) {
	if _, ok := t.entries[label]; !ok {
		t.labels = append(t.labels, label)
	}
	t.entries[label] = m
}

// Get returns the metric stored under label.
func (t *Table) Get(label string) (Metric, bool) {
	m, ok := t.entries[label]
	return m, ok
}

// Len returns the number of labels.
func (t *Table) Len() int {
	return len(t.labels)
}

// Labels returns a copy of the labels in iteration order.
func (t *Table) Labels() []string {
	return append([]string(nil), t.labels...)
}

// Each calls fn for every entry in iteration order.
func (t *Table) Each(fn func(label string, m Metric)) {
	for _, label := range t.labels {
		fn(label, t.entries[label])
	}
}

// Resolution is the outcome of a search. Found is false when no result
// matched, which is an expected outcome rather than an error.
type Resolution struct {
	Query string
	URL   string
	Found bool
}

// Lookup identifies one query's trip through the pipeline.
type Lookup struct {
	ID     [16]byte
	Query  string
	Worker string
}
