// Package sinks implements concrete progress consumers: a terminal printer for
// the human-readable lookup output, Prometheus counters, and structured
// logging. Each sink satisfies the progress.Sink interface.
package sinks
