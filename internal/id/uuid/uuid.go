// Package uuid provides lookup ID generation.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates time-ordered UUID v7 identifiers so lookups sort by start.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewLookupID returns a UUID7 as the raw bytes carried on lookups and events.
func (Generator) NewLookupID() ([16]byte, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return [16]byte{}, fmt.Errorf("generate uuid7: %w", err)
	}
	return id, nil
}
