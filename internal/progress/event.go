package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone represented by an Event.
type Stage string

// Supported lookup stages.
const (
	StageSearch   Stage = "SEARCH"
	StageResolved Stage = "RESOLVED"
	StageNotFound Stage = "NOT_FOUND"
	StageRender   Stage = "RENDER"
	StageDetails  Stage = "DETAILS"
	StageFailed   Stage = "FAILED"
)

// Event captures a single step of one location lookup.
type Event struct {
	// LookupID identifies the lookup using the 16-byte UUID form.
	LookupID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Worker names the pool worker running the lookup.
	Worker string
	// Query is the trimmed location query as entered.
	Query string
	// URL is the search or result page URL for the stage.
	URL string
	// Dur captures the latency of the stage that just finished.
	Dur time.Duration
	// Body carries the formatted weather block for StageDetails.
	Body string
	// Note lets emitters attach low-volume context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.LookupID == [16]byte{} {
		return errors.New("lookup id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	if e.Query == "" {
		return errors.New("query is required")
	}
	switch e.Stage {
	case StageSearch, StageResolved, StageRender:
		if e.URL == "" {
			return fmt.Errorf("%s requires url", e.Stage)
		}
	case StageNotFound, StageDetails, StageFailed:
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// LookupUUID converts the binary lookup ID back to uuid.UUID.
func (e Event) LookupUUID() uuid.UUID {
	return uuid.UUID(e.LookupID)
}
