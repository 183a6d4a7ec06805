// Package progress defines the event stream emitted by a harvest run and the
// hub that fans it out to observers.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart      Stage = "RUN_START"
	StageRunDone       Stage = "RUN_DONE"
	StageBatchDone     Stage = "BATCH_DONE"
	StageProfileDone   Stage = "PROFILE_DONE"
	StageProfileFailed Stage = "PROFILE_FAILED"
	StageCommit        Stage = "COMMIT"
)

// Event captures a single milestone of harvester progress.
type Event struct {
	// RunID uniquely identifies a harvest run.
	RunID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Batch scopes batch events to a cohort code.
	Batch string
	// URL is the profile URL for per-profile events.
	URL string
	// Count carries a stage-specific tally: profiles discovered for
	// BATCH_DONE, records committed for COMMIT.
	Count int
	// Dur captures execution latency for profile and run completions.
	Dur time.Duration
	// Note lets emitters attach low-volume context such as error text.
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == uuid.Nil {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone, StageCommit:
	case StageBatchDone:
		if e.Batch == "" {
			return errors.New("batch done requires batch")
		}
	case StageProfileDone, StageProfileFailed:
		if e.URL == "" {
			return errors.New("profile events require url")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
