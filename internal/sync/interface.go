package sync

import (
	"context"
	"time"
)

// Syncer runs synchronization cycles.
type Syncer interface {
	// RunCycle performs one fetch → merge → persist → notify → push cycle.
	//
	// If a cycle is already in flight the call is coalesced: it returns at
	// once with OutcomeCoalesced and performs no network or store work.
	RunCycle(ctx context.Context) CycleResult

	// State returns the state of the cycle currently in flight, or StateIdle.
	State() State

	// LastResult returns the result of the most recent completed cycle.
	// ok is false before the first cycle completes.
	LastResult() (result CycleResult, ok bool)
}

// State is a step of the sync cycle state machine.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateMerging
	StatePersisting
	StateNotifying
	StatePushing
	StateErrored
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateMerging:
		return "merging"
	case StatePersisting:
		return "persisting"
	case StateNotifying:
		return "notifying"
	case StatePushing:
		return "pushing"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Outcome summarizes how a cycle ended.
type Outcome string

const (
	// OutcomeCompleted means every step succeeded.
	OutcomeCompleted Outcome = "completed"

	// OutcomeFetchFailed means the server snapshot could not be read.
	OutcomeFetchFailed Outcome = "fetch_failed"

	// OutcomePersistFailed means merged quotes could not be saved.
	OutcomePersistFailed Outcome = "persist_failed"

	// OutcomePushFailed means the merge was committed but the push failed.
	OutcomePushFailed Outcome = "push_failed"

	// OutcomeCoalesced means another cycle was in flight.
	OutcomeCoalesced Outcome = "coalesced"
)

// CycleResult describes one RunCycle call.
type CycleResult struct {
	ID       string        `json:"id,omitempty"`
	Outcome  Outcome       `json:"outcome"`
	Fetched  int           `json:"fetched"`
	Added    int           `json:"added"`
	Pushed   int           `json:"pushed"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// ErrorMessage returns the failure message, or "" for a successful cycle.
func (r CycleResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Changed reports whether the cycle added quotes to the store.
func (r CycleResult) Changed() bool {
	return r.Added > 0
}
