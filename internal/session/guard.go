package session

import (
	"sync"
	"sync/atomic"
	"time"
)

// Trigger identifies what asked for a session to be finalized.
type Trigger string

const (
	TriggerDeadline Trigger = "deadline"
	TriggerManual   Trigger = "manual"
)

// Finalization is the sealed result of the one winning finalize. Retries after
// a failed write reuse it unchanged.
type Finalization struct {
	Outcome
	SolveDurationMinutes int       `json:"solve_duration_minutes"`
	FinalizedAt          time.Time `json:"finalized_at"`
	Trigger              Trigger   `json:"trigger"`
}

// SubmissionGuard picks exactly one winner among competing finalize triggers.
// The latch is set with a single compare-and-swap and is never re-armed.
type SubmissionGuard struct {
	latched atomic.Bool

	mu     sync.Mutex
	winner Trigger
	sealed *Finalization
}

// NewSubmissionGuard returns an unset guard.
func NewSubmissionGuard() *SubmissionGuard {
	return &SubmissionGuard{}
}

// TryFinalize sets the latch. It returns true for exactly one caller over the
// guard's lifetime; every other call is a no-op returning false.
func (g *SubmissionGuard) TryFinalize(trigger Trigger) bool {
	if !g.latched.CompareAndSwap(false, true) {
		return false
	}
	g.mu.Lock()
	g.winner = trigger
	g.mu.Unlock()
	return true
}

// Latched reports whether a winner has been chosen.
func (g *SubmissionGuard) Latched() bool { return g.latched.Load() }

// Winner returns the trigger that set the latch.
func (g *SubmissionGuard) Winner() (Trigger, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner, g.latched.Load()
}

// Seal computes the finalization once. Later calls return the first value
// without invoking compute.
func (g *SubmissionGuard) Seal(compute func() Finalization) (Finalization, error) {
	if !g.latched.Load() {
		return Finalization{}, ErrNotLatched
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sealed == nil {
		f := compute()
		g.sealed = &f
	}
	return *g.sealed, nil
}

// Sealed returns the sealed finalization, if any.
func (g *SubmissionGuard) Sealed() (Finalization, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sealed == nil {
		return Finalization{}, false
	}
	return *g.sealed, true
}
