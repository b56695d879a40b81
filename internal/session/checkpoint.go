package session

import (
	"context"
	"time"
)

// Checkpoint keeps the start instant and answers of a session outside the
// process, so a controller re-created after a restart resumes the same
// countdown instead of a fresh one.
type Checkpoint interface {
	// Begin returns the instant the session first started, recording now if
	// it never did, along with the answers recorded so far.
	Begin(ctx context.Context, now time.Time) (time.Time, map[int64]int64, error)
	// Record saves one accepted answer. Failures are the implementation's to log.
	Record(questionID, optionID int64)
}
