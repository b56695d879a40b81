package session

import "errors"

// Session errors.
var (
	// ErrDataUnavailable means the question set could not be loaded. Fatal to the session.
	ErrDataUnavailable = errors.New("question set unavailable")
	// ErrUnauthenticated means no learner identity was available at finalize time. Fatal.
	ErrUnauthenticated = errors.New("no authenticated learner")
	// ErrPersistFailed means the submission store rejected or lost the write. Retryable.
	ErrPersistFailed = errors.New("submission could not be persisted")
	// ErrSubmissionConflict is returned by submission stores when the learner already
	// submitted this exam. The controller treats it as success.
	ErrSubmissionConflict = errors.New("submission already exists")

	ErrAlreadyLoaded   = errors.New("session already loaded")
	ErrRetryNotAllowed = errors.New("session is not awaiting a retry")
	ErrUnknownQuestion = errors.New("question does not belong to this exam")
	ErrUnknownOption   = errors.New("option does not belong to this question")
	ErrNotLatched      = errors.New("finalize latch is not set")
)
