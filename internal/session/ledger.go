package session

import "sync"

// AnswerLedger maps question ids to the option id the learner selected.
// Entries are overwritten, never removed.
type AnswerLedger struct {
	mu      sync.RWMutex
	answers map[int64]int64
}

// NewAnswerLedger returns an empty ledger.
func NewAnswerLedger() *AnswerLedger {
	return &AnswerLedger{answers: make(map[int64]int64)}
}

// Record stores optionID as the answer to questionID, replacing any earlier choice.
func (l *AnswerLedger) Record(questionID, optionID int64) {
	l.mu.Lock()
	l.answers[questionID] = optionID
	l.mu.Unlock()
}

// Snapshot returns a copy of the ledger that later writes cannot change.
func (l *AnswerLedger) Snapshot() map[int64]int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[int64]int64, len(l.answers))
	for q, o := range l.answers {
		out[q] = o
	}
	return out
}

// Len returns the number of answered questions.
func (l *AnswerLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.answers)
}
