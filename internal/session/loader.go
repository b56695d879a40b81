package session

import (
	"context"
	"fmt"
	"sort"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
)

// QuestionStore reads the questions of an exam with their options.
type QuestionStore interface {
	ListByExam(ctx context.Context, examID int64) ([]model.Question, error)
}

// Loader yields the ordered question set of an exam.
type Loader interface {
	Load(ctx context.Context, examID int64) ([]model.Question, error)
}

// QuestionSetLoader fetches a question set once, without retrying.
type QuestionSetLoader struct {
	store QuestionStore
}

// NewQuestionSetLoader creates a loader over store.
func NewQuestionSetLoader(store QuestionStore) *QuestionSetLoader {
	return &QuestionSetLoader{store: store}
}

// Load returns the exam's questions ordered by id, each with its options ordered
// by id. Any store failure is reported as ErrDataUnavailable. An exam without
// questions yields an empty, non-nil slice.
func (l *QuestionSetLoader) Load(ctx context.Context, examID int64) ([]model.Question, error) {
	questions, err := l.store.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("%w: exam %d: %w", ErrDataUnavailable, examID, err)
	}

	out := make([]model.Question, len(questions))
	copy(out, questions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	for i := range out {
		opts := make([]model.Option, len(out[i].Options))
		copy(opts, out[i].Options)
		sort.SliceStable(opts, func(a, b int) bool { return opts[a].ID < opts[b].ID })
		out[i].Options = opts
	}
	return out, nil
}
