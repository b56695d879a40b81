package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
)

type stubQuestionStore struct {
	questions []model.Question
	err       error
	calls     int
}

func (s *stubQuestionStore) ListByExam(context.Context, int64) ([]model.Question, error) {
	s.calls++
	return s.questions, s.err
}

func TestQuestionSetLoader_OrdersByID(t *testing.T) {
	q2 := question(2, 2, 0)
	q2.Options[0], q2.Options[1] = q2.Options[1], q2.Options[0]
	store := &stubQuestionStore{questions: []model.Question{question(3, 2, 0), q2, question(1, 2, 1)}}

	got, err := NewQuestionSetLoader(store).Load(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, int64(21), got[1].Options[0].ID)
	assert.Equal(t, int64(22), got[1].Options[1].ID)

	// Caller's slice is untouched.
	assert.Equal(t, int64(3), store.questions[0].ID)
	assert.Equal(t, int64(22), store.questions[1].Options[0].ID)
}

func TestQuestionSetLoader_EmptyExam(t *testing.T) {
	got, err := NewQuestionSetLoader(&stubQuestionStore{}).Load(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestQuestionSetLoader_FailureIsNotRetried(t *testing.T) {
	store := &stubQuestionStore{err: errStoreDown}

	_, err := NewQuestionSetLoader(store).Load(context.Background(), 7)

	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 1, store.calls)
}
