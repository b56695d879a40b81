package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
)

func TestExamService_Lobby(t *testing.T) {
	now := time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)
	learner := uuid.New()

	exams := &fakeExams{exams: []model.Exam{
		{ID: 1, Name: "taken", EndDate: ptrTime(now.Add(-time.Hour))},
		{ID: 2, Name: "missed", EndDate: ptrTime(now.Add(-time.Minute))},
		{ID: 3, Name: "open", StartDate: ptrTime(now.Add(-time.Hour)), EndDate: ptrTime(now.Add(time.Hour))},
		{ID: 4, Name: "no end date"},
		{ID: 5, Name: "later", StartDate: ptrTime(now.Add(24 * time.Hour))},
		{ID: 6, Name: "ends now", EndDate: ptrTime(now)},
	}}
	subs := &fakeSubmissions{scores: map[uuid.UUID]map[int64]int{learner: {1: 80}}}

	lobby, err := NewExamService(exams, subs, zerolog.Nop()).Lobby(context.Background(), learner, now)
	require.NoError(t, err)
	require.Len(t, lobby, 6)

	want := []model.Availability{
		model.AvailabilityTaken,
		model.AvailabilityMissed,
		model.AvailabilityAvailable,
		model.AvailabilityAvailable,
		model.AvailabilityUpcoming,
		model.AvailabilityMissed,
	}
	for i, item := range lobby {
		assert.Equal(t, want[i], item.Availability, item.Name)
	}
	require.NotNil(t, lobby[0].Score)
	assert.Equal(t, 80, *lobby[0].Score)
	assert.Nil(t, lobby[2].Score)
}

func TestExamService_Get(t *testing.T) {
	svc := NewExamService(&fakeExams{exams: []model.Exam{{ID: 3}}}, &fakeSubmissions{}, zerolog.Nop())

	exam, err := svc.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), exam.ID)

	_, err = svc.Get(context.Background(), 4)
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestExamService_SubmissionsPaging(t *testing.T) {
	subs := &fakeSubmissions{list: []model.LearnerSubmission{{ExamName: "a"}}}
	svc := NewExamService(&fakeExams{}, subs, zerolog.Nop())

	list, total, err := svc.Submissions(context.Background(), uuid.New(), 3, 20)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 20, subs.limit)
	assert.Equal(t, 40, subs.offset)

	_, _, err = svc.Submissions(context.Background(), uuid.New(), 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, subs.offset)
}
