package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/repository"
)

// Exam errors.
var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrExamNotAvailable = errors.New("exam is not available")
)

// ExamService serves the learner's exam lobby and grade history.
type ExamService struct {
	exams       ExamStore
	submissions SubmissionReader
	log         zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams ExamStore, submissions SubmissionReader, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams:       exams,
		submissions: submissions,
		log:         log.With().Str("component", "exam_service").Logger(),
	}
}

// Get returns an exam by id.
func (s *ExamService) Get(ctx context.Context, examID int64) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

// Lobby classifies every exam for the learner at now.
func (s *ExamService) Lobby(ctx context.Context, learnerID uuid.UUID, now time.Time) ([]model.LobbyExam, error) {
	exams, err := s.exams.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}

	scores, err := s.submissions.ScoresByUser(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}

	lobby := make([]model.LobbyExam, 0, len(exams))
	for _, e := range exams {
		item := model.LobbyExam{Exam: e}
		score, taken := scores[e.ID]
		item.Availability = e.Classify(taken, now)
		if taken {
			item.Score = &score
		}
		lobby = append(lobby, item)
	}
	return lobby, nil
}

// Availability reports whether the learner may start examID at now.
func (s *ExamService) Availability(ctx context.Context, learnerID uuid.UUID, exam model.Exam, now time.Time) (model.Availability, error) {
	scores, err := s.submissions.ScoresByUser(ctx, learnerID)
	if err != nil {
		return "", fmt.Errorf("list scores: %w", err)
	}
	_, taken := scores[exam.ID]
	return exam.Classify(taken, now), nil
}

// Submissions returns a page of the learner's graded submissions.
func (s *ExamService) Submissions(ctx context.Context, learnerID uuid.UUID, page, perPage int) ([]model.LearnerSubmission, int, error) {
	if page < 1 {
		page = 1
	}
	list, total, err := s.submissions.ListByUser(ctx, learnerID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	return list, total, nil
}
