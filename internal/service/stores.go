package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
)

// ExamStore reads exams. Implemented by repository.ExamRepository.
type ExamStore interface {
	GetByID(ctx context.Context, id int64) (*model.Exam, error)
	ListAll(ctx context.Context) ([]model.Exam, error)
}

// SubmissionReader reads submissions. Implemented by repository.SubmissionRepository.
type SubmissionReader interface {
	ScoresByUser(ctx context.Context, userID uuid.UUID) (map[int64]int, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.LearnerSubmission, int, error)
	TotalsByUser(ctx context.Context) ([]model.LearnerTotal, error)
}

// Queue is the subset of the Redis client used to enqueue events.
type Queue interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// SessionStateStore keeps the start instant and answers of running sessions.
// Implemented by repository.SessionStateRepository.
type SessionStateStore interface {
	ClaimStart(ctx context.Context, examID int64, learnerID uuid.UUID, now time.Time, ttl time.Duration) (time.Time, error)
	SaveAnswer(ctx context.Context, examID int64, learnerID uuid.UUID, questionID, optionID int64, ttl time.Duration) error
	Answers(ctx context.Context, examID int64, learnerID uuid.UUID) (map[int64]int64, error)
	Clear(ctx context.Context, examID int64, learnerID uuid.UUID) error
}
