package model

import (
	"time"

	"github.com/google/uuid"
)

// Submission is the persisted, once-per-session record of a finished exam.
type Submission struct {
	ID                   int64     `json:"id"`
	ExamID               int64     `json:"exam_id"`
	UserID               uuid.UUID `json:"user_id"`
	Score                int       `json:"score"`
	SolveDurationMinutes int       `json:"solve_duration_minutes"`
	CreatedAt            time.Time `json:"created_at"`
}

// CreateSubmissionInput carries the values written by the submission store.
type CreateSubmissionInput struct {
	ExamID               int64
	UserID               uuid.UUID
	Score                int
	SolveDurationMinutes int
}

// LearnerTotal is a learner's summed score across all submissions.
type LearnerTotal struct {
	UserID     uuid.UUID `json:"user_id"`
	TotalScore float64   `json:"total_score"`
}

// LeaderboardEntry is one ranked row of the honor board.
type LeaderboardEntry struct {
	Rank       int       `json:"rank"`
	UserID     uuid.UUID `json:"user_id"`
	TotalScore float64   `json:"total_score"`
}

// LearnerSubmission is a submission listed with its exam for the learner's grades view.
type LearnerSubmission struct {
	Submission
	ExamName   string  `json:"exam_name"`
	TotalGrade float64 `json:"total_grade"`
}

// SubmissionEvent is queued once per newly persisted submission.
type SubmissionEvent struct {
	SubmissionID int64     `json:"submission_id"`
	ExamID       int64     `json:"exam_id"`
	UserID       uuid.UUID `json:"user_id"`
	Score        int       `json:"score"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
