package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/session"
)

// SubmissionRepository handles submission data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// CreateSubmission inserts a submission. A learner submits an exam at most
// once; a second insert fails with session.ErrSubmissionConflict.
func (r *SubmissionRepository) CreateSubmission(ctx context.Context, in model.CreateSubmissionInput) (*model.Submission, error) {
	s := &model.Submission{
		ExamID:               in.ExamID,
		UserID:               in.UserID,
		Score:                in.Score,
		SolveDurationMinutes: in.SolveDurationMinutes,
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO submissions (exam_id, user_id, score, solve_duration_minutes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		in.ExamID, in.UserID, in.Score, in.SolveDurationMinutes,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("exam %d: %w", in.ExamID, session.ErrSubmissionConflict)
		}
		return nil, err
	}
	return s, nil
}

// ListByUser returns a page of the learner's submissions, newest first, and the total count.
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.LearnerSubmission, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM submissions WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.exam_id, s.user_id, s.score, s.solve_duration_minutes, s.created_at,
		        e.name, e.total_grade
		 FROM submissions s
		 JOIN exams e ON e.id = s.exam_id
		 WHERE s.user_id = $1
		 ORDER BY s.created_at DESC, s.id DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]model.LearnerSubmission, 0)
	for rows.Next() {
		var s model.LearnerSubmission
		if err := rows.Scan(&s.ID, &s.ExamID, &s.UserID, &s.Score, &s.SolveDurationMinutes, &s.CreatedAt,
			&s.ExamName, &s.TotalGrade); err != nil {
			return nil, 0, err
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// ScoresByUser maps exam id to score for every exam the learner submitted.
func (r *SubmissionRepository) ScoresByUser(ctx context.Context, userID uuid.UUID) (map[int64]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT exam_id, score FROM submissions WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[int64]int)
	for rows.Next() {
		var examID int64
		var score int
		if err := rows.Scan(&examID, &score); err != nil {
			return nil, err
		}
		scores[examID] = score
	}
	return scores, rows.Err()
}

// TotalsByUser sums scores per learner across all submissions.
func (r *SubmissionRepository) TotalsByUser(ctx context.Context) ([]model.LearnerTotal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, SUM(score)::float8 FROM submissions GROUP BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []model.LearnerTotal
	for rows.Next() {
		var t model.LearnerTotal
		if err := rows.Scan(&t.UserID, &t.TotalScore); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
