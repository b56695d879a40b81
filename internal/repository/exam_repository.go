package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
)

const examColumns = `id, name, start_date, end_date, duration_minutes, total_grade, created_at`

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam by id. Returns ErrNotFound if it does not exist.
func (r *ExamRepository) GetByID(ctx context.Context, id int64) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.StartDate, &e.EndDate, &e.DurationMinutes, &e.TotalGrade, &e.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// ListAll returns every exam, most recently starting first. Exams without a
// start date sort last.
func (r *ExamRepository) ListAll(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams ORDER BY start_date DESC NULLS LAST, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Name, &e.StartDate, &e.EndDate, &e.DurationMinutes, &e.TotalGrade, &e.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Create inserts an exam. Used by the seed tool.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (name, start_date, end_date, duration_minutes, total_grade)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		e.Name, e.StartDate, e.EndDate, e.DurationMinutes, e.TotalGrade,
	).Scan(&e.ID, &e.CreatedAt)
}
