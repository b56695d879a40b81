package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
)

// QuestionRepository handles question and option data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByExam retrieves all questions of an exam with their options, both
// ordered by id. Questions without options are included with an empty list.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID int64) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.exam_id, q.question_text, q.question_image_url,
		        o.id, o.option_text, o.is_correct
		 FROM questions q
		 LEFT JOIN options o ON o.question_id = q.id
		 WHERE q.exam_id = $1
		 ORDER BY q.id, o.id`, examID,
	)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	questions := make([]model.Question, 0)
	for rows.Next() {
		var (
			q          model.Question
			optionID   *int64
			optionText *string
			isCorrect  *bool
		)
		if err := rows.Scan(&q.ID, &q.ExamID, &q.QuestionText, &q.QuestionImageURL,
			&optionID, &optionText, &isCorrect); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}

		if n := len(questions); n == 0 || questions[n-1].ID != q.ID {
			q.Options = make([]model.Option, 0, 4)
			questions = append(questions, q)
		}
		if optionID == nil {
			continue
		}

		last := &questions[len(questions)-1]
		opt := model.Option{ID: *optionID, QuestionID: last.ID}
		if optionText != nil {
			opt.OptionText = *optionText
		}
		if isCorrect != nil {
			opt.IsCorrect = *isCorrect
		}
		last.Options = append(last.Options, opt)
	}
	return questions, rows.Err()
}

// Create inserts a question and its options in one transaction. Used by the seed tool.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO questions (exam_id, question_text, question_image_url)
			 VALUES ($1, $2, $3) RETURNING id`,
			q.ExamID, q.QuestionText, q.QuestionImageURL,
		).Scan(&q.ID); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}

		for i := range q.Options {
			o := &q.Options[i]
			o.QuestionID = q.ID
			if err := tx.QueryRow(ctx,
				`INSERT INTO options (question_id, option_text, is_correct)
				 VALUES ($1, $2, $3) RETURNING id`,
				o.QuestionID, o.OptionText, o.IsCorrect,
			).Scan(&o.ID); err != nil {
				return fmt.Errorf("insert option: %w", err)
			}
		}
		return nil
	})
}
