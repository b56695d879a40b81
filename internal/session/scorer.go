package session

import (
	"math"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
)

// Outcome is the graded result of one answer snapshot.
type Outcome struct {
	TotalQuestions int `json:"total_questions"`
	CorrectCount   int `json:"correct_count"`
	Score          int `json:"score"`
}

// Score grades answers against questions. Every question weighs
// totalGrade / len(questions); the weights of correctly answered questions are
// summed and the sum is rounded once, half away from zero.
//
// A question with zero or several correct options earns no credit, as does an
// unanswered one. Score is pure and safe to call concurrently.
func Score(questions []model.Question, answers map[int64]int64, totalGrade float64) Outcome {
	out := Outcome{TotalQuestions: len(questions)}
	if len(questions) == 0 {
		return out
	}

	weight := totalGrade / float64(len(questions))
	var sum float64
	for _, q := range questions {
		correct, ok := q.CorrectOptionID()
		if !ok {
			continue
		}
		if chosen, answered := answers[q.ID]; answered && chosen == correct {
			out.CorrectCount++
			sum += weight
		}
	}

	out.Score = int(math.Round(sum))
	return out
}
