package model

// Question is a single multiple-choice question with its ordered options.
type Question struct {
	ID               int64    `json:"id"`
	ExamID           int64    `json:"exam_id"`
	QuestionText     string   `json:"question_text"`
	QuestionImageURL *string  `json:"question_image_url,omitempty"`
	Options          []Option `json:"options"`
}

// Option is one selectable answer of a question.
type Option struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
}

// CorrectOptionID returns the id of the single correct option. ok is false
// when the question has zero or several options flagged correct.
func (q Question) CorrectOptionID() (id int64, ok bool) {
	found := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			id = o.ID
			found++
		}
	}
	if found != 1 {
		return 0, false
	}
	return id, true
}

// HasOption reports whether optionID belongs to the question.
func (q Question) HasOption(optionID int64) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// QuestionForLearner is a question without correctness flags, sent to learners.
type QuestionForLearner struct {
	ID               int64              `json:"id"`
	QuestionText     string             `json:"question_text"`
	QuestionImageURL *string            `json:"question_image_url,omitempty"`
	Options          []OptionForLearner `json:"options"`
}

// OptionForLearner is an option without its correctness flag.
type OptionForLearner struct {
	ID         int64  `json:"id"`
	OptionText string `json:"option_text"`
}

// ForLearner strips correctness information from the question.
func (q Question) ForLearner() QuestionForLearner {
	opts := make([]OptionForLearner, len(q.Options))
	for i, o := range q.Options {
		opts[i] = OptionForLearner{ID: o.ID, OptionText: o.OptionText}
	}
	return QuestionForLearner{
		ID:               q.ID,
		QuestionText:     q.QuestionText,
		QuestionImageURL: q.QuestionImageURL,
		Options:          opts,
	}
}

// SubmitAnswerRequest is the payload for recording an answer.
type SubmitAnswerRequest struct {
	QuestionID int64 `json:"question_id" binding:"required,gt=0"`
	OptionID   int64 `json:"option_id" binding:"required,gt=0"`
}
