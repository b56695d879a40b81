package model

import "time"

// Availability is how an exam appears to a learner in the lobby.
type Availability string

const (
	AvailabilityUpcoming  Availability = "UPCOMING"
	AvailabilityAvailable Availability = "AVAILABLE"
	AvailabilityMissed    Availability = "MISSED"
	AvailabilityTaken     Availability = "TAKEN"
)

// Exam represents an exam entity. It is immutable for the lifetime of a session.
type Exam struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	TotalGrade      float64    `json:"total_grade"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TimeLimit returns the exam's time limit, or zero when the exam is untimed.
func (e Exam) TimeLimit() time.Duration {
	if e.DurationMinutes == nil || *e.DurationMinutes <= 0 {
		return 0
	}
	return time.Duration(*e.DurationMinutes) * time.Minute
}

// Classify reports the lobby availability of the exam at now.
// An exam with a submission is always TAKEN; an exam without an end date stays
// available once it has started.
func (e Exam) Classify(taken bool, now time.Time) Availability {
	switch {
	case taken:
		return AvailabilityTaken
	case e.EndDate != nil && !e.EndDate.After(now):
		return AvailabilityMissed
	case e.StartDate != nil && e.StartDate.After(now):
		return AvailabilityUpcoming
	default:
		return AvailabilityAvailable
	}
}

// LobbyExam is an exam annotated with its availability for one learner.
type LobbyExam struct {
	Exam
	Availability Availability `json:"availability"`
	Score        *int         `json:"score,omitempty"`
}
