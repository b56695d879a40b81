package websocket

import "github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/session"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionFinish Action = "finish"
	ActionRetry  Action = "retry"
	ActionPing   Action = "ping"
)

// Request is any client message. Only answer uses the ids.
type Request struct {
	Action     Action `json:"action"`
	QuestionID int64  `json:"question_id,omitempty"`
	OptionID   int64  `json:"option_id,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTick     Event = "tick"
	EventState    Event = "state"
	EventAnswered Event = "answered"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// TickResponse carries the countdown, once per second while in progress.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

// StateResponse carries the full session view after every state change.
type StateResponse struct {
	Event Event        `json:"event"`
	View  session.View `json:"view"`
}

// AnsweredResponse acknowledges a recorded answer.
type AnsweredResponse struct {
	Event      Event `json:"event"`
	QuestionID int64 `json:"question_id"`
	OptionID   int64 `json:"option_id"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// FromSessionEvent converts a controller event to its wire form.
func FromSessionEvent(ev session.Event) (any, bool) {
	switch ev.Type {
	case session.EventTick:
		if ev.RemainingSeconds == nil {
			return nil, false
		}
		return TickResponse{Event: EventTick, RemainingSeconds: *ev.RemainingSeconds}, true
	case session.EventState:
		if ev.View == nil {
			return nil, false
		}
		return StateResponse{Event: EventState, View: *ev.View}, true
	default:
		return nil, false
	}
}
