package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/middleware"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/response"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/service"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/session"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/validator"
)

// SessionHandler exposes the timed exam session over HTTP.
type SessionHandler struct {
	sessions *service.SessionService
	log      zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		log:      log.With().Str("component", "session_handler").Logger(),
	}
}

// Start godoc
// POST /api/v1/learner/exams/:exam_id/session
// Loads the question set and starts the countdown. Idempotent per learner.
func (h *SessionHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	examID, ok := parseExamID(c)
	if !ok {
		return
	}

	ctrl, err := h.sessions.Start(c.Request.Context(), claims, examID)
	if err != nil {
		var data any
		if ctrl != nil {
			data = ctrl.View()
		}
		h.fail(c, data, err)
		return
	}

	response.Success(c, http.StatusCreated, ctrl.View())
}

// View godoc
// GET /api/v1/learner/exams/:exam_id/session
func (h *SessionHandler) View(c *gin.Context) {
	learnerID, examID, ok := h.target(c)
	if !ok {
		return
	}
	ctrl, err := h.sessions.Get(learnerID, examID)
	if err != nil {
		h.fail(c, nil, err)
		return
	}
	response.Success(c, http.StatusOK, ctrl.View())
}

// Answer godoc
// POST /api/v1/learner/exams/:exam_id/session/answers
// Answers sent after the session stopped accepting them are ignored.
func (h *SessionHandler) Answer(c *gin.Context) {
	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	learnerID, examID, ok := h.target(c)
	if !ok {
		return
	}

	view, err := h.sessions.Answer(learnerID, examID, req.QuestionID, req.OptionID)
	if err != nil {
		h.fail(c, nil, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Finish godoc
// POST /api/v1/learner/exams/:exam_id/session/finish
// Finalizes the session. If the deadline already did, returns its outcome.
func (h *SessionHandler) Finish(c *gin.Context) {
	learnerID, examID, ok := h.target(c)
	if !ok {
		return
	}

	view, err := h.sessions.Finish(detach(c), learnerID, examID)
	h.respond(c, view, err)
}

// Retry godoc
// POST /api/v1/learner/exams/:exam_id/session/retry
// Re-attempts a failed submission with the score computed at finalize.
func (h *SessionHandler) Retry(c *gin.Context) {
	learnerID, examID, ok := h.target(c)
	if !ok {
		return
	}

	view, err := h.sessions.Retry(detach(c), learnerID, examID)
	h.respond(c, view, err)
}

func (h *SessionHandler) respond(c *gin.Context, view session.View, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		h.fail(c, nil, err)
	case err != nil:
		h.fail(c, view, err)
	default:
		response.Success(c, http.StatusOK, view)
	}
}

// target resolves the learner and exam of a session route, writing the
// failure response itself when it returns false.
func (h *SessionHandler) target(c *gin.Context) (uuid.UUID, int64, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return uuid.Nil, 0, false
	}
	examID, ok := parseExamID(c)
	if !ok {
		return uuid.Nil, 0, false
	}
	learnerID, err := claims.LearnerID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return uuid.Nil, 0, false
	}
	return learnerID, examID, true
}

// fail writes err with data, usually the session view, as payload.
func (h *SessionHandler) fail(c *gin.Context, data any, err error) {
	status, code := errorCode(err)
	if code == response.ErrInternal {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Session request failed")
	}
	response.FailWithData(c, status, code, data)
}

// detach keeps request values, the caller's claims among them, but not its
// cancellation: a submission write outlives a dropped connection.
func detach(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
