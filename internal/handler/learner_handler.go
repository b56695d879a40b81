package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/middleware"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/response"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/service"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/validator"
)

// LearnerHandler serves the learner's lobby and grade history.
type LearnerHandler struct {
	exams *service.ExamService
	now   func() time.Time
	log   zerolog.Logger
}

// NewLearnerHandler creates a new LearnerHandler.
func NewLearnerHandler(exams *service.ExamService, log zerolog.Logger) *LearnerHandler {
	return &LearnerHandler{
		exams: exams,
		now:   time.Now,
		log:   log.With().Str("component", "learner_handler").Logger(),
	}
}

type pageQuery struct {
	Page    int `form:"page" binding:"omitempty,min=1"`
	PerPage int `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// Lobby godoc
// GET /api/v1/learner/exams
// Lists every exam with its availability for the caller.
func (h *LearnerHandler) Lobby(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	learnerID, err := claims.LearnerID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	lobby, err := h.exams.Lobby(c.Request.Context(), learnerID, h.now())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build lobby")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": lobby})
}

// Submissions godoc
// GET /api/v1/learner/submissions?page=&per_page=
func (h *LearnerHandler) Submissions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	learnerID, err := claims.LearnerID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	q := pageQuery{Page: 1, PerPage: 20}
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	list, total, err := h.exams.Submissions(c.Request.Context(), learnerID, q.Page, q.PerPage)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list submissions")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"submissions": list},
		response.NewPagination(q.Page, q.PerPage, total))
}
