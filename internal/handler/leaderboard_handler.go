package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/response"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/service"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/validator"
)

// LeaderboardHandler serves the honor board.
type LeaderboardHandler struct {
	leaderboard *service.LeaderboardService
	log         zerolog.Logger
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboard *service.LeaderboardService, log zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
		log:         log.With().Str("component", "leaderboard_handler").Logger(),
	}
}

type leaderboardQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// Top godoc
// GET /api/v1/leaderboard?limit=
func (h *LeaderboardHandler) Top(c *gin.Context) {
	var q leaderboardQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	entries, err := h.leaderboard.Top(c.Request.Context(), q.Limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read leaderboard")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"entries": entries})
}
