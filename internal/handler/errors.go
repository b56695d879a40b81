package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/response"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/service"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/session"
)

// errorCode maps a domain error to an HTTP status and API code.
func errorCode(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		return http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, service.ErrExamNotAvailable):
		return http.StatusForbidden, response.ErrExamNotAvailable
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, response.ErrSessionNotFound
	case errors.Is(err, service.ErrTokenInvalid):
		return http.StatusUnauthorized, response.ErrTokenInvalid
	case errors.Is(err, session.ErrDataUnavailable):
		return http.StatusServiceUnavailable, response.ErrQuestionsUnavailable
	case errors.Is(err, session.ErrUnknownQuestion):
		return http.StatusUnprocessableEntity, response.ErrUnknownQuestion
	case errors.Is(err, session.ErrUnknownOption):
		return http.StatusUnprocessableEntity, response.ErrUnknownOption
	case errors.Is(err, session.ErrPersistFailed):
		return http.StatusServiceUnavailable, response.ErrSubmissionFailed
	case errors.Is(err, session.ErrUnauthenticated):
		return http.StatusUnauthorized, response.ErrUnauthenticated
	case errors.Is(err, session.ErrRetryNotAllowed):
		return http.StatusConflict, response.ErrRetryNotAllowed
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// parseExamID reads the :exam_id path parameter.
func parseExamID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("exam_id"), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
