// Package controller maps service errors onto HTTP status codes shared by
// the admin and student route groups.
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ldtran/examdesk/internal/dto"
	"github.com/ldtran/examdesk/internal/model"
	"github.com/rs/zerolog/log"
)

// RespondError translates the error taxonomy into an HTTP response.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrMalformedImport):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrNoActiveSession):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrNotAssigned):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrDuplicateID),
		errors.Is(err, model.ErrSessionClosed),
		errors.Is(err, model.ErrConfirmationRequired):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled service error")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}
