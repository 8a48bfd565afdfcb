package http

import (
	"errors"
	"net/http"

	"email-datagen/internal/scheduler/dto"
	"email-datagen/internal/scheduler/service"
	"email-datagen/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// respondError maps service errors onto HTTP status codes.
func respondError(c echo.Context, log *logger.Logger, msg string, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		resp := dto.ValidationErrorResponse{Error: "validation failed", Violations: make([]dto.ViolationResponse, 0, len(verr.Violations))}
		for _, v := range verr.Violations {
			resp.Violations = append(resp.Violations, dto.ViolationResponse{Field: v.Field, Message: v.Message})
		}
		return c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, service.ErrScheduleNotFound), errors.Is(err, service.ErrExecutionNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrScheduleConflict), errors.Is(err, service.ErrScheduleNotRunnable):
		return c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	}
	log.Error(msg, logger.ErrorField(err), logger.StringField("path", c.Path()))
	return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: msg})
}

// scheduleID reads and validates the :id path parameter.
func scheduleID(c echo.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}
