package http

import (
	"net/http"
	"strconv"

	"email-datagen/internal/scheduler/dto"
	"email-datagen/internal/scheduler/service"
	"email-datagen/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScheduleHandler handles HTTP requests for schedules.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
	historyService  service.ExecutionHistoryService
	logger          *logger.Logger
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService service.ScheduleService, historyService service.ExecutionHistoryService, logger *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService, historyService: historyService, logger: logger}
}

// RegisterRoutes registers the schedule routes to the Echo group.
func (h *ScheduleHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateSchedule)
	g.GET("", h.GetAllSchedules)
	g.GET("/:id", h.GetScheduleByID)
	g.PUT("/:id", h.UpdateSchedule)
	g.DELETE("/:id", h.DeleteSchedule)
	g.POST("/:id/toggle", h.ToggleSchedule)
	g.POST("/:id/run", h.RunNow)
	g.GET("/:id/next-runs", h.PreviewNextRuns)
	g.GET("/:id/executions", h.GetExecutionHistories)
}

// CreateSchedule godoc
// @Summary Create a new schedule
// @Description Create an email generation schedule. Every invalid field is reported.
// @Tags schedules
// @Accept  json
// @Produce  json
// @Param   schedule  body    dto.ScheduleRequest   true    "Schedule to create"
// @Success 201 {object} dto.ScheduleResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules [post]
func (h *ScheduleHandler) CreateSchedule(c echo.Context) error {
	var req dto.ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	resp, err := h.scheduleService.CreateSchedule(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, "Failed to create schedule", err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// GetAllSchedules godoc
// @Summary Get all schedules
// @Description Get every schedule, newest first
// @Tags schedules
// @Produce  json
// @Success 200 {array} dto.ScheduleResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules [get]
func (h *ScheduleHandler) GetAllSchedules(c echo.Context) error {
	resp, err := h.scheduleService.GetAllSchedules(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, "Failed to get schedules", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetScheduleByID godoc
// @Summary Get a schedule by ID
// @Tags schedules
// @Produce  json
// @Param   id  path    string true    "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) GetScheduleByID(c echo.Context) error {
	id, ok := scheduleID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid schedule ID"})
	}

	resp, err := h.scheduleService.GetScheduleByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, "Failed to get schedule", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateSchedule godoc
// @Summary Update a schedule
// @Description Replace a schedule definition. The next run is recomputed when its timing changes.
// @Tags schedules
// @Accept  json
// @Produce  json
// @Param   id  path    string true    "Schedule ID"
// @Param   schedule  body    dto.ScheduleRequest   true    "Schedule definition"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id} [put]
func (h *ScheduleHandler) UpdateSchedule(c echo.Context) error {
	id, ok := scheduleID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid schedule ID"})
	}

	var req dto.ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	resp, err := h.scheduleService.UpdateSchedule(c.Request().Context(), id, &req)
	if err != nil {
		return respondError(c, h.logger, "Failed to update schedule", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteSchedule godoc
// @Summary Delete a schedule
// @Tags schedules
// @Param   id  path    string true    "Schedule ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) DeleteSchedule(c echo.Context) error {
	id, ok := scheduleID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid schedule ID"})
	}

	if err := h.scheduleService.DeleteSchedule(c.Request().Context(), id); err != nil {
		return respondError(c, h.logger, "Failed to delete schedule", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleSchedule godoc
// @Summary Enable or disable a schedule
// @Description Setting the current state again is a no-op.
// @Tags schedules
// @Accept  json
// @Produce  json
// @Param   id  path    string true    "Schedule ID"
// @Param   toggle  body    dto.ToggleRequest   true    "Desired state"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id}/toggle [post]
func (h *ScheduleHandler) ToggleSchedule(c echo.Context) error {
	id, ok := scheduleID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid schedule ID"})
	}

	var req dto.ToggleRequest
	if err := c.Bind(&req); err != nil || req.Enabled == nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "enabled must be a boolean"})
	}

	resp, err := h.scheduleService.ToggleSchedule(c.Request().Context(), id, *req.Enabled)
	if err != nil {
		return respondError(c, h.logger, "Failed to toggle schedule", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RunNow godoc
// @Summary Run a schedule now
// @Description Mark the schedule due immediately. The next engine tick fires it.
// @Tags schedules
// @Produce  json
// @Param   id  path    string true    "Schedule ID"
// @Success 202 {object} dto.ScheduleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id}/run [post]
func (h *ScheduleHandler) RunNow(c echo.Context) error {
	id, ok := scheduleID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid schedule ID"})
	}

	resp, err := h.scheduleService.RunNow(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, "Failed to run schedule", err)
	}
	return c.JSON(http.StatusAccepted, resp)
}

// PreviewNextRuns godoc
// @Summary Preview upcoming runs
// @Description Compute the next occurrences of a schedule without changing it
// @Tags schedules
// @Produce  json
// @Param   id  path    string true    "Schedule ID"
// @Param   count  query    int false    "Number of occurrences (default 5, max 50)"
// @Success 200 {object} dto.NextRunsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id}/next-runs [get]
func (h *ScheduleHandler) PreviewNextRuns(c echo.Context) error {
	id, ok := scheduleID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid schedule ID"})
	}

	count := 5
	if raw := c.QueryParam("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "count must be a positive integer"})
		}
		count = n
	}

	resp, err := h.scheduleService.PreviewNextRuns(c.Request().Context(), id, count)
	if err != nil {
		return respondError(c, h.logger, "Failed to preview schedule", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetExecutionHistories godoc
// @Summary Get execution histories for a schedule
// @Tags schedules
// @Produce  json
// @Param   id  path    string true    "Schedule ID"
// @Param   limit  query    int false    "Maximum number of records (default 100)"
// @Success 200 {array} dto.ExecutionHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id}/executions [get]
func (h *ScheduleHandler) GetExecutionHistories(c echo.Context) error {
	id, ok := scheduleID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid schedule ID"})
	}

	limit, ok := limitParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "limit must be a positive integer"})
	}

	histories, err := h.historyService.GetExecutionHistoriesByScheduleID(c.Request().Context(), id, limit)
	if err != nil {
		return respondError(c, h.logger, "Failed to get execution histories", err)
	}
	return c.JSON(http.StatusOK, histories)
}
