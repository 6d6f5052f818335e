package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"checkin/internal/delivery/http/response"
	"checkin/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// CheckInHandlerParams holds dependencies for CheckInHandler, injected by Fx.
type CheckInHandlerParams struct {
	fx.In

	CheckInUC usecase.CheckInUsecase
	Logger    *slog.Logger
}

// CheckInHandler exposes the check-in lifecycle over HTTP.
type CheckInHandler struct {
	checkInUC usecase.CheckInUsecase
	logger    *slog.Logger
}

// NewCheckInHandler is the constructor for CheckInHandler
func NewCheckInHandler(params CheckInHandlerParams) *CheckInHandler {
	return &CheckInHandler{
		checkInUC: params.CheckInUC,
		logger:    params.Logger,
	}
}

// CaptureRequest represents the request body for capturing a check-in photo
type CaptureRequest struct {
	// Photo is the captured image as a data URI
	Photo string `json:"photo" validate:"required"`
}

// GetStatus returns the full lifecycle snapshot
func (h *CheckInHandler) GetStatus(c echo.Context) error {
	view := h.checkInUC.Snapshot()

	return response.Success(c, http.StatusOK, view, "Check-in status retrieved successfully")
}

// GetPoints returns the classified point catalog
func (h *CheckInHandler) GetPoints(c echo.Context) error {
	view := h.checkInUC.Snapshot()

	return response.Success(c, http.StatusOK, view.Points, "Check-in points retrieved successfully")
}

// SelectPoint handles a manual point selection
func (h *CheckInHandler) SelectPoint(c echo.Context) error {
	pointID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid point ID")
	}

	if err := h.checkInUC.SelectPoint(c.Request().Context(), pointID); err != nil {
		return h.handleLifecycleError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]int{"selectedPointId": pointID}, "Point selected successfully")
}

// Capture handles a photo capture and arms the countdown
func (h *CheckInHandler) Capture(c echo.Context) error {
	var req CaptureRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid capture input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	record, err := h.checkInUC.Capture(c.Request().Context(), req.Photo)
	if err != nil {
		return h.handleLifecycleError(c, err)
	}

	return response.Success(c, http.StatusCreated, record, "Check-in started successfully")
}

// Submit finalizes the expired hold and transmits the check-in
func (h *CheckInHandler) Submit(c echo.Context) error {
	if err := h.checkInUC.Submit(c.Request().Context()); err != nil {
		return h.handleLifecycleError(c, err)
	}

	return response.Success(c, http.StatusOK, h.checkInUC.Snapshot(), "Check-in submitted successfully")
}

// handleLifecycleError maps lifecycle errors to HTTP responses
func (h *CheckInHandler) handleLifecycleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnknownPoint):
		return response.NotFound(c, "UNKNOWN_POINT", err.Error())
	case errors.Is(err, usecase.ErrNoSelection):
		return response.BadRequest(c, "NO_SELECTION", err.Error())
	case errors.Is(err, usecase.ErrSelectionLocked):
		return response.Conflict(c, "SELECTION_LOCKED", err.Error())
	case errors.Is(err, usecase.ErrHoldInProgress):
		return response.Conflict(c, "HOLD_IN_PROGRESS", err.Error())
	case errors.Is(err, usecase.ErrPointNotEligible):
		return response.Conflict(c, "POINT_NOT_ELIGIBLE", err.Error())
	case errors.Is(err, usecase.ErrNothingToFinalize):
		return response.Conflict(c, "NOTHING_TO_FINALIZE", err.Error())
	case errors.Is(err, usecase.ErrSubmitInFlight):
		return response.Conflict(c, "SUBMIT_IN_FLIGHT", err.Error())
	case errors.Is(err, usecase.ErrLocationUnknown):
		return response.Conflict(c, "LOCATION_UNKNOWN", err.Error())
	default:
		h.logger.Error("check-in request failed", slog.Any("error", err))

		return response.BadGateway(c, "SUBMIT_FAILED", err.Error())
	}
}
