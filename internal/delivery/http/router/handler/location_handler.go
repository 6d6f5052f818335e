package handler

import (
	"log/slog"
	"net/http"

	"checkin/internal/delivery/http/response"
	"checkin/internal/domain/entity"
	"checkin/internal/domain/service"
	"checkin/internal/infra/location"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// LocationHandlerParams holds dependencies for LocationHandler, injected by Fx.
type LocationHandlerParams struct {
	fx.In

	Source *location.PushSource
	Logger *slog.Logger
}

// LocationHandler receives GPS samples pushed by the device.
type LocationHandler struct {
	source *location.PushSource
	logger *slog.Logger
}

// NewLocationHandler is the constructor for LocationHandler
func NewLocationHandler(params LocationHandlerParams) *LocationHandler {
	return &LocationHandler{
		source: params.Source,
		logger: params.Logger,
	}
}

// ReportLocationRequest represents one device GPS sample. Either a fix
// (lat/lng) or a classified error is reported, never both.
type ReportLocationRequest struct {
	Lat          *float64 `json:"lat,omitempty" validate:"omitempty,min=-90,max=90"`
	Lng          *float64 `json:"lng,omitempty" validate:"omitempty,min=-180,max=180"`
	Accuracy     float64  `json:"accuracy,omitempty" validate:"omitempty,min=0"`
	ErrorKind    string   `json:"errorKind,omitempty" validate:"omitempty,oneof=permission_denied unavailable timeout other"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
}

// ReportLocation handles one pushed GPS sample
func (h *LocationHandler) ReportLocation(c echo.Context) error {
	var req ReportLocationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid location input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	update := service.LocationUpdate{}
	switch {
	case req.Lat != nil && req.Lng != nil:
		update.Location = &entity.UserLocation{
			Latitude:  *req.Lat,
			Longitude: *req.Lng,
			Accuracy:  req.Accuracy,
		}
	case req.ErrorKind != "":
		update.ErrKind = service.LocationErrorKind(req.ErrorKind)
		update.ErrMsg = req.ErrorMessage
	default:
		return response.BadRequest(c, "VALIDATION_ERROR", "either lat/lng or errorKind is required")
	}

	h.source.Publish(update)

	return response.Success(c, http.StatusAccepted, nil, "Location sample accepted")
}
