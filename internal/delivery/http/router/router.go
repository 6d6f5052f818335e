// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"checkin/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	CheckInHandler  *handler.CheckInHandler
	LocationHandler *handler.LocationHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	checkInHandler  *handler.CheckInHandler
	locationHandler *handler.LocationHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		checkInHandler:  params.CheckInHandler,
		locationHandler: params.LocationHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Device location push
	e.POST("/location", r.locationHandler.ReportLocation)

	// Check-in lifecycle routes
	checkInGroup := e.Group("/checkin")
	{
		checkInGroup.GET("/status", r.checkInHandler.GetStatus)
		checkInGroup.GET("/points", r.checkInHandler.GetPoints)
		checkInGroup.POST("/points/:id/select", r.checkInHandler.SelectPoint)
		checkInGroup.POST("/capture", r.checkInHandler.Capture)
		checkInGroup.POST("/submit", r.checkInHandler.Submit)
	}
}
