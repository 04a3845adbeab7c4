package api

import (
	"net/http"
	"time"

	"tourstaff-service/internal/usecase"
	"tourstaff-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler serves the guide and admin JSON API
type Handler struct {
	allocator *usecase.ShiftBusAllocator
	pickups   *usecase.PickupService
	notifier  *usecase.ShiftNotifier
	logger    logger.Logger
	location  *time.Location
}

// NewHandler creates the API handler. notifier may be nil.
func NewHandler(
	allocator *usecase.ShiftBusAllocator,
	pickups *usecase.PickupService,
	notifier *usecase.ShiftNotifier,
	logger logger.Logger,
	location *time.Location,
) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		allocator: allocator,
		pickups:   pickups,
		notifier:  notifier,
		logger:    logger,
		location:  location,
	}
}

// NewRouter mounts every route. metricsHandler serves /metrics when not nil.
func NewRouter(h *Handler, metricsHandler http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(h.logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		h.logger.Warn("Failed to set trusted proxies", "error", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   &ErrorBody{Code: "not_found", Message: "route not found"},
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "Healthy")
	})
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := r.Group("/api/v1")
	{
		pickups := v1.Group("/pickups/:date")
		pickups.GET("/groups", h.GetPickupGroups)
		pickups.POST("/groups/:groupKey/guide", h.AssignGuide)
		pickups.POST("/bookings/:id/arrived", h.MarkArrived)
		pickups.POST("/bookings/:id/no-show", h.MarkNoShow)
		pickups.POST("/bookings/:id/paid", h.MarkPaid)
		pickups.POST("/report", h.PublishReport)

		v1.GET("/buses/:busId/availability", h.GetBusAvailability)
		v1.GET("/bus-assignments/:date", h.GetBusAssignments)

		shifts := v1.Group("/shifts")
		shifts.GET("", h.ListShifts)
		shifts.POST("", h.ApplyForShift)
		shifts.POST("/auto-complete", h.AutoComplete)
		shifts.POST("/:id/accept", h.AcceptShift)
		shifts.POST("/:id/bus", h.ReassignBus)
		shifts.POST("/:id/cancel", h.CancelShift)
		shifts.POST("/:id/complete", h.CompleteShift)
	}

	return r
}
