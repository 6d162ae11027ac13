package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes and the room availability views.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	// Public Routes
	g.GET("/availability", h.Search)
	g.GET("/rooms/:id/availability", h.RoomAvailability)

	// Authenticated Routes
	bookings := g.Group("/bookings")
	bookings.Use(authMiddleware)
	{
		bookings.GET("", h.List)
		bookings.POST("", h.Create)
		bookings.GET("/:id", h.Get)
		bookings.PATCH("/:id/dates", h.ChangeDates)
		bookings.POST("/:id/cancel", h.Cancel)
	}

	// Admin Routes
	front := bookings.Group("", adminMiddleware)
	{
		front.POST("/:id/confirm", h.Confirm)
		front.POST("/:id/complete", h.Complete)
		front.POST("/:id/no-show", h.MarkNoShow)
	}

	roomAdmin := g.Group("/rooms/:id", authMiddleware, adminMiddleware)
	{
		roomAdmin.GET("/calendar", h.Calendar)
		roomAdmin.GET("/conflicts", h.Conflicts)
	}
}
