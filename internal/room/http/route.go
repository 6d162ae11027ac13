package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers room catalog routes. Reads are public, writes need an admin.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/rooms")

	group.GET("", h.List)
	group.GET("/:id", h.Get)

	admin := group.Group("", authMiddleware, adminMiddleware)
	{
		admin.POST("", h.Create)
		admin.PATCH("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
	}
}
