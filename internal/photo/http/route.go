package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers room photo routes. Viewing is public, changes need an admin.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	g.GET("/rooms/:id/photos", h.ListByRoom)
	g.POST("/rooms/:id/photos", authMiddleware, adminMiddleware, h.Upload)

	photos := g.Group("/photos")
	{
		photos.GET("/:id", h.Serve)
		photos.GET("/:id/thumbnail", h.ServeThumbnail)
		photos.DELETE("/:id", authMiddleware, adminMiddleware, h.Delete)
	}
}
