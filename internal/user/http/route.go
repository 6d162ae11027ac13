package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers account routes: public sign-up and login, the caller's profile,
// and the admin user directory.
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	g.GET("/me", authMiddleware, h.Me)

	// Front desk staff manage guest accounts and grant admin rights.
	staff := g.Group("/users", authMiddleware, adminMiddleware)
	{
		staff.GET("", h.List)
		staff.GET("/:id", h.Get)
		staff.PATCH("/:id", h.Update)
	}
}
