package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/hotel-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/hotel-booking-backend/internal/photo"
	photoHttp "github.com/nekogravitycat/hotel-booking-backend/internal/photo/http"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
	roomHttp "github.com/nekogravitycat/hotel-booking-backend/internal/room/http"
	"github.com/nekogravitycat/hotel-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/hotel-booking-backend/internal/user/http"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *zap.Logger
	// Ping reports database health for /healthz; nil skips the check.
	Ping func(ctx context.Context) error

	UserService    user.Service
	RoomService    room.Service
	BookingService booking.Service
	PhotoService   photo.Service
	JWTManager     *auth.JWTManager
}

// corsConfig allows the local frontends in development and PROD_ORIGINS in production.
func corsConfig(isProduction bool, prodOrigins string) cors.Config {
	config := cors.DefaultConfig()
	if isProduction {
		var origins []string
		for _, o := range strings.Split(prodOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		config.AllowOrigins = origins
	} else {
		config.AllowOrigins = []string{
			"http://localhost:3000", // Frontend
			"http://localhost:8081", // Swagger
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	return config
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (logging, recovery, CORS, auth) and registers the routes of every module.
func NewRouter(cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.L()
	}

	r := gin.New()
	r.Use(RequestLogger(logger), gin.Recovery())

	// An empty origin list makes cors.New panic, so production without PROD_ORIGINS serves same-origin only.
	if corsCfg := corsConfig(cfg.IsProduction, cfg.ProdOrigins); len(corsCfg.AllowOrigins) > 0 {
		r.Use(cors.New(corsCfg))
	}

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.Ping(ctx); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks if the authenticated user is front desk staff.
	adminMiddleware := RequireAdmin(cfg.UserService)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	roomHandler := roomHttp.NewHandler(cfg.RoomService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.UserService)
	photoHandler := photoHttp.NewHandler(cfg.PhotoService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		roomHttp.RegisterRoutes(v1, roomHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, adminMiddleware)
		photoHttp.RegisterRoutes(v1, photoHandler, authMiddleware, adminMiddleware)
	}

	return r
}
