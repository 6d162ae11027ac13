package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/hotel-booking-backend/internal/api"
	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/photo"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
	"github.com/nekogravitycat/hotel-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	UploadDir    string
	Logger       *zap.Logger
	// Redis caches room lookups when non-nil.
	Redis *redis.Client
	// Notifier receives booking events; nil disables notifications.
	Notifier booking.Notifier
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	UserService    user.Service
	RoomService    room.Service
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("init photo storage: %w", err)
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Room Module
	roomStore := room.NewPgxRepository(cfg.DBPool)
	roomRepo := roomStore
	if cfg.Redis != nil {
		roomRepo = room.NewCachedRepository(roomStore, cfg.Redis, room.DefaultCacheTTL)
	}
	roomService := room.NewService(roomRepo)
	// Booking writes decide on room status, so they always read rooms from Postgres.
	liveRooms := room.NewService(roomStore)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, liveRooms, cfg.Notifier)

	// Photo Module
	photoRepo := photo.NewPgxRepository(cfg.DBPool)
	photoService := photo.NewService(photoRepo, roomService, store)

	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Logger:         cfg.Logger,
		Ping:           cfg.DBPool.Ping,
		UserService:    userService,
		RoomService:    roomService,
		BookingService: bookingService,
		PhotoService:   photoService,
		JWTManager:     jwtManager,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		UserService:    userService,
		RoomService:    roomService,
		BookingService: bookingService,
	}, nil
}
