package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/nekogravitycat/hotel-booking-backend/internal/app"
	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/config"
	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
	"github.com/nekogravitycat/hotel-booking-backend/internal/logger"
	"github.com/nekogravitycat/hotel-booking-backend/internal/notify"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l, err := logger.New(cfg.IsProduction)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer l.Sync()
	zap.ReplaceGlobals(l)

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		l.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		version, err := db.Migrate(ctx, pool)
		if err != nil {
			l.Fatal("failed to migrate db", zap.Error(err))
		}
		l.Info("database schema up to date", zap.Int64("version", version))
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			l.Warn("redis unreachable, room cache will fall back to the database", zap.Error(err))
		}
		l.Info("room cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	notifiers := notify.Multi{notify.NewLogNotifier(l)}
	if cfg.DiscordEnabled() {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			l.Fatal("failed to create discord session", zap.Error(err))
		}
		notifiers = append(notifiers, notify.NewDiscordNotifier(session, cfg.DiscordChannelID))
		l.Info("discord notifications enabled", zap.String("channel_id", cfg.DiscordChannelID))
	}

	container, err := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		DBPool:       pool,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		BcryptCost:   cfg.BcryptCost,
		UploadDir:    cfg.UploadDir,
		Logger:       l,
		Redis:        rdb,
		Notifier:     booking.Notifier(notifiers),
	})
	if err != nil {
		l.Fatal("failed to build application", zap.Error(err))
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		l.Info("server running", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	l.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Warn("server forced to shutdown", zap.Error(err))
	}

	l.Info("server exited gracefully")
}
