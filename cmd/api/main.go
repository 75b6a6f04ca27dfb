package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/NutMontree/kiosk/internal/account"
	"github.com/NutMontree/kiosk/internal/attendance"
	"github.com/NutMontree/kiosk/internal/config"
	"github.com/NutMontree/kiosk/internal/directory"
	"github.com/NutMontree/kiosk/internal/handler"
	"github.com/NutMontree/kiosk/internal/lockrelay"
	"github.com/NutMontree/kiosk/internal/queue"
	"github.com/NutMontree/kiosk/internal/room"
	"github.com/NutMontree/kiosk/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
	cfg := config.Load()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
		if cfg.SecretKey == "default_fallback" {
			log.Println("WARNING: SECRET_KEY is not set")
		}
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := store.Open(ctx, cfg.StoreBackend, cfg.MongoURI, cfg.DBName, cfg.DatabaseURL)
	if err != nil {
		cancel()
		return fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	err = store.EnsureUniqueKeys(ctx, db, map[string]string{
		account.Collection:          account.UniqueField,
		directory.StaffCollection:   directory.StaffKey,
		directory.StudentCollection: directory.StudentKey,
		room.Collection:             room.Key,
	})
	cancel()
	if err != nil {
		log.Printf("warning: %v", err)
	}
	log.Printf("store backend: %s", cfg.StoreBackend)

	checks := map[string]handler.HealthCheck{"db": db.Ping}
	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	var (
		relay       queue.Publisher
		redisClient *store.Redis
	)
	switch cfg.QueueBackend {
	case "redis":
		redisClient = store.NewRedis(cfg.RedisAddr)
		relay = queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
		checks["redis"] = redisClient.Ping
		log.Printf("lock relay: redis %s key %s", cfg.RedisAddr, cfg.QueueKey)
	case "memory":
		mem := queue.NewInMemory(64)
		relay = mem
		go func() {
			if err := lockrelay.New(mem, lockrelay.LogSink{}).Run(relayCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("lock relay stopped: %v", err)
			}
		}()
		log.Println("lock relay: in-memory, commands are logged")
	case "none", "":
		log.Println("lock relay disabled")
	default:
		return fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}

	h := handler.New(handler.Deps{
		Accounts: account.NewService(db.Collection(account.Collection), account.NewBcryptHasher(cfg.BcryptCost)),
		Staff:    directory.NewStaffService(db.Collection(directory.StaffCollection)),
		Students: directory.NewStudentService(db.Collection(directory.StudentCollection)),
		Rooms:    room.NewService(db.Collection(room.Collection), relay),
		Logs:     attendance.NewService(attendance.NewRepository(db.Collection(attendance.Collection))),
		Checks:   checks,
	})
	r := handler.NewRouter(h, handler.RouterOptions{
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}
	if err := db.Close(shutdownCtx); err != nil {
		log.Printf("store close: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("redis close: %v", err)
	}

	log.Println("Server exited")
	return nil
}
