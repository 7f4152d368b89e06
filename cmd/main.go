package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"speeddate/backend/internal/api/handler"
	"speeddate/backend/internal/config"
	"speeddate/backend/internal/dating"
	"speeddate/backend/internal/hub"
	"speeddate/backend/internal/models"
	"speeddate/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies() (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "user"),
		envOr("DB_PASSWORD", "password"),
		envOr("DB_NAME", "speeddatedb"),
		envOr("DB_PORT", "5432"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.ChatSession{},
		&models.Match{},
		&models.ChatRequest{},
		&models.Message{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	log.Println("Starting SpeedDate Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	// 1. Dependencies and storage
	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	// 2. Hub, handler, sweeper
	manager := hub.NewManager(s)
	h := handler.NewHandler(s, manager)
	sweeper := dating.NewSweeper(h.Sessions, config.SweepInterval)

	// 3. Background goroutines
	go manager.Run() // push-on-change dispatcher
	go sweeper.Run() // speed-dating deadline sweep

	// 4. Gin routing
	r := gin.Default()

	r.POST("/auth/anon", h.CreateAnonIdentity)

	authed := r.Group("/", h.AuthRequired())
	{
		authed.GET("/me", h.GetMe)
		authed.PUT("/me", h.UpdateMe)

		authed.POST("/queue/join", h.JoinQueue)
		authed.POST("/queue/leave", h.LeaveQueue)
		authed.GET("/queue/status", h.QueueStatus)

		authed.POST("/sessions/:id/decision", h.MakeDecision)
		authed.POST("/sessions/:id/skip", h.SkipToReveal)
		authed.POST("/sessions/:id/leave", h.LeaveChat)
		authed.POST("/sessions/:id/messages", h.SendMessage)
		authed.GET("/sessions/:id/messages", h.ListMessages)
		authed.POST("/sessions/:id/typing", h.SetTyping)
		authed.GET("/sessions/:id/typing", h.GetTyping)

		authed.GET("/matches", h.ListMatches)
		authed.POST("/matches/:id/request", h.SendRequest)

		authed.GET("/requests", h.ListRequests)
		authed.POST("/requests/:id/accept", h.AcceptRequest)
		authed.POST("/requests/:id/decline", h.DeclineRequest)

		authed.GET("/ws", h.ServeWebSocket)
	}

	server := &http.Server{
		Addr:           ":" + envOr("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
