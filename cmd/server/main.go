package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"agenteval/internal/cache"
	"agenteval/internal/config"
	"agenteval/internal/repository"
	"agenteval/internal/service"
	"agenteval/internal/transport/rest"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize repositories
	resultRepo := repository.NewResultRepo(db)
	topicRepo := repository.NewTopicRepo(db)
	userRepo := repository.NewUserRepo(db)

	// Initialize caches
	backupCache := cache.NewBackupCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(userRepo)
	topicSvc := service.NewTopicService(topicRepo)
	syncSvc := service.NewSyncService(resultRepo)
	evalSvc := service.NewEvaluationService(topicRepo, resultRepo, backupCache, syncSvc)
	dashSvc := service.NewDashboardService(resultRepo)

	// Inject the notice sink (sync failures surface through polling)
	notices := service.NewNoticeCenter()
	syncSvc.SetNotifier(notices)

	// Create router with container
	container := &rest.Container{
		AuthService:      authSvc,
		TopicService:     topicSvc,
		EvalService:      evalSvc,
		DashboardService: dashSvc,
		Notices:          notices,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
