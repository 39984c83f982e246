package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskzone/internal/api"
	"taskzone/internal/app/cache"
	"taskzone/internal/app/service"
	"taskzone/internal/app/worker"
	"taskzone/internal/common/security"
	"taskzone/internal/domain/repository"
	"taskzone/internal/platform/config"
	"taskzone/internal/platform/database"
	"taskzone/internal/platform/redisconn"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Task Cache
	var taskCache cache.TaskCache
	if config.AppConfig.CacheBackend == "redis" {
		redisconn.Connect()
		defer redisconn.Close()
		taskCache = cache.NewRedisTaskCache(redisconn.RDB, config.AppConfig.TaskCacheTTL)
		fmt.Println("Redis task cache initialized.")
	} else {
		taskCache = cache.NewMemoryTaskCache(config.AppConfig.TaskCacheTTL)
		fmt.Println("In-memory task cache initialized.")
	}

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	refreshTokenRepo := repository.NewPgRefreshTokenRepository(database.DB)
	taskRepo := repository.NewPgTaskRepository(database.DB)

	// 6. Initialize Services
	tokenService := service.NewTokenService(refreshTokenRepo)
	authService := service.NewAuthService(userRepo, tokenService)
	taskService := service.NewTaskService(taskRepo, taskCache)

	// 7. Initialize Token Purge Worker (as a goroutine)
	purgeWorker := worker.NewTokenPurgeWorker(refreshTokenRepo, config.AppConfig.TokenPurgeInterval)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go purgeWorker.Start(workerCtx)
	fmt.Println("Token purge worker started.")

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, tokenService, taskService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
