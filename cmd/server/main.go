package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"challengehub/internal/api"
	"challengehub/internal/app/service"
	"challengehub/internal/app/worker"
	"challengehub/internal/common/security"
	"challengehub/internal/domain/repository"
	"challengehub/internal/platform/cache"
	"challengehub/internal/platform/config"
	"challengehub/internal/platform/database"
	"challengehub/internal/platform/logging"

	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	config.Load()

	// 2. Initialize Logging
	logging.Init()
	defer logging.Sync()
	logging.L.Info("configuration loaded")

	// 3. Initialize JWT
	security.InitJWT()

	// 4. Initialize Database
	database.Connect()
	defer database.Close()
	logging.L.Info("database connected")

	// 5. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()
	logging.L.Info("redis connected")

	// 6. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	challengeRepo := repository.NewPgChallengeRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	execJobRepo := repository.NewPgExecutionJobRepository(database.DB)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo)
	challengeService := service.NewChallengeService(challengeRepo, database.DB)
	rankingService := service.NewRankingService(userRepo, cache.RDB)
	submissionService := service.NewSubmissionService(submissionRepo, challengeRepo, userRepo, rankingService, database.DB)
	userService := service.NewUserService(userRepo, submissionRepo)
	executionService := service.NewExecutionService(execJobRepo, challengeRepo, cache.RDB, database.DB)

	// 8. Initialize Execution Worker (as a goroutine)
	executionWorker := worker.NewExecutionWorker(cache.RDB, execJobRepo, challengeRepo)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go executionWorker.Start(workerCtx)
	logging.L.Info("execution worker started")

	// 9. Initialize Router & HTTP Server
	router := api.NewRouter(authService, challengeService, submissionService, userService, rankingService, executionService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logging.L.Info("server starting", zap.String("port", config.AppConfig.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L.Fatal("could not listen", zap.String("port", config.AppConfig.APIPort), zap.Error(err))
		}
	}()

	<-stop // Wait for interrupt signal

	logging.L.Info("shutting down server")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.L.Fatal("server shutdown failed", zap.Error(err))
	}

	logging.L.Info("server and worker stopped gracefully")
}
