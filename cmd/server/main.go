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

	"contest_judge/internal/api"
	"contest_judge/internal/app/judging"
	"contest_judge/internal/app/service"
	"contest_judge/internal/app/worker"
	"contest_judge/internal/common/security"
	"contest_judge/internal/domain/repository"
	"contest_judge/internal/judge"
	"contest_judge/internal/platform/config"
	"contest_judge/internal/platform/database"
	"contest_judge/internal/platform/queue"
)

func main() {
	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()

	// 3. Initialize Database
	database.Connect()
	defer database.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, database.DB); err != nil {
		migrateCancel()
		log.Fatalf("%v", err)
	}
	migrateCancel()

	// 4. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	contestRepo := repository.NewPgContestRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	leaderboardRepo := repository.NewPgLeaderboardRepository(database.DB)
	execJobRepo := repository.NewPgExecutionJobRepository(database.DB)

	// 6. Initialize judge client and services
	judgeClient := judge.NewHTTPClient(judge.Config{
		BaseURL:      cfg.JudgeBaseURL,
		AuthToken:    cfg.JudgeAuthToken,
		RapidAPIKey:  cfg.JudgeRapidAPIKey,
		RapidAPIHost: cfg.JudgeRapidAPIHost,
		RetryMax:     cfg.JudgeHTTPRetryMax,
		Timeout:      cfg.JudgeHTTPTimeout,
	})
	aggregator := judging.NewAggregator(judgeClient, cfg.JudgePollMaxAttempts, cfg.JudgePollInterval)

	authService := service.NewAuthService(userRepo)
	contestService := service.NewContestService(contestRepo, database.DB)
	leaderboardService := service.NewLeaderboardService(database.DB, submissionRepo, leaderboardRepo, userRepo, queue.RDB, cfg.LeaderboardCacheTTL)
	submissionService := service.NewSubmissionService(submissionRepo, contestRepo, aggregator, leaderboardService)
	execJobService := service.NewExecutionJobService(execJobRepo, queue.RDB, cfg.ExecutionQueueName)
	plagiarismService := service.NewPlagiarismService(submissionRepo, contestRepo, cfg.PlagiarismDefaultThreshold, cfg.PlagiarismScanParallelism)

	// 7. Initialize Execution Worker (as a goroutine)
	executionWorker := worker.NewExecutionWorker(queue.RDB, execJobService, submissionService, worker.Config{
		QueueName:   cfg.ExecutionQueueName,
		LockPrefix:  cfg.ExecutionLockPrefix,
		LockTTL:     time.Duration(cfg.ExecutionLockTTLSeconds) * time.Second,
		Concurrency: cfg.WorkerConcurrency,
	})
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		executionWorker.Start(workerCtx)
	}()

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(api.Services{
		Auth:        authService,
		Contests:    contestService,
		Leaderboard: leaderboardService,
		Submissions: submissionService,
		Jobs:        execJobService,
		Plagiarism:  plagiarismService,
	}, cfg.APIRequestTimeout)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.APIRequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: server shutdown failed: %v", err)
	}

	// In-flight jobs finish persisting; anything still queued stays in Redis.
	workerCancel()
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Println("WARN: worker did not stop before the shutdown deadline")
	}

	log.Println("Server and worker stopped gracefully.")
}
