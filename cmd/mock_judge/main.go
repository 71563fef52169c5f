package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contest_judge/internal/judge/mockjudge"
	"contest_judge/internal/platform/config"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// mock_judge serves the judge submission protocol locally with deterministic, marker-driven results.
func main() {
	config.Load()
	cfg := config.AppConfig

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := mockjudge.NewStore(cfg.MockJudgeTTL)
	go store.RunJanitor(ctx, time.Minute)

	routes := mockjudge.NewServer(store, cfg.MockJudgeDelay).Routes()
	server := &http.Server{
		Addr:         ":" + cfg.MockJudgePort,
		Handler:      chiMiddleware.Logger(routes),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Mock judge listening on port %s (processing delay %s)", cfg.MockJudgePort, cfg.MockJudgeDelay)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.MockJudgePort, err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: mock judge shutdown failed: %v", err)
	}
	log.Println("Mock judge stopped.")
}
