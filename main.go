package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Andeeli/MedicalCodeRetrieval/config"
	"github.com/Andeeli/MedicalCodeRetrieval/data"
	"github.com/Andeeli/MedicalCodeRetrieval/extractor"
	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
	"github.com/Andeeli/MedicalCodeRetrieval/handlers"
	"github.com/Andeeli/MedicalCodeRetrieval/health"
	"github.com/Andeeli/MedicalCodeRetrieval/logging"
	"github.com/Andeeli/MedicalCodeRetrieval/rxnorm"
	"github.com/Andeeli/MedicalCodeRetrieval/scheduler"
	"github.com/Andeeli/MedicalCodeRetrieval/server"
	"github.com/Andeeli/MedicalCodeRetrieval/validation"
	"github.com/joho/godotenv"
)

func main() {
	// Read the env variables; a missing .env file is fine, defaults apply
	if err := godotenv.Load(); err != nil {
		logging.Info("No .env file found, using environment defaults")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs", cfg.LogRetentionWeeks, cfg.MaxLogFileSize, cfg.LogLevel)

	// Wire the extraction pipeline
	client := rxnorm.NewClient(cfg.RxNavBaseURL)
	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())

	var sched *scheduler.Scheduler
	ext := extractor.New(client, extractor.Options{
		Ingredients:  cfg.Ingredients,
		RelatedPause: cfg.RelatedPause,
		NDCPause:     cfg.NDCPause,
		Checkpoint: func(partial *entities.Dataset) {
			sched.Checkpoint(partial)
		},
	})

	sched = scheduler.NewScheduler(dataContainer, ext, ext.Ingredients())

	// Initial extraction runs in the background so the server comes up
	// immediately; /health reports unhealthy until data arrives
	go func() {
		if err := sched.Start(); err != nil {
			logging.Error("Scheduler failed to start", "error", err)
		}
	}()

	validator := validation.NewDataValidator()
	healthChecker := health.NewHealthChecker(dataContainer)
	handler := handlers.NewHTTPHandler(dataContainer, validator, healthChecker)

	srv := server.NewServer(cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
		os.Exit(1)
	}
}
