package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"podforge/internal/config"
	"podforge/internal/daemon"
	"podforge/internal/logging"
	"podforge/internal/queue"
	"podforge/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		os.Exit(1)
	}

	manager := workflow.NewManager(cfg, store, logger, pipelineHandlers(cfg, logger)...)

	d, err := daemon.New(cfg, store, logger, manager, newPreviewCache(cfg, logger))
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("podforged shutting down")
}
