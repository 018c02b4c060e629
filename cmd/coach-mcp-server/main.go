package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"verbal-trainer/internal/coachmcp"
	"verbal-trainer/internal/config"
	"verbal-trainer/internal/feedback"
	"verbal-trainer/internal/llm"
	"verbal-trainer/internal/progress"
	"verbal-trainer/internal/trainer"
)

func main() {
	// stdout carries the MCP protocol, logs go to stderr
	log.SetOutput(os.Stderr)

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := progress.NewFileStore(cfg.ProgressFilePath)
	if err != nil {
		log.Fatalf("failed to init progress store: %v", err)
	}
	extractor := &feedback.Extractor{Exclusive: cfg.ExclusiveCategories}

	// Evaluation needs a model; extraction and progress tools work without one.
	var coach *trainer.Coach
	prov, model := cfg.Provider(), cfg.Model()
	if client, err := llm.NewFactory(cfg).CreateClient(prov, model); err != nil {
		log.Printf("⚠️ evaluate_response disabled: %v", err)
	} else {
		coach = trainer.NewCoach(client, store, trainer.Options{
			SystemPrompt: cfg.SystemPrompt(),
			Extractor:    extractor,
		})
	}

	server := coachmcp.NewServer(coach, store, extractor)
	log.Printf("🚀 Starting verbal-trainer MCP server (progress=%s)", store.Path())
	if cfg.MCPHTTPAddr != "" {
		err = server.RunHTTP(ctx, cfg.MCPHTTPAddr)
	} else {
		err = server.Run(ctx)
	}
	if err != nil {
		log.Fatalf("❌ MCP server failed: %v", err)
	}
}
