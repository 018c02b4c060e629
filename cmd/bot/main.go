package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"verbal-trainer/internal/auth"
	"verbal-trainer/internal/config"
	"verbal-trainer/internal/feedback"
	"verbal-trainer/internal/llm"
	"verbal-trainer/internal/progress"
	"verbal-trainer/internal/scheduler"
	"verbal-trainer/internal/speech"
	"verbal-trainer/internal/telegram"
	"verbal-trainer/internal/trainer"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	if cfg.TelegramBotToken == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var allowRepo auth.Repository
	if cfg.AllowlistFilePath != "" {
		repo, err := auth.NewFileRepository(cfg.AllowlistFilePath)
		if err != nil {
			log.Fatalf("failed to init allowlist repo: %v", err)
		}
		allowRepo = repo
	}
	authSvc, err := auth.NewWithRepo(allowRepo, cfg.AllowedUsers)
	if err != nil {
		log.Fatalf("failed to init auth: %v", err)
	}
	if authSvc.Open() {
		log.Println("⚠️ Allow-list is empty, the bot is open to everyone")
	}

	// Provider and model honour the override files
	prov, model := cfg.Provider(), cfg.Model()

	llmClient, err := llm.NewFactory(cfg).CreateClient(prov, model)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	store, err := progress.NewFileStore(cfg.ProgressFilePath)
	if err != nil {
		log.Fatalf("failed to init progress store: %v", err)
	}

	stt, err := speech.NewTranscriber(ctx, cfg)
	if err != nil {
		log.Printf("⚠️ Voice input disabled: %v", err)
	}
	tts, err := speech.NewSynthesizer(ctx, cfg)
	if err != nil {
		log.Printf("⚠️ Voice replies disabled: %v", err)
	}

	coach := trainer.NewCoach(llmClient, store, trainer.Options{
		SystemPrompt: cfg.SystemPrompt(),
		Extractor:    &feedback.Extractor{Exclusive: cfg.ExclusiveCategories},
		Synthesizer:  tts,
	})

	bot, err := telegram.New(cfg.TelegramBotToken, telegram.Deps{
		Coach:       coach,
		Store:       store,
		Transcriber: stt,
		Auth:        authSvc,
		AdminUserID: cfg.AdminUserID,
		ParseMode:   cfg.MessageParseMode,
	})
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	sched := scheduler.New(cfg.DigestCron)
	sched.SetReportFunction(bot.SendDailyDigests)
	if err := sched.Start(); err != nil {
		log.Printf("❌ Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	log.Printf("✅ Bot started (provider=%s, model=%s, progress=%s)", prov, model, store.Path())
	bot.Start(ctx)
}
