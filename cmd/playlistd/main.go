package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/harmonia-labs/playlist-agent-go/agents/coordination"
	"github.com/harmonia-labs/playlist-agent-go/config"
	"github.com/harmonia-labs/playlist-agent-go/playlist"
	"github.com/harmonia-labs/playlist-agent-go/server"
	"github.com/harmonia-labs/playlist-agent-go/spotify"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: Could not load .env file: %v", err)
		log.Println("   Continuing with environment variables...")
	}

	cfg := config.Load()
	if cfg.OpenAIAPIKey == "" && cfg.GeminiAPIKey == "" {
		log.Fatal("❌ ERROR: neither OPENAI_API_KEY nor GEMINI_API_KEY is set in environment!")
	}

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer func() { _ = cleanup() }()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
		}); err != nil {
			log.Printf("⚠️  Sentry init failed: %v", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := spotify.NewClient()

	orchestrator, err := coordination.NewOrchestrator(ctx, &cfg, catalog)
	if err != nil {
		log.Fatalf("❌ ERROR: failed to build orchestrator: %v", err)
	}

	materializer := playlist.NewMaterializer(catalog)

	srv := server.New(logger, orchestrator, materializer)
	if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		log.Fatalf("❌ ERROR: server failed: %v", err)
	}
}
