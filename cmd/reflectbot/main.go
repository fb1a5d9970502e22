package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/genai"

	"github.com/MikeSquared-Agency/reflectbot/internal/analysis"
	"github.com/MikeSquared-Agency/reflectbot/internal/api"
	"github.com/MikeSquared-Agency/reflectbot/internal/config"
	"github.com/MikeSquared-Agency/reflectbot/internal/conversation"
	"github.com/MikeSquared-Agency/reflectbot/internal/hermes"
	"github.com/MikeSquared-Agency/reflectbot/internal/insight"
	"github.com/MikeSquared-Agency/reflectbot/internal/intent"
	"github.com/MikeSquared-Agency/reflectbot/internal/predictor"
	"github.com/MikeSquared-Agency/reflectbot/internal/store"
	"github.com/MikeSquared-Agency/reflectbot/internal/textnorm"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("reflectbot starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	// NATS/Hermes (optional, events are best-effort)
	var publisher hermes.Publisher = hermes.Noop{}
	if cfg.NatsURL != "" {
		hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		publisher = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, events disabled")
	}

	var genaiClient *genai.Client
	if cfg.GeminiAPIKey != "" {
		genaiClient, err = insight.NewGenAIClient(ctx, cfg.GeminiAPIKey, "")
		if err != nil {
			slog.Error("failed to create Gemini client", "error", err)
			os.Exit(1)
		}
	}

	norm := textnorm.New()
	pred := newPredictor(cfg, norm, genaiClient)
	narrator := newNarrator(cfg, genaiClient)

	agg := analysis.NewAggregator(norm, pred, narrator, slog.Default())
	svc := analysis.NewService(db, agg, narrator, publisher, slog.Default())
	svc.SetTimeout(cfg.AnalyzeTimeout)

	chat := conversation.NewRegistry(intent.NewClassifier(intent.DefaultCatalog()))
	go chat.RunSweeper(ctx, cfg.SessionIdleTimeout, time.Minute)

	// HTTP API
	srv := api.NewServer(api.Options{
		Port:           cfg.Port,
		APIToken:       cfg.APIToken,
		AllowedOrigins: cfg.AllowedOrigins,
		AnalyzeTimeout: cfg.AnalyzeTimeout,
	}, api.Deps{
		Store:     db,
		Chat:      chat,
		Analysis:  svc,
		Publisher: publisher,
		Logger:    slog.Default(),
	})
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	if cfg.APIToken == "" {
		slog.Warn("REFLECTBOT_API_TOKEN not set, API is unauthenticated")
	}
	slog.Info("reflectbot ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}
	cancel()
	slog.Info("reflectbot stopped")
}

func newPredictor(cfg config.Config, norm *textnorm.Normalizer, client *genai.Client) predictor.Predictor {
	var p predictor.Predictor
	if cfg.PredictorURL != "" {
		p = predictor.NewRemote(cfg.PredictorURL, cfg.PredictorTimeout)
		slog.Info("remote predictor ready", "url", cfg.PredictorURL)
	} else {
		p = predictor.NewLexicon(norm)
		slog.Info("PREDICTOR_URL not set, using lexicon predictor")
	}

	if cfg.EmbeddingModel != "" {
		if client == nil {
			slog.Warn("EMBEDDING_MODEL set without GEMINI_API_KEY, embedding summary disabled")
			return p
		}
		p = predictor.WithEmbedding(p, predictor.NewGenAIEmbedder(client, cfg.EmbeddingModel), slog.Default())
		slog.Info("embedding summary enabled", "model", cfg.EmbeddingModel)
	}
	return p
}

func newNarrator(cfg config.Config, client *genai.Client) insight.Narrator {
	switch cfg.Narrator {
	case "gemini":
		if client != nil {
			slog.Info("gemini narrator ready", "model", cfg.GeminiModel)
			return insight.NewGemini(client, cfg.GeminiModel)
		}
	case "anthropic", "claude":
		if cfg.AnthropicAPIKey != "" {
			slog.Info("anthropic narrator ready", "model", cfg.AnthropicModel)
			return insight.NewClaude(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		}
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			slog.Info("openai narrator ready", "model", cfg.OpenAIModel)
			return insight.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		}
	case "none", "disabled":
		return insight.Disabled{}
	default:
		slog.Warn("unknown NARRATOR, insights disabled", "narrator", cfg.Narrator)
		return insight.Disabled{}
	}
	slog.Warn("narrator has no API key, insights disabled", "narrator", cfg.Narrator)
	return insight.Disabled{}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
