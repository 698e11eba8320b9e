package main

import (
	"database/sql"
	"log"
	"log/slog"
	"net/http"

	"github.com/openai/openai-go/option"
	"github.com/vbonduro/fridgechef/internal/chat"
	openaichat "github.com/vbonduro/fridgechef/internal/chat/openai"
	"github.com/vbonduro/fridgechef/internal/config"
	"github.com/vbonduro/fridgechef/internal/db"
	"github.com/vbonduro/fridgechef/internal/logging"
	"github.com/vbonduro/fridgechef/internal/service"
	"github.com/vbonduro/fridgechef/internal/session"
	"github.com/vbonduro/fridgechef/internal/store"
	"github.com/vbonduro/fridgechef/internal/vision"
	claudevision "github.com/vbonduro/fridgechef/internal/vision/claude"
	"github.com/vbonduro/fridgechef/internal/vision/completions"
	"github.com/vbonduro/fridgechef/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	extractor, err := newExtractor(cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to initialize vision backend", "error", err)
		return
	}

	if cfg.ExtractionCachePath != "" {
		database, err := db.Open(cfg.ExtractionCachePath)
		if err != nil {
			logger.Error("failed to open extraction cache", "error", err)
			return
		}
		defer closeDB(database, logger)

		logger.Info("extraction cache enabled", "path", cfg.ExtractionCachePath)
		extractor = vision.NewCachingExtractor(extractor, store.NewExtractionStore(database), logger)
	}

	model, err := newChatModel(cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to initialize chat backend", "error", err)
		return
	}

	orchestrator, err := service.NewOrchestrator(model, logger,
		service.WithTemperature(cfg.ChatTemperature),
		service.WithMaxTokens(cfg.ChatMaxTokens),
	)
	if err != nil {
		logger.Error("failed to initialize orchestrator", "error", err)
		return
	}

	recipeService := service.NewRecipeService(
		session.NewMemoryStore(logger),
		service.NewBatchProcessor(extractor, logger),
		orchestrator,
		logger,
	)
	server := web.NewServer(recipeService, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newExtractor(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (vision.Extractor, error) {
	switch cfg.VisionBackend {
	case "claude":
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.NewExtractor(cfg.VisionAPIKey, cfg.ClaudeModel, httpClient)
	default:
		transport, err := completions.NewTransport(cfg.VisionMode, cfg.VisionEndpoint, cfg.VisionAPIKey, httpClient)
		if err != nil {
			return nil, err
		}
		logger.Info("using completions vision backend", "mode", cfg.VisionMode, "model", cfg.VisionModel)
		return completions.NewExtractor(transport, cfg.VisionModel), nil
	}
}

func newChatModel(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (chat.Model, error) {
	switch cfg.ChatBackend {
	case "openai":
		logger.Info("using OpenAI chat backend", "model", cfg.ChatModel)
		opts := []option.RequestOption{option.WithHTTPClient(httpClient)}
		if cfg.ChatEndpoint != "" {
			opts = append(opts, option.WithBaseURL(cfg.ChatEndpoint))
		}
		return openaichat.NewClient(cfg.ChatAPIKey, cfg.ChatModel, opts...)
	default:
		logger.Info("using HTTP chat backend", "endpoint", cfg.ChatEndpoint)
		return chat.NewClient(cfg.ChatEndpoint, cfg.ChatAPIKey,
			chat.WithModel(cfg.ChatModel),
			chat.WithHTTPClient(httpClient),
		)
	}
}

func closeDB(database *sql.DB, logger *slog.Logger) {
	if err := database.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}
