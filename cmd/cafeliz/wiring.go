package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/cafeliz/internal/config"
	"github.com/vbonduro/cafeliz/internal/db"
	"github.com/vbonduro/cafeliz/internal/kv"
	"github.com/vbonduro/cafeliz/internal/kv/bolt"
	"github.com/vbonduro/cafeliz/internal/kv/file"
	"github.com/vbonduro/cafeliz/internal/kv/memory"
	"github.com/vbonduro/cafeliz/internal/kv/postgres"
	"github.com/vbonduro/cafeliz/internal/kv/sqlite"
	"github.com/vbonduro/cafeliz/internal/location"
	"github.com/vbonduro/cafeliz/internal/notify"
	"github.com/vbonduro/cafeliz/internal/notify/telegram"
	"github.com/vbonduro/cafeliz/internal/vision"
	claudevision "github.com/vbonduro/cafeliz/internal/vision/claude"
	ollamavision "github.com/vbonduro/cafeliz/internal/vision/ollama"
)

// openBackend returns the storage shared by the menu and order collections.
func openBackend(ctx context.Context, cfg *config.Config) (kv.Backend, error) {
	switch cfg.StorageBackend {
	case "sqlite":
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return sqlite.New(database), nil
	case "bolt":
		b, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "file":
		b, err := file.New(cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
		b, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// newSuggester returns nil when no vision backend is configured.
func newSuggester(cfg *config.Config, logger *slog.Logger) vision.Suggester {
	switch cfg.VisionBackend {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			logger.Error("CLAUDE_API_KEY is required when VISION_BACKEND=claude")
			return nil
		}
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.New(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	case "ollama":
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollamavision.New(cfg.OllamaHost, cfg.OllamaModel)
	default:
		logger.Info("vision suggestions disabled")
		return nil
	}
}

// newAdmin returns the notifier for shop admin announcements. Without a
// Telegram token they only go to the log.
func newAdmin(cfg *config.Config, logger *slog.Logger) notify.Notifier {
	logNotifier := notify.NewLog(logger.With("audience", "admin"))
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return logNotifier
	}
	tg, err := telegram.New(cfg.TelegramToken, cfg.TelegramChatID, logger)
	if err != nil {
		logger.Error("telegram notifier disabled", "error", err)
		return logNotifier
	}
	return notify.Multi{logNotifier, tg}
}

func newReporter(cfg *config.Config, logger *slog.Logger) *location.Reporter {
	var locator location.Locator = location.Denied{}
	if cfg.Device != nil {
		locator = location.Static{Coords: location.Coordinates{Lat: cfg.Device.Lat, Lon: cfg.Device.Lon}}
	}
	var shop *location.Coordinates
	if cfg.Shop != nil {
		shop = &location.Coordinates{Lat: cfg.Shop.Lat, Lon: cfg.Shop.Lon}
	}
	return location.NewReporter(locator, shop, logger)
}
