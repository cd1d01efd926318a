package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/pagehub-backend/internal/ai/provider"
	"github.com/yungbote/pagehub-backend/internal/clients/redis"
	"github.com/yungbote/pagehub-backend/internal/config"
	"github.com/yungbote/pagehub-backend/internal/data/db"
	"github.com/yungbote/pagehub-backend/internal/platform/kv"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
	"github.com/yungbote/pagehub-backend/internal/services"
)

type Clients struct {
	DB        *db.Service
	KV        kv.Store
	AI        *provider.Provider
	PageStore services.PageStore
}

func wireClients(ctx context.Context, log *logger.Logger, cfg *config.Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	database, err := db.Open(cfg.Database, log)
	if err != nil {
		return out, fmt.Errorf("init database: %w", err)
	}
	out.DB = database
	if err := db.AutoMigrateAll(database.DB()); err != nil {
		out.Close(log)
		return Clients{}, fmt.Errorf("database automigrate: %w", err)
	}

	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		store, err := redis.NewStore(ctx, cfg.Redis, log)
		if err != nil {
			out.Close(log)
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.KV = store
	} else {
		log.Warn("REDIS_ADDR not set; edit sessions and revocations are kept in process memory")
		out.KV = kv.NewMemory()
	}

	ai, err := provider.New(ctx, cfg.AI, log)
	if err != nil {
		out.Close(log)
		return Clients{}, fmt.Errorf("init ai provider: %w", err)
	}
	out.AI = ai
	log.Info("AI engine ready", "engine", ai.Engine.Name(), "model", ai.Model)

	pages, err := resolvePageStore(ctx, log, cfg.Publish)
	if err != nil {
		out.Close(log)
		return Clients{}, err
	}
	out.PageStore = pages

	return out, nil
}

// Close releases whatever was opened, in reverse order.
func (c Clients) Close(log *logger.Logger) {
	if c.PageStore != nil {
		if err := c.PageStore.Close(); err != nil {
			log.Warn("page store close failed", "error", err)
		}
	}
	if c.KV != nil {
		if err := c.KV.Close(); err != nil {
			log.Warn("kv close failed", "error", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn("database close failed", "error", err)
		}
	}
}
