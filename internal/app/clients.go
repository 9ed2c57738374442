package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/accessly-backend/internal/clients/openai"
	"github.com/yungbote/accessly-backend/internal/clients/redis"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
	"github.com/yungbote/accessly-backend/internal/platform/objectstore"
	"github.com/yungbote/accessly-backend/internal/scanner"
)

type Clients struct {
	Redis     *goredis.Client
	OpenAI    openai.Client
	Scanner   scanner.Scanner
	Snapshots objectstore.Store
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	rdb, err := redis.NewClient(ctx, log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}

	// The assistant runs without a key; questions then fail as unavailable.
	var ai openai.Client
	if strings.TrimSpace(cfg.OpenAI.APIKey) != "" {
		ai, err = openai.NewClient(log, cfg.OpenAI)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init openai: %w", err)
		}
	} else {
		log.Warn("OPENAI_API_KEY not set; assistant disabled")
	}

	snapshots, err := objectstore.New(ctx, log, cfg.Snapshots)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init snapshot store: %w", err)
	}

	return Clients{
		Redis:     rdb,
		OpenAI:    ai,
		Scanner:   scanner.New(log, cfg.Scanner),
		Snapshots: snapshots,
	}, nil
}

func (c Clients) Close() {
	if c.Snapshots != nil {
		_ = c.Snapshots.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
