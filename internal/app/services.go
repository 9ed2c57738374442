package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/accessly-backend/internal/assistant"
	"github.com/yungbote/accessly-backend/internal/clients/redis"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
	"github.com/yungbote/accessly-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	User      services.UserService
	Scan      services.ScanService
	Assistant assistant.Service
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	var gen assistant.TextGenerator
	if clients.OpenAI != nil {
		gen = clients.OpenAI
	}

	return Services{
		Auth: services.NewAuthService(
			db,
			log,
			reposet.User,
			redis.NewRevocationStore(log, clients.Redis),
			cfg.JWTSecretKey,
			cfg.AccessTokenTTL,
		),
		User:      services.NewUserService(db, log, reposet.User, reposet.Scan),
		Scan:      services.NewScanService(db, log, reposet.Scan, clients.Scanner, clients.Snapshots),
		Assistant: assistant.NewService(log, gen),
	}
}
