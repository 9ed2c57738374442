package app

import (
	"context"

	"gorm.io/gorm"

	httpserver "github.com/yungbote/accessly-backend/internal/http"
	httpH "github.com/yungbote/accessly-backend/internal/http/handlers"
	httpMW "github.com/yungbote/accessly-backend/internal/http/middleware"
	"github.com/yungbote/accessly-backend/internal/observability"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, db *gorm.DB, clients Clients, serviceset Services, metrics *observability.Metrics) *httpserver.Server {
	log.Info("Wiring HTTP server...")

	checks := map[string]httpH.Check{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return clients.Redis.Ping(ctx).Err()
		},
	}

	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}

	return httpserver.NewServer(httpserver.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		CORSOrigins:    cfg.CORSOrigins,
		Metrics:        metrics,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, serviceset.Auth),
		AuthHandler:    httpH.NewAuthHandler(serviceset.Auth, cfg.CookieSecure),
		UserHandler:    httpH.NewUserHandler(serviceset.User),
		ScanHandler:    httpH.NewScanHandler(serviceset.Scan),
		ChatHandler:    httpH.NewChatHandler(serviceset.Assistant),
		HealthHandler:  httpH.NewHealthHandler(checks),
	})
}
