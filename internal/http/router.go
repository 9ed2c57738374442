package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/accessly-backend/internal/http/handlers"
	httpMW "github.com/yungbote/accessly-backend/internal/http/middleware"
	"github.com/yungbote/accessly-backend/internal/observability"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler   *httpH.AuthHandler
	UserHandler   *httpH.UserHandler
	ScanHandler   *httpH.ScanHandler
	ChatHandler   *httpH.ChatHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics"))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	requireAuth := func(c *gin.Context) { c.Next() }
	if cfg.AuthMiddleware != nil {
		requireAuth = cfg.AuthMiddleware.RequireAuth()
	}

	// User
	user := r.Group("/user")
	{
		if cfg.AuthHandler != nil {
			user.POST("/register", cfg.AuthHandler.Register)
			user.POST("/login", cfg.AuthHandler.Login)
			user.POST("/logout", requireAuth, cfg.AuthHandler.Logout)
			user.GET("/check", requireAuth, cfg.AuthHandler.Check)
		}
		if cfg.UserHandler != nil {
			user.GET("/getprofile", requireAuth, cfg.UserHandler.GetProfile)
			user.PUT("/updateprofile", requireAuth, cfg.UserHandler.UpdateProfile)
		}
	}

	// Scan
	if cfg.ScanHandler != nil {
		scan := r.Group("/scan", requireAuth)
		scan.POST("/result", cfg.ScanHandler.Submit)
		scan.GET("/resultscanned", cfg.ScanHandler.List)
		scan.GET("/generateresult/:id", cfg.ScanHandler.Get)
		scan.GET("/scansbyuser", cfg.ScanHandler.ListByUser)
		scan.DELETE("/deleteresult/:id", cfg.ScanHandler.Delete)
		scan.GET("/summary", cfg.ScanHandler.Summary)
		scan.GET("/chart/:id", cfg.ScanHandler.Chart)
		scan.GET("/snapshot/:id", cfg.ScanHandler.Snapshot)
	}

	// Assistant
	if cfg.ChatHandler != nil {
		r.POST("/ai/chat", requireAuth, cfg.ChatHandler.Chat)
	}

	return r
}
