package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/pagehub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pagehub-backend/internal/http/middleware"
	"github.com/yungbote/pagehub-backend/internal/observability"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics
	RateLimiter *httpMW.RateLimiter

	AuthMiddleware   *httpMW.AuthMiddleware
	AuthHandler      *httpH.AuthHandler
	SectionsHandler  *httpH.SectionsHandler
	SiteHandler      *httpH.SiteHandler
	DraftHandler     *httpH.DraftHandler
	SelectionHandler *httpH.SelectionHandler

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
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}
		// AI-backed routes share one per-client budget.
		limited := cfg.RateLimiter.Middleware()

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.SectionsHandler != nil {
			protected.GET("/sections", cfg.SectionsHandler.ListSections)
		}

		// Generation
		if cfg.SiteHandler != nil {
			protected.POST("/sites/generate", limited, cfg.SiteHandler.Generate)
			protected.POST("/sites/generate/upload", limited, cfg.SiteHandler.GenerateUpload)
			protected.POST("/rewrite", limited, cfg.SiteHandler.Rewrite)
		}

		// Drafts
		if cfg.DraftHandler != nil {
			protected.GET("/sites", cfg.DraftHandler.List)
			protected.GET("/sites/:id", cfg.DraftHandler.Get)
			protected.PUT("/sites/:id", cfg.DraftHandler.Replace)
			protected.DELETE("/sites/:id", cfg.DraftHandler.Delete)
			protected.GET("/sites/:id/render", cfg.DraftHandler.Render)
			protected.POST("/sites/:id/publish", cfg.DraftHandler.Publish)
		}

		// Inline edit session
		if cfg.SelectionHandler != nil {
			protected.GET("/sites/:id/selection", cfg.SelectionHandler.Get)
			protected.POST("/sites/:id/selection", cfg.SelectionHandler.Select)
			protected.DELETE("/sites/:id/selection", cfg.SelectionHandler.Dismiss)
			protected.POST("/sites/:id/selection/rewrite", limited, cfg.SelectionHandler.Rewrite)
		}
	}

	return r
}
