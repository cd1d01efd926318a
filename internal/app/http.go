package app

import (
	"github.com/yungbote/pagehub-backend/internal/config"
	apphttp "github.com/yungbote/pagehub-backend/internal/http"
	httpH "github.com/yungbote/pagehub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pagehub-backend/internal/http/middleware"
	"github.com/yungbote/pagehub-backend/internal/observability"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

type Middleware struct {
	Auth        *httpMW.AuthMiddleware
	RateLimiter *httpMW.RateLimiter
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	Sections  *httpH.SectionsHandler
	Site      *httpH.SiteHandler
	Draft     *httpH.DraftHandler
	Selection *httpH.SelectionHandler
}

func wireHandlers(log *logger.Logger, cfg *config.Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Auth:     httpH.NewAuthHandler(log, services.Auth),
		Sections: httpH.NewSectionsHandler(),
		Site: httpH.NewSiteHandlerWithDeps(httpH.SiteHandlerDeps{
			Log:             log,
			Sites:           services.Site,
			MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
			MaxUploadBytes:  cfg.HTTP.MaxUploadBytes,
		}),
		Draft: httpH.NewDraftHandlerWithDeps(httpH.DraftHandlerDeps{
			Log:             log,
			Drafts:          services.Draft,
			Publisher:       services.Publish,
			MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		}),
		Selection: httpH.NewSelectionHandler(log, services.Edit),
	}
}

func wireMiddleware(log *logger.Logger, cfg *config.Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	mw := Middleware{Auth: httpMW.NewAuthMiddleware(log, services.Auth)}
	if cfg.HTTP.RateLimit.RPS > 0 {
		mw.RateLimiter = httpMW.NewRateLimiter(cfg.HTTP.RateLimit.RPS, cfg.HTTP.RateLimit.Burst, 0)
	}
	return mw
}

func wireServer(log *logger.Logger, cfg *config.Config, serviceName string, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *apphttp.Server {
	return apphttp.NewServer(cfg.HTTP, apphttp.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		CORSOrigins:      cfg.HTTP.CORSOrigins,
		Metrics:          metrics,
		RateLimiter:      middleware.RateLimiter,
		AuthMiddleware:   middleware.Auth,
		AuthHandler:      handlers.Auth,
		SectionsHandler:  handlers.Sections,
		SiteHandler:      handlers.Site,
		DraftHandler:     handlers.Draft,
		SelectionHandler: handlers.Selection,
		HealthHandler:    handlers.Health,
	})
}
