package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/pagehub-backend/internal/config"
	apphttp "github.com/yungbote/pagehub-backend/internal/http"
	"github.com/yungbote/pagehub-backend/internal/observability"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

// Version is stamped at build time with -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *apphttp.Server

	shutdownOTel func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Configuration loaded", "env", cfg.Env, "addr", cfg.HTTP.Addr, "engine", cfg.AI.Engine.Type, "db", cfg.Database.Driver, "publish", cfg.Publish.Mode)

	serviceName := strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME"))
	if serviceName == "" {
		serviceName = "pagehub"
	}
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Env,
		Version:     Version,
	})
	metrics := observability.Init()

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = shutdownOTel(context.WithoutCancel(ctx))
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(clients.DB.DB(), log)

	serviceset, err := wireServices(log, cfg, clients, reposet)
	if err != nil {
		clients.Close(log)
		_ = shutdownOTel(context.WithoutCancel(ctx))
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, cfg, serviceset)
	middleware := wireMiddleware(log, cfg, serviceset)
	server := wireServer(log, cfg, serviceName, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		shutdownOTel: shutdownOTel,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Server.Addr())
		return a.Server.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down HTTP server", "timeout", a.Cfg.HTTP.ShutdownTimeout.Duration)
		return a.Server.Shutdown(gctx, a.Cfg.HTTP.ShutdownTimeout.Duration)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close(a.Log)
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
