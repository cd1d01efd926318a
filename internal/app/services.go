package app

import (
	"fmt"

	"github.com/yungbote/pagehub-backend/internal/ai/flows"
	"github.com/yungbote/pagehub-backend/internal/config"
	"github.com/yungbote/pagehub-backend/internal/content/edit"
	"github.com/yungbote/pagehub-backend/internal/content/render"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
	"github.com/yungbote/pagehub-backend/internal/services"
)

type Services struct {
	Auth    services.AuthService
	Site    services.SiteService
	Draft   services.DraftService
	Edit    services.EditService
	Publish services.PublishService
}

func wireServices(log *logger.Logger, cfg *config.Config, clients Clients, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	auth, err := services.NewAuthService(log, cfg.Auth, clients.KV)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	aiFlows := flows.New(clients.AI, log)
	site := services.NewSiteService(log, aiFlows, reposet.Draft)

	coord := edit.NewCoordinator(clients.KV, services.RewriterFunc(site.RewriteText), edit.Options{
		SelectionTTL:      cfg.Edit.SelectionTTL.Duration,
		MinSelectionChars: cfg.Edit.MinSelectionChars,
		RewriteTimeout:    cfg.Edit.RewriteTimeout.Duration,
	}, log)

	return Services{
		Auth:    auth,
		Site:    site,
		Draft:   services.NewDraftService(log, reposet.Draft),
		Edit:    services.NewEditService(log, reposet.Draft, coord),
		Publish: services.NewPublishService(log, reposet.Draft, render.New(), clients.PageStore),
	}, nil
}
