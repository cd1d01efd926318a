package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/yungbote/pagehub-backend/internal/content/render"
	"github.com/yungbote/pagehub-backend/internal/data/repos"
	"github.com/yungbote/pagehub-backend/internal/domain/site"
	"github.com/yungbote/pagehub-backend/internal/observability"
	"github.com/yungbote/pagehub-backend/internal/platform/apierr"
	"github.com/yungbote/pagehub-backend/internal/platform/dbctx"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

// PageStore is where published pages land. localfs.Dir and gcp.Bucket implement it.
type PageStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	PublicURL(key string) string
	Close() error
}

type PublishService interface {
	// Render returns the HTML preview of a draft.
	Render(ctx context.Context, id string) ([]byte, error)
	Publish(ctx context.Context, id, domain string) (*site.Draft, error)
}

type publishService struct {
	log      *logger.Logger
	drafts   repos.DraftRepo
	renderer *render.Renderer
	store    PageStore
	now      func() time.Time
}

func NewPublishService(log *logger.Logger, drafts repos.DraftRepo, renderer *render.Renderer, store PageStore) PublishService {
	return &publishService{
		log:      log.With("service", "PublishService"),
		drafts:   drafts,
		renderer: renderer,
		store:    store,
		now:      time.Now,
	}
}

var hostnameRE = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}$`)

// NormalizeDomain lowercases a custom domain and checks it is a plain hostname. "" is allowed.
func NormalizeDomain(domain string) (string, error) {
	d := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if d == "" {
		return "", nil
	}
	if len(d) > 253 || !hostnameRE.MatchString(d) {
		return "", apierr.FieldError("domain", "Enter a valid domain such as www.example.com.")
	}
	return d, nil
}

func (s *publishService) Render(ctx context.Context, id string) ([]byte, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	d, err := loadDraft(ctx, s.drafts, owner, id)
	if err != nil {
		return nil, err
	}
	return s.render(d, d.CustomDomain)
}

func (s *publishService) Publish(ctx context.Context, id, domain string) (*site.Draft, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	domain, err = NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}
	d, err := loadDraft(ctx, s.drafts, owner, id)
	if err != nil {
		return nil, err
	}
	if domain == "" {
		domain = d.CustomDomain
	}

	page, err := s.render(d, domain)
	if err != nil {
		return nil, err
	}
	key := "sites/" + d.ID.String() + "/index.html"
	if err := s.store.Put(ctx, key, bytes.NewReader(page), "text/html; charset=utf-8"); err != nil {
		observability.Current().IncPublished("error")
		return nil, fmt.Errorf("store page: %w", err)
	}
	url := s.store.PublicURL(key)
	if err := s.drafts.MarkPublished(dbctx.Context{Ctx: ctx}, d, url, domain, s.now().UTC()); err != nil {
		return nil, mapRepoError(err)
	}
	observability.Current().IncPublished("ok")
	s.log.Info("site published", "draft_id", d.ID.String(), "url", url, "domain", domain)
	return d, nil
}

func (s *publishService) render(d *site.Draft, domain string) ([]byte, error) {
	wc, err := d.WebsiteContent()
	if err != nil {
		return nil, fmt.Errorf("decode draft content: %w", err)
	}
	return s.renderer.Render(wc, render.Page{Domain: domain})
}
