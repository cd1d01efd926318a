package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/pagehub-backend/internal/data/repos"
	"github.com/yungbote/pagehub-backend/internal/domain/site"
	"github.com/yungbote/pagehub-backend/internal/platform/apierr"
	"github.com/yungbote/pagehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/pagehub-backend/internal/platform/dbctx"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

type DraftService interface {
	List(ctx context.Context) ([]*site.Draft, error)
	Get(ctx context.Context, id string) (*site.Draft, error)
	// ReplaceContent swaps the whole WebsiteContent of a draft. Section ids must be unique. A positive
	// baseRevision is the revision the caller edited; the save fails with stale_revision if it moved on.
	ReplaceContent(ctx context.Context, id string, wc site.WebsiteContent, baseRevision int) (*site.Draft, error)
	Delete(ctx context.Context, id string) error
}

type draftService struct {
	log    *logger.Logger
	drafts repos.DraftRepo
}

func NewDraftService(log *logger.Logger, drafts repos.DraftRepo) DraftService {
	return &draftService{log: log.With("service", "DraftService"), drafts: drafts}
}

func (s *draftService) List(ctx context.Context) ([]*site.Draft, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.drafts.ListByOwner(dbctx.Context{Ctx: ctx}, owner)
}

func (s *draftService) Get(ctx context.Context, id string) (*site.Draft, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return loadDraft(ctx, s.drafts, owner, id)
}

func (s *draftService) ReplaceContent(ctx context.Context, id string, wc site.WebsiteContent, baseRevision int) (*site.Draft, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if err := ValidateContent(wc); err != nil {
		return nil, err
	}
	d, err := loadDraft(ctx, s.drafts, owner, id)
	if err != nil {
		return nil, err
	}
	if baseRevision > 0 {
		d.Revision = baseRevision
	}
	if err := d.SetWebsiteContent(wc); err != nil {
		return nil, err
	}
	if err := s.drafts.SaveContent(dbctx.Context{Ctx: ctx}, d); err != nil {
		return nil, mapRepoError(err)
	}
	return d, nil
}

func (s *draftService) Delete(ctx context.Context, id string) error {
	owner, err := requireOwner(ctx)
	if err != nil {
		return err
	}
	uid, err := parseDraftID(id)
	if err != nil {
		return err
	}
	return mapRepoError(s.drafts.Delete(dbctx.Context{Ctx: ctx}, owner, uid))
}

// ValidateContent enforces the WebsiteContent invariants on client-supplied content.
func ValidateContent(wc site.WebsiteContent) error {
	if len(wc.Sections) == 0 {
		return apierr.FieldError("sections", "At least one section is required.")
	}
	seen := make(map[string]struct{}, len(wc.Sections))
	for _, sec := range wc.Sections {
		id := strings.TrimSpace(sec.ID)
		if id == "" {
			return apierr.FieldError("sections", "Every section needs an id.")
		}
		if _, dup := seen[id]; dup {
			return apierr.FieldError("sections", "Section ids must be unique: "+id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func requireOwner(ctx context.Context) (string, error) {
	owner := ctxutil.UserID(ctx)
	if owner == "" {
		return "", apierr.Unauthorized(errors.New("not signed in"))
	}
	return owner, nil
}

func parseDraftID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, apierr.NotFound("draft_not_found", repos.ErrNotFound)
	}
	return uid, nil
}

func loadDraft(ctx context.Context, drafts repos.DraftRepo, owner, id string) (*site.Draft, error) {
	uid, err := parseDraftID(id)
	if err != nil {
		return nil, err
	}
	d, err := drafts.Get(dbctx.Context{Ctx: ctx}, owner, uid)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return d, nil
}

func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repos.ErrNotFound):
		return apierr.NotFound("draft_not_found", err)
	case errors.Is(err, repos.ErrStaleRevision):
		return apierr.Conflict("stale_revision", err)
	default:
		return err
	}
}
