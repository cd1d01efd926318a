package services

import (
	"context"
	"errors"

	"github.com/yungbote/pagehub-backend/internal/content/edit"
	"github.com/yungbote/pagehub-backend/internal/data/repos"
	"github.com/yungbote/pagehub-backend/internal/domain/site"
	"github.com/yungbote/pagehub-backend/internal/platform/apierr"
	"github.com/yungbote/pagehub-backend/internal/platform/dbctx"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

type EditService interface {
	State(ctx context.Context, draftID string) (edit.Snapshot, error)
	Select(ctx context.Context, draftID string, sel site.SelectionState) (edit.Snapshot, error)
	Dismiss(ctx context.Context, draftID string) error
	// Confirm rewrites the current selection and returns the updated draft.
	Confirm(ctx context.Context, draftID, instruction string) (*site.Draft, error)
}

type editService struct {
	log    *logger.Logger
	drafts repos.DraftRepo
	coord  *edit.Coordinator
}

func NewEditService(log *logger.Logger, drafts repos.DraftRepo, coord *edit.Coordinator) EditService {
	return &editService{log: log.With("service", "EditService"), drafts: drafts, coord: coord}
}

// RewriterFunc adapts a function, typically SiteService.RewriteText, to edit.Rewriter.
type RewriterFunc func(ctx context.Context, selected, instruction, surrounding string) (string, error)

func (f RewriterFunc) Rewrite(ctx context.Context, selected, instruction, surrounding string) (string, error) {
	return f(ctx, selected, instruction, surrounding)
}

func (s *editService) key(ctx context.Context, draftID string) (*site.Draft, edit.Key, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, edit.Key{}, err
	}
	d, err := loadDraft(ctx, s.drafts, owner, draftID)
	if err != nil {
		return nil, edit.Key{}, err
	}
	return d, edit.Key{OwnerID: owner, DraftID: d.ID.String()}, nil
}

func (s *editService) State(ctx context.Context, draftID string) (edit.Snapshot, error) {
	_, k, err := s.key(ctx, draftID)
	if err != nil {
		return edit.Snapshot{}, err
	}
	snap, err := s.coord.State(ctx, k)
	return snap, mapEditError(err)
}

func (s *editService) Select(ctx context.Context, draftID string, sel site.SelectionState) (edit.Snapshot, error) {
	d, k, err := s.key(ctx, draftID)
	if err != nil {
		return edit.Snapshot{}, err
	}
	wc, err := d.WebsiteContent()
	if err != nil {
		return edit.Snapshot{}, err
	}
	snap, err := s.coord.Select(ctx, k, wc, sel)
	return snap, mapEditError(err)
}

func (s *editService) Dismiss(ctx context.Context, draftID string) error {
	_, k, err := s.key(ctx, draftID)
	if err != nil {
		return err
	}
	return mapEditError(s.coord.Dismiss(ctx, k))
}

func (s *editService) Confirm(ctx context.Context, draftID, instruction string) (*site.Draft, error) {
	_, k, err := s.key(ctx, draftID)
	if err != nil {
		return nil, err
	}
	doc := &draftDocument{drafts: s.drafts, owner: k.OwnerID, id: draftID}
	if _, err := s.coord.Confirm(ctx, k, doc, instruction); err != nil {
		return nil, mapEditError(err)
	}
	return doc.draft, nil
}

// draftDocument reads the draft fresh under the rewrite claim and commits against that revision.
type draftDocument struct {
	drafts repos.DraftRepo
	owner  string
	id     string
	draft  *site.Draft
}

func (d *draftDocument) Content(ctx context.Context) (site.WebsiteContent, error) {
	dr, err := loadDraft(ctx, d.drafts, d.owner, d.id)
	if err != nil {
		return site.WebsiteContent{}, err
	}
	d.draft = dr
	return dr.WebsiteContent()
}

func (d *draftDocument) Replace(ctx context.Context, wc site.WebsiteContent) error {
	if err := d.draft.SetWebsiteContent(wc); err != nil {
		return err
	}
	return mapRepoError(d.drafts.SaveContent(dbctx.Context{Ctx: ctx}, d.draft))
}

func mapEditError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apierr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, edit.ErrEmptyInstruction):
		return apierr.FieldError("instruction", "Enter an instruction.")
	case errors.Is(err, edit.ErrNoSelection):
		return apierr.Conflict("no_selection", err)
	case errors.Is(err, edit.ErrRewriteInFlight):
		return apierr.Conflict("rewrite_in_flight", err)
	case errors.Is(err, edit.ErrTextNotFound):
		return apierr.Conflict("text_not_found", err)
	case errors.Is(err, edit.ErrSectionNotFound):
		return apierr.NotFound("section_not_found", err)
	default:
		return err
	}
}
