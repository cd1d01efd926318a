package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/pagehub-backend/internal/ai/engine"
	"github.com/yungbote/pagehub-backend/internal/ai/flows"
	"github.com/yungbote/pagehub-backend/internal/content/parser"
	"github.com/yungbote/pagehub-backend/internal/data/repos"
	"github.com/yungbote/pagehub-backend/internal/domain/site"
	"github.com/yungbote/pagehub-backend/internal/platform/apierr"
	"github.com/yungbote/pagehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/pagehub-backend/internal/platform/dbctx"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

const (
	msgUnparsable     = "AI failed to generate parsable content. Please try again."
	msgGenerateFailed = "Failed to generate content."
	msgRewriteFailed  = "Failed to rewrite text."
)

// SiteFlows is the part of flows.Flows the site service drives.
type SiteFlows interface {
	GenerateWebsiteContent(ctx context.Context, in flows.GenerateInput) (flows.GenerateOutput, error)
	SuggestImagePrompts(ctx context.Context, contentByTitle map[string]string) (map[string]string, error)
	InlineEdit(ctx context.Context, in flows.InlineEditInput) (flows.InlineEditOutput, error)
}

type SiteService interface {
	// GenerateWebsite runs prompt -> generation -> parse -> image prompts and stores the result as a
	// draft owned by the caller.
	GenerateWebsite(ctx context.Context, params site.GenerateParams) (*site.Draft, error)
	// BuildContent is GenerateWebsite without persistence.
	BuildContent(ctx context.Context, params site.GenerateParams) (site.WebsiteContent, error)
	RewriteText(ctx context.Context, original, instruction, surrounding string) (string, error)
}

type siteService struct {
	log    *logger.Logger
	flows  SiteFlows
	drafts repos.DraftRepo
}

func NewSiteService(log *logger.Logger, f SiteFlows, drafts repos.DraftRepo) SiteService {
	return &siteService{
		log:    log.With("service", "SiteService"),
		flows:  f,
		drafts: drafts,
	}
}

func (s *siteService) GenerateWebsite(ctx context.Context, params site.GenerateParams) (*site.Draft, error) {
	owner := ctxutil.UserID(ctx)
	if owner == "" {
		return nil, apierr.Unauthorized(errors.New("not signed in"))
	}
	wc, err := s.BuildContent(ctx, params)
	if err != nil {
		return nil, err
	}

	d := &site.Draft{OwnerID: owner, Prompt: strings.TrimSpace(params.Prompt)}
	d.SetSectionKinds(params.Sections)
	if err := d.SetWebsiteContent(wc); err != nil {
		return nil, err
	}
	if err := s.drafts.Create(dbctx.Context{Ctx: ctx}, d); err != nil {
		return nil, fmt.Errorf("store draft: %w", err)
	}
	s.log.Info("site generated", "owner_id", owner, "draft_id", d.ID.String(), "sections", len(wc.Sections))
	return d, nil
}

func (s *siteService) BuildContent(ctx context.Context, params site.GenerateParams) (site.WebsiteContent, error) {
	prompt := strings.TrimSpace(params.Prompt)
	if prompt == "" {
		return site.WebsiteContent{}, apierr.FieldError("prompt", "Please enter a prompt or upload a file.")
	}
	if len(params.Sections) == 0 {
		return site.WebsiteContent{}, apierr.FieldError("sections", "Select at least one section.")
	}
	for _, k := range params.Sections {
		if !site.IsSectionKind(k) {
			return site.WebsiteContent{}, apierr.FieldError("sections", fmt.Sprintf("Unknown section %q.", k))
		}
	}

	gen, err := s.flows.GenerateWebsiteContent(ctx, flows.GenerateInput{
		Prompt: flows.ComposeSitePrompt(prompt, params.Sections),
	})
	if err != nil {
		return site.WebsiteContent{}, s.upstream(ctx, "generation_failed", msgGenerateFailed, err)
	}
	// Only the markdown body feeds the page; the whole-site hints are kept for diagnostics.
	s.log.Debug("generation hints", "image_prompt", gen.ImagePrompt, "layout_suggestion", gen.LayoutSuggestion)

	blocks := parser.DropEmpty(parser.Parse(gen.WebsiteContent))
	if len(blocks) == 0 {
		return site.WebsiteContent{}, apierr.Upstream("unparsable_content", errors.New(msgUnparsable))
	}

	prompts, err := s.flows.SuggestImagePrompts(ctx, parser.ExcerptsByTitle(blocks))
	if err != nil {
		return site.WebsiteContent{}, s.upstream(ctx, "generation_failed", msgGenerateFailed, err)
	}

	return site.WebsiteContent{
		Sections: parser.Assemble(blocks, prompts),
		Parallax: params.Parallax,
	}, nil
}

func (s *siteService) RewriteText(ctx context.Context, original, instruction, surrounding string) (string, error) {
	if strings.TrimSpace(original) == "" {
		return "", apierr.FieldError("selected_text", "Select some text to rewrite.")
	}
	if strings.TrimSpace(instruction) == "" {
		return "", apierr.FieldError("instruction", "Enter an instruction.")
	}
	out, err := s.flows.InlineEdit(ctx, flows.InlineEditInput{
		SelectedText: original,
		Instruction:  instruction,
		Context:      surrounding,
	})
	if err != nil {
		return "", s.upstream(ctx, "rewrite_failed", msgRewriteFailed, err)
	}
	return out.EditedText, nil
}

// upstream converts an external-service failure into a 502 carrying the provider's message when it
// reported one. Caller cancellation passes through untouched.
func (s *siteService) upstream(ctx context.Context, code, fallback string, err error) error {
	if ctx.Err() != nil {
		return err
	}
	msg := engine.UpstreamMessage(err)
	if msg == "" {
		msg = fallback
	}
	s.log.Warn("upstream call failed", "code", code, "error", err.Error())
	return apierr.Upstream(code, apierr.WithMessage(msg, err))
}
