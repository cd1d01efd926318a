package edit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/yungbote/pagehub-backend/internal/domain/site"
	"github.com/yungbote/pagehub-backend/internal/observability"
	"github.com/yungbote/pagehub-backend/internal/platform/kv"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

var (
	ErrNoSelection      = errors.New("no active selection")
	ErrRewriteInFlight  = errors.New("a rewrite is already in flight")
	ErrSectionNotFound  = errors.New("section not found")
	ErrTextNotFound     = errors.New("selected text not found in section")
	ErrEmptyInstruction = errors.New("instruction is required")
)

// Rewriter returns a revised version of selected under instruction. surrounding is the full owning section.
type Rewriter interface {
	Rewrite(ctx context.Context, selected, instruction, surrounding string) (string, error)
}

// Document is the draft a session edits. Replace stores a whole new WebsiteContent.
type Document interface {
	Content(ctx context.Context) (site.WebsiteContent, error)
	Replace(ctx context.Context, wc site.WebsiteContent) error
}

// Key identifies one preview session: one user editing one draft.
type Key struct {
	OwnerID string
	DraftID string
}

func (k Key) sessionKey() string { return "edit:session:" + k.OwnerID + ":" + k.DraftID }
func (k Key) lockKey() string    { return "edit:lock:" + k.OwnerID + ":" + k.DraftID }

// Snapshot is the observable state of a session.
type Snapshot struct {
	State     site.EditState       `json:"state"`
	Selection *site.SelectionState `json:"selection,omitempty"`
}

type Options struct {
	SelectionTTL      time.Duration
	MinSelectionChars int
	RewriteTimeout    time.Duration
}

// Coordinator runs the Idle -> Selecting -> Rewriting -> Idle cycle with session state kept in a kv.Store,
// so any replica can serve any step.
type Coordinator struct {
	store    kv.Store
	rewriter Rewriter
	opts     Options
	log      *logger.Logger
	now      func() time.Time
}

func NewCoordinator(store kv.Store, rewriter Rewriter, opts Options, log *logger.Logger) *Coordinator {
	if opts.SelectionTTL <= 0 {
		opts.SelectionTTL = 30 * time.Minute
	}
	if opts.MinSelectionChars <= 0 {
		opts.MinSelectionChars = 5
	}
	if opts.RewriteTimeout <= 0 {
		opts.RewriteTimeout = 2 * time.Minute
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Coordinator{
		store:    store,
		rewriter: rewriter,
		opts:     opts,
		log:      log.With("service", "EditCoordinator"),
		now:      time.Now,
	}
}

func (c *Coordinator) State(ctx context.Context, key Key) (Snapshot, error) {
	sel, err := c.loadSelection(ctx, key)
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := c.store.Get(ctx, key.lockKey()); err == nil {
		return Snapshot{State: site.EditRewriting, Selection: sel}, nil
	} else if !errors.Is(err, kv.ErrNotFound) {
		return Snapshot{}, err
	}
	if sel == nil {
		return Snapshot{State: site.EditIdle}, nil
	}
	return Snapshot{State: site.EditSelecting, Selection: sel}, nil
}

// Select captures a selection. Selections at or under the minimum length leave the session Idle.
func (c *Coordinator) Select(ctx context.Context, key Key, wc site.WebsiteContent, sel site.SelectionState) (Snapshot, error) {
	busy, err := c.rewriting(ctx, key)
	if err != nil {
		return Snapshot{}, err
	}
	if busy {
		return Snapshot{}, ErrRewriteInFlight
	}
	sel.Text = strings.TrimSpace(sel.Text)
	if selectionLength(sel.Text) <= c.opts.MinSelectionChars {
		if err := c.store.Delete(ctx, key.sessionKey()); err != nil {
			return Snapshot{}, err
		}
		return Snapshot{State: site.EditIdle}, nil
	}

	i := wc.SectionByID(sel.SectionID)
	if i < 0 {
		return Snapshot{}, ErrSectionNotFound
	}
	if !strings.Contains(wc.Sections[i].Content, sel.Text) {
		return Snapshot{}, ErrTextNotFound
	}

	sel.CreatedAt = c.now().UTC()
	raw, err := json.Marshal(sel)
	if err != nil {
		return Snapshot{}, err
	}
	if err := c.store.Set(ctx, key.sessionKey(), raw, c.opts.SelectionTTL); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{State: site.EditSelecting, Selection: &sel}, nil
}

// Dismiss returns the session to Idle. An in-flight rewrite still runs to completion.
func (c *Coordinator) Dismiss(ctx context.Context, key Key) error {
	return c.store.Delete(ctx, key.sessionKey())
}

// Confirm rewrites the selected text and commits the new content through doc. At most one rewrite per
// session is in flight; the session is Idle afterwards whatever the outcome.
func (c *Coordinator) Confirm(ctx context.Context, key Key, doc Document, instruction string) (site.WebsiteContent, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return site.WebsiteContent{}, ErrEmptyInstruction
	}
	sel, err := c.loadSelection(ctx, key)
	if err != nil {
		return site.WebsiteContent{}, err
	}
	if sel == nil {
		return site.WebsiteContent{}, ErrNoSelection
	}

	claimed, err := c.store.SetNX(ctx, key.lockKey(), []byte(c.now().UTC().Format(time.RFC3339Nano)), c.opts.RewriteTimeout+10*time.Second)
	if err != nil {
		return site.WebsiteContent{}, err
	}
	if !claimed {
		return site.WebsiteContent{}, ErrRewriteInFlight
	}
	defer c.reset(ctx, key)

	rctx, cancel := context.WithTimeout(ctx, c.opts.RewriteTimeout)
	defer cancel()

	wc, err := doc.Content(rctx)
	if err != nil {
		return site.WebsiteContent{}, err
	}
	i := wc.SectionByID(sel.SectionID)
	if i < 0 {
		return site.WebsiteContent{}, ErrSectionNotFound
	}
	owning := wc.Sections[i]
	if !strings.Contains(owning.Content, sel.Text) {
		return site.WebsiteContent{}, ErrTextNotFound
	}

	edited, err := c.rewriter.Rewrite(rctx, sel.Text, instruction, owning.Content)
	if err != nil {
		c.log.Warn("rewrite failed", "draft_id", key.DraftID, "section", sel.SectionID, "error", err.Error())
		observability.Current().IncEditOutcome("failed")
		return site.WebsiteContent{}, err
	}

	updated, err := ApplyRewrite(wc, sel.SectionID, sel.Text, edited)
	if err != nil {
		return site.WebsiteContent{}, err
	}
	if err := doc.Replace(rctx, updated); err != nil {
		return site.WebsiteContent{}, err
	}
	c.log.Debug("rewrite applied", "draft_id", key.DraftID, "section", sel.SectionID)
	observability.Current().IncEditOutcome("applied")
	return updated, nil
}

// reset clears the selection and the in-flight claim even when ctx is already canceled.
func (c *Coordinator) reset(ctx context.Context, key Key) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := c.store.Delete(cctx, key.sessionKey(), key.lockKey()); err != nil {
		c.log.Warn("edit session reset failed", "draft_id", key.DraftID, "error", err.Error())
	}
}

func (c *Coordinator) rewriting(ctx context.Context, key Key) (bool, error) {
	_, err := c.store.Get(ctx, key.lockKey())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, kv.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// selectionLength counts UTF-16 code units, the unit browsers report for a text selection.
func selectionLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func (c *Coordinator) loadSelection(ctx context.Context, key Key) (*site.SelectionState, error) {
	raw, err := c.store.Get(ctx, key.sessionKey())
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sel site.SelectionState
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, fmt.Errorf("decode edit session: %w", err)
	}
	return &sel, nil
}

// ApplyRewrite replaces the first literal occurrence of original in the section's content with edited.
// The result has a new sections slice in which only that section differs.
func ApplyRewrite(wc site.WebsiteContent, sectionID, original, edited string) (site.WebsiteContent, error) {
	i := wc.SectionByID(sectionID)
	if i < 0 {
		return site.WebsiteContent{}, ErrSectionNotFound
	}
	s := wc.Sections[i]
	if original == "" || !strings.Contains(s.Content, original) {
		return site.WebsiteContent{}, ErrTextNotFound
	}
	s.Content = strings.Replace(s.Content, original, edited, 1)
	return wc.WithSection(i, s), nil
}
