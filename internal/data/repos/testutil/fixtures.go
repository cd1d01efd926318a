package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/pagehub-backend/internal/domain/site"
)

// SeedDraft inserts a draft for owner whose content is the given sections.
func SeedDraft(tb testing.TB, ctx context.Context, tx *gorm.DB, owner string, sections ...site.Section) *site.Draft {
	tb.Helper()
	if len(sections) == 0 {
		sections = []site.Section{{ID: "hero-0", Type: "hero", Title: "Hero", Content: "Welcome", ImagePrompt: "abstract design for Hero"}}
	}
	d := &site.Draft{OwnerID: owner, Prompt: "seed", Revision: 1}
	kinds := make([]string, 0, len(sections))
	for _, s := range sections {
		kinds = append(kinds, s.Type)
	}
	d.SetSectionKinds(kinds)
	if err := d.SetWebsiteContent(site.WebsiteContent{Sections: sections}); err != nil {
		tb.Fatalf("encode content: %v", err)
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed draft: %v", err)
	}
	return d
}
