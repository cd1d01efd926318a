package services

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pagehub-backend/internal/content/render"
	"github.com/yungbote/pagehub-backend/internal/data/repos"
	"github.com/yungbote/pagehub-backend/internal/data/repos/testutil"
	"github.com/yungbote/pagehub-backend/internal/domain/site"
	"github.com/yungbote/pagehub-backend/internal/platform/localfs"
)

func TestPublishService_Publish(t *testing.T) {
	gdb := testutil.DB(t)
	root := t.TempDir()
	store, err := localfs.New(root, "https://pages.example.com/")
	require.NoError(t, err)
	svc := NewPublishService(testutil.Logger(t), repos.NewDraftRepo(gdb, testutil.Logger(t)), render.New(), store)

	ctx := userCtx("alice")
	d := testutil.SeedDraft(t, ctx, gdb, "alice",
		site.Section{ID: "hero-0", Type: "hero", Title: "Acme", Content: "Fresh **bread**<script>alert(1)</script>", ImagePrompt: "bread"},
	)

	published, err := svc.Publish(ctx, d.ID.String(), " WWW.Acme.Example. ")
	require.NoError(t, err)
	key := "sites/" + d.ID.String() + "/index.html"
	assert.Equal(t, "https://pages.example.com/"+key, published.PublishedURL)
	assert.Equal(t, "www.acme.example", published.CustomDomain)
	require.NotNil(t, published.PublishedAt)

	page, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	html := string(page)
	assert.Contains(t, html, `<section id="hero-0"`)
	assert.Contains(t, html, "<strong>bread</strong>")
	assert.Contains(t, html, `<link rel="canonical" href="https://www.acme.example/">`)
	assert.NotContains(t, html, "<script>")

	// a later publish without a domain keeps the recorded one
	again, err := svc.Publish(ctx, d.ID.String(), "")
	require.NoError(t, err)
	assert.Equal(t, "www.acme.example", again.CustomDomain)
}

func TestPublishService_Render(t *testing.T) {
	gdb := testutil.DB(t)
	store, err := localfs.New(t.TempDir(), "")
	require.NoError(t, err)
	svc := NewPublishService(testutil.Logger(t), repos.NewDraftRepo(gdb, testutil.Logger(t)), render.New(), store)
	d := testutil.SeedDraft(t, userCtx("alice"), gdb, "alice")

	page, err := svc.Render(userCtx("alice"), d.ID.String())
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h2>Hero</h2>")

	_, err = svc.Render(userCtx("bob"), d.ID.String())
	requireAPIError(t, err, http.StatusNotFound, "draft_not_found")
}

func TestNormalizeDomain(t *testing.T) {
	for in, want := range map[string]string{
		"":                 "",
		"example.com":      "example.com",
		" Shop.Example.IO": "shop.example.io",
		"a-b.example.com.": "a-b.example.com",
	} {
		got, err := NormalizeDomain(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"localhost", "http://example.com", "-bad.example.com", "exa mple.com", "example.com/path"} {
		_, err := NormalizeDomain(in)
		requireAPIError(t, err, http.StatusUnprocessableEntity, "invalid_domain")
	}
}
