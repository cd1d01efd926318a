package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_HeroThenHeaders(t *testing.T) {
	got := Parse("Welcome\n\n# Features\nFast and easy.\n# Footer\nContact us.")

	require.Equal(t, []Block{
		{Title: "Hero", Type: "hero", Content: "Welcome"},
		{Title: "Features", Type: "features", Content: "Fast and easy."},
		{Title: "Footer", Type: "footer", Content: "Contact us."},
	}, got)
}

func TestParse_OneBlockPerHeaderInOrder(t *testing.T) {
	raw := strings.Join([]string{
		"## Header",
		"PageHub",
		"",
		"### Call to Action",
		"Sign up today.",
		"  More text.  ",
		"# Footer",
		"(c) 2024",
		"",
	}, "\n")

	got := Parse(raw)
	require.Len(t, got, 3)
	assert.Equal(t, Block{Title: "Header", Type: "header", Content: "PageHub"}, got[0])
	assert.Equal(t, Block{Title: "Call to Action", Type: "call-to-action", Content: "Sign up today.\n  More text."}, got[1])
	assert.Equal(t, Block{Title: "Footer", Type: "footer", Content: "(c) 2024"}, got[2])
}

func TestParse_NoHeaders(t *testing.T) {
	raw := "\n  Just some copy.\nSecond line.\n\n"
	got := Parse(raw)

	require.Len(t, got, 1)
	assert.Equal(t, "hero", got[0].Type)
	assert.Equal(t, strings.TrimSpace(raw), got[0].Content)
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("   \n\t\n"))
}

func TestParse_TrailingEmptySectionDropped(t *testing.T) {
	got := Parse("# Features\nFast.\n# Footer\n\n")

	require.Len(t, got, 1)
	assert.Equal(t, "features", got[0].Type)
}

func TestParse_SingleEmptySectionKept(t *testing.T) {
	got := Parse("# Features")

	require.Equal(t, []Block{{Title: "Features", Type: "features", Content: ""}}, got)
}

func TestParse_IntermediateEmptySectionKept(t *testing.T) {
	got := Parse("# Header\n# Features\nFast.")

	require.Len(t, got, 2)
	assert.Equal(t, "", got[0].Content)
	assert.Equal(t, "Fast.", got[1].Content)
}

func TestParse_HeaderDetectionIsLexical(t *testing.T) {
	raw := "# Code\n```sh\n# not really a heading\necho hi\n```"
	got := Parse(raw)

	require.Len(t, got, 2)
	assert.Equal(t, "not really a heading", got[1].Title)
	assert.Equal(t, "not-really-a-heading", got[1].Type)
}

func TestParse_IndentedHeaderAndCRLF(t *testing.T) {
	got := Parse("   ##   Our   Team \r\nAlice\r\nBob\r\n")

	require.Len(t, got, 1)
	assert.Equal(t, "Our   Team", got[0].Title)
	assert.Equal(t, "our-team", got[0].Type)
	assert.Equal(t, "Alice\nBob", got[0].Content)
}

func TestParse_DuplicateTypesAllowed(t *testing.T) {
	got := Parse("# Features\nA\n# features\nB")

	require.Len(t, got, 2)
	assert.Equal(t, got[0].Type, got[1].Type)
}

func TestParse_ReparseIsIdempotent(t *testing.T) {
	raw := "Intro copy\n# Features\nFast.\n\nReliable.\n# Testimonials\n\"Great\" - Ann\n"
	for _, b := range Parse(raw) {
		again := Parse("# " + b.Title + "\n" + b.Content)
		require.Len(t, again, 1)
		assert.Equal(t, b.Title, again[0].Title)
		assert.Equal(t, b.Content, again[0].Content)
	}
}

func TestTypeFromTitle(t *testing.T) {
	cases := map[string]string{
		"Hero":              "hero",
		"Call To  Action":   "call-to-action",
		"\tMeet\tthe Team ": "meet-the-team",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, TypeFromTitle(in), "title %q", in)
	}
}
