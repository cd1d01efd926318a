package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_PositionalIDsAndFallbackPrompts(t *testing.T) {
	blocks := []Block{
		{Title: "Hero", Type: "hero", Content: "Welcome"},
		{Title: "Features", Type: "features", Content: "Fast"},
		{Title: "More Features", Type: "features", Content: "Faster"},
	}
	got := Assemble(blocks, map[string]string{
		"Hero":     "a sunrise over mountains",
		"Features": "  ",
	})

	require.Len(t, got, 3)
	assert.Equal(t, "hero-0", got[0].ID)
	assert.Equal(t, "features-1", got[1].ID)
	assert.Equal(t, "features-2", got[2].ID)
	assert.Equal(t, "a sunrise over mountains", got[0].ImagePrompt)
	assert.Equal(t, "abstract design for Features", got[1].ImagePrompt)
	assert.Equal(t, "abstract design for More Features", got[2].ImagePrompt)
}

func TestExcerptsByTitle(t *testing.T) {
	got := ExcerptsByTitle([]Block{
		{Title: "Hero", Content: "a"},
		{Title: "Footer", Content: "b"},
	})
	assert.Equal(t, map[string]string{"Hero": "a", "Footer": "b"}, got)
}

func TestDropEmpty(t *testing.T) {
	assert.Equal(t,
		[]Block{{Title: "B", Content: "x"}},
		DropEmpty([]Block{{Title: "A"}, {Title: "B", Content: "x"}}),
	)
	assert.Equal(t,
		[]Block{{Title: "A"}},
		DropEmpty([]Block{{Title: "A"}, {Title: "B"}}),
	)
	assert.Empty(t, DropEmpty(nil))
}
