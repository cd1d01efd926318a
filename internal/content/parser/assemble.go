package parser

import (
	"fmt"
	"strings"

	"github.com/yungbote/pagehub-backend/internal/domain/site"
)

// ImagePromptFallback is used for titles the suggestion service did not answer.
func ImagePromptFallback(title string) string {
	return "abstract design for " + title
}

// ExcerptsByTitle is the batched input of the image-prompt suggestion request. When two blocks share
// a title the later one wins, matching a plain object keyed by title.
func ExcerptsByTitle(blocks []Block) map[string]string {
	out := make(map[string]string, len(blocks))
	for _, b := range blocks {
		out[b.Title] = b.Content
	}
	return out
}

// Assemble assigns positional ids ("<type>-<index>") and image prompts.
func Assemble(blocks []Block, imagePrompts map[string]string) []site.Section {
	out := make([]site.Section, 0, len(blocks))
	for i, b := range blocks {
		prompt := strings.TrimSpace(imagePrompts[b.Title])
		if prompt == "" {
			prompt = ImagePromptFallback(b.Title)
		}
		out = append(out, site.Section{
			ID:          fmt.Sprintf("%s-%d", b.Type, i),
			Type:        b.Type,
			Title:       b.Title,
			Content:     b.Content,
			ImagePrompt: prompt,
		})
	}
	return out
}

// DropEmpty removes blocks with empty content unless that would leave nothing.
func DropEmpty(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Content != "" {
			out = append(out, b)
		}
	}
	if len(out) == 0 && len(blocks) > 0 {
		return blocks[:1]
	}
	return out
}
