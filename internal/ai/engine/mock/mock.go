package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/pagehub-backend/internal/ai/engine"
)

// Schema names understood by the mock. They match the names the flows request.
const (
	SchemaWebsiteContent = "website_content"
	SchemaImagePrompts   = "image_prompts"
	SchemaInlineEdit     = "inline_edit"
)

// Engine returns deterministic output derived from the request so that the whole
// generate/edit/publish path works without credentials.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string { return "mock" }

func (e *Engine) GenerateText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_ = model

	user := engine.LastUserMessage(messages)
	if opts.JSONSchema == nil {
		if strings.TrimSpace(user) == "" {
			return "mock: ok", nil
		}
		return fmt.Sprintf("mock: %s", user), nil
	}

	var out any
	switch opts.JSONSchema.Name {
	case SchemaWebsiteContent:
		out = websiteContent(user)
	case SchemaImagePrompts:
		out = imagePrompts(user)
	case SchemaInlineEdit:
		out = inlineEdit(user)
	default:
		out = map[string]any{"ok": true, "schema": opts.JSONSchema.Name}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func websiteContent(user string) map[string]string {
	desc := between(user, `description: "`, `". The website`)
	if desc == "" {
		desc = "your company"
	}
	kinds := strings.Split(between(user, "following sections: ", ". The output"), ",")

	var b strings.Builder
	for _, k := range kinds {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		fmt.Fprintf(&b, "# %s\n%s for %s.\n\n", titleCase(k), titleCase(k), desc)
	}
	if b.Len() == 0 {
		fmt.Fprintf(&b, "Welcome to %s.\n", desc)
	}
	return map[string]string{
		"websiteContent":   b.String(),
		"imagePrompt":      "clean modern illustration for " + desc,
		"layoutSuggestion": "single column, alternating image and text",
	}
}

type imagePrompt struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

func imagePrompts(user string) map[string][]imagePrompt {
	byTitle := map[string]string{}
	if i := strings.IndexByte(user, '{'); i >= 0 {
		_ = json.NewDecoder(strings.NewReader(user[i:])).Decode(&byTitle)
	}
	titles := make([]string, 0, len(byTitle))
	for t := range byTitle {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	prompts := make([]imagePrompt, 0, len(titles))
	for _, t := range titles {
		prompts = append(prompts, imagePrompt{Title: t, Prompt: "photo illustrating " + strings.ToLower(t)})
	}
	return map[string][]imagePrompt{"prompts": prompts}
}

func inlineEdit(user string) map[string]string {
	selected := between(user, "Selected text: ", "\n\nEdited text:")
	return map[string]string{"editedText": strings.ToUpper(selected)}
}

func between(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	s = s[i+len(start):]
	if j := strings.Index(s, end); j >= 0 {
		s = s[:j]
	}
	return strings.TrimSpace(s)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
