package flows

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yungbote/pagehub-backend/internal/ai/engine"
)

const SchemaImagePrompts = "image_prompts"

const imagePromptsSystemPrompt = "You are an art director. For each website section below, suggest one short description of an image that would suit it. Answer with one entry per section title, using the titles exactly as given."

var imagePromptsSchema = objectSchema(
	[]string{"prompts"},
	map[string]any{
		"prompts": map[string]any{
			"type": "array",
			"items": objectSchema(
				[]string{"title", "prompt"},
				map[string]any{"title": stringProp, "prompt": stringProp},
			),
		},
	},
)

type imagePromptsOutput struct {
	Prompts []struct {
		Title  string `json:"title"`
		Prompt string `json:"prompt"`
	} `json:"prompts"`
}

// SuggestImagePrompts asks for one image description per section title in a single request.
// Titles the model invents are dropped; titles it omits are absent from the result.
func (f *Flows) SuggestImagePrompts(ctx context.Context, contentByTitle map[string]string) (map[string]string, error) {
	if len(contentByTitle) == 0 {
		return map[string]string{}, nil
	}
	payload, err := json.Marshal(contentByTitle)
	if err != nil {
		return nil, err
	}
	messages := []engine.Message{
		{Role: "system", Content: imagePromptsSystemPrompt},
		{Role: "user", Content: "Website sections (title -> content):\n" + string(payload)},
	}

	var out imagePromptsOutput
	if err := f.run(ctx, SchemaImagePrompts, messages, imagePromptsSchema, &out); err != nil {
		return nil, err
	}

	res := make(map[string]string, len(out.Prompts))
	for _, p := range out.Prompts {
		if _, ok := contentByTitle[p.Title]; !ok {
			continue
		}
		if prompt := strings.TrimSpace(p.Prompt); prompt != "" {
			res[p.Title] = prompt
		}
	}
	return res, nil
}
