package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/pagehub-backend/internal/ai/engine"
)

const SchemaWebsiteContent = "website_content"

const generateSystemPrompt = "You are an AI website content generator. Generate website content, an image prompt, and a layout suggestion based on the user's prompt."

type GenerateInput struct {
	Prompt string
}

type GenerateOutput struct {
	WebsiteContent   string `json:"websiteContent"`
	ImagePrompt      string `json:"imagePrompt"`
	LayoutSuggestion string `json:"layoutSuggestion"`
}

var websiteContentSchema = objectSchema(
	[]string{"websiteContent", "imagePrompt", "layoutSuggestion"},
	map[string]any{
		"websiteContent":   stringProp,
		"imagePrompt":      stringProp,
		"layoutSuggestion": stringProp,
	},
)

// ComposeSitePrompt builds the full generation prompt from the user's description and section kinds.
func ComposeSitePrompt(description string, kinds []string) string {
	return fmt.Sprintf(
		"Create website content for a company based on the following description: \"%s\". The website should include the following sections: %s. The output should be formatted in markdown, with each section starting with a heading.",
		description, strings.Join(kinds, ", "),
	)
}

func (f *Flows) GenerateWebsiteContent(ctx context.Context, in GenerateInput) (GenerateOutput, error) {
	var out GenerateOutput
	messages := []engine.Message{
		{Role: "system", Content: generateSystemPrompt},
		{Role: "user", Content: "User Prompt: " + in.Prompt + "\n\nContent:"},
	}
	if err := f.run(ctx, SchemaWebsiteContent, messages, websiteContentSchema, &out); err != nil {
		return GenerateOutput{}, err
	}
	return out, nil
}
