package flows

import (
	"context"
	"fmt"

	"github.com/yungbote/pagehub-backend/internal/ai/engine"
)

const SchemaInlineEdit = "inline_edit"

const inlineEditSystemPrompt = "You are an AI text editor. You will rewrite or enhance the selected text based on the user's instruction and the surrounding context."

var inlineEditSchema = objectSchema([]string{"editedText"}, map[string]any{"editedText": stringProp})

type InlineEditInput struct {
	SelectedText string
	Instruction  string
	Context      string
}

type InlineEditOutput struct {
	EditedText string `json:"editedText"`
}

func (f *Flows) InlineEdit(ctx context.Context, in InlineEditInput) (InlineEditOutput, error) {
	user := fmt.Sprintf("Context: %s\n\nInstruction: %s\n\nSelected text: %s\n\nEdited text:",
		in.Context, in.Instruction, in.SelectedText)
	messages := []engine.Message{
		{Role: "system", Content: inlineEditSystemPrompt},
		{Role: "user", Content: user},
	}

	// The edited text is applied verbatim; an empty string deletes the selection.
	var raw struct {
		EditedText *string `json:"editedText"`
	}
	if err := f.run(ctx, SchemaInlineEdit, messages, inlineEditSchema, &raw); err != nil {
		return InlineEditOutput{}, err
	}
	if raw.EditedText == nil {
		return InlineEditOutput{}, fmt.Errorf("%s: %w: missing editedText", SchemaInlineEdit, ErrMalformedOutput)
	}
	return InlineEditOutput{EditedText: *raw.EditedText}, nil
}
