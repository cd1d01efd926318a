package engine

import (
	"context"
	"errors"
	"strings"
)

type Message struct {
	Role    string
	Content string
}

type JSONSchema struct {
	Name   string
	Schema map[string]any
	Strict bool
}

type GenerateOptions struct {
	Temperature float64
	JSONSchema  *JSONSchema
}

// Engine is a text generation backend. When opts.JSONSchema is set with Strict, the returned text is
// a single JSON value (no markdown fences).
type Engine interface {
	Name() string
	GenerateText(ctx context.Context, model string, messages []Message, opts GenerateOptions) (string, error)
}

// LastUserMessage returns the content of the last message with role "user".
func LastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

// SystemPrompt joins the contents of all "system" messages.
func SystemPrompt(messages []Message) string {
	var out string
	for _, m := range messages {
		if m.Role != "system" || m.Content == "" {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += m.Content
	}
	return out
}

// UpstreamError carries the human-readable message reported by the model provider.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return "upstream error: " + e.Message + ": " + e.Err.Error()
	}
	return "upstream error: " + e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) UpstreamMessage() string { return e.Message }

// UpstreamMessage returns the provider-reported message carried anywhere in err's chain, or "".
func UpstreamMessage(err error) string {
	var m interface{ UpstreamMessage() string }
	if errors.As(err, &m) {
		return strings.TrimSpace(m.UpstreamMessage())
	}
	return ""
}
