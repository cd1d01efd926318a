package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/pagehub-backend/internal/ai/engine"
	"github.com/yungbote/pagehub-backend/internal/config"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

// Engine generates text with the Gemini API.
type Engine struct {
	log    *logger.Logger
	client *genai.Client
}

func New(ctx context.Context, cfg config.EngineConfig, log *logger.Logger) (*Engine, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key required")
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions.BaseURL = base
	}
	return newWithClientConfig(ctx, cc, log)
}

func newWithClientConfig(ctx context.Context, cc *genai.ClientConfig, log *logger.Logger) (*Engine, error) {
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{log: log.With("service", "GeminiEngine"), client: client}, nil
}

func (e *Engine) Name() string { return "gemini" }

func (e *Engine) GenerateText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	var contents []*genai.Content
	for _, m := range messages {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		switch m.Role {
		case "user":
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		case "assistant", "model":
			contents = append(contents, genai.NewContentFromText(text, genai.RoleModel))
		}
	}
	if len(contents) == 0 {
		return "", errors.New("no messages")
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if sys := engine.SystemPrompt(messages); sys != "" {
		cfg.SystemInstruction = genai.NewContentFromText(sys, genai.RoleUser)
	}
	if opts.JSONSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		if opts.JSONSchema.Schema != nil {
			cfg.ResponseJsonSchema = opts.JSONSchema.Schema
		}
	}

	result, err := e.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "", &engine.UpstreamError{Message: apiErr.Message, Err: err}
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty upstream completion")
	}
	e.log.Debug("gemini generation complete", "model", model, "chars", len(text))
	return text, nil
}
