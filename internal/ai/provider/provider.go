package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/pagehub-backend/internal/ai/engine"
	"github.com/yungbote/pagehub-backend/internal/ai/engine/gemini"
	"github.com/yungbote/pagehub-backend/internal/ai/engine/mock"
	"github.com/yungbote/pagehub-backend/internal/ai/engine/oaihttp"
	"github.com/yungbote/pagehub-backend/internal/config"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

// Provider binds an engine to the model and sampling settings used by every flow.
type Provider struct {
	Engine      engine.Engine
	Model       string
	Temperature float64
}

func New(ctx context.Context, cfg config.AIConfig, log *logger.Logger) (*Provider, error) {
	var eng engine.Engine
	switch strings.ToLower(strings.TrimSpace(cfg.Engine.Type)) {
	case "", "mock":
		eng = mock.New()
	case "openai_http", "oai_http":
		e, err := oaihttp.New(cfg.Engine, log)
		if err != nil {
			return nil, err
		}
		eng = e
	case "gemini":
		e, err := gemini.New(ctx, cfg.Engine, log)
		if err != nil {
			return nil, err
		}
		eng = e
	default:
		return nil, fmt.Errorf("unsupported engine type %q", cfg.Engine.Type)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("model required for engine %q", eng.Name())
	}
	return &Provider{Engine: eng, Model: model, Temperature: cfg.Temperature}, nil
}

// Generate runs one completion with the provider's model and temperature.
func (p *Provider) Generate(ctx context.Context, messages []engine.Message, schema *engine.JSONSchema) (string, error) {
	return p.Engine.GenerateText(ctx, p.Model, messages, engine.GenerateOptions{
		Temperature: p.Temperature,
		JSONSchema:  schema,
	})
}
