package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/pagehub-backend/internal/ai/engine"
	"github.com/yungbote/pagehub-backend/internal/observability"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

// Generator is the subset of provider.Provider the flows need.
type Generator interface {
	Generate(ctx context.Context, messages []engine.Message, schema *engine.JSONSchema) (string, error)
}

// ErrMalformedOutput means the model answered but not in the requested shape.
var ErrMalformedOutput = errors.New("malformed model output")

// Flows are the typed request/response contracts over the text generation engine.
type Flows struct {
	gen    Generator
	log    *logger.Logger
	tracer trace.Tracer
}

func New(gen Generator, log *logger.Logger) *Flows {
	if log == nil {
		log = logger.NewNop()
	}
	return &Flows{
		gen:    gen,
		log:    log.With("service", "AIFlows"),
		tracer: otel.Tracer("pagehub/ai/flows"),
	}
}

// run executes one structured call and decodes the JSON answer into out.
func (f *Flows) run(ctx context.Context, name string, messages []engine.Message, schema map[string]any, out any) (err error) {
	ctx, span := f.tracer.Start(ctx, "flow."+name, trace.WithAttributes(attribute.String("flow.schema", name)))
	defer span.End()
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		observability.Current().ObserveFlow(name, status, time.Since(start))
	}()

	text, err := f.gen.Generate(ctx, messages, &engine.JSONSchema{Name: name, Schema: schema, Strict: true})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		f.log.Warn("flow output not decodable", "flow", name, "error", err.Error())
		return fmt.Errorf("%s: %w: %v", name, ErrMalformedOutput, err)
	}
	return nil
}

func objectSchema(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

var stringProp = map[string]any{"type": "string"}
