package oaihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/pagehub-backend/internal/ai/engine"
	"github.com/yungbote/pagehub-backend/internal/config"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, v any) *http.Response {
	b, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func completion(text string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": text}},
		},
	}
}

func testConfig() config.EngineConfig {
	return config.EngineConfig{
		Type:                "oai_http",
		BaseURL:             "http://upstream",
		APIKey:              "k",
		ChatCompletionsPath: "/v1/chat/completions",
		Timeout:             config.Duration{Duration: 2 * time.Second},
		MaxRetries:          2,
		JSONSchema: config.JSONSchemaConfig{
			Mode:           "auto",
			MaxRetries:     2,
			MaxPromptBytes: 4096,
		},
	}
}

func TestGenerateText_Plain(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/v1/chat/completions" {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			if got := req.Header.Get("Authorization"); got != "Bearer k" {
				t.Fatalf("authorization=%q", got)
			}
			var in chatCompletionRequest
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				t.Fatalf("decode req: %v", err)
			}
			if in.Model != "m" || len(in.Messages) != 2 {
				t.Fatalf("unexpected request: %+v", in)
			}
			if in.GuidedJSON != nil || in.ResponseFormat != nil {
				t.Fatalf("unexpected schema fields on plain request")
			}
			return jsonResponse(http.StatusOK, completion("hello")), nil
		}),
	}

	e, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	out, err := e.GenerateText(context.Background(), "m", []engine.Message{
		{Role: "system", Content: "be nice"},
		{Role: "user", Content: "hi"},
		{Role: "user", Content: "   "},
	}, engine.GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out != "hello" {
		t.Fatalf("out=%q", out)
	}
}

func TestGenerateText_JSONSchemaAutoReasks(t *testing.T) {
	var calls int32
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			n := atomic.AddInt32(&calls, 1)

			var payload map[string]any
			if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
				t.Fatalf("decode req: %v", err)
			}
			msgs, _ := payload["messages"].([]any)

			if n == 1 {
				if _, ok := payload["guided_json"]; !ok {
					t.Fatalf("expected guided_json on first attempt")
				}
				if len(msgs) != 1 {
					t.Fatalf("expected 1 message on first attempt, got %d", len(msgs))
				}
				return jsonResponse(http.StatusOK, completion("not json")), nil
			}

			if _, ok := payload["guided_json"]; ok {
				t.Fatalf("did not expect guided_json on re-ask")
			}
			if len(msgs) != 2 {
				t.Fatalf("expected schema system prompt on re-ask, got %d messages", len(msgs))
			}
			last, _ := msgs[1].(map[string]any)
			if !strings.Contains(last["content"].(string), "Schema name: inline_edit") {
				t.Fatalf("schema prompt missing name: %v", last["content"])
			}
			return jsonResponse(http.StatusOK, completion("```json\n{\"editedText\":\"ok\"}\n```")), nil
		}),
	}

	e, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	out, err := e.GenerateText(context.Background(), "m", []engine.Message{{Role: "user", Content: "x"}}, engine.GenerateOptions{
		JSONSchema: &engine.JSONSchema{
			Name:   "inline_edit",
			Schema: map[string]any{"type": "object"},
			Strict: true,
		},
	})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out != `{"editedText":"ok"}` {
		t.Fatalf("out=%q", out)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls=%d", calls)
	}
}

func TestGenerateText_RetriesRetryableStatus(t *testing.T) {
	var calls int32
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				return jsonResponse(http.StatusServiceUnavailable, map[string]any{"error": "busy"}), nil
			}
			return jsonResponse(http.StatusOK, completion("done")), nil
		}),
	}

	e, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	out, err := e.GenerateText(context.Background(), "m", []engine.Message{{Role: "user", Content: "x"}}, engine.GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out != "done" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("out=%q calls=%d", out, calls)
	}
}

func TestGenerateText_NonRetryableStatus(t *testing.T) {
	var calls int32
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			atomic.AddInt32(&calls, 1)
			return jsonResponse(http.StatusBadRequest, map[string]any{"error": map[string]any{"message": "bad model"}}), nil
		}),
	}

	e, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	_, err = e.GenerateText(context.Background(), "m", []engine.Message{{Role: "user", Content: "x"}}, engine.GenerateOptions{})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected HTTPError 400, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls=%d", calls)
	}
}

func TestGenerateText_NoMessages(t *testing.T) {
	e, err := NewWithHTTPClient(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	if _, err := e.GenerateText(context.Background(), "m", nil, engine.GenerateOptions{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSanitizeJSONText(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```{\"a\":1}```":         `{"a":1}`,
	}
	for in, want := range cases {
		if got := sanitizeJSONText(in); got != want {
			t.Fatalf("sanitizeJSONText(%q)=%q want %q", in, got, want)
		}
	}
}
