package oaihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/pagehub-backend/internal/ai/engine"
	"github.com/yungbote/pagehub-backend/internal/config"
	"github.com/yungbote/pagehub-backend/internal/platform/httpx"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

// Engine talks to any server implementing the OpenAI Chat Completions protocol.
type Engine struct {
	log *logger.Logger

	baseURL string
	apiKey  string

	chatCompletionsPath string

	timeout    time.Duration
	maxRetries int
	backoff    time.Duration

	jsonSchemaMode           string
	jsonSchemaMaxRetries     int
	jsonSchemaMaxPromptBytes int

	httpClient *http.Client
}

func New(cfg config.EngineConfig, log *logger.Logger) (*Engine, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("oai_http: base_url required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	chatPath := strings.TrimSpace(cfg.ChatCompletionsPath)
	if chatPath == "" {
		chatPath = "/v1/chat/completions"
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.JSONSchema.Mode))
	if mode == "" {
		mode = "auto"
	}
	schemaRetries := cfg.JSONSchema.MaxRetries
	if schemaRetries <= 0 {
		schemaRetries = 2
	}
	maxPromptBytes := cfg.JSONSchema.MaxPromptBytes
	if maxPromptBytes <= 0 {
		maxPromptBytes = 64 << 10
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Engine{
		log:                      log.With("service", "OAIHTTPEngine"),
		baseURL:                  baseURL,
		apiKey:                   strings.TrimSpace(cfg.APIKey),
		chatCompletionsPath:      chatPath,
		timeout:                  timeout,
		maxRetries:               maxRetries,
		backoff:                  time.Second,
		jsonSchemaMode:           mode,
		jsonSchemaMaxRetries:     schemaRetries,
		jsonSchemaMaxPromptBytes: maxPromptBytes,
		httpClient:               &http.Client{Transport: tr},
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper
// and disables retry backoff sleeps.
func NewWithHTTPClient(cfg config.EngineConfig, httpClient *http.Client) (*Engine, error) {
	e, err := New(cfg, nil)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		e.httpClient = httpClient
	}
	e.backoff = 0
	return e, nil
}

func (e *Engine) Name() string { return "oai_http" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`

	// Optional OpenAI-compatible extensions supported by vLLM/SGLang variants.
	ResponseFormat map[string]any `json:"response_format,omitempty"`
	GuidedJSON     any            `json:"guided_json,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (e *Engine) GenerateText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	chatMsgs := toChatMessages(messages)
	if len(chatMsgs) == 0 {
		return "", errors.New("no messages")
	}

	strict := opts.JSONSchema != nil && opts.JSONSchema.Strict
	attempts := 1
	if strict {
		attempts = 1 + e.jsonSchemaMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		reqBody := e.buildChatRequest(model, chatMsgs, opts, attempt)

		var resp chatCompletionResponse
		if err := e.doWithRetry(ctx, reqBody, &resp); err != nil {
			// transport failures were already retried; re-asking will not help
			return "", err
		}
		if resp.Error != nil && resp.Error.Message != "" {
			return "", &engine.UpstreamError{Message: resp.Error.Message}
		}

		text := extractChatText(resp)
		if strings.TrimSpace(text) == "" {
			lastErr = errors.New("empty upstream completion")
			continue
		}
		if !strict {
			return text, nil
		}

		clean := sanitizeJSONText(text)
		if err := validateJSON(clean); err != nil {
			lastErr = err
			e.log.Warn("upstream returned invalid JSON, re-asking",
				"schema", opts.JSONSchema.Name,
				"attempt", attempt+1,
				"error", err.Error(),
			)
			continue
		}
		return clean, nil
	}

	if lastErr == nil {
		lastErr = errors.New("generation failed")
	}
	return "", lastErr
}

func (e *Engine) buildChatRequest(model string, messages []chatMessage, opts engine.GenerateOptions, attempt int) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: opts.Temperature,
	}
	if opts.JSONSchema == nil {
		return req
	}

	mode := e.jsonSchemaMode
	if mode == "none" {
		return req
	}
	useGuided := mode == "guided_json" || (mode == "auto" && attempt == 0)
	usePrompt := mode == "prompt" || (mode == "auto" && attempt > 0)

	if useGuided && opts.JSONSchema.Schema != nil {
		req.ResponseFormat = map[string]any{"type": "json_object"}
		req.GuidedJSON = opts.JSONSchema.Schema
	}
	if usePrompt {
		msgs := make([]chatMessage, 0, len(messages)+1)
		msgs = append(msgs, messages...)
		msgs = append(msgs, chatMessage{Role: "system", Content: e.jsonSchemaPrompt(opts.JSONSchema)})
		req.Messages = msgs
	}
	return req
}

func (e *Engine) jsonSchemaPrompt(s *engine.JSONSchema) string {
	var schemaText string
	if s.Schema != nil {
		if b, err := json.Marshal(s.Schema); err == nil && len(b) <= e.jsonSchemaMaxPromptBytes {
			schemaText = string(b)
		}
	}

	var b strings.Builder
	b.WriteString("Return ONLY a valid JSON value that conforms to the provided JSON Schema. Do not include markdown or commentary.\n")
	if name := strings.TrimSpace(s.Name); name != "" {
		b.WriteString("Schema name: ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	if schemaText != "" {
		b.WriteString("Schema:\n")
		b.WriteString(schemaText)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func toChatMessages(messages []engine.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		role := strings.TrimSpace(m.Role)
		content := strings.TrimSpace(m.Content)
		if role == "" || content == "" {
			continue
		}
		out = append(out, chatMessage{Role: role, Content: content})
	}
	return out
}

func extractChatText(resp chatCompletionResponse) string {
	for _, c := range resp.Choices {
		if strings.TrimSpace(c.Message.Content) != "" {
			return c.Message.Content
		}
		if strings.TrimSpace(c.Text) != "" {
			return c.Text
		}
	}
	return ""
}

func sanitizeJSONText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	firstNL := strings.IndexByte(s, '\n')
	if firstNL == -1 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	s = s[firstNL+1:]
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func validateJSON(s string) error {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// ---------------- HTTP helpers ----------------

func (e *Engine) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}
}

func (e *Engine) doWithRetry(ctx context.Context, body any, out any) error {
	backoff := e.backoff
	for attempt := 0; ; attempt++ {
		resp, err := e.doJSON(ctx, body, out)
		if err == nil {
			return nil
		}
		if attempt >= e.maxRetries || !httpx.IsRetryableError(err) || ctx.Err() != nil {
			return err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		if backoff == 0 {
			sleepFor = 0
		}
		e.log.Warn("upstream request retrying",
			"path", e.chatCompletionsPath,
			"attempt", attempt+1,
			"max_retries", e.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}
}

func (e *Engine) doJSON(ctx context.Context, body any, out any) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	ctx2, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx2, http.MethodPost, e.baseURL+e.chatCompletionsPath, &buf)
	if err != nil {
		return nil, err
	}
	e.setHeaders(req)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return resp, nil
	}
	return resp, json.NewDecoder(resp.Body).Decode(out)
}
