package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pagehub-backend/internal/config"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name     string
		cfg      config.AIConfig
		wantName string
		wantErr  bool
	}{
		{name: "mock", cfg: config.AIConfig{Model: "mock-1", Engine: config.EngineConfig{Type: "mock"}}, wantName: "mock"},
		{name: "empty type is mock", cfg: config.AIConfig{Model: "mock-1"}, wantName: "mock"},
		{name: "oai_http", cfg: config.AIConfig{Model: "gpt", Engine: config.EngineConfig{Type: "oai_http", BaseURL: "http://x"}}, wantName: "oai_http"},
		{name: "oai_http without base url", cfg: config.AIConfig{Model: "gpt", Engine: config.EngineConfig{Type: "oai_http"}}, wantErr: true},
		{name: "gemini without key", cfg: config.AIConfig{Model: "g", Engine: config.EngineConfig{Type: "gemini"}}, wantErr: true},
		{name: "unknown", cfg: config.AIConfig{Model: "x", Engine: config.EngineConfig{Type: "llama"}}, wantErr: true},
		{name: "missing model", cfg: config.AIConfig{Engine: config.EngineConfig{Type: "mock"}}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New(context.Background(), tc.cfg, nil)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantName, p.Engine.Name())
			assert.Equal(t, tc.cfg.Model, p.Model)
		})
	}
}
