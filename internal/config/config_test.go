package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, "ollama", cfg.GetLLM().Provider)

	ollama := cfg.GetOllama()
	assert.Equal(t, "http://localhost:11434", ollama.BaseURL)
	assert.Equal(t, "llama3.2", ollama.Model)
	assert.InDelta(t, 0.1, ollama.Temperature, 1e-9)
	assert.Equal(t, 512, ollama.NumPredict)
	assert.Equal(t, 2000, ollama.MaxBodySize)

	timeout, err := cfg.GetDuration("llm.timeout")
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, timeout)

	triage := cfg.GetTriage()
	assert.Empty(t, triage.AllowedTags)
	assert.True(t, triage.FallbackOnError)
	assert.Equal(t, 4, triage.BatchConcurrency)

	server := cfg.GetServer()
	assert.Equal(t, "smtp", server.FilterType)
	assert.Equal(t, "X-Triage-Tags", server.Headers.Tags)
	assert.Equal(t, "X-Triage-Sender-Category", server.Headers.Category)
	assert.False(t, server.RelayEnabled)

	assert.Equal(t, "static", cfg.GetContacts().Provider)
	assert.Equal(t, "memory", cfg.GetCache().Type)
}

func TestOverrides(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())
	cfg.Set("llm.provider", "openai")
	cfg.Set("contacts.addresses", []string{"jane@example.com"})
	cfg.Set("cache.redis_db", 3)

	assert.Equal(t, "openai", cfg.GetLLM().Provider)
	assert.Equal(t, []string{"jane@example.com"}, cfg.GetContacts().Addresses)
	assert.Equal(t, 3, cfg.GetCache().RedisDB)
}

func TestGetDurationInvalid(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())
	cfg.Set("cache.ttl", "forever")

	_, err := cfg.GetDuration("cache.ttl")
	assert.ErrorContains(t, err, "cache.ttl")
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage.yaml")
	content := "llm:\n  provider: openai\ntriage:\n  allowed_tags: [urgent, general]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.GetLLM().Provider)
	assert.Equal(t, []string{"urgent", "general"}, cfg.GetTriage().AllowedTags)
	assert.Equal(t, "X-Triage-Tags", cfg.GetServer().Headers.Tags)

	_, err = NewFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
