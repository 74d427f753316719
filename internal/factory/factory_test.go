package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mikey/inbox-triage/internal/adapters/cache"
	"github.com/mikey/inbox-triage/internal/adapters/contacts"
	"github.com/mikey/inbox-triage/internal/adapters/filter"
	"github.com/mikey/inbox-triage/internal/adapters/ollama"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newConfig(overrides map[string]interface{}) *config.Config {
	cfg := config.NewFromViper(config.NewEmptyViper())
	cfg.Set("cache.cleanup_frequency", "0s")
	for k, v := range overrides {
		cfg.Set(k, v)
	}
	return cfg
}

func TestGeneratorFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("ollama", func(t *testing.T) {
		f := NewGeneratorFactory(newConfig(nil), zap.NewNop())
		gen, err := f.CreateGenerator(ctx)
		require.NoError(t, err)
		require.IsType(t, &ollama.Client{}, gen)
		assert.Equal(t, "llama3.2", gen.Name())
		assert.Equal(t, 2000, f.MaxBodySize())
	})

	t.Run("none", func(t *testing.T) {
		f := NewGeneratorFactory(newConfig(map[string]interface{}{"llm.provider": ProviderNone}), zap.NewNop())
		gen, err := f.CreateGenerator(ctx)
		require.NoError(t, err)
		assert.Nil(t, gen)
		assert.Equal(t, 0, f.MaxBodySize())
	})

	t.Run("openai without key", func(t *testing.T) {
		f := NewGeneratorFactory(newConfig(map[string]interface{}{"llm.provider": "openai"}), zap.NewNop())
		gen, err := f.CreateGenerator(ctx)
		assert.Error(t, err)
		assert.Nil(t, gen)
	})

	t.Run("openai", func(t *testing.T) {
		f := NewGeneratorFactory(newConfig(map[string]interface{}{
			"llm.provider":   "openai",
			"openai.api_key": "sk-test",
		}), zap.NewNop())
		gen, err := f.CreateGenerator(ctx)
		require.NoError(t, err)
		assert.NotNil(t, gen)
	})

	t.Run("gemini without key", func(t *testing.T) {
		f := NewGeneratorFactory(newConfig(map[string]interface{}{"llm.provider": "gemini"}), zap.NewNop())
		_, err := f.CreateGenerator(ctx)
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		f := NewGeneratorFactory(newConfig(map[string]interface{}{"llm.provider": "carrier-pigeon"}), zap.NewNop())
		_, err := f.CreateGenerator(ctx)
		assert.EqualError(t, err, "unsupported LLM provider: carrier-pigeon")
	})
}

func TestCacheFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, err := NewCacheFactory(newConfig(nil), zap.NewNop()).CreateCacheRepository(ctx)
		require.NoError(t, err)
		assert.IsType(t, &cache.MemoryCache{}, repo)
	})

	t.Run("disabled", func(t *testing.T) {
		repo, err := NewCacheFactory(newConfig(map[string]interface{}{"cache.enabled": false}), zap.NewNop()).CreateCacheRepository(ctx)
		require.NoError(t, err)
		assert.Nil(t, repo)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "cache.db")
		repo, err := NewCacheFactory(newConfig(map[string]interface{}{
			"cache.type":        "sqlite",
			"cache.sqlite_path": path,
		}), zap.NewNop()).CreateCacheRepository(ctx)
		require.NoError(t, err)
		require.IsType(t, &cache.SQLiteCache{}, repo)
		assert.NoError(t, repo.(*cache.SQLiteCache).Close())
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := NewCacheFactory(newConfig(map[string]interface{}{"cache.type": "tape"}), zap.NewNop()).CreateCacheRepository(ctx)
		assert.EqualError(t, err, "unsupported cache type: tape")
	})

	t.Run("ttl", func(t *testing.T) {
		ttl, err := NewCacheFactory(newConfig(map[string]interface{}{"cache.ttl": "2h"}), zap.NewNop()).GetCacheTTL()
		require.NoError(t, err)
		assert.Equal(t, "2h0m0s", ttl.String())
	})
}

func TestContactsFactory(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		provider string
		want     interface{}
	}{
		{"static", &contacts.StaticDirectory{}},
		{"everyone", contacts.Everyone{}},
		{"none", contacts.NoContacts{}},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			f := NewContactsFactory(newConfig(map[string]interface{}{"contacts.provider": tt.provider}), zap.NewNop())
			lookup, err := f.CreateContactsLookup(ctx)
			require.NoError(t, err)
			assert.IsType(t, tt.want, lookup)

			detector, err := f.CreateSenderDetector(lookup)
			require.NoError(t, err)
			assert.NotNil(t, detector)
		})
	}

	t.Run("static addresses", func(t *testing.T) {
		f := NewContactsFactory(newConfig(map[string]interface{}{
			"contacts.addresses": []string{"Jane@Example.com"},
		}), zap.NewNop())
		lookup, err := f.CreateContactsLookup(ctx)
		require.NoError(t, err)
		ok, err := lookup.IsInContacts(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("google without credentials", func(t *testing.T) {
		f := NewContactsFactory(newConfig(map[string]interface{}{
			"contacts.provider":                "google",
			"contacts.google.credentials_file": filepath.Join(t.TempDir(), "missing.json"),
		}), zap.NewNop())
		_, err := f.CreateContactsLookup(ctx)
		assert.Error(t, err)
	})

	t.Run("unsupported", func(t *testing.T) {
		f := NewContactsFactory(newConfig(map[string]interface{}{"contacts.provider": "rolodex"}), zap.NewNop())
		_, err := f.CreateContactsLookup(ctx)
		assert.Error(t, err)
	})
}

func TestClassifierFactory(t *testing.T) {
	f := NewClassifierFactory(newConfig(nil), zap.NewNop())
	assert.True(t, f.CreateAllowedTags().Contains("personal-sender"))

	custom := NewClassifierFactory(newConfig(map[string]interface{}{
		"triage.allowed_tags": []string{"urgent", "general"},
	}), zap.NewNop())
	allowed := custom.CreateAllowedTags()
	assert.Equal(t, []string{"urgent", "general"}, allowed.Tags())

	withoutGeneral := NewClassifierFactory(newConfig(map[string]interface{}{
		"triage.allowed_tags": []string{"urgent", "meeting"},
	}), zap.NewNop()).CreateAllowedTags()
	assert.Equal(t, []string{"urgent", "meeting", "general"}, withoutGeneral.Tags())

	generative, err := f.CreateGenerative(nil, allowed, 100)
	require.NoError(t, err)
	assert.Nil(t, generative)

	gen := NewOllamaFactory(newConfig(nil), zap.NewNop()).CreateGenerator()
	generative, err = f.CreateGenerative(gen, allowed, 100)
	require.NoError(t, err)
	assert.NotNil(t, generative)

	assert.NotNil(t, f.CreateKeyword(allowed))
	assert.Equal(t, []string{"general"}, f.CreateValidator().Validate(nil, "a@b.com"))
}

func TestCreateTriageService(t *testing.T) {
	cfg := newConfig(map[string]interface{}{"llm.provider": ProviderNone})
	cf := NewClassifierFactory(cfg, zap.NewNop())
	allowed := cf.CreateAllowedTags()

	svc, err := CreateTriageService(cfg, zap.NewNop(), TriageDeps{
		Detector:  mustDetector(t, cfg),
		Keyword:   cf.CreateKeyword(allowed),
		Validator: cf.CreateValidator(),
		Cache:     cache.NewMemoryCache(zap.NewNop(), 0),
	})
	require.NoError(t, err)

	result, err := svc.Classify(context.Background(), &core.Email{
		From:    "noreply@github.com",
		Subject: "Review requested",
		Body:    "Please review the project plan",
	})
	require.NoError(t, err)
	assert.Equal(t, core.StrategyKeyword, result.Strategy)
	assert.Contains(t, result.Tags, "work-project")
}

func mustDetector(t *testing.T, cfg *config.Config) core.SenderDetector {
	t.Helper()
	f := NewContactsFactory(cfg, zap.NewNop())
	lookup, err := f.CreateContactsLookup(context.Background())
	require.NoError(t, err)
	detector, err := f.CreateSenderDetector(lookup)
	require.NoError(t, err)
	return detector
}

func TestFilterFactory(t *testing.T) {
	smtp, err := NewFilterFactory(newConfig(nil), zap.NewNop()).CreateEmailFilter(nil)
	require.NoError(t, err)
	assert.IsType(t, &filter.SMTPFilter{}, smtp)

	cli, err := NewFilterFactory(newConfig(map[string]interface{}{"server.filter_type": "cli"}), zap.NewNop()).CreateEmailFilter(nil)
	require.NoError(t, err)
	assert.IsType(t, &filter.CLIFilter{}, cli)

	_, err = NewFilterFactory(newConfig(map[string]interface{}{"server.filter_type": "milter"}), zap.NewNop()).CreateEmailFilter(nil)
	assert.EqualError(t, err, "unsupported filter type: milter")
}
