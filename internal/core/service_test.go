package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDetector struct {
	signals SenderSignals
}

func (d stubDetector) Detect(context.Context, string) SenderSignals { return d.signals }

type stubClassifier struct {
	tags      []string
	err       error
	available bool
	calls     atomic.Int32
}

func (c *stubClassifier) Classify(_ context.Context, email *Email, _ SenderSignals) (*ClassificationResult, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &ClassificationResult{Summary: email.Subject, Tags: append([]string(nil), c.tags...)}, nil
}

func (c *stubClassifier) Available(context.Context) bool { return c.available }

type recordingValidator struct {
	calls atomic.Int32
}

// Validate keeps the first tag only, so tests can see it ran
func (v *recordingValidator) Validate(tags []string, _ string) []string {
	v.calls.Add(1)
	if len(tags) == 0 {
		return []string{"general"}
	}
	return []string{tags[0]}
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*CacheEntry)}
}

func (m *mapCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return entry, nil
}

func (m *mapCache) Set(_ context.Context, entry *CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Key] = entry
	return nil
}

func (m *mapCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *mapCache) Cleanup(context.Context) error { return nil }

func newService(keyword Classifier, generative GenerativeClassifier, cache CacheRepository, opts TriageOptions) (*TriageService, *recordingValidator) {
	validator := &recordingValidator{}
	svc := NewTriageService(
		stubDetector{signals: SenderSignals{PersonalSender: true}},
		keyword,
		generative,
		validator,
		cache,
		zap.NewNop(),
		opts,
	)
	return svc, validator
}

func TestTriageServiceStrategySelection(t *testing.T) {
	email := &Email{From: "a@b.com", Subject: "hello"}

	tests := []struct {
		name         string
		generative   *stubClassifier
		fallback     bool
		wantStrategy Strategy
		wantTags     []string
		wantErr      bool
	}{
		{
			name:         "no generative configured",
			wantStrategy: StrategyKeyword,
			wantTags:     []string{"kw"},
		},
		{
			name:         "generative available",
			generative:   &stubClassifier{tags: []string{"gen", "extra"}, available: true},
			wantStrategy: StrategyGenerative,
			wantTags:     []string{"gen"},
		},
		{
			name:         "probe fails",
			generative:   &stubClassifier{tags: []string{"gen"}, available: false},
			wantStrategy: StrategyKeyword,
			wantTags:     []string{"kw"},
		},
		{
			name: "unreachable during call",
			generative: &stubClassifier{
				err:       &UpstreamUnavailableError{Provider: "test", Err: errors.New("connection refused")},
				available: true,
			},
			wantStrategy: StrategyKeyword,
			wantTags:     []string{"kw"},
		},
		{
			name:       "parse error without fallback",
			generative: &stubClassifier{err: &ParseError{Raw: "nope", Err: errors.New("bad")}, available: true},
			wantErr:    true,
		},
		{
			name:         "parse error with fallback",
			generative:   &stubClassifier{err: &ParseError{Raw: "nope", Err: errors.New("bad")}, available: true},
			fallback:     true,
			wantStrategy: StrategyKeyword,
			wantTags:     []string{"kw"},
		},
		{
			name:       "upstream status without fallback",
			generative: &stubClassifier{err: &UpstreamError{Provider: "test", StatusCode: 500}, available: true},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyword := &stubClassifier{tags: []string{"kw"}}
			var generative GenerativeClassifier
			if tt.generative != nil {
				generative = tt.generative
			}
			svc, validator := newService(keyword, generative, nil, TriageOptions{FallbackOnError: tt.fallback})

			got, err := svc.Classify(context.Background(), email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, int32(0), keyword.calls.Load())
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantStrategy, got.Strategy)
			assert.Equal(t, tt.wantTags, got.Tags)
			assert.True(t, got.IsPersonalSender)
			assert.False(t, got.AnalyzedAt.IsZero())
			assert.Equal(t, int32(1), validator.calls.Load())
		})
	}
}

func TestTriageServiceProbeFailureSkipsCall(t *testing.T) {
	generative := &stubClassifier{available: false}
	svc, _ := newService(&stubClassifier{tags: []string{"kw"}}, generative, nil, TriageOptions{})

	_, err := svc.Classify(context.Background(), &Email{From: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, int32(0), generative.calls.Load())
}

func TestTriageServiceCache(t *testing.T) {
	keyword := &stubClassifier{tags: []string{"kw"}}
	cache := newMapCache()
	svc, _ := newService(keyword, nil, cache, TriageOptions{CacheEnabled: true, CacheTTL: time.Hour})

	email := &Email{From: "A@B.com", Subject: "hello", Body: "world"}

	first, err := svc.Classify(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, StrategyKeyword, first.Strategy)

	second, err := svc.Classify(context.Background(), &Email{From: "a@b.com", Subject: "hello", Body: "world"})
	require.NoError(t, err)
	assert.Equal(t, StrategyCache, second.Strategy)
	assert.Equal(t, first.Tags, second.Tags)
	assert.Equal(t, int32(1), keyword.calls.Load())

	// Cached results are copies
	second.Tags[0] = "mutated"
	third, err := svc.Classify(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, []string{"kw"}, third.Tags)

	// A different body misses
	_, err = svc.Classify(context.Background(), &Email{From: "a@b.com", Subject: "hello", Body: "other"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), keyword.calls.Load())
}

func TestTriageServiceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name       string
		generative *stubClassifier
		fallback   bool
	}{
		{name: "keyword only"},
		{name: "probe fails", generative: &stubClassifier{available: false}},
		{
			name: "unreachable during call",
			generative: &stubClassifier{
				err:       &UpstreamUnavailableError{Provider: "test", Err: context.Canceled},
				available: true,
			},
		},
		{
			name:       "fallback on error",
			generative: &stubClassifier{err: &ParseError{Raw: "", Err: context.Canceled}, available: true},
			fallback:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyword := &stubClassifier{tags: []string{"kw"}}
			var generative GenerativeClassifier
			if tt.generative != nil {
				generative = tt.generative
			}
			cache := newMapCache()
			svc, _ := newService(keyword, generative, cache, TriageOptions{
				FallbackOnError: tt.fallback,
				CacheEnabled:    true,
				CacheTTL:        time.Hour,
			})

			got, err := svc.Classify(ctx, &Email{From: "a@b.com", Subject: "hello"})
			require.Error(t, err)
			assert.ErrorIs(t, err, context.Canceled)
			assert.Nil(t, got)
			assert.Equal(t, int32(0), keyword.calls.Load())
			assert.Empty(t, cache.entries)
		})
	}
}

func TestTriageServiceFallbackNotCached(t *testing.T) {
	keyword := &stubClassifier{tags: []string{"kw"}}
	generative := &stubClassifier{tags: []string{"gen"}, available: false}
	cache := newMapCache()
	svc, _ := newService(keyword, generative, cache, TriageOptions{CacheEnabled: true, CacheTTL: time.Hour})

	email := &Email{From: "a@b.com", Subject: "hello", Body: "world"}

	first, err := svc.Classify(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, StrategyKeyword, first.Strategy)
	assert.Empty(t, cache.entries)

	generative.available = true
	second, err := svc.Classify(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, StrategyGenerative, second.Strategy)
	assert.Equal(t, []string{"gen"}, second.Tags)
	assert.Len(t, cache.entries, 1)

	third, err := svc.Classify(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, StrategyCache, third.Strategy)
	assert.Equal(t, int32(1), generative.calls.Load())
}

func TestTriageServiceCacheDisabled(t *testing.T) {
	keyword := &stubClassifier{tags: []string{"kw"}}
	cache := newMapCache()
	svc, _ := newService(keyword, nil, cache, TriageOptions{CacheEnabled: false})

	for i := 0; i < 2; i++ {
		_, err := svc.Classify(context.Background(), &Email{From: "a@b.com"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), keyword.calls.Load())
	assert.Empty(t, cache.entries)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(&Email{From: "Jane <J@X.com>", Subject: "s", Body: "b"})
	b := Fingerprint(&Email{From: "jane <j@x.com>", Subject: "s", Body: "b"})
	c := Fingerprint(&Email{From: "jane <j@x.com>", Subject: "sb", Body: ""})

	assert.Equal(t, a, b)
	assert.NotEqual(t, b, c)
	assert.Len(t, a, 64)
}

func TestClassifyBatch(t *testing.T) {
	generative := &failingOn{failSubject: "bad", available: true}
	svc, _ := newService(&stubClassifier{tags: []string{"kw"}}, generative, nil, TriageOptions{BatchConcurrency: 3})

	var emails []*Email
	for i := 0; i < 10; i++ {
		subject := fmt.Sprintf("mail-%d", i)
		if i == 4 {
			subject = "bad"
		}
		emails = append(emails, &Email{From: "a@b.com", Subject: subject})
	}

	results := svc.ClassifyBatch(context.Background(), emails)
	require.Len(t, results, len(emails))

	for i, r := range results {
		assert.Same(t, emails[i], r.Email)
		if i == 4 {
			assert.Error(t, r.Err)
			assert.Nil(t, r.Result)
			continue
		}
		require.NoError(t, r.Err)
		assert.Equal(t, emails[i].Subject, r.Result.Summary)
	}
	assert.LessOrEqual(t, generative.maxInFlight.Load(), int32(3))
}

type failingOn struct {
	failSubject string
	available   bool
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *failingOn) Classify(_ context.Context, email *Email, _ SenderSignals) (*ClassificationResult, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	if email.Subject == f.failSubject {
		return nil, &UpstreamError{Provider: "test", StatusCode: 400}
	}
	return &ClassificationResult{Summary: email.Subject, Tags: []string{"gen"}}, nil
}

func (f *failingOn) Available(context.Context) bool { return f.available }
