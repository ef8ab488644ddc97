package mockup

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growth-audit/backend/audit"
	"github.com/growth-audit/backend/cache"
)

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func testStore(t *testing.T) *cache.BadgerStore {
	t.Helper()
	store, err := cache.NewBadgerStore(t.TempDir(), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func fakeProvider(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateSuccess(t *testing.T) {
	var gotAuth string
	provider := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var pr providerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&pr))
		assert.NotEmpty(t, pr.Prompt)
		json.NewEncoder(w).Encode(providerResponse{ImageURL: "https://img.example/m1.png"})
	})

	g := New(Options{Endpoint: provider.URL, APIKey: "test-key", Logger: quietLogger()})
	result, err := g.Generate(context.Background(), Request{
		PageType:        audit.PageTypeLanding,
		MissingSections: []string{"cta", "proof"},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://img.example/m1.png", result.ImageURL)
	assert.False(t, result.FromCache)
	assert.False(t, result.GeneratedAt.IsZero())
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestGenerateRateLimited(t *testing.T) {
	provider := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	g := New(Options{Endpoint: provider.URL, Logger: quietLogger()})
	_, err := g.Generate(context.Background(), Request{PageType: audit.PageTypeLanding})

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.NotErrorIs(t, err, ErrGeneration)
}

func TestGenerateProviderFailure(t *testing.T) {
	provider := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	g := New(Options{Endpoint: provider.URL, Logger: quietLogger()})
	_, err := g.Generate(context.Background(), Request{PageType: audit.PageTypeLanding})

	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGenerateNoProviderConfigured(t *testing.T) {
	g := New(Options{Logger: quietLogger()})
	_, err := g.Generate(context.Background(), Request{PageType: audit.PageTypeLanding})

	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGenerateServesFromCache(t *testing.T) {
	var calls atomic.Int64
	provider := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(providerResponse{ImageURL: "https://img.example/m1.png"})
	})

	g := New(Options{Endpoint: provider.URL, Cache: testStore(t), Logger: quietLogger()})
	req := Request{PageType: audit.PageTypeLanding, MissingSections: []string{"proof", "cta"}, Style: "modern"}

	first, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	// Same sections in a different order must hit the same entry.
	req.MissingSections = []string{"cta", "proof"}
	second, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.ImageURL, second.ImageURL)
	assert.Equal(t, int64(1), calls.Load())
}

func TestStyleFallback(t *testing.T) {
	var gotStyle string
	provider := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var pr providerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&pr))
		gotStyle = pr.Style
		json.NewEncoder(w).Encode(providerResponse{ImageURL: "https://img.example/m1.png"})
	})
	g := New(Options{Endpoint: provider.URL, Logger: quietLogger()})

	_, err := g.Generate(context.Background(), Request{PageType: audit.PageTypeLanding})
	require.NoError(t, err)
	assert.Equal(t, "modern", gotStyle)

	_, err = g.Generate(context.Background(), Request{
		PageType:      audit.PageTypeLanding,
		StyleAnalysis: &audit.StyleAnalysis{StyleType: "bold"},
	})
	require.NoError(t, err)
	assert.Equal(t, "bold", gotStyle)

	_, err = g.Generate(context.Background(), Request{
		PageType:      audit.PageTypeLanding,
		Style:         "classic",
		StyleAnalysis: &audit.StyleAnalysis{StyleType: "bold"},
	})
	require.NoError(t, err)
	assert.Equal(t, "classic", gotStyle)
}

func TestBuildPromptIncludesStyleHints(t *testing.T) {
	prompt := buildPrompt(Request{
		PageType:         audit.PageTypeLanding,
		MissingSections:  []string{"cta"},
		ExistingSections: []string{"hero", "footer"},
		StyleAnalysis: &audit.StyleAnalysis{
			PrimaryColor:    "#6c5ce7",
			BackgroundColor: "#111111",
			IsDarkMode:      true,
			FontStyle:       "sans-serif",
		},
	}, "bold")

	assert.Contains(t, prompt, "landing")
	assert.Contains(t, prompt, "bold")
	assert.Contains(t, prompt, "cta")
	assert.Contains(t, prompt, "hero, footer")
	assert.Contains(t, prompt, "#6c5ce7")
	assert.Contains(t, prompt, "Dark theme")
}

func TestMockupCacheKeyOrderIndependent(t *testing.T) {
	a := mockupCacheKey(audit.PageTypeLanding, []string{"cta", "proof"}, "modern")
	b := mockupCacheKey(audit.PageTypeLanding, []string{"proof", "cta"}, "modern")
	c := mockupCacheKey(audit.PageTypeLanding, []string{"proof", "cta"}, "bold")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCachedResultKeepsGeneratedAt(t *testing.T) {
	provider := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(providerResponse{ImageURL: "https://img.example/m1.png"})
	})

	g := New(Options{Endpoint: provider.URL, Cache: testStore(t), Logger: quietLogger()})
	req := Request{PageType: audit.PageTypeProduct, MissingSections: []string{"pricing"}}

	first, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	second, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.WithinDuration(t, first.GeneratedAt, second.GeneratedAt, time.Second)
}
