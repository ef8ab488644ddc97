// Package mockup generates section mockup images through an external
// image-generation provider. Generation is independent of the scoring
// pipeline and caller-retried: the provider's rate limiting is surfaced
// distinctly so the client can show retry guidance.
package mockup

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/growth-audit/backend/audit"
	"github.com/growth-audit/backend/cache"
	"github.com/growth-audit/backend/stats"
)

// Failure taxonomy. ErrRateLimited maps to the "rate_limit" translation
// key, everything else under ErrGeneration to "generation_error".
var (
	ErrRateLimited = errors.New("image provider rate limited")
	ErrGeneration  = errors.New("image generation failed")
)

const (
	mockupKeyPrefix = "mockup:"
	defaultStyle    = "modern"
	cacheTTL        = 24 * time.Hour
	providerTimeout = 60 * time.Second
)

// Request describes the mockup the client wants.
type Request struct {
	PageType         audit.PageType       `json:"pageType"`
	MissingSections  []string             `json:"missingSections"`
	ExistingSections []string             `json:"existingSections"`
	Style            string               `json:"style"`
	StyleAnalysis    *audit.StyleAnalysis `json:"styleAnalysis,omitempty"`
}

// Result is the generated (or cached) mockup. The image URL renders lazily
// on the provider side; the client preloads it before display.
type Result struct {
	ImageURL    string    `json:"imageUrl"`
	Prompt      string    `json:"prompt"`
	GeneratedAt time.Time `json:"generatedAt"`
	FromCache   bool      `json:"fromCache"`
}

// Generator calls the provider and caches results per
// (pageType, missingSections, style).
type Generator struct {
	endpoint string
	apiKey   string
	http     *http.Client
	cache    cache.Store
	stats    *stats.Storage
	log      *logrus.Entry
}

// Options configures a Generator. Cache and Stats may be nil.
type Options struct {
	Endpoint string
	APIKey   string
	Cache    cache.Store
	Stats    *stats.Storage
	Logger   *logrus.Entry
}

func New(opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Generator{
		endpoint: opts.Endpoint,
		apiKey:   opts.APIKey,
		http:     &http.Client{Timeout: providerTimeout},
		cache:    opts.Cache,
		stats:    opts.Stats,
		log:      logger,
	}
}

type providerRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

type providerResponse struct {
	ImageURL string `json:"imageUrl"`
	Error    string `json:"error,omitempty"`
}

// Generate returns a mockup for the request, from cache when possible.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	style := req.Style
	if style == "" {
		if req.StyleAnalysis != nil && req.StyleAnalysis.StyleType != "" {
			style = req.StyleAnalysis.StyleType
		} else {
			style = defaultStyle
		}
	}

	key := mockupCacheKey(req.PageType, req.MissingSections, style)
	if g.cache != nil {
		var cached Result
		hit, err := g.cache.Get(key, &cached)
		if err != nil {
			g.log.Warnf("Mockup cache read failed for %q, treating as miss: %v", key, err)
		} else if hit {
			g.incrementStats(1, 0)
			cached.FromCache = true
			return &cached, nil
		}
	}
	g.incrementStats(0, 1)

	prompt := buildPrompt(req, style)
	imageURL, err := g.callProvider(ctx, prompt, style)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ImageURL:    imageURL,
		Prompt:      prompt,
		GeneratedAt: time.Now().UTC(),
	}
	if g.cache != nil {
		if err := g.cache.Put(key, result, cacheTTL); err != nil {
			g.log.Warnf("Mockup cache write failed for %q: %v", key, err)
		}
	}
	return result, nil
}

func (g *Generator) callProvider(ctx context.Context, prompt, style string) (string, error) {
	if g.endpoint == "" {
		return "", fmt.Errorf("%w: no provider configured", ErrGeneration)
	}

	payload, err := json.Marshal(providerRequest{Prompt: prompt, Style: style})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: provider status %d", ErrGeneration, resp.StatusCode)
	}

	var pr providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", fmt.Errorf("%w: decoding provider response: %v", ErrGeneration, err)
	}
	if pr.ImageURL == "" {
		return "", fmt.Errorf("%w: provider returned no image", ErrGeneration)
	}
	return pr.ImageURL, nil
}

// buildPrompt describes the sections to mock up and the visual style they
// should blend into.
func buildPrompt(req Request, style string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Website section mockup for a %s page, %s style.", req.PageType, style)
	if len(req.MissingSections) > 0 {
		fmt.Fprintf(&b, " Sections to design: %s.", strings.Join(req.MissingSections, ", "))
	}
	if len(req.ExistingSections) > 0 {
		fmt.Fprintf(&b, " Must fit visually between existing sections: %s.", strings.Join(req.ExistingSections, ", "))
	}
	if sa := req.StyleAnalysis; sa != nil {
		if sa.PrimaryColor != "" {
			fmt.Fprintf(&b, " Primary color %s.", sa.PrimaryColor)
		}
		if sa.BackgroundColor != "" {
			fmt.Fprintf(&b, " Background %s.", sa.BackgroundColor)
		}
		if sa.IsDarkMode {
			b.WriteString(" Dark theme.")
		}
		if sa.FontStyle != "" {
			fmt.Fprintf(&b, " %s typography.", sa.FontStyle)
		}
		if sa.HasGradients {
			b.WriteString(" Uses gradients.")
		}
		if sa.RoundedCorners {
			b.WriteString(" Rounded corners.")
		}
	}
	return b.String()
}

// mockupCacheKey hashes the inputs that determine the generated image.
// Missing sections are sorted so request order does not split the cache.
func mockupCacheKey(pageType audit.PageType, missing []string, style string) string {
	sorted := append([]string(nil), missing...)
	sort.Strings(sorted)
	sum := sha1.Sum([]byte(string(pageType) + "|" + strings.Join(sorted, ",") + "|" + style))
	return mockupKeyPrefix + hex.EncodeToString(sum[:])
}

func (g *Generator) incrementStats(hits, misses int) {
	if g.stats != nil {
		g.stats.IncrementStats(0, 0, hits, misses)
	}
}
