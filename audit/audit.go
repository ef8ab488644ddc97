// Package audit implements the growth-audit pipeline: fetch a page, score
// its technical health, structure and messaging, and produce prioritized
// recommendations. Results are cached per (URL, pageType) with a TTL.
package audit

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/growth-audit/backend/cache"
	"github.com/growth-audit/backend/screenshot"
	"github.com/growth-audit/backend/stats"
)

const (
	auditKeyPrefix  = "audit:"
	defaultCacheTTL = 30 * time.Minute
	fetchTimeout    = 15 * time.Second
	renderTimeout   = 45 * time.Second
)

// Options configures a Service. Cache and Stats may be nil (caching and
// counters disabled); Screenshots may be nil (static-fetch mode).
type Options struct {
	Cache       cache.Store
	Screenshots *screenshot.Client
	Stats       *stats.Storage
	TTL         time.Duration
	Logger      *logrus.Entry
}

// Service orchestrates the audit pipeline.
type Service struct {
	client *http.Client
	shots  *screenshot.Client
	cache  cache.Store
	ref    *Reference
	ttl    time.Duration
	stats  *stats.Storage
	log    *logrus.Entry
	group  singleflight.Group
}

// NewService builds a Service around the embedded reference data.
func NewService(opts Options) (*Service, error) {
	ref, err := LoadReference()
	if err != nil {
		return nil, fmt.Errorf("loading reference data: %w", err)
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		client: newHTTPClient(fetchTimeout),
		shots:  opts.Screenshots,
		cache:  opts.Cache,
		ref:    ref,
		ttl:    ttl,
		stats:  opts.Stats,
		log:    logger,
	}, nil
}

// Reference exposes the loaded static configuration (used by the mockup
// prompt builder and tests).
func (s *Service) Reference() *Reference {
	return s.ref
}

// Audit runs the full pipeline for rawURL, serving from cache when a fresh
// entry exists. Concurrent requests for the same key share one run.
func (s *Service) Audit(ctx context.Context, rawURL string, pageType PageType) (*AuditResult, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	key := cacheKey(normalized, pageType)

	if cached := s.cacheGet(key); cached != nil {
		s.incrementStats(1, 0)
		cached.FromCache = true
		return cached, nil
	}
	s.incrementStats(0, 1)

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		page, err := s.fetch(ctx, normalized)
		if err != nil {
			return nil, err
		}
		res := RunPipeline(page, pageType, s.ref)
		now := time.Now().UTC()
		res.AnalyzedAt = now
		until := now.Add(s.ttl)
		res.CachedUntil = &until
		s.cachePut(key, res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*AuditResult), nil
}

// Invalidate drops the cached result for (rawURL, pageType).
func (s *Service) Invalidate(rawURL string, pageType PageType) error {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(cacheKey(normalized, pageType))
}

// fetch retrieves the page. The static fetch always runs first: it supplies
// the timing signal for the performance score and is the fallback document.
// When the render service is configured and succeeds, its post-JS HTML and
// screenshots replace the static document.
func (s *Service) fetch(ctx context.Context, pageURL string) (*FetchedPage, error) {
	page, err := fetchStatic(ctx, s.client, pageURL)
	if err != nil {
		return nil, err
	}

	if s.shots == nil {
		return page, nil
	}

	renderCtx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()
	capture, err := s.shots.Render(renderCtx, pageURL)
	if err != nil {
		// Degrade to the static document rather than failing the audit.
		s.log.WithField("url", pageURL).Warnf("Render service failed, using static HTML: %v", err)
		return page, nil
	}

	page.HTML = []byte(capture.HTML)
	page.PageSize = len(page.HTML)
	page.JSRendered = capture.JSRendered
	page.Screenshots = &Screenshots{
		Viewport:   capture.Viewport,
		FullPage:   capture.FullPage,
		CapturedAt: capture.CapturedAt,
	}
	if err := page.parse(); err != nil {
		return nil, err
	}
	return page, nil
}

// RunPipeline scores one fetched page. It is a pure function of its inputs
// (timestamps and cache fields are filled by the caller), which is what
// makes audits idempotent for identical fetched content.
func RunPipeline(page *FetchedPage, pageType PageType, ref *Reference) *AuditResult {
	seo := analyzeSEO(page)
	structure, detected := analyzeStructure(page, ref, pageType)
	message := analyzeMessage(page, ref)
	style := analyzeStyle(page)

	tech := TechnicalScores{
		Performance:   scorePerformance(page),
		SEO:           scoreSEO(seo),
		Accessibility: scoreAccessibility(seo, structure.H1Count),
	}

	ideal := ref.IdealFor(pageType)
	score := globalScore(tech, structure.StructureScore, message.MessageScore)

	return &AuditResult{
		URL:              page.URL,
		PageType:         pageType,
		GlobalScore:      score,
		Tier:             tierFor(score),
		Technical:        tech,
		SEO:              seo,
		Structure:        structure,
		Message:          message,
		DetectedSections: detected,
		IdealSections:    ideal,
		Recommendations:  buildRecommendations(page, seo, structure, message, ideal),
		Screenshots:      page.Screenshots,
		StyleAnalysis:    style,
		JSRendered:       page.JSRendered,
	}
}

func cacheKey(normalizedURL string, pageType PageType) string {
	sum := md5.Sum([]byte(normalizedURL + "|" + string(pageType)))
	return auditKeyPrefix + hex.EncodeToString(sum[:])
}

// cacheGet treats every cache failure as a miss.
func (s *Service) cacheGet(key string) *AuditResult {
	if s.cache == nil {
		return nil
	}
	var result AuditResult
	hit, err := s.cache.Get(key, &result)
	if err != nil {
		s.log.Warnf("Cache read failed for %q, treating as miss: %v", key, err)
		return nil
	}
	if !hit {
		return nil
	}
	return &result
}

func (s *Service) cachePut(key string, result *AuditResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(key, result, s.ttl); err != nil {
		s.log.Warnf("Cache write failed for %q: %v", key, err)
	}
}

func (s *Service) incrementStats(hits, misses int) {
	if s.stats != nil {
		s.stats.IncrementStats(hits, misses, 0, 0)
	}
}
