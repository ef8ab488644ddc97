package audit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Sentinel errors surfaced by the pipeline. Handlers map these to
// translation keys; the wrapped detail stays server-side.
var (
	ErrInvalidURL = errors.New("invalid url")
	ErrFetch      = errors.New("page fetch failed")
)

const userAgent = "GrowthAudit/1.0"

// FetchedPage is everything the analyzers need about one retrieval of the
// target page. The scoring pipeline is a pure function of this struct, so
// tests can build one without any network.
type FetchedPage struct {
	URL         string
	HTML        []byte
	Doc         *goquery.Document
	StatusCode  int
	PageSize    int
	TTFB        time.Duration
	TotalTime   time.Duration
	Screenshots *Screenshots
	JSRendered  bool
}

// NormalizeURL defaults the scheme to https, lower-cases the host and drops
// the fragment. The result is the cache-key form of the URL.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/"), nil
}

// newHTTPClient mirrors the tuned transport used across the codebase:
// pooled keep-alive connections and a hard request timeout.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// fetchStatic retrieves the page over plain HTTP, recording first-byte and
// total timing used by the performance score.
func fetchStatic(ctx context.Context, client *http.Client, pageURL string) (*FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()
	ttfb := time.Since(start)

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	total := time.Since(start)

	page := &FetchedPage{
		URL:        pageURL,
		HTML:       body,
		StatusCode: resp.StatusCode,
		PageSize:   len(body),
		TTFB:       ttfb,
		TotalTime:  total,
	}
	if err := page.parse(); err != nil {
		return nil, err
	}
	return page, nil
}

// parse builds the goquery document from the raw HTML.
func (p *FetchedPage) parse() error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.HTML))
	if err != nil {
		return fmt.Errorf("%w: parsing html: %v", ErrFetch, err)
	}
	p.Doc = doc
	return nil
}
