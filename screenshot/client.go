// Package screenshot talks to the external render service that executes a
// page's JavaScript and captures viewport and full-page screenshots. The
// service is optional: callers fall back to a static HTML fetch when it is
// not configured or fails.
package screenshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrRender marks a render-service failure. It degrades the audit to a
// static fetch rather than aborting it.
var ErrRender = errors.New("render service failure")

// Capture is one successful render: post-JS HTML plus two base64 PNGs.
type Capture struct {
	HTML       string    `json:"html"`
	Viewport   string    `json:"viewport"`
	FullPage   string    `json:"fullPage"`
	JSRendered bool      `json:"jsRendered"`
	CapturedAt time.Time `json:"capturedAt"`
}

// Client calls the render service.
type Client struct {
	endpoint string
	http     *http.Client
	log      *logrus.Entry
}

// New returns a client for the given service endpoint, or nil when the
// endpoint is empty (static-fetch mode).
func New(endpoint string, timeout time.Duration, logger *logrus.Entry) *Client {
	if endpoint == "" {
		return nil
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		log:      logger,
	}
}

type renderRequest struct {
	URL      string `json:"url"`
	FullPage bool   `json:"fullPage"`
}

// Render asks the service to load pageURL, run its JavaScript and capture
// both screenshots.
func (c *Client) Render(ctx context.Context, pageURL string) (*Capture, error) {
	payload, err := json.Marshal(renderRequest{URL: pageURL, FullPage: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRender, resp.StatusCode)
	}

	var capture Capture
	if err := json.NewDecoder(resp.Body).Decode(&capture); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrRender, err)
	}
	if capture.HTML == "" {
		return nil, fmt.Errorf("%w: empty document", ErrRender)
	}
	if capture.CapturedAt.IsZero() {
		capture.CapturedAt = time.Now().UTC()
	}
	return &capture, nil
}
