package screenshot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func TestNewWithoutEndpoint(t *testing.T) {
	assert.Nil(t, New("", time.Second, quietLogger()))
}

func TestRenderSuccess(t *testing.T) {
	var got renderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(Capture{
			HTML:       "<html><body>rendered</body></html>",
			Viewport:   "dmlld3BvcnQ=",
			FullPage:   "ZnVsbHBhZ2U=",
			JSRendered: true,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, quietLogger())
	capture, err := c.Render(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", got.URL)
	assert.True(t, got.FullPage)
	assert.True(t, capture.JSRendered)
	assert.False(t, capture.CapturedAt.IsZero(), "missing timestamp must be backfilled")
}

func TestRenderServiceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, quietLogger())
	_, err := c.Render(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, ErrRender)
}

func TestRenderEmptyDocumentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Capture{HTML: ""})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, quietLogger())
	_, err := c.Render(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, ErrRender)
}

func TestRenderUnreachableService(t *testing.T) {
	c := New("http://127.0.0.1:1", 200*time.Millisecond, quietLogger())
	_, err := c.Render(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, ErrRender)
}
