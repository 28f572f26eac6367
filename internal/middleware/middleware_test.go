package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adstudio/backend/internal/metrics"
)

func TestStaticFileServer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mug.png"), []byte("png-bytes"), 0o644))
	handler := StaticFileServer(dir)

	t.Run("existing file", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mug.png", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "png-bytes", w.Body.String())
		assert.Equal(t, "public, max-age=2592000", w.Header().Get("Cache-Control"))
	})

	t.Run("missing file gets placeholder", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope.png", nil))

		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "PRODUCT")
	})

	t.Run("traversal stays inside dir", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.URL.Path = "/../../etc/passwd"
		handler.ServeHTTP(w, r)

		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New("test")
	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/credits/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/credits/42", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/credits/{id}", "402")))
}
