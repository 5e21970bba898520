package documents

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCacheServesHits(t *testing.T) {
	var calls atomic.Int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"documents":[]}`))
	})
	cache := NewResponseCache(time.Minute)
	h := cache.Middleware(next)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents?limit=10", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"documents":[]}`, rec.Body.String())
	}
	assert.Equal(t, int64(1), calls.Load())
}

func TestResponseCacheKeyIncludesQuery(t *testing.T) {
	var calls atomic.Int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	cache := NewResponseCache(time.Minute)
	h := cache.Middleware(next)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/documents?limit=10", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/documents?limit=20", nil))
	assert.Equal(t, int64(2), calls.Load())
}

func TestResponseCacheSkipsErrorsAndWrites(t *testing.T) {
	var calls atomic.Int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})
	cache := NewResponseCache(time.Minute)
	h := cache.Middleware(next)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/documents/99", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/documents/99", nil))
	assert.Equal(t, int64(2), calls.Load(), "404 responses are not cached")

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/documents", nil))
	assert.Equal(t, int64(3), calls.Load(), "POST bypasses the cache")
}

func TestResponseCacheInvalidate(t *testing.T) {
	var calls atomic.Int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	cache := NewResponseCache(time.Minute)
	h := cache.Middleware(next)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/documents", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/documents", nil))
	assert.Equal(t, int64(1), calls.Load())

	cache.Invalidate()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/documents", nil))
	assert.Equal(t, int64(2), calls.Load())
}
