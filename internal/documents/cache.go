package documents

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	body        []byte
	contentType string
	expires     time.Time
}

// ResponseCache memoizes successful GET responses for a short TTL and
// collapses concurrent misses for the same key into a single render.
type ResponseCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// NewResponseCache creates a cache with the given entry lifetime.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{ttl: ttl, entries: map[string]cacheEntry{}}
}

// Invalidate drops all cached responses. Called after any write.
func (c *ResponseCache) Invalidate() {
	c.mu.Lock()
	c.entries = map[string]cacheEntry{}
	c.mu.Unlock()
}

func (c *ResponseCache) get(key string) (cacheEntry, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expires) {
		return cacheEntry{}, false
	}
	return e, true
}

func (c *ResponseCache) put(key string, e cacheEntry) {
	e.expires = time.Now().Add(c.ttl)
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: http.Header{}, status: http.StatusOK}
}

func (w *bufferedWriter) Header() http.Header { return w.header }

func (w *bufferedWriter) WriteHeader(status int) { w.status = status }

func (w *bufferedWriter) Write(p []byte) (int, error) { return w.body.Write(p) }

// Middleware serves GET responses from the cache. Non-GET requests and
// non-200 responses pass through uncached.
func (c *ResponseCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		key := r.URL.RequestURI()
		if e, ok := c.get(key); ok {
			w.Header().Set("Content-Type", e.contentType)
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(e.body)
			return
		}

		v, err, _ := c.group.Do(key, func() (any, error) {
			bw := newBufferedWriter()
			next.ServeHTTP(bw, r)
			if bw.status == http.StatusOK {
				c.put(key, cacheEntry{body: bw.body.Bytes(), contentType: bw.header.Get("Content-Type")})
			}
			return bw, nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		bw := v.(*bufferedWriter)
		for k, vals := range bw.header {
			for _, val := range vals {
				w.Header().Add(k, val)
			}
		}
		w.WriteHeader(bw.status)
		_, _ = w.Write(bw.body.Bytes())
	})
}
