package bookstore

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang/groupcache/lru"
)

// ResponseCache keeps successful GET responses of the read endpoints.
// Entries expire after the TTL and the least recently used one is dropped
// when the cache is full. A nil *ResponseCache caches nothing.
type ResponseCache struct {
	mu      sync.Mutex
	entries *lru.Cache
	ttl     time.Duration
	// generation counts purges. A response computed before a purge is
	// never stored after it.
	generation uint64
}

type cachedResponse struct {
	body        []byte
	contentType string
	expiresAt   time.Time
}

// NewResponseCache returns a cache holding up to maxEntries responses for
// ttl each, or nil when either bound is not positive.
func NewResponseCache(maxEntries int, ttl time.Duration) *ResponseCache {
	if maxEntries <= 0 || ttl <= 0 {
		return nil
	}
	return &ResponseCache{entries: lru.New(maxEntries), ttl: ttl}
}

func (c *ResponseCache) get(key string) (*cachedResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	resp := v.(*cachedResponse)
	if time.Now().After(resp.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}
	return resp, true
}

// currentGeneration returns the value to hand to put once the response
// is ready.
func (c *ResponseCache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// put stores a response unless the cache was purged since generation.
func (c *ResponseCache) put(key string, body []byte, contentType string, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return
	}
	c.entries.Add(key, &cachedResponse{
		body:        body,
		contentType: contentType,
		expiresAt:   time.Now().Add(c.ttl),
	})
}

// Purge drops every cached response.
func (c *ResponseCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Clear()
	c.generation++
}

// Len reports the number of cached responses, expired ones included.
func (c *ResponseCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Middleware serves GET requests from the cache, keyed by path and query.
// Misses go to next and 200 responses are stored. The X-Cache header tells
// which one happened.
func (c *ResponseCache) Middleware(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.RequestURI()
		if resp, ok := c.get(key); ok {
			w.Header().Set("Content-Type", resp.contentType)
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(resp.body)
			return
		}

		generation := c.currentGeneration()
		w.Header().Set("X-Cache", "MISS")
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		var body bytes.Buffer
		ww.Tee(&body)
		next.ServeHTTP(ww, r)

		if ww.Status() == http.StatusOK {
			c.put(key, body.Bytes(), ww.Header().Get("Content-Type"), generation)
		}
	})
}

// PurgeOnWrite empties the cache after next handles a request without
// an error status, so reads never outlive the write that changed them.
func (c *ResponseCache) PurgeOnWrite(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if ww.Status() < http.StatusBadRequest {
			c.Purge()
		}
	})
}
