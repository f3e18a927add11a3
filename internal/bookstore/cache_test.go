package bookstore

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponseCacheDisabled(t *testing.T) {
	assert.Nil(t, NewResponseCache(0, time.Minute))
	assert.Nil(t, NewResponseCache(10, 0))

	var c *ResponseCache
	c.Purge()
	assert.Zero(t, c.Len())

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	assert.NotNil(t, c.Middleware(next))
	assert.NotNil(t, c.PurgeOnWrite(next))
}

func TestResponseCacheMiddleware(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("fail") != "" {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"n":1}`))
	})
	c := NewResponseCache(10, time.Minute)
	wrapped := c.Middleware(handler)

	serve := func(method, target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest(method, target, nil))
		return w
	}

	w := serve(http.MethodGet, "/books?genre=fiction")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = serve(http.MethodGet, "/books?genre=fiction")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, `{"n":1}`, w.Body.String())
	assert.Equal(t, 1, calls)

	serve(http.MethodGet, "/books?genre=mystery")
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, c.Len())

	serve(http.MethodGet, "/books?fail=1")
	w = serve(http.MethodGet, "/books?fail=1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 4, calls)

	serve(http.MethodHead, "/books?genre=fiction")
	assert.Equal(t, 5, calls)
}

func TestResponseCacheExpiry(t *testing.T) {
	c := NewResponseCache(10, 20*time.Millisecond)
	c.put("/books", []byte("[]"), "application/json", c.currentGeneration())

	_, ok := c.get("/books")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = c.get("/books")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestResponseCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewResponseCache(2, time.Minute)
	c.put("/a", nil, "", c.currentGeneration())
	c.put("/b", nil, "", c.currentGeneration())
	_, _ = c.get("/a")
	c.put("/c", nil, "", c.currentGeneration())

	_, ok := c.get("/b")
	assert.False(t, ok)
	_, ok = c.get("/a")
	assert.True(t, ok)
	_, ok = c.get("/c")
	assert.True(t, ok)
}

func TestPurgeOnWrite(t *testing.T) {
	c := NewResponseCache(10, time.Minute)
	status := http.StatusCreated
	wrapped := c.PurgeOnWrite(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	c.put("/books", []byte("[]"), "application/json", c.currentGeneration())
	status = http.StatusBadRequest
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/books", nil))
	assert.Equal(t, 1, c.Len())

	status = http.StatusCreated
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/books", nil))
	assert.Zero(t, c.Len())
}

func TestRouterCachesReadsUntilWrite(t *testing.T) {
	api := setupTestAPI(t)
	token := api.tokens.Issue()

	total := func(w *httptest.ResponseRecorder) int {
		t.Helper()
		var resp listBooksResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		return resp.TotalSize
	}

	w := api.do(http.MethodGet, "/books", "", "")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, 0, total(w))

	w = api.do(http.MethodGet, "/books", "", "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w = api.do(http.MethodPost, "/books", `{"title":"Dune","author":"Frank Herbert","genre":"sci-fi","yearPublished":1965,"price":9.99}`, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodGet, "/books", "", "")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, 1, total(w))
}

func TestResponseCacheSkipsReadsThatRaceAPurge(t *testing.T) {
	c := NewResponseCache(10, time.Minute)

	var mu sync.Mutex
	value := "old"
	readStarted := make(chan struct{})
	releaseRead := make(chan struct{})
	blockNextRead := true

	read := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		body, block := value, blockNextRead
		blockNextRead = false
		mu.Unlock()
		if block {
			close(readStarted)
			<-releaseRead
		}
		_, _ = w.Write([]byte(body))
	}))
	write := c.PurgeOnWrite(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		value = "new"
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		read.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/1", nil))
	}()

	<-readStarted
	write.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/books/1", nil))
	close(releaseRead)
	<-done

	assert.Zero(t, c.Len())

	w := httptest.NewRecorder()
	read.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/1", nil))
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, "new", w.Body.String())

	w = httptest.NewRecorder()
	read.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/1", nil))
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, "new", w.Body.String())
}
