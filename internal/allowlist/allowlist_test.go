package allowlist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hopper/pkg/config"
	"hopper/pkg/logger"
)

type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return value, nil
}

func (c *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	c.sets++
	return nil
}

func testService(t *testing.T, url string, cache Cache) *Service {
	t.Helper()
	cfg := &config.Config{
		AllowlistURL:      url,
		AllowlistCacheTTL: 5 * time.Minute,
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
	}
	return NewService(cache, NewHTTPFetcher(), cfg)
}

func TestIsAuthorized(t *testing.T) {
	var fetches int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"emails": ["marie@acme.fr", " Paul@Acme.fr "]}`))
	}))
	defer server.Close()

	cache := newMemoryCache()
	service := testService(t, server.URL, cache)
	ctx := context.Background()

	if !service.IsAuthorized(ctx, "marie@acme.fr") {
		t.Error("listed email must be authorized")
	}
	if !service.IsAuthorized(ctx, "PAUL@acme.fr") {
		t.Error("email matching is case-insensitive")
	}
	if service.IsAuthorized(ctx, "intruder@evil.example") {
		t.Error("unlisted email must be denied")
	}

	// Repeat lookups are served from the cache
	before := fetches
	if !service.IsAuthorized(ctx, "marie@acme.fr") {
		t.Error("cached email must stay authorized")
	}
	if fetches != before {
		t.Errorf("expected cached lookup, upstream fetched %d more times", fetches-before)
	}
}

func TestIsAuthorized_UpstreamDownDenies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := testService(t, server.URL, newMemoryCache())

	if service.IsAuthorized(context.Background(), "marie@acme.fr") {
		t.Error("unreachable allowlist must deny")
	}
}

func TestIsAuthorized_NoURLConfigured(t *testing.T) {
	service := testService(t, "", newMemoryCache())

	if !service.IsAuthorized(context.Background(), "anyone@anywhere.example") {
		t.Error("without an allowlist URL the gate is open")
	}
}

func TestIsAuthorized_CacheHitSkipsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called on a cache hit")
	}))
	defer server.Close()

	cache := newMemoryCache()
	cache.values[cacheKeyPrefix+"marie@acme.fr"] = cachedAllowed
	cache.values[cacheKeyPrefix+"paul@acme.fr"] = cachedDenied

	service := testService(t, server.URL, cache)
	ctx := context.Background()

	if !service.IsAuthorized(ctx, "marie@acme.fr") {
		t.Error("cached allow must authorize")
	}
	if service.IsAuthorized(ctx, "paul@acme.fr") {
		t.Error("cached deny must deny")
	}
}
