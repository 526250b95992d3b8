// Package allowlist gates reservations behind an externally managed list of
// authorized booker emails. Lookups hit a short-lived Redis cache first; on
// a miss the list is fetched over HTTP and cached. Failures deny.
package allowlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hopper/pkg/client"
	"hopper/pkg/config"
	"hopper/pkg/logger"
	"hopper/pkg/sanitizer"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "allowlist:email:"

const (
	cachedAllowed = "1"
	cachedDenied  = "0"
)

// Cache is the slice of Redis the allowlist needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("allowlist cache miss")

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return value, err
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Fetcher retrieves the raw allowlist document.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type httpFetcher struct {
	client *client.HttpClient
}

func NewHTTPFetcher() Fetcher {
	return &httpFetcher{client: client.NewHttpClient("")}
}

func (f *httpFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.GET(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("allowlist endpoint returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

type Service struct {
	cache   Cache
	fetcher Fetcher
	url     string
	ttl     time.Duration
	log     *logger.Logger
}

func NewService(cache Cache, fetcher Fetcher, cfg *config.Config) *Service {
	return &Service{
		cache:   cache,
		fetcher: fetcher,
		url:     cfg.AllowlistURL,
		ttl:     cfg.AllowlistCacheTTL,
		log:     cfg.Log.With("component", "allowlist"),
	}
}

type allowlistDocument struct {
	Emails []string `json:"emails"`
}

// IsAuthorized reports whether the email may book. When no allowlist URL is
// configured the gate is open; when the upstream cannot be reached and the
// cache has no answer, the gate is closed.
func (s *Service) IsAuthorized(ctx context.Context, email string) bool {
	if s.url == "" {
		return true
	}

	email = sanitizer.NormalizeEmail(email)
	key := cacheKeyPrefix + email

	if cached, err := s.cache.Get(ctx, key); err == nil {
		return cached == cachedAllowed
	} else if !errors.Is(err, ErrCacheMiss) {
		s.log.Warn("Allowlist cache read failed", "error", err)
	}

	allowed, err := s.fetchAndCheck(ctx, email)
	if err != nil {
		s.log.Error("Allowlist fetch failed, denying", "email", email, "error", err)
		return false
	}

	value := cachedDenied
	if allowed {
		value = cachedAllowed
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.Warn("Allowlist cache write failed", "error", err)
	}

	return allowed
}

func (s *Service) fetchAndCheck(ctx context.Context, email string) (bool, error) {
	body, err := s.fetcher.Get(ctx, s.url)
	if err != nil {
		return false, err
	}

	var doc allowlistDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return false, err
	}

	for _, candidate := range doc.Emails {
		if strings.EqualFold(strings.TrimSpace(candidate), email) {
			return true, nil
		}
	}
	return false, nil
}
