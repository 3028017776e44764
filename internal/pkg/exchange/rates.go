package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/autoplazacr/autoplaza/internal/pkg/env"
)

const (
	defaultRatesURL = "https://api.hacienda.go.cr/indicadores/tc"
	cacheKey        = "exchange:crc_per_usd"
)

// Store is the cache the rate service is handed explicitly. It replaces the
// process-global mutable cache the rate lookup used to rely on.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// ErrCacheMiss is returned by a Store when no value exists for a key.
var ErrCacheMiss = errors.New("exchange: cache miss")

type redisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a Redis client as a rate cache store.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// cachedRate is the stored cache entry. FetchedAt guards overwrites: an entry
// never replaces a newer one (last write wins by fetch time, not by arrival).
type cachedRate struct {
	CRCPerUSD float64   `json:"crc_per_usd"`
	FetchedAt time.Time `json:"fetched_at"`
}

type haciendaResponse struct {
	Venta struct {
		Valor float64 `json:"valor"`
	} `json:"venta"`
}

// Service resolves the CRC-per-USD exchange rate through an injected cache
// store. Concurrent refreshes are collapsed with singleflight.
type Service struct {
	store      Store
	ratesURL   string
	maxAge     time.Duration
	httpClient *http.Client
	group      singleflight.Group
}

// NewService creates a rate service over the given store.
func NewService(store Store, ratesURL string, maxAge time.Duration) *Service {
	if ratesURL == "" {
		ratesURL = defaultRatesURL
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Service{
		store:      store,
		ratesURL:   ratesURL,
		maxAge:     maxAge,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewServiceFromEnv creates a rate service backed by the shared Redis cache.
func NewServiceFromEnv(client *redis.Client) *Service {
	return NewService(NewRedisStore(client), env.GetEnv("EXCHANGE_RATES_URL", defaultRatesURL), time.Hour)
}

// CRCPerUSD returns the current colones-per-dollar rate, serving from cache
// while fresh and refreshing through a single flight otherwise. A stale cached
// value is served when the upstream fetch fails.
func (s *Service) CRCPerUSD(ctx context.Context) (float64, error) {
	cached, ok := s.lookup(ctx)
	if ok && time.Since(cached.FetchedAt) < s.maxAge {
		return cached.CRCPerUSD, nil
	}

	v, err, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		rate, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		entry := cachedRate{CRCPerUSD: rate, FetchedAt: time.Now()}
		s.write(ctx, entry)
		return entry, nil
	})
	if err != nil {
		if ok {
			log.Printf("exchange: refresh failed, serving stale rate from %s: %v", cached.FetchedAt.Format(time.RFC3339), err)
			return cached.CRCPerUSD, nil
		}
		return 0, err
	}
	return v.(cachedRate).CRCPerUSD, nil
}

func (s *Service) lookup(ctx context.Context) (cachedRate, bool) {
	raw, err := s.store.Get(ctx, cacheKey)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("exchange: cache read failed: %v", err)
		}
		return cachedRate{}, false
	}
	var entry cachedRate
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		log.Printf("exchange: discarding malformed cache entry: %v", err)
		return cachedRate{}, false
	}
	return entry, true
}

func (s *Service) write(ctx context.Context, entry cachedRate) {
	// Timestamp guard: never clobber a fresher entry written by another node.
	if existing, ok := s.lookup(ctx); ok && existing.FetchedAt.After(entry.FetchedAt) {
		return
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	// Keep entries around past maxAge so a failed refresh can serve stale.
	if err := s.store.Set(ctx, cacheKey, string(raw), 24*time.Hour); err != nil {
		log.Printf("exchange: cache write failed: %v", err)
	}
}

func (s *Service) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ratesURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("exchange: rates endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed haciendaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("exchange: decoding rates response: %w", err)
	}
	if parsed.Venta.Valor <= 0 {
		return 0, fmt.Errorf("exchange: rates endpoint returned non-positive rate %f", parsed.Venta.Valor)
	}
	return parsed.Venta.Valor, nil
}
