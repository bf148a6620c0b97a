package scryfall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/pdc-decklist/internal/cache"
)

const (
	// DefaultBaseURL is the public Scryfall API.
	DefaultBaseURL = "https://api.scryfall.com"
	// DefaultCacheTTL is how long a successful lookup stays cached.
	DefaultCacheTTL = 7 * 24 * time.Hour

	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "PDC-Decklist/1.0"
	defaultRateLimit = 10 // requests per second
)

// Config holds Scryfall client settings.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	CacheTTL          time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Timeout:           defaultTimeout,
		UserAgent:         defaultUserAgent,
		RequestsPerSecond: defaultRateLimit,
		CacheTTL:          DefaultCacheTTL,
	}
}

// Client is a cache-first Scryfall API client with rate limiting.
//
// Lookups never retry: a transport error, a non-200 status, or a malformed or
// error payload is reported as a miss and nothing is cached.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	baseURL     string
	store       cache.Store
	ttl         time.Duration
	logger      *zap.Logger
}

// NewClient creates a new Scryfall API client. A nil store gets an unbounded
// in-memory store; a nil logger discards output.
func NewClient(cfg Config, store cache.Store, logger *zap.Logger) *Client {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if store == nil {
		store = cache.NewMemoryStore(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = cfg.Timeout

	return &Client{
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(limit, 1),
		userAgent:   cfg.UserAgent,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		store:       store,
		ttl:         cfg.CacheTTL,
		logger:      logger,
	}
}

// GetCardByName returns the card with the given exact name, or nil when it
// cannot be found or fetched. Failures are logged.
func (c *Client) GetCardByName(ctx context.Context, name string) *Card {
	card, err := c.LookupCardByName(ctx, name)
	if err != nil {
		c.logger.Warn("Scryfall lookup failed", zap.String("card", name), zap.Error(err))
		return nil
	}
	return card
}

// GetCardBySet returns the card printed as collectorNumber in setCode, or nil
// when it cannot be found or fetched. Failures are logged.
func (c *Client) GetCardBySet(ctx context.Context, setCode, collectorNumber string) *Card {
	card, err := c.LookupCardBySet(ctx, setCode, collectorNumber)
	if err != nil {
		c.logger.Warn("Scryfall lookup failed",
			zap.String("set", setCode),
			zap.String("number", collectorNumber),
			zap.Error(err))
		return nil
	}
	return card
}

// LookupCardByName is GetCardByName with the failure reported as an error.
func (c *Client) LookupCardByName(ctx context.Context, name string) (*Card, error) {
	endpoint := fmt.Sprintf("%s/cards/named?exact=%s", c.baseURL, url.QueryEscape(name))
	return c.lookup(ctx, NameKey(name), endpoint)
}

// LookupCardBySet is GetCardBySet with the failure reported as an error.
func (c *Client) LookupCardBySet(ctx context.Context, setCode, collectorNumber string) (*Card, error) {
	endpoint := fmt.Sprintf("%s/cards/%s/%s", c.baseURL, url.PathEscape(setCode), url.PathEscape(collectorNumber))
	return c.lookup(ctx, SetKey(setCode, collectorNumber), endpoint)
}

// ClearCardCache removes the cached exact-name lookup for name.
func (c *Client) ClearCardCache(ctx context.Context, name string) error {
	if err := c.store.Delete(ctx, NameKey(name)); err != nil {
		return fmt.Errorf("failed to clear cache for %q: %w", name, err)
	}
	return nil
}

// ClearAllCaches removes every cached Scryfall response and returns how many were removed.
func (c *Client) ClearAllCaches(ctx context.Context) (int, error) {
	n, err := c.store.DeletePrefix(ctx, CacheKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to clear Scryfall caches: %w", err)
	}
	return n, nil
}

// lookup serves key from the cache, or fetches endpoint and caches the raw body on success.
func (c *Client) lookup(ctx context.Context, key, endpoint string) (*Card, error) {
	if card := c.fromCache(ctx, key); card != nil {
		return card, nil
	}

	card, body, err := c.fetchCard(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, body, c.ttl); err != nil {
		c.logger.Warn("Failed to cache Scryfall response", zap.String("key", key), zap.Error(err))
	}
	return card, nil
}

// fromCache returns the cached card for key, or nil on miss. An unreadable
// store or an undecodable entry counts as a miss.
func (c *Client) fromCache(ctx context.Context, key string) *Card {
	body, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Cache unavailable, falling back to network", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	card, err := decodeCard(body)
	if err != nil {
		c.logger.Warn("Discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn("Failed to delete corrupt cache entry", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	return card
}

// fetchCard performs a single rate-limited GET and returns the decoded card and its raw body.
func (c *Client) fetchCard(ctx context.Context, endpoint string) (*Card, []byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("%w: rate limiter: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, statusError(resp.StatusCode, endpoint, body)
	}

	card, err := decodeCard(body)
	if err != nil {
		return nil, nil, err
	}
	return card, body, nil
}

// statusError builds the error for a non-200 response.
func statusError(status int, endpoint string, body []byte) error {
	if status == http.StatusNotFound {
		return &NotFoundError{URL: endpoint}
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Object == "error" {
		if apiErr.Status == 0 {
			apiErr.Status = status
		}
		return &apiErr
	}

	return fmt.Errorf("%w: HTTP %d", ErrUnexpectedStatus, status)
}

// decodeCard parses a card payload, rejecting empty bodies and error objects.
func decodeCard(body []byte) (*Card, error) {
	var card *Card
	if err := json.Unmarshal(bytes.TrimSpace(body), &card); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if card == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	if card.Object == "error" {
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return nil, &apiErr
	}
	return card, nil
}

// IsLookupMiss reports whether err means the card-data service has no such card,
// as opposed to the service being unreachable.
func IsLookupMiss(err error) bool {
	var apiErr *APIError
	return IsNotFound(err) || errors.As(err, &apiErr)
}
