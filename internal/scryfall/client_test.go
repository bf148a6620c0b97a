package scryfall

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ramonehamilton/pdc-decklist/internal/cache"
)

const solRingJSON = `{
	"object": "card",
	"id": "sol-ring-id",
	"name": "Sol Ring",
	"mana_cost": "{1}",
	"cmc": 1.0,
	"type_line": "Artifact",
	"colors": [],
	"image_uris": {"small": "https://img/sol-small.jpg", "normal": "https://img/sol-normal.jpg"}
}`

// newTestClient returns a client pointed at server with no rate limiting.
func newTestClient(server *httptest.Server, store cache.Store) *Client {
	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.RequestsPerSecond = 0
	return NewClient(cfg, store, nil)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{}, nil, nil)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.httpClient.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", client.httpClient.Timeout)
	}
	if client.ttl != 7*24*time.Hour {
		t.Errorf("ttl = %v, want 7 days", client.ttl)
	}
	if client.userAgent == "" {
		t.Error("userAgent is empty")
	}
	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", client.baseURL)
	}
	if client.store == nil || client.logger == nil || client.rateLimiter == nil {
		t.Error("store, logger and rateLimiter should be initialized")
	}
}

func TestClient_GetCardByName_CachesSuccess(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)

		if r.URL.Path != "/cards/named" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("exact"); got != "Sol Ring" {
			t.Errorf("exact = %q, want Sol Ring", got)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent header")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(solRingJSON))
	}))
	defer server.Close()

	store := cache.NewMemoryStore(0)
	client := newTestClient(server, store)
	ctx := context.Background()

	first := client.GetCardByName(ctx, "Sol Ring")
	if first == nil {
		t.Fatal("first lookup returned nil")
	}
	if first.Name != "Sol Ring" {
		t.Errorf("Name = %q", first.Name)
	}

	second := client.GetCardByName(ctx, "Sol Ring")
	if second == nil || second.Name != "Sol Ring" {
		t.Fatalf("cached lookup = %+v", second)
	}

	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("expected 1 network request, got %d", n)
	}
	if _, found, _ := store.Get(ctx, NameKey("Sol Ring")); !found {
		t.Error("successful response should be cached under the name key")
	}
}

func TestClient_GetCardByName_FailuresAreNotCached(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		checkFn func(error) bool
	}{
		{
			name:    "404 not found",
			status:  http.StatusNotFound,
			body:    `{"object":"error","code":"not_found","status":404,"details":"No card found"}`,
			checkFn: IsNotFound,
		},
		{
			name:   "500 with error payload",
			status: http.StatusInternalServerError,
			body:   `{"object":"error","code":"server","status":500,"details":"boom"}`,
			checkFn: func(err error) bool {
				var apiErr *APIError
				return errors.As(err, &apiErr) && apiErr.Status == 500
			},
		},
		{
			name:   "503 without payload",
			status: http.StatusServiceUnavailable,
			body:   `maintenance`,
			checkFn: func(err error) bool {
				return errors.Is(err, ErrUnexpectedStatus)
			},
		},
		{
			name:   "200 with error object",
			status: http.StatusOK,
			body:   `{"object":"error","code":"ambiguous","status":404,"details":"Too many cards match"}`,
			checkFn: func(err error) bool {
				var apiErr *APIError
				return errors.As(err, &apiErr) && apiErr.Code == "ambiguous"
			},
		},
		{
			name:   "200 with malformed JSON",
			status: http.StatusOK,
			body:   `{"object": "card", "name": `,
			checkFn: func(err error) bool {
				return errors.Is(err, ErrDecode)
			},
		},
		{
			name:   "200 with null",
			status: http.StatusOK,
			body:   `null`,
			checkFn: func(err error) bool {
				return errors.Is(err, ErrDecode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&requests, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			store := cache.NewMemoryStore(0)
			client := newTestClient(server, store)
			ctx := context.Background()

			_, err := client.LookupCardByName(ctx, "Nonexistent Card")
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.checkFn(err) {
				t.Errorf("unexpected error kind: %v", err)
			}

			if card := client.GetCardByName(ctx, "Nonexistent Card"); card != nil {
				t.Errorf("GetCardByName() = %+v, want nil", card)
			}

			if n := atomic.LoadInt32(&requests); n != 2 {
				t.Errorf("failures must not be cached: got %d requests, want 2", n)
			}
			if store.Len() != 0 {
				t.Errorf("store has %d entries, want 0", store.Len())
			}
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening any more

	client := newTestClient(server, nil)

	_, err := client.LookupCardByName(context.Background(), "Sol Ring")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if IsLookupMiss(err) {
		t.Error("transport failure is not a lookup miss")
	}
	if card := client.GetCardByName(context.Background(), "Sol Ring"); card != nil {
		t.Error("transport failure should yield nil")
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.Timeout = 50 * time.Millisecond
	client := NewClient(cfg, nil, nil)

	_, err := client.LookupCardByName(context.Background(), "Slow Card")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport on timeout, got %v", err)
	}
}

func TestClient_GetCardBySet(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if r.URL.Path != "/cards/mh2/84" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"object":"card","name":"Ragavan, Nimble Pilferer","set":"mh2","collector_number":"138","cmc":1,"type_line":"Legendary Creature — Monkey Pirate"}`))
	}))
	defer server.Close()

	store := cache.NewMemoryStore(0)
	client := newTestClient(server, store)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		card := client.GetCardBySet(ctx, "mh2", "84")
		if card == nil {
			t.Fatalf("lookup %d returned nil", i+1)
		}
	}

	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
	if _, found, _ := store.Get(ctx, SetKey("mh2", "84")); !found {
		t.Error("expected set key to be cached")
	}
}

func TestClient_CorruptCacheEntryRefetches(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		_, _ = w.Write([]byte(solRingJSON))
	}))
	defer server.Close()

	store := cache.NewMemoryStore(0)
	ctx := context.Background()
	_ = store.Set(ctx, NameKey("Sol Ring"), []byte("not json"), time.Hour)

	client := newTestClient(server, store)
	if card := client.GetCardByName(ctx, "Sol Ring"); card == nil {
		t.Fatal("expected refetch after corrupt cache entry")
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
}

func TestClient_GetCardBySet_DistinctCollectorNumbers(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		name := "Plain Printing"
		if r.URL.Path == "/cards/sld/1★" {
			name = "Star Printing"
		}
		_, _ = w.Write([]byte(`{"object":"card","name":"` + name + `","type_line":"Artifact"}`))
	}))
	defer server.Close()

	client := newTestClient(server, cache.NewMemoryStore(0))
	ctx := context.Background()

	first := client.GetCardBySet(ctx, "sld", "1")
	second := client.GetCardBySet(ctx, "sld", "1★")
	if first == nil || second == nil {
		t.Fatalf("lookups returned %v, %v", first, second)
	}
	if first.Name != "Plain Printing" {
		t.Errorf("first = %q, want Plain Printing", first.Name)
	}
	if second.Name != "Star Printing" {
		t.Errorf("second = %q, want Star Printing", second.Name)
	}
	if n := atomic.LoadInt32(&requests); n != 2 {
		t.Errorf("expected 2 requests, got %d", n)
	}
}

// clockStore is a cache.Store with a settable clock.
type clockStore struct {
	mu      sync.Mutex
	now     time.Time
	values  map[string][]byte
	expires map[string]time.Time
}

func newClockStore() *clockStore {
	return &clockStore{
		now:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		values:  make(map[string][]byte),
		expires: make(map[string]time.Time),
	}
}

func (s *clockStore) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

func (s *clockStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok || !s.now.Before(s.expires[key]) {
		return nil, false, nil
	}
	return v, true, nil
}

func (s *clockStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.expires[key] = s.now.Add(ttl)
	return nil
}

func (s *clockStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	delete(s.expires, key)
	return nil
}

func (s *clockStore) DeletePrefix(context.Context, string) (int, error) {
	return 0, nil
}

func TestClient_ExpiredEntryRefetches(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		_, _ = w.Write([]byte(solRingJSON))
	}))
	defer server.Close()

	store := newClockStore()
	client := newTestClient(server, store)
	ctx := context.Background()

	if card := client.GetCardByName(ctx, "Sol Ring"); card == nil {
		t.Fatal("first lookup returned nil")
	}

	store.advance(7*24*time.Hour - time.Minute)
	if card := client.GetCardByName(ctx, "Sol Ring"); card == nil {
		t.Fatal("lookup within TTL returned nil")
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Fatalf("expected 1 request within TTL, got %d", n)
	}

	store.advance(time.Minute)
	if card := client.GetCardByName(ctx, "Sol Ring"); card == nil {
		t.Fatal("lookup after TTL returned nil")
	}
	if n := atomic.LoadInt32(&requests); n != 2 {
		t.Errorf("expected a refetch after 7 days, got %d requests", n)
	}
}

// corruptStore always returns an undecodable entry and cannot delete it.
type corruptStore struct{ failingStore }

func (corruptStore) Get(context.Context, string) ([]byte, bool, error) {
	return []byte("not json"), true, nil
}

func TestClient_CorruptEntryDeleteFailureIsLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(solRingJSON))
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.RequestsPerSecond = 0
	client := NewClient(cfg, corruptStore{}, zap.New(core))

	if card := client.GetCardByName(context.Background(), "Sol Ring"); card == nil {
		t.Fatal("expected refetch after corrupt cache entry")
	}

	entries := logs.FilterMessage("Failed to delete corrupt cache entry").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 delete failure log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["key"]; got != NameKey("Sol Ring") {
		t.Errorf("logged key = %v", got)
	}
}

// failingStore is a cache.Store whose backend is always down.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store down")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("store down")
}

func (failingStore) DeletePrefix(context.Context, string) (int, error) {
	return 0, errors.New("store down")
}

func TestClient_CacheUnavailableFallsBackToNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(solRingJSON))
	}))
	defer server.Close()

	client := newTestClient(server, failingStore{})
	ctx := context.Background()

	if card := client.GetCardByName(ctx, "Sol Ring"); card == nil {
		t.Fatal("cache failure must not block the lookup")
	}
	if err := client.ClearCardCache(ctx, "Sol Ring"); err == nil {
		t.Error("ClearCardCache() should surface store errors")
	}
	if _, err := client.ClearAllCaches(ctx); err == nil {
		t.Error("ClearAllCaches() should surface store errors")
	}
}

func TestClient_ClearCaches(t *testing.T) {
	store := cache.NewMemoryStore(0)
	ctx := context.Background()
	client := NewClient(DefaultConfig(), store, nil)

	_ = store.Set(ctx, NameKey("Sol Ring"), []byte(solRingJSON), time.Hour)
	_ = store.Set(ctx, NameKey("Arcane Signet"), []byte(solRingJSON), time.Hour)
	_ = store.Set(ctx, SetKey("mh2", "84"), []byte(solRingJSON), time.Hour)
	_ = store.Set(ctx, "unrelated", []byte("x"), time.Hour)

	if err := client.ClearCardCache(ctx, "Sol Ring"); err != nil {
		t.Fatalf("ClearCardCache() error = %v", err)
	}
	if _, found, _ := store.Get(ctx, NameKey("Sol Ring")); found {
		t.Error("Sol Ring should be cleared")
	}

	n, err := client.ClearAllCaches(ctx)
	if err != nil {
		t.Fatalf("ClearAllCaches() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ClearAllCaches() = %d, want 2", n)
	}
	if _, found, _ := store.Get(ctx, "unrelated"); !found {
		t.Error("non-Scryfall keys should survive ClearAllCaches")
	}
}
