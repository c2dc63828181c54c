package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartbill/smartbill/internal/auth"
	"github.com/smartbill/smartbill/internal/metrics"
	"github.com/smartbill/smartbill/internal/model"
	"github.com/smartbill/smartbill/internal/repository"
)

// fakeUserStore serves a fixed set of users and counts lookups.
type fakeUserStore struct {
	users   map[string]*model.User
	lookups int
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.lookups++
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

// failingUserStore simulates a store outage: every lookup errors.
type failingUserStore struct{}

func (failingUserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return nil, errors.New("connection refused")
}

// fakeAuthCache is an in-memory AuthCache.
type fakeAuthCache struct {
	entries map[string]*model.AuthContext
}

func newFakeAuthCache() *fakeAuthCache {
	return &fakeAuthCache{entries: make(map[string]*model.AuthContext)}
}

func (f *fakeAuthCache) GetAuthContext(ctx context.Context, key string) (*model.AuthContext, error) {
	return f.entries[key], nil
}

func (f *fakeAuthCache) SetAuthContext(ctx context.Context, key string, auth *model.AuthContext) error {
	f.entries[key] = auth
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newGate(t *testing.T, store UserStore, cache AuthCache) (func(http.Handler) http.Handler, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService([]byte("gate-test-secret"), 30*time.Minute)
	gate := Auth(AuthConfig{
		Logger:  discardLogger(),
		Tokens:  tokens,
		Users:   store,
		Cache:   cache,
		Metrics: metrics.NewInMemory(),
	})
	return gate, tokens
}

// identityEcho records the AuthContext the gate injected.
func identityEcho(got **model.AuthContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = auth.AuthFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(gate func(http.Handler) http.Handler, next http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/subscriptions/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	gate(next).ServeHTTP(rec, req)
	return rec
}

func TestAuth_ValidToken(t *testing.T) {
	t.Parallel()

	store := &fakeUserStore{users: map[string]*model.User{
		"user-1": {ID: "user-1", Email: "alice@x.com", IsActive: true},
	}}
	gate, tokens := newGate(t, store, nil)

	token, err := tokens.Issue("user-1", "alice@x.com", 0)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var got *model.AuthContext
	rec := doRequest(gate, identityEcho(&got), "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.UserID != "user-1" || got.Email != "alice@x.com" {
		t.Errorf("unexpected auth context: %+v", got)
	}
}

func TestAuth_MissingOrSentinelToken(t *testing.T) {
	t.Parallel()

	store := &fakeUserStore{users: map[string]*model.User{}}
	gate, _ := newGate(t, store, nil)

	headers := []string{
		"",
		"Bearer ",
		"Bearer null",
		"Bearer undefined",
		"Basic dXNlcjpwYXNz",
	}

	for _, header := range headers {
		rec := doRequest(gate, identityEcho(new(*model.AuthContext)), header)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") != "Bearer" {
			t.Errorf("header %q: expected WWW-Authenticate challenge", header)
		}
	}

	// The store must never be consulted for rejected headers.
	if store.lookups != 0 {
		t.Errorf("expected no user lookups, got %d", store.lookups)
	}
}

func TestAuth_GarbledToken(t *testing.T) {
	t.Parallel()

	store := &fakeUserStore{users: map[string]*model.User{}}
	gate, _ := newGate(t, store, nil)

	rec := doRequest(gate, identityEcho(new(*model.AuthContext)), "Bearer not.a.token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if store.lookups != 0 {
		t.Errorf("expected no user lookups for garbled token, got %d", store.lookups)
	}
}

func TestAuth_ForeignSignature(t *testing.T) {
	t.Parallel()

	store := &fakeUserStore{users: map[string]*model.User{
		"user-1": {ID: "user-1", Email: "alice@x.com"},
	}}
	gate, _ := newGate(t, store, nil)

	foreign := auth.NewTokenService([]byte("some-other-secret"), 30*time.Minute)
	token, err := foreign.Issue("user-1", "alice@x.com", 0)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doRequest(gate, identityEcho(new(*model.AuthContext)), "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for foreign signature, got %d", rec.Code)
	}
}

func TestAuth_UnknownUser(t *testing.T) {
	t.Parallel()

	store := &fakeUserStore{users: map[string]*model.User{}}
	gate, tokens := newGate(t, store, nil)

	// Well-signed token whose subject no longer exists.
	token, err := tokens.Issue("ghost", "ghost@x.com", 0)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doRequest(gate, identityEcho(new(*model.AuthContext)), "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown user, got %d", rec.Code)
	}
}

func TestAuth_StoreFailureIsServerError(t *testing.T) {
	t.Parallel()

	// A database outage must not read as a credential verdict: a 401
	// would make clients discard a token that is still valid.
	recorder := metrics.NewInMemory()
	tokens := auth.NewTokenService([]byte("gate-test-secret"), 30*time.Minute)
	gate := Auth(AuthConfig{
		Logger:  discardLogger(),
		Tokens:  tokens,
		Users:   failingUserStore{},
		Metrics: recorder,
	})

	token, err := tokens.Issue("user-1", "alice@x.com", 0)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doRequest(gate, identityEcho(new(*model.AuthContext)), "Bearer "+token)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on store failure, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") != "" {
		t.Error("store failure must not carry a credential challenge")
	}

	snap := recorder.Snapshot()
	if snap.AuthFailuresStore != 1 {
		t.Errorf("expected 1 store failure recorded, got %d", snap.AuthFailuresStore)
	}
	if snap.AuthFailuresUnknown != 0 {
		t.Errorf("store failure must not count as unknown user, got %d", snap.AuthFailuresUnknown)
	}
}

func TestAuth_CacheSkipsUserLookup(t *testing.T) {
	t.Parallel()

	store := &fakeUserStore{users: map[string]*model.User{
		"user-1": {ID: "user-1", Email: "alice@x.com"},
	}}
	cache := newFakeAuthCache()
	gate, tokens := newGate(t, store, cache)

	token, err := tokens.Issue("user-1", "alice@x.com", 0)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	for i := 0; i < 3; i++ {
		rec := doRequest(gate, identityEcho(new(*model.AuthContext)), "Bearer "+token)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	if store.lookups != 1 {
		t.Errorf("expected exactly 1 user lookup with warm cache, got %d", store.lookups)
	}
}

func TestAuth_ExpiredTokenRejectedDespiteCache(t *testing.T) {
	t.Parallel()

	store := &fakeUserStore{users: map[string]*model.User{
		"user-1": {ID: "user-1", Email: "alice@x.com"},
	}}
	cache := newFakeAuthCache()
	// Cache key is derived from the token string; pre-populate as if a
	// previous request had resolved it.
	gate, _ := newGate(t, store, cache)

	expired := auth.NewTokenService([]byte("gate-test-secret"), time.Nanosecond)
	token, err := expired.Issue("user-1", "alice@x.com", time.Nanosecond)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	cache.entries[auth.QuickHash(token)] = &model.AuthContext{UserID: "user-1", Email: "alice@x.com"}

	time.Sleep(10 * time.Millisecond)

	rec := doRequest(gate, identityEcho(new(*model.AuthContext)), "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token even with cached identity, got %d", rec.Code)
	}
}
