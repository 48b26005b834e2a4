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

	"github.com/carnet/carnet/internal/auth"
	"github.com/carnet/carnet/internal/metrics"
	"github.com/carnet/carnet/internal/model"
	"github.com/carnet/carnet/internal/repository"
)

type fakeUserSource struct {
	users map[int64]*model.User
	err   error
}

func (f *fakeUserSource) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type fakeUserCache struct {
	users map[int64]*model.User
	sets  int
}

func (f *fakeUserCache) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	return f.users[userID], nil
}

func (f *fakeUserCache) SetUser(ctx context.Context, user *model.User) error {
	f.users[user.ID] = user
	f.sets++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthTestEnv(t *testing.T) (*auth.TokenIssuer, *fakeUserSource, *metrics.InMemoryRecorder, http.Handler) {
	t.Helper()

	issuer := auth.NewTokenIssuer([]byte("mw-test-secret"), 24*time.Hour)
	users := &fakeUserSource{users: map[int64]*model.User{
		1: {ID: 1, Username: "alice", Email: "a@x.com"},
	}}
	recorder := metrics.NewInMemory()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		if user == nil {
			t.Error("expected resolved user in context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := Auth(AuthConfig{
		Logger:   discardLogger(),
		Verifier: issuer,
		Users:    users,
		Metrics:  recorder,
	})(next)

	return issuer, users, recorder, handler
}

func doRequest(handler http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/personnes", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuth_ValidToken(t *testing.T) {
	issuer, _, recorder, handler := newAuthTestEnv(t)

	token, err := issuer.Issue(1, time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	rec := doRequest(handler, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if got := recorder.Snapshot().AuthSuccesses; got != 1 {
		t.Errorf("expected 1 auth success, got %d", got)
	}
}

func TestAuth_FailuresAreIndistinguishable(t *testing.T) {
	issuer, _, _, handler := newAuthTestEnv(t)

	expired, err := issuer.Issue(1, time.Now().UTC().Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	vanished, err := issuer.Issue(404, time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing_header", ""},
		{"not_bearer", "Basic abc123"},
		{"garbage_token", "Bearer not-a-token"},
		{"expired_token", "Bearer " + expired},
		{"user_vanished", "Bearer " + vanished},
	}

	var bodies []string
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := doRequest(handler, test.header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			bodies = append(bodies, rec.Body.String())
		})
	}

	// Every failure mode returns the exact same body; only logs differ.
	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Errorf("auth failure bodies differ: %q vs %q", bodies[0], bodies[i])
		}
	}
}

func TestAuth_FailureReasonsAreRecordedDistinctly(t *testing.T) {
	issuer, _, recorder, handler := newAuthTestEnv(t)

	expired, err := issuer.Issue(1, time.Now().UTC().Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	vanished, err := issuer.Issue(404, time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	doRequest(handler, "")
	doRequest(handler, "Bearer garbage")
	doRequest(handler, "Bearer "+expired)
	doRequest(handler, "Bearer "+vanished)

	failures := recorder.Snapshot().AuthFailures
	for _, reason := range []string{"missing_token", "malformed", "expired", "user_not_found"} {
		if failures[reason] != 1 {
			t.Errorf("expected 1 %s failure, got %d", reason, failures[reason])
		}
	}
}

func TestAuth_StoreErrorIsServerFault(t *testing.T) {
	issuer, users, _, handler := newAuthTestEnv(t)
	users.err = errors.New("connection refused")

	token, err := issuer.Issue(1, time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	rec := doRequest(handler, "Bearer "+token)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for store outage, got %d", rec.Code)
	}
	// No internal detail leaks.
	if body := rec.Body.String(); body != `{"error":"an internal error occurred","code":"INTERNAL_ERROR"}` {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestAuth_CacheShortCircuitsLookup(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("mw-test-secret"), 24*time.Hour)
	users := &fakeUserSource{users: map[int64]*model.User{
		1: {ID: 1, Username: "alice", Email: "a@x.com"},
	}}
	cache := &fakeUserCache{users: make(map[int64]*model.User)}
	recorder := metrics.NewInMemory()

	handler := Auth(AuthConfig{
		Logger:   discardLogger(),
		Verifier: issuer,
		Users:    users,
		Cache:    cache,
		Metrics:  recorder,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	token, err := issuer.Issue(1, time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// First request misses the cache and populates it.
	if rec := doRequest(handler, "Bearer "+token); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache to be populated once, got %d sets", cache.sets)
	}

	// Second request is served from cache even if the store breaks.
	users.err = errors.New("store down")
	if rec := doRequest(handler, "Bearer "+token); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from cache, got %d", rec.Code)
	}

	snapshot := recorder.Snapshot()
	if snapshot.AuthCacheHits != 1 {
		t.Errorf("expected 1 cache hit, got %d", snapshot.AuthCacheHits)
	}
}
