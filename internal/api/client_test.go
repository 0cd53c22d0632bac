package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/abenov/coursehub/internal/api"
	"github.com/abenov/coursehub/internal/domain"
	"github.com/abenov/coursehub/internal/token"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T, srv *httptest.Server) (*api.Client, *token.Store) {
	t.Helper()
	store := token.NewStore(filepath.Join(t.TempDir(), "token"))
	return api.NewClient(srv.URL, 5*time.Second, store, discard()), store
}

func TestDo_AttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, store := newClient(t, srv)
	if err := store.Set("tok-1"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	if err := c.Do(context.Background(), http.MethodGet, "/users/profile", nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotID == "" {
		t.Error("no X-Request-ID sent")
	}
}

func TestDo_NoStoredToken_NoBearerHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	c, _ := newClient(t, srv)
	if err := c.Do(context.Background(), http.MethodGet, "/courses", nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want none", gotAuth)
	}
}

// A 401 clears the stored token whatever the endpoint; the triggering
// request does not have to be an auth call.
func TestDo_401FromAnyEndpoint_ClearsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, store := newClient(t, srv)
	if err := store.Set("stale-token"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	err := c.Do(context.Background(), http.MethodGet, "/courses", nil, nil, nil)

	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if store.Present() {
		t.Error("token survived a server-confirmed 401")
	}
}

func TestDo_ServerError_ParsedAsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	c, store := newClient(t, srv)
	err := c.Do(context.Background(), http.MethodPost, "/users/login", nil, map[string]string{}, nil)

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want APIError, got %v", err)
	}
	if apiErr.Message != "Invalid credentials" || apiErr.Status != http.StatusBadRequest {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if store.Present() {
		t.Error("non-401 failure touched the token store")
	}
}

func TestDo_Connectivity_WrapsErrNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	c, _ := newClient(t, srv)
	err := c.Do(context.Background(), http.MethodGet, "/courses", nil, nil, nil)

	if !errors.Is(err, domain.ErrNoResponse) {
		t.Errorf("want ErrNoResponse, got %v", err)
	}
}

func TestLogin_ParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":{"user":{"_id":"u-1","fullName":"Alice","role":"student"},"token":"tok-1"}}`))
	}))
	defer srv.Close()

	c, _ := newClient(t, srv)
	res, err := c.Login(context.Background(), "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.User.ID != "u-1" || res.Token != "tok-1" {
		t.Errorf("result = %+v", res)
	}
}

func TestProfile_ParsesUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"_id":"u-2","role":"instructor","isVerified":true}}`))
	}))
	defer srv.Close()

	c, _ := newClient(t, srv)
	u, err := c.Profile(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "u-2" || u.Role != domain.RoleInstructor || !u.IsVerified {
		t.Errorf("user = %+v", u)
	}
}
