// ABOUTME: Integration tests for auth HTTP handlers (signup, login, logout, me).
// ABOUTME: Uses real Postgres via testutil.NewTestDB and the full srv.Handler() stack.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docuvault/docuvault/internal/access"
	"github.com/docuvault/docuvault/internal/config"
	"github.com/docuvault/docuvault/internal/store"
	"github.com/docuvault/docuvault/internal/testutil"
)

// cookieValue extracts the value of a named cookie from an HTTP response.
// Returns "" if not found.
func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// newTestServer creates a full Server + httptest.Server over a migrated,
// seeded database with the rank table loaded.
func newTestServer(t *testing.T, db *store.Store) (*Server, *httptest.Server) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:           "authtestsecret",
		AccessTokenTTL:      time.Hour,
		Argon2MaxConcurrent: 5,
		// Generous budget so functional tests never trip the auth limiter.
		RateLimitPerMinute: 6000,
		RateLimitBurst:     1000,
	}
	table := access.NewTable()
	if err := table.Reload(context.Background(), db); err != nil {
		t.Fatalf("load rank table: %v", err)
	}
	srv := NewServer(db, cfg, table)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

// doSignup signs up a user with the given role and returns the parsed
// response body. Fails the test if the response status is not 201.
func doSignup(t *testing.T, ctx context.Context, ts *httptest.Server, username, email, role string) struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
} {
	t.Helper()
	body := fmt.Sprintf(
		`{"firstname":"Test","lastname":"User","role":%q,"username":%q,"email":%q,"password":"password123"}`,
		role, username, email,
	)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/api/v1/auth/signup", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("signup request: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck,gosec // G104
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: got %d, want 201", resp.StatusCode)
	}
	var out struct {
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("signup decode: %v", err)
	}
	return out
}

// doLogin logs in and returns the Bearer token from the response body.
// Fails the test if the response status is not 200.
func doLogin(t *testing.T, ctx context.Context, ts *httptest.Server, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"password123"}`, email)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/api/v1/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck,gosec // G104
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: got %d, want 200", resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("login decode: %v", err)
	}
	if out.Token == "" {
		t.Fatal("login: token missing from response body")
	}
	return out.Token
}

func TestSignupAndLogin(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	_, ts := newTestServer(t, db)

	out := doSignup(t, ctx, ts, "alice", "alice@example.com", "regular")
	if out.UserID == "" {
		t.Error("user_id missing from response")
	}
	if out.Role != "regular" {
		t.Errorf("role = %q, want %q", out.Role, "regular")
	}

	body := `{"email":"alice@example.com","password":"password123"}`
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/api/v1/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck,gosec // G104
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: got %d, want 200", resp.StatusCode)
	}
	if cookieValue(resp, "access_token") == "" {
		t.Error("access_token cookie not set")
	}
}

func TestSignupUnknownRole(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	_, ts := newTestServer(t, db)

	body := `{"firstname":"Test","lastname":"User","role":"wizard","username":"bob","email":"bob@example.com","password":"password123"}`
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/api/v1/auth/signup", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck,gosec // G104
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("got %d, want 404", resp.StatusCode)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	_, ts := newTestServer(t, db)

	doSignup(t, ctx, ts, "carol", "carol@example.com", "regular")

	body := `{"firstname":"Other","lastname":"User","role":"regular","username":"carol2","email":"carol@example.com","password":"password123"}`
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/api/v1/auth/signup", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck,gosec // G104
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("got %d, want 409", resp.StatusCode)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	_, ts := newTestServer(t, db)

	doSignup(t, ctx, ts, "dave", "dave@example.com", "regular")

	body := `{"email":"dave@example.com","password":"wrongpassword"}`
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/api/v1/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck,gosec // G104
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("got %d, want 401", resp.StatusCode)
	}
}

func TestMe(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	_, ts := newTestServer(t, db)

	doSignup(t, ctx, ts, "erin", "erin@example.com", "admin")
	token := doLogin(t, ctx, ts, "erin@example.com")

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("me request: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck,gosec // G104
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: got %d, want 200", resp.StatusCode)
	}

	var out struct {
		Username string `json:"username"`
		Role     string `json:"role"`
		Level    string `json:"level"`
		Rank     int    `json:"rank"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Username != "erin" {
		t.Errorf("username = %q, want %q", out.Username, "erin")
	}
	if out.Role != "admin" || out.Level != "admin" || out.Rank != access.RankAdmin {
		t.Errorf("role/level/rank = %q/%q/%d, want admin/admin/%d", out.Role, out.Level, out.Rank, access.RankAdmin)
	}
	if !out.IsAdmin {
		t.Error("is_admin = false, want true")
	}
}

func TestMeUnauthenticated(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	_, ts := newTestServer(t, db)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/auth/me", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck,gosec // G104
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("got %d, want 401", resp.StatusCode)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	_, ts := newTestServer(t, db)

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/api/v1/auth/logout", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("logout request: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck,gosec // G104
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: got %d, want 200", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "access_token" && c.MaxAge >= 0 {
			t.Errorf("access_token cookie MaxAge = %d, want negative", c.MaxAge)
		}
	}
}
