// ABOUTME: Unit and integration tests for the per-IP rate limiter.
package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/docuvault/docuvault/internal/access"
	"github.com/docuvault/docuvault/internal/config"
	"github.com/docuvault/docuvault/internal/testutil"
)

func TestIPRateLimiterBurst(t *testing.T) {
	t.Parallel()
	// 1 req/hour with burst 3: the first three calls pass, the fourth is denied.
	rl := newIPRateLimiter(rate.Limit(1.0/3600), 3, time.Hour)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d denied, want allowed within burst", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request beyond burst allowed, want denied")
	}
}

func TestIPRateLimiterPerIP(t *testing.T) {
	t.Parallel()
	rl := newIPRateLimiter(rate.Limit(1.0/3600), 1, time.Hour)

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request from first IP denied")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("second request from same IP allowed, want denied")
	}
	// A different IP gets its own bucket.
	if !rl.Allow("10.0.0.2") {
		t.Error("first request from second IP denied, want allowed")
	}
}

// The limiter middleware runs on the sub-router behind the /api/v1 mount, so
// it must match the mount-stripped route path, not the full URL path.
func TestAuthRateLimitedUnderMount(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	cfg := &config.Config{
		JWTSecret:           "ratelimittestsecret",
		AccessTokenTTL:      time.Hour,
		Argon2MaxConcurrent: 5,
		RateLimitPerMinute:  1,
		RateLimitBurst:      3,
	}
	table := access.NewTable()
	if err := table.Reload(ctx, db); err != nil {
		t.Fatalf("load rank table: %v", err)
	}
	srv := NewServer(db, cfg, table)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	doLogout := func() *http.Response {
		req, _ := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/api/v1/auth/logout", nil)
		resp, err := ts.Client().Do(req)
		if err != nil {
			t.Fatalf("logout request: %v", err)
		}
		resp.Body.Close() //nolint:errcheck,gosec // G104
		return resp
	}

	for i := 0; i < 3; i++ {
		if resp := doLogout(); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200 within burst", i+1, resp.StatusCode)
		}
	}

	resp := doLogout()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("request beyond burst: got %d, want 429", resp.StatusCode)
	}
	if got := resp.Header.Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want %q", got, "60")
	}

	// Non-auth routes under the same mount are not limited; an unauthenticated
	// request fails with 401, not 429.
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/access-levels", nil)
	other, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("access-levels request: %v", err)
	}
	defer other.Body.Close() //nolint:errcheck,gosec // G104
	if other.StatusCode != http.StatusUnauthorized {
		t.Errorf("access-levels: got %d, want 401", other.StatusCode)
	}
}
