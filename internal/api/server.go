// ABOUTME: HTTP server struct, constructor, and handler wiring for Docuvault.
// ABOUTME: Holds auth dependencies (store, config, rank table, argon2 semaphore) used by handlers.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/docuvault/docuvault/internal/access"
	"github.com/docuvault/docuvault/internal/config"
	"github.com/docuvault/docuvault/internal/store"
)

// Server holds the dependencies for the HTTP layer.
type Server struct {
	store       *store.Store
	cfg         *config.Config
	table       *access.Table
	argon2Sem   chan struct{}
	rateLimiter *ipRateLimiter
}

// NewServer creates a Server. The rank table must already be loaded (or be
// loaded before the first request) by the caller.
func NewServer(s *store.Store, cfg *config.Config, table *access.Table) *Server {
	sem := make(chan struct{}, cfg.Argon2MaxConcurrent)
	evictTTL := cfg.RateLimitEvictTTL
	if evictTTL == 0 {
		evictTTL = 15 * time.Minute
	}
	perMinute := cfg.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 10
	}
	rl := newIPRateLimiter(rate.Limit(float64(perMinute)/60), burst, evictTTL)
	return &Server{
		store:       s,
		cfg:         cfg,
		table:       table,
		argon2Sem:   sem,
		rateLimiter: rl,
	}
}

// Handler builds and returns the http.Handler.
func (srv *Server) Handler() http.Handler {
	var db *pgxpool.Pool
	if srv.store != nil {
		db = srv.store.Pool()
	}
	r := chi.NewRouter()

	// ── Security headers ──────────────────────────────────────────────────────
	// Must be first so they appear on every response including errors.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	})

	// ── Standard chi middleware ───────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	// 1 MB global body limit protects against OOM from large request bodies.
	r.Use(middleware.RequestSize(1 << 20))
	r.Use(middleware.Recoverer)

	// ── Infrastructure endpoints ──────────────────────────────────────────────
	r.Get("/healthz", healthzHandler(db))
	r.Handle("/metrics", promhttp.Handler())

	// ── API v1 sub-router with huma (OpenAPI 3.1) ────────────────────────────
	apiRouter := chi.NewRouter()
	apiRouter.Use(srv.authRateLimit())
	apiRouter.Use(csrfProtect)
	humaConfig := huma.DefaultConfig("Docuvault API", "0.1.0")
	humaConfig.Info.Description = "Document management API with role-derived access control"
	api := humachi.New(apiRouter, humaConfig)
	registerAuthRoutes(api, srv)
	registerDocumentRoutes(api, srv)

	// ── Reference-data routes (chi, not huma, for admin middleware) ──────────
	apiRouter.Route("/roles", func(r chi.Router) {
		r.Use(srv.RequireAuthenticated())
		r.Get("/", srv.listRolesHandler)
		r.Get("/{id}", srv.getRoleHandler)
		r.With(srv.RequireAdmin()).Post("/", srv.createRoleHandler)
		r.With(srv.RequireAdmin()).Put("/{id}", srv.updateRoleHandler)
	})
	apiRouter.Route("/types", func(r chi.Router) {
		r.Use(srv.RequireAuthenticated())
		r.Get("/", srv.listDocTypesHandler)
		r.Get("/{id}", srv.getDocTypeHandler)
		r.With(srv.RequireAdmin()).Post("/", srv.createDocTypeHandler)
		r.With(srv.RequireAdmin()).Put("/{id}", srv.updateDocTypeHandler)
	})
	apiRouter.Route("/access-levels", func(r chi.Router) {
		r.Use(srv.RequireAuthenticated())
		r.Get("/", srv.listAccessLevelsHandler)
	})
	apiRouter.Route("/users", func(r chi.Router) {
		r.Use(srv.RequireAuthenticated())
		r.With(srv.RequireAdmin()).Get("/", srv.listUsersHandler)
		r.Get("/{id}", srv.getUserHandler)
		r.Put("/{id}", srv.updateUserHandler)
		r.With(srv.RequireAdmin()).Delete("/{id}", srv.deleteUserHandler)
	})

	r.Mount("/api/v1", apiRouter)

	return r
}

// acquireArgon2 tries to acquire the argon2 semaphore. Returns false if all
// slots are in use, the caller should return 503 immediately (do NOT block).
func (srv *Server) acquireArgon2() bool {
	select {
	case srv.argon2Sem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (srv *Server) releaseArgon2() { <-srv.argon2Sem }

// healthResponse is the JSON body for /healthz.
type healthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db,omitempty"`
}

// healthzHandler returns 200 {"status":"ok"} when the DB is reachable,
// or 503 {"status":"degraded","db":"unavailable"} when it is not.
func healthzHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		statusCode := http.StatusOK

		if db == nil {
			resp.Status = "degraded"
			resp.DB = "unavailable"
			statusCode = http.StatusServiceUnavailable
		} else if err := db.Ping(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "healthz: db ping failed", "error", err)
			resp.Status = "degraded"
			resp.DB = "unavailable"
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.ErrorContext(r.Context(), "healthz: failed to encode response", "error", err)
		}
	}
}
