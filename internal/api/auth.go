// ABOUTME: HTTP handlers for authentication: signup, login, logout, me.
// ABOUTME: All auth endpoints live at /api/v1/auth/... and are rate-limited.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/docuvault/docuvault/internal/access"
	"github.com/docuvault/docuvault/internal/auth"
	"github.com/docuvault/docuvault/internal/store"
)

// dummyPasswordHash is a valid PHC-format argon2id hash used for login timing
// normalization. Running VerifyPassword against this for nonexistent users
// prevents email enumeration via response time differences.
const dummyPasswordHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA" //nolint:gosec // G101 false positive: public dummy hash for timing normalization, not a real credential

// authCookie returns the Set-Cookie header value for the access token.
func authCookie(token string, maxAge int, secure bool) string {
	c := &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
	return c.String()
}

// credentials carries the token fields shared by authenticated huma inputs.
type credentials struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
	AccessToken   string `cookie:"access_token"  doc:"Access token cookie"`
}

func (c credentials) token() string {
	const prefix = "Bearer "
	if len(c.Authorization) > len(prefix) && c.Authorization[:len(prefix)] == prefix {
		return c.Authorization[len(prefix):]
	}
	return c.AccessToken
}

// resolveActor authenticates the token and resolves the caller into an
// access.Actor: user row, role title, and role-derived access level. Soft
// deleted users fail authentication; a role without a matching access level
// is a reference-data integrity failure surfaced as not-found.
func (srv *Server) resolveActor(ctx context.Context, creds credentials) (*access.Actor, *store.User, error) {
	token := creds.token()
	if token == "" {
		return nil, nil, huma.Error401Unauthorized("authentication required")
	}
	claims, err := auth.ParseToken(token, []byte(srv.cfg.JWTSecret))
	if err != nil {
		return nil, nil, huma.Error401Unauthorized("invalid or expired access token")
	}

	user, err := srv.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "resolve actor: get user", "error", err)
		return nil, nil, huma.Error500InternalServerError("internal error")
	}
	if user == nil {
		return nil, nil, huma.Error401Unauthorized("invalid or expired access token")
	}

	role, err := srv.store.GetRoleByID(ctx, user.RoleID)
	if err != nil {
		slog.ErrorContext(ctx, "resolve actor: get role", "error", err)
		return nil, nil, huma.Error500InternalServerError("internal error")
	}
	if role == nil {
		return nil, nil, huma.Error404NotFound("role not found")
	}

	level, err := srv.table.ResolveActorLevel(role.Title)
	if err != nil {
		slog.WarnContext(ctx, "resolve actor: no access level for role", "role", role.Title)
		return nil, nil, huma.Error404NotFound("access level for role not found")
	}

	return &access.Actor{ID: user.ID, RoleTitle: role.Title, Level: level}, user, nil
}

// ── Signup ────────────────────────────────────────────────────────────────────

// signupInput is the request body for POST /auth/signup.
type signupInput struct {
	Body struct {
		Firstname string `json:"firstname" minLength:"1" maxLength:"100"  doc:"First name"`
		Lastname  string `json:"lastname"  minLength:"1" maxLength:"100"  doc:"Last name"`
		Role      string `json:"role"      minLength:"4" maxLength:"10"   doc:"Role title (e.g. regular)"`
		Username  string `json:"username"  minLength:"1" maxLength:"100"  doc:"Unique username"`
		Email     string `json:"email"     format:"email" maxLength:"254" doc:"User email address"`
		Password  string `json:"password"  minLength:"8"  maxLength:"1024" doc:"Password (min 8 characters)"`
	}
}

// signupOutput is the response body for POST /auth/signup.
type signupOutput struct {
	Status int
	Body   struct {
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}
}

// signupHandler handles POST /api/v1/auth/signup.
// The chosen role is resolved by title and is immutable after creation. Users
// signing up with the admin role get the admin flag.
func (srv *Server) signupHandler(ctx context.Context, input *signupInput) (*signupOutput, error) {
	role, err := srv.store.GetRoleByTitle(ctx, input.Body.Role)
	if err != nil {
		slog.ErrorContext(ctx, "signup: lookup role", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}
	if role == nil {
		return nil, huma.Error404NotFound("role not found")
	}

	// Fast-path duplicate checks before the expensive hash. The unique indexes
	// remain the authoritative guard against the concurrent race.
	if existing, err := srv.store.GetUserByEmail(ctx, input.Body.Email); err != nil {
		slog.ErrorContext(ctx, "signup: lookup email", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	} else if existing != nil {
		return nil, huma.Error409Conflict("email already registered")
	}
	if existing, err := srv.store.GetUserByUsername(ctx, input.Body.Username); err != nil {
		slog.ErrorContext(ctx, "signup: lookup username", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	} else if existing != nil {
		return nil, huma.Error409Conflict("username already taken")
	}

	if !srv.acquireArgon2() {
		return nil, huma.Error503ServiceUnavailable("server busy, please retry")
	}
	hash, err := auth.HashPassword(input.Body.Password)
	srv.releaseArgon2()
	if err != nil {
		slog.ErrorContext(ctx, "signup: hash password", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}

	user, err := srv.store.CreateUser(ctx, store.CreateUserParams{
		Firstname:    input.Body.Firstname,
		Lastname:     input.Body.Lastname,
		RoleID:       role.ID,
		Username:     input.Body.Username,
		Email:        input.Body.Email,
		PasswordHash: hash,
		IsAdmin:      role.Title == "admin",
	})
	if err != nil {
		if store.IsUniqueViolation(err) { // unique_violation, race on concurrent signup
			return nil, huma.Error409Conflict("email or username already taken")
		}
		slog.ErrorContext(ctx, "signup: create user", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}

	out := &signupOutput{}
	out.Status = http.StatusCreated
	out.Body.UserID = user.ID.String()
	out.Body.Username = user.Username
	out.Body.Role = role.Title
	return out, nil
}

// ── Login ─────────────────────────────────────────────────────────────────────

// loginInput is the request body for POST /auth/login.
type loginInput struct {
	Body struct {
		Email    string `json:"email"    format:"email" maxLength:"254"  doc:"User email"`
		Password string `json:"password" minLength:"8"  maxLength:"1024" doc:"Password"`
	}
}

// loginOutput sets the auth cookie and returns the token for Bearer use.
type loginOutput struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		Token string `json:"token"`
	}
}

// loginHandler handles POST /api/v1/auth/login.
// Nonexistent users still run argon2 to normalize response timing (prevents
// email enumeration).
func (srv *Server) loginHandler(ctx context.Context, input *loginInput) (*loginOutput, error) {
	user, err := srv.store.GetUserByEmail(ctx, input.Body.Email)
	if err != nil {
		slog.ErrorContext(ctx, "login: lookup email", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}

	if user == nil {
		if !srv.acquireArgon2() {
			return nil, huma.Error503ServiceUnavailable("server busy, please retry")
		}
		_, _ = auth.VerifyPassword(input.Body.Password, dummyPasswordHash)
		srv.releaseArgon2()
		return nil, huma.Error401Unauthorized("invalid credentials")
	}

	if !srv.acquireArgon2() {
		return nil, huma.Error503ServiceUnavailable("server busy, please retry")
	}
	ok, err := auth.VerifyPassword(input.Body.Password, user.PasswordHash)
	srv.releaseArgon2()
	if err != nil {
		slog.ErrorContext(ctx, "login: verify password", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}
	if !ok {
		return nil, huma.Error401Unauthorized("invalid credentials")
	}

	token, err := auth.IssueToken([]byte(srv.cfg.JWTSecret), user.ID, user.IsAdmin, srv.cfg.AccessTokenTTL)
	if err != nil {
		slog.ErrorContext(ctx, "login: issue token", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}

	out := &loginOutput{
		SetCookie: authCookie(token, int(srv.cfg.AccessTokenTTL.Seconds()), srv.cfg.CookieSecure),
	}
	out.Body.Token = token
	return out, nil
}

// ── Logout ────────────────────────────────────────────────────────────────────

type logoutInput struct{}

// logoutOutput clears the auth cookie.
type logoutOutput struct {
	SetCookie string `header:"Set-Cookie"`
}

// logoutHandler handles POST /api/v1/auth/logout.
// Tokens are stateless; logout just expires the cookie client-side.
func (srv *Server) logoutHandler(ctx context.Context, _ *logoutInput) (*logoutOutput, error) {
	return &logoutOutput{SetCookie: authCookie("", -1, srv.cfg.CookieSecure)}, nil
}

// ── Me ────────────────────────────────────────────────────────────────────────

// meInput reads the access token from either transport.
type meInput struct {
	credentials
}

// meOutput is the response body for GET /auth/me.
type meOutput struct {
	Body struct {
		UserID    string `json:"user_id"`
		Firstname string `json:"firstname"`
		Lastname  string `json:"lastname"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		Role      string `json:"role"`
		Level     string `json:"level"`
		Rank      int    `json:"rank"`
		IsAdmin   bool   `json:"is_admin"`
	}
}

// meHandler handles GET /api/v1/auth/me.
func (srv *Server) meHandler(ctx context.Context, input *meInput) (*meOutput, error) {
	actor, user, err := srv.resolveActor(ctx, input.credentials)
	if err != nil {
		return nil, err
	}

	out := &meOutput{}
	out.Body.UserID = user.ID.String()
	out.Body.Firstname = user.Firstname
	out.Body.Lastname = user.Lastname
	out.Body.Username = user.Username
	out.Body.Email = user.Email
	out.Body.Role = actor.RoleTitle
	out.Body.Level = actor.Level.Name
	out.Body.Rank = actor.Level.Rank
	out.Body.IsAdmin = user.IsAdmin
	return out, nil
}

// ── Route registration ────────────────────────────────────────────────────────

// registerAuthRoutes registers all auth-related routes on the huma API.
func registerAuthRoutes(api huma.API, srv *Server) {
	huma.Register(api, huma.Operation{
		OperationID:   "signup",
		Method:        http.MethodPost,
		Path:          "/auth/signup",
		Tags:          []string{"auth"},
		Summary:       "Sign up a new user account",
		DefaultStatus: http.StatusCreated,
	}, srv.signupHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "login",
		Method:        http.MethodPost,
		Path:          "/auth/login",
		Tags:          []string{"auth"},
		Summary:       "Log in and receive an access token",
		DefaultStatus: http.StatusOK,
	}, srv.loginHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "logout",
		Method:        http.MethodPost,
		Path:          "/auth/logout",
		Tags:          []string{"auth"},
		Summary:       "Log out and clear the auth cookie",
		DefaultStatus: http.StatusOK,
	}, srv.logoutHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-me",
		Method:      http.MethodGet,
		Path:        "/auth/me",
		Tags:        []string{"auth"},
		Summary:     "Get the current user's profile and access level",
	}, srv.meHandler)
}
