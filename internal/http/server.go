// Package http exposes the bookkeeping API: ledger entries, reminders,
// monthly reports, tax estimates, exports and authentication.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"contable/internal/auth"
	"contable/internal/cache"
	"contable/internal/core"
	applog "contable/internal/log"
	"contable/internal/middleware/ratelimit"
	"contable/internal/middleware/trace"
	"contable/internal/session"
	"contable/internal/store"
	"contable/internal/tax"
)

type contextKey string

const userContextKey contextKey = "user"

const sessionCookie = "contable_session"

// SheetsExporter is the optional offsite spreadsheet sink.
type SheetsExporter interface {
	AppendEntries(ctx context.Context, entries []core.Entry) (int, error)
}

// Config wires the server's collaborators.
type Config struct {
	Store       store.Store
	Sessions    *session.Manager
	Oracle      auth.Oracle
	Estimator   tax.Estimator
	CORSOrigins []string
	// Sheets is optional; nil disables the sheets export endpoint.
	Sheets SheetsExporter
	// AuthRequestsPerMinute bounds login/register attempts per client IP.
	AuthRequestsPerMinute int
}

type Server struct {
	store     store.Store
	sessions  *session.Manager
	oracle    auth.Oracle
	estimator tax.Estimator
	sheets    SheetsExporter
	reports   *cache.LRUCache[json.RawMessage]
	limiter   *ratelimit.Limiter
	cors      []string
	now       func() time.Time
	unsubAuth auth.UnsubscribeFunc

	mu     sync.Mutex
	tokens map[string]auth.User
}

func NewServer(cfg Config) *Server {
	perMinute := cfg.AuthRequestsPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	s := &Server{
		store:     cfg.Store,
		sessions:  cfg.Sessions,
		oracle:    cfg.Oracle,
		estimator: cfg.Estimator,
		sheets:    cfg.Sheets,
		reports:   cache.NewLRUCache[json.RawMessage](256, 5*time.Minute),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: perMinute}),
		cors:      cfg.CORSOrigins,
		now:       time.Now,
		tokens:    map[string]auth.User{},
	}

	// A sign-out ends the owner's reminder session: in-flight passes finish,
	// no further ones are scheduled. The next authenticated request reopens
	// it on demand.
	if s.oracle != nil && s.sessions != nil {
		s.unsubAuth = s.oracle.OnAuthChange(func(change auth.AuthChange) {
			if !change.SignedIn {
				s.sessions.Drop(change.User.ID)
			}
		})
	}

	return s
}

// SetClock overrides the server clock, for tests.
func (s *Server) SetClock(now func() time.Time) { s.now = now }

// Shutdown releases background resources.
func (s *Server) Shutdown() {
	if s.unsubAuth != nil {
		s.unsubAuth()
	}
	s.limiter.Shutdown()
}

// Router builds the chi router with the full API surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(trace.Middleware)
	r.Use(applog.Middleware(applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cors,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Group(func(pub chi.Router) {
			pub.Use(s.limiter.Middleware)
			pub.Post("/auth/register", s.handleRegister)
			pub.Post("/auth/login", s.handleLogin)
		})
		api.Post("/auth/logout", s.handleLogout)

		api.Group(func(priv chi.Router) {
			priv.Use(s.requireAuth)

			priv.Get("/entries", s.handleListEntries)
			priv.Post("/entries", s.handleCreateEntry)
			priv.Put("/entries/{id}", s.handleUpdateEntry)
			priv.Delete("/entries/{id}", s.handleDeleteEntry)

			priv.Get("/reminders", s.handleListReminders)
			priv.Post("/reminders", s.handleCreateReminder)
			priv.Patch("/reminders/{id}", s.handlePatchReminder)
			priv.Delete("/reminders/{id}", s.handleDeleteReminder)
			priv.Get("/reminders/badge", s.handleBadge)
			priv.Get("/reminders/upcoming", s.handleUpcoming)

			priv.Get("/reports/month", s.handleMonthReport)
			priv.Get("/reports/categories", s.handleCategoryReport)

			priv.Post("/tax/estimate", s.handleTaxEstimate)

			priv.Get("/export/csv", s.handleExportCSV)
			priv.Get("/export/html", s.handleExportHTML)
			priv.Post("/export/sheets", s.handleExportSheets)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// issueToken creates a bearer token for the user.
func (s *Server) issueToken(u auth.User) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = u
	s.mu.Unlock()
	return token
}

func (s *Server) revokeToken(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

func (s *Server) userForToken(token string) (auth.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.tokens[token]
	return u, ok
}

// requestToken pulls the bearer token from the Authorization header or the
// session cookie.
func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := requestToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "No autenticado")
			return
		}
		u, ok := s.userForToken(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Sesión expirada")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the authenticated user placed by requireAuth.
func currentUser(r *http.Request) auth.User {
	u, _ := r.Context().Value(userContextKey).(auth.User)
	return u
}
