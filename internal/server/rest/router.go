// Package rest is the HTTP API of tradeauth: registration, login, session
// lookup, logout and password reset under /api/v1/auth, plus the root,
// health and metrics endpoints.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/tradeauth/internal/logging"
)

type Options struct {
	LoginRateLimit    float64
	LoginBurst        int
	ExposeResetTokens bool
	// SecureCookies marks the session cookie Secure. Enable behind TLS.
	SecureCookies bool
}

// Handler holds the dependencies shared by all routes.
type Handler struct {
	auth    AuthService
	resets  ResetService
	pinger  Pinger
	metrics Metrics
	log     logging.Logger
	limiter *loginLimiter
	opts    Options
}

func NewHandler(auth AuthService, resets ResetService, pinger Pinger, m Metrics, l logging.Logger, opts Options) *Handler {
	return &Handler{
		auth:    auth,
		resets:  resets,
		pinger:  pinger,
		metrics: m,
		log:     l.With("module", "rest"),
		limiter: newLoginLimiter(opts.LoginRateLimit, opts.LoginBurst),
		opts:    opts,
	}
}

// Router builds the chi route tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(h.observe)
	r.Use(middleware.Recoverer)

	r.Get("/", h.root)
	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Mount("/api/v1/auth", h.authRoutes())
	return r
}

func (h *Handler) authRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/register", h.register)
	r.With(h.throttleLogin).Post("/login", h.login)
	r.With(h.sessionMiddleware).Get("/session", h.session)
	r.Post("/logout", h.logout)
	r.Post("/password-reset", h.requestReset)
	r.Post("/password-reset/confirm", h.confirmReset)

	return r
}
