// Package http serves the fintrack JSON API over net/http.
//
// Every request passes through suspicious-request detection, tracing,
// security headers and, for mutations, the per-IP rate limiter. Routes under
// /api/ other than the auth endpoints require a bearer token.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

const (
	maxRecentLimit = 100
	readyTimeout   = 5 * time.Second
)

// TokenService issues and verifies bearer tokens; *auth.TokenIssuer satisfies it.
type TokenService interface {
	Issue(userID string) (string, time.Time, error)
	Parse(token string) (string, error)
}

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators a Server routes to. Pinger may be nil.
type Deps struct {
	Accounts     *services.AccountService
	Categories   *services.CategoryRegistry
	Transactions *services.TransactionService
	Tokens       TokenService
	Pinger       Pinger
	Logger       *applog.Logger

	RateLimitPerMinute int
	TrustedProxies     []string
}

// Server is the API server.
type Server struct {
	http.Server

	accounts     *services.AccountService
	categories   *services.CategoryRegistry
	transactions *services.TransactionService
	tokens       TokenService
	pinger       Pinger
	logger       *applog.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time
}

// NewServer wires routes and middleware. The caller starts it with
// ListenAndServe and stops it with Shutdown.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Accounts == nil || deps.Categories == nil || deps.Transactions == nil {
		return nil, errors.New("http server requires account, category and transaction services")
	}
	if deps.Tokens == nil {
		return nil, errors.New("http server requires a token service")
	}
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}

	s := &Server{
		accounts:     deps.Accounts,
		categories:   deps.Categories,
		transactions: deps.Transactions,
		tokens:       deps.Tokens,
		pinger:       deps.Pinger,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		detector:     security.NewDetector(),
		started:      time.Now(),
	}
	for _, cidr := range deps.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	cfg := ratelimit.DefaultConfig()
	if deps.RateLimitPerMinute > 0 {
		cfg.RequestsPerMinute = deps.RateLimitPerMinute
	}
	s.limiter = ratelimit.NewLimiter(cfg)
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	authed := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.requireAuth(h))
	}
	authed("GET /api/profile", s.handleGetProfile)
	authed("PUT /api/profile", s.handleUpdateProfile)

	authed("GET /api/categories", s.handleListCategories)
	authed("POST /api/categories", s.handleAddCategory)
	authed("DELETE /api/categories/{id}", s.handleDeleteCategory)

	authed("GET /api/transactions", s.handleListTransactions)
	authed("POST /api/transactions", s.handleCreateTransaction)
	authed("GET /api/transactions/recent", s.handleRecentTransactions)
	authed("GET /api/transactions/export", s.handleExportTransactions)
	authed("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	authed("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	authed("GET /api/summary", s.handleSummary)
	authed("GET /api/dashboard", s.handleDashboard)
	authed("GET /api/breakdown", s.handleBreakdown)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, r, http.StatusNotFound, "Not found")
	})

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = applog.ComponentMiddleware(applog.ComponentHTTP)(h)
	h = s.tracer.Middleware(h)
	h = s.detector.Middleware(s.logger)(h)
	return h
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeMessage(w, r, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}

// Shutdown stops accepting requests, drains in-flight ones and stops the
// rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
