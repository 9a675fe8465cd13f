package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/esime/ielec/archive"
	"github.com/esime/ielec/auth"
	"github.com/esime/ielec/auth/email"
	"github.com/esime/ielec/clients"
	"github.com/esime/ielec/config"
	"github.com/esime/ielec/database"
	"github.com/esime/ielec/history"
	"github.com/esime/ielec/report"
)

// Deps are the collaborators a server is built on. Only DB is required.
type Deps struct {
	DB      *database.DB
	History history.Repository // default: per history.store
	Email   email.Provider     // default: provider selected by the email config
	Archive archive.Store      // nil disables report archiving
	Logger  *zap.Logger
}

// Server represents an ielec web server instance.
type Server struct {
	config  *config.Config
	stdout  io.Writer
	logger  *zap.Logger
	mux     *http.ServeMux
	server  *http.Server
	maxBody int64

	users    *auth.Store
	accounts *auth.Handlers
	gate     *auth.Middleware
	history  history.Repository
	clients  *clients.Store
	archive  archive.Store
	locale   *report.Locale
	logo     []byte
	limiter  *rateLimiter
}

// New creates a new ielec server with the given configuration.
func New(cfg *config.Config, deps Deps, stdout io.Writer) (*Server, error) {
	if deps.DB == nil {
		return nil, errors.New("server: database is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBody, err := config.ParseSize(cfg.Server.MaxBodySize)
	if err != nil {
		return nil, fmt.Errorf("server.max_body_size: %w", err)
	}

	secret, err := config.ResolveSecretValue(cfg.Auth.JWTSecret, "")
	if err != nil {
		return nil, fmt.Errorf("resolving jwt secret: %w", err)
	}
	issuer, err := auth.NewIssuer(secret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	provider := deps.Email
	if provider == nil {
		provider, err = email.New(cfg.Email, logger)
		if err != nil {
			return nil, fmt.Errorf("configuring email: %w", err)
		}
	}

	locale, err := report.NewLocale(cfg.Report.Locale)
	if err != nil {
		return nil, err
	}
	var logo []byte
	if cfg.Report.Logo != "" {
		logo, err = os.ReadFile(cfg.Report.Logo)
		if err != nil {
			return nil, fmt.Errorf("reading report logo: %w", err)
		}
	}

	repo := deps.History
	switch {
	case repo != nil:
	case cfg.History.Store == "memory":
		repo = history.NewMemory(cfg.History.MaxPerUser)
	default:
		repo = history.NewSQL(deps.DB, cfg.History.MaxPerUser)
	}

	users := auth.NewStore(deps.DB)
	cookies := auth.Cookies{Name: cfg.Auth.CookieName, Secure: !cfg.Server.Dev}
	mailer := auth.NewMailer(provider, users, cfg.Email.From, cfg.Email.SiteName, cfg.Auth.BaseURL, logger)

	s := &Server{
		config:  cfg,
		stdout:  stdout,
		logger:  logger,
		mux:     http.NewServeMux(),
		maxBody: maxBody,
		users:   users,
		accounts: auth.NewHandlers(users, issuer, mailer, cookies, auth.Options{
			RegistrationOpen:  cfg.Auth.Registration != "closed",
			MinPasswordLength: cfg.Auth.MinPasswordLength,
			ResetTokenTTL:     cfg.Auth.ResetTokenTTL,
			ResetCooldown:     cfg.Auth.ResetCooldown,
			MaxResetsPerDay:   cfg.Auth.MaxResetsPerDay,
		}, logger),
		gate:    auth.NewMiddleware(issuer, cookies, logger),
		history: repo,
		clients: clients.NewStore(deps.DB),
		archive: deps.Archive,
		locale:  locale,
		logo:    logo,
	}
	if cfg.RateLimit.Requests > 0 {
		s.limiter = newRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	s.setupRoutes()
	return s, nil
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux

	handler = newCompressionHandler(handler, s.config.Compression)
	handler = newCORS(handler, s.config.CORS)
	handler = newSecurityHeaders(handler, s.config.Security, s.config.Server.Dev)

	// Request logging is skipped in quiet mode; metrics are still recorded.
	handler = newRequestLogger(handler, s.logger, !s.config.Logging.Quiet)

	return newProxyAware(handler, s.config.Server.Proxy)
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := s.listenAddr()

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.config.Server.ReadTimeout,
		WriteTimeout:      s.config.Server.WriteTimeout,
		IdleTimeout:       s.config.Server.IdleTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	if n := s.config.Server.MaxConnections; n > 0 {
		ln = netutil.LimitListener(ln, n)
	}

	if s.limiter != nil {
		go s.sweepLimiter(ctx)
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if s.useTLS() {
			fmt.Fprintf(s.stdout, "Starting ielec on https://%s\n", addr)
			errCh <- s.server.ServeTLS(ln, s.config.Server.HTTPS.Cert, s.config.Server.HTTPS.Key)
			return
		}
		if s.config.Server.Dev {
			fmt.Fprintf(s.stdout, "Starting ielec in development mode on http://%s\n", addr)
		} else {
			fmt.Fprintf(s.stdout, "Starting ielec on http://%s (TLS terminated by proxy)\n", addr)
		}
		errCh <- s.server.Serve(ln)
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		fmt.Fprintf(s.stdout, "\nShutting down gracefully...\n")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// useTLS reports whether the server terminates TLS itself. Development
// mode and trusted proxies without certificates serve plain HTTP.
func (s *Server) useTLS() bool {
	if s.config.Server.Dev {
		return false
	}
	return s.config.Server.HTTPS.Cert != "" && s.config.Server.HTTPS.Key != ""
}

// listenAddr returns the address to listen on based on configuration.
func (s *Server) listenAddr() string {
	host := s.config.Server.Host
	port := s.config.Server.Port

	if s.config.Server.Dev {
		if host == "" {
			host = "localhost"
		}
		if port == 0 || port == 443 {
			port = 8080
		}
	}

	return fmt.Sprintf("%s:%d", host, port)
}

// sweepLimiter drops idle rate limit buckets once per window.
func (s *Server) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(s.limiter.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.Sweep()
		}
	}
}
