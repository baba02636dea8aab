// Package api implements the HTTP API of the FlowNest server.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"github.com/ulule/limiter/v3"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/flownest/flownest-server/internal/auth"
	"github.com/flownest/flownest-server/internal/config"
	"github.com/flownest/flownest-server/internal/events"
	"github.com/flownest/flownest-server/internal/identity"
	"github.com/flownest/flownest-server/internal/metrics"
	"github.com/flownest/flownest-server/internal/report"
	"github.com/flownest/flownest-server/internal/storage"
	"github.com/flownest/flownest-server/internal/subscription"
	"github.com/flownest/flownest-server/internal/validation"
)

// RESTServer represents the REST API server
type RESTServer struct {
	config    *config.Config
	store     storage.Store
	auth      *auth.JWTManager
	validator *validation.Validator
	resolver  *identity.Resolver
	gate      *subscription.Gate
	reporter  *report.Reporter
	events    events.Publisher
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	redis     *redis.Client
	now       func() time.Time
	router    chi.Router
	server    *http.Server
}

// Option configures a RESTServer
type Option func(*RESTServer)

// WithClock overrides time.Now for subscription and reporting decisions.
func WithClock(now func() time.Time) Option {
	return func(s *RESTServer) { s.now = now }
}

// WithPublisher sets where domain events go. Defaults to events.Discard.
func WithPublisher(p events.Publisher) Option {
	return func(s *RESTServer) { s.events = p }
}

// WithMetrics enables instrumentation and the /metrics endpoint.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *RESTServer) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithRedis supplies the client used by the redis rate-limit store.
func WithRedis(client *redis.Client) Option {
	return func(s *RESTServer) { s.redis = client }
}

// NewRESTServer creates a new REST API server
func NewRESTServer(cfg *config.Config, store storage.Store, opts ...Option) (*RESTServer, error) {
	s := &RESTServer{
		config:    cfg,
		store:     store,
		auth:      auth.NewJWTManager(&cfg.JWT),
		validator: validation.NewValidator(),
		events:    events.Discard{},
		now:       time.Now,
		router:    chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.resolver = identity.NewResolver(store, s.metrics)
	s.gate = subscription.NewGate(store, s.now, s.metrics)
	s.reporter = report.NewReporter(store, s.now, cfg.Report.Location(), s.metrics)

	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root HTTP handler
func (s *RESTServer) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all routes
func (s *RESTServer) setupRoutes() error {
	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(hlog.NewHandler(log.Logger))
	s.router.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	s.router.Use(hlog.AccessHandler(s.logRequest))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(securityHeaders)
	s.router.Use(s.instrument)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if s.config.RateLimit.Enabled {
		mw, err := s.rateLimiter()
		if err != nil {
			return err
		}
		s.router.Use(mw)
	}

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusNotFound, codeNotFound, "Route not found")
	})

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		s.setupAPIRoutes(r)
	})
	return nil
}

// rateLimiter builds the per-IP ceiling middleware
func (s *RESTServer) rateLimiter() (func(http.Handler) http.Handler, error) {
	cfg := s.config.RateLimit
	rate := limiter.Rate{Period: cfg.Period, Limit: cfg.Limit}

	var store limiter.Store
	switch cfg.Store {
	case "redis":
		if s.redis == nil {
			return nil, fmt.Errorf("rate limit store redis requires a redis client")
		}
		var err error
		store, err = limiterredis.NewStoreWithOptions(s.redis, limiter.StoreOptions{
			Prefix:   "flownest:ratelimit",
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis rate limit store: %w", err)
		}
	default:
		store = memory.NewStore()
	}

	mw := limiterhttp.NewMiddleware(
		limiter.New(store, rate),
		limiterhttp.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			s.respondError(w, http.StatusTooManyRequests, codeRateLimited, "Too many requests, please try again later")
		}),
	)

	log.Info().
		Int64("limit", cfg.Limit).
		Dur("period", cfg.Period).
		Str("store", cfg.Store).
		Msg("Rate limiting enabled")

	return mw.Handler, nil
}

func (s *RESTServer) logRequest(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("HTTP request")
}

// instrument records request count and latency by route pattern
func (s *RESTServer) instrument(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveHTTP(r.Method, route, status, time.Since(start))
	})
}

// securityHeaders sets the response headers browsers use to harden pages
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Resource-Policy", "same-site")
		h.Set("X-DNS-Prefetch-Control", "off")
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe starts the server
func (s *RESTServer) ListenAndServe(addr string) error {
	s.server.Addr = addr
	log.Info().Str("addr", addr).Msg("Starting REST API server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server and waits for pending tenant
// link repairs.
func (s *RESTServer) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.resolver.Wait()
	return err
}
