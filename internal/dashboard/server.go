// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dashboard serves the customer and laundry analytics over a JSON
// HTTP API.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/pdiddy/laundry-analytics/internal/notify"
	"github.com/pdiddy/laundry-analytics/internal/store"
	"github.com/pdiddy/laundry-analytics/pkg/types"
)

// Store is the persistence the dashboard reads from and records into.
type Store interface {
	Orders(ctx context.Context, f store.Filter) ([]types.Order, error)
	Sample(ctx context.Context, n int) ([]types.Order, error)
	Count(ctx context.Context) (int, error)
	LastIngest(ctx context.Context) (*store.IngestRun, error)
	SaveReport(ctx context.Context, r *types.Report) error
	Ping(ctx context.Context) error
}

// Sender delivers peak-alert notices.
type Sender interface {
	Send(ctx context.Context, n *types.AlertNotice) error
}

// Server holds the dashboard dependencies.
type Server struct {
	cfg      types.Config
	store    Store
	notifier Sender
	orders   *orderCache
	log      *zap.Logger
	now      func() time.Time
}

// New returns a dashboard server. A nil logger disables logging.
func New(cfg types.Config, st Store, sender Sender, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		store:    st,
		notifier: sender,
		orders:   newOrderCache(st),
		log:      log,
		now:      time.Now,
	}
}

var _ Sender = (*notify.Notifier)(nil)

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	timeout := s.cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	r.Use(middleware.Timeout(timeout))

	origins := s.cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/overview", s.handleOverview)

		r.Route("/customers/{id}", func(r chi.Router) {
			r.Get("/insights", s.handleCustomerInsights)
			r.Get("/forecast", s.handleCustomerForecast)
			r.Get("/resources", s.handleCustomerResources)
			r.Get("/report", s.handleCustomerReport)
		})

		r.Route("/laundries/{id}", func(r chi.Router) {
			r.Get("/forecast", s.handleLaundryForecast)
			r.Get("/alerts", s.handleLaundryAlerts)
			r.Post("/alerts/notify", s.handleLaundryNotify)
			r.Get("/resources", s.handleLaundryResources)
			r.Get("/low-demand", s.handleLaundryLowDemand)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "not_found", "endpoint not found")
	})
	return r
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}

// ListenAndServe serves the dashboard on the configured address until ctx
// is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("dashboard shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
