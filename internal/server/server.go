// Package server exposes the review dashboard API over HTTP: application
// listing and detail, statistics, CSV exports, document URL signing, and the
// decision endpoint.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vyapara-admin/internal/common/config"
	"vyapara-admin/internal/common/logger"
	"vyapara-admin/internal/decision"
	"vyapara-admin/internal/docs"
	"vyapara-admin/internal/gateway"
	"vyapara-admin/internal/models"
	"vyapara-admin/internal/view"
)

// applicationReader is the slice of the gateway the handlers read through.
type applicationReader interface {
	List(ctx context.Context, f gateway.Filter) (*gateway.ListResult, error)
	GetByID(ctx context.Context, id string) (*models.ApplicationDetail, error)
	ListStepsFor(ctx context.Context, ids []string) (map[string][]models.ApplicationStep, error)
}

type statisticsProvider interface {
	Snapshot(ctx context.Context, rangeKey string) (*models.StatisticsSnapshot, error)
}

type decisionSubmitter interface {
	Submit(ctx context.Context, applicationID string, req decision.Request) (*models.Application, error)
}

type documentSigner interface {
	SignedURL(ctx context.Context, path string, expiresIn int64) (string, error)
	SignedURLs(ctx context.Context, paths []string, expiresIn int64) ([]docs.SignedURL, error)
	MergedDocuments(ctx context.Context, detail *models.ApplicationDetail, now time.Time) []view.DocumentEntry
}

// searchIndex resolves a free-text term to application ids and accepts
// summary upserts after a decision changes a record. Nil when the
// Elasticsearch mirror is disabled.
type searchIndex interface {
	SearchIDs(ctx context.Context, term string, size int) ([]string, error)
	IndexApplication(ctx context.Context, app models.Application) error
}

// Deps collects the services the server routes to.
type Deps struct {
	Gateway    applicationReader
	Statistics statisticsProvider
	Decisions  decisionSubmitter
	Documents  documentSigner
	Search     searchIndex
	Health     []HealthCheck
}

// HealthCheck is one named dependency probe for the health endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server is the HTTP front of the dashboard API.
type Server struct {
	cfg    config.ServerConfig
	review config.ReviewConfig
	deps   Deps
	logger logger.Logger
	now    func() time.Time
	http   *http.Server
}

// New builds the server and its routes.
func New(cfg config.ServerConfig, review config.ReviewConfig, deps Deps, log logger.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		review: review,
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"component": "server"}),
		now:    time.Now,
	}
	s.http = &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      s.Router(),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

// Router assembles the route tree. Exposed separately so tests can drive the
// handlers without a listening socket.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/applications", func(r chi.Router) {
			r.Get("/", s.handleListApplications)
			r.Get("/export", s.handleExportApplications)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetApplication)
				r.Get("/documents", s.handleApplicationDocuments)
				r.Post("/decision", s.handleDecision)
			})
		})
		r.Route("/statistics", func(r chi.Router) {
			r.Get("/", s.handleStatistics)
			r.Get("/export", s.handleExportStatistics)
		})
		r.Route("/documents", func(r chi.Router) {
			r.Get("/url", s.handleSignedURL)
			r.Post("/urls", s.handleSignedURLs)
		})
	})

	return r
}

// Start runs the listener until the context is cancelled, then drains with
// the given grace period.
func (s *Server) Start(ctx context.Context, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{
			"address": s.cfg.ListenAddress,
		})
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  middleware.GetReqID(r.Context()),
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	checks := make(map[string]string, len(s.deps.Health))
	for _, hc := range s.deps.Health {
		if err := hc.Check(ctx); err != nil {
			checks[hc.Name] = err.Error()
			status = "degraded"
		} else {
			checks[hc.Name] = "ok"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
