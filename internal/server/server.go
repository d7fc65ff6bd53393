// Package server exposes the upload, parse and export operations over HTTP.
// Every request builds its own session; nothing is shared between requests.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/oakwood-commons/treepick/internal/export"
	"github.com/oakwood-commons/treepick/internal/session"
)

const (
	// DefaultMaxUploadBytes caps uploads at 50MB.
	DefaultMaxUploadBytes = 50 << 20
	shutdownTimeout       = 5 * time.Second
)

// Options configure a Server.
type Options struct {
	Addr           string
	MaxUploadBytes int64
	RateLimit      float64
	Burst          int
	ReadTimeout    time.Duration
	ExportFileName string
	Session        session.Options
}

// Server is the treepick HTTP API.
type Server struct {
	opts     Options
	log      logr.Logger
	registry *prometheus.Registry
	metrics  *metrics
	engine   *gin.Engine
}

// New builds the router. Call Run or Serve to start listening.
func New(opts Options, log logr.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.ExportFileName == "" {
		opts.ExportFileName = export.DefaultFileName
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		opts:     opts,
		log:      log.WithName("server"),
		registry: reg,
		metrics:  newMetrics(reg),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = s.opts.MaxUploadBytes
	r.Use(recovery(s.log), observe(s.log, s.metrics))

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})))

	api := r.Group("/api", rateLimit(newLimiter(s.opts.RateLimit, s.opts.Burst), s.metrics))
	{
		api.POST("/parse", s.handleParse)
		api.POST("/parse-prefab", s.handleParse)
		api.POST("/export", s.handleExport)
	}
	return r
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		ReadTimeout:       s.opts.ReadTimeout,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
