// Package server exposes the shipping abstraction over a REST API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/parcelbridge/parcelbridge/internal/telemetry"
	"github.com/parcelbridge/parcelbridge/pkg/shipping"
)

// Server is the HTTP server for the shipping service.
type Server struct {
	port     int
	registry *shipping.Registry
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics

	mu       sync.Mutex
	sessions map[string]*shipping.Session
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, registry *shipping.Registry, logger *otelzap.Logger, metrics *telemetry.Metrics) *Server {
	return &Server{
		port:     cfg.Port,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		sessions: make(map[string]*shipping.Session),
	}
}

// Handler builds the HTTP router.
func (s *Server) Handler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(s.requestMetrics)

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	v1.GET("/providers", s.handleProviders)
	v1.GET("/:provider/carriers", s.handleCarriers)
	v1.POST("/:provider/labels", s.handleCreateLabel)
	v1.GET("/:provider/tracking/:carrier/:number", s.handleTrackShipment)
	v1.GET("/:provider/tracking-url/:carrier/:number", s.handleTrackingURL)
	v1.POST("/:provider/addresses/validate", s.handleValidateAddress)
	v1.POST("/:provider/rates/estimate", s.handleEstimateCost)

	return e
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		s.closeSessions()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// sessionFor returns the server's long-lived session for a provider,
// opening one on first use with the provider's configured defaults.
func (s *Server) sessionFor(ctx context.Context, provider string) (*shipping.Session, error) {
	system, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[system.Name()]; ok {
		return sess, nil
	}

	sess, err := system.StartSession(ctx, shipping.SessionParams{
		Name: "server",
		User: "parcelbridge",
	})
	if err != nil {
		return nil, err
	}
	s.sessions[system.Name()] = sess
	s.metrics.SessionsOpen.WithLabelValues(system.Name()).Inc()
	return sess, nil
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, sess := range s.sessions {
		sess.Close()
		s.metrics.SessionsOpen.WithLabelValues(name).Dec()
		delete(s.sessions, name)
	}
}

// requestMetrics records per-request Prometheus metrics.
func (s *Server) requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		status := c.Response().Status
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}
		s.metrics.RecordRequest(
			c.Request().Method,
			c.Path(),
			strconv.Itoa(status),
			time.Since(start).Seconds(),
		)
		return err
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleProviders(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"providers": s.registry.Names(),
	})
}
