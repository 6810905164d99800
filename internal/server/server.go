// Package server is the HTTP API of the generator.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mfenderov/sitegen/internal/pipeline"
	"github.com/mfenderov/sitegen/internal/storage"
	"github.com/mfenderov/sitegen/pkg/models"
)

// Generator runs a batch.
type Generator interface {
	Run(ctx context.Context, req models.Request) (*pipeline.Run, error)
}

// Server serves generation requests and stored artifacts.
type Server struct {
	Echo      *echo.Echo
	generator Generator
	store     storage.Store
	history   *pipeline.History
}

// New creates the server and registers its routes.
func New(generator Generator, store storage.Store, history *pipeline.History) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				slog.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			slog.Debug("request", attrs...)
			return nil
		},
	}))

	if history == nil {
		history = pipeline.NewHistory()
	}
	s := &Server{
		Echo:      e,
		generator: generator,
		store:     store,
		history:   history,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/ping", s.handlePing)
	s.Echo.POST("/generate", s.handleGenerate)
	s.Echo.GET("/site/:id", s.handleGetSite)
	s.Echo.GET("/image/:filename", s.handleGetImage)
	s.Echo.GET("/logs", s.handleGetLogs)
	s.Echo.GET("/stats", s.handleGetStats)
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	slog.Info("Server listening", "addr", addr)
	err := s.Echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down server")
	return s.Echo.Shutdown(ctx)
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
