// Package server exposes the workspace session as a JSON API for the
// browser dashboard.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Veraticus/meisai/internal/engine"
	"github.com/Veraticus/meisai/internal/ingest"
	"github.com/Veraticus/meisai/internal/report"
)

// Config controls the HTTP server.
type Config struct {
	Addr           string
	Version        string
	Language       string
	AllowedOrigins []string
	TLS            *tls.Config
	MaxUploadBytes int64
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:8080",
		Version:        "dev",
		Language:       report.DefaultLanguage,
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxUploadBytes: 32 << 20,
	}
}

// Server serves one workspace session. Handlers run concurrently, so every
// session access holds mu.
type Server struct {
	session *engine.Session
	loader  *ingest.Loader
	logger  *slog.Logger
	router  *gin.Engine
	config  Config
	mu      sync.Mutex
}

// New builds the server and its routes.
func New(config Config, session *engine.Session, loader *ingest.Loader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Language == "" {
		config.Language = report.DefaultLanguage
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}

	s := &Server{
		session: session,
		loader:  loader,
		logger:  logger,
		config:  config,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = s.config.MaxUploadBytes

	if len(s.config.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     s.config.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(s.requestLogger())

	router.GET("/health", s.health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/categories", s.listCategories)
		v1.PUT("/categories", s.replaceCategories)

		v1.GET("/rules", s.listRules)
		v1.POST("/rules", s.upsertRule)
		v1.PUT("/rules", s.replaceRules)
		v1.DELETE("/rules", s.deleteRule)

		v1.POST("/uploads", s.upload)
		v1.POST("/analyze", s.analyze)

		v1.GET("/transactions", s.listTransactions)
		v1.PATCH("/transactions/:id", s.setTransactionCategory)
		v1.POST("/transactions/reclassify", s.reclassify)

		v1.GET("/summary", s.summary)
		v1.GET("/report", s.downloadReport)
		v1.POST("/reset", s.reset)
	}

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP())
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         s.config.TLS,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.config.Addr, "tls", srv.TLSConfig != nil)
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
