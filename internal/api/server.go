// Package api exposes the HTTP surface: alert management, reading
// ingestion and history, the websocket alert stream and Prometheus
// metrics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/airsenselabs/airsense-core/internal/config"
	"github.com/airsenselabs/airsense-core/internal/services"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

type Server struct {
	router *gin.Engine
	server *http.Server
	logger logger.Logger
}

func NewServer(
	cfg *config.Config,
	alerts services.AlertStore,
	readings services.ReadingStore,
	pipeline *services.AlertPipeline,
	hub *Hub,
	log logger.Logger,
) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	s := &Server{
		router: router,
		logger: log,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	healthHandler := NewHealthHandler(cfg.Environment)
	alertHandler := NewAlertHandler(alerts, log)
	readingHandler := NewReadingHandler(readings, pipeline, log)

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/alerts", alertHandler.List)
		v1.GET("/alerts/:id", alertHandler.GetByID)
		v1.PUT("/alerts/:id/resolve", alertHandler.Resolve)
		v1.DELETE("/alerts/:id", alertHandler.Delete)

		v1.POST("/readings", readingHandler.Ingest)
		v1.GET("/sensors/:id/readings", readingHandler.ListBySensor)
		v1.GET("/sensors/:id/aqi", readingHandler.AQI)

		v1.GET("/ws/alerts", func(c *gin.Context) {
			hub.ServeWS(c.Writer, c.Request)
		})
	}

	return s
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"client", c.ClientIP(),
		)
	}
}
