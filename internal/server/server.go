package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weatherpulse/internal/aggregator"
	"github.com/vzahanych/weatherpulse/internal/config"
	"github.com/vzahanych/weatherpulse/internal/server/handlers"
	"github.com/vzahanych/weatherpulse/internal/server/middlewares"
	"github.com/vzahanych/weatherpulse/internal/server/utils"
	"github.com/vzahanych/weatherpulse/pkg/telemetry"
)

type Server struct {
	cfg     *config.Config
	engine  *gin.Engine
	server  *http.Server
	agg     *aggregator.Aggregator
	metrics *handlers.MetricsHandler
	logger  *zap.Logger
	tele    *telemetry.Telemetry
}

func NewServer(cfg *config.Config, agg *aggregator.Aggregator, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	gin.SetMode(gin.ReleaseMode)
	utils.RegisterGinValidations()

	engine := gin.New()
	httpMetrics := middlewares.NewMetricsMiddleware(logger, tele)

	engine.Use(middlewares.RequestIDMiddleware())
	engine.Use(middlewares.LoggingMiddleware(logger, true))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(httpMetrics.Handler())

	if len(cfg.Server.AllowedOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middlewares.RequestIDHeader},
			ExposeHeaders:    []string{middlewares.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s := &Server{
		cfg:     cfg,
		engine:  engine,
		agg:     agg,
		metrics: handlers.NewMetricsHandler(logger, httpMetrics),
		logger:  logger,
		tele:    tele,
	}
	agg.SetMetricsRecorder(s.metrics)

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	health := handlers.NewHealthHandler(s.logger, s.cfg.Version)
	weatherHandler := handlers.NewWeatherHandler(s.agg, s.logger, s.cfg.Server.MaxForecastDays)

	s.engine.GET("/", health.Root)

	// Business endpoints
	s.engine.GET("/weather/:city", weatherHandler.GetWeather)
	s.engine.GET("/weather/:city/forecast", weatherHandler.GetForecast)
	s.engine.POST("/weather/search", weatherHandler.SearchWeather)

	// Health endpoints (Kubernetes friendly)
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", s.metrics.ServeMetrics)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving HTTP until Shutdown is called. A clean shutdown
// returns nil.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
