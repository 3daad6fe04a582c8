package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Uddesh-18/CropSmart/internal/config"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

type APIServer struct {
	server     *http.Server
	router     *gin.Engine
	handler    *APIHandler
	middleware *Middleware
	config     *config.Config
	logger     logger.Logger
}

func NewAPIServer(handler *APIHandler, middleware *Middleware, cfg *config.Config, log logger.Logger) *APIServer {
	gin.SetMode(gin.ReleaseMode)
	if cfg.App.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	s := &APIServer{
		router:     gin.New(),
		handler:    handler,
		middleware: middleware,
		config:     cfg,
		logger:     logger.Component(log, "api_server"),
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

func (s *APIServer) setupRoutes() {
	api := s.router.Group(s.config.API.BasePath)

	api.Use(s.middleware.Recovery())
	api.Use(s.middleware.RequestID())
	api.Use(s.middleware.Logging())
	api.Use(s.middleware.CORS())
	api.Use(s.middleware.RateLimit())

	api.GET("/health", s.handler.HealthCheck)
	api.GET("/weather", s.handler.GetWeather)
	api.GET("/news", s.handler.GetNews)
	api.GET("/catalog", s.handler.GetCatalog)

	auth := api.Group("/auth")
	{
		auth.POST("/register", s.handler.Register)
		auth.POST("/login", s.handler.Login)
		auth.POST("/logout", s.middleware.RequireSession(), s.handler.Logout)
	}

	secured := api.Group("", s.middleware.RequireSession())
	{
		secured.GET("/profile", s.handler.GetProfile)
		secured.PUT("/profile", s.handler.UpdateProfile)

		predictions := secured.Group("/predictions")
		predictions.POST("/crop", s.handler.PredictCrop)
		predictions.POST("/fertilizer", s.handler.PredictFertilizer)
		predictions.GET("/history", s.handler.GetHistory)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": fmt.Sprintf("Route %s not found", c.Request.URL.Path),
		})
	})
}

func (s *APIServer) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.App.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Infof("Starting API server on port %d", s.config.App.Port)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	return nil
}

func (s *APIServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.App.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	s.logger.Info("API server stopped")
	return nil
}
