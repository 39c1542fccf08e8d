// Package server exposes the project dashboard over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/service"
)

// Deps are the services the HTTP API is built on.
type Deps struct {
	Projects    service.ProjectService
	Templates   service.TemplateService
	Features    service.FeatureService
	Collections *service.Collections
	Logger      *slog.Logger
	// AccessLog receives one line per request; nil disables it.
	AccessLog io.Writer
}

// Server provides HTTP handlers for the dashboard backend.
type Server struct {
	engine *gin.Engine
	deps   Deps
	logger *slog.Logger

	timeline *service.TimelineRegistry
	testing  *service.TestingRegistry
}

// New constructs the HTTP server with routes and middleware configured.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if deps.AccessLog != nil {
		router.Use(gin.LoggerWithWriter(deps.AccessLog, "/api/healthz"))
	}

	srv := &Server{
		engine:   router,
		deps:     deps,
		logger:   logger,
		timeline: deps.Collections.TimelineRegistry(),
		testing:  deps.Collections.TestingRegistry(),
	}
	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		projects := api.Group("/projects")
		{
			projects.GET("", s.handleListProjects)
			projects.GET(":id", s.handleGetProject)
			projects.PATCH(":id", s.handleUpdateProject)

			projects.GET(":id/features", s.handleListFeatures)
			projects.PUT(":id/features/:feature", s.handleSetProjectFeature)

			timeline := collectionRoutes[*domain.TimelineItem]{
				name:     domain.CollectionTimeline,
				feature:  domain.FeatureTimeline,
				registry: s.timeline,
				render:   func(it *domain.TimelineItem) any { return newTimelineItemView(it) },
			}
			timelineGroup := projects.Group(":id/timeline")
			mountCollection(s, timelineGroup, timeline)
			timelineGroup.POST("/apply-template", s.handleApplyTemplate)
			timelineGroup.POST("/save-as-template", s.handleSaveAsTemplate)

			testing := collectionRoutes[*domain.TestingCard]{
				name:     domain.CollectionTesting,
				feature:  domain.FeatureTesting,
				registry: s.testing,
				render:   func(c *domain.TestingCard) any { return newTestingCardView(c) },
			}
			mountCollection(s, projects.Group(":id/testing"), testing)
		}

		templates := api.Group("/templates")
		{
			templates.GET("", s.handleListTemplates)
			templates.GET(":id", s.handleGetTemplate)
		}

		settings := api.Group("/settings")
		{
			settings.GET("", s.handleGetSettings)
			settings.PUT("/features/:feature", s.handleSetGlobalFeature)
		}
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"status": "ok"})
}
