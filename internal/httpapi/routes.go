package httpapi

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.echo.Use(requestIDMiddleware())
	s.echo.Use(s.requestLogger())
	s.echo.Use(middleware.Recover())
	s.echo.Use(s.httpMetrics.Middleware())

	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/v1", s.bearerAuth())

	v1.POST("/messages", s.handleMessage)
	v1.POST("/analyze", s.handleAnalyze)

	v1.GET("/users/:id/consent", s.handleGetConsent)
	v1.PUT("/users/:id/consent", s.handleSetConsent)
	v1.DELETE("/users/:id/consent", s.handleResetConsent)
	v1.GET("/users/:id/points", s.handleGetPoints)
	v1.DELETE("/users/:id", s.handleDeleteUser)

	v1.GET("/leaderboard", s.handleLeaderboard)
	v1.GET("/reports/:period", s.handleReport)

	v1.GET("/export", s.handleExport)
	v1.POST("/backups", s.handleBackup)
	v1.DELETE("/highlights", s.handleClear)
	v1.GET("/diagnostics", s.handleDiagnostics)
}
