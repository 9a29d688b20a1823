// Package httpapi is the adapter-facing HTTP intake of the archivist. A chat
// platform adapter posts message events and maps its commands onto the
// routes registered here.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/archivist/internal/archivist"
	"github.com/dmitrijs2005/archivist/internal/backup"
	"github.com/dmitrijs2005/archivist/internal/logging"
	"github.com/dmitrijs2005/archivist/internal/metrics"
	"github.com/dmitrijs2005/archivist/internal/models"
	"github.com/dmitrijs2005/archivist/internal/privacy"
	"github.com/dmitrijs2005/archivist/internal/report"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type appService interface {
	HandleMessage(ctx context.Context, msg archivist.Message) (archivist.AnalysisResult, error)
	Analyze(ctx context.Context, msg archivist.Message, opts archivist.AnalyzeOptions) (archivist.AnalysisResult, error)
	SetConsent(ctx context.Context, userID string, consent bool) error
	CheckConsent(ctx context.Context, userID string) (privacy.ConsentState, error)
	ResetConsent(ctx context.Context, userID string) error
	GetUserPoints(ctx context.Context, userID string) (*models.UserPoints, error)
	GetLeaderboard(ctx context.Context, limit int) ([]models.UserPoints, error)
	DeleteUserData(ctx context.Context, userID string) (archivist.ErasureResult, error)
	ClearAll(ctx context.Context) (archivist.ClearResult, error)
	Report(ctx context.Context, period report.Period) (report.Report, error)
	Export(ctx context.Context) (backup.Document, error)
	Backup(ctx context.Context, sink string) (archivist.BackupResult, error)
	Diagnose(ctx context.Context) []archivist.Check
	Ping(ctx context.Context) error
}

// Options configure a Server.
type Options struct {
	Addr string
	// Token, when set, is required as a bearer token on every /v1 route.
	Token string
	// Registerer receives the HTTP metrics and Gatherer serves /metrics.
	// They default to the prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

type Server struct {
	echo *echo.Echo
	app  appService
	log  logging.Logger
	opts Options

	httpMetrics *metrics.HTTPMetrics
}

func NewServer(app appService, log logging.Logger, opts Options) *Server {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:        e,
		app:         app,
		log:         log,
		opts:        opts,
		httpMetrics: metrics.NewHTTPMetrics(opts.Registerer),
	}
	e.HTTPErrorHandler = s.handleError

	s.registerRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info(context.Background(), "starting http server", "addr", s.opts.Addr)
	if err := s.echo.Start(s.opts.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
