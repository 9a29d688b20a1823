package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/archivist/internal/archivist"
	"github.com/dmitrijs2005/archivist/internal/common"
	"github.com/dmitrijs2005/archivist/internal/report"
	"github.com/labstack/echo/v4"
)

const readinessProbeTimeout = 5 * time.Second

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessProbeTimeout)
	defer cancel()

	if err := s.app.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func bindMessage(c echo.Context) (archivist.Message, error) {
	var msg archivist.Message
	if err := c.Bind(&msg); err != nil {
		return msg, err
	}
	if msg.AuthorID == "" {
		return msg, fmt.Errorf("%w: author_id is required", common.ErrorInvalidArgument)
	}
	return msg, nil
}

func (s *Server) handleMessage(c echo.Context) error {
	msg, err := bindMessage(c)
	if err != nil {
		return err
	}

	res, err := s.app.HandleMessage(c.Request().Context(), msg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleAnalyze(c echo.Context) error {
	msg, err := bindMessage(c)
	if err != nil {
		return err
	}

	res, err := s.app.Analyze(c.Request().Context(), msg, archivist.AnalyzeOptions{BypassConsent: true})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

type consentRequest struct {
	Consent *bool `json:"consent"`
}

type consentResponse struct {
	State string `json:"state"`
}

func (s *Server) handleGetConsent(c echo.Context) error {
	state, err := s.app.CheckConsent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, consentResponse{State: state.String()})
}

func (s *Server) handleSetConsent(c echo.Context) error {
	var req consentRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Consent == nil {
		return fmt.Errorf("%w: consent is required", common.ErrorInvalidArgument)
	}

	ctx := c.Request().Context()
	if err := s.app.SetConsent(ctx, c.Param("id"), *req.Consent); err != nil {
		return err
	}

	state, err := s.app.CheckConsent(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, consentResponse{State: state.String()})
}

func (s *Server) handleResetConsent(c echo.Context) error {
	if err := s.app.ResetConsent(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGetPoints(c echo.Context) error {
	p, err := s.app.GetUserPoints(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeleteUser(c echo.Context) error {
	res, err := s.app.DeleteUserData(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleLeaderboard(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: limit must be a non-negative integer", common.ErrorInvalidArgument)
		}
		limit = n
	}

	rows, err := s.app.GetLeaderboard(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) handleReport(c echo.Context) error {
	period, err := report.ParsePeriod(c.Param("period"))
	if err != nil {
		return err
	}

	r, err := s.app.Report(c.Request().Context(), period)
	if err != nil {
		return err
	}

	switch c.QueryParam("format") {
	case "", "json":
		return c.JSON(http.StatusOK, r)
	case "markdown", "md":
		return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(r)))
	}
	return fmt.Errorf("%w: unknown format %q", common.ErrorInvalidArgument, c.QueryParam("format"))
}

func (s *Server) handleExport(c echo.Context) error {
	doc, err := s.app.Export(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

type backupRequest struct {
	Sink string `json:"sink"`
}

func (s *Server) handleBackup(c echo.Context) error {
	var req backupRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}

	res, err := s.app.Backup(c.Request().Context(), req.Sink)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

func (s *Server) handleClear(c echo.Context) error {
	res, err := s.app.ClearAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

type diagnosticsResponse struct {
	Healthy bool              `json:"healthy"`
	Checks  []archivist.Check `json:"checks"`
}

func (s *Server) handleDiagnostics(c echo.Context) error {
	checks := s.app.Diagnose(c.Request().Context())
	return c.JSON(http.StatusOK, diagnosticsResponse{
		Healthy: archivist.Healthy(checks),
		Checks:  checks,
	})
}
