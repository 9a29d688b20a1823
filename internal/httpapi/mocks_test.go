package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/archivist/internal/archivist"
	"github.com/dmitrijs2005/archivist/internal/backup"
	"github.com/dmitrijs2005/archivist/internal/logging"
	"github.com/dmitrijs2005/archivist/internal/models"
	"github.com/dmitrijs2005/archivist/internal/privacy"
	"github.com/dmitrijs2005/archivist/internal/report"
	"github.com/prometheus/client_golang/prometheus"
)

var errNotImplemented = errors.New("not implemented")

type mockApp struct {
	handleMessageFn  func(ctx context.Context, msg archivist.Message) (archivist.AnalysisResult, error)
	analyzeFn        func(ctx context.Context, msg archivist.Message, opts archivist.AnalyzeOptions) (archivist.AnalysisResult, error)
	setConsentFn     func(ctx context.Context, userID string, consent bool) error
	checkConsentFn   func(ctx context.Context, userID string) (privacy.ConsentState, error)
	resetConsentFn   func(ctx context.Context, userID string) error
	getUserPointsFn  func(ctx context.Context, userID string) (*models.UserPoints, error)
	getLeaderboardFn func(ctx context.Context, limit int) ([]models.UserPoints, error)
	deleteUserDataFn func(ctx context.Context, userID string) (archivist.ErasureResult, error)
	clearAllFn       func(ctx context.Context) (archivist.ClearResult, error)
	reportFn         func(ctx context.Context, period report.Period) (report.Report, error)
	exportFn         func(ctx context.Context) (backup.Document, error)
	backupFn         func(ctx context.Context, sink string) (archivist.BackupResult, error)
	diagnoseFn       func(ctx context.Context) []archivist.Check
	pingFn           func(ctx context.Context) error
}

func (m *mockApp) HandleMessage(ctx context.Context, msg archivist.Message) (archivist.AnalysisResult, error) {
	if m.handleMessageFn != nil {
		return m.handleMessageFn(ctx, msg)
	}
	return archivist.AnalysisResult{}, errNotImplemented
}

func (m *mockApp) Analyze(ctx context.Context, msg archivist.Message, opts archivist.AnalyzeOptions) (archivist.AnalysisResult, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, msg, opts)
	}
	return archivist.AnalysisResult{}, errNotImplemented
}

func (m *mockApp) SetConsent(ctx context.Context, userID string, consent bool) error {
	if m.setConsentFn != nil {
		return m.setConsentFn(ctx, userID, consent)
	}
	return errNotImplemented
}

func (m *mockApp) CheckConsent(ctx context.Context, userID string) (privacy.ConsentState, error) {
	if m.checkConsentFn != nil {
		return m.checkConsentFn(ctx, userID)
	}
	return privacy.ConsentUnset, errNotImplemented
}

func (m *mockApp) ResetConsent(ctx context.Context, userID string) error {
	if m.resetConsentFn != nil {
		return m.resetConsentFn(ctx, userID)
	}
	return errNotImplemented
}

func (m *mockApp) GetUserPoints(ctx context.Context, userID string) (*models.UserPoints, error) {
	if m.getUserPointsFn != nil {
		return m.getUserPointsFn(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockApp) GetLeaderboard(ctx context.Context, limit int) ([]models.UserPoints, error) {
	if m.getLeaderboardFn != nil {
		return m.getLeaderboardFn(ctx, limit)
	}
	return nil, errNotImplemented
}

func (m *mockApp) DeleteUserData(ctx context.Context, userID string) (archivist.ErasureResult, error) {
	if m.deleteUserDataFn != nil {
		return m.deleteUserDataFn(ctx, userID)
	}
	return archivist.ErasureResult{}, errNotImplemented
}

func (m *mockApp) ClearAll(ctx context.Context) (archivist.ClearResult, error) {
	if m.clearAllFn != nil {
		return m.clearAllFn(ctx)
	}
	return archivist.ClearResult{}, errNotImplemented
}

func (m *mockApp) Report(ctx context.Context, period report.Period) (report.Report, error) {
	if m.reportFn != nil {
		return m.reportFn(ctx, period)
	}
	return report.Report{}, errNotImplemented
}

func (m *mockApp) Export(ctx context.Context) (backup.Document, error) {
	if m.exportFn != nil {
		return m.exportFn(ctx)
	}
	return backup.Document{}, errNotImplemented
}

func (m *mockApp) Backup(ctx context.Context, sink string) (archivist.BackupResult, error) {
	if m.backupFn != nil {
		return m.backupFn(ctx, sink)
	}
	return archivist.BackupResult{}, errNotImplemented
}

func (m *mockApp) Diagnose(ctx context.Context) []archivist.Check {
	if m.diagnoseFn != nil {
		return m.diagnoseFn(ctx)
	}
	return nil
}

func (m *mockApp) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func newTestServer(t *testing.T, app appService, token string) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewServer(app, logging.Nop(), Options{Token: token, Registerer: reg, Gatherer: reg})
}

func do(srv *Server, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}
