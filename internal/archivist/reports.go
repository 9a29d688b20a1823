package archivist

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/archivist/internal/backup"
	"github.com/dmitrijs2005/archivist/internal/common"
	"github.com/dmitrijs2005/archivist/internal/metrics"
	"github.com/dmitrijs2005/archivist/internal/report"
)

func (s *Service) WeeklyReport(ctx context.Context) (report.Report, error) {
	return s.Report(ctx, report.Weekly)
}

func (s *Service) MonthlyReport(ctx context.Context) (report.Report, error) {
	return s.Report(ctx, report.Monthly)
}

// Report selects the best highlights created within the period ending now.
func (s *Service) Report(ctx context.Context, period report.Period) (report.Report, error) {
	end := s.clock.Now().UTC()
	start := period.Start(end)

	rows, err := s.repomanager.Highlights(s.db).TopSince(ctx, start, period.Limit())
	if err != nil {
		return report.Report{}, s.storageError("report", err)
	}
	return report.New(period, start, end, rows), nil
}

// Export returns the whole archive as a backup document.
func (s *Service) Export(ctx context.Context) (backup.Document, error) {
	rows, err := s.repomanager.Highlights(s.db).All(ctx)
	if err != nil {
		return backup.Document{}, s.storageError("export", err)
	}
	return backup.NewDocument(rows, s.clock.Now()), nil
}

// Backup sink names.
const (
	SinkFile = "file"
	SinkS3   = "s3"
)

// BackupResult describes a stored backup.
type BackupResult struct {
	Sink       string    `json:"sink"`
	Location   string    `json:"location"`
	Highlights int       `json:"highlights"`
	Timestamp  time.Time `json:"timestamp"`
}

// Sink resolves a sink by name. An empty name selects the file sink.
func (s *Service) Sink(name string) (backup.Sink, error) {
	switch name {
	case "", SinkFile:
		return backup.NewFileSink(s.config.BackupDir), nil
	case SinkS3:
		if !s.config.S3.Enabled() {
			return nil, fmt.Errorf("%w: s3 backup sink is not configured", common.ErrorInvalidArgument)
		}
		return backup.NewS3Sink(s.config.S3, &http.Client{Timeout: time.Minute}), nil
	}
	return nil, fmt.Errorf("%w: unknown backup sink %q", common.ErrorInvalidArgument, name)
}

// Backup exports the archive and stores it in the named sink.
func (s *Service) Backup(ctx context.Context, sinkName string) (BackupResult, error) {
	sink, err := s.Sink(sinkName)
	if err != nil {
		return BackupResult{}, err
	}

	doc, err := s.Export(ctx)
	if err != nil {
		return BackupResult{}, err
	}

	loc, err := s.store(ctx, sink, doc)
	metrics.BackupsTotal.WithLabelValues(sink.Name(), metrics.Status(err)).Inc()
	if err != nil {
		s.log.Error(ctx, "backup failed", "sink", sink.Name(), "error", err)
		return BackupResult{}, err
	}

	s.log.Info(ctx, "backup stored", "sink", sink.Name(), "location", loc, "highlights", len(doc.Highlights))
	return BackupResult{
		Sink:       sink.Name(),
		Location:   loc,
		Highlights: len(doc.Highlights),
		Timestamp:  doc.Timestamp,
	}, nil
}

func (s *Service) store(ctx context.Context, sink backup.Sink, doc backup.Document) (string, error) {
	data, err := backup.Encode(doc)
	if err != nil {
		return "", err
	}
	loc, err := sink.Store(ctx, doc, data)
	if err != nil {
		return "", fmt.Errorf("%s backup: %w", sink.Name(), err)
	}
	return loc, nil
}
