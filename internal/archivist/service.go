// Package archivist is the orchestrator of the highlight archive. It owns
// the table store and is the only writer of highlights, points and consent
// records; adapters (HTTP intake, CLI) call its operations.
package archivist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/archivist/internal/common"
	"github.com/dmitrijs2005/archivist/internal/config"
	"github.com/dmitrijs2005/archivist/internal/logging"
	"github.com/dmitrijs2005/archivist/internal/metrics"
	"github.com/dmitrijs2005/archivist/internal/privacy"
	"github.com/dmitrijs2005/archivist/internal/repositories/repomanager"
	"github.com/dmitrijs2005/archivist/internal/retention"
	"github.com/dmitrijs2005/archivist/internal/scoring"
	"github.com/dmitrijs2005/archivist/internal/sentiment"
	"github.com/jonboulle/clockwork"
)

// Dependencies are the collaborators NewService does not build itself.
type Dependencies struct {
	Scorer *scoring.Scorer
	Hasher *privacy.Hasher
	Clock  clockwork.Clock
	Logger logging.Logger
}

type Service struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config

	scorer  *scoring.Scorer
	hasher  *privacy.Hasher
	gate    *privacy.Gate
	sweeper *retention.Sweeper
	clock   clockwork.Clock
	log     logging.Logger
}

func NewService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, deps Dependencies) *Service {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}

	sweeper := retention.NewSweeper(m.Highlights(db), retention.Options{
		Enabled:  bool(cfg.AutoDeleteEnabled),
		Days:     cfg.DataRetentionDays,
		Interval: cfg.RetentionInterval,
	}, deps.Clock, deps.Logger.With("component", "retention"))

	return &Service{
		db:          db,
		repomanager: m,
		config:      cfg,
		scorer:      deps.Scorer,
		hasher:      deps.Hasher,
		gate:        privacy.NewGate(m.Consents(db), deps.Hasher, deps.Clock),
		sweeper:     sweeper,
		clock:       deps.Clock,
		log:         deps.Logger,
	}
}

// Open bootstraps the configured table store, resolves the privacy salt and
// loads the sentiment lexicon.
func Open(ctx context.Context, cfg *config.Config, clock clockwork.Clock, log logging.Logger) (*Service, error) {
	source := cfg.Database.Path
	if cfg.Database.Driver == config.DriverPostgres {
		source = cfg.Database.DSN
	}

	db, m, err := repomanager.Bootstrap(ctx, cfg.Database.Driver, source)
	if err != nil {
		return nil, err
	}

	svc, err := assemble(ctx, db, m, cfg, clock, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return svc, nil
}

func assemble(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, clock clockwork.Clock, log logging.Logger) (*Service, error) {
	salt, generated, err := privacy.ResolveSalt(ctx, cfg.Privacy.Salt, m.Meta(db))
	if err != nil {
		return nil, err
	}
	if generated {
		log.Warn(ctx, "generated a privacy salt and stored it; set PRIVACY_SALT to pin it")
	}

	hasher, err := privacy.NewHasher(salt)
	if err != nil {
		return nil, err
	}

	analyzer, err := sentiment.New(cfg.SentimentLexiconPath)
	if err != nil {
		return nil, fmt.Errorf("%w: sentiment lexicon: %w", common.ErrorInvalidConfig, err)
	}

	return NewService(db, m, cfg, Dependencies{
		Scorer: scoring.NewScorer(analyzer, cfg.Thresholds()),
		Hasher: hasher,
		Clock:  clock,
		Logger: log,
	}), nil
}

// StartRetention launches the retention schedule when it is enabled.
func (s *Service) StartRetention(ctx context.Context) {
	s.sweeper.Start(ctx)
}

// Sweep runs one retention sweep now.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	n, err := s.sweeper.SweepOnce(ctx)
	if err != nil {
		return 0, s.storageError("delete_expired", err)
	}
	return n, nil
}

// Ping checks that the table store answers.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close stops the retention schedule and releases the table store.
func (s *Service) Close() error {
	s.sweeper.Stop()
	return s.db.Close()
}

func (s *Service) storageError(op string, err error) error {
	metrics.StorageErrorsTotal.WithLabelValues(op).Inc()
	return fmt.Errorf("%s: %w", op, err)
}
