package metrics

import (
	"context"

	"codeberg.org/mutker/r730fanctl/internal/errors"
	"codeberg.org/mutker/r730fanctl/internal/logger"
	"codeberg.org/mutker/r730fanctl/internal/telemetry"
)

type service struct {
	repo   Repository
	logger logger.Logger
}

// No-op implementation
type noopRecorder struct{}

// NewService opens the configured database, or returns a recorder that
// drops everything when no database is configured.
func NewService(cfg Config, log logger.Logger) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled() {
		log.Debug().Msg("No database configured, using no-op recorder")
		return Noop(), nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create metrics repository")
		return nil, err
	}

	log.Debug().
		Str("db_path", cfg.DBPath).
		Msg("Metrics service initialized successfully")

	return NewRecorder(repo, log), nil
}

// NewRecorder wraps an opened repository.
func NewRecorder(repo Repository, log logger.Logger) Recorder {
	return &service{
		repo:   repo,
		logger: log,
	}
}

// Noop returns a recorder that drops everything.
func Noop() Recorder {
	return &noopRecorder{}
}

func (s *service) RecordSensors(ctx context.Context, snapshot *telemetry.Snapshot) error {
	errFactory := errors.New()

	if snapshot == nil {
		return errFactory.New(ErrInvalidRecord)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.InsertSensors(ctx, snapshot); err != nil {
			return errFactory.Wrap(ErrRecordFailed, err)
		}
	}

	return nil
}

func (s *service) RecordDecision(ctx context.Context, record *DecisionRecord) error {
	errFactory := errors.New()

	if record == nil {
		return errFactory.New(ErrInvalidRecord)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.InsertDecision(ctx, record); err != nil {
			return errFactory.Wrap(ErrRecordFailed, err)
		}
	}

	return nil
}

func (s *service) Close() error {
	if err := s.repo.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}
	return nil
}

func (*noopRecorder) RecordSensors(_ context.Context, _ *telemetry.Snapshot) error {
	return nil
}

func (*noopRecorder) RecordDecision(_ context.Context, _ *DecisionRecord) error {
	return nil
}

func (*noopRecorder) Close() error {
	return nil
}
