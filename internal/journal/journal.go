package journal

import (
	"context"

	"codeberg.org/mutker/llmbind/internal/errors"
	"codeberg.org/mutker/llmbind/internal/logger"
	"codeberg.org/mutker/llmbind/pkg/llmerr"
)

type service struct {
	repo *Repository
}

type noopRecorder struct{}

// NewService returns the journal for cfg. A disabled journal records nothing.
func NewService(cfg Config, log logger.Logger) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Failure journal disabled, using no-op recorder")
		return Noop(), nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create journal repository")
		return nil, err
	}

	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, failure *llmerr.Error) error {
	errFactory := errors.New()

	if failure == nil {
		return errFactory.New(ErrInvalidRecord)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
	}

	return s.repo.Record(ctx, failure)
}

func (s *service) Close() error {
	return s.repo.Close()
}

func (*noopRecorder) Record(_ context.Context, _ *llmerr.Error) error {
	return nil
}

func (*noopRecorder) Close() error {
	return nil
}

// Noop returns a Recorder that discards every failure.
func Noop() Recorder {
	return &noopRecorder{}
}
