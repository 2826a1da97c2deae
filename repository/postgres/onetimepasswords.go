package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
	"github.com/Logitar/Identity-sub002/repository"
)

// OneTimePasswordRepository is the PostgreSQL port.OneTimePasswordRepository.
// One-time passwords feed no projection; streams are addressed by id only.
type OneTimePasswordRepository struct {
	streams
}

// NewOneTimePasswordRepository constructs a PostgreSQL-backed one-time
// password repository.
func NewOneTimePasswordRepository(pool pgPool, store *EventStore, logger *zap.Logger) *OneTimePasswordRepository {
	return &OneTimePasswordRepository{newStreams(pool, store, nil, logger)}
}

// Load replays a one-time password stream.
func (r *OneTimePasswordRepository) Load(ctx context.Context, id domain.OneTimePasswordID) (*domain.OneTimePassword, error) {
	history, err := r.history(ctx, id.Value())
	if err != nil {
		return nil, err
	}
	password, err := domain.LoadOneTimePassword(history)
	if err != nil {
		return nil, fmt.Errorf("replay otp %s: %w", id.Value(), err)
	}
	if password.IsDeleted() {
		return nil, fmt.Errorf("%w: otp %s is deleted", repository.ErrNotFound, id.Value())
	}
	return password, nil
}

// Save appends pending changes.
func (r *OneTimePasswordRepository) Save(ctx context.Context, passwords ...*domain.OneTimePassword) error {
	aggs := make([]aggregate, len(passwords))
	for i, password := range passwords {
		aggs[i] = password
	}
	return r.save(ctx, nil, aggs...)
}

var _ port.OneTimePasswordRepository = (*OneTimePasswordRepository)(nil)
