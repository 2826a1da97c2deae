package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
	"github.com/Logitar/Identity-sub002/repository"
)

// ApiKeyRepository is the PostgreSQL port.ApiKeyRepository.
type ApiKeyRepository struct {
	streams
}

// NewApiKeyRepository constructs a PostgreSQL-backed API key repository.
func NewApiKeyRepository(pool pgPool, store *EventStore, logger *zap.Logger) *ApiKeyRepository {
	return &ApiKeyRepository{newStreams(pool, store, nil, logger)}
}

// Load replays an API key stream.
func (r *ApiKeyRepository) Load(ctx context.Context, id domain.ApiKeyID) (*domain.ApiKey, error) {
	return r.load(ctx, id.Value())
}

// LoadByRole returns every live API key holding the role.
func (r *ApiKeyRepository) LoadByRole(ctx context.Context, roleID domain.RoleID) ([]*domain.ApiKey, error) {
	holders, err := r.holdersOf(ctx, roleID.Value(), kindApiKey)
	if err != nil {
		return nil, err
	}
	apiKeys := make([]*domain.ApiKey, 0, len(holders))
	for _, streamID := range holders {
		apiKey, err := r.load(ctx, streamID)
		if err != nil {
			if repository.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		apiKeys = append(apiKeys, apiKey)
	}
	return apiKeys, nil
}

// Save appends pending changes and keeps the role index in step.
func (r *ApiKeyRepository) Save(ctx context.Context, apiKeys ...*domain.ApiKey) error {
	aggs := make([]aggregate, len(apiKeys))
	for i, apiKey := range apiKeys {
		aggs[i] = apiKey
	}
	return r.save(ctx, r.index, aggs...)
}

func (r *ApiKeyRepository) load(ctx context.Context, streamID string) (*domain.ApiKey, error) {
	history, err := r.history(ctx, streamID)
	if err != nil {
		return nil, err
	}
	apiKey, err := domain.LoadApiKey(history)
	if err != nil {
		return nil, fmt.Errorf("replay apikey %s: %w", streamID, err)
	}
	if apiKey.IsDeleted() {
		return nil, fmt.Errorf("%w: apikey %s is deleted", repository.ErrNotFound, streamID)
	}
	return apiKey, nil
}

func (r *ApiKeyRepository) index(ctx context.Context, exec pgExecutor, event domain.Event) error {
	switch e := event.(type) {
	case *domain.ApiKeyRoleAdded:
		return r.addRoleReference(ctx, exec, e.RoleID, kindApiKey, e.StreamID())
	case *domain.ApiKeyRoleRemoved:
		return r.removeRoleReference(ctx, exec, e.RoleID, kindApiKey, e.StreamID())
	case *domain.ApiKeyDeleted:
		return r.removeHolderReferences(ctx, exec, kindApiKey, e.StreamID())
	}
	return nil
}

var _ port.ApiKeyRepository = (*ApiKeyRepository)(nil)
