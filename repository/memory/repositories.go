package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
	"github.com/Logitar/Identity-sub002/repository"
)

// aggregate is the slice of the kernel the repositories need to persist any
// aggregate type uniformly.
type aggregate interface {
	StreamID() string
	Version() int64
	Changes() []domain.Event
	HasChanges() bool
	ClearChanges()
}

// tracker remembers which streams belong to one aggregate type, so the
// scan-style lookups (by unique name, by role, by user) know what to replay.
type tracker struct {
	store *EventStore
	mu    sync.RWMutex
	ids   map[string]struct{}
}

func newTracker(store *EventStore) tracker {
	return tracker{store: store, ids: make(map[string]struct{})}
}

func (t *tracker) save(ctx context.Context, aggs ...aggregate) error {
	for _, agg := range aggs {
		if !agg.HasChanges() {
			continue
		}
		changes := agg.Changes()
		expected := agg.Version() - int64(len(changes))
		if err := t.store.Append(ctx, agg.StreamID(), expected, changes); err != nil {
			return err
		}
		agg.ClearChanges()
		t.mu.Lock()
		t.ids[agg.StreamID()] = struct{}{}
		t.mu.Unlock()
	}
	return nil
}

func (t *tracker) snapshot() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.ids))
	for id := range t.ids {
		ids = append(ids, id)
	}
	return ids
}

func (t *tracker) history(ctx context.Context, streamID string) ([]domain.Event, error) {
	history, err := t.store.ReadStream(ctx, streamID, port.ReadOptions{})
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: stream %s", repository.ErrNotFound, streamID)
	}
	return history, nil
}

// ApiKeyRepository is the in-memory port.ApiKeyRepository.
type ApiKeyRepository struct{ tracker }

// NewApiKeyRepository builds an ApiKey repository over the shared store.
func NewApiKeyRepository(store *EventStore) *ApiKeyRepository {
	return &ApiKeyRepository{newTracker(store)}
}

// Load implements port.ApiKeyRepository.
func (r *ApiKeyRepository) Load(ctx context.Context, id domain.ApiKeyID) (*domain.ApiKey, error) {
	history, err := r.history(ctx, id.Value())
	if err != nil {
		return nil, err
	}
	apiKey, err := domain.LoadApiKey(history)
	if err != nil {
		return nil, err
	}
	if apiKey.IsDeleted() {
		return nil, fmt.Errorf("%w: stream %s", repository.ErrNotFound, id.Value())
	}
	return apiKey, nil
}

// LoadByRole implements port.ApiKeyRepository.
func (r *ApiKeyRepository) LoadByRole(ctx context.Context, roleID domain.RoleID) ([]*domain.ApiKey, error) {
	var out []*domain.ApiKey
	for _, streamID := range r.snapshot() {
		id, err := domain.ParseApiKeyID(streamID)
		if err != nil {
			continue
		}
		apiKey, err := r.Load(ctx, id)
		if err != nil {
			continue
		}
		if apiKey.HasRole(roleID) {
			out = append(out, apiKey)
		}
	}
	return out, nil
}

// Save implements port.ApiKeyRepository.
func (r *ApiKeyRepository) Save(ctx context.Context, apiKeys ...*domain.ApiKey) error {
	aggs := make([]aggregate, len(apiKeys))
	for i, k := range apiKeys {
		aggs[i] = k
	}
	return r.save(ctx, aggs...)
}

// RoleRepository is the in-memory port.RoleRepository.
type RoleRepository struct{ tracker }

// NewRoleRepository builds a Role repository over the shared store.
func NewRoleRepository(store *EventStore) *RoleRepository {
	return &RoleRepository{newTracker(store)}
}

// Load implements port.RoleRepository.
func (r *RoleRepository) Load(ctx context.Context, id domain.RoleID) (*domain.Role, error) {
	history, err := r.history(ctx, id.Value())
	if err != nil {
		return nil, err
	}
	role, err := domain.LoadRole(history)
	if err != nil {
		return nil, err
	}
	if role.IsDeleted() {
		return nil, fmt.Errorf("%w: stream %s", repository.ErrNotFound, id.Value())
	}
	return role, nil
}

// LoadByUniqueName implements port.RoleRepository.
func (r *RoleRepository) LoadByUniqueName(ctx context.Context, tenant domain.TenantID, name domain.UniqueName) (*domain.Role, error) {
	for _, streamID := range r.snapshot() {
		id, err := domain.ParseRoleID(streamID)
		if err != nil {
			continue
		}
		role, err := r.Load(ctx, id)
		if err != nil {
			continue
		}
		roleTenant, _ := role.AggregateID().TenantID()
		if roleTenant == tenant && role.UniqueName().Normalized() == name.Normalized() {
			return role, nil
		}
	}
	return nil, fmt.Errorf("%w: role %q in tenant %q", repository.ErrNotFound, string(name), string(tenant))
}

// Save implements port.RoleRepository.
func (r *RoleRepository) Save(ctx context.Context, roles ...*domain.Role) error {
	aggs := make([]aggregate, len(roles))
	for i, role := range roles {
		aggs[i] = role
	}
	return r.save(ctx, aggs...)
}

// SessionRepository is the in-memory port.SessionRepository.
type SessionRepository struct{ tracker }

// NewSessionRepository builds a Session repository over the shared store.
func NewSessionRepository(store *EventStore) *SessionRepository {
	return &SessionRepository{newTracker(store)}
}

// Load implements port.SessionRepository.
func (r *SessionRepository) Load(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	history, err := r.history(ctx, id.Value())
	if err != nil {
		return nil, err
	}
	session, err := domain.LoadSession(history)
	if err != nil {
		return nil, err
	}
	if session.IsDeleted() {
		return nil, fmt.Errorf("%w: stream %s", repository.ErrNotFound, id.Value())
	}
	return session, nil
}

// LoadByUser implements port.SessionRepository.
func (r *SessionRepository) LoadByUser(ctx context.Context, userID domain.UserID) ([]*domain.Session, error) {
	var out []*domain.Session
	for _, streamID := range r.snapshot() {
		id, err := domain.ParseSessionID(streamID)
		if err != nil {
			continue
		}
		session, err := r.Load(ctx, id)
		if err != nil {
			continue
		}
		if session.UserID().Equal(userID.Identifier) {
			out = append(out, session)
		}
	}
	return out, nil
}

// Save implements port.SessionRepository.
func (r *SessionRepository) Save(ctx context.Context, sessions ...*domain.Session) error {
	aggs := make([]aggregate, len(sessions))
	for i, session := range sessions {
		aggs[i] = session
	}
	return r.save(ctx, aggs...)
}

// UserRepository is the in-memory port.UserRepository.
type UserRepository struct{ tracker }

// NewUserRepository builds a User repository over the shared store.
func NewUserRepository(store *EventStore) *UserRepository {
	return &UserRepository{newTracker(store)}
}

// Load implements port.UserRepository.
func (r *UserRepository) Load(ctx context.Context, id domain.UserID) (*domain.User, error) {
	history, err := r.history(ctx, id.Value())
	if err != nil {
		return nil, err
	}
	user, err := domain.LoadUser(history)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted() {
		return nil, fmt.Errorf("%w: stream %s", repository.ErrNotFound, id.Value())
	}
	return user, nil
}

// LoadByUniqueName implements port.UserRepository.
func (r *UserRepository) LoadByUniqueName(ctx context.Context, tenant domain.TenantID, name domain.UniqueName) (*domain.User, error) {
	for _, streamID := range r.snapshot() {
		id, err := domain.ParseUserID(streamID)
		if err != nil {
			continue
		}
		user, err := r.Load(ctx, id)
		if err != nil {
			continue
		}
		userTenant, _ := user.AggregateID().TenantID()
		if userTenant == tenant && user.UniqueName().Normalized() == name.Normalized() {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: user %q in tenant %q", repository.ErrNotFound, string(name), string(tenant))
}

// LoadByRole implements port.UserRepository.
func (r *UserRepository) LoadByRole(ctx context.Context, roleID domain.RoleID) ([]*domain.User, error) {
	var out []*domain.User
	for _, streamID := range r.snapshot() {
		id, err := domain.ParseUserID(streamID)
		if err != nil {
			continue
		}
		user, err := r.Load(ctx, id)
		if err != nil {
			continue
		}
		if user.HasRole(roleID) {
			out = append(out, user)
		}
	}
	return out, nil
}

// Save implements port.UserRepository.
func (r *UserRepository) Save(ctx context.Context, users ...*domain.User) error {
	aggs := make([]aggregate, len(users))
	for i, user := range users {
		aggs[i] = user
	}
	return r.save(ctx, aggs...)
}

// OneTimePasswordRepository is the in-memory port.OneTimePasswordRepository.
type OneTimePasswordRepository struct{ tracker }

// NewOneTimePasswordRepository builds a OneTimePassword repository over the shared store.
func NewOneTimePasswordRepository(store *EventStore) *OneTimePasswordRepository {
	return &OneTimePasswordRepository{newTracker(store)}
}

// Load implements port.OneTimePasswordRepository.
func (r *OneTimePasswordRepository) Load(ctx context.Context, id domain.OneTimePasswordID) (*domain.OneTimePassword, error) {
	history, err := r.history(ctx, id.Value())
	if err != nil {
		return nil, err
	}
	otp, err := domain.LoadOneTimePassword(history)
	if err != nil {
		return nil, err
	}
	if otp.IsDeleted() {
		return nil, fmt.Errorf("%w: stream %s", repository.ErrNotFound, id.Value())
	}
	return otp, nil
}

// Save implements port.OneTimePasswordRepository.
func (r *OneTimePasswordRepository) Save(ctx context.Context, passwords ...*domain.OneTimePassword) error {
	aggs := make([]aggregate, len(passwords))
	for i, otp := range passwords {
		aggs[i] = otp
	}
	return r.save(ctx, aggs...)
}
