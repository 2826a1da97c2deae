package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
	"github.com/Logitar/Identity-sub002/repository"
)

// SessionRepository is the PostgreSQL port.SessionRepository.
type SessionRepository struct {
	streams
}

// NewSessionRepository constructs a PostgreSQL-backed session repository.
func NewSessionRepository(pool pgPool, store *EventStore, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{newStreams(pool, store, nil, logger)}
}

// Load replays a session stream.
func (r *SessionRepository) Load(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	return r.load(ctx, id.Value())
}

// LoadByUser returns every live session belonging to the user.
func (r *SessionRepository) LoadByUser(ctx context.Context, userID domain.UserID) ([]*domain.Session, error) {
	stmt, args, err := r.builder.Select("session_id").
		From("identity.user_sessions").
		Where(squirrel.Eq{"user_id": userID.Value()}).
		OrderBy("session_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sessions sql: %w", err)
	}

	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query user sessions: %w", err)
	}
	defer rows.Close()

	var streamIDs []string
	for rows.Next() {
		var streamID string
		if err := rows.Scan(&streamID); err != nil {
			return nil, fmt.Errorf("scan user session: %w", err)
		}
		streamIDs = append(streamIDs, streamID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user sessions: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(streamIDs))
	for _, streamID := range streamIDs {
		session, err := r.load(ctx, streamID)
		if err != nil {
			if repository.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Save appends pending changes and keeps the user index in step.
func (r *SessionRepository) Save(ctx context.Context, sessions ...*domain.Session) error {
	aggs := make([]aggregate, len(sessions))
	for i, session := range sessions {
		aggs[i] = session
	}
	return r.save(ctx, r.index, aggs...)
}

func (r *SessionRepository) load(ctx context.Context, streamID string) (*domain.Session, error) {
	history, err := r.history(ctx, streamID)
	if err != nil {
		return nil, err
	}
	session, err := domain.LoadSession(history)
	if err != nil {
		return nil, fmt.Errorf("replay session %s: %w", streamID, err)
	}
	if session.IsDeleted() {
		return nil, fmt.Errorf("%w: session %s is deleted", repository.ErrNotFound, streamID)
	}
	return session, nil
}

func (r *SessionRepository) index(ctx context.Context, exec pgExecutor, event domain.Event) error {
	switch e := event.(type) {
	case *domain.SessionCreated:
		stmt, args, err := r.builder.Insert("identity.user_sessions").
			Columns("user_id", "session_id").
			Values(e.UserID, e.StreamID()).
			Suffix("ON CONFLICT DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert user session sql: %w", err)
		}
		if _, err := exec.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert user session: %w", err)
		}
	case *domain.SessionDeleted:
		stmt, args, err := r.builder.Delete("identity.user_sessions").
			Where(squirrel.Eq{"session_id": e.StreamID()}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete user session sql: %w", err)
		}
		if _, err := exec.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("delete user session: %w", err)
		}
	}
	return nil
}

var _ port.SessionRepository = (*SessionRepository)(nil)
