package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
	"github.com/Logitar/Identity-sub002/repository"
)

// Index row kinds. The unique_names and role_references tables are
// projections maintained in the same transaction as the appended events, so
// the scoped lookups never replay more than the streams they need.
const (
	kindApiKey = "apikey"
	kindRole   = "role"
	kindUser   = "user"
)

type pgPool interface {
	pgExecutor
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NameCache resolves unique-name lookups before they hit the database.
// Implementations are best effort; errors are logged, never surfaced.
type NameCache interface {
	Resolve(ctx context.Context, kind, tenant, name string) (string, error)
	Bind(ctx context.Context, kind, tenant, name, streamID string) error
	Unbind(ctx context.Context, kind, tenant, name string) error
}

// aggregate is the slice of the kernel the repositories need to persist any
// aggregate type uniformly.
type aggregate interface {
	StreamID() string
	Version() int64
	Changes() []domain.Event
	HasChanges() bool
	ClearChanges()
}

// streams bundles what every repository shares: the pool for transactions,
// the event store for appends and replays, and the query builder for the
// index tables.
type streams struct {
	pool    pgPool
	store   *EventStore
	builder squirrel.StatementBuilderType
	cache   NameCache
	logger  *zap.Logger
}

func newStreams(pool pgPool, store *EventStore, cache NameCache, logger *zap.Logger) streams {
	return streams{
		pool:    pool,
		store:   store,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		cache:   cache,
		logger:  logger,
	}
}

// save appends each aggregate's pending changes and maintains the index
// tables in one transaction per aggregate. index may be nil for streams that
// feed no projection.
func (s *streams) save(ctx context.Context, index func(ctx context.Context, exec pgExecutor, event domain.Event) error, aggs ...aggregate) error {
	for _, agg := range aggs {
		if !agg.HasChanges() {
			continue
		}
		changes := agg.Changes()
		expected := agg.Version() - int64(len(changes))

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin save tx: %w", err)
		}
		if err := s.store.WithTx(tx).Append(ctx, agg.StreamID(), expected, changes); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		if index != nil {
			for _, event := range changes {
				if err := index(ctx, tx, event); err != nil {
					_ = tx.Rollback(ctx)
					return err
				}
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit save tx: %w", err)
		}
		agg.ClearChanges()
	}
	return nil
}

// history replays a stream, mapping emptiness to repository.ErrNotFound.
func (s *streams) history(ctx context.Context, streamID string) ([]domain.Event, error) {
	events, err := s.store.ReadStream(ctx, streamID, port.ReadOptions{})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: stream %s", repository.ErrNotFound, streamID)
	}
	return events, nil
}

// tenantOf extracts the tenant part of an encoded stream identifier; global
// scope yields the empty string.
func tenantOf(streamID string) string {
	id, err := domain.ParseIdentifier(streamID)
	if err != nil {
		return ""
	}
	tenant, _ := id.TenantID()
	return string(tenant)
}

// upsertUniqueName replaces the stream's unique-name row and returns the name
// it previously held, empty when it held none.
func (s *streams) upsertUniqueName(ctx context.Context, exec pgExecutor, kind, streamID string, name domain.UniqueName) (string, error) {
	previous, err := s.uniqueNameOf(ctx, exec, kind, streamID)
	if err != nil {
		return "", err
	}

	stmt, args, err := s.builder.Delete("identity.unique_names").
		Where(squirrel.Eq{"kind": kind, "stream_id": streamID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build delete unique name sql: %w", err)
	}
	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return "", fmt.Errorf("delete unique name: %w", err)
	}

	stmt, args, err = s.builder.Insert("identity.unique_names").
		Columns("kind", "tenant_id", "name", "stream_id").
		Values(kind, tenantOf(streamID), name.Normalized(), streamID).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert unique name sql: %w", err)
	}
	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return "", fmt.Errorf("insert unique name: %w", err)
	}

	return previous, nil
}

// removeUniqueName drops the stream's unique-name row and returns the name it
// held, empty when it held none.
func (s *streams) removeUniqueName(ctx context.Context, exec pgExecutor, kind, streamID string) (string, error) {
	previous, err := s.uniqueNameOf(ctx, exec, kind, streamID)
	if err != nil {
		return "", err
	}

	stmt, args, err := s.builder.Delete("identity.unique_names").
		Where(squirrel.Eq{"kind": kind, "stream_id": streamID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build delete unique name sql: %w", err)
	}
	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return "", fmt.Errorf("delete unique name: %w", err)
	}

	return previous, nil
}

func (s *streams) uniqueNameOf(ctx context.Context, exec pgExecutor, kind, streamID string) (string, error) {
	stmt, args, err := s.builder.Select("name").
		From("identity.unique_names").
		Where(squirrel.Eq{"kind": kind, "stream_id": streamID}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build select unique name sql: %w", err)
	}

	var name string
	if err := exec.QueryRow(ctx, stmt, args...).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("scan unique name: %w", err)
	}
	return name, nil
}

// resolveUniqueName answers a by-name lookup: cache first, then the index
// table. Returns repository.ErrNotFound when no stream holds the name.
func (s *streams) resolveUniqueName(ctx context.Context, kind string, tenant domain.TenantID, name domain.UniqueName) (string, error) {
	normalized := name.Normalized()

	if s.cache != nil {
		streamID, err := s.cache.Resolve(ctx, kind, string(tenant), normalized)
		if err != nil {
			s.logger.Warn("Name cache resolve failed", zap.String("kind", kind), zap.Error(err))
		} else if streamID != "" {
			return streamID, nil
		}
	}

	stmt, args, err := s.builder.Select("stream_id").
		From("identity.unique_names").
		Where(squirrel.Eq{"kind": kind, "tenant_id": string(tenant), "name": normalized}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build select stream by name sql: %w", err)
	}

	var streamID string
	if err := s.pool.QueryRow(ctx, stmt, args...).Scan(&streamID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s %q", repository.ErrNotFound, kind, normalized)
		}
		return "", fmt.Errorf("scan stream by name: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Bind(ctx, kind, string(tenant), normalized, streamID); err != nil {
			s.logger.Warn("Name cache bind failed", zap.String("kind", kind), zap.Error(err))
		}
	}

	return streamID, nil
}

func (s *streams) invalidateName(ctx context.Context, kind, streamID, name string) {
	if s.cache == nil || name == "" {
		return
	}
	if err := s.cache.Unbind(ctx, kind, tenantOf(streamID), name); err != nil {
		s.logger.Warn("Name cache unbind failed", zap.String("kind", kind), zap.Error(err))
	}
}

// addRoleReference records that a holder stream carries a role.
func (s *streams) addRoleReference(ctx context.Context, exec pgExecutor, roleID, holderKind, holderID string) error {
	stmt, args, err := s.builder.Insert("identity.role_references").
		Columns("role_id", "holder_kind", "holder_id").
		Values(roleID, holderKind, holderID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert role reference sql: %w", err)
	}
	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert role reference: %w", err)
	}
	return nil
}

// removeRoleReference drops one role association.
func (s *streams) removeRoleReference(ctx context.Context, exec pgExecutor, roleID, holderKind, holderID string) error {
	stmt, args, err := s.builder.Delete("identity.role_references").
		Where(squirrel.Eq{"role_id": roleID, "holder_kind": holderKind, "holder_id": holderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete role reference sql: %w", err)
	}
	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete role reference: %w", err)
	}
	return nil
}

// removeHolderReferences drops every role association a holder stream carries.
func (s *streams) removeHolderReferences(ctx context.Context, exec pgExecutor, holderKind, holderID string) error {
	stmt, args, err := s.builder.Delete("identity.role_references").
		Where(squirrel.Eq{"holder_kind": holderKind, "holder_id": holderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete holder references sql: %w", err)
	}
	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete holder references: %w", err)
	}
	return nil
}

// holdersOf lists the holder streams carrying a role.
func (s *streams) holdersOf(ctx context.Context, roleID, holderKind string) ([]string, error) {
	stmt, args, err := s.builder.Select("holder_id").
		From("identity.role_references").
		Where(squirrel.Eq{"role_id": roleID, "holder_kind": holderKind}).
		OrderBy("holder_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select holders sql: %w", err)
	}

	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query holders: %w", err)
	}
	defer rows.Close()

	var holders []string
	for rows.Next() {
		var holder string
		if err := rows.Scan(&holder); err != nil {
			return nil, fmt.Errorf("scan holder: %w", err)
		}
		holders = append(holders, holder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holders: %w", err)
	}
	return holders, nil
}
