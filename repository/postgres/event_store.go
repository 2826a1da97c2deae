package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
	"github.com/Logitar/Identity-sub002/infra/telemetry"
	"github.com/Logitar/Identity-sub002/repository"
)

const uniqueViolationCode = "23505"

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EventStore persists event streams in the identity.events table. The unique
// (stream_id, version) constraint is what detects concurrent writers; a
// violation surfaces as repository.ErrVersionConflict and is never retried
// here.
type EventStore struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	codec   *Codec
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewEventStore constructs a PostgreSQL-backed event store.
func NewEventStore(exec pgExecutor, codec *Codec, logger *zap.Logger) *EventStore {
	return &EventStore{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		codec:   codec,
		logger:  logger,
		tracer:  telemetry.Tracer("repository/postgres"),
	}
}

// WithTx returns a store executing within the provided transaction.
func (s *EventStore) WithTx(tx pgx.Tx) *EventStore {
	if tx == nil {
		return s
	}
	return &EventStore{
		exec:    tx,
		builder: s.builder,
		codec:   s.codec,
		logger:  s.logger,
		tracer:  s.tracer,
	}
}

// Append stores the events at versions expectedVersion+1 onward.
func (s *EventStore) Append(ctx context.Context, streamID string, expectedVersion int64, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "EventStore.Append",
		trace.WithAttributes(
			attribute.String("stream.id", streamID),
			attribute.Int64("stream.expected_version", expectedVersion),
			attribute.Int("events.count", len(events)),
		))
	defer span.End()

	start := time.Now()

	query := s.builder.Insert("identity.events").
		Columns("event_id", "stream_id", "version", "kind", "actor_id", "occurred_on", "payload")

	version := expectedVersion
	for _, event := range events {
		version++
		if event.EventVersion() != version {
			telemetry.EventAppends.WithLabelValues(telemetry.StatusError).Inc()
			return fmt.Errorf("append stream %s: event %s has version %d, want %d",
				streamID, event.Kind(), event.EventVersion(), version)
		}
		payload, err := s.codec.Encode(event)
		if err != nil {
			telemetry.EventAppends.WithLabelValues(telemetry.StatusError).Inc()
			return err
		}
		query = query.Values(
			event.EventID(),
			streamID,
			event.EventVersion(),
			event.Kind(),
			event.ActorID(),
			event.OccurredOn(),
			payload,
		)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		telemetry.EventAppends.WithLabelValues(telemetry.StatusError).Inc()
		return fmt.Errorf("build insert events sql: %w", err)
	}

	if _, err := s.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			telemetry.EventAppends.WithLabelValues(telemetry.StatusConflict).Inc()
			s.logger.Debug("Stream version conflict",
				zap.String("stream_id", streamID),
				zap.Int64("expected_version", expectedVersion),
			)
			return fmt.Errorf("append stream %s at version %d: %w",
				streamID, expectedVersion, repository.ErrVersionConflict)
		}
		telemetry.EventAppends.WithLabelValues(telemetry.StatusError).Inc()
		return fmt.Errorf("insert events: %w", err)
	}

	telemetry.EventAppends.WithLabelValues(telemetry.StatusOK).Inc()
	telemetry.EventAppendDuration.Observe(time.Since(start).Seconds())

	return nil
}

// ReadStream returns the stream's events in version order, honoring the
// optional bounds. An unknown stream yields an empty slice.
func (s *EventStore) ReadStream(ctx context.Context, streamID string, opts port.ReadOptions) ([]domain.Event, error) {
	ctx, span := s.tracer.Start(ctx, "EventStore.ReadStream",
		trace.WithAttributes(attribute.String("stream.id", streamID)))
	defer span.End()

	query := s.builder.Select("kind", "payload").
		From("identity.events").
		Where(squirrel.Eq{"stream_id": streamID}).
		OrderBy("version ASC")
	if opts.FromVersion > 0 {
		query = query.Where(squirrel.GtOrEq{"version": opts.FromVersion})
	}
	if opts.ToVersion > 0 {
		query = query.Where(squirrel.LtOrEq{"version": opts.ToVersion})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		telemetry.StreamReads.WithLabelValues(telemetry.StatusError).Inc()
		return nil, fmt.Errorf("build select events sql: %w", err)
	}

	rows, err := s.exec.Query(ctx, stmt, args...)
	if err != nil {
		telemetry.StreamReads.WithLabelValues(telemetry.StatusError).Inc()
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			kind    string
			payload []byte
		)
		if err := rows.Scan(&kind, &payload); err != nil {
			telemetry.StreamReads.WithLabelValues(telemetry.StatusError).Inc()
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event, err := s.codec.Decode(kind, payload)
		if err != nil {
			telemetry.StreamReads.WithLabelValues(telemetry.StatusError).Inc()
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		telemetry.StreamReads.WithLabelValues(telemetry.StatusError).Inc()
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	telemetry.StreamReads.WithLabelValues(telemetry.StatusOK).Inc()

	return events, nil
}

var _ port.EventStore = (*EventStore)(nil)
