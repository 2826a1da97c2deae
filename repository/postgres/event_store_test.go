package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"go.uber.org/zap"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
	"github.com/Logitar/Identity-sub002/repository"
)

// fakeHasher revives plaintext-comparing passwords so codec tests run without
// argon2.
type fakeHasher struct{}

type fakePassword struct{ value string }

func (p fakePassword) IsMatch(attempt string) bool { return p.value == attempt }
func (p fakePassword) Encoded() string             { return p.value }
func (p fakePassword) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", p.value)), nil
}

func (fakeHasher) Hash(plaintext string) (domain.Password, error) {
	return fakePassword{plaintext}, nil
}

func (fakeHasher) Decode(encoded string) (domain.Password, error) {
	return fakePassword{encoded}, nil
}

func mustDisplayName(t *testing.T, value string) domain.DisplayName {
	t.Helper()
	name, err := domain.NewDisplayName(value)
	if err != nil {
		t.Fatalf("NewDisplayName(%q): %v", value, err)
	}
	return name
}

func TestEventStoreAppend(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewEventStore(mock, NewCodec(fakeHasher{}), zap.NewNop())

	role := domain.NewRole(domain.NewRoleID(""), mustName(t, "member"), "admin")
	changes := role.Changes()

	mock.ExpectExec(`INSERT INTO identity\.events`).
		WithArgs(anyArgs(7)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := store.Append(context.Background(), role.StreamID(), 0, changes); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventStoreAppendConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewEventStore(mock, NewCodec(fakeHasher{}), zap.NewNop())

	role := domain.NewRole(domain.NewRoleID(""), mustName(t, "member"), "admin")

	mock.ExpectExec(`INSERT INTO identity\.events`).
		WithArgs(anyArgs(7)...).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	err = store.Append(context.Background(), role.StreamID(), 0, role.Changes())
	if !errors.Is(err, repository.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventStoreAppendRejectsVersionGap(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewEventStore(mock, NewCodec(fakeHasher{}), zap.NewNop())

	role := domain.NewRole(domain.NewRoleID(""), mustName(t, "member"), "admin")

	// The creation event carries version 1, not 6.
	if err := store.Append(context.Background(), role.StreamID(), 5, role.Changes()); err == nil {
		t.Fatal("expected a version sequencing error")
	}
}

func TestEventStoreReadStream(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	codec := NewCodec(fakeHasher{})
	store := NewEventStore(mock, codec, zap.NewNop())

	key := domain.NewApiKey(domain.NewApiKeyID(""), mustDisplayName(t, "Key"), fakePassword{"s3cr3t"}, "admin")
	rows := pgxmock.NewRows([]string{"kind", "payload"})
	for _, event := range key.Changes() {
		payload, err := codec.Encode(event)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		rows.AddRow(event.Kind(), payload)
	}

	mock.ExpectQuery(`SELECT kind, payload FROM identity\.events`).
		WithArgs(anyArgs(1)...).
		WillReturnRows(rows)

	events, err := store.ReadStream(context.Background(), key.StreamID(), port.ReadOptions{})
	if err != nil {
		t.Fatalf("ReadStream: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	created, ok := events[0].(*domain.ApiKeyCreated)
	if !ok {
		t.Fatalf("expected *domain.ApiKeyCreated, got %T", events[0])
	}
	if created.DisplayName != "Key" {
		t.Errorf("DisplayName = %q, want Key", created.DisplayName)
	}
	// The secret survives the round trip through the hasher's Decode.
	if created.Secret == nil || !created.Secret.IsMatch("s3cr3t") {
		t.Error("decoded secret should match the original plaintext")
	}

	replayed, err := domain.LoadApiKey(events)
	if err != nil {
		t.Fatalf("LoadApiKey: %v", err)
	}
	if err := replayed.Authenticate("s3cr3t", ""); err != nil {
		t.Errorf("replayed key should authenticate: %v", err)
	}
}

// anyArgs returns n wildcard matchers; pgxmock requires the expected argument
// count to match even when the values are irrelevant to the test.
func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func mustName(t *testing.T, value string) domain.UniqueName {
	t.Helper()
	name, err := domain.NewUniqueName(value)
	if err != nil {
		t.Fatalf("NewUniqueName(%q): %v", value, err)
	}
	return name
}
