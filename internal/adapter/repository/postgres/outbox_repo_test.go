package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditledger/internal/domain"
)

func TestOutboxRepository_Create(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepository(pool)
	tx := beginMockTx(t, pool)

	pool.ExpectExec(`INSERT INTO outbox_events`).
		WithArgs("ev-1", "alice:USD", domain.AggregateTypeBalance, domain.EventTypeCreditAdded,
			[]byte(`{"amount":"100"}`), pgxmock.AnyArg(), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), tx, &domain.OutboxEvent{
		ID:            "ev-1",
		AggregateID:   domain.BalanceAggregateID("alice", "USD"),
		AggregateType: domain.AggregateTypeBalance,
		EventType:     domain.EventTypeCreditAdded,
		Payload:       map[string]any{"amount": "100"},
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)
	assertExpectations(t, pool)
}

func TestOutboxRepository_GetUnpublished(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepository(pool)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"id", "seq", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published", "published_at"}).
		AddRow("ev-1", int64(7), "h-1", domain.AggregateTypeHold, domain.EventTypeHoldCreated,
			[]byte(`{"hold_id":"h-1"}`), timeToPgTimestamptz(now), false, pgtype.Timestamptz{})

	pool.ExpectQuery(`FROM outbox_events`).WithArgs(int32(25)).WillReturnRows(rows)

	events, err := repo.GetUnpublished(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "h-1", events[0].Payload["hold_id"])
	assert.Equal(t, int64(7), events[0].Sequence)
	assert.Nil(t, events[0].PublishedAt)
	assertExpectations(t, pool)
}

func TestOutboxRepository_GetUnpublishedCorruptPayload(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepository(pool)

	rows := pgxmock.NewRows([]string{"id", "seq", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published", "published_at"}).
		AddRow("ev-1", int64(7), "h-1", domain.AggregateTypeHold, domain.EventTypeHoldCreated,
			[]byte(`{not json`), timeToPgTimestamptz(time.Now()), false, pgtype.Timestamptz{})

	pool.ExpectQuery(`FROM outbox_events`).WithArgs(int32(10)).WillReturnRows(rows)

	_, err := repo.GetUnpublished(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ev-1")
}

func TestOutboxRepository_MarkPublished(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepository(pool)

	pool.ExpectExec(`UPDATE outbox_events`).
		WithArgs("ev-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.MarkPublished(context.Background(), "ev-1", time.Now()))
	assertExpectations(t, pool)
}
