package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditledger/internal/domain"
)

var holdColumns = []string{"id", "user_id", "payee_id", "amount", "currency", "reason", "status", "created_at", "updated_at"}

func holdRow(rows *pgxmock.Rows, id string, status domain.HoldStatus, at time.Time) *pgxmock.Rows {
	return rows.AddRow(id, "payer", "payee", decimalToNumeric(decimal.NewFromInt(200)), "USD",
		pgtype.Text{String: "order 42", Valid: true}, string(status), timeToPgTimestamptz(at), timeToPgTimestamptz(at))
}

func TestHoldRepository_Create(t *testing.T) {
	pool := newMockPool(t)
	repo := newHoldRepository(pool)
	tx := beginMockTx(t, pool)
	now := time.Now().UTC()

	pool.ExpectQuery(`INSERT INTO holds`).
		WithArgs("h-1", "payer", "payee", pgxmock.AnyArg(), "USD", pgxmock.AnyArg(), "pending", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(holdRow(pgxmock.NewRows(holdColumns), "h-1", domain.HoldStatusPending, now))

	reason := "order 42"
	err := repo.Create(context.Background(), tx, &domain.Hold{
		ID:        "h-1",
		UserID:    "payer",
		PayeeID:   "payee",
		Amount:    decimal.NewFromInt(200),
		Currency:  "USD",
		Reason:    &reason,
		Status:    domain.HoldStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	assertExpectations(t, pool)
}

func TestHoldRepository_GetByIDForUpdate(t *testing.T) {
	pool := newMockPool(t)
	repo := newHoldRepository(pool)
	tx := beginMockTx(t, pool)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	pool.ExpectQuery(`FROM holds\s+WHERE id = \$1\s+FOR UPDATE`).
		WithArgs("h-1").
		WillReturnRows(holdRow(pgxmock.NewRows(holdColumns), "h-1", domain.HoldStatusPending, now))

	hold, err := repo.GetByIDForUpdate(context.Background(), tx, "h-1")
	require.NoError(t, err)
	assert.Equal(t, "payee", hold.PayeeID)
	assert.Equal(t, domain.HoldStatusPending, hold.Status)
	require.NotNil(t, hold.Reason)
	assert.Equal(t, "order 42", *hold.Reason)
	assert.True(t, hold.Amount.Equal(decimal.NewFromInt(200)))
	assertExpectations(t, pool)
}

func TestHoldRepository_GetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := newHoldRepository(pool)

	pool.ExpectQuery(`FROM holds`).WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrHoldNotFound)
	assertExpectations(t, pool)
}

func TestHoldRepository_UpdateStatus(t *testing.T) {
	pool := newMockPool(t)
	repo := newHoldRepository(pool)
	tx := beginMockTx(t, pool)

	pool.ExpectExec(`UPDATE holds`).
		WithArgs("h-1", "captured", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), tx, "h-1", domain.HoldStatusCaptured, time.Now()))
	assertExpectations(t, pool)
}

func TestHoldRepository_ListByUserWithStatus(t *testing.T) {
	pool := newMockPool(t)
	repo := newHoldRepository(pool)
	now := time.Now().UTC()
	status := domain.HoldStatusVoid

	rows := pgxmock.NewRows(holdColumns)
	holdRow(rows, "h-2", domain.HoldStatusVoid, now)
	holdRow(rows, "h-1", domain.HoldStatusVoid, now.Add(-time.Minute))

	pool.ExpectQuery(`FROM holds\s+WHERE user_id = \$1`).
		WithArgs("payer", int32(10), int32(0), pgtype.Text{String: "void", Valid: true}).
		WillReturnRows(rows)

	holds, err := repo.ListByUser(context.Background(), "payer", &status, 10, 0)
	require.NoError(t, err)
	require.Len(t, holds, 2)
	assert.Equal(t, "h-2", holds[0].ID)
	assertExpectations(t, pool)
}
