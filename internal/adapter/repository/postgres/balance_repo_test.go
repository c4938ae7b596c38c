package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

var creditColumns = []string{"user_id", "currency", "balance", "updated_at"}

func beginMockTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	pool.ExpectBeginTx(ledgerTxOptions)
	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	require.NoError(t, err)
	return tx
}

func TestBalanceRepository_GetForUpdate(t *testing.T) {
	pool := newMockPool(t)
	repo := newBalanceRepository(pool)
	tx := beginMockTx(t, pool)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	pool.ExpectQuery(`SELECT .* FROM credits\s+WHERE user_id = \$1 AND currency = \$2\s+FOR UPDATE`).
		WithArgs("alice", "USD").
		WillReturnRows(pgxmock.NewRows(creditColumns).
			AddRow("alice", "USD", decimalToNumeric(decimal.NewFromInt(1000)), timeToPgTimestamptz(now)))

	balance, err := repo.GetForUpdate(context.Background(), tx, "alice", "USD")
	require.NoError(t, err)
	assert.True(t, balance.Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, now, balance.UpdatedAt)
	assertExpectations(t, pool)
}

func TestBalanceRepository_GetForUpdateMissingRowIsZero(t *testing.T) {
	pool := newMockPool(t)
	repo := newBalanceRepository(pool)
	tx := beginMockTx(t, pool)

	pool.ExpectQuery(`FOR UPDATE`).
		WithArgs("ghost", "USD").
		WillReturnError(pgx.ErrNoRows)

	balance, err := repo.GetForUpdate(context.Background(), tx, "ghost", "USD")
	require.NoError(t, err)
	assert.True(t, balance.Amount.IsZero())
	assert.Equal(t, "ghost", balance.UserID)
	assertExpectations(t, pool)
}

func TestBalanceRepository_GetForUpdatePropagatesErrors(t *testing.T) {
	pool := newMockPool(t)
	repo := newBalanceRepository(pool)
	tx := beginMockTx(t, pool)
	boom := errors.New("connection reset")

	pool.ExpectQuery(`SELECT .* FROM credits`).
		WithArgs("alice", "USD").
		WillReturnError(boom)

	_, err := repo.GetForUpdate(context.Background(), tx, "alice", "USD")
	require.ErrorIs(t, err, boom)
	assertExpectations(t, pool)
}

func TestBalanceRepository_IncrementOverflow(t *testing.T) {
	pool := newMockPool(t)
	repo := newBalanceRepository(pool)
	tx := beginMockTx(t, pool)

	pool.ExpectQuery(`INSERT INTO credits`).
		WithArgs("alice", "USD", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "22003", Message: "numeric field overflow"})

	_, err := repo.Increment(context.Background(), tx, "alice", "USD", decimal.NewFromInt(1), time.Now())
	require.ErrorIs(t, err, domain.ErrAmountTooLarge)
	assertExpectations(t, pool)
}

func TestBalanceRepository_Increment(t *testing.T) {
	pool := newMockPool(t)
	repo := newBalanceRepository(pool)
	tx := beginMockTx(t, pool)
	now := time.Now().UTC()

	pool.ExpectQuery(`INSERT INTO credits .* ON CONFLICT \(user_id, currency\)`).
		WithArgs("alice", "USD", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(creditColumns).
			AddRow("alice", "USD", decimalToNumeric(decimal.NewFromInt(1250)), timeToPgTimestamptz(now)))

	balance, err := repo.Increment(context.Background(), tx, "alice", "USD", decimal.NewFromInt(250), now)
	require.NoError(t, err)
	assert.True(t, balance.Amount.Equal(decimal.NewFromInt(1250)))
	assertExpectations(t, pool)
}

func TestBalanceRepository_UpdateBalance(t *testing.T) {
	pool := newMockPool(t)
	repo := newBalanceRepository(pool)
	tx := beginMockTx(t, pool)

	pool.ExpectExec(`UPDATE credits SET balance = \$3`).
		WithArgs("alice", "USD", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateBalance(context.Background(), tx, "alice", "USD", decimal.NewFromInt(400), time.Now())
	require.NoError(t, err)
	assertExpectations(t, pool)
}

func TestNumericRoundTrip(t *testing.T) {
	for _, v := range []string{"0", "1", "1000", "99999999999999999999999999999999999999"} {
		d := decimal.RequireFromString(v)
		got := numericToDecimal(decimalToNumeric(d))
		assert.Truef(t, got.Equal(d), "%s became %s", v, got)
	}

	assert.True(t, numericToDecimal(decimalToNumeric(decimal.Zero)).IsZero())
}
