package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/infrastructure/postgres/generated"
	"github.com/iho/creditledger/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository on the credits table.
type BalanceRepository struct {
	queries *generated.Queries
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return newBalanceRepository(pool)
}

func newBalanceRepository(db generated.DBTX) *BalanceRepository {
	return &BalanceRepository{queries: generated.New(db)}
}

// GetForUpdate reads a balance with a FOR UPDATE lock held until the
// transaction ends. No row is created for a user without a balance.
func (r *BalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, userID, currency string) (*domain.Balance, error) {
	queries := generated.New(tx.(*Tx).PgxTx())

	row, err := queries.GetCreditForUpdate(ctx, generated.GetCreditForUpdateParams{
		UserID:   userID,
		Currency: currency,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ZeroBalance(userID, currency), nil
		}
		return nil, err
	}

	return rowToBalance(row), nil
}

// Increment adds amount to the balance, creating the row on first credit.
func (r *BalanceRepository) Increment(ctx context.Context, tx usecase.Transaction, userID, currency string, amount decimal.Decimal, updatedAt time.Time) (*domain.Balance, error) {
	queries := generated.New(tx.(*Tx).PgxTx())

	row, err := queries.IncrementCredit(ctx, generated.IncrementCreditParams{
		UserID:    userID,
		Currency:  currency,
		Balance:   decimalToNumeric(amount),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		if isNumericOverflow(err) {
			return nil, fmt.Errorf("%w: balance of %s in %s cannot grow by %s", domain.ErrAmountTooLarge, userID, currency, amount)
		}
		return nil, err
	}

	return rowToBalance(row), nil
}

// UpdateBalance overwrites a balance locked earlier in the same transaction.
func (r *BalanceRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, userID, currency string, balance decimal.Decimal, updatedAt time.Time) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	return queries.UpdateCreditBalance(ctx, generated.UpdateCreditBalanceParams{
		UserID:    userID,
		Currency:  currency,
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

func rowToBalance(row generated.Credit) *domain.Balance {
	return &domain.Balance{
		UserID:    row.UserID,
		Currency:  row.Currency,
		Amount:    numericToDecimal(row.Balance),
		UpdatedAt: row.UpdatedAt.Time,
	}
}
