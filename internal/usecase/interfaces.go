package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/creditledger/internal/domain"
)

// BalanceRepository defines data access for per-user balances.
type BalanceRepository interface {
	// GetForUpdate locks and returns the balance row. A missing row yields a
	// zero balance and no error; nothing is inserted.
	GetForUpdate(ctx context.Context, tx Transaction, userID, currency string) (*domain.Balance, error)
	// Increment upserts the row, adding amount, and returns the new balance.
	Increment(ctx context.Context, tx Transaction, userID, currency string, amount decimal.Decimal, updatedAt time.Time) (*domain.Balance, error)
	// UpdateBalance overwrites the balance of a row previously locked with GetForUpdate.
	UpdateBalance(ctx context.Context, tx Transaction, userID, currency string, balance decimal.Decimal, updatedAt time.Time) error
}

// HoldRepository defines data access for holds.
type HoldRepository interface {
	Create(ctx context.Context, tx Transaction, hold *domain.Hold) error
	GetByID(ctx context.Context, id string) (*domain.Hold, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Hold, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.HoldStatus, updatedAt time.Time) error
	ListByUser(ctx context.Context, userID string, status *domain.HoldStatus, limit, offset int) ([]*domain.Hold, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete releases a key whose request did not complete successfully.
	Delete(ctx context.Context, key string) error
}
