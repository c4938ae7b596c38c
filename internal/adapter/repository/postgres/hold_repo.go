package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/infrastructure/postgres/generated"
	"github.com/iho/creditledger/internal/usecase"
)

// HoldRepository implements usecase.HoldRepository.
type HoldRepository struct {
	queries *generated.Queries
}

// NewHoldRepository creates a new HoldRepository.
func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return newHoldRepository(pool)
}

func newHoldRepository(db generated.DBTX) *HoldRepository {
	return &HoldRepository{queries: generated.New(db)}
}

// Create inserts a new hold.
func (r *HoldRepository) Create(ctx context.Context, tx usecase.Transaction, hold *domain.Hold) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	_, err := queries.CreateHold(ctx, generated.CreateHoldParams{
		ID:        hold.ID,
		UserID:    hold.UserID,
		PayeeID:   hold.PayeeID,
		Amount:    decimalToNumeric(hold.Amount),
		Currency:  hold.Currency,
		Reason:    stringToPgText(hold.Reason),
		Status:    string(hold.Status),
		CreatedAt: timeToPgTimestamptz(hold.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(hold.UpdatedAt),
	})

	return err
}

// GetByID retrieves a hold by ID.
func (r *HoldRepository) GetByID(ctx context.Context, id string) (*domain.Hold, error) {
	row, err := r.queries.GetHoldByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHoldNotFound
		}
		return nil, err
	}

	return rowToHold(row), nil
}

// GetByIDForUpdate retrieves a hold by ID with a FOR UPDATE lock.
func (r *HoldRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Hold, error) {
	queries := generated.New(tx.(*Tx).PgxTx())

	row, err := queries.GetHoldByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHoldNotFound
		}
		return nil, err
	}

	return rowToHold(row), nil
}

// UpdateStatus updates the status of a hold.
func (r *HoldRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.HoldStatus, updatedAt time.Time) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	return queries.UpdateHoldStatus(ctx, generated.UpdateHoldStatusParams{
		ID:        id,
		Status:    string(status),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

// ListByUser lists holds placed by a payer, newest first.
func (r *HoldRepository) ListByUser(ctx context.Context, userID string, status *domain.HoldStatus, limit, offset int) ([]*domain.Hold, error) {
	var statusFilter pgtype.Text
	if status != nil {
		statusFilter = pgtype.Text{String: string(*status), Valid: true}
	}

	rows, err := r.queries.ListHoldsByUser(ctx, generated.ListHoldsByUserParams{
		UserID: userID,
		Limit:  int32(limit),
		Offset: int32(offset),
		Status: statusFilter,
	})
	if err != nil {
		return nil, err
	}

	holds := make([]*domain.Hold, 0, len(rows))
	for _, row := range rows {
		holds = append(holds, rowToHold(row))
	}

	return holds, nil
}

func rowToHold(row generated.Hold) *domain.Hold {
	return &domain.Hold{
		ID:        row.ID,
		UserID:    row.UserID,
		PayeeID:   row.PayeeID,
		Amount:    numericToDecimal(row.Amount),
		Currency:  row.Currency,
		Reason:    pgTextToString(row.Reason),
		Status:    domain.HoldStatus(row.Status),
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
