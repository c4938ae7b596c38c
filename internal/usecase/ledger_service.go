package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/infrastructure/metrics"
)

// Operation names used for metrics labels and log fields.
const (
	OpGetBalance       = "get_balance"
	OpAddCredit        = "add_credit"
	OpDeductCredit     = "deduct_credit"
	OpTransferWithHold = "transfer_with_hold"
	OpReleaseHold      = "release_hold"
	OpVoidHold         = "void_hold"
)

// LedgerService mediates every change to user balances and holds. Each
// mutating call runs in exactly one transaction and locks the rows it reads.
type LedgerService struct {
	txManager   TransactionManager
	balanceRepo BalanceRepository
	holdRepo    HoldRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
	logger      zerolog.Logger

	defaultCurrency      string
	creditPayeeOnCapture bool
	txTimeout            time.Duration
	now                  func() time.Time
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithDefaultCurrency sets the currency used when a caller passes none.
func WithDefaultCurrency(currency string) Option {
	return func(s *LedgerService) {
		s.defaultCurrency = domain.NormalizeCurrency(currency)
	}
}

// WithPayeeCreditOnCapture controls whether ReleaseHold credits the payee in
// the capture transaction. When disabled, capture only flips the hold status
// and crediting the payee is left to the caller.
func WithPayeeCreditOnCapture(enabled bool) Option {
	return func(s *LedgerService) {
		s.creditPayeeOnCapture = enabled
	}
}

// WithMetrics records operation metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *LedgerService) {
		s.metrics = m
	}
}

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *LedgerService) {
		s.logger = logger
	}
}

// WithTransactionTimeout bounds every transaction, lock waits included.
func WithTransactionTimeout(d time.Duration) Option {
	return func(s *LedgerService) {
		if d > 0 {
			s.txTimeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) {
		s.now = now
	}
}

// NewLedgerService creates a LedgerService. It is meant to be built once at
// startup and shared by all callers.
func NewLedgerService(
	txManager TransactionManager,
	balanceRepo BalanceRepository,
	holdRepo HoldRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	opts ...Option,
) *LedgerService {
	s := &LedgerService{
		txManager:            txManager,
		balanceRepo:          balanceRepo,
		holdRepo:             holdRepo,
		outboxRepo:           outboxRepo,
		idGen:                idGen,
		logger:               zerolog.Nop(),
		defaultCurrency:      DefaultCurrency,
		creditPayeeOnCapture: true,
		txTimeout:            DefaultTransactionTimeout,
		now:                  func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// DefaultCurrency returns the currency applied when callers omit one.
func (s *LedgerService) DefaultCurrency() string {
	return s.defaultCurrency
}

// GetBalance returns the balance for (userID, currency) using a locking
// read. A pair that was never credited reports zero and is not created.
func (s *LedgerService) GetBalance(ctx context.Context, userID, currency string) (balance decimal.Decimal, err error) {
	start := time.Now()
	defer func() { s.observe(OpGetBalance, start, err) }()

	currency, err = s.validateTarget(userID, currency)
	if err != nil {
		return decimal.Zero, err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	current, err := s.balanceRepo.GetForUpdate(txCtx, tx, userID, currency)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return decimal.Zero, err
	}

	return current.Amount, nil
}

// AddCredit increases the balance, creating the row on first credit, and
// returns the resulting balance.
func (s *LedgerService) AddCredit(ctx context.Context, userID string, amount decimal.Decimal, currency string) (balance decimal.Decimal, err error) {
	start := time.Now()
	defer func() { s.observe(OpAddCredit, start, err) }()

	if err := domain.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	currency, err = s.validateTarget(userID, currency)
	if err != nil {
		return decimal.Zero, err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := s.now()
	updated, err := s.balanceRepo.Increment(txCtx, tx, userID, currency, amount, now)
	if err != nil {
		return decimal.Zero, err
	}

	if err := s.emit(txCtx, tx, domain.AggregateTypeBalance, domain.BalanceAggregateID(userID, currency), domain.EventTypeCreditAdded, now, map[string]any{
		"user_id":  userID,
		"currency": currency,
		"amount":   amount.String(),
		"balance":  updated.Amount.String(),
	}); err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return decimal.Zero, err
	}

	if s.metrics != nil {
		s.metrics.CreditsAdded.Inc()
	}

	return updated.Amount, nil
}

// DeductCredit removes amount from the balance. It fails with
// domain.ErrInsufficientFunds, writing nothing, when the locked balance
// cannot cover the amount.
func (s *LedgerService) DeductCredit(ctx context.Context, userID string, amount decimal.Decimal, currency string) (balance decimal.Decimal, err error) {
	start := time.Now()
	defer func() { s.observe(OpDeductCredit, start, err) }()

	if err := domain.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	currency, err = s.validateTarget(userID, currency)
	if err != nil {
		return decimal.Zero, err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	current, err := s.balanceRepo.GetForUpdate(txCtx, tx, userID, currency)
	if err != nil {
		return decimal.Zero, err
	}

	if !current.CanCover(amount) {
		return decimal.Zero, domain.ErrInsufficientFunds
	}

	now := s.now()
	newBalance := current.ApplyDebit(amount)
	if err := s.balanceRepo.UpdateBalance(txCtx, tx, userID, currency, newBalance, now); err != nil {
		return decimal.Zero, err
	}

	if err := s.emit(txCtx, tx, domain.AggregateTypeBalance, domain.BalanceAggregateID(userID, currency), domain.EventTypeCreditDeducted, now, map[string]any{
		"user_id":  userID,
		"currency": currency,
		"amount":   amount.String(),
		"balance":  newBalance.String(),
	}); err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return decimal.Zero, err
	}

	if s.metrics != nil {
		s.metrics.CreditsDeducted.Inc()
	}

	return newBalance, nil
}

// TransferWithHoldInput describes an escrowed transfer.
type TransferWithHoldInput struct {
	PayerID  string
	PayeeID  string
	Amount   decimal.Decimal
	Currency string
	Reason   *string
}

// TransferWithHold debits the payer and records a pending hold for the
// amount. The payee is not credited until the hold is released.
func (s *LedgerService) TransferWithHold(ctx context.Context, input TransferWithHoldInput) (holdID string, err error) {
	start := time.Now()
	defer func() { s.observe(OpTransferWithHold, start, err) }()

	reason := input.Reason
	if reason != nil && *reason == "" {
		reason = nil
	}
	hold := &domain.Hold{
		UserID:  input.PayerID,
		PayeeID: input.PayeeID,
		Amount:  input.Amount,
		Reason:  reason,
		Status:  domain.HoldStatusPending,
	}
	if err := hold.Validate(); err != nil {
		return "", err
	}
	hold.Currency, err = s.validateTarget(input.PayerID, input.Currency)
	if err != nil {
		return "", err
	}
	currency := hold.Currency

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	payer, err := s.balanceRepo.GetForUpdate(txCtx, tx, input.PayerID, currency)
	if err != nil {
		return "", err
	}

	if !payer.CanCover(input.Amount) {
		return "", domain.ErrInsufficientFundsForHold
	}

	now := s.now()
	newBalance := payer.ApplyDebit(input.Amount)
	if err := s.balanceRepo.UpdateBalance(txCtx, tx, input.PayerID, currency, newBalance, now); err != nil {
		return "", err
	}

	hold.ID = s.idGen.Generate()
	hold.CreatedAt = now
	hold.UpdatedAt = now
	if err := s.holdRepo.Create(txCtx, tx, hold); err != nil {
		return "", err
	}

	payload := map[string]any{
		"hold_id":       hold.ID,
		"user_id":       hold.UserID,
		"payee_id":      hold.PayeeID,
		"amount":        hold.Amount.String(),
		"currency":      hold.Currency,
		"payer_balance": newBalance.String(),
	}
	if reason != nil {
		payload["reason"] = *reason
	}
	if err := s.emit(txCtx, tx, domain.AggregateTypeHold, hold.ID, domain.EventTypeHoldCreated, now, payload); err != nil {
		return "", err
	}

	if err := tx.Commit(txCtx); err != nil {
		return "", err
	}

	if s.metrics != nil {
		s.metrics.HoldsCreated.Inc()
	}

	return hold.ID, nil
}

// ReleaseHold captures a pending hold, finalizing the escrowed funds as
// delivered. The payer is not touched again; the payee is credited in the
// same transaction unless payee crediting on capture is disabled.
func (s *LedgerService) ReleaseHold(ctx context.Context, holdID string) (err error) {
	start := time.Now()
	defer func() { s.observe(OpReleaseHold, start, err) }()

	return s.resolveHold(ctx, holdID, domain.HoldStatusCaptured)
}

// VoidHold cancels a pending hold and returns its amount to the payer.
func (s *LedgerService) VoidHold(ctx context.Context, holdID string) (err error) {
	start := time.Now()
	defer func() { s.observe(OpVoidHold, start, err) }()

	return s.resolveHold(ctx, holdID, domain.HoldStatusVoid)
}

func (s *LedgerService) resolveHold(ctx context.Context, holdID string, to domain.HoldStatus) error {
	if err := domain.ValidateHoldID(holdID); err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Hold row first, then the balance row it settles into.
	hold, err := s.holdRepo.GetByIDForUpdate(txCtx, tx, holdID)
	if err != nil {
		return err
	}

	now := s.now()
	if err := hold.Transition(to, now); err != nil {
		return err
	}

	payload := map[string]any{
		"hold_id":  hold.ID,
		"user_id":  hold.UserID,
		"payee_id": hold.PayeeID,
		"amount":   hold.Amount.String(),
		"currency": hold.Currency,
	}

	var eventType string
	switch to {
	case domain.HoldStatusCaptured:
		eventType = domain.EventTypeHoldCaptured
		payload["payee_credited"] = s.creditPayeeOnCapture
		if s.creditPayeeOnCapture {
			payee, err := s.balanceRepo.Increment(txCtx, tx, hold.PayeeID, hold.Currency, hold.Amount, now)
			if err != nil {
				return err
			}
			payload["payee_balance"] = payee.Amount.String()
		}
	case domain.HoldStatusVoid:
		eventType = domain.EventTypeHoldVoided
		payer, err := s.balanceRepo.Increment(txCtx, tx, hold.UserID, hold.Currency, hold.Amount, now)
		if err != nil {
			return err
		}
		payload["payer_balance"] = payer.Amount.String()
	}

	if err := s.holdRepo.UpdateStatus(txCtx, tx, hold.ID, to, now); err != nil {
		return err
	}

	if err := s.emit(txCtx, tx, domain.AggregateTypeHold, hold.ID, eventType, now, payload); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if s.metrics != nil {
		switch to {
		case domain.HoldStatusCaptured:
			s.metrics.HoldsCaptured.Inc()
		case domain.HoldStatusVoid:
			s.metrics.HoldsVoided.Inc()
		}
	}

	return nil
}

// GetHold returns a hold without locking it.
func (s *LedgerService) GetHold(ctx context.Context, holdID string) (*domain.Hold, error) {
	if err := domain.ValidateHoldID(holdID); err != nil {
		return nil, err
	}
	return s.holdRepo.GetByID(ctx, holdID)
}

// ListHoldsInput represents input for listing a payer's holds.
type ListHoldsInput struct {
	UserID string
	Status *domain.HoldStatus
	Limit  int
	Offset int
}

// ListHolds lists holds created by a payer, newest first.
func (s *LedgerService) ListHolds(ctx context.Context, input ListHoldsInput) ([]*domain.Hold, error) {
	if err := domain.ValidateUserID(input.UserID); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidHoldStatus, *input.Status)
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return s.holdRepo.ListByUser(ctx, input.UserID, input.Status, limit, offset)
}

func (s *LedgerService) validateTarget(userID, currency string) (string, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return "", err
	}

	if currency == "" {
		currency = s.defaultCurrency
	}
	currency = domain.NormalizeCurrency(currency)
	if err := domain.ValidateCurrency(currency); err != nil {
		return "", err
	}

	return currency, nil
}

func (s *LedgerService) emit(ctx context.Context, tx Transaction, aggregateType, aggregateID, eventType string, at time.Time, payload map[string]any) error {
	return s.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            s.idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     at,
	})
}

// observe records the outcome of an operation. Business rejections are
// logged at info, infrastructure failures at error.
func (s *LedgerService) observe(op string, start time.Time, err error) {
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.OperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	}

	var stateErr *domain.HoldStateError
	switch {
	case err == nil:
		s.logger.Debug().Str("operation", op).Dur("duration", elapsed).Msg("ledger operation committed")
	case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrInsufficientFundsForHold):
		if s.metrics != nil {
			s.metrics.InsufficientFunds.WithLabelValues(op).Inc()
		}
		s.logger.Info().Str("operation", op).Err(err).Msg("ledger operation rejected")
	case errors.As(err, &stateErr):
		if s.metrics != nil {
			s.metrics.InvalidHoldState.WithLabelValues(op, string(stateErr.Status)).Inc()
		}
		s.logger.Info().Str("operation", op).Str("hold_id", stateErr.HoldID).Err(err).Msg("ledger operation rejected")
	case isBusinessError(err):
		s.logger.Info().Str("operation", op).Err(err).Msg("ledger operation rejected")
	default:
		if s.metrics != nil {
			s.metrics.OperationErrors.WithLabelValues(op).Inc()
		}
		s.logger.Error().Str("operation", op).Dur("duration", elapsed).Err(err).Msg("ledger operation failed")
	}
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidAmount,
		domain.ErrAmountTooLarge,
		domain.ErrInvalidUserID,
		domain.ErrInvalidCurrency,
		domain.ErrInvalidHoldID,
		domain.ErrInvalidHoldStatus,
		domain.ErrReasonTooLong,
		domain.ErrSameUser,
		domain.ErrHoldNotFound,
		domain.ErrInvalidHoldState,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
