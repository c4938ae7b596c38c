package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// LedgerService defines the behavior needed by the ledger and hold handlers.
type LedgerService interface {
	DefaultCurrency() string
	GetBalance(ctx context.Context, userID, currency string) (decimal.Decimal, error)
	AddCredit(ctx context.Context, userID string, amount decimal.Decimal, currency string) (decimal.Decimal, error)
	DeductCredit(ctx context.Context, userID string, amount decimal.Decimal, currency string) (decimal.Decimal, error)
	TransferWithHold(ctx context.Context, input usecase.TransferWithHoldInput) (string, error)
	ReleaseHold(ctx context.Context, holdID string) error
	VoidHold(ctx context.Context, holdID string) error
	GetHold(ctx context.Context, holdID string) (*domain.Hold, error)
	ListHolds(ctx context.Context, input usecase.ListHoldsInput) ([]*domain.Hold, error)
}

// LedgerHandler handles balance requests.
type LedgerHandler struct {
	ledger LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// GetBalance returns a user's balance in the currency from the path.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	currency := h.currencyOrDefault(chi.URLParam(r, "currency"))

	balance, err := h.ledger.GetBalance(r.Context(), userID, currency)
	if err != nil {
		writeDomainError(w, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		UserID:   userID,
		Currency: currency,
		Balance:  balance,
	})
}

// AddCredit credits a user's balance.
func (h *LedgerHandler) AddCredit(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, "failed to add credit", h.ledger.AddCredit)
}

// DeductCredit debits a user's balance.
func (h *LedgerHandler) DeductCredit(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, "failed to deduct credit", h.ledger.DeductCredit)
}

type amountOp func(ctx context.Context, userID string, amount decimal.Decimal, currency string) (decimal.Decimal, error)

func (h *LedgerHandler) applyAmount(w http.ResponseWriter, r *http.Request, failure string, op amountOp) {
	userID := chi.URLParam(r, "userID")

	var req dto.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := dto.Validate(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	amount, err := req.ParseAmount()
	if err != nil {
		writeDomainError(w, failure, err)
		return
	}

	currency := h.currencyOrDefault(req.Currency)
	balance, err := op(r.Context(), userID, amount, currency)
	if err != nil {
		writeDomainError(w, failure, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		UserID:   userID,
		Currency: currency,
		Balance:  balance,
	})
}

func (h *LedgerHandler) currencyOrDefault(currency string) string {
	if currency == "" {
		currency = h.ledger.DefaultCurrency()
	}
	return domain.NormalizeCurrency(currency)
}
