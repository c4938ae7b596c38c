package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/creditledger/internal/domain"
)

// BalanceResponse represents a user's balance in one currency.
type BalanceResponse struct {
	UserID   string          `json:"user_id"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// HoldCreatedResponse is returned when a hold is placed.
type HoldCreatedResponse struct {
	HoldID string `json:"hold_id"`
	Status string `json:"status"`
}

// HoldResponse represents a hold in API responses.
type HoldResponse struct {
	ID        string          `json:"id"`
	PayerID   string          `json:"payer_id"`
	PayeeID   string          `json:"payee_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Reason    *string         `json:"reason,omitempty"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// HoldFromDomain converts a domain hold to a response.
func HoldFromDomain(h *domain.Hold) *HoldResponse {
	return &HoldResponse{
		ID:        h.ID,
		PayerID:   h.UserID,
		PayeeID:   h.PayeeID,
		Amount:    h.Amount,
		Currency:  h.Currency,
		Reason:    h.Reason,
		Status:    string(h.Status),
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

// HoldsFromDomain converts domain holds to responses.
func HoldsFromDomain(holds []*domain.Hold) []*HoldResponse {
	result := make([]*HoldResponse, len(holds))
	for i, h := range holds {
		result[i] = HoldFromDomain(h)
	}
	return result
}

// HoldStatusResponse is returned after a hold is released or voided.
type HoldStatusResponse struct {
	HoldID string `json:"hold_id"`
	Status string `json:"status"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}
