package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// AmountRequest is the body of credit and debit requests. Amount is a
// decimal string of minor units.
type AmountRequest struct {
	Amount   string `json:"amount"             validate:"required,numeric"`
	Currency string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

// ParseAmount converts the amount string to a decimal.
func (r *AmountRequest) ParseAmount() (decimal.Decimal, error) {
	return parseAmount(r.Amount)
}

// CreateHoldRequest represents a request to move funds from a payer into escrow.
type CreateHoldRequest struct {
	PayerID  string  `json:"payer_id"           validate:"required,max=128"`
	PayeeID  string  `json:"payee_id"           validate:"required,max=128,nefield=PayerID"`
	Amount   string  `json:"amount"             validate:"required,numeric"`
	Currency string  `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Reason   *string `json:"reason,omitempty"   validate:"omitempty,max=1024"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateHoldRequest) ToUseCaseInput() (usecase.TransferWithHoldInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.TransferWithHoldInput{}, err
	}

	return usecase.TransferWithHoldInput{
		PayerID:  r.PayerID,
		PayeeID:  r.PayeeID,
		Amount:   amount,
		Currency: r.Currency,
		Reason:   r.Reason,
	}, nil
}

// ListHoldsQuery holds the query parameters of the hold listing.
type ListHoldsQuery struct {
	Status string `validate:"omitempty,oneof=pending captured void"`
	Limit  int    `validate:"gte=0"`
	Offset int    `validate:"gte=0"`
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return amount, nil
}
