package domain

import (
	"errors"
	"fmt"
)

var (
	// Balance errors
	ErrInvalidAmount            = errors.New("amount must be a positive whole number of minor units")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrInsufficientFundsForHold = errors.New("insufficient funds for hold")

	// Hold errors
	ErrHoldNotFound     = errors.New("hold not found")
	ErrInvalidHoldState = errors.New("invalid hold state")
	ErrSameUser         = errors.New("payer and payee must differ")
)

// HoldStateError reports an attempt to resolve a hold that is no longer pending.
type HoldStateError struct {
	HoldID string
	Status HoldStatus
}

func (e *HoldStateError) Error() string {
	return fmt.Sprintf("hold %s is not pending (status: %s)", e.HoldID, e.Status)
}

// Is makes errors.Is(err, ErrInvalidHoldState) match.
func (e *HoldStateError) Is(target error) bool {
	return target == ErrInvalidHoldState
}
