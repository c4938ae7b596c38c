package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type HoldStatus string

const (
	HoldStatusPending  HoldStatus = "pending"
	HoldStatusCaptured HoldStatus = "captured"
	HoldStatusVoid     HoldStatus = "void"
)

// Valid reports whether s is a known hold status.
func (s HoldStatus) Valid() bool {
	switch s {
	case HoldStatusPending, HoldStatusCaptured, HoldStatusVoid:
		return true
	}
	return false
}

// Hold records funds taken from a payer and kept in escrow until the hold is
// captured or voided.
type Hold struct {
	ID        string
	UserID    string
	PayeeID   string
	Amount    decimal.Decimal
	Currency  string
	Reason    *string
	Status    HoldStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPending reports whether the hold can still be resolved.
func (h *Hold) IsPending() bool {
	return h.Status == HoldStatusPending
}

// Transition moves a pending hold to a terminal status. Terminal holds are
// immutable.
func (h *Hold) Transition(to HoldStatus, at time.Time) error {
	if !h.IsPending() {
		return &HoldStateError{HoldID: h.ID, Status: h.Status}
	}
	if to != HoldStatusCaptured && to != HoldStatusVoid {
		return fmt.Errorf("%w: cannot move hold %s to %s", ErrInvalidHoldState, h.ID, to)
	}

	h.Status = to
	h.UpdatedAt = at
	return nil
}

// Validate checks the fields a hold must carry before it is stored. The id
// and timestamps are assigned later and are not checked.
func (h *Hold) Validate() error {
	if err := ValidateAmount(h.Amount); err != nil {
		return err
	}
	if err := ValidateUserID(h.UserID); err != nil {
		return err
	}
	if err := ValidateUserID(h.PayeeID); err != nil {
		return err
	}
	if h.UserID == h.PayeeID {
		return ErrSameUser
	}
	if err := ValidateReason(h.Reason); err != nil {
		return err
	}
	if !h.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidHoldStatus, h.Status)
	}
	return nil
}
