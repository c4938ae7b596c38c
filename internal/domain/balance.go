package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the amount a user holds in one currency, in minor units.
type Balance struct {
	UserID    string
	Currency  string
	Amount    decimal.Decimal
	UpdatedAt time.Time
}

// CanCover reports whether the balance is large enough to debit amount
// without going negative.
func (b *Balance) CanCover(amount decimal.Decimal) bool {
	return b.Amount.GreaterThanOrEqual(amount)
}

// ApplyDebit returns the balance after removing amount.
func (b *Balance) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return b.Amount.Sub(amount)
}

// ZeroBalance is the balance reported for a (user, currency) pair that has
// never been credited.
func ZeroBalance(userID, currency string) *Balance {
	return &Balance{
		UserID:   userID,
		Currency: currency,
		Amount:   decimal.Zero,
	}
}
