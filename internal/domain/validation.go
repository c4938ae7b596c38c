package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrInvalidCurrency   = errors.New("invalid currency code")
	ErrInvalidHoldID     = errors.New("invalid hold id")
	ErrInvalidHoldStatus = errors.New("invalid hold status")
	ErrReasonTooLong     = errors.New("hold reason too long")
	ErrAmountTooLarge    = errors.New("amount exceeds maximum allowed")
)

// Validation constants
const (
	MaxUserIDLength = 128
	MaxReasonLength = 1024
	// MaxAmount fits NUMERIC(38,0).
	MaxAmount = "99999999999999999999999999999999999999"
)

var maxAmount = decimal.RequireFromString(MaxAmount)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
	"NGN": true, "KES": true, "PLN": true, "DKK": true,
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = NormalizeCurrency(currency)

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %q is not a supported ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateUserID rejects empty, oversized, or whitespace-padded identifiers.
func ValidateUserID(userID string) error {
	if userID == "" || strings.TrimSpace(userID) != userID {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	if len(userID) > MaxUserIDLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidUserID, MaxUserIDLength)
	}
	return nil
}

// ValidateHoldID rejects blank hold identifiers.
func ValidateHoldID(holdID string) error {
	if strings.TrimSpace(holdID) == "" {
		return ErrInvalidHoldID
	}
	return nil
}

// ValidateAmount accepts positive whole numbers of minor units only.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !amount.IsInteger() {
		return fmt.Errorf("%w: %s has a fractional part", ErrInvalidAmount, amount)
	}

	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateReason limits the free-text hold reason.
func ValidateReason(reason *string) error {
	if reason == nil {
		return nil
	}
	if len(*reason) > MaxReasonLength {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrReasonTooLong, len(*reason), MaxReasonLength)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
