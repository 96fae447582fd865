package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrRegisterAlreadyOpen is returned when opening while a register is open.
	ErrRegisterAlreadyOpen = errors.New("register already open")
	// ErrNoOpenRegister is returned when an operation needs an open register.
	ErrNoOpenRegister = errors.New("no open register")
	// ErrInsufficientStock is returned when a sale exceeds the available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidAmount is returned for non-positive or unparsable amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrCreditClosed is returned when paying a settled or cancelled credit.
	ErrCreditClosed = errors.New("credit is not open")
	// ErrCategoryInUse is returned when deleting a category that has products.
	ErrCategoryInUse = errors.New("category has products")
	// ErrInvalidFilter is returned for malformed listing filters.
	ErrInvalidFilter = errors.New("invalid filter")
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// parseAmount parses a decimal string. Negative values are rejected and zero
// is rejected unless allowZero.
func parseAmount(raw, field string, allowZero bool) (decimal.Decimal, error) {
	if raw == "" && allowZero {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrInvalidAmount, field)
	}
	if value.IsNegative() || (!allowZero && value.IsZero()) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrInvalidAmount, field)
	}
	return value, nil
}

// IsConflict reports whether err is a business-rule conflict rather than a
// malformed request. Unique violations (a reused barcode) count as conflicts.
func IsConflict(err error) bool {
	return errors.Is(err, ErrRegisterAlreadyOpen) ||
		errors.Is(err, ErrNoOpenRegister) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrCreditClosed) ||
		errors.Is(err, ErrCategoryInUse) ||
		errors.Is(err, gorm.ErrDuplicatedKey)
}
