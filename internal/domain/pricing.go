package domain

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Prices are stored as NUMERIC(12,2).
const (
	PriceScale     = 2
	MaxPriceDigits = 10
)

var maxPrice = decimal.New(1, MaxPriceDigits)

// DiscountPercent returns round((gross - discounted) / gross * 100), or 0 when
// there is no discounted price.
func DiscountPercent(gross decimal.Decimal, discounted decimal.NullDecimal) int {
	if !discounted.Valid || gross.Sign() <= 0 {
		return 0
	}
	pct := gross.Sub(discounted.Decimal).Div(gross).Mul(hundred).Round(0)
	return int(pct.IntPart())
}

// ValidatePrices enforces gross > 0 and 0 <= discounted <= gross, and that
// both prices fit the stored column exactly.
func ValidatePrices(gross decimal.Decimal, discounted decimal.NullDecimal) error {
	if gross.Sign() <= 0 {
		return NewValidationError("gross_price", "must be greater than zero")
	}
	if err := validatePriceRange("gross_price", gross); err != nil {
		return err
	}
	if !discounted.Valid {
		return nil
	}
	if discounted.Decimal.Sign() < 0 {
		return NewValidationError("discount_price", "must not be negative")
	}
	if err := validatePriceRange("discount_price", discounted.Decimal); err != nil {
		return err
	}
	if discounted.Decimal.GreaterThan(gross) {
		return NewValidationError("discount_price", "must not exceed the gross price")
	}
	return nil
}

func validatePriceRange(field string, v decimal.Decimal) error {
	if !v.Equal(v.Truncate(PriceScale)) {
		return NewValidationError(field, "must have at most 2 decimal places")
	}
	if v.Abs().GreaterThanOrEqual(maxPrice) {
		return NewValidationError(field, "must be less than 10000000000")
	}
	return nil
}
