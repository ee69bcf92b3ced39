package domain

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.New(5, -1)
)

// MinorUnits converts a major-unit amount (e.g. pounds) to minor units,
// rounding half up.
func MinorUnits(major decimal.Decimal) int64 {
	return major.Mul(hundred).Add(half).Floor().IntPart()
}

// FormatMajor renders a minor-unit amount in major units with two decimals.
func FormatMajor(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

// FeeSchedule is the platform's pricing for destination charges.
type FeeSchedule struct {
	FlatFee  int64
	Currency string
}

// DefaultFeeSchedule charges a flat 100 minor units in GBP.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{FlatFee: 100, Currency: "gbp"}
}

// PlatformFee returns the application fee for a charge of amount minor units.
// For any positive amount the fee is strictly less than the amount.
func (f FeeSchedule) PlatformFee(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	fee := f.FlatFee
	if fee >= amount {
		fee = amount / 2
	}
	return fee
}
