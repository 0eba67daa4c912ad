package domain

import (
	"fmt"
	"strconv"
)

// Money is a whole-dollar amount. The pawn ledger deals exclusively in whole
// dollars; there are no cents anywhere in the domain and no floating point is
// ever involved.
type Money int64

// Zero is the additive identity, exported for readability at call sites.
const Zero Money = 0

// NewMoney validates that a raw amount is non-negative and returns it as Money.
func NewMoney(dollars int64) (Money, error) {
	if dollars < 0 {
		return 0, fmt.Errorf("money amount must not be negative, got %d", dollars)
	}
	return Money(dollars), nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money { return m + o }

// Sub returns m - o. The result may be negative; use SubFloor when the
// domain requires a floor at zero (e.g. remaining balances).
func (m Money) Sub(o Money) Money { return m - o }

// SubFloor returns m - o, floored at zero.
func (m Money) SubFloor(o Money) Money {
	if o >= m {
		return 0
	}
	return m - o
}

// MulMonths returns m multiplied by a month count. Month counts in this
// domain are small (interest caps, extension months), so overflow is not a
// practical concern, but negative factors are rejected outright.
func (m Money) MulMonths(months int) Money {
	if months <= 0 {
		return 0
	}
	return m * Money(months)
}

// Min returns the smaller of m and o.
func (m Money) Min(o Money) Money {
	if o < m {
		return o
	}
	return m
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m == 0 }

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m > 0 }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m < 0 }

// Int64 returns the raw dollar count for persistence.
func (m Money) Int64() int64 { return int64(m) }

// String renders the amount as "$N" for logs and audit summaries.
func (m Money) String() string {
	if m < 0 {
		return "-$" + strconv.FormatInt(int64(-m), 10)
	}
	return "$" + strconv.FormatInt(int64(m), 10)
}
