// Package money represents amounts as integer cents so repeated budget
// additions never drift.
package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMissing     = errors.New("amount is required")
	ErrNotANumber  = errors.New("amount must be a number")
	ErrPrecision   = errors.New("amount can't have more than 2 decimal places")
	ErrOutOfRange  = errors.New("amount is too large")
	ErrTooLong     = errors.New("amount has too many digits")
	maxAmountUnits = MaxCents.Decimal()
)

// MaxCents bounds every stored amount and budget, exclusive.
const MaxCents Cents = 1_000_000_000_000_000

const (
	maxInputLength = 64
	// exponents outside this window are rejected before any rescaling
	maxExponent = 13
	minExponent = -2
)

// Cents is an amount in hundredths of the account currency.
type Cents int64

// Parse reads a decimal string such as "12.5" or "1000".
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMissing
	}

	if len(s) > maxInputLength {
		return 0, ErrTooLong
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrNotANumber
	}

	if d.IsZero() {
		return 0, nil
	}
	// A nonzero coefficient times 10^14 or more is always out of range.
	if d.Exponent() > maxExponent {
		return 0, ErrOutOfRange
	}
	// Below cents the coefficient needs that many trailing zeros, which
	// it can't have when it has fewer digits than the gap.
	if gap := minExponent - int(d.Exponent()); gap > 0 && gap >= d.NumDigits() {
		return 0, ErrPrecision
	}

	if !d.Equal(d.Round(2)) {
		return 0, ErrPrecision
	}

	if d.Abs().GreaterThanOrEqual(maxAmountUnits) {
		return 0, ErrOutOfRange
	}

	return Cents(d.Shift(2).IntPart()), nil
}

// FromJSON accepts a JSON number or a numeric JSON string.
func FromJSON(raw json.RawMessage) (Cents, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, ErrMissing
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, ErrNotANumber
		}
		return Parse(s)
	}

	return Parse(string(raw))
}

func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

func (c Cents) Float64() float64 {
	return c.Decimal().InexactFloat64()
}

func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Cents) UnmarshalJSON(data []byte) error {
	v, err := FromJSON(data)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
