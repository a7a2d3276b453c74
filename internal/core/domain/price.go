package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidPrice = errors.New("invalid price")

// Price is a currency amount held in cents. Decimal input is rounded half-up
// to the nearest cent once, at parse time; arithmetic on Price is exact.
type Price int64

// ParsePrice parses a decimal amount such as "19.99", "$5" or "0.125".
// Negative amounts clamp to zero.
func ParsePrice(s string) (Price, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "$"))
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPrice)
	}

	negative := false
	switch raw[0] {
	case '-':
		negative = true
		raw = raw[1:]
	case '+':
		raw = raw[1:]
	}

	whole, frac, _ := strings.Cut(raw, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	if !allDigits(whole) || !allDigits(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}

	var cents int64
	for _, r := range whole {
		cents = cents*10 + int64(r-'0')
		if cents > maxWholeUnits {
			return 0, fmt.Errorf("%w: %q out of range", ErrInvalidPrice, s)
		}
	}
	cents *= 100
	if len(frac) > 0 {
		cents += int64(frac[0]-'0') * 10
	}
	if len(frac) > 1 {
		cents += int64(frac[1] - '0')
	}
	if len(frac) > 2 && frac[2] >= '5' {
		cents++
	}

	if negative {
		return 0, nil
	}
	return Price(cents), nil
}

const maxWholeUnits = 1 << 50

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MaxPrice is the largest representable amount.
const MaxPrice = Price(math.MaxInt64)

// Mul returns the price of qty units. Both operands are expected to be
// non-negative; ok is false when the product does not fit, in which case
// MaxPrice is returned.
func (p Price) Mul(qty int) (Price, bool) {
	if p <= 0 || qty <= 0 {
		return 0, true
	}
	if int64(qty) > int64(MaxPrice/p) {
		return MaxPrice, false
	}
	return p * Price(qty), true
}

// Add returns p+q for non-negative amounts, saturating at MaxPrice with ok
// false on overflow.
func (p Price) Add(q Price) (Price, bool) {
	if q > MaxPrice-p {
		return MaxPrice, false
	}
	return p + q, true
}

// String renders the amount with two decimals, e.g. "55.00".
func (p Price) String() string {
	sign := ""
	mag := uint64(p)
	if p < 0 {
		sign = "-"
		mag = -mag
	}
	return fmt.Sprintf("%s%d.%02d", sign, mag/100, mag%100)
}

// Dollars renders the amount with a currency sign, e.g. "$55.00".
func (p Price) Dollars() string {
	return "$" + p.String()
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts both quoted ("19.99") and bare (19.99) decimals.
func (p *Price) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*p = 0
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	}
	parsed, err := ParsePrice(text)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
