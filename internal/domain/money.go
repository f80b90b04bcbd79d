package domain

import (
	"database/sql/driver"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits kept for every monetary value.
const MoneyPlaces = 2

// Money is a fixed-point amount with two fractional digits.
// It renders as a quoted string ("12.50") in JSON and as a two-place decimal column in SQL.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d to two places.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(MoneyPlaces)}
}

// ParseMoney parses a decimal string without rounding it, so callers can
// still reject inputs with more than two fractional digits.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, err
	}
	return Money{Decimal: d}, nil
}

// MustMoney is ParseMoney for literals; it panics on malformed input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Plus returns m + o rounded to two places.
func (m Money) Plus(o Money) Money {
	return NewMoney(m.Decimal.Add(o.Decimal))
}

// Minus returns m - o rounded to two places.
func (m Money) Minus(o Money) Money {
	return NewMoney(m.Decimal.Sub(o.Decimal))
}

// Times returns m * n rounded to two places.
func (m Money) Times(n int) Money {
	return NewMoney(m.Decimal.Mul(decimal.NewFromInt(int64(n))))
}

// HasMoneyScale reports whether m carries no more than two fractional digits.
func (m Money) HasMoneyScale() bool {
	return m.Decimal.Equal(m.Decimal.Round(MoneyPlaces))
}

func (m Money) String() string {
	return m.Decimal.StringFixed(MoneyPlaces)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both "0.80" and 0.80.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		m.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	m.Decimal = d
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

func (m *Money) Scan(value interface{}) error {
	return m.Decimal.Scan(value)
}
