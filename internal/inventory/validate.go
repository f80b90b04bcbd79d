package inventory

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/talkincode/stockboard/internal/domain"
)

const (
	// MaxQuantity bounds stock quantities so derived amounts fit their decimal(20,2) columns.
	MaxQuantity = math.MaxInt32
	// MaxPrice is the largest price a decimal(10,2) column holds.
	MaxPrice = "99999999.99"
)

var maxPrice = domain.MustMoney(MaxPrice)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsISODate accepts zero-padded YYYY-MM-DD strings that name a real calendar day.
func IsISODate(s string) bool {
	if !isoDatePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(domain.DateLayout, s)
	return err == nil
}

// IsPositiveMoney accepts amounts above zero with at most two fractional digits.
func IsPositiveMoney(m domain.Money) bool {
	return m.IsPositive() && m.HasMoneyScale()
}

// IsNonNegativeQuantity accepts stock quantities from zero up to MaxQuantity.
func IsNonNegativeQuantity(n int) bool {
	return n >= 0 && n <= MaxQuantity
}

// IsID accepts the UUID identities assigned by this service.
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func checkText(v *ValidationError, field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, "is required")
	}
	return value
}

func checkPrice(v *ValidationError, field, value string) domain.Money {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
		return domain.Money{}
	}
	m, err := domain.ParseMoney(value)
	if err != nil {
		v.Add(field, "must be a decimal number")
		return domain.Money{}
	}
	if !IsPositiveMoney(m) {
		v.Add(field, "must be greater than 0 with at most 2 decimal places")
		return domain.Money{}
	}
	if m.GreaterThan(maxPrice.Decimal) {
		v.Add(field, "must not exceed "+MaxPrice)
		return domain.Money{}
	}
	return domain.NewMoney(m.Decimal)
}

func checkQuantity(v *ValidationError, field string, n int) {
	switch {
	case n < 0:
		v.Add(field, "must be a non-negative integer")
	case !IsNonNegativeQuantity(n):
		v.Add(field, "must not exceed 2147483647")
	}
}

func checkDate(v *ValidationError, field, value string) {
	if !IsISODate(value) {
		v.Add(field, "must be a date in YYYY-MM-DD format")
	}
}

// CheckDateFilter validates an optional date query; empty means no filter.
func CheckDateFilter(date string) error {
	if date == "" {
		return nil
	}
	v := &ValidationError{}
	checkDate(v, "date", date)
	return v.Err()
}
