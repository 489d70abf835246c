// Package currency holds the display currencies of the shop. Prices are kept
// in dirhams; other currencies carry a conversion rate from MAD.
package currency

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Base is the currency every amount is stored in
const Base = "MAD"

// Position places the symbol before or after the amount
type Position string

const (
	Before Position = "before"
	After  Position = "after"
)

const (
	CodeUnknownCurrency = "INVALID_CURRENCY_CODES"
	CodeBaseRate        = "BASE_RATE_LOCKED"
	CodeInvalidRate     = "INVALID_RATE"
)

var (
	ErrCurrencyNotFound = shared.NotFound("Devise non trouvée")
	ErrBaseInactive     = shared.NewDomainError(CodeBaseRate, "MAD cannot be deactivated")
)

// Currency is a currency prices can be displayed in
type Currency struct {
	Code      string          `gorm:"type:varchar(3);primaryKey"`
	Name      string          `gorm:"type:varchar(100);not null"`
	Symbol    string          `gorm:"type:varchar(10);not null"`
	Rate      decimal.Decimal `gorm:"type:decimal(12,6);not null"`
	Position  Position        `gorm:"type:varchar(10);not null"`
	Decimals  int             `gorm:"not null"`
	IsDefault bool            `gorm:"not null"`
	IsActive  bool            `gorm:"not null;index"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Currency) TableName() string {
	return "currencies"
}

// Defaults returns the currencies seeded on an empty table
func Defaults(now time.Time) []Currency {
	mk := func(code, name, symbol, rate string, pos Position, def bool) Currency {
		return Currency{
			Code:      code,
			Name:      name,
			Symbol:    symbol,
			Rate:      decimal.RequireFromString(rate),
			Position:  pos,
			Decimals:  2,
			IsDefault: def,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return []Currency{
		mk("MAD", "Dirham Marocain", "DH", "1", After, true),
		mk("EUR", "Euro", "€", "0.091", After, false),
		mk("USD", "US Dollar", "$", "0.099", Before, false),
		mk("GBP", "British Pound", "£", "0.078", Before, false),
	}
}

// IsBase reports whether this is the storage currency
func (c Currency) IsBase() bool {
	return c.Code == Base
}

// Convert turns an amount in MAD into this currency
func (c Currency) Convert(amountMAD decimal.Decimal) decimal.Decimal {
	if c.IsBase() {
		return amountMAD.Round(int32(c.Decimals))
	}
	return amountMAD.Mul(c.Rate).Round(int32(c.Decimals))
}

// Format renders an amount already expressed in this currency
func (c Currency) Format(amount decimal.Decimal) string {
	s := amount.StringFixed(int32(c.Decimals))
	if c.Position == Before {
		return c.Symbol + s
	}
	return s + " " + c.Symbol
}

// SetRate changes the conversion rate. The base currency always stays at 1.
func (c *Currency) SetRate(rate decimal.Decimal, now time.Time) error {
	if c.IsBase() {
		if !rate.Equal(decimal.NewFromInt(1)) {
			return shared.NewDomainError(CodeBaseRate, "Cannot change MAD rate. It must remain 1.")
		}
		return nil
	}
	if !rate.IsPositive() {
		return shared.NewDomainErrorf(CodeInvalidRate, "Invalid rate for %s", c.Code)
	}
	c.Rate = rate
	c.UpdatedAt = now
	return nil
}

// UnknownCodes lists the requested codes that match no currency, sorted
func UnknownCodes(known []Currency, codes []string) []string {
	index := make(map[string]bool, len(known))
	for _, c := range known {
		index[c.Code] = true
	}
	var unknown []string
	for _, code := range codes {
		if !index[code] {
			unknown = append(unknown, code)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// ErrUnknownCodes builds the error returned for unknown codes
func ErrUnknownCodes(codes []string) error {
	return shared.NewDomainError(CodeUnknownCurrency, "Invalid currency codes: "+strings.Join(codes, ", "))
}

// Repository persists currencies
type Repository interface {
	FindAll(ctx context.Context, activeOnly bool) ([]Currency, error)
	FindByCode(ctx context.Context, code string) (*Currency, error)
	Count(ctx context.Context) (int64, error)
	SaveAll(ctx context.Context, cs []Currency) error
}
