// Package currency serves the display currencies and their conversion rates.
package currency

import (
	"context"
	"fmt"
	"strings"
	"time"

	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/currency"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CurrencyResponse is a currency as exposed by the API
type CurrencyResponse struct {
	Code     string            `json:"code"`
	Name     string            `json:"name"`
	Symbol   string            `json:"symbol"`
	Rate     decimal.Decimal   `json:"rate"`
	Position currency.Position `json:"position"`
	Decimals int               `json:"decimals"`
	IsBase   bool              `json:"isBase"`
	IsActive bool              `json:"isActive"`
}

// ListResponse is the currency list with the base currency and last rate change
type ListResponse struct {
	Currencies   []CurrencyResponse `json:"currencies"`
	BaseCurrency string             `json:"baseCurrency"`
	LastUpdated  *time.Time         `json:"lastUpdated,omitempty"`
}

// RateUpdate changes one currency
type RateUpdate struct {
	Code     string           `json:"code" binding:"required,len=3"`
	Rate     *decimal.Decimal `json:"rate"`
	IsActive *bool            `json:"isActive"`
}

// UpdateRatesRequest is the admin rate form
type UpdateRatesRequest struct {
	Currencies []RateUpdate `json:"currencies" binding:"required,min=1,dive"`
}

// ConvertResponse is an amount converted from MAD
type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Converted decimal.Decimal `json:"converted"`
	Formatted string          `json:"formatted"`
}

func toResponse(c currency.Currency) CurrencyResponse {
	return CurrencyResponse{
		Code:     c.Code,
		Name:     c.Name,
		Symbol:   c.Symbol,
		Rate:     c.Rate,
		Position: c.Position,
		Decimals: c.Decimals,
		IsBase:   c.IsBase(),
		IsActive: c.IsActive,
	}
}

// CurrencyService manages currencies
type CurrencyService struct {
	repo      currency.Repository
	auditRepo audit.Repository
	logger    *zap.Logger
	now       func() time.Time
}

// NewCurrencyService creates a new CurrencyService
func NewCurrencyService(repo currency.Repository, auditRepo audit.Repository, logger *zap.Logger) *CurrencyService {
	return &CurrencyService{repo: repo, auditRepo: auditRepo, logger: logger, now: time.Now}
}

// SetClock overrides time.Now, for tests
func (s *CurrencyService) SetClock(now func() time.Time) {
	s.now = now
}

// EnsureDefaults seeds MAD, EUR, USD and GBP on an empty table
func (s *CurrencyService) EnsureDefaults(ctx context.Context) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if err := s.repo.SaveAll(ctx, currency.Defaults(s.now())); err != nil {
		return err
	}
	s.logger.Info("default currencies seeded")
	return nil
}

// List returns the currencies; the public site only sees active ones
func (s *CurrencyService) List(ctx context.Context, activeOnly bool) (*ListResponse, error) {
	cs, err := s.repo.FindAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	resp := &ListResponse{Currencies: make([]CurrencyResponse, 0, len(cs)), BaseCurrency: currency.Base}
	for _, c := range cs {
		resp.Currencies = append(resp.Currencies, toResponse(c))
		if resp.LastUpdated == nil || c.UpdatedAt.After(*resp.LastUpdated) {
			t := c.UpdatedAt
			resp.LastUpdated = &t
		}
	}
	return resp, nil
}

// Convert converts an amount in MAD to the given currency
func (s *CurrencyService) Convert(ctx context.Context, amount decimal.Decimal, code string) (*ConvertResponse, error) {
	c, err := s.repo.FindByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, err
	}
	converted := c.Convert(amount)
	return &ConvertResponse{
		Amount:    amount,
		Currency:  c.Code,
		Converted: converted,
		Formatted: c.Format(converted),
	}, nil
}

// UpdateRates applies rate and activation changes. Every code must exist and
// the MAD rate stays 1; nothing is saved when one update is rejected.
func (s *CurrencyService) UpdateRates(ctx context.Context, req UpdateRatesRequest) (*ListResponse, error) {
	all, err := s.repo.FindAll(ctx, false)
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(req.Currencies))
	for i, u := range req.Currencies {
		codes[i] = strings.ToUpper(u.Code)
	}
	if unknown := currency.UnknownCodes(all, codes); len(unknown) > 0 {
		return nil, currency.ErrUnknownCodes(unknown)
	}

	byCode := make(map[string]*currency.Currency, len(all))
	for i := range all {
		byCode[all[i].Code] = &all[i]
	}
	now := s.now()
	entry := audit.New(audit.ActionUpdate, audit.EntityCurrency, nil, "").
		Classify(audit.CategoryFinancial, audit.SeverityWarning)
	changed := make([]currency.Currency, 0, len(req.Currencies))
	for i, u := range req.Currencies {
		c := byCode[codes[i]]
		if u.Rate != nil && !u.Rate.Equal(c.Rate) {
			old := c.Rate
			if err := c.SetRate(*u.Rate, now); err != nil {
				return nil, err
			}
			entry.WithChange(c.Code+".rate", old.String(), c.Rate.String())
		}
		if u.IsActive != nil && *u.IsActive != c.IsActive {
			if c.IsBase() && !*u.IsActive {
				return nil, currency.ErrBaseInactive
			}
			entry.WithChange(c.Code+".isActive", c.IsActive, *u.IsActive)
			c.IsActive = *u.IsActive
			c.UpdatedAt = now
		}
		changed = append(changed, *c)
	}
	if len(entry.Changes) == 0 {
		return s.List(ctx, false)
	}
	if err := s.repo.SaveAll(ctx, changed); err != nil {
		return nil, err
	}
	entry.Description = fmt.Sprintf("Taux de change mis à jour (%d modifications)", len(entry.Changes))
	appaudit.Write(ctx, s.auditRepo, s.logger, entry)
	s.logger.Info("currency rates updated", zap.Int("changes", len(entry.Changes)))
	return s.List(ctx, false)
}
