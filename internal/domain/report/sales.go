// Package report holds the read models behind the back-office reports:
// sales, receivables aging, the dashboard and the accounting exports.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	CodeInvalidRange   = "INVALID_RANGE"
	CodeInvalidGroupBy = "INVALID_GROUP_BY"
)

// Labels used for sales lines without a catalog item
const (
	ManualItemLabel  = "Article manuel"
	UnknownItemLabel = "Produit inconnu"
)

// TopLimit is the size of the client and product rankings
const TopLimit = 10

// GroupBy buckets the sales report
type GroupBy string

const (
	GroupDay   GroupBy = "day"
	GroupWeek  GroupBy = "week"
	GroupMonth GroupBy = "month"
)

// ParseGroupBy reads a grouping, month when empty
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(s); g {
	case "":
		return GroupMonth, nil
	case GroupDay, GroupWeek, GroupMonth:
		return g, nil
	}
	return "", shared.NewDomainErrorf(CodeInvalidGroupBy, "Regroupement invalide : %s", s)
}

// Range is an inclusive date range
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ResolveRange fills a missing start with January 1st of the current year and
// a missing end with now.
func ResolveRange(from, to *time.Time, now time.Time) (Range, error) {
	r := Range{
		From: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()),
		To:   now,
	}
	if from != nil {
		r.From = *from
	}
	if to != nil {
		r.To = *to
	}
	if r.From.After(r.To) {
		return Range{}, shared.NewDomainError(CodeInvalidRange, "La date de début doit précéder la date de fin")
	}
	return r, nil
}

// Invoice is an issued invoice as reports see it
type Invoice struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	Type         document.Type   `json:"type"`
	Status       document.Status `json:"status"`
	Date         time.Time       `json:"date"`
	DueDate      *time.Time      `json:"dueDate,omitempty"`
	ClientID     uuid.UUID       `json:"clientId"`
	ClientName   string          `json:"clientName"`
	ClientNumber string          `json:"clientNumber,omitempty"`
	TotalHT      decimal.Decimal `json:"totalHT"`
	TotalTVA     decimal.Decimal `json:"totalTVA"`
	TotalTTC     decimal.Decimal `json:"totalTTC"`
	PaidAmount   decimal.Decimal `json:"paidAmount"`
	Balance      decimal.Decimal `json:"balance"`
}

// Totals accumulates invoice amounts
type Totals struct {
	Count      int             `json:"count"`
	TotalHT    decimal.Decimal `json:"totalHT"`
	TotalTVA   decimal.Decimal `json:"totalTVA"`
	TotalTTC   decimal.Decimal `json:"totalTTC"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	Balance    decimal.Decimal `json:"balance"`
}

// Add counts one invoice
func (t *Totals) Add(inv Invoice) {
	t.Count++
	t.TotalHT = t.TotalHT.Add(inv.TotalHT)
	t.TotalTVA = t.TotalTVA.Add(inv.TotalTVA)
	t.TotalTTC = t.TotalTTC.Add(inv.TotalTTC)
	t.PaidAmount = t.PaidAmount.Add(inv.PaidAmount)
	t.Balance = t.Balance.Add(inv.Balance)
}

// PeriodTotals are the totals of one day, week or month
type PeriodTotals struct {
	Period string `json:"period"`
	Label  string `json:"label"`
	Totals
}

// ClientSales ranks a client by invoiced amount
type ClientSales struct {
	ClientID      uuid.UUID       `json:"clientId"`
	ClientName    string          `json:"clientName"`
	InvoicesCount int64           `json:"invoicesCount"`
	TotalTTC      decimal.Decimal `json:"totalTTC"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
}

// ProductSales ranks a catalog item by invoiced amount
type ProductSales struct {
	ProductID   *uuid.UUID      `json:"productId"`
	ProductName string          `json:"productName"`
	SKU         string          `json:"sku,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Quantity    decimal.Decimal `json:"quantity"`
	Count       int64           `json:"count"`
}

// Label names the product, falling back for manual and deleted items
func (p ProductSales) Label() string {
	switch {
	case p.ProductID == nil:
		return ManualItemLabel
	case p.ProductName == "":
		return UnknownItemLabel
	}
	return p.ProductName
}

// SalesFilter selects the invoices of the sales report
type SalesFilter struct {
	Range    Range
	ClientID *uuid.UUID
}

// Sales is the sales report
type Sales struct {
	Summary   Totals         `json:"summary"`
	ByPeriod  []PeriodTotals `json:"byPeriod"`
	ByClient  []ClientSales  `json:"byClient"`
	ByProduct []ProductSales `json:"byProduct"`
	Range     Range          `json:"range"`
	GroupBy   GroupBy        `json:"groupBy"`
	ClientID  *uuid.UUID     `json:"clientId,omitempty"`
}

var monthNames = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// MonthName returns the French name of a month
func MonthName(m time.Month) string {
	return monthNames[m-1]
}

// PeriodKey returns the sortable key and the French label of the period a
// date falls in. Weeks are ISO weeks.
func PeriodKey(t time.Time, g GroupBy) (key, label string) {
	switch g {
	case GroupDay:
		return t.Format("2006-01-02"), t.Format("02/01/2006")
	case GroupWeek:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w), fmt.Sprintf("S%d %d", w, y)
	default:
		return t.Format("2006-01"), fmt.Sprintf("%s %d", MonthName(t.Month()), t.Year())
	}
}

// BuildSales totals invoices overall and per period. Periods keep the order
// in which they first appear, so invoices should be sorted by date.
func BuildSales(invoices []Invoice, g GroupBy) (Totals, []PeriodTotals) {
	var summary Totals
	periods := []PeriodTotals{}
	index := make(map[string]int)
	for _, inv := range invoices {
		summary.Add(inv)
		key, label := PeriodKey(inv.Date, g)
		i, ok := index[key]
		if !ok {
			i = len(periods)
			index[key] = i
			periods = append(periods, PeriodTotals{Period: key, Label: label})
		}
		periods[i].Add(inv)
	}
	return summary, periods
}

// Repository reads the data behind every report
type Repository interface {
	// Invoices returns issued FACTURE documents in the range, oldest first
	Invoices(ctx context.Context, f SalesFilter) ([]Invoice, error)
	TopClients(ctx context.Context, f SalesFilter, limit int) ([]ClientSales, error)
	TopProducts(ctx context.Context, f SalesFilter, limit int) ([]ProductSales, error)

	// OpenInvoices returns invoices with a balance in an open status
	OpenInvoices(ctx context.Context, clientID *uuid.UUID) ([]Invoice, error)

	DashboardCounts(ctx context.Context, current, previous Range) (*Counts, error)
	Payments(ctx context.Context, r Range, clientID *uuid.UUID) ([]LedgerPayment, error)
	RevenueByCategory(ctx context.Context, r Range) ([]CategoryRevenue, error)

	LedgerDocuments(ctx context.Context, r Range, clientID *uuid.UUID, types []document.Type) ([]LedgerDocument, error)
	ClientAccounts(ctx context.Context, asOf time.Time, clientID *uuid.UUID) ([]ClientAccount, error)
}
