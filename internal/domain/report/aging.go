package report

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/shopspring/decimal"
)

// OpenStatuses are the invoice statuses that still expect money
var OpenStatuses = []document.Status{document.StatusSent, document.StatusPartial, document.StatusOverdue}

// Bucket is an aging band of days past due
type Bucket string

const (
	BucketCurrent Bucket = "current"
	Bucket30      Bucket = "days30"
	Bucket60      Bucket = "days60"
	Bucket90      Bucket = "days90"
	BucketOver90  Bucket = "over90"
)

// Buckets lists the bands from youngest to oldest
var Buckets = []Bucket{BucketCurrent, Bucket30, Bucket60, Bucket90, BucketOver90}

// BucketFor places a number of days past due
func BucketFor(days int) Bucket {
	switch {
	case days <= 0:
		return BucketCurrent
	case days <= 30:
		return Bucket30
	case days <= 60:
		return Bucket60
	case days <= 90:
		return Bucket90
	}
	return BucketOver90
}

// DaysOverdue counts whole days since the due date, or the invoice date when
// there is none. Negative while not yet due.
func DaysOverdue(inv Invoice, now time.Time) int {
	due := inv.Date
	if inv.DueDate != nil {
		due = *inv.DueDate
	}
	return int(math.Floor(now.Sub(due).Hours() / 24))
}

// BucketTotal is the content of one band
type BucketTotal struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// ClientAging is the outstanding balance of one client per band
type ClientAging struct {
	ClientID      uuid.UUID       `json:"clientId"`
	ClientName    string          `json:"clientName"`
	ClientNumber  string          `json:"clientNumber,omitempty"`
	Current       decimal.Decimal `json:"current"`
	Days30        decimal.Decimal `json:"days30"`
	Days60        decimal.Decimal `json:"days60"`
	Days90        decimal.Decimal `json:"days90"`
	Over90        decimal.Decimal `json:"over90"`
	Total         decimal.Decimal `json:"total"`
	InvoicesCount int             `json:"invoicesCount"`
}

func (c *ClientAging) add(b Bucket, amount decimal.Decimal) {
	switch b {
	case BucketCurrent:
		c.Current = c.Current.Add(amount)
	case Bucket30:
		c.Days30 = c.Days30.Add(amount)
	case Bucket60:
		c.Days60 = c.Days60.Add(amount)
	case Bucket90:
		c.Days90 = c.Days90.Add(amount)
	default:
		c.Over90 = c.Over90.Add(amount)
	}
	c.Total = c.Total.Add(amount)
	c.InvoicesCount++
}

// AgedInvoice is an open invoice with its age
type AgedInvoice struct {
	Invoice
	DaysOverdue int    `json:"daysOverdue"`
	Bucket      Bucket `json:"bucket"`
}

// AgingSummary gives the headline receivables figures
type AgingSummary struct {
	TotalOutstanding   decimal.Decimal `json:"totalOutstanding"`
	TotalInvoices      int             `json:"totalInvoices"`
	TotalClients       int             `json:"totalClients"`
	Current            decimal.Decimal `json:"current"`
	Overdue            decimal.Decimal `json:"overdue"`
	OverduePercent     decimal.Decimal `json:"overduePercent"`
	AvgDaysOutstanding int             `json:"avgDaysOutstanding"`
}

// Aging is the receivables aging report
type Aging struct {
	Summary  AgingSummary           `json:"summary"`
	Buckets  map[Bucket]BucketTotal `json:"aging"`
	ByClient []ClientAging          `json:"byClient"`
	Invoices []AgedInvoice          `json:"invoices"`
}

var hundred = decimal.NewFromInt(100)

// BuildAging spreads open invoices over the aging bands as of now. Clients
// are sorted by outstanding amount, largest first.
func BuildAging(invoices []Invoice, now time.Time) Aging {
	out := Aging{
		Buckets:  make(map[Bucket]BucketTotal, len(Buckets)),
		ByClient: []ClientAging{},
		Invoices: make([]AgedInvoice, 0, len(invoices)),
	}
	for _, b := range Buckets {
		out.Buckets[b] = BucketTotal{}
	}

	clients := make(map[uuid.UUID]*ClientAging)
	var order []uuid.UUID
	totalDays := 0
	for _, inv := range invoices {
		days := DaysOverdue(inv, now)
		b := BucketFor(days)
		if days < 0 {
			days = 0
		}
		totalDays += days

		bt := out.Buckets[b]
		bt.Count++
		bt.Total = bt.Total.Add(inv.Balance)
		out.Buckets[b] = bt

		c, ok := clients[inv.ClientID]
		if !ok {
			c = &ClientAging{ClientID: inv.ClientID, ClientName: inv.ClientName, ClientNumber: inv.ClientNumber}
			clients[inv.ClientID] = c
			order = append(order, inv.ClientID)
		}
		c.add(b, inv.Balance)

		out.Invoices = append(out.Invoices, AgedInvoice{Invoice: inv, DaysOverdue: days, Bucket: b})
		out.Summary.TotalOutstanding = out.Summary.TotalOutstanding.Add(inv.Balance)
	}

	for _, id := range order {
		out.ByClient = append(out.ByClient, *clients[id])
	}
	sort.SliceStable(out.ByClient, func(i, j int) bool {
		return out.ByClient[i].Total.GreaterThan(out.ByClient[j].Total)
	})

	s := &out.Summary
	s.TotalInvoices = len(invoices)
	s.TotalClients = len(clients)
	s.Current = out.Buckets[BucketCurrent].Total
	s.Overdue = s.TotalOutstanding.Sub(s.Current)
	if s.TotalOutstanding.IsPositive() {
		s.OverduePercent = s.Overdue.Mul(hundred).Div(s.TotalOutstanding).Round(2)
	}
	if len(invoices) > 0 {
		s.AvgDaysOutstanding = int(math.Round(float64(totalDays) / float64(len(invoices))))
	}
	return out
}
