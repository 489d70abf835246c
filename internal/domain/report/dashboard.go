package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CodeInvalidPeriod rejects an unknown dashboard period
const CodeInvalidPeriod = "INVALID_PERIOD"

// Period is the span the dashboard compares with the one before it
type Period string

const (
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// ParsePeriod reads a period, month when empty
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodMonth, nil
	case PeriodMonth, PeriodQuarter, PeriodYear:
		return p, nil
	}
	return "", shared.NewDomainErrorf(CodeInvalidPeriod, "Période invalide : %s", s)
}

// PeriodRanges returns the current period of the given year containing now's
// month, and the period just before it.
func PeriodRanges(p Period, year int, now time.Time) (current, previous Range) {
	loc := now.Location()
	var start time.Time
	var months int
	switch p {
	case PeriodYear:
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		months = 12
	case PeriodQuarter:
		q := (int(now.Month()) - 1) / 3
		start = time.Date(year, time.Month(q*3+1), 1, 0, 0, 0, 0, loc)
		months = 3
	default:
		start = time.Date(year, now.Month(), 1, 0, 0, 0, 0, loc)
		months = 1
	}
	end := start.AddDate(0, months, 0).Add(-time.Nanosecond)
	prevStart := start.AddDate(0, -months, 0)
	return Range{From: start, To: end}, Range{From: prevStart, To: start.Add(-time.Nanosecond)}
}

// Growth is the percentage change from previous to current, zero without a
// previous value
func Growth(current, previous decimal.Decimal) decimal.Decimal {
	if !previous.IsPositive() {
		return decimal.Zero
	}
	return current.Sub(previous).Mul(hundred).Div(previous).Round(2)
}

// Counts are the raw aggregates behind the dashboard
type Counts struct {
	InvoiceCount     int64
	InvoiceTotal     decimal.Decimal
	PrevInvoiceTotal decimal.Decimal

	QuoteCount    int64
	QuoteTotal    decimal.Decimal
	QuoteAccepted int64

	PaymentCount     int64
	PaymentTotal     decimal.Decimal
	PrevPaymentTotal decimal.Decimal

	OutstandingCount int64
	OutstandingTotal decimal.Decimal
	OverdueCount     int64
	OverdueTotal     decimal.Decimal

	Clients    int64
	LeadsNew   int64
	LeadsTotal int64
	LeadsWon   int64

	ProjectsByStatus map[string]int64

	OrdersPending int64
	OrdersTotal   int64
	OrdersRevenue decimal.Decimal
}

// Trend compares a figure with the previous period
type Trend struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Growth   decimal.Decimal `json:"growth"`
	Count    int64           `json:"count"`
}

// Sum is an amount with the number of records behind it
type Sum struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// QuoteStats adds the acceptance rate to the quote total
type QuoteStats struct {
	Sum
	ConversionRate decimal.Decimal `json:"conversionRate"`
}

// LeadStats counts the pipeline
type LeadStats struct {
	New   int64 `json:"new"`
	Won   int64 `json:"won"`
	Total int64 `json:"total"`
}

// ProjectStats counts projects by stage
type ProjectStats struct {
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	Total      int64 `json:"total"`
}

// OrderStats summarises shop orders
type OrderStats struct {
	Pending int64           `json:"pending"`
	Total   int64           `json:"total"`
	Revenue decimal.Decimal `json:"revenue"`
}

// KPIs are the dashboard headline figures
type KPIs struct {
	Revenue     Trend        `json:"revenue"`
	Payments    Trend        `json:"payments"`
	Invoices    Sum          `json:"invoices"`
	Quotes      QuoteStats   `json:"quotes"`
	Outstanding Sum          `json:"outstanding"`
	Overdue     Sum          `json:"overdue"`
	Clients     int64        `json:"clients"`
	Leads       LeadStats    `json:"leads"`
	Projects    ProjectStats `json:"projects"`
	Orders      OrderStats   `json:"orders"`
}

var activeProjectStages = map[crm.ProjectStatus]bool{
	crm.ProjectMeasurements: true,
	crm.ProjectPending:      true,
	crm.ProjectProduction:   true,
	crm.ProjectReady:        true,
	crm.ProjectDelivery:     true,
	crm.ProjectInstalling:   true,
}

var doneProjectStages = map[crm.ProjectStatus]bool{
	crm.ProjectCompleted: true,
	crm.ProjectReceived:  true,
	crm.ProjectClosed:    true,
}

// BuildKPIs turns the raw counts into the dashboard figures
func BuildKPIs(c Counts) KPIs {
	k := KPIs{
		Revenue: Trend{
			Current:  c.InvoiceTotal,
			Previous: c.PrevInvoiceTotal,
			Growth:   Growth(c.InvoiceTotal, c.PrevInvoiceTotal),
			Count:    c.InvoiceCount,
		},
		Payments: Trend{
			Current:  c.PaymentTotal,
			Previous: c.PrevPaymentTotal,
			Growth:   Growth(c.PaymentTotal, c.PrevPaymentTotal),
			Count:    c.PaymentCount,
		},
		Invoices:    Sum{Count: c.InvoiceCount, Total: c.InvoiceTotal},
		Quotes:      QuoteStats{Sum: Sum{Count: c.QuoteCount, Total: c.QuoteTotal}},
		Outstanding: Sum{Count: c.OutstandingCount, Total: c.OutstandingTotal},
		Overdue:     Sum{Count: c.OverdueCount, Total: c.OverdueTotal},
		Clients:     c.Clients,
		Leads:       LeadStats{New: c.LeadsNew, Won: c.LeadsWon, Total: c.LeadsTotal},
		Orders:      OrderStats{Pending: c.OrdersPending, Total: c.OrdersTotal, Revenue: c.OrdersRevenue},
	}
	if c.QuoteCount > 0 {
		k.Quotes.ConversionRate = decimal.NewFromInt(c.QuoteAccepted).Mul(hundred).
			Div(decimal.NewFromInt(c.QuoteCount)).Round(2)
	}
	for status, n := range c.ProjectsByStatus {
		k.Projects.Total += n
		switch st := crm.ProjectStatus(status); {
		case doneProjectStages[st]:
			k.Projects.Completed += n
		case activeProjectStages[st]:
			k.Projects.InProgress += n
		}
	}
	return k
}

// MonthPoint is one month of the revenue chart
type MonthPoint struct {
	Month     string          `json:"month"`
	Label     string          `json:"label"`
	Invoiced  decimal.Decimal `json:"invoiced"`
	Collected decimal.Decimal `json:"collected"`
}

// MonthlyRevenue charts invoiced and collected amounts for the twelve months
// ending with now's month
func MonthlyRevenue(invoices []Invoice, payments []LedgerPayment, now time.Time) []MonthPoint {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)
	points := make([]MonthPoint, 12)
	index := make(map[string]int, 12)
	for i := range points {
		m := first.AddDate(0, i, 0)
		key, label := PeriodKey(m, GroupMonth)
		points[i] = MonthPoint{Month: key, Label: label}
		index[key] = i
	}
	for _, inv := range invoices {
		if i, ok := index[inv.Date.Format("2006-01")]; ok {
			points[i].Invoiced = points[i].Invoiced.Add(inv.TotalTTC)
		}
	}
	for _, p := range payments {
		if i, ok := index[p.Date.Format("2006-01")]; ok {
			points[i].Collected = points[i].Collected.Add(p.Amount)
		}
	}
	return points
}

// RevenueWindow is the range MonthlyRevenue covers
func RevenueWindow(now time.Time) Range {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)
	return Range{From: first, To: now}
}

// CategoryRevenue is invoiced revenue of a catalog category
type CategoryRevenue struct {
	CategoryID *uuid.UUID      `json:"categoryId,omitempty"`
	Category   string          `json:"category"`
	Total      decimal.Decimal `json:"total"`
}

// UncategorizedLabel names revenue from lines without a category
const UncategorizedLabel = "Sans catégorie"

// Dashboard is the back-office home page
type Dashboard struct {
	KPIs   KPIs `json:"kpis"`
	Charts struct {
		MonthlyRevenue    []MonthPoint      `json:"monthlyRevenue"`
		RevenueByCategory []CategoryRevenue `json:"revenueByCategory"`
		TopClients        []ClientSales     `json:"topClients"`
	} `json:"charts"`
	Period struct {
		Type     Period `json:"type"`
		Year     int    `json:"year"`
		Current  Range  `json:"current"`
		Previous Range  `json:"previous"`
	} `json:"period"`
}
