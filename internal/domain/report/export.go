package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	CodeInvalidExportType = "INVALID_EXPORT_TYPE"
	CodeInvalidFormat     = "INVALID_EXPORT_FORMAT"
)

// ExportType is one of the accounting exports
type ExportType string

const (
	ExportSalesLedger    ExportType = "sales_ledger"
	ExportPaymentsLedger ExportType = "payments_ledger"
	ExportClientBalances ExportType = "client_balances"
	ExportVATSummary     ExportType = "vat_summary"
)

// ExportTypeInfo describes an export for the picker
type ExportTypeInfo struct {
	Value ExportType `json:"value"`
	Label string     `json:"label"`
}

// ExportTypes lists the available exports
var ExportTypes = []ExportTypeInfo{
	{ExportSalesLedger, "Journal des ventes"},
	{ExportPaymentsLedger, "Journal des encaissements"},
	{ExportClientBalances, "Balance clients"},
	{ExportVATSummary, "Déclaration TVA"},
}

// ParseExportType validates an export type
func ParseExportType(s string) (ExportType, error) {
	for _, t := range ExportTypes {
		if string(t.Value) == s {
			return t.Value, nil
		}
	}
	return "", shared.NewDomainError(CodeInvalidExportType, "Type d'export non supporté")
}

// Format is the encoding of an export
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat reads a format, json when empty
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", shared.NewDomainErrorf(CodeInvalidFormat, "Format d'export invalide : %s", s)
}

// LedgerTypes are the documents that enter the accounts
var LedgerTypes = []document.Type{document.TypeFacture, document.TypeFactureAcompte, document.TypeAvoir}

// VATRates are the Moroccan VAT rates reported in the summary
var VATRates = []int{0, 7, 10, 14, 20}

// LedgerDocument is an issued invoice or credit note with its VAT split
type LedgerDocument struct {
	Invoice
	ClientICE    string
	VATBreakdown []document.VATBreakdownEntry
}

func (d LedgerDocument) sign() decimal.Decimal {
	if d.Type == document.TypeAvoir {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

func (d LedgerDocument) vat(rate int) decimal.Decimal {
	for _, e := range d.VATBreakdown {
		if e.Rate == rate {
			return e.Amount
		}
	}
	return decimal.Zero
}

// LedgerPayment is a recorded payment with its client and document
type LedgerPayment struct {
	ID             uuid.UUID              `json:"id"`
	Number         string                 `json:"number"`
	Date           time.Time              `json:"date"`
	Amount         decimal.Decimal        `json:"amount"`
	Method         document.PaymentMethod `json:"method"`
	Reference      string                 `json:"reference"`
	ClientID       uuid.UUID              `json:"clientId"`
	ClientNumber   string                 `json:"clientNumber"`
	ClientName     string                 `json:"clientName"`
	DocumentNumber string                 `json:"documentNumber"`
	DocumentType   document.Type          `json:"documentType"`
}

// AccountDocument is one issued document on a client account
type AccountDocument struct {
	Type       document.Type
	Status     document.Status
	DueDate    *time.Time
	TotalTTC   decimal.Decimal
	PaidAmount decimal.Decimal
	Balance    decimal.Decimal
}

// ClientAccount is a client with the documents issued up to a date
type ClientAccount struct {
	ClientID     uuid.UUID
	ClientNumber string
	ClientName   string
	ICE          string
	Phone        string
	Email        string
	Documents    []AccountDocument
}

// Export is a generated accounting export. Rows follow Columns and feed the
// csv and xlsx encoders.
type Export struct {
	Type        ExportType `json:"type"`
	Range       Range      `json:"period"`
	Filename    string     `json:"filename"`
	RecordCount int        `json:"recordCount"`
	Columns     []string   `json:"columns"`
	Records     any        `json:"records"`
	Totals      any        `json:"totals"`
	Rows        [][]any    `json:"-"`
}

func fileDate(t time.Time) string {
	return t.Format("20060102")
}

// Filename names the export file, without extension
func Filename(t ExportType, r Range) string {
	switch t {
	case ExportSalesLedger:
		return fmt.Sprintf("journal_ventes_%s_%s", fileDate(r.From), fileDate(r.To))
	case ExportPaymentsLedger:
		return fmt.Sprintf("journal_encaissements_%s_%s", fileDate(r.From), fileDate(r.To))
	case ExportClientBalances:
		return "balance_clients_" + fileDate(r.To)
	default:
		return fmt.Sprintf("declaration_tva_%s_%s", fileDate(r.From), fileDate(r.To))
	}
}

// PeriodLabel is the month span recorded in the export history
func PeriodLabel(r Range) string {
	return r.From.Format("2006-01") + " to " + r.To.Format("2006-01")
}

func newExport(t ExportType, r Range, columns []string) *Export {
	return &Export{Type: t, Range: r, Filename: Filename(t, r), Columns: columns, Rows: [][]any{}}
}

// SalesLedgerRow is one line of the sales ledger. Credit notes are negative.
type SalesLedgerRow struct {
	Date           string          `json:"date"`
	DocumentNumber string          `json:"documentNumber"`
	DocumentType   document.Type   `json:"documentType"`
	ClientNumber   string          `json:"clientNumber"`
	ClientName     string          `json:"clientName"`
	ClientICE      string          `json:"clientICE"`
	TotalHT        decimal.Decimal `json:"totalHT"`
	TVA0           decimal.Decimal `json:"tva0"`
	TVA7           decimal.Decimal `json:"tva7"`
	TVA10          decimal.Decimal `json:"tva10"`
	TVA14          decimal.Decimal `json:"tva14"`
	TVA20          decimal.Decimal `json:"tva20"`
	TotalTVA       decimal.Decimal `json:"totalTVA"`
	TotalTTC       decimal.Decimal `json:"totalTTC"`
	PaymentStatus  document.Status `json:"paymentStatus"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	Balance        decimal.Decimal `json:"balance"`
}

// SalesLedgerTotals sums the sales ledger
type SalesLedgerTotals struct {
	TotalHT      decimal.Decimal `json:"totalHT"`
	TVA0         decimal.Decimal `json:"tva0"`
	TVA7         decimal.Decimal `json:"tva7"`
	TVA10        decimal.Decimal `json:"tva10"`
	TVA14        decimal.Decimal `json:"tva14"`
	TVA20        decimal.Decimal `json:"tva20"`
	TotalTVA     decimal.Decimal `json:"totalTVA"`
	TotalTTC     decimal.Decimal `json:"totalTTC"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
}

var salesLedgerColumns = []string{
	"date", "documentNumber", "documentType", "clientNumber", "clientName", "clientICE",
	"totalHT", "tva0", "tva7", "tva10", "tva14", "tva20", "totalTVA", "totalTTC",
	"paymentStatus", "paidAmount", "balance",
}

// SalesLedger builds the journal des ventes from issued documents
func SalesLedger(r Range, docs []LedgerDocument) *Export {
	e := newExport(ExportSalesLedger, r, salesLedgerColumns)
	records := make([]SalesLedgerRow, 0, len(docs))
	var t SalesLedgerTotals
	for _, d := range docs {
		sign := d.sign()
		row := SalesLedgerRow{
			Date:           d.Date.Format("2006-01-02"),
			DocumentNumber: d.Number,
			DocumentType:   d.Type,
			ClientNumber:   d.ClientNumber,
			ClientName:     d.ClientName,
			ClientICE:      d.ClientICE,
			TotalHT:        d.TotalHT.Mul(sign),
			TVA0:           d.vat(0).Mul(sign),
			TVA7:           d.vat(7).Mul(sign),
			TVA10:          d.vat(10).Mul(sign),
			TVA14:          d.vat(14).Mul(sign),
			TVA20:          d.vat(20).Mul(sign),
			TotalTVA:       d.TotalTVA.Mul(sign),
			TotalTTC:       d.TotalTTC.Mul(sign),
			PaymentStatus:  d.Status,
			PaidAmount:     d.PaidAmount.Mul(sign),
			Balance:        d.Balance.Mul(sign),
		}
		records = append(records, row)
		e.Rows = append(e.Rows, []any{
			row.Date, row.DocumentNumber, string(row.DocumentType), row.ClientNumber, row.ClientName, row.ClientICE,
			row.TotalHT, row.TVA0, row.TVA7, row.TVA10, row.TVA14, row.TVA20, row.TotalTVA, row.TotalTTC,
			string(row.PaymentStatus), row.PaidAmount, row.Balance,
		})

		t.TotalHT = t.TotalHT.Add(row.TotalHT)
		t.TVA0 = t.TVA0.Add(row.TVA0)
		t.TVA7 = t.TVA7.Add(row.TVA7)
		t.TVA10 = t.TVA10.Add(row.TVA10)
		t.TVA14 = t.TVA14.Add(row.TVA14)
		t.TVA20 = t.TVA20.Add(row.TVA20)
		t.TotalTVA = t.TotalTVA.Add(row.TotalTVA)
		t.TotalTTC = t.TotalTTC.Add(row.TotalTTC)
		t.TotalPaid = t.TotalPaid.Add(row.PaidAmount)
		t.TotalBalance = t.TotalBalance.Add(row.Balance)
	}
	e.Records, e.Totals, e.RecordCount = records, t, len(records)
	return e
}

// PaymentsLedgerRow is one line of the payments ledger
type PaymentsLedgerRow struct {
	Date           string                 `json:"date"`
	PaymentNumber  string                 `json:"paymentNumber"`
	ClientNumber   string                 `json:"clientNumber"`
	ClientName     string                 `json:"clientName"`
	DocumentNumber string                 `json:"documentNumber"`
	DocumentType   document.Type          `json:"documentType"`
	Amount         decimal.Decimal        `json:"amount"`
	Method         document.PaymentMethod `json:"method"`
	Reference      string                 `json:"reference"`
}

// PaymentsLedgerTotals sums payments overall and per method
type PaymentsLedgerTotals struct {
	TotalAmount decimal.Decimal                            `json:"totalAmount"`
	ByMethod    map[document.PaymentMethod]decimal.Decimal `json:"byMethod"`
}

var paymentsLedgerColumns = []string{
	"date", "paymentNumber", "clientNumber", "clientName", "documentNumber",
	"documentType", "amount", "method", "reference",
}

// PaymentsLedger builds the journal des encaissements
func PaymentsLedger(r Range, payments []LedgerPayment) *Export {
	e := newExport(ExportPaymentsLedger, r, paymentsLedgerColumns)
	records := make([]PaymentsLedgerRow, 0, len(payments))
	t := PaymentsLedgerTotals{ByMethod: map[document.PaymentMethod]decimal.Decimal{}}
	for _, p := range payments {
		row := PaymentsLedgerRow{
			Date:           p.Date.Format("2006-01-02"),
			PaymentNumber:  p.Number,
			ClientNumber:   p.ClientNumber,
			ClientName:     p.ClientName,
			DocumentNumber: p.DocumentNumber,
			DocumentType:   p.DocumentType,
			Amount:         p.Amount,
			Method:         p.Method,
			Reference:      p.Reference,
		}
		records = append(records, row)
		e.Rows = append(e.Rows, []any{
			row.Date, row.PaymentNumber, row.ClientNumber, row.ClientName, row.DocumentNumber,
			string(row.DocumentType), row.Amount, string(row.Method), row.Reference,
		})
		t.TotalAmount = t.TotalAmount.Add(p.Amount)
		t.ByMethod[p.Method] = t.ByMethod[p.Method].Add(p.Amount)
	}
	e.Records, e.Totals, e.RecordCount = records, t, len(records)
	return e
}

// ClientBalanceRow is one client of the balance
type ClientBalanceRow struct {
	ClientNumber  string          `json:"clientNumber"`
	ClientName    string          `json:"clientName"`
	ClientICE     string          `json:"clientICE"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	TotalInvoiced decimal.Decimal `json:"totalInvoiced"`
	TotalCredits  decimal.Decimal `json:"totalCredits"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	Balance       decimal.Decimal `json:"balance"`
	OverdueCount  int             `json:"overdueCount"`
	OverdueAmount decimal.Decimal `json:"overdueAmount"`
	InvoiceCount  int             `json:"invoiceCount"`
	CreditCount   int             `json:"creditCount"`
}

// ClientBalanceTotals sums the balance
type ClientBalanceTotals struct {
	TotalInvoiced      decimal.Decimal `json:"totalInvoiced"`
	TotalCredits       decimal.Decimal `json:"totalCredits"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	TotalBalance       decimal.Decimal `json:"totalBalance"`
	TotalOverdue       decimal.Decimal `json:"totalOverdue"`
	ClientCount        int             `json:"clientCount"`
	ClientsWithBalance int             `json:"clientsWithBalance"`
	ClientsWithOverdue int             `json:"clientsWithOverdue"`
}

var clientBalanceColumns = []string{
	"clientNumber", "clientName", "clientICE", "phone", "email",
	"totalInvoiced", "totalCredits", "totalPaid", "balance",
	"overdueCount", "overdueAmount", "invoiceCount", "creditCount",
}

// ClientBalances builds the balance clients as of r.To. Clients without any
// invoice and with a zero balance are left out.
func ClientBalances(r Range, accounts []ClientAccount) *Export {
	asOf := r.To
	e := newExport(ExportClientBalances, r, clientBalanceColumns)
	records := []ClientBalanceRow{}
	var t ClientBalanceTotals
	for _, a := range accounts {
		row := ClientBalanceRow{
			ClientNumber: a.ClientNumber,
			ClientName:   a.ClientName,
			ClientICE:    a.ICE,
			Phone:        a.Phone,
			Email:        a.Email,
		}
		for _, d := range a.Documents {
			if d.Type == document.TypeAvoir {
				row.TotalCredits = row.TotalCredits.Add(d.TotalTTC)
				row.CreditCount++
				continue
			}
			row.TotalInvoiced = row.TotalInvoiced.Add(d.TotalTTC)
			row.TotalPaid = row.TotalPaid.Add(d.PaidAmount)
			row.InvoiceCount++
			late := d.DueDate != nil && d.DueDate.Before(asOf) && d.Balance.IsPositive()
			if d.Status == document.StatusOverdue || late {
				row.OverdueCount++
				row.OverdueAmount = row.OverdueAmount.Add(d.Balance)
			}
		}
		row.Balance = row.TotalInvoiced.Sub(row.TotalPaid).Sub(row.TotalCredits)
		if row.Balance.IsZero() && !row.TotalInvoiced.IsPositive() {
			continue
		}

		records = append(records, row)
		e.Rows = append(e.Rows, []any{
			row.ClientNumber, row.ClientName, row.ClientICE, row.Phone, row.Email,
			row.TotalInvoiced, row.TotalCredits, row.TotalPaid, row.Balance,
			row.OverdueCount, row.OverdueAmount, row.InvoiceCount, row.CreditCount,
		})
		t.TotalInvoiced = t.TotalInvoiced.Add(row.TotalInvoiced)
		t.TotalCredits = t.TotalCredits.Add(row.TotalCredits)
		t.TotalPaid = t.TotalPaid.Add(row.TotalPaid)
		t.TotalBalance = t.TotalBalance.Add(row.Balance)
		t.TotalOverdue = t.TotalOverdue.Add(row.OverdueAmount)
		if row.Balance.IsPositive() {
			t.ClientsWithBalance++
		}
		if row.OverdueAmount.IsPositive() {
			t.ClientsWithOverdue++
		}
	}
	t.ClientCount = len(records)
	e.Records, e.Totals, e.RecordCount = records, t, len(records)
	return e
}

// VATRow is the taxable base and VAT of one rate
type VATRow struct {
	Rate             int             `json:"rate"`
	RateLabel        string          `json:"rateLabel"`
	BaseHT           decimal.Decimal `json:"baseHT"`
	VATAmount        decimal.Decimal `json:"vatAmount"`
	TransactionCount int             `json:"transactionCount"`
}

// VATTotals are the declaration figures. Credit notes reduce the net.
type VATTotals struct {
	InvoiceCount    int             `json:"invoiceCount"`
	CreditCount     int             `json:"creditCount"`
	GrossSalesHT    decimal.Decimal `json:"grossSalesHT"`
	CreditsHT       decimal.Decimal `json:"creditsHT"`
	NetSalesHT      decimal.Decimal `json:"netSalesHT"`
	GrossVAT        decimal.Decimal `json:"grossVAT"`
	CreditsVAT      decimal.Decimal `json:"creditsVAT"`
	NetVATCollected decimal.Decimal `json:"netVATCollected"`
	TotalTTC        decimal.Decimal `json:"totalTTC"`
}

var vatColumns = []string{"rate", "rateLabel", "baseHT", "vatAmount", "transactionCount"}

// RateLabel names a VAT rate in the declaration
func RateLabel(rate int) string {
	if rate == 0 {
		return "Exonéré"
	}
	return fmt.Sprintf("%d%%", rate)
}

// VATSummary builds the déclaration TVA, one row per rate
func VATSummary(r Range, docs []LedgerDocument) *Export {
	e := newExport(ExportVATSummary, r, vatColumns)
	byRate := make(map[int]*VATRow, len(VATRates))
	records := make([]VATRow, len(VATRates))
	for i, rate := range VATRates {
		records[i] = VATRow{Rate: rate, RateLabel: RateLabel(rate)}
		byRate[rate] = &records[i]
	}

	var t VATTotals
	for _, d := range docs {
		sign := d.sign()
		for _, entry := range d.VATBreakdown {
			row, ok := byRate[entry.Rate]
			if !ok {
				continue
			}
			row.BaseHT = row.BaseHT.Add(entry.BaseHT.Mul(sign))
			row.VATAmount = row.VATAmount.Add(entry.Amount.Mul(sign))
			row.TransactionCount++
		}
		if d.Type == document.TypeAvoir {
			t.CreditCount++
			t.CreditsHT = t.CreditsHT.Add(d.TotalHT)
			t.CreditsVAT = t.CreditsVAT.Add(d.TotalTVA)
		} else {
			t.InvoiceCount++
			t.GrossSalesHT = t.GrossSalesHT.Add(d.TotalHT)
			t.GrossVAT = t.GrossVAT.Add(d.TotalTVA)
		}
	}

	for i := range records {
		row := &records[i]
		row.BaseHT = row.BaseHT.Round(2)
		row.VATAmount = row.VATAmount.Round(2)
		t.NetSalesHT = t.NetSalesHT.Add(row.BaseHT)
		t.NetVATCollected = t.NetVATCollected.Add(row.VATAmount)
		e.Rows = append(e.Rows, []any{row.Rate, row.RateLabel, row.BaseHT, row.VATAmount, row.TransactionCount})
	}
	t.TotalTTC = t.NetSalesHT.Add(t.NetVATCollected)
	e.Records, e.Totals, e.RecordCount = records, t, len(records)
	return e
}
