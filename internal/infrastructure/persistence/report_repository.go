package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/report"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository implements report.Repository with read-only queries
// over documents, payments, clients, leads, projects and shop orders
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

const invoiceColumns = `d.id, d.number, d.type, d.status, d.date, d.due_date, d.client_id, d.client_name,
	COALESCE(c.client_number, '') AS client_number,
	d.total_ht, d.total_tva, d.total_ttc, d.paid_amount, d.balance`

type invoiceRow struct {
	ID           uuid.UUID
	Number       string
	Type         string
	Status       string
	Date         time.Time
	DueDate      *time.Time
	ClientID     uuid.UUID
	ClientName   string
	ClientNumber string
	TotalHT      decimal.Decimal `gorm:"column:total_ht"`
	TotalTVA     decimal.Decimal `gorm:"column:total_tva"`
	TotalTTC     decimal.Decimal `gorm:"column:total_ttc"`
	PaidAmount   decimal.Decimal
	Balance      decimal.Decimal
}

func (r invoiceRow) toReport() report.Invoice {
	return report.Invoice{
		ID:           r.ID,
		Number:       r.Number,
		Type:         document.Type(r.Type),
		Status:       document.Status(r.Status),
		Date:         r.Date,
		DueDate:      r.DueDate,
		ClientID:     r.ClientID,
		ClientName:   r.ClientName,
		ClientNumber: r.ClientNumber,
		TotalHT:      r.TotalHT,
		TotalTVA:     r.TotalTVA,
		TotalTTC:     r.TotalTTC,
		PaidAmount:   r.PaidAmount,
		Balance:      r.Balance,
	}
}

func (r *GormReportRepository) documents(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("crm_documents d").
		Joins("LEFT JOIN crm_clients c ON c.id = d.client_id")
}

// issuedInvoices keeps FACTURE documents that left draft
func issuedInvoices(q *gorm.DB) *gorm.DB {
	return q.Where("d.type = ? AND d.status <> ?", document.TypeFacture, document.StatusDraft)
}

func inRange(column string, rg report.Range) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(column+" BETWEEN ? AND ?", rg.From, rg.To)
	}
}

func forClient(column string, clientID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if clientID == nil {
			return q
		}
		return q.Where(column+" = ?", *clientID)
	}
}

func (r *GormReportRepository) scanInvoices(q *gorm.DB) ([]report.Invoice, error) {
	var rows []invoiceRow
	if err := q.Select(invoiceColumns).Order("d.date ASC, d.number ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]report.Invoice, len(rows))
	for i, row := range rows {
		out[i] = row.toReport()
	}
	return out, nil
}

// Invoices returns issued invoices of the range, oldest first
func (r *GormReportRepository) Invoices(ctx context.Context, f report.SalesFilter) ([]report.Invoice, error) {
	q := r.documents(ctx).
		Scopes(issuedInvoices, inRange("d.date", f.Range), forClient("d.client_id", f.ClientID))
	return r.scanInvoices(q)
}

// TopClients ranks clients by invoiced TTC
func (r *GormReportRepository) TopClients(ctx context.Context, f report.SalesFilter, limit int) ([]report.ClientSales, error) {
	var rows []report.ClientSales
	err := r.db.WithContext(ctx).Table("crm_documents d").
		Select(`d.client_id AS client_id,
			MAX(d.client_name) AS client_name,
			COUNT(*) AS invoices_count,
			COALESCE(SUM(d.total_ttc), 0) AS total_ttc,
			COALESCE(SUM(d.paid_amount), 0) AS paid_amount`).
		Scopes(issuedInvoices, inRange("d.date", f.Range), forClient("d.client_id", f.ClientID)).
		Group("d.client_id").
		Order("total_ttc DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// TopProducts ranks catalog items by invoiced TTC. Manual lines are grouped
// under a nil product.
func (r *GormReportRepository) TopProducts(ctx context.Context, f report.SalesFilter, limit int) ([]report.ProductSales, error) {
	var rows []report.ProductSales
	err := r.db.WithContext(ctx).Table("crm_document_items i").
		Joins("JOIN crm_documents d ON d.id = i.document_id").
		Joins("LEFT JOIN catalog_items ci ON ci.id = i.catalog_item_id").
		Select(`i.catalog_item_id AS product_id,
			COALESCE(MAX(ci.name), '') AS product_name,
			COALESCE(MAX(ci.sku), '') AS sku,
			COALESCE(SUM(i.total_ttc), 0) AS total,
			COALESCE(SUM(i.quantity), 0) AS quantity,
			COUNT(*) AS count`).
		Scopes(issuedInvoices, inRange("d.date", f.Range), forClient("d.client_id", f.ClientID)).
		Group("i.catalog_item_id").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// OpenInvoices returns unpaid invoices awaiting payment, oldest first
func (r *GormReportRepository) OpenInvoices(ctx context.Context, clientID *uuid.UUID) ([]report.Invoice, error) {
	q := r.documents(ctx).
		Where("d.type = ? AND d.status IN ? AND d.balance > 0", document.TypeFacture, report.OpenStatuses).
		Scopes(forClient("d.client_id", clientID))
	return r.scanInvoices(q)
}

type aggregate struct {
	N     int64
	Total decimal.Decimal
}

func (r *GormReportRepository) aggregate(ctx context.Context, table, sum string, scopes ...func(*gorm.DB) *gorm.DB) (aggregate, error) {
	var a aggregate
	sel := "COUNT(*) AS n, COALESCE(SUM(" + sum + "), 0) AS total"
	if sum == "" {
		sel = "COUNT(*) AS n, 0 AS total"
	}
	err := r.db.WithContext(ctx).Table(table).Select(sel).Scopes(scopes...).Scan(&a).Error
	return a, err
}

func where(query string, args ...any) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB { return q.Where(query, args...) }
}

// DashboardCounts gathers the dashboard aggregates. Each figure is one small
// query so every count stays indexable.
func (r *GormReportRepository) DashboardCounts(ctx context.Context, current, previous report.Range) (*report.Counts, error) {
	c := &report.Counts{ProjectsByStatus: map[string]int64{}}
	steps := []struct {
		table  string
		sum    string
		scopes []func(*gorm.DB) *gorm.DB
		apply  func(aggregate)
	}{
		{"crm_documents d", "d.total_ttc", []func(*gorm.DB) *gorm.DB{issuedInvoices, inRange("d.date", current)},
			func(a aggregate) { c.InvoiceCount, c.InvoiceTotal = a.N, a.Total }},
		{"crm_documents d", "d.total_ttc", []func(*gorm.DB) *gorm.DB{issuedInvoices, inRange("d.date", previous)},
			func(a aggregate) { c.PrevInvoiceTotal = a.Total }},
		{"crm_documents d", "d.total_ttc", []func(*gorm.DB) *gorm.DB{where("d.type = ?", document.TypeDevis), inRange("d.date", current)},
			func(a aggregate) { c.QuoteCount, c.QuoteTotal = a.N, a.Total }},
		{"crm_documents d", "", []func(*gorm.DB) *gorm.DB{where("d.type = ? AND d.status = ?", document.TypeDevis, document.StatusAccepted), inRange("d.date", current)},
			func(a aggregate) { c.QuoteAccepted = a.N }},
		{"crm_payments p", "p.amount", []func(*gorm.DB) *gorm.DB{inRange("p.payment_date", current)},
			func(a aggregate) { c.PaymentCount, c.PaymentTotal = a.N, a.Total }},
		{"crm_payments p", "p.amount", []func(*gorm.DB) *gorm.DB{inRange("p.payment_date", previous)},
			func(a aggregate) { c.PrevPaymentTotal = a.Total }},
		{"crm_documents d", "d.balance", []func(*gorm.DB) *gorm.DB{where("d.type = ? AND d.status IN ? AND d.balance > 0", document.TypeFacture, report.OpenStatuses)},
			func(a aggregate) { c.OutstandingCount, c.OutstandingTotal = a.N, a.Total }},
		{"crm_documents d", "d.balance", []func(*gorm.DB) *gorm.DB{where("d.type = ? AND d.status = ?", document.TypeFacture, document.StatusOverdue)},
			func(a aggregate) { c.OverdueCount, c.OverdueTotal = a.N, a.Total }},
		{"crm_clients", "", nil,
			func(a aggregate) { c.Clients = a.N }},
		{"crm_leads", "", nil,
			func(a aggregate) { c.LeadsTotal = a.N }},
		{"crm_leads", "", []func(*gorm.DB) *gorm.DB{inRange("created_at", current)},
			func(a aggregate) { c.LeadsNew = a.N }},
		{"crm_leads", "", []func(*gorm.DB) *gorm.DB{where("status = ?", crm.LeadWon), inRange("updated_at", current)},
			func(a aggregate) { c.LeadsWon = a.N }},
		{"shop_orders", "", []func(*gorm.DB) *gorm.DB{where("status = ?", shop.StatusPending)},
			func(a aggregate) { c.OrdersPending = a.N }},
		{"shop_orders", "total", []func(*gorm.DB) *gorm.DB{where("status NOT IN ?", []shop.Status{shop.StatusCancelled, shop.StatusRefunded}), inRange("created_at", current)},
			func(a aggregate) { c.OrdersTotal, c.OrdersRevenue = a.N, a.Total }},
	}
	for _, s := range steps {
		a, err := r.aggregate(ctx, s.table, s.sum, s.scopes...)
		if err != nil {
			return nil, err
		}
		s.apply(a)
	}

	var projects []struct {
		Status string
		N      int64
	}
	err := r.db.WithContext(ctx).Table("crm_projects").
		Select("status, COUNT(*) AS n").Group("status").Scan(&projects).Error
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		c.ProjectsByStatus[p.Status] = p.N
	}
	return c, nil
}

// Payments returns the payments of the range with their client and document
func (r *GormReportRepository) Payments(ctx context.Context, rg report.Range, clientID *uuid.UUID) ([]report.LedgerPayment, error) {
	var rows []struct {
		ID             uuid.UUID
		Number         string
		Date           time.Time
		Amount         decimal.Decimal
		Method         string
		Reference      string
		ClientID       uuid.UUID
		ClientNumber   string
		ClientName     string
		DocumentNumber string
		DocumentType   string
	}
	err := r.db.WithContext(ctx).Table("crm_payments p").
		Joins("LEFT JOIN crm_documents d ON d.id = p.document_id").
		Joins("LEFT JOIN crm_clients c ON c.id = p.client_id").
		Select(`p.id, p.number, p.payment_date AS date, p.amount, p.method,
			COALESCE(p.reference, '') AS reference, p.client_id,
			COALESCE(c.client_number, '') AS client_number,
			COALESCE(c.full_name, d.client_name, '') AS client_name,
			COALESCE(d.number, '') AS document_number,
			COALESCE(d.type, '') AS document_type`).
		Scopes(inRange("p.payment_date", rg), forClient("p.client_id", clientID)).
		Order("p.payment_date ASC, p.number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]report.LedgerPayment, len(rows))
	for i, p := range rows {
		out[i] = report.LedgerPayment{
			ID:             p.ID,
			Number:         p.Number,
			Date:           p.Date,
			Amount:         p.Amount,
			Method:         document.PaymentMethod(p.Method),
			Reference:      p.Reference,
			ClientID:       p.ClientID,
			ClientNumber:   p.ClientNumber,
			ClientName:     p.ClientName,
			DocumentNumber: p.DocumentNumber,
			DocumentType:   document.Type(p.DocumentType),
		}
	}
	return out, nil
}

// RevenueByCategory splits invoiced TTC by catalog category
func (r *GormReportRepository) RevenueByCategory(ctx context.Context, rg report.Range) ([]report.CategoryRevenue, error) {
	var rows []report.CategoryRevenue
	err := r.db.WithContext(ctx).Table("crm_document_items i").
		Joins("JOIN crm_documents d ON d.id = i.document_id").
		Joins("LEFT JOIN catalog_items ci ON ci.id = i.catalog_item_id").
		Joins("LEFT JOIN catalog_categories cc ON cc.id = ci.category_id").
		Select(`ci.category_id AS category_id,
			COALESCE(MAX(cc.name), '') AS category,
			COALESCE(SUM(i.total_ttc), 0) AS total`).
		Scopes(issuedInvoices, inRange("d.date", rg)).
		Group("ci.category_id").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].CategoryID == nil {
			rows[i].Category = report.UncategorizedLabel
		}
	}
	return rows, nil
}

// LedgerDocuments returns issued documents of the given types in the range
func (r *GormReportRepository) LedgerDocuments(ctx context.Context, rg report.Range, clientID *uuid.UUID, types []document.Type) ([]report.LedgerDocument, error) {
	var rows []struct {
		invoiceRow
		ClientICE    string `gorm:"column:client_ice"`
		VATBreakdown string `gorm:"column:vat_breakdown"`
	}
	err := r.documents(ctx).
		Select(invoiceColumns+`, COALESCE(d.client_ice, '') AS client_ice, COALESCE(d.vat_breakdown, '[]') AS vat_breakdown`).
		Where("d.type IN ? AND d.is_draft = ?", types, false).
		Scopes(inRange("d.date", rg), forClient("d.client_id", clientID)).
		Order("d.date ASC, d.number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]report.LedgerDocument, len(rows))
	for i, row := range rows {
		out[i] = report.LedgerDocument{Invoice: row.toReport(), ClientICE: row.ClientICE}
		if err := json.Unmarshal([]byte(row.VATBreakdown), &out[i].VATBreakdown); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ClientAccounts returns clients ordered by name with their issued invoices
// and credit notes dated up to asOf
func (r *GormReportRepository) ClientAccounts(ctx context.Context, asOf time.Time, clientID *uuid.UUID) ([]report.ClientAccount, error) {
	var clients []struct {
		ID           uuid.UUID
		ClientNumber string
		FullName     string
		ICE          string `gorm:"column:ice"`
		Phone        string
		Email        string
	}
	err := r.db.WithContext(ctx).Table("crm_clients").
		Select("id, client_number, full_name, COALESCE(ice, '') AS ice, phone, COALESCE(email, '') AS email").
		Scopes(forClient("id", clientID)).
		Order("full_name ASC").
		Scan(&clients).Error
	if err != nil || len(clients) == 0 {
		return nil, err
	}

	var docs []struct {
		ClientID   uuid.UUID
		Type       string
		Status     string
		DueDate    *time.Time
		TotalTTC   decimal.Decimal `gorm:"column:total_ttc"`
		PaidAmount decimal.Decimal
		Balance    decimal.Decimal
	}
	err = r.db.WithContext(ctx).Table("crm_documents").
		Select("client_id, type, status, due_date, total_ttc, paid_amount, balance").
		Where("type IN ? AND is_draft = ? AND date <= ?", report.LedgerTypes, false, asOf).
		Scopes(forClient("client_id", clientID)).
		Order("date ASC").
		Scan(&docs).Error
	if err != nil {
		return nil, err
	}
	byClient := make(map[uuid.UUID][]report.AccountDocument)
	for _, d := range docs {
		byClient[d.ClientID] = append(byClient[d.ClientID], report.AccountDocument{
			Type:       document.Type(d.Type),
			Status:     document.Status(d.Status),
			DueDate:    d.DueDate,
			TotalTTC:   d.TotalTTC,
			PaidAmount: d.PaidAmount,
			Balance:    d.Balance,
		})
	}

	out := make([]report.ClientAccount, len(clients))
	for i, c := range clients {
		out[i] = report.ClientAccount{
			ClientID:     c.ID,
			ClientNumber: c.ClientNumber,
			ClientName:   c.FullName,
			ICE:          c.ICE,
			Phone:        c.Phone,
			Email:        c.Email,
			Documents:    byClient[c.ID],
		}
	}
	return out, nil
}

var _ report.Repository = (*GormReportRepository)(nil)
