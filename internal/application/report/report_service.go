// Package report serves the back-office reports and accounting exports.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/report"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

// Cache TTLs
const (
	DashboardTTL = 5 * time.Minute
	SalesTTL     = 10 * time.Minute
)

// DashboardTopClients is the size of the dashboard client ranking
const DashboardTopClients = 5

// Cache keeps computed reports between requests
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	InvalidateAll(ctx context.Context) error
}

// Encoder turns an export into a downloadable file
type Encoder interface {
	Encode(e *report.Export) ([]byte, error)
	ContentType() string
	Extension() string
}

// SalesRequest selects the sales report
type SalesRequest struct {
	From     *time.Time
	To       *time.Time
	GroupBy  string
	ClientID *uuid.UUID
}

// DashboardRequest selects the dashboard period. Year defaults to the
// current year.
type DashboardRequest struct {
	Period string
	Year   int
}

// ExportRequest is the accounting export form
type ExportRequest struct {
	Type         string     `json:"type" binding:"required"`
	DateFrom     time.Time  `json:"dateFrom" binding:"required"`
	DateTo       time.Time  `json:"dateTo" binding:"required"`
	Format       string     `json:"format"`
	ClientID     *uuid.UUID `json:"clientId"`
	DocumentType string     `json:"documentType"`
}

// File is an encoded export
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportResult is a generated export, with its file unless the format is json
type ExportResult struct {
	Export *report.Export
	Format report.Format
	File   *File
}

// ExportRecord is one past export, read back from the audit trail
type ExportRecord struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Period      string     `json:"period"`
	Filename    string     `json:"filename"`
	Format      string     `json:"format"`
	RecordCount int        `json:"recordCount"`
	CreatedBy   *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ExportHistory lists recent exports with the available types
type ExportHistory struct {
	Exports        []ExportRecord          `json:"exports"`
	AvailableTypes []report.ExportTypeInfo `json:"availableTypes"`
}

// ReportService computes reports
type ReportService struct {
	repo      report.Repository
	cache     Cache
	auditRepo audit.Repository
	encoders  map[report.Format]Encoder
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService creates a new ReportService. cache may be nil.
func NewReportService(repo report.Repository, cache Cache, auditRepo audit.Repository, logger *zap.Logger) *ReportService {
	return &ReportService{
		repo:      repo,
		cache:     cache,
		auditRepo: auditRepo,
		encoders:  make(map[report.Format]Encoder),
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock replaces the time source
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

// RegisterEncoder enables a file format for exports
func (s *ReportService) RegisterEncoder(f report.Format, e Encoder) {
	s.encoders[f] = e
}

// cached serves key from the cache or computes and stores it. Cache failures
// only cost a recomputation.
func cached[T any](ctx context.Context, s *ReportService, key string, ttl time.Duration, compute func() (*T, error)) (*T, error) {
	if s.cache != nil {
		var hit T
		found, err := s.cache.Get(ctx, key, &hit)
		if err != nil {
			s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		} else if found {
			return &hit, nil
		}
	}
	out, err := compute()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, ttl); err != nil {
			s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

func clientKey(id *uuid.UUID) string {
	if id == nil {
		return "all"
	}
	return id.String()
}

// Sales returns the sales report of issued invoices
func (s *ReportService) Sales(ctx context.Context, req SalesRequest) (*report.Sales, error) {
	g, err := report.ParseGroupBy(req.GroupBy)
	if err != nil {
		return nil, err
	}
	rg, err := report.ResolveRange(req.From, req.To, s.now())
	if err != nil {
		return nil, err
	}
	f := report.SalesFilter{Range: rg, ClientID: req.ClientID}
	key := fmt.Sprintf("sales:%s:%d:%d:%s", g, rg.From.Unix(), rg.To.Truncate(time.Minute).Unix(), clientKey(req.ClientID))

	return cached(ctx, s, key, SalesTTL, func() (*report.Sales, error) {
		invoices, err := s.repo.Invoices(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("load invoices: %w", err)
		}
		clients, err := s.repo.TopClients(ctx, f, report.TopLimit)
		if err != nil {
			return nil, fmt.Errorf("rank clients: %w", err)
		}
		products, err := s.repo.TopProducts(ctx, f, report.TopLimit)
		if err != nil {
			return nil, fmt.Errorf("rank products: %w", err)
		}
		for i := range products {
			products[i].ProductName = products[i].Label()
		}

		out := &report.Sales{
			ByClient:  nonNil(clients),
			ByProduct: nonNil(products),
			Range:     rg,
			GroupBy:   g,
			ClientID:  req.ClientID,
		}
		out.Summary, out.ByPeriod = report.BuildSales(invoices, g)
		return out, nil
	})
}

// Receivables returns the aging of unpaid invoices as of now. It is never
// cached since it moves with every payment.
func (s *ReportService) Receivables(ctx context.Context, clientID *uuid.UUID) (*report.Aging, error) {
	invoices, err := s.repo.OpenInvoices(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load open invoices: %w", err)
	}
	aging := report.BuildAging(invoices, s.now())
	return &aging, nil
}

// Dashboard returns the KPIs and charts of the home page
func (s *ReportService) Dashboard(ctx context.Context, req DashboardRequest) (*report.Dashboard, error) {
	p, err := report.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}
	now := s.now()
	year := req.Year
	if year == 0 {
		year = now.Year()
	}
	current, previous := report.PeriodRanges(p, year, now)
	key := fmt.Sprintf("dashboard:%s:%d:%s", p, year, now.Format("2006-01-02"))

	return cached(ctx, s, key, DashboardTTL, func() (*report.Dashboard, error) {
		counts, err := s.repo.DashboardCounts(ctx, current, previous)
		if err != nil {
			return nil, fmt.Errorf("dashboard counts: %w", err)
		}
		window := report.RevenueWindow(now)
		invoices, err := s.repo.Invoices(ctx, report.SalesFilter{Range: window})
		if err != nil {
			return nil, fmt.Errorf("load invoices: %w", err)
		}
		payments, err := s.repo.Payments(ctx, window, nil)
		if err != nil {
			return nil, fmt.Errorf("load payments: %w", err)
		}
		categories, err := s.repo.RevenueByCategory(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("revenue by category: %w", err)
		}
		top, err := s.repo.TopClients(ctx, report.SalesFilter{Range: current}, DashboardTopClients)
		if err != nil {
			return nil, fmt.Errorf("rank clients: %w", err)
		}

		out := &report.Dashboard{KPIs: report.BuildKPIs(*counts)}
		out.Charts.MonthlyRevenue = report.MonthlyRevenue(invoices, payments, now)
		out.Charts.RevenueByCategory = nonNil(categories)
		out.Charts.TopClients = nonNil(top)
		out.Period.Type = p
		out.Period.Year = year
		out.Period.Current = current
		out.Period.Previous = previous
		return out, nil
	})
}

// ExportTypes lists the available accounting exports
func (s *ReportService) ExportTypes() []report.ExportTypeInfo {
	return report.ExportTypes
}

func parseLedgerType(s string) ([]document.Type, error) {
	if s == "" {
		return report.LedgerTypes, nil
	}
	for _, t := range report.LedgerTypes {
		if string(t) == s {
			return []document.Type{t}, nil
		}
	}
	return nil, shared.NewValidationError("Type de document invalide",
		shared.ErrorDetail{Field: "documentType", Message: "doit être FACTURE, FACTURE_ACOMPTE ou AVOIR"})
}

// Export generates an accounting export and records it in the audit trail
func (s *ReportService) Export(ctx context.Context, req ExportRequest, by *uuid.UUID) (*ExportResult, error) {
	t, err := report.ParseExportType(req.Type)
	if err != nil {
		return nil, err
	}
	format, err := report.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	enc := s.encoders[format]
	if format != report.FormatJSON && enc == nil {
		return nil, shared.NewDomainErrorf(report.CodeInvalidFormat, "Format d'export indisponible : %s", format)
	}
	rg, err := report.ResolveRange(&req.DateFrom, &req.DateTo, s.now())
	if err != nil {
		return nil, err
	}
	types, err := parseLedgerType(req.DocumentType)
	if err != nil {
		return nil, err
	}

	var e *report.Export
	switch t {
	case report.ExportSalesLedger:
		docs, err := s.repo.LedgerDocuments(ctx, rg, req.ClientID, types)
		if err != nil {
			return nil, fmt.Errorf("load ledger documents: %w", err)
		}
		e = report.SalesLedger(rg, docs)
	case report.ExportPaymentsLedger:
		payments, err := s.repo.Payments(ctx, rg, req.ClientID)
		if err != nil {
			return nil, fmt.Errorf("load payments: %w", err)
		}
		e = report.PaymentsLedger(rg, payments)
	case report.ExportClientBalances:
		accounts, err := s.repo.ClientAccounts(ctx, rg.To, req.ClientID)
		if err != nil {
			return nil, fmt.Errorf("load client accounts: %w", err)
		}
		e = report.ClientBalances(rg, accounts)
	case report.ExportVATSummary:
		docs, err := s.repo.LedgerDocuments(ctx, rg, nil, report.LedgerTypes)
		if err != nil {
			return nil, fmt.Errorf("load ledger documents: %w", err)
		}
		e = report.VATSummary(rg, docs)
	}

	out := &ExportResult{Export: e, Format: format}
	if enc != nil {
		data, err := enc.Encode(e)
		if err != nil {
			return nil, fmt.Errorf("encode %s export: %w", format, err)
		}
		out.File = &File{Name: e.Filename + enc.Extension(), ContentType: enc.ContentType(), Data: data}
	}

	period := report.PeriodLabel(rg)
	entry := audit.New(audit.ActionExport, audit.EntityReport, nil,
		audit.ExportDescription(string(t), period, string(format), e.RecordCount)).
		Classify(audit.CategoryFinancial, audit.SeverityInfo).
		WithChange("type", nil, string(t)).
		WithChange("period", nil, period).
		WithChange("filename", nil, e.Filename).
		WithChange("format", nil, string(format)).
		WithChange("recordCount", nil, e.RecordCount).
		By(by)
	if req.ClientID != nil {
		entry.WithChange("clientId", nil, req.ClientID.String())
	}
	appaudit.Write(ctx, s.auditRepo, s.logger, entry)

	s.logger.Info("accounting export generated",
		zap.String("type", string(t)),
		zap.String("format", string(format)),
		zap.Int("records", e.RecordCount))
	return out, nil
}

// History returns the most recent exports
func (s *ReportService) History(ctx context.Context, limit int) (*ExportHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	logs, _, err := s.auditRepo.Search(ctx, audit.Filter{
		Action: audit.ActionExport,
		Entity: audit.EntityReport,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("load export history: %w", err)
	}
	out := &ExportHistory{Exports: make([]ExportRecord, 0, len(logs)), AvailableTypes: report.ExportTypes}
	for _, l := range logs {
		out.Exports = append(out.Exports, ExportRecord{
			ID:          l.ID,
			Type:        changeString(l, "type"),
			Period:      changeString(l, "period"),
			Filename:    changeString(l, "filename"),
			Format:      changeString(l, "format"),
			RecordCount: changeInt(l, "recordCount"),
			CreatedBy:   l.UserID,
			CreatedAt:   l.CreatedAt,
		})
	}
	return out, nil
}

func changeString(l audit.Log, field string) string {
	c, ok := l.Changes[field]
	if !ok || c.New == nil {
		return ""
	}
	return fmt.Sprint(c.New)
}

// changeInt reads a count that may have gone through JSON
func changeInt(l audit.Log, field string) int {
	switch v := l.Changes[field].New.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Invalidate drops every cached report
func (s *ReportService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateAll(ctx)
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
