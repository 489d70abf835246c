package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LogResponse is the API view of an audit entry
type LogResponse struct {
	ID             uuid.UUID               `json:"id"`
	UserID         *uuid.UUID              `json:"userId,omitempty"`
	UserEmail      string                  `json:"userEmail,omitempty"`
	UserName       string                  `json:"userName,omitempty"`
	Action         string                  `json:"action"`
	Entity         string                  `json:"entity"`
	EntityID       *uuid.UUID              `json:"entityId,omitempty"`
	Description    string                  `json:"description"`
	Changes        map[string]audit.Change `json:"changes,omitempty"`
	DocumentNumber string                  `json:"documentNumber,omitempty"`
	DocumentType   string                  `json:"documentType,omitempty"`
	DocumentAmount *decimal.Decimal        `json:"documentAmount,omitempty"`
	PdfSnapshot    string                  `json:"pdfSnapshot,omitempty"`
	IPAddress      string                  `json:"ipAddress,omitempty"`
	Category       audit.Category          `json:"category,omitempty"`
	Severity       audit.Severity          `json:"severity"`
	CreatedAt      time.Time               `json:"createdAt"`
}

// ToLogResponse converts an audit entry
func ToLogResponse(l audit.Log) LogResponse {
	return LogResponse{
		ID:             l.ID,
		UserID:         l.UserID,
		UserEmail:      l.UserEmail,
		UserName:       l.UserName,
		Action:         l.Action,
		Entity:         l.Entity,
		EntityID:       l.EntityID,
		Description:    l.Description,
		Changes:        l.Changes,
		DocumentNumber: l.DocumentNumber,
		DocumentType:   l.DocumentType,
		DocumentAmount: l.DocumentAmount,
		PdfSnapshot:    l.PdfSnapshot,
		IPAddress:      l.IPAddress,
		Category:       l.Category,
		Severity:       l.Severity,
		CreatedAt:      l.CreatedAt,
	}
}

// SearchResult is a page of audit entries
type SearchResult struct {
	Logs    []LogResponse `json:"logs"`
	Total   int64         `json:"total"`
	HasMore bool          `json:"hasMore"`
}

// FinancialTrail is the financial audit trail for a period with counts per action
type FinancialTrail struct {
	Logs    []LogResponse    `json:"logs"`
	Total   int64            `json:"total"`
	Summary map[string]int64 `json:"summary"`
}

// SearchRequest are the query filters of the audit search endpoint
type SearchRequest struct {
	DateFrom       *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo         *time.Time `form:"dateTo" time_format:"2006-01-02"`
	Action         string     `form:"action"`
	Entity         string     `form:"entity"`
	UserID         *uuid.UUID `form:"userId"`
	Category       string     `form:"category" binding:"omitempty,oneof=financial document client system"`
	Severity       string     `form:"severity" binding:"omitempty,oneof=info warning critical"`
	DocumentNumber string     `form:"documentNumber"`
	Search         string     `form:"search"`
	Limit          int        `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset         int        `form:"offset" binding:"omitempty,min=0"`
}

// AuditService writes and queries the audit trail
type AuditService struct {
	repo   audit.Repository
	logger *zap.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(repo audit.Repository, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Record saves an entry. Failures are logged and never returned so that the
// audited operation is not blocked by the trail.
func (s *AuditService) Record(ctx context.Context, entry *audit.Log) {
	Write(ctx, s.repo, s.logger, entry)
}

// Write saves an entry through any repository, typically one bound to the
// caller's transaction, enriching it with the request actor.
func Write(ctx context.Context, repo audit.Repository, log *zap.Logger, entry *audit.Log) {
	if entry == nil {
		return
	}
	if actor, ok := audit.ActorFromContext(ctx); ok {
		entry.From(actor)
	}
	if err := repo.Save(ctx, entry); err != nil {
		if log == nil {
			log = logger.L(ctx)
		}
		log.Error("failed to write audit log",
			zap.String("action", entry.Action),
			zap.String("entity", entry.Entity),
			zap.Error(err),
		)
	}
}

// History returns the entries of one entity, newest first
func (s *AuditService) History(ctx context.Context, entity string, entityID uuid.UUID, actions []string, limit, offset int) (*SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.search(ctx, audit.Filter{
		Entity:   entity,
		EntityID: &entityID,
		Actions:  actions,
		Limit:    limit,
		Offset:   offset,
	})
}

// Financial returns the financial and document entries of a period
func (s *AuditService) Financial(ctx context.Context, from, to time.Time, category, documentType string, limit, offset int) (*FinancialTrail, error) {
	if limit <= 0 {
		limit = 100
	}
	filter := audit.Filter{
		DateFrom:     &from,
		DateTo:       &to,
		Categories:   []audit.Category{audit.CategoryFinancial, audit.CategoryDocument},
		DocumentType: documentType,
		Limit:        limit,
		Offset:       offset,
	}
	if category != "" {
		filter.Categories = []audit.Category{audit.Category(category)}
	}

	logs, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary, err := s.repo.CountByAction(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &FinancialTrail{Logs: toResponses(logs), Total: total, Summary: summary}, nil
}

// Search runs a filtered audit search
func (s *AuditService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	filter := audit.Filter{
		DateFrom:       req.DateFrom,
		DateTo:         req.DateTo,
		Action:         req.Action,
		Entity:         req.Entity,
		UserID:         req.UserID,
		Severity:       audit.Severity(req.Severity),
		DocumentNumber: req.DocumentNumber,
		Search:         req.Search,
		Limit:          req.Limit,
		Offset:         req.Offset,
	}
	if req.Category != "" {
		filter.Categories = []audit.Category{audit.Category(req.Category)}
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.search(ctx, filter)
}

func (s *AuditService) search(ctx context.Context, filter audit.Filter) (*SearchResult, error) {
	logs, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &SearchResult{
		Logs:    toResponses(logs),
		Total:   total,
		HasMore: int64(filter.Offset+len(logs)) < total,
	}, nil
}

func toResponses(logs []audit.Log) []LogResponse {
	out := make([]LogResponse, len(logs))
	for i, l := range logs {
		out[i] = ToLogResponse(l)
	}
	return out
}
