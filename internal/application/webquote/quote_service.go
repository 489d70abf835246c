// Package webquote takes quote requests from the public site and lets the
// back office review, answer and convert them into leads.
package webquote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	appcrm "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/publicform"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/webquote"
	"go.uber.org/zap"
)

const (
	formName        = "quotes"
	defaultPageSize = 20
	acceptedMessage = "Request received"
)

// LeadCreator opens a prospect in the CRM pipeline
type LeadCreator interface {
	Create(ctx context.Context, req appcrm.LeadRequest, actor *uuid.UUID) (*appcrm.LeadResponse, error)
}

// QuoteService manages quote requests
type QuoteService struct {
	repo           webquote.Repository
	auditRepo      audit.Repository
	scope          TransactionScope
	guard          *publicform.Guard
	leads          LeadCreator
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	repo webquote.Repository,
	auditRepo audit.Repository,
	scope TransactionScope,
	guard *publicform.Guard,
	leads LeadCreator,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		repo:      repo,
		auditRepo: auditRepo,
		scope:     scope,
		guard:     guard,
		leads:     leads,
		logger:    logger,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher
func (s *QuoteService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides time.Now, for tests
func (s *QuoteService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *QuoteService) publish(ctx context.Context, q *webquote.QuoteRequest) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, q); err != nil {
		s.logger.Warn("failed to publish quote request events", zap.Error(err))
	}
}

func (s *QuoteService) params(req SubmitRequest, ip string) webquote.SubmitParams {
	g := s.guard
	attachments := make([]string, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		if a = strings.TrimSpace(a); a != "" {
			attachments = append(attachments, a)
		}
	}
	var ipAddr *string
	if ip != "" {
		ipAddr = &ip
	}
	return webquote.SubmitParams{
		CustomerName:  g.Line(req.CustomerName),
		CustomerEmail: g.Line(req.CustomerEmail),
		CustomerPhone: g.Line(req.CustomerPhone),
		Company:       g.OptionalLine(req.Company),
		City:          g.OptionalLine(req.City),
		Address:       g.OptionalLine(req.Address),
		ProjectType:   g.OptionalLine(req.ProjectType),
		Description:   g.Block(req.Description),
		Budget:        g.OptionalLine(req.Budget),
		Timeline:      g.OptionalLine(req.Timeline),
		Attachments:   attachments,
		Locale:        req.Locale,
		Source:        g.Line(req.Source),
		IPAddress:     ipAddr,
	}
}

// Submit records a request from the public site. Submissions caught by the
// bot traps are answered as accepted and dropped.
func (s *QuoteService) Submit(ctx context.Context, req SubmitRequest, ip string) (*SubmitResponse, error) {
	if err := s.guard.Admit(ctx, formName, ip); err != nil {
		return nil, err
	}
	if s.guard.IsBot(formName, ip, req.Trap) {
		return &SubmitResponse{Message: acceptedMessage}, nil
	}

	params := s.params(req, ip)
	if err := webquote.ValidateSubmission(params); err != nil {
		return nil, err
	}

	var q *webquote.QuoteRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := sequence.NewGenerator(repos.SequenceStore(), sequence.WithClock(s.now)).Next(ctx, sequence.TypeQuote)
		if err != nil {
			return err
		}
		q, err = webquote.NewQuoteRequest(number, params)
		if err != nil {
			return err
		}
		return repos.QuoteRepo().Save(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, q)
	s.logger.Info("quote request received", zap.String("quote", q.Number), zap.String("source", q.Source))
	return &SubmitResponse{ID: &q.ID, QuoteNumber: q.Number, Message: acceptedMessage}, nil
}

func (s *QuoteService) find(ctx context.Context, id uuid.UUID) (*webquote.QuoteRequest, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, webquote.ErrQuoteNotFound
		}
		return nil, err
	}
	return q, nil
}

// Get returns one request with its notes
func (s *QuoteService) Get(ctx context.Context, id uuid.UUID) (*QuoteResponse, error) {
	q, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToQuoteResponse(q)
	return &resp, nil
}

// List returns a page of requests and the number of requests per status
func (s *QuoteService) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	f := webquote.Filter{
		Filter: shared.Filter{
			Page: req.Page, PageSize: req.Limit, OrderBy: req.SortBy, OrderDir: req.SortOrder, Search: req.Search,
		}.Normalize(defaultPageSize),
		Status:   webquote.Status(req.Status),
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	}
	if f.DateTo != nil {
		end := f.DateTo.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.DateTo = &end
	}
	quotes, total, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]QuoteResponse, len(quotes))
	for i := range quotes {
		items[i] = ToQuoteResponse(&quotes[i])
	}
	byStatus := make(map[string]int64, len(counts))
	for _, c := range counts {
		byStatus[string(c.Status)] = c.Count
	}
	return &ListResponse{
		Paginated:    shared.NewPaginated(items, total, f.Page, f.PageSize),
		StatusCounts: byStatus,
	}, nil
}

// Review updates status, answer, price or validity, optionally adding a note
func (s *QuoteService) Review(ctx context.Context, id uuid.UUID, req ReviewRequest, actor *uuid.UUID) (*QuoteResponse, error) {
	q, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	var next *webquote.Status
	if req.Status != nil {
		st := webquote.Status(*req.Status)
		next = &st
	}
	now := s.now()
	old, err := q.Review(webquote.ReviewParams{
		Status:      next,
		Response:    req.Response,
		QuotedPrice: req.QuotedPrice,
		ValidUntil:  req.ValidUntil,
	}, now)
	if err != nil {
		return nil, err
	}
	if req.InternalNote != nil && strings.TrimSpace(*req.InternalNote) != "" {
		if _, err := q.AddNote(*req.InternalNote, true, actor, now); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, q); err != nil {
		return nil, err
	}

	if old != q.Status {
		entry := audit.New(audit.ActionStatusChange, audit.EntityQuote, &q.ID,
			fmt.Sprintf("Demande %s: %s → %s", q.Number, old, q.Status)).
			WithChange("status", old, q.Status).
			Classify(audit.CategoryClient, audit.SeverityInfo).
			By(actor)
		appaudit.Write(ctx, s.auditRepo, s.logger, entry)
	}
	resp := ToQuoteResponse(q)
	return &resp, nil
}

// AddNote appends a remark; notes are internal unless stated otherwise
func (s *QuoteService) AddNote(ctx context.Context, id uuid.UUID, req NoteRequest, actor *uuid.UUID) (*NoteResponse, error) {
	q, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	internal := true
	if req.IsInternal != nil {
		internal = *req.IsInternal
	}
	n, err := q.AddNote(req.Content, internal, actor, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, q); err != nil {
		return nil, err
	}
	return &NoteResponse{ID: n.ID, Content: n.Content, IsInternal: n.IsInternal, AuthorID: n.AuthorID, CreatedAt: n.CreatedAt}, nil
}

// Delete removes a new, rejected or expired request
func (s *QuoteService) Delete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	q, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := q.GuardDelete(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionDelete, audit.EntityQuote, &q.ID, fmt.Sprintf("Demande %s supprimée", q.Number)).
			Classify(audit.CategoryClient, audit.SeverityWarning).
			By(actor))
	return nil
}

func leadRequest(q *webquote.QuoteRequest) appcrm.LeadRequest {
	email := q.CustomerEmail
	need := q.LeadNeed()
	notes := fmt.Sprintf("Demande de devis %s", q.Number)
	if q.Budget != nil {
		notes += fmt.Sprintf("\nBudget: %s", *q.Budget)
	}
	if q.Timeline != nil {
		notes += fmt.Sprintf("\nDélai: %s", *q.Timeline)
	}
	clientType := string(crm.ClientIndividual)
	if q.Company != nil && *q.Company != "" {
		clientType = string(crm.ClientCompany)
	}
	return appcrm.LeadRequest{
		Source:     string(crm.SourceWebsite),
		FullName:   q.CustomerName,
		Company:    q.Company,
		Phone:      q.CustomerPhone,
		Email:      &email,
		City:       q.City,
		Address:    q.Address,
		ClientType: clientType,
		Need:       &need,
		Notes:      &notes,
	}
}

// ConvertToLead opens a WEBSITE lead from the request and links it
func (s *QuoteService) ConvertToLead(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*ConvertResponse, error) {
	q, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := q.CheckConvertible(); err != nil {
		return nil, err
	}

	lead, err := s.leads.Create(ctx, leadRequest(q), actor)
	if err != nil {
		return nil, err
	}
	if err := q.MarkConverted(lead.ID, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, q); err != nil {
		s.logger.Error("lead created but quote request not linked",
			zap.String("quote", q.Number), zap.String("lead", lead.LeadNumber), zap.Error(err))
		return nil, err
	}

	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionConvert, audit.EntityQuote, &q.ID,
			fmt.Sprintf("Demande %s convertie en prospect %s", q.Number, lead.LeadNumber)).
			Classify(audit.CategoryClient, audit.SeverityInfo).
			By(actor))
	s.publish(ctx, q)
	return &ConvertResponse{Quote: ToQuoteResponse(q), LeadID: lead.ID, LeadNumber: lead.LeadNumber}, nil
}

// ExpireDue moves quoted requests past their validity date to EXPIRED
func (s *QuoteService) ExpireDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.repo.FindQuotedBefore(ctx, now)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range due {
		q := &due[i]
		if !q.Expire(now) {
			continue
		}
		if err := s.repo.Save(ctx, q); err != nil {
			s.logger.Warn("failed to expire quote request", zap.String("quote", q.Number), zap.Error(err))
			continue
		}
		expired++
	}
	if expired > 0 {
		s.logger.Info("quote requests expired", zap.Int("count", expired))
	}
	return expired, nil
}
