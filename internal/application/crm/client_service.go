package crm

import (
	"context"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultPageSize = 20

// ClientDocuments is the part of the document store the client service reads
type ClientDocuments interface {
	ExistsForClient(ctx context.Context, clientID uuid.UUID) (bool, error)
	InvoiceTotals(ctx context.Context, clientID uuid.UUID) (document.InvoiceTotals, error)
}

// ClientPaymentSource lists the payments of a client
type ClientPaymentSource interface {
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]document.Payment, error)
}

// ClientService manages the client directory
type ClientService struct {
	clientRepo     crm.ClientRepository
	projectRepo    crm.ProjectRepository
	documents      ClientDocuments
	payments       ClientPaymentSource
	auditRepo      audit.Repository
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewClientService creates a new ClientService
func NewClientService(
	clientRepo crm.ClientRepository,
	projectRepo crm.ProjectRepository,
	documents ClientDocuments,
	payments ClientPaymentSource,
	auditRepo audit.Repository,
	scope TransactionScope,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		clientRepo:  clientRepo,
		projectRepo: projectRepo,
		documents:   documents,
		payments:    payments,
		auditRepo:   auditRepo,
		scope:       scope,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ClientService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides time.Now, for tests
func (s *ClientService) SetClock(now func() time.Time) {
	s.now = now
}

// Create registers a client with the next CLI-NNNNNN number
func (s *ClientService) Create(ctx context.Context, req ClientRequest, actor *uuid.UUID) (*ClientResponse, error) {
	params := req.params()
	if _, err := crm.NewClient("", params); err != nil {
		return nil, err
	}

	var client *crm.Client
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := sequence.NewGenerator(repos.SequenceStore(), sequence.WithClock(s.now)).Next(ctx, sequence.TypeClient)
		if err != nil {
			return err
		}
		client, err = crm.NewClient(number, params)
		if err != nil {
			return err
		}
		if err := repos.ClientRepo().Save(ctx, client); err != nil {
			return err
		}
		appaudit.Write(ctx, repos.AuditRepo(), s.logger, auditClientCreated(client, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := shared.PublishAndClear(ctx, s.eventPublisher, client); err != nil {
		s.logger.Warn("failed to publish crm events", zap.Error(err))
	}
	s.logger.Info("client created", zap.String("client", client.Number))
	resp := ToClientResponse(client)
	return &resp, nil
}

// GetByID returns one client
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// List returns a page of clients
func (s *ClientService) List(ctx context.Context, req ClientListRequest) (shared.Paginated[ClientResponse], error) {
	f := crm.ClientFilter{
		Filter: shared.Filter{
			Page: req.Page, PageSize: req.Limit, OrderBy: req.SortBy, OrderDir: req.SortOrder, Search: req.Search,
		}.Normalize(defaultPageSize),
		ClientType: crm.ClientType(req.ClientType),
		City:       req.City,
		Tag:        req.Tag,
	}
	clients, total, err := s.clientRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[ClientResponse]{}, err
	}
	items := make([]ClientResponse, len(clients))
	for i := range clients {
		items[i] = ToClientResponse(&clients[i])
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// Update edits a client
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req ClientRequest) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(req.params(), s.now()); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// Delete removes a client no document or project refers to
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	hasDocs, err := s.documents.ExistsForClient(ctx, id)
	if err != nil {
		return err
	}
	hasProjects, err := s.projectRepo.ExistsForClient(ctx, id)
	if err != nil {
		return err
	}
	if err := c.GuardDelete(hasDocs, hasProjects); err != nil {
		return err
	}
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}
	appaudit.Write(ctx, s.auditRepo, s.logger, auditClientDeleted(c, actor))
	return nil
}

// Balance sums what the client was invoiced and paid
func (s *ClientService) Balance(ctx context.Context, id uuid.UUID) (*crm.ClientBalance, error) {
	if _, err := s.clientRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	totals, err := s.documents.InvoiceTotals(ctx, id)
	if err != nil {
		return nil, err
	}
	return &crm.ClientBalance{
		ClientID:      id,
		TotalInvoiced: totals.TotalTTC,
		TotalPaid:     totals.Paid,
		Balance:       totals.TotalTTC.Sub(totals.Paid),
		InvoiceCount:  totals.Count,
	}, nil
}

// Payments lists every payment of the client with totals per method
func (s *ClientService) Payments(ctx context.Context, id uuid.UUID) (*ClientPayments, error) {
	if _, err := s.clientRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.payments.FindByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &ClientPayments{
		Payments: make([]ClientPaymentLine, len(list)),
		Total:    decimal.Zero,
		ByMethod: make(map[string]decimal.Decimal),
	}
	for i, p := range list {
		out.Payments[i] = ClientPaymentLine{
			ID: p.ID, Number: p.Number, DocumentID: p.DocumentID,
			Amount: p.Amount, Date: p.Date, Method: string(p.Method), Reference: p.Reference,
		}
		out.Total = out.Total.Add(p.Amount)
		out.ByMethod[string(p.Method)] = out.ByMethod[string(p.Method)].Add(p.Amount)
	}
	return out, nil
}

// Snapshot resolves the client details printed on documents
func (s *ClientService) Snapshot(ctx context.Context, clientID uuid.UUID) (document.ClientSnapshot, error) {
	c, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if shared.IsNotFound(err) {
			return document.ClientSnapshot{}, shared.NotFound("Client non trouvé")
		}
		return document.ClientSnapshot{}, err
	}
	snap := document.ClientSnapshot{
		ID:    c.ID,
		Name:  c.DisplayName(),
		Phone: c.Phone,
	}
	if c.Email != nil {
		snap.Email = *c.Email
	}
	if c.ICE != nil {
		snap.ICE = *c.ICE
	}
	if c.BillingAddress != nil {
		snap.Address = *c.BillingAddress
	}
	if c.BillingCity != nil {
		snap.City = *c.BillingCity
	}
	return snap, nil
}
