package crm

import (
	"context"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultLeadPageSize = 50

// LeadService manages the sales pipeline and converts won prospects into clients
type LeadService struct {
	leadRepo       crm.LeadRepository
	activityRepo   crm.ActivityRepository
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewLeadService creates a new LeadService
func NewLeadService(
	leadRepo crm.LeadRepository,
	activityRepo crm.ActivityRepository,
	scope TransactionScope,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:     leadRepo,
		activityRepo: activityRepo,
		scope:        scope,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *LeadService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides time.Now, for tests
func (s *LeadService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *LeadService) publish(ctx context.Context, agg shared.AggregateRoot) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, agg); err != nil {
		s.logger.Warn("failed to publish crm events", zap.Error(err))
	}
}

// Create registers a prospect with the next L-YYYY-NNNNNN number
func (s *LeadService) Create(ctx context.Context, req LeadRequest, actor *uuid.UUID) (*LeadResponse, error) {
	params := req.params()
	// validate before consuming a number
	if _, err := crm.NewLead("", params); err != nil {
		return nil, err
	}

	var lead *crm.Lead
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := sequence.NewGenerator(repos.SequenceStore(), sequence.WithClock(s.now)).Next(ctx, sequence.TypeLead)
		if err != nil {
			return err
		}
		lead, err = crm.NewLead(number, params)
		if err != nil {
			return err
		}
		if err := repos.LeadRepo().Save(ctx, lead); err != nil {
			return err
		}
		return repos.ActivityRepo().Save(ctx, crm.LeadCreatedActivity(lead, actor))
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, lead)
	s.logger.Info("lead created", zap.String("lead", lead.Number), zap.String("source", string(lead.Source)))
	resp := ToLeadResponse(lead)
	return &resp, nil
}

// GetByID returns one lead
func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*LeadResponse, error) {
	l, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToLeadResponse(l)
	return &resp, nil
}

// List returns a page of leads
func (s *LeadService) List(ctx context.Context, req LeadListRequest) (shared.Paginated[LeadResponse], error) {
	f := crm.LeadFilter{
		Filter: shared.Filter{
			Page: req.Page, PageSize: req.Limit, OrderBy: req.SortBy, OrderDir: req.SortOrder, Search: req.Search,
		}.Normalize(defaultLeadPageSize),
		Status:       crm.LeadStatus(req.Status),
		Source:       crm.LeadSource(req.Source),
		Urgency:      crm.Urgency(req.Urgency),
		AssignedToID: req.AssignedToID,
		City:         req.City,
		DateFrom:     req.DateFrom,
		DateTo:       req.DateTo,
	}
	leads, total, err := s.leadRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[LeadResponse]{}, err
	}
	items := make([]LeadResponse, len(leads))
	for i := range leads {
		items[i] = ToLeadResponse(&leads[i])
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// Update edits a lead and journals a status move
func (s *LeadService) Update(ctx context.Context, id uuid.UUID, req LeadRequest, actor *uuid.UUID) (*LeadResponse, error) {
	l, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old, err := l.Update(req.params(), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.leadRepo.Save(ctx, l); err != nil {
		return nil, err
	}
	if old != l.Status {
		if err := s.activityRepo.Save(ctx, crm.LeadStatusActivity(l, old, actor)); err != nil {
			s.logger.Warn("failed to journal lead status", zap.String("lead", l.Number), zap.Error(err))
		}
	}
	s.publish(ctx, l)
	resp := ToLeadResponse(l)
	return &resp, nil
}

// Delete removes a lead that was never converted
func (s *LeadService) Delete(ctx context.Context, id uuid.UUID) error {
	l, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := l.GuardDelete(); err != nil {
		return err
	}
	return s.leadRepo.Delete(ctx, id)
}

// Stats counts leads per status with the conversion rate
func (s *LeadService) Stats(ctx context.Context) (*LeadStats, error) {
	counts, err := s.leadRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &LeadStats{ByStatus: make(map[string]int64, len(counts))}
	for _, st := range crm.AllLeadStatuses() {
		n := counts[st]
		stats.ByStatus[string(st)] = n
		stats.Total += n
	}
	if stats.Total > 0 {
		stats.ConversionRate = float64(counts[crm.LeadWon]) * 100 / float64(stats.Total)
	}
	return stats, nil
}

// Convert turns a lead into a client, optionally opening a project, in one transaction
func (s *LeadService) Convert(ctx context.Context, id uuid.UUID, req ConvertLeadRequest, actor *uuid.UUID) (*ConvertLeadResponse, error) {
	now := s.now()
	var (
		lead    *crm.Lead
		client  *crm.Client
		project *crm.Project
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		lead, err = repos.LeadRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if lead.IsConverted() {
			return shared.NewDomainError(crm.CodeLeadConverted, "Ce lead a déjà été converti en client")
		}

		gen := sequence.NewGenerator(repos.SequenceStore(), sequence.WithClock(s.now))
		clientNumber, err := gen.Next(ctx, sequence.TypeClient)
		if err != nil {
			return err
		}
		client, err = crm.NewClient(clientNumber, lead.ClientParams())
		if err != nil {
			return err
		}
		if err := repos.ClientRepo().Save(ctx, client); err != nil {
			return err
		}

		if req.CreateProject {
			name := req.ProjectName
			if name == "" {
				name = lead.DefaultProjectName()
			}
			budget := req.ProjectBudget
			if budget == nil {
				budget = lead.BudgetMax
			}
			params := crm.ProjectParams{
				ClientID:        client.ID,
				Name:            name,
				Description:     lead.Need,
				Type:            crm.ProjectType(req.ProjectType),
				Status:          crm.ProjectStudy,
				SiteAddress:     lead.Address,
				SiteCity:        lead.City,
				EstimatedBudget: budget,
				AssignedToID:    lead.AssignedToID,
				LeadID:          &lead.ID,
			}
			projectNumber, err := gen.Next(ctx, sequence.TypeProject)
			if err != nil {
				return err
			}
			project, err = crm.NewProject(projectNumber, params)
			if err != nil {
				return err
			}
			if err := repos.ProjectRepo().Save(ctx, project); err != nil {
				return err
			}
			if err := repos.ActivityRepo().Save(ctx, crm.ProjectCreatedActivity(project, &lead.ID, actor)); err != nil {
				return err
			}
		}

		if err := lead.MarkConverted(client, now); err != nil {
			return err
		}
		if err := repos.LeadRepo().Save(ctx, lead); err != nil {
			return err
		}
		if err := repos.ActivityRepo().Save(ctx, crm.LeadConvertedActivity(lead, client, actor)); err != nil {
			return err
		}
		appaudit.Write(ctx, repos.AuditRepo(), s.logger, auditLeadConverted(lead, client, project, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, lead)
	s.publish(ctx, client)
	out := &ConvertLeadResponse{Lead: ToLeadResponse(lead), Client: ToClientResponse(client)}
	if project != nil {
		s.publish(ctx, project)
		pr := ToProjectResponse(project)
		out.Project = &pr
	}
	s.logger.Info("lead converted", zap.String("lead", lead.Number), zap.String("client", client.Number))
	return out, nil
}

// AddNote journals a note, call, email or meeting on a lead
func (s *LeadService) AddNote(ctx context.Context, leadID uuid.UUID, req NoteRequest, actor *uuid.UUID) (*ActivityResponse, error) {
	if _, err := s.leadRepo.FindByID(ctx, leadID); err != nil {
		return nil, err
	}
	a, err := crm.NewNote(leadID, crm.ActivityType(req.Type), req.Content, actor)
	if err != nil {
		return nil, err
	}
	if err := s.activityRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	return &ToActivityResponses([]crm.Activity{*a})[0], nil
}

// Activities returns the journal of a lead, newest first
func (s *LeadService) Activities(ctx context.Context, leadID uuid.UUID) ([]ActivityResponse, error) {
	if _, err := s.leadRepo.FindByID(ctx, leadID); err != nil {
		return nil, err
	}
	list, err := s.activityRepo.Find(ctx, crm.ActivityFilter{LeadID: &leadID})
	if err != nil {
		return nil, err
	}
	return ToActivityResponses(list), nil
}
