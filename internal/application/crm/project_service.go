package crm

import (
	"context"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

// ProjectService manages workshop projects and their work items
type ProjectService struct {
	projectRepo    crm.ProjectRepository
	clientRepo     crm.ClientRepository
	activityRepo   crm.ActivityRepository
	auditRepo      audit.Repository
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo crm.ProjectRepository,
	clientRepo crm.ClientRepository,
	activityRepo crm.ActivityRepository,
	auditRepo audit.Repository,
	scope TransactionScope,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		clientRepo:   clientRepo,
		activityRepo: activityRepo,
		auditRepo:    auditRepo,
		scope:        scope,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProjectService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides time.Now, for tests
func (s *ProjectService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ProjectService) publish(ctx context.Context, p *crm.Project) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, p); err != nil {
		s.logger.Warn("failed to publish crm events", zap.Error(err))
	}
}

func (s *ProjectService) journal(ctx context.Context, a *crm.Activity) {
	if err := s.activityRepo.Save(ctx, a); err != nil {
		s.logger.Warn("failed to journal project activity", zap.Error(err))
	}
}

// Create opens a project for an existing client with the next PRJ number
func (s *ProjectService) Create(ctx context.Context, req ProjectRequest, actor *uuid.UUID) (*ProjectResponse, error) {
	params := req.params()
	if _, err := crm.NewProject("", params); err != nil {
		return nil, err
	}
	if _, err := s.clientRepo.FindByID(ctx, req.ClientID); err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NotFound("Client non trouvé")
		}
		return nil, err
	}

	var project *crm.Project
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := sequence.NewGenerator(repos.SequenceStore(), sequence.WithClock(s.now)).Next(ctx, sequence.TypeProject)
		if err != nil {
			return err
		}
		project, err = crm.NewProject(number, params)
		if err != nil {
			return err
		}
		if err := repos.ProjectRepo().Save(ctx, project); err != nil {
			return err
		}
		return repos.ActivityRepo().Save(ctx, crm.ProjectCreatedActivity(project, nil, actor))
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, project)
	s.logger.Info("project created", zap.String("project", project.Number))
	resp := ToProjectResponse(project)
	return &resp, nil
}

// GetByID returns a project with its tasks, checklist, journal and media
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*ProjectDetails, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	checklist, err := s.projectRepo.FindChecklist(ctx, id)
	if err != nil {
		return nil, err
	}
	journal, err := s.projectRepo.FindJournal(ctx, id)
	if err != nil {
		return nil, err
	}
	media, err := s.projectRepo.FindMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProjectDetails{
		ProjectResponse: ToProjectResponse(p),
		Checklist:       checklist,
		Journal:         journal,
		Media:           media,
	}, nil
}

// List returns a page of projects
func (s *ProjectService) List(ctx context.Context, req ProjectListRequest) (shared.Paginated[ProjectResponse], error) {
	f := crm.ProjectFilter{
		Filter: shared.Filter{
			Page: req.Page, PageSize: req.Limit, OrderBy: req.SortBy, OrderDir: req.SortOrder, Search: req.Search,
		}.Normalize(defaultPageSize),
		ClientID:     req.ClientID,
		Status:       crm.ProjectStatus(req.Status),
		Type:         crm.ProjectType(req.Type),
		Priority:     crm.Priority(req.Priority),
		AssignedToID: req.AssignedToID,
	}
	projects, total, err := s.projectRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[ProjectResponse]{}, err
	}
	items := make([]ProjectResponse, len(projects))
	for i := range projects {
		items[i] = ToProjectResponse(&projects[i])
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// Update edits a project and journals a status move
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req ProjectRequest, actor *uuid.UUID) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old, err := p.Update(req.params(), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	if old != p.Status {
		s.journal(ctx, crm.ProjectStatusActivity(p, old, actor))
	}
	s.publish(ctx, p)
	resp := ToProjectResponse(p)
	return &resp, nil
}

// ChangeStatus moves a project to another stage
func (s *ProjectService) ChangeStatus(ctx context.Context, id uuid.UUID, status string, actor *uuid.UUID) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old, err := p.ChangeStatus(crm.ProjectStatus(status), s.now())
	if err != nil {
		return nil, err
	}
	if old != p.Status {
		if err := s.projectRepo.Save(ctx, p); err != nil {
			return nil, err
		}
		s.journal(ctx, crm.ProjectStatusActivity(p, old, actor))
		s.publish(ctx, p)
	}
	resp := ToProjectResponse(p)
	return &resp, nil
}

// Delete removes a project and its work items
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}
	appaudit.Write(ctx, s.auditRepo, s.logger, auditProjectDeleted(p, actor))
	return nil
}

func (s *ProjectService) ensureProject(ctx context.Context, id uuid.UUID) error {
	_, err := s.projectRepo.FindByID(ctx, id)
	return err
}

// AddTask appends a task, at the end unless an order is given
func (s *ProjectService) AddTask(ctx context.Context, projectID uuid.UUID, req TaskRequest) (*TaskResponse, error) {
	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}
	pos, err := s.projectRepo.NextTaskPosition(ctx, projectID)
	if err != nil {
		return nil, err
	}
	t, err := crm.NewTask(projectID, req.params(), pos, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.SaveTask(ctx, t); err != nil {
		return nil, err
	}
	resp := ToTaskResponse(t)
	return &resp, nil
}

// UpdateTask edits a task
func (s *ProjectService) UpdateTask(ctx context.Context, projectID, taskID uuid.UUID, req TaskRequest) (*TaskResponse, error) {
	t, err := s.projectRepo.FindTask(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}
	if err := t.Update(req.params(), s.now()); err != nil {
		return nil, err
	}
	if err := s.projectRepo.SaveTask(ctx, t); err != nil {
		return nil, err
	}
	resp := ToTaskResponse(t)
	return &resp, nil
}

// DeleteTask removes a task
func (s *ProjectService) DeleteTask(ctx context.Context, projectID, taskID uuid.UUID) error {
	return s.projectRepo.DeleteTask(ctx, projectID, taskID)
}

// ReorderTasks sets the task order to the given ID sequence
func (s *ProjectService) ReorderTasks(ctx context.Context, projectID uuid.UUID, req ReorderRequest) (*ProjectResponse, error) {
	if len(req.TaskIDs) == 0 {
		return nil, shared.NewValidationError("Données invalides",
			shared.ErrorDetail{Field: "taskIds", Message: "La liste des tâches est requise"})
	}
	if err := s.projectRepo.ReorderTasks(ctx, projectID, req.TaskIDs); err != nil {
		return nil, err
	}
	p, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	resp := ToProjectResponse(p)
	return &resp, nil
}

// AddChecklistItem appends a checklist line
func (s *ProjectService) AddChecklistItem(ctx context.Context, projectID uuid.UUID, req ChecklistRequest) (*crm.ChecklistItem, error) {
	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}
	existing, err := s.projectRepo.FindChecklist(ctx, projectID)
	if err != nil {
		return nil, err
	}
	item, err := crm.NewChecklistItem(projectID, req.Item, req.Notes, len(existing))
	if err != nil {
		return nil, err
	}
	if req.Checked != nil && *req.Checked {
		item.Toggle(true, s.now())
	}
	if err := s.projectRepo.SaveChecklistItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateChecklistItem edits or ticks a checklist line
func (s *ProjectService) UpdateChecklistItem(ctx context.Context, projectID, itemID uuid.UUID, req ChecklistRequest) (*crm.ChecklistItem, error) {
	item, err := s.projectRepo.FindChecklistItem(ctx, projectID, itemID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := item.Edit(req.Item, req.Notes, now); err != nil {
		return nil, err
	}
	if req.Checked != nil && *req.Checked != item.Checked {
		item.Toggle(*req.Checked, now)
	}
	if err := s.projectRepo.SaveChecklistItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteChecklistItem removes a checklist line
func (s *ProjectService) DeleteChecklistItem(ctx context.Context, projectID, itemID uuid.UUID) error {
	return s.projectRepo.DeleteChecklistItem(ctx, projectID, itemID)
}

// AddJournalEntry records a dated progress note
func (s *ProjectService) AddJournalEntry(ctx context.Context, projectID uuid.UUID, req JournalRequest, actor *uuid.UUID) (*crm.JournalEntry, error) {
	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}
	entry, err := crm.NewJournalEntry(projectID, req.Title, req.Content, req.Date, actor, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.SaveJournalEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteJournalEntry removes a progress note
func (s *ProjectService) DeleteJournalEntry(ctx context.Context, projectID, entryID uuid.UUID) error {
	return s.projectRepo.DeleteJournalEntry(ctx, projectID, entryID)
}

// AddMedia attaches an uploaded file to the project
func (s *ProjectService) AddMedia(ctx context.Context, projectID uuid.UUID, req MediaRequest, actor *uuid.UUID) (*crm.Media, error) {
	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}
	m, err := crm.NewMedia(projectID, req.URL, req.Filename, crm.MediaType(req.Type), crm.MediaTag(req.Tag), req.Description, actor)
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.SaveMedia(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMedia detaches a file
func (s *ProjectService) DeleteMedia(ctx context.Context, projectID, mediaID uuid.UUID) error {
	return s.projectRepo.DeleteMedia(ctx, projectID, mediaID)
}

// Activities returns the journal of a project, newest first
func (s *ProjectService) Activities(ctx context.Context, projectID uuid.UUID) ([]ActivityResponse, error) {
	list, err := s.activityRepo.Find(ctx, crm.ActivityFilter{ProjectID: &projectID})
	if err != nil {
		return nil, err
	}
	return ToActivityResponses(list), nil
}
