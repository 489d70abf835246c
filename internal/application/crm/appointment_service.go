package crm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

const calendarPageSize = 50

// ReminderNotifier delivers an appointment reminder
type ReminderNotifier interface {
	NotifyAppointmentReminder(ctx context.Context, a *crm.Appointment) error
}

// AppointmentService manages the calendar
type AppointmentService struct {
	repo           crm.AppointmentRepository
	notifier       ReminderNotifier
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewAppointmentService creates a new AppointmentService
func NewAppointmentService(repo crm.AppointmentRepository, logger *zap.Logger) *AppointmentService {
	return &AppointmentService{repo: repo, logger: logger, now: time.Now}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *AppointmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetReminderNotifier sets where due reminders are sent
func (s *AppointmentService) SetReminderNotifier(n ReminderNotifier) {
	s.notifier = n
}

// SetClock overrides time.Now, for tests
func (s *AppointmentService) SetClock(now func() time.Time) {
	s.now = now
}

// Create books an appointment linked to a lead, client or project
func (s *AppointmentService) Create(ctx context.Context, req AppointmentRequest) (*AppointmentResponse, error) {
	a, err := crm.NewAppointment(req.params())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.eventPublisher, a); err != nil {
		s.logger.Warn("failed to publish crm events", zap.Error(err))
	}
	resp := ToAppointmentResponse(a)
	return &resp, nil
}

// GetByID returns one appointment
func (s *AppointmentService) GetByID(ctx context.Context, id uuid.UUID) (*AppointmentResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToAppointmentResponse(a)
	return &resp, nil
}

// List returns the calendar, soonest first
func (s *AppointmentService) List(ctx context.Context, req AppointmentListRequest) (shared.Paginated[AppointmentResponse], error) {
	f := crm.AppointmentFilter{
		Filter:       shared.Filter{Page: req.Page, PageSize: req.Limit, Search: req.Search},
		Type:         crm.AppointmentType(req.Type),
		Status:       crm.AppointmentStatus(req.Status),
		LeadID:       req.LeadID,
		ClientID:     req.ClientID,
		ProjectID:    req.ProjectID,
		AssignedToID: req.AssignedToID,
		From:         req.StartDate,
		To:           req.EndDate,
	}
	list, total, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[AppointmentResponse]{}, err
	}
	items := make([]AppointmentResponse, len(list))
	for i := range list {
		items[i] = ToAppointmentResponse(&list[i])
	}
	norm := f.Filter.Normalize(calendarPageSize)
	return shared.NewPaginated(items, total, norm.Page, norm.PageSize), nil
}

// Update edits an appointment
func (s *AppointmentService) Update(ctx context.Context, id uuid.UUID, req AppointmentRequest) (*AppointmentResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Update(req.params(), s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	resp := ToAppointmentResponse(a)
	return &resp, nil
}

// ChangeStatus confirms, completes or cancels an appointment
func (s *AppointmentService) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*AppointmentResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.ChangeStatus(crm.AppointmentStatus(status), s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	resp := ToAppointmentResponse(a)
	return &resp, nil
}

// Delete removes an appointment
func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// SendDueReminders notifies every open appointment starting within the
// window and marks it reminded. A failed notification is retried on the
// next run.
func (s *AppointmentService) SendDueReminders(ctx context.Context, window time.Duration) (int, error) {
	now := s.now()
	due, err := s.repo.FindDueReminders(ctx, now, now.Add(window))
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range due {
		a := &due[i]
		if s.notifier != nil {
			if err := s.notifier.NotifyAppointmentReminder(ctx, a); err != nil {
				s.logger.Warn("appointment reminder failed", zap.String("appointment", a.ID.String()), zap.Error(err))
				continue
			}
		}
		a.MarkReminded(now)
		if err := s.repo.Save(ctx, a); err != nil {
			return sent, err
		}
		sent++
	}
	if sent > 0 {
		s.logger.Info("appointment reminders sent", zap.Int("count", sent))
	}
	return sent, nil
}
