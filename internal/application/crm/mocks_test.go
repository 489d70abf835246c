package crm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func domainCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.EventType()
	}
	return out
}

// MockLeadRepository is a mock implementation of crm.LeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindAll(ctx context.Context, filter crm.LeadFilter) ([]crm.Lead, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *MockLeadRepository) CountByStatus(ctx context.Context) (map[crm.LeadStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[crm.LeadStatus]int64), args.Error(1)
}

func (m *MockLeadRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) Save(ctx context.Context, l *crm.Lead) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockClientRepository is a mock implementation of crm.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Client), args.Error(1)
}

func (m *MockClientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]crm.Client, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]crm.Client), args.Error(1)
}

func (m *MockClientRepository) FindByEmail(ctx context.Context, email string) (*crm.Client, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Client), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context, filter crm.ClientFilter) ([]crm.Client, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, c *crm.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockProjectRepository is a mock implementation of crm.ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Project), args.Error(1)
}

func (m *MockProjectRepository) FindAll(ctx context.Context, filter crm.ProjectFilter) ([]crm.Project, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) ExistsForClient(ctx context.Context, clientID uuid.UUID) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectRepository) Save(ctx context.Context, p *crm.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProjectRepository) FindTask(ctx context.Context, projectID, taskID uuid.UUID) (*crm.Task, error) {
	args := m.Called(ctx, projectID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Task), args.Error(1)
}

func (m *MockProjectRepository) SaveTask(ctx context.Context, t *crm.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockProjectRepository) DeleteTask(ctx context.Context, projectID, taskID uuid.UUID) error {
	return m.Called(ctx, projectID, taskID).Error(0)
}

func (m *MockProjectRepository) ReorderTasks(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) error {
	return m.Called(ctx, projectID, ids).Error(0)
}

func (m *MockProjectRepository) NextTaskPosition(ctx context.Context, projectID uuid.UUID) (int, error) {
	args := m.Called(ctx, projectID)
	return args.Int(0), args.Error(1)
}

func (m *MockProjectRepository) FindChecklist(ctx context.Context, projectID uuid.UUID) ([]crm.ChecklistItem, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]crm.ChecklistItem), args.Error(1)
}

func (m *MockProjectRepository) FindChecklistItem(ctx context.Context, projectID, itemID uuid.UUID) (*crm.ChecklistItem, error) {
	args := m.Called(ctx, projectID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.ChecklistItem), args.Error(1)
}

func (m *MockProjectRepository) SaveChecklistItem(ctx context.Context, c *crm.ChecklistItem) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockProjectRepository) DeleteChecklistItem(ctx context.Context, projectID, itemID uuid.UUID) error {
	return m.Called(ctx, projectID, itemID).Error(0)
}

func (m *MockProjectRepository) FindJournal(ctx context.Context, projectID uuid.UUID) ([]crm.JournalEntry, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]crm.JournalEntry), args.Error(1)
}

func (m *MockProjectRepository) SaveJournalEntry(ctx context.Context, j *crm.JournalEntry) error {
	return m.Called(ctx, j).Error(0)
}

func (m *MockProjectRepository) DeleteJournalEntry(ctx context.Context, projectID, entryID uuid.UUID) error {
	return m.Called(ctx, projectID, entryID).Error(0)
}

func (m *MockProjectRepository) FindMedia(ctx context.Context, projectID uuid.UUID) ([]crm.Media, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]crm.Media), args.Error(1)
}

func (m *MockProjectRepository) SaveMedia(ctx context.Context, md *crm.Media) error {
	return m.Called(ctx, md).Error(0)
}

func (m *MockProjectRepository) DeleteMedia(ctx context.Context, projectID, mediaID uuid.UUID) error {
	return m.Called(ctx, projectID, mediaID).Error(0)
}

// MockAppointmentRepository is a mock implementation of crm.AppointmentRepository
type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) FindAll(ctx context.Context, filter crm.AppointmentFilter) ([]crm.Appointment, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.Appointment), args.Get(1).(int64), args.Error(2)
}

func (m *MockAppointmentRepository) FindDueReminders(ctx context.Context, from, to time.Time) ([]crm.Appointment, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]crm.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Save(ctx context.Context, a *crm.Appointment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockClientDocuments is a mock implementation of ClientDocuments and ClientPaymentSource
type MockClientDocuments struct {
	mock.Mock
}

func (m *MockClientDocuments) ExistsForClient(ctx context.Context, clientID uuid.UUID) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientDocuments) InvoiceTotals(ctx context.Context, clientID uuid.UUID) (document.InvoiceTotals, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(document.InvoiceTotals), args.Error(1)
}

func (m *MockClientDocuments) FindByClient(ctx context.Context, clientID uuid.UUID) ([]document.Payment, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]document.Payment), args.Error(1)
}

type MockReminderNotifier struct {
	mock.Mock
}

func (m *MockReminderNotifier) NotifyAppointmentReminder(ctx context.Context, a *crm.Appointment) error {
	return m.Called(ctx, a).Error(0)
}

// memoryActivityRepository keeps journal lines in memory
type memoryActivityRepository struct {
	mu    sync.Mutex
	lines []crm.Activity
}

func (r *memoryActivityRepository) Save(_ context.Context, a *crm.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, *a)
	return nil
}

func (r *memoryActivityRepository) Find(_ context.Context, f crm.ActivityFilter) ([]crm.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []crm.Activity
	for _, a := range r.lines {
		if f.LeadID != nil && (a.LeadID == nil || *a.LeadID != *f.LeadID) {
			continue
		}
		if f.ProjectID != nil && (a.ProjectID == nil || *a.ProjectID != *f.ProjectID) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *memoryActivityRepository) contents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	for i, a := range r.lines {
		out[i] = a.Content
	}
	return out
}

type memoryAuditRepository struct {
	mu      sync.Mutex
	entries []*audit.Log
}

func (r *memoryAuditRepository) Save(_ context.Context, entry *audit.Log) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryAuditRepository) Search(_ context.Context, _ audit.Filter) ([]audit.Log, int64, error) {
	return nil, 0, nil
}

func (r *memoryAuditRepository) CountByAction(_ context.Context, _ audit.Filter) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (r *memoryAuditRepository) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

type memorySequenceStore struct {
	mu       sync.Mutex
	counters map[string]*sequence.Counter
}

func newMemorySequenceStore() *memorySequenceStore {
	return &memorySequenceStore{counters: make(map[string]*sequence.Counter)}
}

func (s *memorySequenceStore) Increment(_ context.Context, t sequence.Type, year int) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s/%d", t, year)
	c, ok := s.counters[key]
	if !ok {
		c = &sequence.Counter{Type: t, Year: year}
		s.counters[key] = c
	}
	previous := c.LastNumber
	c.LastNumber++
	return previous, c.LastNumber, nil
}

func (s *memorySequenceStore) Current(_ context.Context, t sequence.Type, year int) (*sequence.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[fmt.Sprintf("%s/%d", t, year)]
	if !ok {
		return nil, shared.NotFound("counter not found")
	}
	cp := *c
	return &cp, nil
}

func (s *memorySequenceStore) List(_ context.Context) ([]sequence.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sequence.Counter, 0, len(s.counters))
	for _, c := range s.counters {
		out = append(out, *c)
	}
	return out, nil
}

type testEnv struct {
	leads        *MockLeadRepository
	clients      *MockClientRepository
	projects     *MockProjectRepository
	appointments *MockAppointmentRepository
	docs         *MockClientDocuments
	activities   *memoryActivityRepository
	audits       *memoryAuditRepository
	store        *memorySequenceStore
	publisher    *MockEventPublisher

	leadSvc        *LeadService
	clientSvc      *ClientService
	projectSvc     *ProjectService
	appointmentSvc *AppointmentService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		leads:        new(MockLeadRepository),
		clients:      new(MockClientRepository),
		projects:     new(MockProjectRepository),
		appointments: new(MockAppointmentRepository),
		docs:         new(MockClientDocuments),
		activities:   &memoryActivityRepository{},
		audits:       &memoryAuditRepository{},
		store:        newMemorySequenceStore(),
		publisher:    &MockEventPublisher{},
	}
	scope := &NoOpTransactionScope{
		Leads:      env.leads,
		Clients:    env.clients,
		Projects:   env.projects,
		Activities: env.activities,
		Sequences:  env.store,
		Audits:     env.audits,
	}
	logger := zap.NewNop()
	clock := func() time.Time { return testNow }

	env.leadSvc = NewLeadService(env.leads, env.activities, scope, logger)
	env.leadSvc.SetEventPublisher(env.publisher)
	env.leadSvc.SetClock(clock)

	env.clientSvc = NewClientService(env.clients, env.projects, env.docs, env.docs, env.audits, scope, logger)
	env.clientSvc.SetEventPublisher(env.publisher)
	env.clientSvc.SetClock(clock)

	env.projectSvc = NewProjectService(env.projects, env.clients, env.activities, env.audits, scope, logger)
	env.projectSvc.SetEventPublisher(env.publisher)
	env.projectSvc.SetClock(clock)

	env.appointmentSvc = NewAppointmentService(env.appointments, logger)
	env.appointmentSvc.SetEventPublisher(env.publisher)
	env.appointmentSvc.SetClock(clock)
	return env
}
