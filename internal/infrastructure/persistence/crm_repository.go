package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultLeadPageSize = 50
	defaultCRMPageSize  = 20
)

// GormLeadRepository implements crm.LeadRepository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// FindByID finds a lead by ID
func (r *GormLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	return findOne[crm.Lead](ctx, r.db, "id = ?", id)
}

// FindAll lists leads matching the filter
func (r *GormLeadRepository) FindAll(ctx context.Context, filter crm.LeadFilter) ([]crm.Lead, int64, error) {
	f := filter.Filter.Normalize(defaultLeadPageSize)
	query := r.db.WithContext(ctx).Model(&crm.Lead{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Urgency != "" {
		query = query.Where("urgency = ?", filter.Urgency)
	}
	if filter.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filter.AssignedToID)
	}
	if filter.City != "" {
		query = likeAny(query, filter.City, "city")
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}
	query = likeAny(query, f.Search, "full_name", "phone", "email", "lead_number", "company")
	return page[crm.Lead](query, f, leadSort.order(f, "created_at"))
}

// CountByStatus groups every lead by pipeline stage
func (r *GormLeadRepository) CountByStatus(ctx context.Context) (map[crm.LeadStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&crm.Lead{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[crm.LeadStatus]int64, len(rows))
	for _, row := range rows {
		counts[crm.LeadStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// CountSince counts leads created after the given time
func (r *GormLeadRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&crm.Lead{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// Save creates or updates a lead
func (r *GormLeadRepository) Save(ctx context.Context, l *crm.Lead) error {
	return r.db.WithContext(ctx).Save(l).Error
}

// Delete removes a lead and its journal
func (r *GormLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ? AND client_id IS NULL", id).Delete(&crm.Activity{}).Error; err != nil {
			return err
		}
		return deleteWhere[crm.Lead](ctx, tx, "id = ?", id)
	})
}

// GormClientRepository implements crm.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Client, error) {
	return findOne[crm.Client](ctx, r.db, "id = ?", id)
}

// FindByIDs loads several clients
func (r *GormClientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]crm.Client, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var clients []crm.Client
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&clients).Error
	return clients, err
}

// FindByEmail finds a client by email, case insensitive
func (r *GormClientRepository) FindByEmail(ctx context.Context, email string) (*crm.Client, error) {
	return findOne[crm.Client](ctx, r.db, "LOWER(email) = LOWER(?)", email)
}

// FindAll lists clients matching the filter
func (r *GormClientRepository) FindAll(ctx context.Context, filter crm.ClientFilter) ([]crm.Client, int64, error) {
	f := filter.Filter.Normalize(defaultCRMPageSize)
	query := r.db.WithContext(ctx).Model(&crm.Client{})
	if filter.ClientType != "" {
		query = query.Where("client_type = ?", filter.ClientType)
	}
	if filter.City != "" {
		query = likeAny(query, filter.City, "billing_city")
	}
	if filter.Tag != "" {
		query = likeAny(query, `"`+filter.Tag+`"`, "tags")
	}
	query = likeAny(query, f.Search, "full_name", "company", "phone", "email", "client_number", "ice")
	return page[crm.Client](query, f, clientSort.order(f, "created_at"))
}

// Count counts every client
func (r *GormClientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&crm.Client{}).Count(&count).Error
	return count, err
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, c *crm.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete removes a client
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteWhere[crm.Client](ctx, r.db, "id = ?", id)
}

// GormProjectRepository implements crm.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

func withTasks(db *gorm.DB) *gorm.DB {
	return db.Preload("Tasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, created_at ASC")
	})
}

// FindByID finds a project with its tasks
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Project, error) {
	return findOne[crm.Project](ctx, withTasks(r.db), "id = ?", id)
}

// FindAll lists projects with their tasks
func (r *GormProjectRepository) FindAll(ctx context.Context, filter crm.ProjectFilter) ([]crm.Project, int64, error) {
	f := filter.Filter.Normalize(defaultCRMPageSize)
	query := r.db.WithContext(ctx).Model(&crm.Project{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filter.AssignedToID)
	}
	query = likeAny(query, f.Search, "name", "project_number", "site_city")
	return page[crm.Project](query, f, projectSort.order(f, "created_at"), withTasks)
}

// ExistsForClient reports whether the client has projects
func (r *GormProjectRepository) ExistsForClient(ctx context.Context, clientID uuid.UUID) (bool, error) {
	return exists[crm.Project](ctx, r.db, "client_id = ?", clientID)
}

// Save creates or updates a project row. Tasks are saved on their own.
func (r *GormProjectRepository) Save(ctx context.Context, p *crm.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

// Delete removes a project and everything attached to it
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{&crm.Task{}, &crm.ChecklistItem{}, &crm.JournalEntry{}, &crm.Media{}} {
			if err := tx.Where("project_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return deleteWhere[crm.Project](ctx, tx, "id = ?", id)
	})
}

// FindTask finds a task of a project
func (r *GormProjectRepository) FindTask(ctx context.Context, projectID, taskID uuid.UUID) (*crm.Task, error) {
	t, err := findOne[crm.Task](ctx, r.db, "project_id = ? AND id = ?", projectID, taskID)
	if shared.IsNotFound(err) {
		return nil, crm.ErrTaskNotFound
	}
	return t, err
}

// SaveTask creates or updates a task
func (r *GormProjectRepository) SaveTask(ctx context.Context, t *crm.Task) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// DeleteTask removes a task
func (r *GormProjectRepository) DeleteTask(ctx context.Context, projectID, taskID uuid.UUID) error {
	err := deleteWhere[crm.Task](ctx, r.db, "project_id = ? AND id = ?", projectID, taskID)
	if shared.IsNotFound(err) {
		return crm.ErrTaskNotFound
	}
	return err
}

// ReorderTasks sets each task position to its index in ids
func (r *GormProjectRepository) ReorderTasks(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			result := tx.Model(&crm.Task{}).
				Where("project_id = ? AND id = ?", projectID, id).
				Updates(map[string]any{"position": i, "updated_at": time.Now()})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return crm.ErrTaskNotFound
			}
		}
		return nil
	})
}

// NextTaskPosition returns the position after the last task
func (r *GormProjectRepository) NextTaskPosition(ctx context.Context, projectID uuid.UUID) (int, error) {
	var last int
	err := r.db.WithContext(ctx).Model(&crm.Task{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(position), -1)").
		Scan(&last).Error
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

// FindChecklist lists the checklist of a project
func (r *GormProjectRepository) FindChecklist(ctx context.Context, projectID uuid.UUID) ([]crm.ChecklistItem, error) {
	var items []crm.ChecklistItem
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("position ASC, created_at ASC").Find(&items).Error
	return items, err
}

// FindChecklistItem finds one checklist line
func (r *GormProjectRepository) FindChecklistItem(ctx context.Context, projectID, itemID uuid.UUID) (*crm.ChecklistItem, error) {
	return findOne[crm.ChecklistItem](ctx, r.db, "project_id = ? AND id = ?", projectID, itemID)
}

// SaveChecklistItem creates or updates a checklist line
func (r *GormProjectRepository) SaveChecklistItem(ctx context.Context, c *crm.ChecklistItem) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// DeleteChecklistItem removes a checklist line
func (r *GormProjectRepository) DeleteChecklistItem(ctx context.Context, projectID, itemID uuid.UUID) error {
	return deleteWhere[crm.ChecklistItem](ctx, r.db, "project_id = ? AND id = ?", projectID, itemID)
}

// FindJournal lists journal entries, latest first
func (r *GormProjectRepository) FindJournal(ctx context.Context, projectID uuid.UUID) ([]crm.JournalEntry, error) {
	var entries []crm.JournalEntry
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("entry_date DESC").Find(&entries).Error
	return entries, err
}

// SaveJournalEntry stores a journal entry
func (r *GormProjectRepository) SaveJournalEntry(ctx context.Context, j *crm.JournalEntry) error {
	return r.db.WithContext(ctx).Save(j).Error
}

// DeleteJournalEntry removes a journal entry
func (r *GormProjectRepository) DeleteJournalEntry(ctx context.Context, projectID, entryID uuid.UUID) error {
	return deleteWhere[crm.JournalEntry](ctx, r.db, "project_id = ? AND id = ?", projectID, entryID)
}

// FindMedia lists attachments, newest first
func (r *GormProjectRepository) FindMedia(ctx context.Context, projectID uuid.UUID) ([]crm.Media, error) {
	var media []crm.Media
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").Find(&media).Error
	return media, err
}

// SaveMedia stores an attachment
func (r *GormProjectRepository) SaveMedia(ctx context.Context, m *crm.Media) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// DeleteMedia removes an attachment
func (r *GormProjectRepository) DeleteMedia(ctx context.Context, projectID, mediaID uuid.UUID) error {
	return deleteWhere[crm.Media](ctx, r.db, "project_id = ? AND id = ?", projectID, mediaID)
}

// GormAppointmentRepository implements crm.AppointmentRepository using GORM
type GormAppointmentRepository struct {
	db *gorm.DB
}

// NewGormAppointmentRepository creates a new GormAppointmentRepository
func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// FindByID finds an appointment by ID
func (r *GormAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Appointment, error) {
	return findOne[crm.Appointment](ctx, r.db, "id = ?", id)
}

// FindAll lists appointments, earliest first unless another order is asked
func (r *GormAppointmentRepository) FindAll(ctx context.Context, filter crm.AppointmentFilter) ([]crm.Appointment, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "start_date", "asc"
	}
	f := filter.Filter.Normalize(defaultLeadPageSize)
	query := r.db.WithContext(ctx).Model(&crm.Appointment{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.LeadID != nil {
		query = query.Where("lead_id = ?", *filter.LeadID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filter.AssignedToID)
	}
	if filter.From != nil {
		query = query.Where("start_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("start_date <= ?", *filter.To)
	}
	query = likeAny(query, f.Search, "title", "location")
	return page[crm.Appointment](query, f, appointmentSort.order(f, "start_date"))
}

// FindDueReminders lists open appointments starting in [from, to) not yet reminded
func (r *GormAppointmentRepository) FindDueReminders(ctx context.Context, from, to time.Time) ([]crm.Appointment, error) {
	var out []crm.Appointment
	err := r.db.WithContext(ctx).
		Where("status IN ?", []crm.AppointmentStatus{crm.AppointmentScheduled, crm.AppointmentConfirmed}).
		Where("reminder_sent = ?", false).
		Where("start_date >= ? AND start_date < ?", from, to).
		Order("start_date ASC").
		Find(&out).Error
	return out, err
}

// Save creates or updates an appointment
func (r *GormAppointmentRepository) Save(ctx context.Context, a *crm.Appointment) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// Delete removes an appointment
func (r *GormAppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteWhere[crm.Appointment](ctx, r.db, "id = ?", id)
}

// GormActivityRepository implements crm.ActivityRepository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// Save appends a journal line
func (r *GormActivityRepository) Save(ctx context.Context, a *crm.Activity) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// Find lists journal lines newest first
func (r *GormActivityRepository) Find(ctx context.Context, filter crm.ActivityFilter) ([]crm.Activity, error) {
	query := r.db.WithContext(ctx).Model(&crm.Activity{})
	if filter.LeadID != nil {
		query = query.Where("lead_id = ?", *filter.LeadID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLeadPageSize
	}
	var out []crm.Activity
	err := query.Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

var (
	_ crm.LeadRepository        = (*GormLeadRepository)(nil)
	_ crm.ClientRepository      = (*GormClientRepository)(nil)
	_ crm.ProjectRepository     = (*GormProjectRepository)(nil)
	_ crm.AppointmentRepository = (*GormAppointmentRepository)(nil)
	_ crm.ActivityRepository    = (*GormActivityRepository)(nil)
)
