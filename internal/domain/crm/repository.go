package crm

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LeadRepository defines persistence for leads
type LeadRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	FindAll(ctx context.Context, filter LeadFilter) ([]Lead, int64, error)
	// CountByStatus groups every lead by pipeline stage
	CountByStatus(ctx context.Context) (map[LeadStatus]int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	Save(ctx context.Context, l *Lead) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClientRepository defines persistence for clients
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Client, error)
	FindByEmail(ctx context.Context, email string) (*Client, error)
	FindAll(ctx context.Context, filter ClientFilter) ([]Client, int64, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectRepository defines persistence for projects and their work items
type ProjectRepository interface {
	// FindByID loads a project with its tasks in display order
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindAll(ctx context.Context, filter ProjectFilter) ([]Project, int64, error)
	ExistsForClient(ctx context.Context, clientID uuid.UUID) (bool, error)
	Save(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindTask(ctx context.Context, projectID, taskID uuid.UUID) (*Task, error)
	SaveTask(ctx context.Context, t *Task) error
	DeleteTask(ctx context.Context, projectID, taskID uuid.UUID) error
	// ReorderTasks sets each task position to its index in ids
	ReorderTasks(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) error
	NextTaskPosition(ctx context.Context, projectID uuid.UUID) (int, error)

	FindChecklist(ctx context.Context, projectID uuid.UUID) ([]ChecklistItem, error)
	FindChecklistItem(ctx context.Context, projectID, itemID uuid.UUID) (*ChecklistItem, error)
	SaveChecklistItem(ctx context.Context, c *ChecklistItem) error
	DeleteChecklistItem(ctx context.Context, projectID, itemID uuid.UUID) error

	FindJournal(ctx context.Context, projectID uuid.UUID) ([]JournalEntry, error)
	SaveJournalEntry(ctx context.Context, j *JournalEntry) error
	DeleteJournalEntry(ctx context.Context, projectID, entryID uuid.UUID) error

	FindMedia(ctx context.Context, projectID uuid.UUID) ([]Media, error)
	SaveMedia(ctx context.Context, m *Media) error
	DeleteMedia(ctx context.Context, projectID, mediaID uuid.UUID) error
}

// AppointmentRepository defines persistence for the calendar
type AppointmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	FindAll(ctx context.Context, filter AppointmentFilter) ([]Appointment, int64, error)
	// FindDueReminders lists open appointments starting in [from, to) not yet reminded
	FindDueReminders(ctx context.Context, from, to time.Time) ([]Appointment, error)
	Save(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActivityRepository stores the CRM journal
type ActivityRepository interface {
	Save(ctx context.Context, a *Activity) error
	Find(ctx context.Context, filter ActivityFilter) ([]Activity, error)
}
