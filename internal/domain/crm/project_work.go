package crm

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// TaskStatus tracks a project task
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// IsValid reports whether the status is known
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// Task is a unit of work inside a project
type Task struct {
	shared.BaseEntity
	ProjectID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title        string     `gorm:"type:varchar(200);not null"`
	Description  *string    `gorm:"type:text"`
	Priority     Priority   `gorm:"type:varchar(10);not null;default:'medium'"`
	Status       TaskStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	DueDate      *time.Time
	AssignedToID *uuid.UUID `gorm:"type:uuid"`
	Position     int        `gorm:"not null;default:0"`
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (Task) TableName() string {
	return "crm_project_tasks"
}

// TaskParams carries the editable fields of a task
type TaskParams struct {
	Title        string
	Description  *string
	Priority     Priority
	Status       TaskStatus
	DueDate      *time.Time
	AssignedToID *uuid.UUID
	Position     *int
}

func (p *TaskParams) normalize() {
	p.Title = strings.TrimSpace(p.Title)
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	if p.Status == "" {
		p.Status = TaskPending
	}
}

func (p TaskParams) validate() error {
	var e errs
	e.name("title", p.Title, 1, "Le titre est requis")
	if p.Priority != PriorityLow && p.Priority != PriorityMedium && p.Priority != PriorityHigh {
		e.add("priority", "Priorité invalide")
	}
	if !p.Status.IsValid() {
		e.add("status", "Statut invalide")
	}
	return e.err()
}

// NewTask validates and creates a task placed at position when none is given
func NewTask(projectID uuid.UUID, p TaskParams, position int, now time.Time) (*Task, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}
	t := &Task{BaseEntity: shared.NewBaseEntity(), ProjectID: projectID, Position: position}
	t.apply(p, now)
	return t, nil
}

// Update replaces the editable fields of the task
func (t *Task) Update(p TaskParams, now time.Time) error {
	p.normalize()
	if err := p.validate(); err != nil {
		return err
	}
	t.apply(p, now)
	t.UpdatedAt = now
	return nil
}

func (t *Task) apply(p TaskParams, now time.Time) {
	t.Title = p.Title
	t.Description = p.Description
	t.Priority = p.Priority
	t.DueDate = p.DueDate
	t.AssignedToID = p.AssignedToID
	if p.Position != nil {
		t.Position = *p.Position
	}
	if p.Status == TaskCompleted && t.Status != TaskCompleted {
		t.CompletedAt = &now
	}
	if p.Status != TaskCompleted {
		t.CompletedAt = nil
	}
	t.Status = p.Status
}

// ErrTaskNotFound is returned for an unknown task
var ErrTaskNotFound = shared.NotFound("Tâche non trouvée")

// ChecklistItem is a tickable line of a project checklist
type ChecklistItem struct {
	shared.BaseEntity
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index"`
	Item      string    `gorm:"type:varchar(300);not null"`
	Checked   bool      `gorm:"not null;default:false"`
	Notes     *string   `gorm:"type:text"`
	Position  int       `gorm:"not null;default:0"`
	CheckedAt *time.Time
}

// TableName returns the table name for GORM
func (ChecklistItem) TableName() string {
	return "crm_project_checklist"
}

// NewChecklistItem creates an unchecked item
func NewChecklistItem(projectID uuid.UUID, item string, notes *string, position int) (*ChecklistItem, error) {
	var e errs
	e.name("item", item, 1, "L'élément est requis")
	if err := e.err(); err != nil {
		return nil, err
	}
	return &ChecklistItem{
		BaseEntity: shared.NewBaseEntity(),
		ProjectID:  projectID,
		Item:       strings.TrimSpace(item),
		Notes:      notes,
		Position:   position,
	}, nil
}

// Edit replaces the label and notes
func (c *ChecklistItem) Edit(item string, notes *string, now time.Time) error {
	var e errs
	e.name("item", item, 1, "L'élément est requis")
	if err := e.err(); err != nil {
		return err
	}
	c.Item = strings.TrimSpace(item)
	c.Notes = notes
	c.UpdatedAt = now
	return nil
}

// Toggle sets the checked flag
func (c *ChecklistItem) Toggle(checked bool, now time.Time) {
	c.Checked = checked
	if checked {
		c.CheckedAt = &now
	} else {
		c.CheckedAt = nil
	}
	c.UpdatedAt = now
}

// JournalEntry is a dated note on the progress of a project
type JournalEntry struct {
	shared.BaseEntity
	ProjectID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title     *string    `gorm:"type:varchar(200)"`
	Content   string     `gorm:"type:text;not null"`
	Date      time.Time  `gorm:"column:entry_date;not null"`
	AuthorID  *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (JournalEntry) TableName() string {
	return "crm_project_journal"
}

// NewJournalEntry creates an entry dated now when no date is given
func NewJournalEntry(projectID uuid.UUID, title *string, content string, date *time.Time, author *uuid.UUID, now time.Time) (*JournalEntry, error) {
	var e errs
	e.name("content", content, 1, "Le contenu est requis")
	if err := e.err(); err != nil {
		return nil, err
	}
	at := now
	if date != nil {
		at = *date
	}
	return &JournalEntry{
		BaseEntity: shared.NewBaseEntity(),
		ProjectID:  projectID,
		Title:      trimPtr(title),
		Content:    strings.TrimSpace(content),
		Date:       at,
		AuthorID:   author,
	}, nil
}

// MediaType classifies project attachments
type MediaType string

const (
	MediaImage    MediaType = "IMAGE"
	MediaVideo    MediaType = "VIDEO"
	MediaDocument MediaType = "DOCUMENT"
	MediaPlan     MediaType = "PLAN"
)

// MediaTag says when or why a file was attached
type MediaTag string

const (
	TagBefore    MediaTag = "BEFORE"
	TagDuring    MediaTag = "DURING"
	TagAfter     MediaTag = "AFTER"
	TagPlan      MediaTag = "PLAN"
	TagSignature MediaTag = "SIGNATURE"
	TagContract  MediaTag = "CONTRACT"
	TagOther     MediaTag = "OTHER"
)

func (t MediaType) valid() bool {
	return t == MediaImage || t == MediaVideo || t == MediaDocument || t == MediaPlan
}

func (t MediaTag) valid() bool {
	switch t {
	case TagBefore, TagDuring, TagAfter, TagPlan, TagSignature, TagContract, TagOther:
		return true
	}
	return false
}

// Media is a file attached to a project
type Media struct {
	shared.BaseEntity
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	URL         string     `gorm:"column:url;type:text;not null"`
	Filename    string     `gorm:"type:varchar(255);not null"`
	Type        MediaType  `gorm:"type:varchar(20);not null"`
	Tag         MediaTag   `gorm:"type:varchar(20);not null;default:'OTHER'"`
	Description *string    `gorm:"type:text"`
	UploadedBy  *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Media) TableName() string {
	return "crm_project_media"
}

// NewMedia validates and creates an attachment
func NewMedia(projectID uuid.UUID, url, filename string, typ MediaType, tag MediaTag, description *string, by *uuid.UUID) (*Media, error) {
	if tag == "" {
		tag = TagOther
	}
	var e errs
	if strings.TrimSpace(url) == "" {
		e.add("url", "L'URL est requise")
	}
	e.name("filename", filename, 1, "Le nom du fichier est requis")
	if !typ.valid() {
		e.add("type", "Type de média invalide")
	}
	if !tag.valid() {
		e.add("tag", "Étiquette invalide")
	}
	if err := e.err(); err != nil {
		return nil, err
	}
	return &Media{
		BaseEntity:  shared.NewBaseEntity(),
		ProjectID:   projectID,
		URL:         strings.TrimSpace(url),
		Filename:    strings.TrimSpace(filename),
		Type:        typ,
		Tag:         tag,
		Description: description,
		UploadedBy:  by,
	}, nil
}
