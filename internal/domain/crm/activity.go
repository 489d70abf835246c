package crm

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// ActivityType classifies journal entries
type ActivityType string

const (
	ActivityNote          ActivityType = "NOTE"
	ActivityCall          ActivityType = "CALL"
	ActivityEmail         ActivityType = "EMAIL"
	ActivityMeeting       ActivityType = "MEETING"
	ActivityStatusChange  ActivityType = "STATUS_CHANGE"
	ActivitySystem        ActivityType = "SYSTEM"
	ActivityDocumentEvent ActivityType = "DOCUMENT"
)

// IsValid reports whether the type is known
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityNote, ActivityCall, ActivityEmail, ActivityMeeting,
		ActivityStatusChange, ActivitySystem, ActivityDocumentEvent:
		return true
	}
	return false
}

// Activity is one line of the CRM journal for a lead, client or project
type Activity struct {
	shared.BaseEntity
	Type      ActivityType `gorm:"type:varchar(20);not null"`
	Content   string       `gorm:"type:text;not null"`
	LeadID    *uuid.UUID   `gorm:"type:uuid;index"`
	ClientID  *uuid.UUID   `gorm:"type:uuid;index"`
	ProjectID *uuid.UUID   `gorm:"type:uuid;index"`
	UserID    *uuid.UUID   `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Activity) TableName() string {
	return "crm_activities"
}

func newActivity(t ActivityType, content string, by *uuid.UUID) *Activity {
	return &Activity{BaseEntity: shared.NewBaseEntity(), Type: t, Content: content, UserID: by}
}

// NewNote records a free text note on a lead
func NewNote(leadID uuid.UUID, t ActivityType, content string, by *uuid.UUID) (*Activity, error) {
	if t == "" {
		t = ActivityNote
	}
	var e errs
	if !t.IsValid() {
		e.add("type", "Type d'activité invalide")
	}
	e.name("content", content, 1, "Le contenu est requis")
	if err := e.err(); err != nil {
		return nil, err
	}
	a := newActivity(t, strings.TrimSpace(content), by)
	a.LeadID = &leadID
	return a, nil
}

// LeadCreatedActivity journals a new lead
func LeadCreatedActivity(l *Lead, by *uuid.UUID) *Activity {
	a := newActivity(ActivitySystem, fmt.Sprintf("Lead créé depuis %s", l.Source), by)
	a.LeadID = &l.ID
	return a
}

// LeadStatusActivity journals a pipeline move
func LeadStatusActivity(l *Lead, old LeadStatus, by *uuid.UUID) *Activity {
	a := newActivity(ActivityStatusChange, fmt.Sprintf("Statut changé de \"%s\" à \"%s\"", old, l.Status), by)
	a.LeadID = &l.ID
	return a
}

// LeadConvertedActivity journals the conversion on both the lead and the client
func LeadConvertedActivity(l *Lead, c *Client, by *uuid.UUID) *Activity {
	a := newActivity(ActivitySystem, fmt.Sprintf("Lead converti en client: %s", c.Number), by)
	a.LeadID = &l.ID
	a.ClientID = &c.ID
	return a
}

// ProjectCreatedActivity journals a project opened for a client
func ProjectCreatedActivity(p *Project, leadID *uuid.UUID, by *uuid.UUID) *Activity {
	a := newActivity(ActivitySystem, fmt.Sprintf("Projet créé: %s", p.Number), by)
	a.ClientID = &p.ClientID
	a.ProjectID = &p.ID
	a.LeadID = leadID
	return a
}

// ProjectStatusActivity journals a project stage change
func ProjectStatusActivity(p *Project, old ProjectStatus, by *uuid.UUID) *Activity {
	a := newActivity(ActivityStatusChange, fmt.Sprintf("Statut changé de \"%s\" à \"%s\"", old, p.Status), by)
	a.ProjectID = &p.ID
	a.ClientID = &p.ClientID
	return a
}

// ActivityFilter selects journal lines
type ActivityFilter struct {
	LeadID    *uuid.UUID
	ClientID  *uuid.UUID
	ProjectID *uuid.UUID
	Since     *time.Time
	Limit     int
}
