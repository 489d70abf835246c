package crm

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProjectType says what the workshop delivers
type ProjectType string

const (
	ProjectFabrication  ProjectType = "FABRICATION"
	ProjectInstallation ProjectType = "INSTALLATION"
	ProjectBoth         ProjectType = "BOTH"
)

// IsValid reports whether the type is known
func (t ProjectType) IsValid() bool {
	return t == ProjectFabrication || t == ProjectInstallation || t == ProjectBoth
}

// ProjectStatus is the production stage of a project
type ProjectStatus string

const (
	ProjectStudy        ProjectStatus = "STUDY"
	ProjectMeasurements ProjectStatus = "MEASUREMENTS"
	ProjectQuote        ProjectStatus = "QUOTE"
	ProjectPending      ProjectStatus = "PENDING"
	ProjectProduction   ProjectStatus = "PRODUCTION"
	ProjectReady        ProjectStatus = "READY"
	ProjectDelivery     ProjectStatus = "DELIVERY"
	ProjectInstalling   ProjectStatus = "INSTALLATION"
	ProjectCompleted    ProjectStatus = "COMPLETED"
	ProjectReceived     ProjectStatus = "RECEIVED"
	ProjectClosed       ProjectStatus = "CLOSED"
	ProjectCancelled    ProjectStatus = "CANCELLED"
)

// AllProjectStatuses lists the stages in order
func AllProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectStudy, ProjectMeasurements, ProjectQuote, ProjectPending,
		ProjectProduction, ProjectReady, ProjectDelivery, ProjectInstalling, ProjectCompleted,
		ProjectReceived, ProjectClosed, ProjectCancelled}
}

// IsValid reports whether the status is known
func (s ProjectStatus) IsValid() bool {
	for _, v := range AllProjectStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// Priority ranks projects and tasks
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether the priority is known
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Project is a job carried out for a client
type Project struct {
	shared.BaseAggregateRoot
	Number          string           `gorm:"column:project_number;type:varchar(30);not null;uniqueIndex"`
	ClientID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name            string           `gorm:"type:varchar(200);not null"`
	Description     *string          `gorm:"type:text"`
	Type            ProjectType      `gorm:"type:varchar(20);not null;default:'BOTH'"`
	Status          ProjectStatus    `gorm:"type:varchar(20);not null;default:'STUDY';index"`
	Priority        Priority         `gorm:"type:varchar(10);not null;default:'medium'"`
	SiteAddress     *string          `gorm:"type:text"`
	SiteCity        *string          `gorm:"type:varchar(100)"`
	StartDate       *time.Time       `gorm:"type:date"`
	ExpectedEndDate *time.Time       `gorm:"type:date"`
	ActualEndDate   *time.Time       `gorm:"type:date"`
	Specifications  *string          `gorm:"type:text"`
	Materials       *string          `gorm:"type:text"`
	EstimatedBudget *decimal.Decimal `gorm:"type:decimal(14,2)"`
	MaterialCost    *decimal.Decimal `gorm:"type:decimal(14,2)"`
	LaborCost       *decimal.Decimal `gorm:"type:decimal(14,2)"`
	ActualCost      *decimal.Decimal `gorm:"type:decimal(14,2)"`
	AssignedToID    *uuid.UUID       `gorm:"type:uuid;index"`
	LeadID          *uuid.UUID       `gorm:"type:uuid"`
	Tasks           []Task           `gorm:"foreignKey:ProjectID"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "crm_projects"
}

// ProjectParams carries the editable fields of a project
type ProjectParams struct {
	ClientID        uuid.UUID
	Name            string
	Description     *string
	Type            ProjectType
	Status          ProjectStatus
	Priority        Priority
	SiteAddress     *string
	SiteCity        *string
	StartDate       *time.Time
	ExpectedEndDate *time.Time
	ActualEndDate   *time.Time
	Specifications  *string
	Materials       *string
	EstimatedBudget *decimal.Decimal
	MaterialCost    *decimal.Decimal
	LaborCost       *decimal.Decimal
	ActualCost      *decimal.Decimal
	AssignedToID    *uuid.UUID
	LeadID          *uuid.UUID
}

func (p *ProjectParams) normalize() {
	if p.Type == "" {
		p.Type = ProjectBoth
	}
	if p.Status == "" {
		p.Status = ProjectStudy
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	p.Name = strings.TrimSpace(p.Name)
	p.SiteAddress, p.SiteCity = trimPtr(p.SiteAddress), trimPtr(p.SiteCity)
}

func (p ProjectParams) validate() error {
	var e errs
	if p.ClientID == uuid.Nil {
		e.add("clientId", "Le client est requis")
	}
	e.name("name", p.Name, 2, "Le nom du projet est requis")
	if !p.Type.IsValid() {
		e.add("type", "Type de projet invalide")
	}
	if !p.Status.IsValid() {
		e.add("status", "Statut invalide")
	}
	if !p.Priority.IsValid() {
		e.add("priority", "Priorité invalide")
	}
	if p.StartDate != nil && p.ExpectedEndDate != nil && p.ExpectedEndDate.Before(*p.StartDate) {
		e.add("expectedEndDate", "La date de fin doit être postérieure à la date de début")
	}
	for field, v := range map[string]*decimal.Decimal{
		"estimatedBudget": p.EstimatedBudget,
		"materialCost":    p.MaterialCost,
		"laborCost":       p.LaborCost,
		"actualCost":      p.ActualCost,
	} {
		if v != nil && v.IsNegative() {
			e.add(field, "Le montant ne peut pas être négatif")
		}
	}
	return e.err()
}

// NewProject validates and creates a project with its official number
func NewProject(number string, p ProjectParams) (*Project, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}
	pr := &Project{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Number: number}
	pr.apply(p)
	pr.AddDomainEvent(NewProjectCreatedEvent(pr))
	return pr, nil
}

func (pr *Project) apply(p ProjectParams) {
	pr.ClientID = p.ClientID
	pr.Name = p.Name
	pr.Description = p.Description
	pr.Type = p.Type
	pr.Status = p.Status
	pr.Priority = p.Priority
	pr.SiteAddress = p.SiteAddress
	pr.SiteCity = p.SiteCity
	pr.StartDate = p.StartDate
	pr.ExpectedEndDate = p.ExpectedEndDate
	pr.ActualEndDate = p.ActualEndDate
	pr.Specifications = p.Specifications
	pr.Materials = p.Materials
	pr.EstimatedBudget = p.EstimatedBudget
	pr.MaterialCost = p.MaterialCost
	pr.LaborCost = p.LaborCost
	pr.ActualCost = p.ActualCost
	pr.AssignedToID = p.AssignedToID
	if p.LeadID != nil {
		pr.LeadID = p.LeadID
	}
}

// Update replaces the editable fields and returns the previous status
func (pr *Project) Update(p ProjectParams, now time.Time) (ProjectStatus, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return "", err
	}
	old := pr.Status
	pr.apply(p)
	if old != pr.Status {
		pr.statusChanged(old, now)
	}
	pr.UpdatedAt = now
	pr.IncrementVersion()
	return old, nil
}

// ChangeStatus moves the project to another stage
func (pr *Project) ChangeStatus(status ProjectStatus, now time.Time) (ProjectStatus, error) {
	if !status.IsValid() {
		return "", shared.NewValidationError("Données invalides", shared.ErrorDetail{Field: "status", Message: "Statut invalide"})
	}
	old := pr.Status
	if old == status {
		return old, nil
	}
	pr.Status = status
	pr.statusChanged(old, now)
	pr.UpdatedAt = now
	pr.IncrementVersion()
	return old, nil
}

func (pr *Project) statusChanged(old ProjectStatus, now time.Time) {
	if pr.Status == ProjectCompleted && pr.ActualEndDate == nil {
		day := now.Truncate(24 * time.Hour)
		pr.ActualEndDate = &day
	}
	pr.AddDomainEvent(NewProjectStatusChangedEvent(pr, old))
}

// TotalCost is material plus labour, or the actual cost when recorded
func (pr *Project) TotalCost() decimal.Decimal {
	if pr.ActualCost != nil {
		return *pr.ActualCost
	}
	total := decimal.Zero
	if pr.MaterialCost != nil {
		total = total.Add(*pr.MaterialCost)
	}
	if pr.LaborCost != nil {
		total = total.Add(*pr.LaborCost)
	}
	return total
}

// Progress is the share of completed tasks, cancelled ones excluded, in percent
func Progress(tasks []Task) int {
	var counted, done int
	for _, t := range tasks {
		if t.Status == TaskCancelled {
			continue
		}
		counted++
		if t.Status == TaskCompleted {
			done++
		}
	}
	if counted == 0 {
		return 0
	}
	return done * 100 / counted
}

// Progress of the loaded tasks
func (pr *Project) Progress() int {
	return Progress(pr.Tasks)
}

// ProjectFilter narrows a project listing
type ProjectFilter struct {
	shared.Filter
	ClientID     *uuid.UUID
	Status       ProjectStatus
	Type         ProjectType
	Priority     Priority
	AssignedToID *uuid.UUID
}
