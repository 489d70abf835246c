package crm

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/shopspring/decimal"
)

// LeadRequest is the body of lead create and update
type LeadRequest struct {
	Source       string           `json:"source" binding:"required,oneof=WEBSITE WHATSAPP PHONE FACEBOOK INSTAGRAM REFERRAL WALK_IN OTHER"`
	Status       string           `json:"status" binding:"omitempty,oneof=NEW CONTACTED VISIT_SCHEDULED MEASURES_TAKEN QUOTE_SENT NEGOTIATION WON LOST"`
	FullName     string           `json:"fullName" binding:"required,min=2,max=200"`
	Company      *string          `json:"company" binding:"omitempty,max=200"`
	Phone        string           `json:"phone" binding:"required,min=8,max=50"`
	PhoneAlt     *string          `json:"phoneAlt" binding:"omitempty,max=50"`
	Email        *string          `json:"email" binding:"omitempty,email"`
	City         *string          `json:"city" binding:"omitempty,max=100"`
	Address      *string          `json:"address"`
	ClientType   string           `json:"clientType" binding:"omitempty,oneof=INDIVIDUAL COMPANY"`
	ICE          *string          `json:"ice" binding:"omitempty,max=20"`
	Need         *string          `json:"need"`
	BudgetMin    *decimal.Decimal `json:"budgetMin"`
	BudgetMax    *decimal.Decimal `json:"budgetMax"`
	Urgency      string           `json:"urgency" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssignedToID *uuid.UUID       `json:"assignedToId"`
	Notes        *string          `json:"notes"`
	LostReason   *string          `json:"lostReason"`
}

func (r LeadRequest) params() crm.LeadParams {
	return crm.LeadParams{
		Source:       crm.LeadSource(r.Source),
		Status:       crm.LeadStatus(r.Status),
		FullName:     r.FullName,
		Company:      r.Company,
		Phone:        r.Phone,
		PhoneAlt:     r.PhoneAlt,
		Email:        r.Email,
		City:         r.City,
		Address:      r.Address,
		ClientType:   crm.ClientType(r.ClientType),
		ICE:          r.ICE,
		Need:         r.Need,
		BudgetMin:    r.BudgetMin,
		BudgetMax:    r.BudgetMax,
		Urgency:      crm.Urgency(r.Urgency),
		AssignedToID: r.AssignedToID,
		Notes:        r.Notes,
		LostReason:   r.LostReason,
	}
}

// LeadResponse is a lead as returned by the API
type LeadResponse struct {
	ID                  uuid.UUID        `json:"id"`
	LeadNumber          string           `json:"leadNumber"`
	Source              string           `json:"source"`
	Status              string           `json:"status"`
	FullName            string           `json:"fullName"`
	Company             *string          `json:"company,omitempty"`
	Phone               string           `json:"phone"`
	PhoneAlt            *string          `json:"phoneAlt,omitempty"`
	Email               *string          `json:"email,omitempty"`
	City                *string          `json:"city,omitempty"`
	Address             *string          `json:"address,omitempty"`
	ClientType          string           `json:"clientType"`
	ICE                 *string          `json:"ice,omitempty"`
	Need                *string          `json:"need,omitempty"`
	BudgetMin           *decimal.Decimal `json:"budgetMin,omitempty"`
	BudgetMax           *decimal.Decimal `json:"budgetMax,omitempty"`
	Urgency             string           `json:"urgency"`
	AssignedToID        *uuid.UUID       `json:"assignedToId,omitempty"`
	Notes               *string          `json:"notes,omitempty"`
	LostReason          *string          `json:"lostReason,omitempty"`
	ConvertedToClientID *uuid.UUID       `json:"convertedToClientId,omitempty"`
	ConvertedAt         *time.Time       `json:"convertedAt,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// ToLeadResponse converts a lead
func ToLeadResponse(l *crm.Lead) LeadResponse {
	return LeadResponse{
		ID:                  l.ID,
		LeadNumber:          l.Number,
		Source:              string(l.Source),
		Status:              string(l.Status),
		FullName:            l.FullName,
		Company:             l.Company,
		Phone:               l.Phone,
		PhoneAlt:            l.PhoneAlt,
		Email:               l.Email,
		City:                l.City,
		Address:             l.Address,
		ClientType:          string(l.ClientType),
		ICE:                 l.ICE,
		Need:                l.Need,
		BudgetMin:           l.BudgetMin,
		BudgetMax:           l.BudgetMax,
		Urgency:             string(l.Urgency),
		AssignedToID:        l.AssignedToID,
		Notes:               l.Notes,
		LostReason:          l.LostReason,
		ConvertedToClientID: l.ConvertedToClientID,
		ConvertedAt:         l.ConvertedAt,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

// LeadListRequest carries the lead listing query
type LeadListRequest struct {
	Page         int        `form:"page"`
	Limit        int        `form:"limit"`
	Status       string     `form:"status"`
	Source       string     `form:"source"`
	Urgency      string     `form:"urgency"`
	AssignedToID *uuid.UUID `form:"assignedToId"`
	City         string     `form:"city"`
	Search       string     `form:"search"`
	DateFrom     *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo       *time.Time `form:"dateTo" time_format:"2006-01-02"`
	SortBy       string     `form:"sortBy"`
	SortOrder    string     `form:"sortOrder"`
}

// ConvertLeadRequest asks to turn a lead into a client
type ConvertLeadRequest struct {
	CreateProject bool             `json:"createProject"`
	ProjectName   string           `json:"projectName" binding:"max=200"`
	ProjectType   string           `json:"projectType" binding:"omitempty,oneof=FABRICATION INSTALLATION BOTH"`
	ProjectBudget *decimal.Decimal `json:"projectBudget"`
}

// ConvertLeadResponse is the outcome of a conversion
type ConvertLeadResponse struct {
	Lead    LeadResponse     `json:"lead"`
	Client  ClientResponse   `json:"client"`
	Project *ProjectResponse `json:"project,omitempty"`
}

// LeadStats counts leads per pipeline stage
type LeadStats struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"byStatus"`
	ConversionRate float64          `json:"conversionRate"`
}

// NoteRequest adds a note to a lead journal
type NoteRequest struct {
	Type    string `json:"type" binding:"omitempty,oneof=NOTE CALL EMAIL MEETING"`
	Content string `json:"content" binding:"required"`
}

// ActivityResponse is one journal line
type ActivityResponse struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Content   string     `json:"content"`
	LeadID    *uuid.UUID `json:"leadId,omitempty"`
	ClientID  *uuid.UUID `json:"clientId,omitempty"`
	ProjectID *uuid.UUID `json:"projectId,omitempty"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ToActivityResponses converts journal lines
func ToActivityResponses(in []crm.Activity) []ActivityResponse {
	out := make([]ActivityResponse, len(in))
	for i, a := range in {
		out[i] = ActivityResponse{
			ID: a.ID, Type: string(a.Type), Content: a.Content,
			LeadID: a.LeadID, ClientID: a.ClientID, ProjectID: a.ProjectID,
			UserID: a.UserID, CreatedAt: a.CreatedAt,
		}
	}
	return out
}

// ClientRequest is the body of client create and update
type ClientRequest struct {
	ClientType         string           `json:"clientType" binding:"omitempty,oneof=INDIVIDUAL COMPANY"`
	FullName           string           `json:"fullName" binding:"required,min=2,max=200"`
	Company            *string          `json:"company" binding:"omitempty,max=200"`
	Phone              string           `json:"phone" binding:"required,min=8,max=50"`
	PhoneAlt           *string          `json:"phoneAlt" binding:"omitempty,max=50"`
	Email              *string          `json:"email" binding:"omitempty,email"`
	BillingAddress     *string          `json:"billingAddress"`
	BillingCity        *string          `json:"billingCity" binding:"omitempty,max=100"`
	BillingPostalCode  *string          `json:"billingPostalCode" binding:"omitempty,max=20"`
	BillingCountry     string           `json:"billingCountry" binding:"max=100"`
	DeliveryAddress    *string          `json:"deliveryAddress"`
	DeliveryCity       *string          `json:"deliveryCity" binding:"omitempty,max=100"`
	DeliveryPostalCode *string          `json:"deliveryPostalCode" binding:"omitempty,max=20"`
	SameAsDelivery     *bool            `json:"sameAsDelivery"`
	ICE                *string          `json:"ice" binding:"omitempty,max=20"`
	TaxID              *string          `json:"taxId" binding:"omitempty,max=50"`
	RC                 *string          `json:"rc" binding:"omitempty,max=50"`
	PaymentTerms       string           `json:"paymentTerms" binding:"max=100"`
	DefaultDiscount    *decimal.Decimal `json:"defaultDiscount"`
	CreditLimit        *decimal.Decimal `json:"creditLimit"`
	Notes              *string          `json:"notes"`
	Tags               []string         `json:"tags"`
}

func (r ClientRequest) params() crm.ClientParams {
	return crm.ClientParams{
		ClientType:         crm.ClientType(r.ClientType),
		FullName:           r.FullName,
		Company:            r.Company,
		Phone:              r.Phone,
		PhoneAlt:           r.PhoneAlt,
		Email:              r.Email,
		BillingAddress:     r.BillingAddress,
		BillingCity:        r.BillingCity,
		BillingPostalCode:  r.BillingPostalCode,
		BillingCountry:     r.BillingCountry,
		DeliveryAddress:    r.DeliveryAddress,
		DeliveryCity:       r.DeliveryCity,
		DeliveryPostalCode: r.DeliveryPostalCode,
		SameAsDelivery:     r.SameAsDelivery,
		ICE:                r.ICE,
		TaxID:              r.TaxID,
		RC:                 r.RC,
		PaymentTerms:       r.PaymentTerms,
		DefaultDiscount:    r.DefaultDiscount,
		CreditLimit:        r.CreditLimit,
		Notes:              r.Notes,
		Tags:               r.Tags,
	}
}

// ClientResponse is a client as returned by the API
type ClientResponse struct {
	ID                 uuid.UUID        `json:"id"`
	ClientNumber       string           `json:"clientNumber"`
	ClientType         string           `json:"clientType"`
	FullName           string           `json:"fullName"`
	Company            *string          `json:"company,omitempty"`
	Phone              string           `json:"phone"`
	PhoneAlt           *string          `json:"phoneAlt,omitempty"`
	Email              *string          `json:"email,omitempty"`
	BillingAddress     *string          `json:"billingAddress,omitempty"`
	BillingCity        *string          `json:"billingCity,omitempty"`
	BillingPostalCode  *string          `json:"billingPostalCode,omitempty"`
	BillingCountry     string           `json:"billingCountry"`
	DeliveryAddress    *string          `json:"deliveryAddress,omitempty"`
	DeliveryCity       *string          `json:"deliveryCity,omitempty"`
	DeliveryPostalCode *string          `json:"deliveryPostalCode,omitempty"`
	SameAsDelivery     bool             `json:"sameAsDelivery"`
	ICE                *string          `json:"ice,omitempty"`
	TaxID              *string          `json:"taxId,omitempty"`
	RC                 *string          `json:"rc,omitempty"`
	PaymentTerms       string           `json:"paymentTerms"`
	DefaultDiscount    *decimal.Decimal `json:"defaultDiscount,omitempty"`
	CreditLimit        *decimal.Decimal `json:"creditLimit,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
	Tags               []string         `json:"tags"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// ToClientResponse converts a client
func ToClientResponse(c *crm.Client) ClientResponse {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return ClientResponse{
		ID:                 c.ID,
		ClientNumber:       c.Number,
		ClientType:         string(c.ClientType),
		FullName:           c.FullName,
		Company:            c.Company,
		Phone:              c.Phone,
		PhoneAlt:           c.PhoneAlt,
		Email:              c.Email,
		BillingAddress:     c.BillingAddress,
		BillingCity:        c.BillingCity,
		BillingPostalCode:  c.BillingPostalCode,
		BillingCountry:     c.BillingCountry,
		DeliveryAddress:    c.DeliveryAddress,
		DeliveryCity:       c.DeliveryCity,
		DeliveryPostalCode: c.DeliveryPostalCode,
		SameAsDelivery:     c.SameAsDelivery,
		ICE:                c.ICE,
		TaxID:              c.TaxID,
		RC:                 c.RC,
		PaymentTerms:       c.PaymentTerms,
		DefaultDiscount:    c.DefaultDiscount,
		CreditLimit:        c.CreditLimit,
		Notes:              c.Notes,
		Tags:               tags,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// ClientListRequest carries the client listing query
type ClientListRequest struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	ClientType string `form:"clientType"`
	City       string `form:"city"`
	Tag        string `form:"tag"`
	Search     string `form:"search"`
	SortBy     string `form:"sortBy"`
	SortOrder  string `form:"sortOrder"`
}

// ClientPaymentLine is one payment in a client statement
type ClientPaymentLine struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	DocumentID uuid.UUID       `json:"documentId"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
}

// ClientPayments lists a client's payments with totals by method
type ClientPayments struct {
	Payments []ClientPaymentLine        `json:"payments"`
	Total    decimal.Decimal            `json:"total"`
	ByMethod map[string]decimal.Decimal `json:"byMethod"`
}

// ProjectRequest is the body of project create and update
type ProjectRequest struct {
	ClientID        uuid.UUID        `json:"clientId" binding:"required"`
	Name            string           `json:"name" binding:"required,min=2,max=200"`
	Description     *string          `json:"description"`
	Type            string           `json:"type" binding:"omitempty,oneof=FABRICATION INSTALLATION BOTH"`
	Status          string           `json:"status"`
	Priority        string           `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	SiteAddress     *string          `json:"siteAddress"`
	SiteCity        *string          `json:"siteCity" binding:"omitempty,max=100"`
	StartDate       *time.Time       `json:"startDate"`
	ExpectedEndDate *time.Time       `json:"expectedEndDate"`
	ActualEndDate   *time.Time       `json:"actualEndDate"`
	Specifications  *string          `json:"specifications"`
	Materials       *string          `json:"materials"`
	EstimatedBudget *decimal.Decimal `json:"estimatedBudget"`
	MaterialCost    *decimal.Decimal `json:"materialCost"`
	LaborCost       *decimal.Decimal `json:"laborCost"`
	ActualCost      *decimal.Decimal `json:"actualCost"`
	AssignedToID    *uuid.UUID       `json:"assignedToId"`
}

func (r ProjectRequest) params() crm.ProjectParams {
	return crm.ProjectParams{
		ClientID:        r.ClientID,
		Name:            r.Name,
		Description:     r.Description,
		Type:            crm.ProjectType(r.Type),
		Status:          crm.ProjectStatus(r.Status),
		Priority:        crm.Priority(r.Priority),
		SiteAddress:     r.SiteAddress,
		SiteCity:        r.SiteCity,
		StartDate:       r.StartDate,
		ExpectedEndDate: r.ExpectedEndDate,
		ActualEndDate:   r.ActualEndDate,
		Specifications:  r.Specifications,
		Materials:       r.Materials,
		EstimatedBudget: r.EstimatedBudget,
		MaterialCost:    r.MaterialCost,
		LaborCost:       r.LaborCost,
		ActualCost:      r.ActualCost,
		AssignedToID:    r.AssignedToID,
	}
}

// TaskResponse is a project task as returned by the API
type TaskResponse struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	Order        int        `json:"order"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// ToTaskResponse converts a task
func ToTaskResponse(t *crm.Task) TaskResponse {
	return TaskResponse{
		ID: t.ID, Title: t.Title, Description: t.Description, Priority: string(t.Priority),
		Status: string(t.Status), DueDate: t.DueDate, AssignedToID: t.AssignedToID,
		Order: t.Position, CompletedAt: t.CompletedAt,
	}
}

// ProjectResponse is a project as returned by the API
type ProjectResponse struct {
	ID              uuid.UUID        `json:"id"`
	ProjectNumber   string           `json:"projectNumber"`
	ClientID        uuid.UUID        `json:"clientId"`
	Name            string           `json:"name"`
	Description     *string          `json:"description,omitempty"`
	Type            string           `json:"type"`
	Status          string           `json:"status"`
	Priority        string           `json:"priority"`
	SiteAddress     *string          `json:"siteAddress,omitempty"`
	SiteCity        *string          `json:"siteCity,omitempty"`
	StartDate       *time.Time       `json:"startDate,omitempty"`
	ExpectedEndDate *time.Time       `json:"expectedEndDate,omitempty"`
	ActualEndDate   *time.Time       `json:"actualEndDate,omitempty"`
	Specifications  *string          `json:"specifications,omitempty"`
	Materials       *string          `json:"materials,omitempty"`
	EstimatedBudget *decimal.Decimal `json:"estimatedBudget,omitempty"`
	MaterialCost    *decimal.Decimal `json:"materialCost,omitempty"`
	LaborCost       *decimal.Decimal `json:"laborCost,omitempty"`
	ActualCost      *decimal.Decimal `json:"actualCost,omitempty"`
	TotalCost       decimal.Decimal  `json:"totalCost"`
	AssignedToID    *uuid.UUID       `json:"assignedToId,omitempty"`
	LeadID          *uuid.UUID       `json:"leadId,omitempty"`
	Progress        int              `json:"progress"`
	Tasks           []TaskResponse   `json:"tasks"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// ToProjectResponse converts a project with its loaded tasks
func ToProjectResponse(p *crm.Project) ProjectResponse {
	tasks := make([]TaskResponse, len(p.Tasks))
	for i := range p.Tasks {
		tasks[i] = ToTaskResponse(&p.Tasks[i])
	}
	return ProjectResponse{
		ID:              p.ID,
		ProjectNumber:   p.Number,
		ClientID:        p.ClientID,
		Name:            p.Name,
		Description:     p.Description,
		Type:            string(p.Type),
		Status:          string(p.Status),
		Priority:        string(p.Priority),
		SiteAddress:     p.SiteAddress,
		SiteCity:        p.SiteCity,
		StartDate:       p.StartDate,
		ExpectedEndDate: p.ExpectedEndDate,
		ActualEndDate:   p.ActualEndDate,
		Specifications:  p.Specifications,
		Materials:       p.Materials,
		EstimatedBudget: p.EstimatedBudget,
		MaterialCost:    p.MaterialCost,
		LaborCost:       p.LaborCost,
		ActualCost:      p.ActualCost,
		TotalCost:       p.TotalCost(),
		AssignedToID:    p.AssignedToID,
		LeadID:          p.LeadID,
		Progress:        p.Progress(),
		Tasks:           tasks,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ProjectListRequest carries the project listing query
type ProjectListRequest struct {
	Page         int        `form:"page"`
	Limit        int        `form:"limit"`
	ClientID     *uuid.UUID `form:"clientId"`
	Status       string     `form:"status"`
	Type         string     `form:"type"`
	Priority     string     `form:"priority"`
	AssignedToID *uuid.UUID `form:"assignedToId"`
	Search       string     `form:"search"`
	SortBy       string     `form:"sortBy"`
	SortOrder    string     `form:"sortOrder"`
}

// TaskRequest is the body of task create and update
type TaskRequest struct {
	Title        string     `json:"title" binding:"required,max=200"`
	Description  *string    `json:"description"`
	Priority     string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status       string     `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	DueDate      *time.Time `json:"dueDate"`
	AssignedToID *uuid.UUID `json:"assignedToId"`
	Order        *int       `json:"order"`
}

func (r TaskRequest) params() crm.TaskParams {
	return crm.TaskParams{
		Title:        r.Title,
		Description:  r.Description,
		Priority:     crm.Priority(r.Priority),
		Status:       crm.TaskStatus(r.Status),
		DueDate:      r.DueDate,
		AssignedToID: r.AssignedToID,
		Position:     r.Order,
	}
}

// ReorderRequest lists task IDs in their new order
type ReorderRequest struct {
	TaskIDs []uuid.UUID `json:"taskIds" binding:"required,min=1"`
}

// ChecklistRequest adds or edits a checklist line
type ChecklistRequest struct {
	Item    string  `json:"item" binding:"required,max=300"`
	Checked *bool   `json:"checked"`
	Notes   *string `json:"notes"`
}

// JournalRequest adds a journal entry
type JournalRequest struct {
	Title   *string    `json:"title" binding:"omitempty,max=200"`
	Content string     `json:"content" binding:"required"`
	Date    *time.Time `json:"date"`
}

// MediaRequest attaches an uploaded file
type MediaRequest struct {
	URL         string  `json:"url" binding:"required"`
	Filename    string  `json:"filename" binding:"required,max=255"`
	Type        string  `json:"type" binding:"required,oneof=IMAGE VIDEO DOCUMENT PLAN"`
	Tag         string  `json:"tag" binding:"omitempty,oneof=BEFORE DURING AFTER PLAN SIGNATURE CONTRACT OTHER"`
	Description *string `json:"description"`
}

// ProjectDetails is a project with all its work items
type ProjectDetails struct {
	ProjectResponse
	Checklist []crm.ChecklistItem `json:"checklist"`
	Journal   []crm.JournalEntry  `json:"journal"`
	Media     []crm.Media         `json:"media"`
}

// AppointmentRequest is the body of appointment create and update
type AppointmentRequest struct {
	Title        string     `json:"title" binding:"required,max=200"`
	Description  *string    `json:"description"`
	Type         string     `json:"type" binding:"required,oneof=VISIT MEASURE DELIVERY INSTALLATION MEETING FOLLOW_UP"`
	Status       string     `json:"status" binding:"omitempty,oneof=SCHEDULED CONFIRMED IN_PROGRESS COMPLETED CANCELLED NO_SHOW"`
	StartDate    time.Time  `json:"startDate" binding:"required"`
	EndDate      time.Time  `json:"endDate" binding:"required"`
	Location     *string    `json:"location"`
	LeadID       *uuid.UUID `json:"leadId"`
	ClientID     *uuid.UUID `json:"clientId"`
	ProjectID    *uuid.UUID `json:"projectId"`
	AssignedToID *uuid.UUID `json:"assignedTo"`
	Notes        *string    `json:"notes"`
}

func (r AppointmentRequest) params() crm.AppointmentParams {
	return crm.AppointmentParams{
		Title:        r.Title,
		Description:  r.Description,
		Type:         crm.AppointmentType(r.Type),
		Status:       crm.AppointmentStatus(r.Status),
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Location:     r.Location,
		LeadID:       r.LeadID,
		ClientID:     r.ClientID,
		ProjectID:    r.ProjectID,
		AssignedToID: r.AssignedToID,
		Notes:        r.Notes,
	}
}

// AppointmentResponse is an appointment as returned by the API
type AppointmentResponse struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      time.Time  `json:"endDate"`
	Location     *string    `json:"location,omitempty"`
	LeadID       *uuid.UUID `json:"leadId,omitempty"`
	ClientID     *uuid.UUID `json:"clientId,omitempty"`
	ProjectID    *uuid.UUID `json:"projectId,omitempty"`
	AssignedToID *uuid.UUID `json:"assignedTo,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ToAppointmentResponse converts an appointment
func ToAppointmentResponse(a *crm.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID: a.ID, Title: a.Title, Description: a.Description, Type: string(a.Type),
		Status: string(a.Status), StartDate: a.StartDate, EndDate: a.EndDate, Location: a.Location,
		LeadID: a.LeadID, ClientID: a.ClientID, ProjectID: a.ProjectID, AssignedToID: a.AssignedToID,
		Notes: a.Notes, CreatedAt: a.CreatedAt,
	}
}

// AppointmentListRequest carries the calendar query
type AppointmentListRequest struct {
	Page         int        `form:"page"`
	Limit        int        `form:"limit"`
	Type         string     `form:"type"`
	Status       string     `form:"status"`
	LeadID       *uuid.UUID `form:"leadId"`
	ClientID     *uuid.UUID `form:"clientId"`
	ProjectID    *uuid.UUID `form:"projectId"`
	AssignedToID *uuid.UUID `form:"assignedTo"`
	StartDate    *time.Time `form:"startDate" time_format:"2006-01-02"`
	EndDate      *time.Time `form:"endDate" time_format:"2006-01-02"`
	Search       string     `form:"search"`
}

// StatusRequest changes a status
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}
