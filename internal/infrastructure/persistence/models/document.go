package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DocumentModel is the persistence model for the CRM document aggregate root.
type DocumentModel struct {
	AggregateModel
	Type        document.Type   `gorm:"type:varchar(30);not null;index:idx_crm_documents_type_status,priority:1"`
	Number      string          `gorm:"type:varchar(60);not null;uniqueIndex"`
	DraftNumber string          `gorm:"type:varchar(60)"`
	IsDraft     bool            `gorm:"not null"`
	IsLocked    bool            `gorm:"not null;default:false"`
	Status      document.Status `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_crm_documents_type_status,priority:2"`

	ClientID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClientName    string     `gorm:"type:varchar(200);not null"`
	ClientPhone   string     `gorm:"type:varchar(50)"`
	ClientEmail   string     `gorm:"type:varchar(200)"`
	ClientAddress string     `gorm:"type:text"`
	ClientCity    string     `gorm:"type:varchar(100)"`
	ClientICE     string     `gorm:"column:client_ice;type:varchar(20)"`
	ProjectID     *uuid.UUID `gorm:"type:uuid;index"`
	ParentID      *uuid.UUID `gorm:"type:uuid;index"`
	DevisRef      string     `gorm:"type:varchar(60);index"`
	BCRef         string     `gorm:"column:bc_ref;type:varchar(60)"`
	BLRef         string     `gorm:"column:bl_ref;type:varchar(60)"`
	PVRef         string     `gorm:"column:pv_ref;type:varchar(60)"`
	FactureRef    string     `gorm:"type:varchar(60)"`

	Date            time.Time  `gorm:"not null;index"`
	DueDate         *time.Time `gorm:"index"`
	ValidUntil      *time.Time
	DeliveryDate    *time.Time
	DeliveryAddress string `gorm:"type:text"`
	DeliveryCity    string `gorm:"type:varchar(100)"`
	DeliveryNotes   string `gorm:"type:text"`

	DiscountType   string          `gorm:"type:varchar(20)"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	SubtotalHT     decimal.Decimal `gorm:"column:subtotal_ht;type:decimal(14,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalHT        decimal.Decimal `gorm:"column:total_ht;type:decimal(14,2);not null;default:0"`
	TotalTVA       decimal.Decimal `gorm:"column:total_tva;type:decimal(14,2);not null;default:0"`
	TotalTTC       decimal.Decimal `gorm:"column:total_ttc;type:decimal(14,2);not null;default:0"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Balance        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	VATBreakdown   string          `gorm:"column:vat_breakdown;type:jsonb;default:'[]'"`

	DepositPercent       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DepositAmount        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	IsDepositInvoice     bool            `gorm:"not null;default:false"`
	LinkedDevisID        *uuid.UUID      `gorm:"type:uuid;index"`
	DepositInvoiceID     *uuid.UUID      `gorm:"type:uuid;index"`
	AppliedDepositIDs    string          `gorm:"type:jsonb;default:'[]'"`
	TotalDepositsApplied decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	AmountDue            decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	DeliveryTime  string `gorm:"type:varchar(200)"`
	Includes      string `gorm:"type:jsonb;default:'[]'"`
	Excludes      string `gorm:"type:jsonb;default:'[]'"`
	Conditions    string `gorm:"type:text"`
	PaymentTerms  string `gorm:"type:text"`
	InternalNotes string `gorm:"type:text"`
	PublicNotes   string `gorm:"column:notes;type:text"`
	FooterText    string `gorm:"type:text"`

	ReceptionDate   *time.Time
	SignedBy        string `gorm:"type:varchar(200)"`
	WorkDescription string `gorm:"type:text"`
	HasReserves     bool   `gorm:"not null;default:false"`
	Reserves        string `gorm:"type:text"`
	ReceivedBy      string `gorm:"type:varchar(200)"`
	AvoirReason     string `gorm:"type:text"`

	SentAt             *time.Time
	ConfirmedAt        *time.Time
	PaidAt             *time.Time
	CancelledAt        *time.Time
	CancellationReason string `gorm:"type:text"`

	IssuedAt     *time.Time
	IssuedByID   *uuid.UUID `gorm:"type:uuid"`
	DocumentHash string     `gorm:"type:varchar(64)"`
	PdfHash      string     `gorm:"type:varchar(64)"`
	PdfURL       string     `gorm:"column:pdf_url;type:text"`
	ArchivedAt   *time.Time
	CreatedByID  *uuid.UUID `gorm:"type:uuid"`

	PaymentCount int64         `gorm:"not null;default:0"`
	ChildType    document.Type `gorm:"type:varchar(30)"`

	Items []DocumentItemModel `gorm:"foreignKey:DocumentID;references:ID"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "crm_documents"
}

// ToDomain converts the persistence model to a domain Document.
func (m *DocumentModel) ToDomain() *document.Document {
	d := &document.Document{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		Type:        m.Type,
		Number:      m.Number,
		DraftNumber: m.DraftNumber,
		IsDraft:     m.IsDraft,
		IsLocked:    m.IsLocked,
		Status:      m.Status,
		Client: document.ClientSnapshot{
			ID:      m.ClientID,
			Name:    m.ClientName,
			Phone:   m.ClientPhone,
			Email:   m.ClientEmail,
			Address: m.ClientAddress,
			City:    m.ClientCity,
			ICE:     m.ClientICE,
		},
		ProjectID: m.ProjectID,
		ParentID:  m.ParentID,
		Refs: document.References{
			DevisRef:   m.DevisRef,
			BCRef:      m.BCRef,
			BLRef:      m.BLRef,
			PVRef:      m.PVRef,
			FactureRef: m.FactureRef,
		},
		Date:       m.Date,
		DueDate:    m.DueDate,
		ValidUntil: m.ValidUntil,
		Delivery: document.Delivery{
			Date:    m.DeliveryDate,
			Address: m.DeliveryAddress,
			City:    m.DeliveryCity,
			Notes:   m.DeliveryNotes,
		},
		DiscountType:   document.DiscountType(m.DiscountType),
		DiscountValue:  m.DiscountValue,
		SubtotalHT:     m.SubtotalHT,
		DiscountAmount: m.DiscountAmount,
		TotalHT:        m.TotalHT,
		TotalTVA:       m.TotalTVA,
		TotalTTC:       m.TotalTTC,
		PaidAmount:     m.PaidAmount,
		Balance:        m.Balance,
		Deposit: document.Deposit{
			Percent:            m.DepositPercent,
			Amount:             m.DepositAmount,
			IsDepositInvoice:   m.IsDepositInvoice,
			LinkedDevisID:      m.LinkedDevisID,
			AppliedToInvoiceID: m.DepositInvoiceID,
			TotalApplied:       m.TotalDepositsApplied,
			AmountDue:          m.AmountDue,
		},
		Terms: document.Terms{
			DeliveryTime:  m.DeliveryTime,
			Conditions:    m.Conditions,
			PaymentTerms:  m.PaymentTerms,
			InternalNotes: m.InternalNotes,
			PublicNotes:   m.PublicNotes,
			FooterText:    m.FooterText,
		},
		Reception: document.Reception{
			Date:            m.ReceptionDate,
			SignedBy:        m.SignedBy,
			WorkDescription: m.WorkDescription,
			HasReserves:     m.HasReserves,
			Reserves:        m.Reserves,
			ReceivedBy:      m.ReceivedBy,
		},
		AvoirReason:        m.AvoirReason,
		SentAt:             m.SentAt,
		ConfirmedAt:        m.ConfirmedAt,
		PaidAt:             m.PaidAt,
		CancelledAt:        m.CancelledAt,
		CancellationReason: m.CancellationReason,
		IssuedAt:           m.IssuedAt,
		IssuedByID:         m.IssuedByID,
		Archive: document.Archive{
			DocumentHash: m.DocumentHash,
			PdfHash:      m.PdfHash,
			PdfURL:       m.PdfURL,
			ArchivedAt:   m.ArchivedAt,
		},
		CreatedByID:  m.CreatedByID,
		PaymentCount: m.PaymentCount,
		ChildType:    m.ChildType,
		Items:        make([]document.Item, len(m.Items)),
	}
	decodeJSON(m.VATBreakdown, &d.VATBreakdown, "vat_breakdown", m.Number)
	decodeJSON(m.AppliedDepositIDs, &d.Deposit.AppliedDepositIDs, "applied_deposit_ids", m.Number)
	decodeJSON(m.Includes, &d.Terms.Includes, "includes", m.Number)
	decodeJSON(m.Excludes, &d.Terms.Excludes, "excludes", m.Number)
	for i := range m.Items {
		d.Items[i] = m.Items[i].ToDomain()
	}
	return d
}

// FromDomain populates the persistence model from a domain Document.
func (m *DocumentModel) FromDomain(d *document.Document) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.Type = d.Type
	m.Number = d.Number
	m.DraftNumber = d.DraftNumber
	m.IsDraft = d.IsDraft
	m.IsLocked = d.IsLocked
	m.Status = d.Status
	m.ClientID = d.Client.ID
	m.ClientName = d.Client.Name
	m.ClientPhone = d.Client.Phone
	m.ClientEmail = d.Client.Email
	m.ClientAddress = d.Client.Address
	m.ClientCity = d.Client.City
	m.ClientICE = d.Client.ICE
	m.ProjectID = d.ProjectID
	m.ParentID = d.ParentID
	m.DevisRef = d.Refs.DevisRef
	m.BCRef = d.Refs.BCRef
	m.BLRef = d.Refs.BLRef
	m.PVRef = d.Refs.PVRef
	m.FactureRef = d.Refs.FactureRef
	m.Date = d.Date
	m.DueDate = d.DueDate
	m.ValidUntil = d.ValidUntil
	m.DeliveryDate = d.Delivery.Date
	m.DeliveryAddress = d.Delivery.Address
	m.DeliveryCity = d.Delivery.City
	m.DeliveryNotes = d.Delivery.Notes
	m.DiscountType = string(d.DiscountType)
	m.DiscountValue = d.DiscountValue
	m.SubtotalHT = d.SubtotalHT
	m.DiscountAmount = d.DiscountAmount
	m.TotalHT = d.TotalHT
	m.TotalTVA = d.TotalTVA
	m.TotalTTC = d.TotalTTC
	m.PaidAmount = d.PaidAmount
	m.Balance = d.Balance
	m.VATBreakdown = encodeJSON(d.VATBreakdown, "[]")
	m.DepositPercent = d.Deposit.Percent
	m.DepositAmount = d.Deposit.Amount
	m.IsDepositInvoice = d.Deposit.IsDepositInvoice
	m.LinkedDevisID = d.Deposit.LinkedDevisID
	m.DepositInvoiceID = d.Deposit.AppliedToInvoiceID
	m.AppliedDepositIDs = encodeJSON(d.Deposit.AppliedDepositIDs, "[]")
	m.TotalDepositsApplied = d.Deposit.TotalApplied
	m.AmountDue = d.Deposit.AmountDue
	m.DeliveryTime = d.Terms.DeliveryTime
	m.Includes = encodeJSON(d.Terms.Includes, "[]")
	m.Excludes = encodeJSON(d.Terms.Excludes, "[]")
	m.Conditions = d.Terms.Conditions
	m.PaymentTerms = d.Terms.PaymentTerms
	m.InternalNotes = d.Terms.InternalNotes
	m.PublicNotes = d.Terms.PublicNotes
	m.FooterText = d.Terms.FooterText
	m.ReceptionDate = d.Reception.Date
	m.SignedBy = d.Reception.SignedBy
	m.WorkDescription = d.Reception.WorkDescription
	m.HasReserves = d.Reception.HasReserves
	m.Reserves = d.Reception.Reserves
	m.ReceivedBy = d.Reception.ReceivedBy
	m.AvoirReason = d.AvoirReason
	m.SentAt = d.SentAt
	m.ConfirmedAt = d.ConfirmedAt
	m.PaidAt = d.PaidAt
	m.CancelledAt = d.CancelledAt
	m.CancellationReason = d.CancellationReason
	m.IssuedAt = d.IssuedAt
	m.IssuedByID = d.IssuedByID
	m.DocumentHash = d.Archive.DocumentHash
	m.PdfHash = d.Archive.PdfHash
	m.PdfURL = d.Archive.PdfURL
	m.ArchivedAt = d.Archive.ArchivedAt
	m.CreatedByID = d.CreatedByID
	m.PaymentCount = d.PaymentCount
	m.ChildType = d.ChildType

	m.Items = make([]DocumentItemModel, len(d.Items))
	for i := range d.Items {
		m.Items[i].FromDomain(d.ID, d.Items[i])
	}
}

// DocumentModelFromDomain creates a new persistence model from a domain Document.
func DocumentModelFromDomain(d *document.Document) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(d)
	return m
}

// DocumentItemModel is one priced line of a document.
type DocumentItemModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocumentID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	CatalogItemID     *uuid.UUID      `gorm:"type:uuid;index"`
	SourceItemID      *uuid.UUID      `gorm:"type:uuid"`
	Reference         string          `gorm:"type:varchar(100)"`
	Designation       string          `gorm:"type:varchar(500);not null"`
	Description       string          `gorm:"type:text"`
	Quantity          decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	Unit              string          `gorm:"type:varchar(20)"`
	UnitPriceHT       decimal.Decimal `gorm:"column:unit_price_ht;type:decimal(14,2);not null"`
	DiscountPercent   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TVARate           int             `gorm:"column:tva_rate;not null;default:20"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalHT           decimal.Decimal `gorm:"column:total_ht;type:decimal(14,2);not null;default:0"`
	TotalTVA          decimal.Decimal `gorm:"column:total_tva;type:decimal(14,2);not null;default:0"`
	TotalTTC          decimal.Decimal `gorm:"column:total_ttc;type:decimal(14,2);not null;default:0"`
	OrderedQty        decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	DeliveredQty      decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	TotalDeliveredQty decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	RemainingQty      decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	Position          int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentItemModel) TableName() string {
	return "crm_document_items"
}

// ToDomain converts the line model to a domain Item.
func (m *DocumentItemModel) ToDomain() document.Item {
	return document.Item{
		ID:                m.ID,
		CatalogItemID:     m.CatalogItemID,
		SourceItemID:      m.SourceItemID,
		Reference:         m.Reference,
		Designation:       m.Designation,
		Description:       m.Description,
		Quantity:          m.Quantity,
		Unit:              m.Unit,
		UnitPriceHT:       m.UnitPriceHT,
		DiscountPercent:   m.DiscountPercent,
		TVARate:           m.TVARate,
		DiscountAmount:    m.DiscountAmount,
		TotalHT:           m.TotalHT,
		TotalTVA:          m.TotalTVA,
		TotalTTC:          m.TotalTTC,
		OrderedQty:        m.OrderedQty,
		DeliveredQty:      m.DeliveredQty,
		TotalDeliveredQty: m.TotalDeliveredQty,
		RemainingQty:      m.RemainingQty,
		Position:          m.Position,
	}
}

// FromDomain populates the line model.
func (m *DocumentItemModel) FromDomain(documentID uuid.UUID, it document.Item) {
	m.ID = it.ID
	m.DocumentID = documentID
	m.CatalogItemID = it.CatalogItemID
	m.SourceItemID = it.SourceItemID
	m.Reference = it.Reference
	m.Designation = it.Designation
	m.Description = it.Description
	m.Quantity = it.Quantity
	m.Unit = it.Unit
	m.UnitPriceHT = it.UnitPriceHT
	m.DiscountPercent = it.DiscountPercent
	m.TVARate = it.TVARate
	m.DiscountAmount = it.DiscountAmount
	m.TotalHT = it.TotalHT
	m.TotalTVA = it.TotalTVA
	m.TotalTTC = it.TotalTTC
	m.OrderedQty = it.OrderedQty
	m.DeliveredQty = it.DeliveredQty
	m.TotalDeliveredQty = it.TotalDeliveredQty
	m.RemainingQty = it.RemainingQty
	m.Position = it.Position
}

// PaymentModel is the persistence model for a client payment.
type PaymentModel struct {
	BaseModel
	Number      string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Date        time.Time       `gorm:"column:payment_date;not null;index"`
	Method      string          `gorm:"type:varchar(20);not null"`
	Reference   string          `gorm:"type:varchar(100)"`
	Notes       string          `gorm:"type:text"`
	CreatedByID *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "crm_payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *document.Payment {
	return &document.Payment{
		BaseEntity:  m.BaseModel.ToDomain(),
		Number:      m.Number,
		DocumentID:  m.DocumentID,
		ClientID:    m.ClientID,
		Amount:      m.Amount,
		Date:        m.Date,
		Method:      document.PaymentMethod(m.Method),
		Reference:   m.Reference,
		Notes:       m.Notes,
		CreatedByID: m.CreatedByID,
	}
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *document.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Number = p.Number
	m.DocumentID = p.DocumentID
	m.ClientID = p.ClientID
	m.Amount = p.Amount
	m.Date = p.Date
	m.Method = string(p.Method)
	m.Reference = p.Reference
	m.Notes = p.Notes
	m.CreatedByID = p.CreatedByID
}

// DeliveryLogModel records one partial delivery of a bon de commande.
type DeliveryLogModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	BCID       uuid.UUID  `gorm:"column:bc_id;type:uuid;not null;index"`
	BLID       uuid.UUID  `gorm:"column:bl_id;type:uuid;not null"`
	Lines      string     `gorm:"column:items;type:jsonb;not null"`
	Date       time.Time  `gorm:"column:delivery_date;not null"`
	ReceivedBy string     `gorm:"type:varchar(200)"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeliveryLogModel) TableName() string {
	return "crm_delivery_logs"
}

// ToDomain converts the persistence model to a domain DeliveryLog.
func (m *DeliveryLogModel) ToDomain() document.DeliveryLog {
	log := document.DeliveryLog{
		ID:         m.ID,
		BCID:       m.BCID,
		BLID:       m.BLID,
		Date:       m.Date,
		ReceivedBy: m.ReceivedBy,
		CreatedBy:  m.CreatedBy,
		CreatedAt:  m.CreatedAt,
	}
	decodeJSON(m.Lines, &log.Lines, "items", m.ID.String())
	return log
}

// FromDomain populates the persistence model from a domain DeliveryLog.
func (m *DeliveryLogModel) FromDomain(l *document.DeliveryLog) {
	m.ID = l.ID
	m.BCID = l.BCID
	m.BLID = l.BLID
	m.Lines = encodeJSON(l.Lines, "[]")
	m.Date = l.Date
	m.ReceivedBy = l.ReceivedBy
	m.CreatedBy = l.CreatedBy
	m.CreatedAt = l.CreatedAt
}
