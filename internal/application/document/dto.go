package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/shopspring/decimal"
)

// ItemRequest is one line of a create or update request
type ItemRequest struct {
	CatalogItemID   *uuid.UUID      `json:"catalogItemId"`
	Reference       string          `json:"reference" binding:"max=100"`
	Designation     string          `json:"designation" binding:"required,max=500"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit" binding:"max=20"`
	UnitPriceHT     decimal.Decimal `json:"unitPriceHT"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TVARate         *int            `json:"tvaRate" binding:"omitempty,oneof=0 7 10 14 20"`
}

// ContentRequest is the editable body shared by create and update
type ContentRequest struct {
	ClientID        uuid.UUID       `json:"clientId" binding:"required"`
	ClientName      string          `json:"clientName" binding:"max=200"`
	ClientPhone     string          `json:"clientPhone" binding:"max=50"`
	ClientEmail     string          `json:"clientEmail" binding:"omitempty,email"`
	ClientAddress   string          `json:"clientAddress"`
	ClientCity      string          `json:"clientCity" binding:"max=100"`
	ClientICE       string          `json:"clientIce" binding:"max=20"`
	ProjectID       *uuid.UUID      `json:"projectId"`
	Date            *time.Time      `json:"date"`
	DueDate         *time.Time      `json:"dueDate"`
	ValidUntil      *time.Time      `json:"validUntil"`
	DeliveryDate    *time.Time      `json:"deliveryDate"`
	DeliveryAddress string          `json:"deliveryAddress"`
	DeliveryCity    string          `json:"deliveryCity"`
	DeliveryNotes   string          `json:"deliveryNotes"`
	DiscountType    string          `json:"discountType" binding:"omitempty,oneof=PERCENTAGE FIXED"`
	DiscountValue   decimal.Decimal `json:"discountValue"`
	DepositPercent  decimal.Decimal `json:"depositPercent"`
	DeliveryTime    string          `json:"deliveryTime"`
	Includes        []string        `json:"includes"`
	Excludes        []string        `json:"excludes"`
	Conditions      string          `json:"conditions"`
	PaymentTerms    string          `json:"paymentTerms"`
	InternalNotes   string          `json:"internalNotes"`
	PublicNotes     string          `json:"notes"`
	FooterText      string          `json:"footerText"`
	ReceptionDate   *time.Time      `json:"receptionDate"`
	SignedBy        string          `json:"signedBy"`
	WorkDescription string          `json:"workDescription"`
	HasReserves     bool            `json:"hasReserves"`
	Reserves        string          `json:"reserves"`
	ReceivedBy      string          `json:"receivedBy"`
	AvoirReason     string          `json:"avoirReason"`
	Items           []ItemRequest   `json:"items" binding:"dive"`
}

// CreateDocumentRequest creates a document
type CreateDocumentRequest struct {
	Type string `json:"type" binding:"required,oneof=DEVIS BON_COMMANDE BON_LIVRAISON PV_RECEPTION FACTURE FACTURE_ACOMPTE AVOIR"`
	ContentRequest
	ParentID *uuid.UUID `json:"parentId"`
	// IssueImmediately numbers and locks the document right away
	IssueImmediately bool `json:"issueImmediately"`
}

// UpdateDocumentRequest replaces the editable content of a draft
type UpdateDocumentRequest struct {
	ContentRequest
}

// ListDocumentsRequest are the list query parameters
type ListDocumentsRequest struct {
	Page      int        `form:"page" binding:"omitempty,min=1"`
	Limit     int        `form:"limit" binding:"omitempty,min=1,max=200"`
	Type      string     `form:"type"`
	Status    string     `form:"status"`
	ClientID  *uuid.UUID `form:"clientId"`
	ProjectID *uuid.UUID `form:"projectId"`
	Search    string     `form:"search"`
	DateFrom  *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo    *time.Time `form:"dateTo" time_format:"2006-01-02"`
}

// ChangeStatusRequest moves a document in the status machine
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// UnlockRequest unlocks an issued document
type UnlockRequest struct {
	Reason string `json:"reason"`
}

// IssueManyRequest issues several drafts
type IssueManyRequest struct {
	DocumentIDs []uuid.UUID `json:"documentIds" binding:"required,min=1,max=100"`
}

// ConvertLineRequest selects a source line
type ConvertLineRequest struct {
	ItemID   uuid.UUID       `json:"itemId" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ConvertRequest converts a document to the next type of the flow
type ConvertRequest struct {
	TargetType      string               `json:"targetType" binding:"required"`
	Items           []ConvertLineRequest `json:"items" binding:"dive"`
	DeliveryDate    *time.Time           `json:"deliveryDate"`
	DeliveryAddress string               `json:"deliveryAddress"`
	DeliveryCity    string               `json:"deliveryCity"`
	DeliveryNotes   string               `json:"deliveryNotes"`
	DueDate         *time.Time           `json:"dueDate"`
	AvoirReason     string               `json:"avoirReason"`
}

// DepositInvoiceRequest raises a deposit invoice on a devis
type DepositInvoiceRequest struct {
	Percent *decimal.Decimal `json:"depositPercent"`
	Amount  *decimal.Decimal `json:"depositAmount"`
	DueDate *time.Time       `json:"dueDate"`
	Notes   string           `json:"notes"`
}

// FinalInvoiceRequest closes a BC, BL or PV with an invoice
type FinalInvoiceRequest struct {
	DueDate *time.Time `json:"dueDate"`
	Notes   string     `json:"notes"`
}

// ApplyDepositsRequest deducts deposit invoices from a final invoice
type ApplyDepositsRequest struct {
	DepositInvoiceIDs []uuid.UUID `json:"depositInvoiceIds" binding:"required,min=1"`
}

// PartialDeliveryRequest delivers part of a bon de commande
type PartialDeliveryRequest struct {
	Items        []document.DeliveryLine `json:"items" binding:"required,min=1"`
	DeliveryDate *time.Time              `json:"deliveryDate"`
	Address      string                  `json:"deliveryAddress"`
	City         string                  `json:"deliveryCity"`
	Notes        string                  `json:"notes"`
	ReceivedBy   string                  `json:"receivedBy"`
}

// RecordPaymentRequest records a payment on an invoice
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Date      *time.Time      `json:"date"`
	Method    string          `json:"method" binding:"required,oneof=CASH CHECK BANK_TRANSFER CARD MOBILE OTHER"`
	Reference string          `json:"reference" binding:"max=100"`
	Notes     string          `json:"notes"`
}

// ItemResponse is the API view of a line
type ItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	CatalogItemID     *uuid.UUID      `json:"catalogItemId,omitempty"`
	SourceItemID      *uuid.UUID      `json:"sourceItemId,omitempty"`
	Reference         string          `json:"reference,omitempty"`
	Designation       string          `json:"designation"`
	Description       string          `json:"description,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	Unit              string          `json:"unit"`
	UnitPriceHT       decimal.Decimal `json:"unitPriceHT"`
	DiscountPercent   decimal.Decimal `json:"discountPercent"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	TVARate           int             `json:"tvaRate"`
	TotalHT           decimal.Decimal `json:"totalHT"`
	TotalTVA          decimal.Decimal `json:"totalTVA"`
	TotalTTC          decimal.Decimal `json:"totalTTC"`
	OrderedQty        decimal.Decimal `json:"orderedQty"`
	DeliveredQty      decimal.Decimal `json:"deliveredQty"`
	TotalDeliveredQty decimal.Decimal `json:"totalDeliveredQty"`
	RemainingQty      decimal.Decimal `json:"remainingQty"`
	Order             int             `json:"order"`
}

// DocumentResponse is the API view of a document
type DocumentResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	TypeLabel   string     `json:"typeLabel"`
	Number      string     `json:"number"`
	DraftNumber string     `json:"draftNumber,omitempty"`
	IsDraft     bool       `json:"isDraft"`
	IsLocked    bool       `json:"isLocked"`
	Status      string     `json:"status"`
	ClientID    uuid.UUID  `json:"clientId"`
	ClientName  string     `json:"clientName"`
	ClientPhone string     `json:"clientPhone,omitempty"`
	ClientEmail string     `json:"clientEmail,omitempty"`
	ClientAddr  string     `json:"clientAddress,omitempty"`
	ClientCity  string     `json:"clientCity,omitempty"`
	ClientICE   string     `json:"clientIce,omitempty"`
	ProjectID   *uuid.UUID `json:"projectId,omitempty"`
	ParentID    *uuid.UUID `json:"parentId,omitempty"`
	DevisRef    string     `json:"devisRef,omitempty"`
	BCRef       string     `json:"bcRef,omitempty"`
	BLRef       string     `json:"blRef,omitempty"`
	PVRef       string     `json:"pvRef,omitempty"`
	FactureRef  string     `json:"factureRef,omitempty"`

	Date            time.Time  `json:"date"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	ValidUntil      *time.Time `json:"validUntil,omitempty"`
	DeliveryDate    *time.Time `json:"deliveryDate,omitempty"`
	DeliveryAddress string     `json:"deliveryAddress,omitempty"`
	DeliveryCity    string     `json:"deliveryCity,omitempty"`
	DeliveryNotes   string     `json:"deliveryNotes,omitempty"`

	DiscountType   string                       `json:"discountType,omitempty"`
	DiscountValue  decimal.Decimal              `json:"discountValue"`
	SubtotalHT     decimal.Decimal              `json:"subtotalHT"`
	DiscountAmount decimal.Decimal              `json:"discountAmount"`
	TotalHT        decimal.Decimal              `json:"totalHT"`
	TotalTVA       decimal.Decimal              `json:"totalTVA"`
	TotalTTC       decimal.Decimal              `json:"totalTTC"`
	PaidAmount     decimal.Decimal              `json:"paidAmount"`
	Balance        decimal.Decimal              `json:"balance"`
	AmountInWords  string                       `json:"amountInWords"`
	VATBreakdown   []document.VATBreakdownEntry `json:"vatBreakdown"`

	DepositPercent       decimal.Decimal `json:"depositPercent"`
	DepositAmount        decimal.Decimal `json:"depositAmount"`
	IsDepositInvoice     bool            `json:"isDepositInvoice"`
	LinkedDevisID        *uuid.UUID      `json:"linkedDevisId,omitempty"`
	DepositInvoiceID     *uuid.UUID      `json:"depositInvoiceId,omitempty"`
	AppliedDepositIDs    []uuid.UUID     `json:"appliedDepositIds,omitempty"`
	TotalDepositsApplied decimal.Decimal `json:"totalDepositsApplied"`
	AmountDue            decimal.Decimal `json:"amountDue"`

	DeliveryTime    string   `json:"deliveryTime,omitempty"`
	Includes        []string `json:"includes,omitempty"`
	Excludes        []string `json:"excludes,omitempty"`
	Conditions      string   `json:"conditions,omitempty"`
	PaymentTerms    string   `json:"paymentTerms,omitempty"`
	InternalNotes   string   `json:"internalNotes,omitempty"`
	PublicNotes     string   `json:"notes,omitempty"`
	FooterText      string   `json:"footerText,omitempty"`
	ReceptionDate   *time.Time `json:"receptionDate,omitempty"`
	SignedBy        string     `json:"signedBy,omitempty"`
	WorkDescription string     `json:"workDescription,omitempty"`
	HasReserves     bool       `json:"hasReserves"`
	Reserves        string     `json:"reserves,omitempty"`
	ReceivedBy      string     `json:"receivedBy,omitempty"`
	AvoirReason     string     `json:"avoirReason,omitempty"`

	SentAt             *time.Time `json:"sentAt,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmedAt,omitempty"`
	PaidAt             *time.Time `json:"paidAt,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
	IssuedAt           *time.Time `json:"issuedAt,omitempty"`
	IssuedByID         *uuid.UUID `json:"issuedById,omitempty"`
	DocumentHash       string     `json:"documentHash,omitempty"`
	ArchivedPdfHash    string     `json:"archivedPdfHash,omitempty"`
	ArchivedPdfURL     string     `json:"archivedPdfUrl,omitempty"`
	ArchivedAt         *time.Time `json:"archivedAt,omitempty"`

	CreatedByID *uuid.UUID     `json:"createdById,omitempty"`
	Items       []ItemResponse `json:"items"`
	CanEdit     bool           `json:"canEdit"`
	EditReason  string         `json:"editReason,omitempty"`
	Version     int            `json:"version"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// DocumentListItem is the light view used in listings
type DocumentListItem struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Number     string          `json:"number"`
	IsDraft    bool            `json:"isDraft"`
	IsLocked   bool            `json:"isLocked"`
	Status     string          `json:"status"`
	ClientID   uuid.UUID       `json:"clientId"`
	ClientName string          `json:"clientName"`
	ProjectID  *uuid.UUID      `json:"projectId,omitempty"`
	Date       time.Time       `json:"date"`
	DueDate    *time.Time      `json:"dueDate,omitempty"`
	ValidUntil *time.Time      `json:"validUntil,omitempty"`
	TotalTTC   decimal.Decimal `json:"totalTTC"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// IssueResult reports an issued document
type IssueResult struct {
	Document       DocumentResponse `json:"document"`
	PreviousNumber string           `json:"previousNumber"`
	OfficialNumber string           `json:"officialNumber"`
}

// IssueFailure is one document the bulk issue could not process
type IssueFailure struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error"`
}

// IssuedDocument is one document the bulk issue numbered
type IssuedDocument struct {
	ID     uuid.UUID `json:"id"`
	Number string    `json:"number"`
}

// BulkIssueResult is the outcome of IssueMany
type BulkIssueResult struct {
	Successful []IssuedDocument `json:"successful"`
	Failed     []IssueFailure   `json:"failed"`
}

// ConvertResult reports a conversion
type ConvertResult struct {
	Document     DocumentResponse `json:"document"`
	SourceID     uuid.UUID        `json:"sourceId"`
	SourceStatus string           `json:"sourceStatus"`
	Partial      bool             `json:"partial"`
}

// PartialDeliveryResult reports a delivery
type PartialDeliveryResult struct {
	DeliveryNote DocumentResponse          `json:"deliveryNote"`
	BCStatus     string                    `json:"bcStatus"`
	Progress     []document.DeliveryStatus `json:"deliveryStatus"`
	LogID        uuid.UUID                 `json:"deliveryLogId"`
}

// DeliveryLogResponse is one delivery of a BC
type DeliveryLogResponse struct {
	ID         uuid.UUID               `json:"id"`
	BLID       uuid.UUID               `json:"blId"`
	Items      []document.DeliveryLine `json:"items"`
	Date       time.Time               `json:"deliveryDate"`
	ReceivedBy string                  `json:"receivedBy,omitempty"`
	CreatedAt  time.Time               `json:"createdAt"`
}

// PaymentResponse is the API view of a payment
type PaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"paymentNumber"`
	DocumentID  uuid.UUID       `json:"documentId"`
	ClientID    uuid.UUID       `json:"clientId"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedByID *uuid.UUID      `json:"createdById,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// PaymentResult reports a payment and the invoice position after it
type PaymentResult struct {
	Payment        PaymentResponse `json:"payment"`
	DocumentStatus string          `json:"documentStatus"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	Balance        decimal.Decimal `json:"balance"`
}

// ToItemResponse converts a line
func ToItemResponse(it document.Item) ItemResponse {
	return ItemResponse{
		ID:                it.ID,
		CatalogItemID:     it.CatalogItemID,
		SourceItemID:      it.SourceItemID,
		Reference:         it.Reference,
		Designation:       it.Designation,
		Description:       it.Description,
		Quantity:          it.Quantity,
		Unit:              it.Unit,
		UnitPriceHT:       it.UnitPriceHT,
		DiscountPercent:   it.DiscountPercent,
		DiscountAmount:    it.DiscountAmount,
		TVARate:           it.TVARate,
		TotalHT:           it.TotalHT,
		TotalTVA:          it.TotalTVA,
		TotalTTC:          it.TotalTTC,
		OrderedQty:        it.OrderedQty,
		DeliveredQty:      it.DeliveredQty,
		TotalDeliveredQty: it.TotalDeliveredQty,
		RemainingQty:      it.RemainingQty,
		Order:             it.Position,
	}
}

// ToDocumentResponse converts a document
func ToDocumentResponse(d *document.Document) DocumentResponse {
	items := make([]ItemResponse, len(d.Items))
	for i, it := range d.Items {
		items[i] = ToItemResponse(it)
	}
	edit := d.CanEdit()
	return DocumentResponse{
		ID:          d.ID,
		Type:        string(d.Type),
		TypeLabel:   d.Type.Label(),
		Number:      d.Number,
		DraftNumber: d.DraftNumber,
		IsDraft:     d.IsDraft,
		IsLocked:    d.IsLocked,
		Status:      string(d.Status),
		ClientID:    d.Client.ID,
		ClientName:  d.Client.Name,
		ClientPhone: d.Client.Phone,
		ClientEmail: d.Client.Email,
		ClientAddr:  d.Client.Address,
		ClientCity:  d.Client.City,
		ClientICE:   d.Client.ICE,
		ProjectID:   d.ProjectID,
		ParentID:    d.ParentID,
		DevisRef:    d.Refs.DevisRef,
		BCRef:       d.Refs.BCRef,
		BLRef:       d.Refs.BLRef,
		PVRef:       d.Refs.PVRef,
		FactureRef:  d.Refs.FactureRef,

		Date:            d.Date,
		DueDate:         d.DueDate,
		ValidUntil:      d.ValidUntil,
		DeliveryDate:    d.Delivery.Date,
		DeliveryAddress: d.Delivery.Address,
		DeliveryCity:    d.Delivery.City,
		DeliveryNotes:   d.Delivery.Notes,

		DiscountType:   string(d.DiscountType),
		DiscountValue:  d.DiscountValue,
		SubtotalHT:     d.SubtotalHT,
		DiscountAmount: d.DiscountAmount,
		TotalHT:        d.TotalHT,
		TotalTVA:       d.TotalTVA,
		TotalTTC:       d.TotalTTC,
		PaidAmount:     d.PaidAmount,
		Balance:        d.Balance,
		AmountInWords:  document.AmountToWordsFR(d.TotalTTC),
		VATBreakdown:   d.VATBreakdown,

		DepositPercent:       d.Deposit.Percent,
		DepositAmount:        d.Deposit.Amount,
		IsDepositInvoice:     d.Deposit.IsDepositInvoice,
		LinkedDevisID:        d.Deposit.LinkedDevisID,
		DepositInvoiceID:     d.Deposit.AppliedToInvoiceID,
		AppliedDepositIDs:    d.Deposit.AppliedDepositIDs,
		TotalDepositsApplied: d.Deposit.TotalApplied,
		AmountDue:            d.Deposit.AmountDue,

		DeliveryTime:    d.Terms.DeliveryTime,
		Includes:        d.Terms.Includes,
		Excludes:        d.Terms.Excludes,
		Conditions:      d.Terms.Conditions,
		PaymentTerms:    d.Terms.PaymentTerms,
		InternalNotes:   d.Terms.InternalNotes,
		PublicNotes:     d.Terms.PublicNotes,
		FooterText:      d.Terms.FooterText,
		ReceptionDate:   d.Reception.Date,
		SignedBy:        d.Reception.SignedBy,
		WorkDescription: d.Reception.WorkDescription,
		HasReserves:     d.Reception.HasReserves,
		Reserves:        d.Reception.Reserves,
		ReceivedBy:      d.Reception.ReceivedBy,
		AvoirReason:     d.AvoirReason,

		SentAt:             d.SentAt,
		ConfirmedAt:        d.ConfirmedAt,
		PaidAt:             d.PaidAt,
		CancelledAt:        d.CancelledAt,
		CancellationReason: d.CancellationReason,
		IssuedAt:           d.IssuedAt,
		IssuedByID:         d.IssuedByID,
		DocumentHash:       d.Archive.DocumentHash,
		ArchivedPdfHash:    d.Archive.PdfHash,
		ArchivedPdfURL:     d.Archive.PdfURL,
		ArchivedAt:         d.Archive.ArchivedAt,

		CreatedByID: d.CreatedByID,
		Items:       items,
		CanEdit:     edit.CanEdit,
		EditReason:  edit.Reason,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// ToDocumentListItem converts a document for listings
func ToDocumentListItem(d *document.Document) DocumentListItem {
	return DocumentListItem{
		ID:         d.ID,
		Type:       string(d.Type),
		Number:     d.Number,
		IsDraft:    d.IsDraft,
		IsLocked:   d.IsLocked,
		Status:     string(d.Status),
		ClientID:   d.Client.ID,
		ClientName: d.Client.Name,
		ProjectID:  d.ProjectID,
		Date:       d.Date,
		DueDate:    d.DueDate,
		ValidUntil: d.ValidUntil,
		TotalTTC:   d.TotalTTC,
		PaidAmount: d.PaidAmount,
		Balance:    d.Balance,
		CreatedAt:  d.CreatedAt,
	}
}

// ToPaymentResponse converts a payment
func ToPaymentResponse(p *document.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		Number:      p.Number,
		DocumentID:  p.DocumentID,
		ClientID:    p.ClientID,
		Amount:      p.Amount,
		Date:        p.Date,
		Method:      string(p.Method),
		Reference:   p.Reference,
		Notes:       p.Notes,
		CreatedByID: p.CreatedByID,
		CreatedAt:   p.CreatedAt,
	}
}

// toContent maps a request body to the domain content
func (r ContentRequest) toContent(now time.Time) document.Content {
	items := make([]document.ItemInput, len(r.Items))
	for i, it := range r.Items {
		items[i] = document.ItemInput{
			CatalogItemID:   it.CatalogItemID,
			Reference:       it.Reference,
			Designation:     it.Designation,
			Description:     it.Description,
			Quantity:        it.Quantity,
			Unit:            it.Unit,
			UnitPriceHT:     it.UnitPriceHT,
			DiscountPercent: it.DiscountPercent,
			TVARate:         it.TVARate,
		}
	}
	date := now
	if r.Date != nil {
		date = *r.Date
	}
	return document.Content{
		Client: document.ClientSnapshot{
			ID:      r.ClientID,
			Name:    r.ClientName,
			Phone:   r.ClientPhone,
			Email:   r.ClientEmail,
			Address: r.ClientAddress,
			City:    r.ClientCity,
			ICE:     r.ClientICE,
		},
		ProjectID:  r.ProjectID,
		Date:       date,
		DueDate:    r.DueDate,
		ValidUntil: r.ValidUntil,
		Delivery: document.Delivery{
			Date:    r.DeliveryDate,
			Address: r.DeliveryAddress,
			City:    r.DeliveryCity,
			Notes:   r.DeliveryNotes,
		},
		DiscountType:   document.DiscountType(r.DiscountType),
		DiscountValue:  r.DiscountValue,
		DepositPercent: r.DepositPercent,
		Terms: document.Terms{
			DeliveryTime:  r.DeliveryTime,
			Includes:      r.Includes,
			Excludes:      r.Excludes,
			Conditions:    r.Conditions,
			PaymentTerms:  r.PaymentTerms,
			InternalNotes: r.InternalNotes,
			PublicNotes:   r.PublicNotes,
			FooterText:    r.FooterText,
		},
		Reception: document.Reception{
			Date:            r.ReceptionDate,
			SignedBy:        r.SignedBy,
			WorkDescription: r.WorkDescription,
			HasReserves:     r.HasReserves,
			Reserves:        r.Reserves,
			ReceivedBy:      r.ReceivedBy,
		},
		AvoirReason: r.AvoirReason,
		Items:       items,
	}
}
