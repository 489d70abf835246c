package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	documentapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// DocumentHandler handles CRM documents: devis, bons, factures and avoirs
type DocumentHandler struct {
	BaseHandler
	documents *documentapp.DocumentService
	payments  *documentapp.PaymentService
	sequences *documentapp.SequenceService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documents *documentapp.DocumentService, payments *documentapp.PaymentService, sequences *documentapp.SequenceService) *DocumentHandler {
	return &DocumentHandler{documents: documents, payments: payments, sequences: sequences}
}

// LockRequest locks an issued document
type LockRequest struct {
	Reason string `json:"reason"`
}

// DocumentRoutes creates the route group for documents, payments and numbering
func DocumentRoutes(h *DocumentHandler) *router.DomainGroup {
	write := middleware.RequireAdminAccess()
	g := router.NewDomainGroup("documents", "/crm")

	g.GET("/documents", h.List)
	g.POST("/documents", write, h.Create)
	g.POST("/documents/issue", write, h.IssueMany)
	g.GET("/documents/:id", h.Get)
	g.PUT("/documents/:id", write, h.Update)
	g.DELETE("/documents/:id", write, h.Delete)

	g.POST("/documents/:id/issue", write, h.Issue)
	g.PUT("/documents/:id/status", write, h.ChangeStatus)
	g.POST("/documents/:id/convert", write, h.Convert)
	g.POST("/documents/:id/deposit-invoice", write, h.CreateDepositInvoice)
	g.GET("/documents/:id/deposits", h.DepositSummary)
	g.POST("/documents/:id/final-invoice", write, h.CreateFinalInvoice)
	g.POST("/documents/:id/apply-deposits", write, h.ApplyDeposits)
	g.DELETE("/documents/:id/apply-deposits", write, h.RemoveDeposits)
	g.POST("/documents/:id/partial-delivery", write, h.DeliverPartially)
	g.GET("/documents/:id/deliveries", h.DeliveryLogs)

	g.GET("/documents/:id/lock-status", h.LockStatus)
	g.GET("/documents/:id/can-edit", h.CanEdit)
	g.POST("/documents/:id/lock", write, h.Lock)
	g.POST("/documents/:id/unlock", middleware.RequireRole(identity.RoleAdmin), h.Unlock)
	g.GET("/documents/:id/integrity", h.VerifyIntegrity)
	g.GET("/documents/:id/verify-totals", h.VerifyTotals)
	g.GET("/documents/:id/history", h.History)
	g.GET("/documents/:id/pdf", h.PDF)

	g.GET("/documents/:id/payments", h.ListPayments)
	g.POST("/documents/:id/payments", write, h.RecordPayment)
	g.GET("/payments/:id", h.GetPayment)
	g.DELETE("/payments/:id", write, h.DeletePayment)

	g.GET("/sequences", h.SequenceHealth)
	g.GET("/sequences/preview/:type", h.PreviewNumber)
	g.GET("/sequences/validate/:number", h.ValidateNumber)
	return g
}

// List godoc
// @Summary      List documents
// @Description  Paginated documents, newest first, filtered by type, status, client, project, search and date range
// @Tags         documents
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(20)
// @Param        type query string false "Document type"
// @Param        status query string false "Document status"
// @Param        clientId query string false "Client ID"
// @Param        search query string false "Number or client name"
// @Success      200 {object} APIResponse[[]documentapp.DocumentListItem]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	var req documentapp.ListDocumentsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.documents.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Create godoc
// @Summary      Create a document
// @Description  Creates a draft, or issues it at once when issueImmediately is set
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request body documentapp.CreateDocumentRequest true "Document"
// @Success      201 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req documentapp.CreateDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	doc, err := h.documents.Create(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// Get godoc
// @Summary      Get a document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	doc, err := h.documents.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Update godoc
// @Summary      Update a document
// @Description  Rejected with DOCUMENT_LOCKED once the document is issued or locked
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID"
// @Param        request body documentapp.UpdateDocumentRequest true "Document"
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/documents/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req documentapp.UpdateDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	doc, err := h.documents.Update(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Delete godoc
// @Summary      Delete a draft document
// @Tags         documents
// @Param        id path string true "Document ID"
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.documents.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Issue godoc
// @Summary      Issue a draft
// @Description  Assigns the definitive number, computes the hash and archives the PDF
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} APIResponse[documentapp.IssueResult]
// @Security     BearerAuth
// @Router       /crm/documents/{id}/issue [post]
func (h *DocumentHandler) Issue(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.documents.Issue(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// IssueMany godoc
// @Summary      Issue several drafts
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request body documentapp.IssueManyRequest true "Document IDs"
// @Success      200 {object} APIResponse[documentapp.BulkIssueResult]
// @Security     BearerAuth
// @Router       /crm/documents/issue [post]
func (h *DocumentHandler) IssueMany(c *gin.Context) {
	var req documentapp.IssueManyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Success(c, h.documents.IssueMany(c.Request.Context(), req.DocumentIDs, currentUserID(c)))
}

// ChangeStatus godoc
// @Summary      Change the status of a document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID"
// @Param        request body documentapp.ChangeStatusRequest true "Target status"
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/documents/{id}/status [put]
func (h *DocumentHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req documentapp.ChangeStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	doc, err := h.documents.ChangeStatus(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Convert godoc
// @Summary      Convert a document
// @Description  DEVIS→BON_COMMANDE, BON_COMMANDE→BON_LIVRAISON|FACTURE, BON_LIVRAISON→PV_RECEPTION|FACTURE, PV_RECEPTION→FACTURE, FACTURE→AVOIR
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Source document ID"
// @Param        request body documentapp.ConvertRequest true "Conversion"
// @Success      201 {object} APIResponse[documentapp.ConvertResult]
// @Security     BearerAuth
// @Router       /crm/documents/{id}/convert [post]
func (h *DocumentHandler) Convert(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req documentapp.ConvertRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.documents.Convert(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// CreateDepositInvoice godoc
// @Summary      Raise a deposit invoice on an accepted devis
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Devis ID"
// @Param        request body documentapp.DepositInvoiceRequest true "Deposit"
// @Success      201 {object} APIResponse[documentapp.DocumentResponse]
// @Security     BearerAuth
// @Router       /crm/documents/{id}/deposit-invoice [post]
func (h *DocumentHandler) CreateDepositInvoice(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req documentapp.DepositInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	doc, err := h.documents.CreateDepositInvoice(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// DepositSummary godoc
// @Summary      Deposits raised on a devis
// @Tags         documents
// @Produce      json
// @Param        id path string true "Devis ID"
// @Success      200 {object} APIResponse[document.DepositSummary]
// @Security     BearerAuth
// @Router       /crm/documents/{id}/deposits [get]
func (h *DocumentHandler) DepositSummary(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	summary, err := h.documents.DepositSummary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// CreateFinalInvoice godoc
// @Summary      Invoice a bon de commande, bon de livraison or PV
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Source document ID"
// @Param        request body documentapp.FinalInvoiceRequest false "Invoice options"
// @Success      201 {object} APIResponse[documentapp.DocumentResponse]
// @Security     BearerAuth
// @Router       /crm/documents/{id}/final-invoice [post]
func (h *DocumentHandler) CreateFinalInvoice(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req documentapp.FinalInvoiceRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	doc, err := h.documents.CreateFinalInvoice(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// ApplyDeposits godoc
// @Summary      Deduct deposit invoices from a draft final invoice
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body documentapp.ApplyDepositsRequest true "Deposit invoices"
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Security     BearerAuth
// @Router       /crm/documents/{id}/apply-deposits [post]
func (h *DocumentHandler) ApplyDeposits(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req documentapp.ApplyDepositsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	doc, err := h.documents.ApplyDeposits(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// RemoveDeposits godoc
// @Summary      Remove applied deposits from a draft final invoice
// @Tags         documents
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Security     BearerAuth
// @Router       /crm/documents/{id}/apply-deposits [delete]
func (h *DocumentHandler) RemoveDeposits(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	doc, err := h.documents.RemoveDeposits(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// DeliverPartially godoc
// @Summary      Deliver part of a bon de commande
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Bon de commande ID"
// @Param        request body documentapp.PartialDeliveryRequest true "Delivered quantities"
// @Success      201 {object} APIResponse[documentapp.PartialDeliveryResult]
// @Security     BearerAuth
// @Router       /crm/documents/{id}/partial-delivery [post]
func (h *DocumentHandler) DeliverPartially(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req documentapp.PartialDeliveryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.documents.DeliverPartially(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// DeliveryLogs lists the partial deliveries of a bon de commande
func (h *DocumentHandler) DeliveryLogs(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	logs, err := h.documents.DeliveryLogs(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, logs)
}

// LockStatus reports whether a document is locked and why
func (h *DocumentHandler) LockStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	status, err := h.documents.LockStatus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// CanEdit reports whether a document may still be modified
func (h *DocumentHandler) CanEdit(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	check, err := h.documents.CanEdit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, check)
}

// Lock godoc
// @Summary      Lock an issued document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID"
// @Param        request body LockRequest false "Reason"
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Security     BearerAuth
// @Router       /crm/documents/{id}/lock [post]
func (h *DocumentHandler) Lock(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req LockRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	doc, err := h.documents.Lock(c.Request.Context(), id, req.Reason, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Unlock godoc
// @Summary      Unlock a document
// @Description  Administrators only; the reason is mandatory and the action is audited as critical
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID"
// @Param        request body documentapp.UnlockRequest true "Reason"
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/documents/{id}/unlock [post]
func (h *DocumentHandler) Unlock(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req documentapp.UnlockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	doc, err := h.documents.Unlock(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// VerifyIntegrity recomputes the hash of an issued document
func (h *DocumentHandler) VerifyIntegrity(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	check, err := h.documents.VerifyIntegrity(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, check)
}

// VerifyTotals recomputes the totals of a document
func (h *DocumentHandler) VerifyTotals(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	check, err := h.documents.VerifyTotals(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, check)
}

// History returns the audit trail of a document
func (h *DocumentHandler) History(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.documents.History(c.Request.Context(), id, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// PDF godoc
// @Summary      Download a document as PDF
// @Tags         documents
// @Produce      application/pdf
// @Param        id path string true "Document ID"
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/documents/{id}/pdf [get]
func (h *DocumentHandler) PDF(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	data, filename, err := h.documents.PDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	attachment(c, filename, "application/pdf", data, c.Query("download") != "")
}

// ListPayments lists the payments of an invoice
func (h *DocumentHandler) ListPayments(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	payments, err := h.payments.ListByDocument(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// RecordPayment godoc
// @Summary      Record a payment on an invoice
// @Description  Only FACTURE and FACTURE_ACOMPTE accept payments; the amount may not exceed the balance
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body documentapp.RecordPaymentRequest true "Payment"
// @Success      201 {object} APIResponse[documentapp.PaymentResult]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/documents/{id}/payments [post]
func (h *DocumentHandler) RecordPayment(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req documentapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.payments.Record(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// GetPayment returns one payment
func (h *DocumentHandler) GetPayment(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.payments.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// DeletePayment godoc
// @Summary      Delete a payment
// @Description  Reverses the payment on its invoice
// @Tags         payments
// @Param        id path string true "Payment ID"
// @Success      204
// @Security     BearerAuth
// @Router       /crm/payments/{id} [delete]
func (h *DocumentHandler) DeletePayment(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.payments.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SequenceHealth reports the counters and numbering gaps of every type
func (h *DocumentHandler) SequenceHealth(c *gin.Context) {
	health, err := h.sequences.Health(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, health)
}

// PreviewNumber returns the next number of a type without consuming it
func (h *DocumentHandler) PreviewNumber(c *gin.Context) {
	number, err := h.sequences.Preview(c.Request.Context(), c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"type": c.Param("type"), "nextNumber": number})
}

// ValidateNumber checks the format of a document number
func (h *DocumentHandler) ValidateNumber(c *gin.Context) {
	h.Success(c, h.sequences.Validate(c.Param("number")))
}

// attachment writes a binary file, inline unless download is set
func attachment(c *gin.Context, filename, contentType string, data []byte, download bool) {
	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
