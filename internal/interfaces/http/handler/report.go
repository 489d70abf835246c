package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	auditapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	reportapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/report"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// ReportHandler handles reports, accounting exports and the audit trail
type ReportHandler struct {
	BaseHandler
	reports *reportapp.ReportService
	audits  *auditapp.AuditService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *reportapp.ReportService, audits *auditapp.AuditService) *ReportHandler {
	return &ReportHandler{reports: reports, audits: audits}
}

// SalesQuery is the query of the sales report
type SalesQuery struct {
	DateFrom *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"dateTo" time_format:"2006-01-02"`
	GroupBy  string     `form:"groupBy" binding:"omitempty,oneof=day week month year"`
	ClientID *uuid.UUID `form:"clientId"`
}

// DashboardQuery is the query of the dashboard
type DashboardQuery struct {
	Period string `form:"period" binding:"omitempty,oneof=month quarter year"`
	Year   int    `form:"year" binding:"omitempty,min=2000,max=2100"`
}

// FinancialQuery is the query of the financial audit trail
type FinancialQuery struct {
	DateFrom     time.Time `form:"dateFrom" time_format:"2006-01-02" binding:"required"`
	DateTo       time.Time `form:"dateTo" time_format:"2006-01-02" binding:"required"`
	Category     string    `form:"category"`
	DocumentType string    `form:"documentType"`
	Limit        int       `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset       int       `form:"offset" binding:"omitempty,min=0"`
}

// Sales godoc
// @Summary      Sales report
// @Description  Issued invoices grouped by period with top clients and products
// @Tags         reports
// @Produce      json
// @Param        dateFrom query string false "Start date (YYYY-MM-DD)"
// @Param        dateTo query string false "End date (YYYY-MM-DD)"
// @Param        groupBy query string false "day, week, month or year" default(month)
// @Param        clientId query string false "Client ID"
// @Success      200 {object} APIResponse[report.Sales]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/sales [get]
func (h *ReportHandler) Sales(c *gin.Context) {
	var q SalesQuery
	if !h.bindQuery(c, &q) {
		return
	}
	res, err := h.reports.Sales(c.Request.Context(), reportapp.SalesRequest{
		From: q.DateFrom, To: q.DateTo, GroupBy: q.GroupBy, ClientID: q.ClientID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Receivables godoc
// @Summary      Receivables aging
// @Tags         reports
// @Produce      json
// @Param        clientId query string false "Client ID"
// @Success      200 {object} APIResponse[report.Aging]
// @Security     BearerAuth
// @Router       /reports/receivables [get]
func (h *ReportHandler) Receivables(c *gin.Context) {
	var clientID *uuid.UUID
	if v := c.Query("clientId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Identifiant invalide : clientId")
			return
		}
		clientID = &id
	}
	res, err := h.reports.Receivables(c.Request.Context(), clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Dashboard returns the KPIs of the home page
func (h *ReportHandler) Dashboard(c *gin.Context) {
	var q DashboardQuery
	if !h.bindQuery(c, &q) {
		return
	}
	res, err := h.reports.Dashboard(c.Request.Context(), reportapp.DashboardRequest{Period: q.Period, Year: q.Year})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// ExportHistory lists past exports and the available export types
func (h *ReportHandler) ExportHistory(c *gin.Context) {
	res, err := h.reports.History(c.Request.Context(), queryInt(c, "limit", 20))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Export godoc
// @Summary      Generate an accounting export
// @Description  json answers with the records; csv and xlsx answer with a file download
// @Tags         reports
// @Accept       json
// @Produce      json,text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        request body reportapp.ExportRequest true "Export"
// @Success      200 {object} APIResponse[report.Export]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/exports [post]
func (h *ReportHandler) Export(c *gin.Context) {
	var req reportapp.ExportRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.reports.Export(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if res.File != nil {
		attachment(c, res.File.Name, res.File.ContentType, res.File.Data, true)
		return
	}
	h.Success(c, res.Export)
}

// AuditSearch godoc
// @Summary      Search the audit trail
// @Tags         audit
// @Produce      json
// @Param        action query string false "Action"
// @Param        entity query string false "Entity"
// @Param        category query string false "financial, document, client or system"
// @Param        severity query string false "info, warning or critical"
// @Param        limit query int false "Page size" default(50)
// @Param        offset query int false "Offset"
// @Success      200 {object} APIResponse[auditapp.SearchResult]
// @Security     BearerAuth
// @Router       /audit [get]
func (h *ReportHandler) AuditSearch(c *gin.Context) {
	var req auditapp.SearchRequest
	if !h.bindQuery(c, &req) {
		return
	}
	res, err := h.audits.Search(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// AuditHistory returns the trail of one entity
func (h *ReportHandler) AuditHistory(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.audits.History(c.Request.Context(), c.Param("entity"), id, c.QueryArray("actions"),
		queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// AuditFinancial returns the financial trail of a period with counts per action
func (h *ReportHandler) AuditFinancial(c *gin.Context) {
	var q FinancialQuery
	if !h.bindQuery(c, &q) {
		return
	}
	res, err := h.audits.Financial(c.Request.Context(), q.DateFrom, q.DateTo, q.Category, q.DocumentType, q.Limit, q.Offset)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// ReportRoutes creates the route groups for reports and the audit trail
func ReportRoutes(h *ReportHandler) []*router.DomainGroup {
	reports := middleware.RequirePermission(identity.ResourceReports, identity.ActionView)
	r := router.NewDomainGroup("reports", "/reports")
	r.GET("/dashboard", middleware.RequireAdminAccess(), h.Dashboard)
	r.GET("/sales", reports, h.Sales)
	r.GET("/receivables", reports, h.Receivables)
	r.GET("/exports", reports, h.ExportHistory)
	r.POST("/exports", middleware.RequirePermission(identity.ResourceReports, identity.ActionCreate), h.Export)

	a := router.NewDomainGroup("audit", "/audit")
	a.Use(middleware.RequireRole(identity.RoleAdmin, identity.RoleManager, identity.RoleComptable))
	a.GET("", h.AuditSearch)
	a.GET("/financial", h.AuditFinancial)
	a.GET("/:entity/:id", h.AuditHistory)
	return []*router.DomainGroup{r, a}
}
