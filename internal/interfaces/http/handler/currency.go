package handler

import (
	"github.com/gin-gonic/gin"
	currencyapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/currency"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
)

// CurrencyHandler handles display currencies and their rates
type CurrencyHandler struct {
	BaseHandler
	currencies *currencyapp.CurrencyService
}

// NewCurrencyHandler creates a new CurrencyHandler
func NewCurrencyHandler(currencies *currencyapp.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currencies: currencies}
}

// PublicList returns the active currencies
func (h *CurrencyHandler) PublicList(c *gin.Context) {
	h.list(c, true)
}

// List returns every currency, active or not
func (h *CurrencyHandler) List(c *gin.Context) {
	h.list(c, false)
}

func (h *CurrencyHandler) list(c *gin.Context, activeOnly bool) {
	res, err := h.currencies.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Convert godoc
// @Summary      Convert an amount from MAD
// @Tags         public
// @Produce      json
// @Param        amount query number true "Amount in MAD"
// @Param        to query string true "Target currency code"
// @Success      200 {object} APIResponse[currencyapp.ConvertResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /public/currencies/convert [get]
func (h *CurrencyHandler) Convert(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		h.BadRequest(c, "Montant invalide")
		return
	}
	res, err := h.currencies.Convert(c.Request.Context(), amount, c.Query("to"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// UpdateRates godoc
// @Summary      Update exchange rates
// @Description  The base currency keeps a rate of 1
// @Tags         currencies
// @Accept       json
// @Produce      json
// @Param        request body currencyapp.UpdateRatesRequest true "Rates"
// @Success      200 {object} APIResponse[currencyapp.ListResponse]
// @Security     BearerAuth
// @Router       /currencies [put]
func (h *CurrencyHandler) UpdateRates(c *gin.Context) {
	var req currencyapp.UpdateRatesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.currencies.UpdateRates(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// CurrencyRoutes creates the admin route group for currencies
func CurrencyRoutes(h *CurrencyHandler) *router.DomainGroup {
	g := router.NewDomainGroup("currencies", "/currencies")
	g.GET("", middleware.RequirePermission(identity.ResourceSettings, identity.ActionView), h.List)
	g.PUT("", middleware.RequirePermission(identity.ResourceSettings, identity.ActionEdit), h.UpdateRates)
	return g
}
