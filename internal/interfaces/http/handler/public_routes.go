package handler

import (
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// PublicHandlers are the handlers serving the storefront without authentication
type PublicHandlers struct {
	Items      *ItemHandler
	Categories *CategoryHandler
	Orders     *OrderHandler
	Webhooks   *StripeWebhookHandler
	Quotes     *QuoteRequestHandler
	Messages   *MessageHandler
	Currencies *CurrencyHandler
	Settings   *SettingHandler
	Content    *ContentHandler
}

// PublicRoutes registers the storefront endpoints under /public.
// Form submissions are throttled by the services themselves.
func PublicRoutes(h PublicHandlers) *router.DomainGroup {
	g := router.NewDomainGroup("public", "/public")

	g.GET("/catalog/items", h.Items.PublicList)
	g.GET("/catalog/items/:id", h.Items.PublicGet)
	g.GET("/catalog/categories", h.Categories.PublicTree)

	g.POST("/orders", h.Orders.Place)
	g.GET("/orders/track", h.Orders.Track)
	g.POST("/orders/:id/checkout", h.Orders.Checkout)
	if h.Webhooks != nil {
		g.POST("/webhooks/stripe", h.Webhooks.HandleStripeWebhook)
	}

	g.POST("/quote-requests", h.Quotes.Submit)
	g.POST("/contact", h.Messages.Submit)

	g.GET("/currencies", h.Currencies.PublicList)
	g.GET("/currencies/convert", h.Currencies.Convert)

	g.GET("/settings", h.Settings.Public)
	g.GET("/settings/:group", h.Settings.PublicGroup)

	g.GET("/testimonials", h.Content.Testimonials)
	g.GET("/projects", h.Content.Projects)
	g.GET("/projects/:slug", h.Content.ProjectBySlug)
	g.GET("/slides", h.Content.Slides)
	g.GET("/pages/:page/sections", h.Content.Sections)

	return g
}
