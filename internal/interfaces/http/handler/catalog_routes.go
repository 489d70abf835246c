package handler

import (
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// CatalogRoutes creates the route group for items, categories, suppliers and stock
func CatalogRoutes(items *ItemHandler, categories *CategoryHandler, suppliers *SupplierHandler, stock *StockHandler) *router.DomainGroup {
	products := middleware.RequireResource(identity.ResourceProducts)
	cats := middleware.RequireResource(identity.ResourceCategories)
	g := router.NewDomainGroup("catalog", "/catalog")

	g.GET("/items", products, items.List)
	g.POST("/items", products, items.Create)
	g.GET("/items/:id", products, items.Get)
	g.PUT("/items/:id", products, items.Update)
	g.DELETE("/items/:id", products, items.Delete)
	g.GET("/items/:id/movements", products, stock.History)

	g.GET("/categories", cats, categories.Tree)
	g.POST("/categories", cats, categories.Create)
	g.PUT("/categories/:id", cats, categories.Update)
	g.DELETE("/categories/:id", cats, categories.Delete)

	g.GET("/suppliers", products, suppliers.List)
	g.POST("/suppliers", products, suppliers.Create)
	g.GET("/suppliers/:id", products, suppliers.Get)
	g.PUT("/suppliers/:id", products, suppliers.Update)
	g.DELETE("/suppliers/:id", products, suppliers.Delete)

	g.GET("/stock", products, stock.Overview)
	g.GET("/stock/low", products, stock.LowStock)
	g.GET("/stock/movements", products, stock.Recent)
	g.POST("/stock/movements", products, stock.Move)
	g.POST("/stock/adjustments", middleware.RequirePermission(identity.ResourceProducts, identity.ActionEdit), stock.BulkAdjust)
	return g
}
