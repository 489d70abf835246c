package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ItemRequest is the payload to create or update a catalog item
type ItemRequest struct {
	SKU            string           `json:"sku"`
	Type           string           `json:"type" binding:"omitempty,oneof=PRODUCT SERVICE"`
	CategoryID     *uuid.UUID       `json:"categoryId"`
	Name           string           `json:"name" binding:"required,max=200"`
	Description    *string          `json:"description"`
	Unit           string           `json:"unit"`
	PurchasePrice  *decimal.Decimal `json:"purchasePrice"`
	SellingPriceHT decimal.Decimal  `json:"sellingPriceHT"`
	TVARate        *decimal.Decimal `json:"tvaRate"`
	MaxDiscount    *decimal.Decimal `json:"maxDiscount"`
	TrackStock     bool             `json:"trackStock"`
	StockQty       *decimal.Decimal `json:"stockQty"`
	StockMin       *decimal.Decimal `json:"stockMin"`
	StockMax       *decimal.Decimal `json:"stockMax"`
	StockLocation  *string          `json:"stockLocation"`
	SupplierID     *uuid.UUID       `json:"supplierId"`
	Images         []string         `json:"images"`
	IsActive       *bool            `json:"isActive"`
}

func (r ItemRequest) params() catalog.ItemParams {
	return catalog.ItemParams{
		Type:           catalog.ItemType(r.Type),
		CategoryID:     r.CategoryID,
		Name:           r.Name,
		Description:    r.Description,
		Unit:           catalog.Unit(r.Unit),
		PurchasePrice:  r.PurchasePrice,
		SellingPriceHT: r.SellingPriceHT,
		TVARate:        r.TVARate,
		MaxDiscount:    r.MaxDiscount,
		TrackStock:     r.TrackStock,
		StockQty:       r.StockQty,
		StockMin:       r.StockMin,
		StockMax:       r.StockMax,
		StockLocation:  r.StockLocation,
		SupplierID:     r.SupplierID,
		Images:         r.Images,
		IsActive:       r.IsActive,
	}
}

// ItemListRequest holds the query of an item listing
type ItemListRequest struct {
	Page       int        `form:"page"`
	Limit      int        `form:"limit"`
	Search     string     `form:"search"`
	Type       string     `form:"type"`
	CategoryID *uuid.UUID `form:"categoryId"`
	SupplierID *uuid.UUID `form:"supplierId"`
	LowStock   bool       `form:"lowStock"`
	// IncludeInactive lists deactivated items too
	IncludeInactive bool   `form:"includeInactive"`
	SortBy          string `form:"sortBy"`
	SortOrder       string `form:"sortOrder"`
}

// ItemResponse is the API view of an item
type ItemResponse struct {
	ID              uuid.UUID        `json:"id"`
	SKU             string           `json:"sku"`
	Type            string           `json:"type"`
	CategoryID      *uuid.UUID       `json:"categoryId,omitempty"`
	Name            string           `json:"name"`
	Description     *string          `json:"description,omitempty"`
	Unit            string           `json:"unit"`
	PurchasePrice   *decimal.Decimal `json:"purchasePrice,omitempty"`
	SellingPriceHT  decimal.Decimal  `json:"sellingPriceHT"`
	SellingPriceTTC decimal.Decimal  `json:"sellingPriceTTC"`
	TVARate         decimal.Decimal  `json:"tvaRate"`
	MaxDiscount     *decimal.Decimal `json:"maxDiscount,omitempty"`
	TrackStock      bool             `json:"trackStock"`
	StockQty        decimal.Decimal  `json:"stockQty"`
	StockMin        *decimal.Decimal `json:"stockMin,omitempty"`
	StockMax        *decimal.Decimal `json:"stockMax,omitempty"`
	StockLocation   *string          `json:"stockLocation,omitempty"`
	SupplierID      *uuid.UUID       `json:"supplierId,omitempty"`
	Images          []string         `json:"images"`
	IsActive        bool             `json:"isActive"`
	IsLowStock      bool             `json:"isLowStock"`
	IsOverStock     bool             `json:"isOverStock"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// ToItemResponse converts a domain item to its API view
func ToItemResponse(it *catalog.Item) ItemResponse {
	images := it.Images
	if images == nil {
		images = []string{}
	}
	return ItemResponse{
		ID:              it.ID,
		SKU:             it.SKU,
		Type:            string(it.Type),
		CategoryID:      it.CategoryID,
		Name:            it.Name,
		Description:     it.Description,
		Unit:            string(it.Unit),
		PurchasePrice:   it.PurchasePrice,
		SellingPriceHT:  it.SellingPriceHT,
		SellingPriceTTC: it.SellingPriceTTC(),
		TVARate:         it.TVARate,
		MaxDiscount:     it.MaxDiscount,
		TrackStock:      it.TrackStock,
		StockQty:        it.StockQty,
		StockMin:        it.StockMin,
		StockMax:        it.StockMax,
		StockLocation:   it.StockLocation,
		SupplierID:      it.SupplierID,
		Images:          images,
		IsActive:        it.IsActive,
		IsLowStock:      it.IsLowStock(),
		IsOverStock:     it.IsOverStock(),
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

// DeleteResult tells whether an item or supplier was removed or only deactivated
type DeleteResult struct {
	Deleted     bool   `json:"deleted"`
	Deactivated bool   `json:"deactivated"`
	Message     string `json:"message"`
}

// CategoryRequest is the payload to create or update a category
type CategoryRequest struct {
	Name        string     `json:"name" binding:"required,max=100"`
	Slug        string     `json:"slug" binding:"required"`
	Description *string    `json:"description"`
	Icon        *string    `json:"icon"`
	ParentID    *uuid.UUID `json:"parentId"`
	Order       int        `json:"order"`
	IsActive    *bool      `json:"isActive"`
}

func (r CategoryRequest) params() catalog.CategoryParams {
	return catalog.CategoryParams{
		Name: r.Name, Slug: r.Slug, Description: r.Description, Icon: r.Icon,
		ParentID: r.ParentID, Position: r.Order, IsActive: r.IsActive,
	}
}

// CategoryResponse is the API view of a category and its sub-tree
type CategoryResponse struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description *string            `json:"description,omitempty"`
	Icon        *string            `json:"icon,omitempty"`
	ParentID    *uuid.UUID         `json:"parentId,omitempty"`
	Order       int                `json:"order"`
	IsActive    bool               `json:"isActive"`
	Children    []CategoryResponse `json:"children,omitempty"`
}

// ToCategoryResponse converts a category with its loaded children
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	resp := CategoryResponse{
		ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description, Icon: c.Icon,
		ParentID: c.ParentID, Order: c.Position, IsActive: c.IsActive,
	}
	for i := range c.Children {
		resp.Children = append(resp.Children, ToCategoryResponse(&c.Children[i]))
	}
	return resp
}

// SupplierRequest is the payload to create or update a supplier
type SupplierRequest struct {
	Code         string  `json:"code"`
	Name         string  `json:"name" binding:"required,max=200"`
	ContactName  *string `json:"contactName"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	Country      string  `json:"country"`
	PaymentTerms *string `json:"paymentTerms"`
	BankInfo     *string `json:"bankInfo"`
	Notes        *string `json:"notes"`
	IsActive     *bool   `json:"isActive"`
}

func (r SupplierRequest) params() catalog.SupplierParams {
	return catalog.SupplierParams{
		Name: r.Name, ContactName: r.ContactName, Phone: r.Phone, Email: r.Email,
		Address: r.Address, City: r.City, Country: r.Country, PaymentTerms: r.PaymentTerms,
		BankInfo: r.BankInfo, Notes: r.Notes, IsActive: r.IsActive,
	}
}

// SupplierListRequest holds the query of a supplier listing
type SupplierListRequest struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	Search     string `form:"search"`
	ActiveOnly bool   `form:"activeOnly"`
}

// MovementRequest records one stock movement
type MovementRequest struct {
	ItemID    uuid.UUID        `json:"itemId" binding:"required"`
	Type      string           `json:"type" binding:"required,oneof=in out adjustment return"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Reference *string          `json:"reference"`
	Reason    *string          `json:"reason"`
	Notes     *string          `json:"notes"`
	UnitCost  *decimal.Decimal `json:"unitCost"`
}

// BulkAdjustmentLine sets the counted level of one item
type BulkAdjustmentLine struct {
	ItemID uuid.UUID       `json:"itemId" binding:"required"`
	NewQty decimal.Decimal `json:"newQty"`
	Reason *string         `json:"reason"`
}

// BulkAdjustmentRequest carries a stock count
type BulkAdjustmentRequest struct {
	Items []BulkAdjustmentLine `json:"items" binding:"required,min=1,dive"`
}

// BulkAdjustmentResult reports the movements a count produced
type BulkAdjustmentResult struct {
	Created   int                     `json:"created"`
	Message   string                  `json:"message"`
	Movements []catalog.StockMovement `json:"movements"`
}

// MovementResponse is a recorded movement with the item it moved
type MovementResponse struct {
	Movement catalog.StockMovement `json:"movement"`
	Item     ItemResponse          `json:"item"`
}

// ItemMovements is the stock history of one item
type ItemMovements struct {
	Item      ItemResponse            `json:"item"`
	Movements []catalog.StockMovement `json:"movements"`
}

// StockOverview lists the tracked items with their stock flags
type StockOverview struct {
	Items []ItemResponse     `json:"items"`
	Stats catalog.StockStats `json:"stats"`
}
