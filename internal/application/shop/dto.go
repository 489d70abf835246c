package shop

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/shopspring/decimal"
)

// CustomerRequest is the buyer block of a checkout
type CustomerRequest struct {
	Name       string  `json:"name" binding:"required,max=200"`
	Email      string  `json:"email" binding:"required,email"`
	Phone      string  `json:"phone" binding:"required,max=30"`
	Address    string  `json:"address" binding:"required"`
	City       string  `json:"city" binding:"required,max=100"`
	PostalCode *string `json:"postalCode"`
	Country    string  `json:"country"`
}

// CartLine is one cart entry; the price always comes from the catalog
type CartLine struct {
	ItemID   uuid.UUID `json:"productId" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderRequest is the public checkout payload
type PlaceOrderRequest struct {
	Customer      CustomerRequest `json:"customer" binding:"required"`
	Items         []CartLine      `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string          `json:"paymentMethod" binding:"required,oneof=STRIPE COD BANK_TRANSFER"`
	Note          *string         `json:"note"`
	Locale        string          `json:"locale"`
}

// TrackRequest identifies an order for the public tracking page
type TrackRequest struct {
	OrderNumber string `json:"orderNumber" form:"orderNumber" binding:"required"`
	Email       string `json:"email" form:"email" binding:"required,email"`
}

// ListRequest holds the query of the admin order listing
type ListRequest struct {
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
	Search        string `form:"search"`
	Status        string `form:"status"`
	PaymentStatus string `form:"paymentStatus"`
	// Range is today, week or month
	Range     string `form:"range" binding:"omitempty,oneof=today week month"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

// StatusRequest moves an order along its workflow
type StatusRequest struct {
	Status         string  `json:"status" binding:"omitempty,oneof=PENDING CONFIRMED PROCESSING SHIPPED DELIVERED CANCELLED REFUNDED"`
	PaymentStatus  string  `json:"paymentStatus" binding:"omitempty,oneof=PENDING PAID FAILED REFUNDED"`
	Note           *string `json:"note"`
	TrackingNumber *string `json:"trackingNumber"`
	AdminNote      *string `json:"adminNote"`
}

// OrderItemResponse is one order line
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Image     *string         `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

// TrackingEventResponse is one timeline entry
type TrackingEventResponse struct {
	Status    string    `json:"status"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderResponse is the admin view of an order
type OrderResponse struct {
	ID              uuid.UUID               `json:"id"`
	OrderNumber     string                  `json:"orderNumber"`
	Status          string                  `json:"status"`
	PaymentMethod   string                  `json:"paymentMethod"`
	PaymentStatus   string                  `json:"paymentStatus"`
	CustomerName    string                  `json:"customerName"`
	CustomerEmail   string                  `json:"customerEmail"`
	CustomerPhone   string                  `json:"customerPhone"`
	ShippingAddress string                  `json:"shippingAddress"`
	ShippingCity    string                  `json:"shippingCity"`
	PostalCode      *string                 `json:"postalCode,omitempty"`
	Country         string                  `json:"country"`
	Subtotal        decimal.Decimal         `json:"subtotal"`
	ShippingAmount  decimal.Decimal         `json:"shippingAmount"`
	DiscountAmount  decimal.Decimal         `json:"discountAmount"`
	Total           decimal.Decimal         `json:"total"`
	Currency        string                  `json:"currency"`
	CustomerNote    *string                 `json:"customerNote,omitempty"`
	AdminNote       *string                 `json:"adminNote,omitempty"`
	TrackingNumber  *string                 `json:"trackingNumber,omitempty"`
	PaidAt          *time.Time              `json:"paidAt,omitempty"`
	Items           []OrderItemResponse     `json:"items"`
	Events          []TrackingEventResponse `json:"events"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// ToOrderResponse converts an order for the API
func ToOrderResponse(o *shop.Order) OrderResponse {
	r := OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.Number,
		Status:          string(o.Status),
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   string(o.PaymentStatus),
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		ShippingCity:    o.ShippingCity,
		PostalCode:      o.PostalCode,
		Country:         o.Country,
		Subtotal:        o.Subtotal,
		ShippingAmount:  o.ShippingAmount,
		DiscountAmount:  o.DiscountAmount,
		Total:           o.Total,
		Currency:        o.Currency,
		CustomerNote:    o.CustomerNote,
		AdminNote:       o.AdminNote,
		TrackingNumber:  o.TrackingNumber,
		PaidAt:          o.PaidAt,
		Items:           make([]OrderItemResponse, len(o.Items)),
		Events:          toEvents(o.Events),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for i, it := range o.Items {
		r.Items[i] = OrderItemResponse{
			ID:        it.ID,
			ProductID: it.CatalogItemID,
			Name:      it.Name,
			SKU:       it.SKU,
			Image:     it.Image,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.Total,
		}
	}
	return r
}

func toEvents(events []shop.TrackingEvent) []TrackingEventResponse {
	out := make([]TrackingEventResponse, len(events))
	for i, e := range events {
		out[i] = TrackingEventResponse{Status: string(e.Status), Note: e.Note, CreatedAt: e.CreatedAt}
	}
	return out
}

// TrackingResponse is what a customer sees on the tracking page
type TrackingResponse struct {
	OrderNumber    string                  `json:"orderNumber"`
	Status         string                  `json:"status"`
	PaymentStatus  string                  `json:"paymentStatus"`
	PaymentMethod  string                  `json:"paymentMethod"`
	TrackingNumber *string                 `json:"trackingNumber,omitempty"`
	Total          decimal.Decimal         `json:"total"`
	Items          []OrderItemResponse     `json:"items"`
	Events         []TrackingEventResponse `json:"events"`
	CreatedAt      time.Time               `json:"createdAt"`
}

// ListResponse is a page of orders with the order book stats
type ListResponse struct {
	shared.Paginated[OrderResponse]
	Stats shop.Stats `json:"stats"`
}

// CheckoutResponse points the browser to the hosted payment page
type CheckoutResponse struct {
	SessionID string    `json:"sessionId"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}
