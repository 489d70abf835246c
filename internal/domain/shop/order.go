// Package shop holds storefront orders placed on the public site.
package shop

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the fulfilment state of an order
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
}

// CanTransitionTo reports whether the workflow allows moving to next
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentStripe       PaymentMethod = "STRIPE"
	PaymentCOD          PaymentMethod = "COD"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// PaymentStatus is the settlement state of an order
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Error codes raised by orders
const (
	CodeInvalidTransition = "INVALID_ORDER_TRANSITION"
	CodeAlreadyPaid       = "ORDER_ALREADY_PAID"
	CodeNotPayable        = "ORDER_NOT_PAYABLE"
	CodeItemUnavailable   = "ITEM_UNAVAILABLE"
)

// ErrOrderNotFound is returned for unknown orders
var ErrOrderNotFound = shared.NotFound("Commande non trouvée")

// Order is a storefront order
type Order struct {
	shared.BaseAggregateRoot
	Number          string          `gorm:"column:order_number;type:varchar(20);not null;uniqueIndex"`
	Status          Status          `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CustomerName    string          `gorm:"type:varchar(200);not null"`
	CustomerEmail   string          `gorm:"type:varchar(200);not null;index"`
	CustomerPhone   string          `gorm:"type:varchar(30);not null"`
	ShippingAddress string          `gorm:"type:text;not null"`
	ShippingCity    string          `gorm:"type:varchar(100);not null"`
	PostalCode      *string         `gorm:"type:varchar(20)"`
	Country         string          `gorm:"type:varchar(100);not null;default:'Maroc'"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ShippingAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'MAD'"`
	Locale          string          `gorm:"type:varchar(5);not null;default:'fr'"`
	CustomerNote    *string         `gorm:"type:text"`
	AdminNote       *string         `gorm:"type:text"`
	TrackingNumber  *string         `gorm:"type:varchar(100)"`
	CheckoutSession *string         `gorm:"column:stripe_session_id;type:varchar(255);index"`
	PaymentIntent   *string         `gorm:"column:stripe_payment_id;type:varchar(255)"`
	PaidAt          *time.Time
	CancelledAt     *time.Time

	Items  []OrderItem     `gorm:"foreignKey:OrderID"`
	Events []TrackingEvent `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "shop_orders"
}

// OrderItem is one purchased catalog item, priced TTC at order time
type OrderItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CatalogItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name          string          `gorm:"type:varchar(200);not null"`
	SKU           string          `gorm:"column:sku;type:varchar(30);not null"`
	Image         *string         `gorm:"type:varchar(500)"`
	Quantity      int             `gorm:"not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "shop_order_items"
}

// TrackingEvent is one entry of the order timeline shown to the customer
type TrackingEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    Status    `gorm:"type:varchar(20);not null"`
	Note      *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TrackingEvent) TableName() string {
	return "shop_order_events"
}

// Customer identifies the buyer and the delivery address
type Customer struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode *string
	Country    string
}

// Line is a priced order line built from the catalog
type Line struct {
	CatalogItemID uuid.UUID
	Name          string
	SKU           string
	Image         *string
	Quantity      int
	UnitPrice     decimal.Decimal
}

// OrderParams carries everything needed to place an order
type OrderParams struct {
	Customer       Customer
	PaymentMethod  PaymentMethod
	Lines          []Line
	ShippingAmount decimal.Decimal
	DiscountAmount decimal.Decimal
	Locale         string
	Note           *string
}

func (p *OrderParams) normalize() {
	p.Customer.Name = strings.TrimSpace(p.Customer.Name)
	p.Customer.Email = strings.ToLower(strings.TrimSpace(p.Customer.Email))
	p.Customer.Phone = strings.TrimSpace(p.Customer.Phone)
	if p.Customer.Country == "" {
		p.Customer.Country = "Maroc"
	}
	if p.Locale == "" {
		p.Locale = "fr"
	}
}

func (p OrderParams) validate() error {
	var details []shared.ErrorDetail
	add := func(field, msg string) { details = append(details, shared.ErrorDetail{Field: field, Message: msg}) }
	if p.Customer.Name == "" {
		add("customer.name", "Nom requis")
	}
	if _, err := mail.ParseAddress(p.Customer.Email); err != nil {
		add("customer.email", "Email invalide")
	}
	if p.Customer.Phone == "" {
		add("customer.phone", "Téléphone requis")
	}
	if strings.TrimSpace(p.Customer.Address) == "" {
		add("customer.address", "Adresse requise")
	}
	if strings.TrimSpace(p.Customer.City) == "" {
		add("customer.city", "Ville requise")
	}
	switch p.PaymentMethod {
	case PaymentStripe, PaymentCOD, PaymentBankTransfer:
	default:
		add("paymentMethod", "Mode de paiement invalide")
	}
	if len(p.Lines) == 0 {
		add("items", "Le panier est vide")
	}
	for i, l := range p.Lines {
		if l.Quantity < 1 {
			add(fmt.Sprintf("items[%d].quantity", i), "Quantité invalide")
		}
	}
	if p.ShippingAmount.IsNegative() || p.DiscountAmount.IsNegative() {
		add("shipping", "Montant invalide")
	}
	if len(details) > 0 {
		return shared.NewValidationError("Données invalides", details...)
	}
	return nil
}

// ValidateOrder checks the parameters without building an order
func ValidateOrder(p OrderParams) error {
	p.normalize()
	return p.validate()
}

// NewOrder prices the lines and opens the order as PENDING
func NewOrder(number string, p OrderParams, now time.Time) (*Order, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}
	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Status:            StatusPending,
		PaymentMethod:     p.PaymentMethod,
		PaymentStatus:     PaymentPending,
		CustomerName:      p.Customer.Name,
		CustomerEmail:     p.Customer.Email,
		CustomerPhone:     p.Customer.Phone,
		ShippingAddress:   strings.TrimSpace(p.Customer.Address),
		ShippingCity:      strings.TrimSpace(p.Customer.City),
		PostalCode:        p.Customer.PostalCode,
		Country:           p.Customer.Country,
		ShippingAmount:    p.ShippingAmount,
		DiscountAmount:    p.DiscountAmount,
		Currency:          "MAD",
		Locale:            p.Locale,
		CustomerNote:      p.Note,
	}
	subtotal := decimal.Zero
	for _, l := range p.Lines {
		total := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
		o.Items = append(o.Items, OrderItem{
			ID:            uuid.New(),
			OrderID:       o.ID,
			CatalogItemID: l.CatalogItemID,
			Name:          l.Name,
			SKU:           l.SKU,
			Image:         l.Image,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			Total:         total,
		})
		subtotal = subtotal.Add(total)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.ShippingAmount).Sub(o.DiscountAmount)
	if o.Total.IsNegative() {
		o.Total = decimal.Zero
	}
	o.track(StatusPending, nil, now)
	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

func (o *Order) track(s Status, note *string, now time.Time) {
	o.Events = append(o.Events, TrackingEvent{ID: uuid.New(), OrderID: o.ID, Status: s, Note: note, CreatedAt: now})
}

func (o *Order) touch(now time.Time) {
	o.UpdatedAt = now
	o.IncrementVersion()
}

// ChangeStatus moves the order along the workflow
func (o *Order) ChangeStatus(next Status, note *string, now time.Time) error {
	if !next.IsValid() {
		return shared.NewValidationError("Données invalides", shared.ErrorDetail{Field: "status", Message: "Statut invalide"})
	}
	if next == o.Status {
		return nil
	}
	if next == StatusCancelled {
		return o.Cancel(note, now)
	}
	if !o.Status.CanTransitionTo(next) {
		return shared.NewDomainErrorf(CodeInvalidTransition, "Transition impossible de %s vers %s", o.Status, next)
	}
	old := o.Status
	o.Status = next
	o.track(next, note, now)
	o.touch(now)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return nil
}

// Cancel stops an order that has not left the workshop
func (o *Order) Cancel(note *string, now time.Time) error {
	switch o.Status {
	case StatusCancelled:
		return shared.NewDomainError(CodeInvalidTransition, "Commande déjà annulée")
	case StatusShipped, StatusDelivered, StatusRefunded:
		return shared.NewDomainError(CodeInvalidTransition, "Impossible d'annuler une commande expédiée ou livrée")
	}
	old := o.Status
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.track(StatusCancelled, note, now)
	o.touch(now)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return nil
}

// CheckPayable refuses card payment for orders that cannot take one
func (o *Order) CheckPayable() error {
	if o.PaymentStatus == PaymentPaid {
		return shared.NewDomainError(CodeAlreadyPaid, "Commande déjà payée")
	}
	if o.PaymentMethod != PaymentStripe {
		return shared.NewDomainError(CodeNotPayable, "Cette commande n'est pas réglable par carte")
	}
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return shared.NewDomainError(CodeNotPayable, "Cette commande ne peut pas être payée dans son statut actuel")
	}
	return nil
}

// AttachCheckoutSession remembers the Stripe session paying the order
func (o *Order) AttachCheckoutSession(sessionID string, now time.Time) {
	o.CheckoutSession = &sessionID
	o.touch(now)
}

// MarkPaid settles the order and confirms a pending one. It reports false
// when the order was already paid.
func (o *Order) MarkPaid(paymentIntent string, now time.Time) bool {
	if o.PaymentStatus == PaymentPaid {
		return false
	}
	o.PaymentStatus = PaymentPaid
	o.PaidAt = &now
	if paymentIntent != "" {
		o.PaymentIntent = &paymentIntent
	}
	if o.Status == StatusPending {
		o.Status = StatusConfirmed
		o.track(StatusConfirmed, nil, now)
	}
	o.touch(now)
	o.AddDomainEvent(NewOrderPaidEvent(o))
	return true
}

// MarkPaymentFailed records a declined payment on an unpaid order
func (o *Order) MarkPaymentFailed(now time.Time) bool {
	if o.PaymentStatus != PaymentPending {
		return false
	}
	o.PaymentStatus = PaymentFailed
	o.touch(now)
	return true
}

// MarkRefunded records a full refund
func (o *Order) MarkRefunded(now time.Time) bool {
	if o.PaymentStatus == PaymentRefunded {
		return false
	}
	old := o.Status
	o.PaymentStatus = PaymentRefunded
	o.Status = StatusRefunded
	o.track(StatusRefunded, nil, now)
	o.touch(now)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return true
}

// SetPaymentStatus lets staff settle COD and transfer orders by hand
func (o *Order) SetPaymentStatus(ps PaymentStatus, now time.Time) error {
	switch ps {
	case PaymentPending, PaymentFailed, PaymentRefunded:
		o.PaymentStatus = ps
	case PaymentPaid:
		o.MarkPaid("", now)
		return nil
	default:
		return shared.NewValidationError("Données invalides", shared.ErrorDetail{Field: "paymentStatus", Message: "Statut de paiement invalide"})
	}
	o.touch(now)
	return nil
}

// SetTracking stores the carrier tracking number and the admin note
func (o *Order) SetTracking(trackingNumber, adminNote *string, now time.Time) {
	if trackingNumber != nil {
		o.TrackingNumber = trackingNumber
	}
	if adminNote != nil {
		o.AdminNote = adminNote
	}
	o.touch(now)
}

// ReleasesStock reports whether cancelling puts the goods back on the shelf
func (o *Order) ReleasesStock() bool {
	return o.Status == StatusCancelled
}

// Filter narrows an order listing
type Filter struct {
	shared.Filter
	Status        Status
	PaymentStatus PaymentStatus
	Since         *time.Time
}

// Stats summarises the order book
type Stats struct {
	TotalOrders   int64           `json:"totalOrders"`
	PendingOrders int64           `json:"pendingOrders"`
	TodayOrders   int64           `json:"todayOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// ShippingPolicy prices delivery from the order subtotal
type ShippingPolicy struct {
	FlatRate  decimal.Decimal
	FreeAbove decimal.Decimal
}

// DefaultShippingPolicy charges 50 MAD below 1000 MAD of goods
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{FlatRate: decimal.NewFromInt(50), FreeAbove: decimal.NewFromInt(1000)}
}

// Cost returns the shipping amount for a subtotal
func (p ShippingPolicy) Cost(subtotal decimal.Decimal) decimal.Decimal {
	if p.FreeAbove.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeAbove) {
		return decimal.Zero
	}
	return p.FlatRate
}

// LinesSubtotal sums the lines before shipping and discount
func LinesSubtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2))
	}
	return total
}
