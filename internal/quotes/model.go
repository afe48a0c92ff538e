package quotes

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is the quote subject: one root product, a requested quantity and the
// pricing parameters applied on top of the resolved cost.
type Order struct {
	ID            int64       `json:"id"`
	QuoteRef      uuid.UUID   `json:"quote_ref"`
	CustomerID    int64       `json:"customer_id"`
	ProductID     int64       `json:"product_id"`
	Quantity      float64     `json:"quantity"`
	FreightValue  float64     `json:"freight_value"`
	MarginPercent float64     `json:"margin_percent"`
	Status        OrderStatus `json:"status"`
	Notes         *string     `json:"notes,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Taxes  []TaxEntry  `json:"taxes,omitempty"`
	Extras []ExtraItem `json:"extras,omitempty"`
}

// TaxEntry is a named tax percentage. Entries are additive, not compounded.
type TaxEntry struct {
	ID      int64   `json:"id"`
	OrderID int64   `json:"order_id"`
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// ExtraItem is an ad-hoc priced line attached directly to the order.
type ExtraItem struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Value       float64 `json:"value"`
}

// OrderWithDetails carries display names for listings.
type OrderWithDetails struct {
	Order
	CustomerName string `json:"customer_name"`
	ProductName  string `json:"product_name"`
}
