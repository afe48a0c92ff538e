package products

import (
	"time"

	"github.com/fabriq-erp/fabriq/internal/bom"
)

// Product is a sellable or consumable catalog item. Calculated products
// derive their cost from components, processes and labor; simple products
// carry an authoritative unit price.
type Product struct {
	ID               int64           `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Kind             bom.ProductKind `json:"kind"`
	UnitPrice        *float64        `json:"unit_price,omitempty"`
	RequiredQuantity float64         `json:"required_quantity"`
	IsComponent      bool            `json:"is_component"`

	// Cached cost columns, maintained by the cost resolver only.
	MaterialsCost  float64    `json:"materials_cost"`
	ProcessesCost  float64    `json:"processes_cost"`
	LaborCost      float64    `json:"labor_cost"`
	TotalCost      float64    `json:"total_cost"`
	LastComputedAt *time.Time `json:"last_computed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Component is a dependency edge joined with the child product for display.
type Component struct {
	ParentProductID int64   `json:"parent_product_id"`
	ChildProductID  int64   `json:"child_product_id"`
	ChildCode       string  `json:"child_code"`
	ChildName       string  `json:"child_name"`
	Quantity        float64 `json:"quantity"`
}

// ProcessLink is a process attachment joined with the process for display.
type ProcessLink struct {
	ProductID    int64   `json:"product_id"`
	ProcessID    int64   `json:"process_id"`
	ProcessName  string  `json:"process_name"`
	Quantity     float64 `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit"`
}

// LaborLink is a labor attachment joined with the labor type for display.
type LaborLink struct {
	ProductID    int64   `json:"product_id"`
	LaborTypeID  int64   `json:"labor_type_id"`
	LaborName    string  `json:"labor_name"`
	Hours        float64 `json:"hours"`
	PricePerHour float64 `json:"price_per_hour"`
}
