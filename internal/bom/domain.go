package bom

import "time"

// ProductKind discriminates leaf-priced products from products whose cost is
// derived from their dependency graph.
type ProductKind string

const (
	KindSimple     ProductKind = "SIMPLE"
	KindCalculated ProductKind = "CALCULATED"
)

// Product is the resolver's view of a catalog product, including the cached
// cost columns it maintains.
type Product struct {
	ID               int64
	Code             string
	Name             string
	Kind             ProductKind
	UnitPrice        *float64
	RequiredQuantity float64
	IsComponent      bool

	MaterialsCost  float64
	ProcessesCost  float64
	LaborCost      float64
	TotalCost      float64
	LastComputedAt *time.Time
}

// DependencyEdge links a parent product to a child it consumes.
type DependencyEdge struct {
	ParentProductID int64
	ChildProductID  int64
	// Quantity is units of the child consumed per parent unit.
	Quantity float64
}

// ProcessAttachment is a manufacturing process applied to a product.
// PricePerUnit is nil when the referenced process no longer exists.
type ProcessAttachment struct {
	ProcessID    int64
	Name         string
	Quantity     float64
	PricePerUnit *float64
}

// LaborAttachment is a labor type consumed by a product.
// PricePerHour is nil when the referenced labor type no longer exists.
type LaborAttachment struct {
	LaborTypeID  int64
	Name         string
	Hours        float64
	PricePerHour *float64
}

// Breakdown is the per-unit cost of a product split by origin.
type Breakdown struct {
	Materials float64 `json:"materials"`
	Processes float64 `json:"processes"`
	Labor     float64 `json:"labor"`
	Total     float64 `json:"total"`
	// CyclesDetected counts dependency cycles truncated during resolution.
	// Non-zero values indicate a data-entry problem upstream.
	CyclesDetected int       `json:"cycles_detected,omitempty"`
	ComputedAt     time.Time `json:"computed_at"`
}

// LineKind labels an itemized cost line.
type LineKind string

const (
	LineMaterial LineKind = "material"
	LineProcess  LineKind = "process"
	LineLabor    LineKind = "labor"
)

// Line is one itemized contribution to a product's cost, flattened from the
// dependency tree. Quantity already carries the multipliers accumulated along
// the path from the root.
type Line struct {
	Kind      LineKind `json:"kind"`
	RefID     int64    `json:"ref_id"`
	Name      string   `json:"name"`
	Quantity  float64  `json:"quantity"`
	UnitValue float64  `json:"unit_value"`
	Total     float64  `json:"total"`
}
