package processes

import "time"

// Process is a manufacturing step with a fixed price per unit applied.
type Process struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	PricePerUnit float64   `json:"price_per_unit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateProcessRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Description  *string `json:"description,omitempty"`
	PricePerUnit float64 `json:"price_per_unit" validate:"gte=0"`
}

type UpdateProcessRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Description  *string  `json:"description,omitempty"`
	PricePerUnit *float64 `json:"price_per_unit,omitempty" validate:"omitempty,gte=0"`
}

type ListProcessesRequest struct {
	Search string `json:"search"`
	Limit  int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset int    `json:"offset" validate:"gte=0"`
}
