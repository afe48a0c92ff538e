package labor

import "time"

// LaborType is a category of work billed by the hour.
type LaborType struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	PricePerHour float64   `json:"price_per_hour"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateLaborTypeRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Description  *string `json:"description,omitempty"`
	PricePerHour float64 `json:"price_per_hour" validate:"gte=0"`
}

type UpdateLaborTypeRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Description  *string  `json:"description,omitempty"`
	PricePerHour *float64 `json:"price_per_hour,omitempty" validate:"omitempty,gte=0"`
}

type ListLaborTypesRequest struct {
	Search string `json:"search"`
	Limit  int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset int    `json:"offset" validate:"gte=0"`
}
