package products

type CreateProductRequest struct {
	Code             string   `json:"code" validate:"required,max=40"`
	Name             string   `json:"name" validate:"required,max=200"`
	Kind             string   `json:"kind" validate:"required,oneof=SIMPLE CALCULATED"`
	UnitPrice        *float64 `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	RequiredQuantity float64  `json:"required_quantity" validate:"gte=0"`
	IsComponent      bool     `json:"is_component"`
}

type UpdateProductRequest struct {
	Code             *string  `json:"code,omitempty" validate:"omitempty,max=40"`
	Name             *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	UnitPrice        *float64 `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	RequiredQuantity *float64 `json:"required_quantity,omitempty" validate:"omitempty,gte=0"`
	IsComponent      *bool    `json:"is_component,omitempty"`
}

type AddComponentRequest struct {
	ChildProductID int64   `json:"child_product_id" validate:"required,gt=0"`
	Quantity       float64 `json:"quantity" validate:"required,gt=0"`
}

type AttachProcessRequest struct {
	ProcessID int64   `json:"process_id" validate:"required,gt=0"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
}

type AttachLaborRequest struct {
	LaborTypeID int64   `json:"labor_type_id" validate:"required,gt=0"`
	Hours       float64 `json:"hours" validate:"required,gt=0"`
}

type ListProductsRequest struct {
	Search      string `json:"search"`
	Kind        string `json:"kind"`
	IsComponent *bool  `json:"is_component,omitempty"`
	Limit       int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset      int    `json:"offset" validate:"gte=0"`
}
