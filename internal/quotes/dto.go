package quotes

type CreateOrderRequest struct {
	CustomerID    int64                `json:"customer_id" validate:"required,gt=0"`
	ProductID     int64                `json:"product_id" validate:"required,gt=0"`
	Quantity      float64              `json:"quantity" validate:"required,gt=0"`
	FreightValue  float64              `json:"freight_value" validate:"gte=0"`
	MarginPercent float64              `json:"margin_percent" validate:"gte=0"`
	Notes         *string              `json:"notes,omitempty"`
	Taxes         []TaxEntryRequest    `json:"taxes,omitempty" validate:"dive"`
	Extras        []ExtraItemRequest   `json:"extras,omitempty" validate:"dive"`
}

type UpdateOrderRequest struct {
	Quantity      *float64 `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	FreightValue  *float64 `json:"freight_value,omitempty" validate:"omitempty,gte=0"`
	MarginPercent *float64 `json:"margin_percent,omitempty" validate:"omitempty,gte=0"`
	Notes         *string  `json:"notes,omitempty"`
}

type TaxEntryRequest struct {
	Label   string  `json:"label" validate:"required,max=60"`
	Percent float64 `json:"percent" validate:"gte=0"`
}

type ExtraItemRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description,omitempty"`
	Value       float64 `json:"value" validate:"gte=0"`
}

type ListOrdersRequest struct {
	CustomerID *int64       `json:"customer_id,omitempty"`
	Status     *OrderStatus `json:"status,omitempty"`
	Limit      int          `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int          `json:"offset" validate:"gte=0"`
}
