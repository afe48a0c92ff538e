package quotes

import "context"

// Repository persists orders and their tax/extra entries. Implementations
// return shared.ErrNotFound for missing records.
type Repository interface {
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]OrderWithDetails, int, error)
	Create(ctx context.Context, order Order) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error

	AddTax(ctx context.Context, entry TaxEntry) (int64, error)
	RemoveTax(ctx context.Context, orderID, taxID int64) error
	AddExtra(ctx context.Context, item ExtraItem) (int64, error)
	RemoveExtra(ctx context.Context, orderID, extraID int64) error
}
