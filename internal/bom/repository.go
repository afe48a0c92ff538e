package bom

import "context"

// Repository exposes the dependency-graph reads and the cached-cost write the
// resolver needs. Implementations return shared.ErrNotFound for a missing
// product; every other error is treated as a storage failure and propagated.
type Repository interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListDependencies(ctx context.Context, parentID int64) ([]DependencyEdge, error)
	ListProcessAttachments(ctx context.Context, productID int64) ([]ProcessAttachment, error)
	ListLaborAttachments(ctx context.Context, productID int64) ([]LaborAttachment, error)
	SaveCosts(ctx context.Context, productID int64, b Breakdown) error
	ListCalculatedProductIDs(ctx context.Context) ([]int64, error)
}
