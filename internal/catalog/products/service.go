package products

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fabriq-erp/fabriq/internal/bom"
	"github.com/fabriq-erp/fabriq/internal/shared"
)

// CostInvalidator drops a product's cached cost breakdown after an edit.
type CostInvalidator interface {
	Invalidate(ctx context.Context, productID int64) error
}

// RecostEnqueuer schedules a background recomputation of a product's cost.
type RecostEnqueuer interface {
	EnqueueRecost(ctx context.Context, productID int64) error
}

type Service struct {
	repo        Repository
	invalidator CostInvalidator
	enqueuer    RecostEnqueuer
	logger      *slog.Logger
}

// NewService constructs Service. invalidator and enqueuer may be nil.
func NewService(repo Repository, invalidator CostInvalidator, enqueuer RecostEnqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, invalidator: invalidator, enqueuer: enqueuer, logger: logger}
}

func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	kind := bom.ProductKind(req.Kind)
	if kind == bom.KindSimple && req.UnitPrice == nil {
		return Product{}, fmt.Errorf("%w: unit_price is required for simple products", shared.ErrValidation)
	}

	qty := req.RequiredQuantity
	if qty == 0 {
		qty = 1
	}

	product := Product{
		Code:             req.Code,
		Name:             req.Name,
		Kind:             kind,
		RequiredQuantity: qty,
		IsComponent:      req.IsComponent,
	}
	if kind == bom.KindSimple {
		product.UnitPrice = req.UnitPrice
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (Product, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Product{}, err
	}

	updates := make(map[string]any)
	if req.Code != nil {
		updates["code"] = *req.Code
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.UnitPrice != nil {
		updates["unit_price"] = *req.UnitPrice
	}
	if req.RequiredQuantity != nil {
		updates["required_quantity"] = *req.RequiredQuantity
	}
	if req.IsComponent != nil {
		updates["is_component"] = *req.IsComponent
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return Product{}, err
		}
		s.markStale(ctx, id)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.markStale(ctx, id)
	return nil
}

func (s *Service) ListComponents(ctx context.Context, parentID int64) ([]Component, error) {
	if _, err := s.repo.Get(ctx, parentID); err != nil {
		return nil, err
	}
	return s.repo.ListComponents(ctx, parentID)
}

func (s *Service) AddComponent(ctx context.Context, parentID int64, req AddComponentRequest) error {
	parent, err := s.repo.Get(ctx, parentID)
	if err != nil {
		return err
	}
	if parent.Kind != bom.KindCalculated {
		return fmt.Errorf("%w: only calculated products have components", shared.ErrValidation)
	}
	if parentID == req.ChildProductID {
		return fmt.Errorf("%w: a product cannot depend on itself", shared.ErrValidation)
	}
	if err := s.repo.AddComponent(ctx, parentID, req.ChildProductID, req.Quantity); err != nil {
		return err
	}
	s.markStale(ctx, parentID)
	return nil
}

func (s *Service) RemoveComponent(ctx context.Context, parentID, childID int64) error {
	if err := s.repo.RemoveComponent(ctx, parentID, childID); err != nil {
		return err
	}
	s.markStale(ctx, parentID)
	return nil
}

func (s *Service) ListProcessLinks(ctx context.Context, productID int64) ([]ProcessLink, error) {
	if _, err := s.repo.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.ListProcessLinks(ctx, productID)
}

func (s *Service) AttachProcess(ctx context.Context, productID int64, req AttachProcessRequest) error {
	if _, err := s.repo.Get(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.AttachProcess(ctx, productID, req.ProcessID, req.Quantity); err != nil {
		return err
	}
	s.markStale(ctx, productID)
	return nil
}

func (s *Service) DetachProcess(ctx context.Context, productID, processID int64) error {
	if err := s.repo.DetachProcess(ctx, productID, processID); err != nil {
		return err
	}
	s.markStale(ctx, productID)
	return nil
}

func (s *Service) ListLaborLinks(ctx context.Context, productID int64) ([]LaborLink, error) {
	if _, err := s.repo.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.ListLaborLinks(ctx, productID)
}

func (s *Service) AttachLabor(ctx context.Context, productID int64, req AttachLaborRequest) error {
	if _, err := s.repo.Get(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.AttachLabor(ctx, productID, req.LaborTypeID, req.Hours); err != nil {
		return err
	}
	s.markStale(ctx, productID)
	return nil
}

func (s *Service) DetachLabor(ctx context.Context, productID, laborTypeID int64) error {
	if err := s.repo.DetachLabor(ctx, productID, laborTypeID); err != nil {
		return err
	}
	s.markStale(ctx, productID)
	return nil
}

// markStale drops the cached breakdown and schedules a background recost.
// Both are best effort: authoritative reads recompute anyway.
func (s *Service) markStale(ctx context.Context, productID int64) {
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, productID); err != nil {
			s.logger.Warn("invalidate cost cache", slog.Int64("product_id", productID), slog.Any("error", err))
		}
	}
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueRecost(ctx, productID); err != nil {
			s.logger.Warn("enqueue recost", slog.Int64("product_id", productID), slog.Any("error", err))
		}
	}
}
