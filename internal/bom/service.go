package bom

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"
)

// Service is the externally exposed cost API. Simple products are always
// priced fresh; calculated products are recomputed on every authoritative
// read, with concurrent recomputations of the same product collapsed
// in-process. The Redis cache only serves the explicit cached read path.
type Service struct {
	repo     Repository
	resolver *Resolver
	cache    *Cache
	logger   *slog.Logger
	group    singleflight.Group
}

// NewService constructs Service. cache may be nil.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		resolver: NewResolver(repo, logger),
		cache:    cache,
		logger:   logger,
	}
}

// ProductCost returns the per-unit cost breakdown of a product. With
// allowCached set, a calculated product may be served from the TTL'd cache;
// otherwise the whole subtree is re-resolved. Returns shared.ErrNotFound when
// the product does not exist.
func (s *Service) ProductCost(ctx context.Context, productID int64, allowCached bool) (Breakdown, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return Breakdown{}, err
	}

	if product.Kind == KindSimple {
		return s.resolver.Resolve(ctx, productID, nil)
	}

	if allowCached {
		cached, err := s.cache.Get(ctx, productID)
		if err != nil {
			s.logger.Warn("cost cache read failed", slog.Int64("product_id", productID), slog.Any("error", err))
		} else if cached != nil {
			return *cached, nil
		}
	}

	v, err, _ := s.group.Do(strconv.FormatInt(productID, 10), func() (any, error) {
		b, err := s.resolver.Resolve(ctx, productID, nil)
		if err != nil {
			return Breakdown{}, err
		}
		if err := s.cache.Set(ctx, productID, b); err != nil {
			s.logger.Warn("cost cache write failed", slog.Int64("product_id", productID), slog.Any("error", err))
		}
		return b, nil
	})
	if err != nil {
		return Breakdown{}, err
	}
	return v.(Breakdown), nil
}

// ProductCostItemized resolves a product with flattened cost lines. Always
// recomputes; quote assembly must not trust the cache.
func (s *Service) ProductCostItemized(ctx context.Context, productID int64) (Breakdown, []Line, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return Breakdown{}, nil, err
	}
	b, lines, err := s.resolver.ResolveItemized(ctx, productID)
	if err != nil {
		return Breakdown{}, nil, err
	}
	if err := s.cache.Set(ctx, productID, b); err != nil {
		s.logger.Warn("cost cache write failed", slog.Int64("product_id", productID), slog.Any("error", err))
	}
	return b, lines, nil
}

// Invalidate drops the cached breakdown after a catalog change.
func (s *Service) Invalidate(ctx context.Context, productID int64) error {
	return s.cache.Invalidate(ctx, productID)
}

// RecostAll recomputes every calculated product. Per-product failures are
// logged and skipped so a single bad record cannot stall the batch.
func (s *Service) RecostAll(ctx context.Context) (int, error) {
	ids, err := s.repo.ListCalculatedProductIDs(ctx)
	if err != nil {
		return 0, err
	}
	recosted := 0
	for _, id := range ids {
		if _, err := s.ProductCost(ctx, id, false); err != nil {
			s.logger.Warn("recost failed", slog.Int64("product_id", id), slog.Any("error", err))
			continue
		}
		recosted++
	}
	return recosted, nil
}
