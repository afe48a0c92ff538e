package bom

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/fabriq-erp/fabriq/internal/shared"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestProductCostUnknownProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.ProductCost(context.Background(), 42, false)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProductCostFreshAlwaysRecomputes(t *testing.T) {
	repo := newMemoryRepo()
	repo.addSimple(1, "sheet", 10, 1)
	repo.addCalculated(2, "frame")
	repo.link(2, 1, 2)

	cache, _ := newTestCache(t)
	svc := NewService(repo, cache, nil)
	ctx := context.Background()

	b, err := svc.ProductCost(ctx, 2, false)
	require.NoError(t, err)
	require.InDelta(t, 20.0, b.Total, 0.0001)

	// price change is visible immediately on the authoritative path
	repo.addSimple(1, "sheet", 15, 1)
	b, err = svc.ProductCost(ctx, 2, false)
	require.NoError(t, err)
	require.InDelta(t, 30.0, b.Total, 0.0001)
}

func TestProductCostCachedPath(t *testing.T) {
	repo := newMemoryRepo()
	repo.addSimple(1, "sheet", 10, 1)
	repo.addCalculated(2, "frame")
	repo.link(2, 1, 2)

	cache, _ := newTestCache(t)
	svc := NewService(repo, cache, nil)
	ctx := context.Background()

	b, err := svc.ProductCost(ctx, 2, false)
	require.NoError(t, err)
	require.InDelta(t, 20.0, b.Total, 0.0001)

	// the cached path may serve the stale value until invalidation
	repo.addSimple(1, "sheet", 99, 1)
	b, err = svc.ProductCost(ctx, 2, true)
	require.NoError(t, err)
	require.InDelta(t, 20.0, b.Total, 0.0001)

	require.NoError(t, svc.Invalidate(ctx, 2))
	b, err = svc.ProductCost(ctx, 2, true)
	require.NoError(t, err)
	require.InDelta(t, 198.0, b.Total, 0.0001)
}

func TestProductCostSimpleBypassesCache(t *testing.T) {
	repo := newMemoryRepo()
	repo.addSimple(1, "sheet", 10, 3)

	cache, mr := newTestCache(t)
	svc := NewService(repo, cache, nil)

	b, err := svc.ProductCost(context.Background(), 1, true)
	require.NoError(t, err)
	require.InDelta(t, 30.0, b.Total, 0.0001)
	require.False(t, mr.Exists("bom:cost:1"))
}

func TestProductCostNilCache(t *testing.T) {
	repo := newMemoryRepo()
	repo.addSimple(1, "sheet", 10, 1)
	repo.addCalculated(2, "frame")
	repo.link(2, 1, 1)

	svc := NewService(repo, nil, nil)
	b, err := svc.ProductCost(context.Background(), 2, true)
	require.NoError(t, err)
	require.InDelta(t, 10.0, b.Total, 0.0001)
}

func TestRecostAll(t *testing.T) {
	repo := newMemoryRepo()
	repo.addSimple(1, "sheet", 10, 1)
	repo.addCalculated(2, "frame")
	repo.addCalculated(3, "cabinet")
	repo.link(2, 1, 1)
	repo.link(3, 2, 2)

	svc := NewService(repo, nil, nil)
	recosted, err := svc.RecostAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, recosted)
	require.InDelta(t, 10.0, repo.saved[2].Total, 0.0001)
	require.InDelta(t, 20.0, repo.saved[3].Total, 0.0001)
}
