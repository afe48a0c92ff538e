package bom

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fabriq-erp/fabriq/internal/shared"
)

type memoryRepo struct {
	products  map[int64]Product
	deps      map[int64][]DependencyEdge
	processes map[int64][]ProcessAttachment
	labor     map[int64][]LaborAttachment

	saved   map[int64]Breakdown
	saveErr error
	getErr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products:  make(map[int64]Product),
		deps:      make(map[int64][]DependencyEdge),
		processes: make(map[int64][]ProcessAttachment),
		labor:     make(map[int64][]LaborAttachment),
		saved:     make(map[int64]Breakdown),
	}
}

func (r *memoryRepo) addSimple(id int64, name string, price, qty float64) {
	r.products[id] = Product{ID: id, Name: name, Kind: KindSimple, UnitPrice: &price, RequiredQuantity: qty}
}

func (r *memoryRepo) addCalculated(id int64, name string) {
	r.products[id] = Product{ID: id, Name: name, Kind: KindCalculated}
}

func (r *memoryRepo) link(parent, child int64, qty float64) {
	r.deps[parent] = append(r.deps[parent], DependencyEdge{ParentProductID: parent, ChildProductID: child, Quantity: qty})
}

func (r *memoryRepo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) ListDependencies(ctx context.Context, parentID int64) ([]DependencyEdge, error) {
	return r.deps[parentID], nil
}

func (r *memoryRepo) ListProcessAttachments(ctx context.Context, productID int64) ([]ProcessAttachment, error) {
	return r.processes[productID], nil
}

func (r *memoryRepo) ListLaborAttachments(ctx context.Context, productID int64) ([]LaborAttachment, error) {
	return r.labor[productID], nil
}

func (r *memoryRepo) SaveCosts(ctx context.Context, productID int64, b Breakdown) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved[productID] = b
	return nil
}

func (r *memoryRepo) ListCalculatedProductIDs(ctx context.Context) ([]int64, error) {
	ids := []int64{}
	for id, p := range r.products {
		if p.Kind == KindCalculated {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func f64(v float64) *float64 { return &v }

func TestResolveSimpleProduct(t *testing.T) {
	repo := newMemoryRepo()
	repo.addSimple(1, "steel sheet", 12.5, 4)

	resolver := NewResolver(repo, nil)
	b, err := resolver.Resolve(context.Background(), 1, nil)
	require.NoError(t, err)
	require.InDelta(t, 50.0, b.Materials, 0.0001)
	require.InDelta(t, 50.0, b.Total, 0.0001)
	require.Zero(t, b.Processes)
	require.Zero(t, b.Labor)
	require.Zero(t, b.CyclesDetected)
}

func TestResolveSimpleDefaultsQuantityToOne(t *testing.T) {
	repo := newMemoryRepo()
	repo.addSimple(1, "bolt", 2, 0)

	resolver := NewResolver(repo, nil)
	b, err := resolver.Resolve(context.Background(), 1, nil)
	require.NoError(t, err)
	require.InDelta(t, 2.0, b.Total, 0.0001)
}

func TestResolveEmptyCalculatedIsZero(t *testing.T) {
	repo := newMemoryRepo()
	repo.addCalculated(10, "empty assembly")

	resolver := NewResolver(repo, nil)
	b, err := resolver.Resolve(context.Background(), 10, nil)
	require.NoError(t, err)
	require.Zero(t, b.Total)
}

func TestResolveComposition(t *testing.T) {
	repo := newMemoryRepo()
	repo.addSimple(1, "sheet", 10, 1)
	repo.addSimple(2, "bolt", 0.5, 1)
	repo.addCalculated(10, "frame")
	repo.link(10, 1, 2)  // 2 sheets
	repo.link(10, 2, 20) // 20 bolts
	repo.processes[10] = []ProcessAttachment{{ProcessID: 1, Name: "welding", Quantity: 3, PricePerUnit: f64(5)}}
	repo.labor[10] = []LaborAttachment{{LaborTypeID: 1, Name: "assembler", Hours: 2, PricePerHour: f64(15)}}

	resolver := NewResolver(repo, nil)
	b, err := resolver.Resolve(context.Background(), 10, nil)
	require.NoError(t, err)
	require.InDelta(t, 30.0, b.Materials, 0.0001) // 2*10 + 20*0.5
	require.InDelta(t, 15.0, b.Processes, 0.0001)
	require.InDelta(t, 30.0, b.Labor, 0.0001)
	require.InDelta(t, 75.0, b.Total, 0.0001)

	// write-through persisted
	saved, ok := repo.saved[10]
	require.True(t, ok)
	require.InDelta(t, 75.0, saved.Total, 0.0001)
}

func TestResolveNestedMultipliers(t *testing.T) {
	// root -> 2x mid -> 3x leaf(price 4): root materials = 2 * (3*4) = 24
	repo := newMemoryRepo()
	repo.addSimple(1, "leaf", 4, 1)
	repo.addCalculated(2, "mid")
	repo.addCalculated(3, "root")
	repo.link(2, 1, 3)
	repo.link(3, 2, 2)

	resolver := NewResolver(repo, nil)
	b, err := resolver.Resolve(context.Background(), 3, nil)
	require.NoError(t, err)
	require.InDelta(t, 24.0, b.Total, 0.0001)
}

func TestResolveLinearScaling(t *testing.T) {
	// Total is linear in each quantity family: scaling every edge quantity by
	// k, or every leaf required quantity by k, scales the resolved total by k.
	build := func(edgeScale, leafScale float64) *memoryRepo {
		repo := newMemoryRepo()
		repo.addSimple(1, "sheet", 5, 2*leafScale)
		repo.addSimple(2, "tube", 3, 1*leafScale)
		repo.addCalculated(10, "frame")
		repo.link(10, 1, 2*edgeScale)
		repo.link(10, 2, 4*edgeScale)
		return repo
	}
	ctx := context.Background()

	base, err := NewResolver(build(1, 1), nil).Resolve(ctx, 10, nil)
	require.NoError(t, err)
	require.InDelta(t, 32.0, base.Total, 0.0001)

	const k = 3.0

	edges, err := NewResolver(build(k, 1), nil).Resolve(ctx, 10, nil)
	require.NoError(t, err)
	require.InDelta(t, k*base.Total, edges.Total, 0.0001)

	leaves, err := NewResolver(build(1, k), nil).Resolve(ctx, 10, nil)
	require.NoError(t, err)
	require.InDelta(t, k*base.Total, leaves.Total, 0.0001)
	require.InDelta(t, k*base.Materials, leaves.Materials, 0.0001)
}

func TestResolveCycleTerminates(t *testing.T) {
	repo := newMemoryRepo()
	repo.addCalculated(1, "a")
	repo.addCalculated(2, "b")
	repo.addSimple(3, "leaf", 7, 1)
	repo.link(1, 2, 1)
	repo.link(1, 3, 1)
	repo.link(2, 1, 1) // cycle back to a

	resolver := NewResolver(repo, nil)
	b, err := resolver.Resolve(context.Background(), 1, nil)
	require.NoError(t, err)
	// the cyclic branch contributes zero, the leaf still counts
	require.InDelta(t, 7.0, b.Total, 0.0001)
	require.Equal(t, 1, b.CyclesDetected)
}

func TestResolveSelfCycle(t *testing.T) {
	repo := newMemoryRepo()
	repo.addCalculated(1, "ouroboros")
	repo.link(1, 1, 5)

	resolver := NewResolver(repo, nil)
	b, err := resolver.Resolve(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Zero(t, b.Total)
	require.Equal(t, 1, b.CyclesDetected)
}

func TestResolveSharedSubtreeIsNotACycle(t *testing.T) {
	// Diamond: root depends on mid1 and mid2, both depend on the same leaf.
	// The leaf must be priced on both paths.
	repo := newMemoryRepo()
	repo.addSimple(1, "leaf", 10, 1)
	repo.addCalculated(2, "mid1")
	repo.addCalculated(3, "mid2")
	repo.addCalculated(4, "root")
	repo.link(2, 1, 1)
	repo.link(3, 1, 1)
	repo.link(4, 2, 1)
	repo.link(4, 3, 1)

	resolver := NewResolver(repo, nil)
	b, err := resolver.Resolve(context.Background(), 4, nil)
	require.NoError(t, err)
	require.InDelta(t, 20.0, b.Total, 0.0001)
	require.Zero(t, b.CyclesDetected)
}

func TestResolveMissingChildContributesZero(t *testing.T) {
	repo := newMemoryRepo()
	repo.addCalculated(1, "assembly")
	repo.addSimple(2, "sheet", 5, 1)
	repo.link(1, 2, 1)
	repo.link(1, 999, 10) // child never created

	resolver := NewResolver(repo, nil)
	b, err := resolver.Resolve(context.Background(), 1, nil)
	require.NoError(t, err)
	require.InDelta(t, 5.0, b.Total, 0.0001)
}

func TestResolveDanglingAttachmentsSkipped(t *testing.T) {
	repo := newMemoryRepo()
	repo.addCalculated(1, "assembly")
	repo.processes[1] = []ProcessAttachment{
		{ProcessID: 1, Name: "cutting", Quantity: 2, PricePerUnit: f64(3)},
		{ProcessID: 2, Name: "", Quantity: 5, PricePerUnit: nil},
	}
	repo.labor[1] = []LaborAttachment{
		{LaborTypeID: 9, Name: "", Hours: 8, PricePerHour: nil},
	}

	resolver := NewResolver(repo, nil)
	b, err := resolver.Resolve(context.Background(), 1, nil)
	require.NoError(t, err)
	require.InDelta(t, 6.0, b.Processes, 0.0001)
	require.Zero(t, b.Labor)
}

func TestResolveStorageErrorAborts(t *testing.T) {
	repo := newMemoryRepo()
	repo.addCalculated(1, "assembly")
	repo.getErr = errors.New("connection reset")

	resolver := NewResolver(repo, nil)
	_, err := resolver.Resolve(context.Background(), 1, nil)
	require.Error(t, err)
}

func TestResolveSaveFailureIsBestEffort(t *testing.T) {
	repo := newMemoryRepo()
	repo.addCalculated(1, "assembly")
	repo.addSimple(2, "sheet", 5, 1)
	repo.link(1, 2, 2)
	repo.saveErr = errors.New("disk full")

	resolver := NewResolver(repo, nil)
	b, err := resolver.Resolve(context.Background(), 1, nil)
	require.NoError(t, err)
	require.InDelta(t, 10.0, b.Total, 0.0001)
}

func TestResolveIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	repo.addSimple(1, "leaf", 4, 2)
	repo.addCalculated(2, "root")
	repo.link(2, 1, 3)

	resolver := NewResolver(repo, nil)
	first, err := resolver.Resolve(context.Background(), 2, nil)
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), 2, nil)
	require.NoError(t, err)
	require.InDelta(t, first.Total, second.Total, 0.0001)
}

func TestResolveItemizedLines(t *testing.T) {
	repo := newMemoryRepo()
	repo.addSimple(1, "sheet", 10, 1)
	repo.addCalculated(2, "frame")
	repo.link(2, 1, 4)
	repo.processes[2] = []ProcessAttachment{{ProcessID: 7, Name: "welding", Quantity: 2, PricePerUnit: f64(5)}}

	resolver := NewResolver(repo, nil)
	b, lines, err := resolver.ResolveItemized(context.Background(), 2)
	require.NoError(t, err)
	require.InDelta(t, 50.0, b.Total, 0.0001)
	require.Len(t, lines, 2)

	byKind := map[LineKind]Line{}
	for _, line := range lines {
		byKind[line.Kind] = line
	}
	require.InDelta(t, 4.0, byKind[LineMaterial].Quantity, 0.0001)
	require.InDelta(t, 40.0, byKind[LineMaterial].Total, 0.0001)
	require.InDelta(t, 10.0, byKind[LineProcess].Total, 0.0001)
}
