package quotes

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fabriq-erp/fabriq/internal/bom"
	"github.com/fabriq-erp/fabriq/internal/shared"
)

type memoryRepo struct {
	orders map[int64]Order
	nextID int64
	taxID  int64
	extID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: make(map[int64]Order)}
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := o
	out.Taxes = append([]TaxEntry(nil), o.Taxes...)
	out.Extras = append([]ExtraItem(nil), o.Extras...)
	return &out, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListOrdersRequest) ([]OrderWithDetails, int, error) {
	out := []OrderWithDetails{}
	for _, o := range r.orders {
		out = append(out, OrderWithDetails{Order: o})
	}
	return out, len(out), nil
}

func (r *memoryRepo) Create(ctx context.Context, order Order) (int64, error) {
	r.nextID++
	order.ID = r.nextID
	r.orders[order.ID] = order
	return order.ID, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	o, ok := r.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	for col, val := range updates {
		switch col {
		case "quantity":
			o.Quantity = val.(float64)
		case "freight_value":
			o.FreightValue = val.(float64)
		case "margin_percent":
			o.MarginPercent = val.(float64)
		case "notes":
			s := val.(string)
			o.Notes = &s
		case "status":
			o.Status = OrderStatus(val.(string))
		}
	}
	r.orders[id] = o
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.orders[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *memoryRepo) AddTax(ctx context.Context, entry TaxEntry) (int64, error) {
	o, ok := r.orders[entry.OrderID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	r.taxID++
	entry.ID = r.taxID
	o.Taxes = append(o.Taxes, entry)
	r.orders[entry.OrderID] = o
	return entry.ID, nil
}

func (r *memoryRepo) RemoveTax(ctx context.Context, orderID, taxID int64) error {
	o, ok := r.orders[orderID]
	if !ok {
		return shared.ErrNotFound
	}
	for i, tax := range o.Taxes {
		if tax.ID == taxID {
			o.Taxes = append(o.Taxes[:i], o.Taxes[i+1:]...)
			r.orders[orderID] = o
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memoryRepo) AddExtra(ctx context.Context, item ExtraItem) (int64, error) {
	o, ok := r.orders[item.OrderID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	r.extID++
	item.ID = r.extID
	o.Extras = append(o.Extras, item)
	r.orders[item.OrderID] = o
	return item.ID, nil
}

func (r *memoryRepo) RemoveExtra(ctx context.Context, orderID, extraID int64) error {
	o, ok := r.orders[orderID]
	if !ok {
		return shared.ErrNotFound
	}
	for i, extra := range o.Extras {
		if extra.ID == extraID {
			o.Extras = append(o.Extras[:i], o.Extras[i+1:]...)
			r.orders[orderID] = o
			return nil
		}
	}
	return shared.ErrNotFound
}

type stubCosts struct {
	breakdown bom.Breakdown
	lines     []bom.Line
	err       error
}

func (s *stubCosts) ProductCostItemized(ctx context.Context, productID int64) (bom.Breakdown, []bom.Line, error) {
	if s.err != nil {
		return bom.Breakdown{}, nil, s.err
	}
	return s.breakdown, s.lines, nil
}

func seedOrder(t *testing.T, repo *memoryRepo, order Order) int64 {
	t.Helper()
	if order.QuoteRef == uuid.Nil {
		order.QuoteRef = uuid.New()
	}
	if order.Status == "" {
		order.Status = OrderStatusDraft
	}
	id, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return id
}

func TestAssemblePipeline(t *testing.T) {
	repo := newMemoryRepo()
	costs := &stubCosts{breakdown: bom.Breakdown{Materials: 100, Processes: 50, Labor: 30, Total: 180}}
	svc := NewService(repo, costs, nil)

	id := seedOrder(t, repo, Order{
		CustomerID:    1,
		ProductID:     7,
		Quantity:      1,
		FreightValue:  10,
		MarginPercent: 10,
		Taxes: []TaxEntry{
			{Label: "ICMS", Percent: 18},
			{Label: "ISS", Percent: 2},
		},
		Extras: []ExtraItem{{Name: "instalacao", Value: 20}},
	})

	quote, err := svc.Assemble(context.Background(), id)
	require.NoError(t, err)

	require.InDelta(t, 100.0, quote.MaterialsTotal, 0.0001)
	require.InDelta(t, 50.0, quote.ProcessesTotal, 0.0001)
	require.InDelta(t, 30.0, quote.LaborTotal, 0.0001)
	require.InDelta(t, 20.0, quote.ExtrasTotal, 0.0001)
	require.InDelta(t, 10.0, quote.FreightValue, 0.0001)
	require.InDelta(t, 210.0, quote.Subtotal, 0.0001)
	require.InDelta(t, 21.0, quote.MarginValue, 0.0001)
	require.InDelta(t, 231.0, quote.TotalWithMargin, 0.0001)
	require.InDelta(t, 20.0, quote.TaxPercent, 0.0001)
	require.InDelta(t, 46.2, quote.TaxValue, 0.0001)
	require.InDelta(t, 277.2, quote.FinalTotal, 0.0001)
}

func TestAssembleScalesByQuantity(t *testing.T) {
	repo := newMemoryRepo()
	costs := &stubCosts{
		breakdown: bom.Breakdown{Materials: 100, Processes: 50, Labor: 30, Total: 180},
		lines: []bom.Line{
			{Kind: bom.LineMaterial, RefID: 1, Name: "sheet", Quantity: 2, UnitValue: 50, Total: 100},
		},
	}
	svc := NewService(repo, costs, nil)

	id := seedOrder(t, repo, Order{
		CustomerID:   1,
		ProductID:    7,
		Quantity:     3,
		FreightValue: 10,
		Extras:       []ExtraItem{{Name: "frete extra", Value: 20}},
	})

	quote, err := svc.Assemble(context.Background(), id)
	require.NoError(t, err)

	// unit costs scale with quantity, extras and freight do not
	require.InDelta(t, 300.0, quote.MaterialsTotal, 0.0001)
	require.InDelta(t, 150.0, quote.ProcessesTotal, 0.0001)
	require.InDelta(t, 90.0, quote.LaborTotal, 0.0001)
	require.InDelta(t, 20.0, quote.ExtrasTotal, 0.0001)
	require.InDelta(t, 10.0, quote.FreightValue, 0.0001)
	require.InDelta(t, 570.0, quote.Subtotal, 0.0001)

	require.Len(t, quote.Materials, 1)
	require.InDelta(t, 6.0, quote.Materials[0].Quantity, 0.0001)
	require.InDelta(t, 300.0, quote.Materials[0].Total, 0.0001)
}

func TestAssembleZeroMarginZeroTaxes(t *testing.T) {
	repo := newMemoryRepo()
	costs := &stubCosts{breakdown: bom.Breakdown{Materials: 80, Total: 80}}
	svc := NewService(repo, costs, nil)

	id := seedOrder(t, repo, Order{CustomerID: 1, ProductID: 7, Quantity: 1})

	quote, err := svc.Assemble(context.Background(), id)
	require.NoError(t, err)
	require.InDelta(t, 80.0, quote.Subtotal, 0.0001)
	require.Zero(t, quote.MarginValue)
	require.Zero(t, quote.TaxValue)
	require.InDelta(t, 80.0, quote.FinalTotal, 0.0001)
}

func TestAssembleEmptyLineListsSerializeAsArrays(t *testing.T) {
	repo := newMemoryRepo()
	costs := &stubCosts{breakdown: bom.Breakdown{Materials: 80, Total: 80}}
	svc := NewService(repo, costs, nil)

	id := seedOrder(t, repo, Order{CustomerID: 1, ProductID: 7, Quantity: 1})

	quote, err := svc.Assemble(context.Background(), id)
	require.NoError(t, err)

	raw, err := json.Marshal(quote)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, field := range []string{"itens_materiais", "itens_processos", "itens_mao_de_obra", "itens_extras"} {
		require.JSONEq(t, "[]", string(doc[field]), field)
	}
}

func TestAssembleMissingOrder(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubCosts{}, nil)
	_, err := svc.Assemble(context.Background(), 404)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAssembleMissingRootProduct(t *testing.T) {
	repo := newMemoryRepo()
	costs := &stubCosts{err: shared.ErrNotFound}
	svc := NewService(repo, costs, nil)

	id := seedOrder(t, repo, Order{CustomerID: 1, ProductID: 999, Quantity: 1})

	_, err := svc.Assemble(context.Background(), id)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAssembleForwardsCycleDiagnostic(t *testing.T) {
	repo := newMemoryRepo()
	costs := &stubCosts{breakdown: bom.Breakdown{Materials: 10, Total: 10, CyclesDetected: 2}}
	svc := NewService(repo, costs, nil)

	id := seedOrder(t, repo, Order{CustomerID: 1, ProductID: 7, Quantity: 1})

	quote, err := svc.Assemble(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 2, quote.CyclesDetected)
}

func TestCreateAssignsQuoteRefAndDraftStatus(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &stubCosts{}, nil)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		CustomerID:    1,
		ProductID:     2,
		Quantity:      1,
		MarginPercent: 15,
		Taxes:         []TaxEntryRequest{{Label: "ICMS", Percent: 18}},
		Extras:        []ExtraItemRequest{{Name: "pintura", Value: 35}},
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, order.QuoteRef)
	require.Equal(t, OrderStatusDraft, order.Status)
	require.Len(t, order.Taxes, 1)
	require.Len(t, order.Extras, 1)
}

func TestUpdateRejectsNonDraft(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &stubCosts{}, nil)

	id := seedOrder(t, repo, Order{CustomerID: 1, ProductID: 2, Quantity: 1, Status: OrderStatusCancelled})

	qty := 5.0
	_, err := svc.Update(context.Background(), id, UpdateOrderRequest{Quantity: &qty})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCancelTransitions(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &stubCosts{}, nil)

	id := seedOrder(t, repo, Order{CustomerID: 1, ProductID: 2, Quantity: 1})

	order, err := svc.Cancel(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, OrderStatusCancelled, order.Status)

	_, err = svc.Cancel(context.Background(), id)
	require.ErrorIs(t, err, ErrInvalidStatus)
}
