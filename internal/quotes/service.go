package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fabriq-erp/fabriq/internal/bom"
	"github.com/fabriq-erp/fabriq/internal/shared"
)

var (
	// ErrInvalidStatus indicates a disallowed status transition.
	ErrInvalidStatus = errors.New("invalid status transition")
)

// CostResolver is the upstream cost service the assembler depends on.
type CostResolver interface {
	ProductCostItemized(ctx context.Context, productID int64) (bom.Breakdown, []bom.Line, error)
}

// Service owns order lifecycle and quote assembly.
type Service struct {
	repo   Repository
	costs  CostResolver
	logger *slog.Logger
}

// NewService constructs Service.
func NewService(repo Repository, costs CostResolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, costs: costs, logger: logger}
}

func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	order := Order{
		QuoteRef:      uuid.New(),
		CustomerID:    req.CustomerID,
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		FreightValue:  req.FreightValue,
		MarginPercent: req.MarginPercent,
		Status:        OrderStatusDraft,
		Notes:         req.Notes,
	}

	id, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for _, tax := range req.Taxes {
		if _, err := s.repo.AddTax(ctx, TaxEntry{OrderID: id, Label: tax.Label, Percent: tax.Percent}); err != nil {
			return nil, fmt.Errorf("add tax entry: %w", err)
		}
	}
	for _, extra := range req.Extras {
		if _, err := s.repo.AddExtra(ctx, ExtraItem{OrderID: id, Name: extra.Name, Description: extra.Description, Value: extra.Value}); err != nil {
			return nil, fmt.Errorf("add extra item: %w", err)
		}
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateOrderRequest) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if existing.Status != OrderStatusDraft {
		return nil, fmt.Errorf("%w: only DRAFT orders can be updated", ErrInvalidStatus)
	}

	updates := make(map[string]any)
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.FreightValue != nil {
		updates["freight_value"] = *req.FreightValue
	}
	if req.MarginPercent != nil {
		updates["margin_percent"] = *req.MarginPercent
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update order: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Cancel(ctx context.Context, id int64) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if existing.Status != OrderStatusDraft {
		return nil, fmt.Errorf("%w: only DRAFT orders can be cancelled", ErrInvalidStatus)
	}
	if err := s.repo.Update(ctx, id, map[string]any{"status": string(OrderStatusCancelled)}); err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListOrdersRequest) ([]OrderWithDetails, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) AddTax(ctx context.Context, orderID int64, req TaxEntryRequest) (*Order, error) {
	if _, err := s.repo.Get(ctx, orderID); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if _, err := s.repo.AddTax(ctx, TaxEntry{OrderID: orderID, Label: req.Label, Percent: req.Percent}); err != nil {
		return nil, fmt.Errorf("add tax entry: %w", err)
	}
	return s.repo.Get(ctx, orderID)
}

func (s *Service) RemoveTax(ctx context.Context, orderID, taxID int64) error {
	return s.repo.RemoveTax(ctx, orderID, taxID)
}

func (s *Service) AddExtra(ctx context.Context, orderID int64, req ExtraItemRequest) (*Order, error) {
	if _, err := s.repo.Get(ctx, orderID); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if _, err := s.repo.AddExtra(ctx, ExtraItem{OrderID: orderID, Name: req.Name, Description: req.Description, Value: req.Value}); err != nil {
		return nil, fmt.Errorf("add extra item: %w", err)
	}
	return s.repo.Get(ctx, orderID)
}

func (s *Service) RemoveExtra(ctx context.Context, orderID, extraID int64) error {
	return s.repo.RemoveExtra(ctx, orderID, extraID)
}

// Assemble turns an order into its final quote through the fixed pipeline:
// resolved costs scaled by quantity, extras, freight, margin, then additive
// taxes. Returns shared.ErrNotFound when the order or its root product does
// not exist; no partial quote is produced.
func (s *Service) Assemble(ctx context.Context, orderID int64) (*QuoteBreakdown, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	unit, lines, err := s.costs.ProductCostItemized(ctx, order.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("root product %d: %w", order.ProductID, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve root product cost: %w", err)
	}

	qty := order.Quantity

	breakdown := &QuoteBreakdown{
		OrderID:        order.ID,
		QuoteRef:       order.QuoteRef,
		MaterialsTotal: unit.Materials * qty,
		ProcessesTotal: unit.Processes * qty,
		LaborTotal:     unit.Labor * qty,
		FreightValue:   order.FreightValue,
		MarginPercent:  order.MarginPercent,
		Materials:      []bom.Line{},
		Processes:      []bom.Line{},
		Labor:          []bom.Line{},
		Extras:         order.Extras,
		CyclesDetected: unit.CyclesDetected,
	}
	if breakdown.Extras == nil {
		breakdown.Extras = []ExtraItem{}
	}

	for _, line := range lines {
		scaled := line
		scaled.Quantity = line.Quantity * qty
		scaled.Total = line.Total * qty
		switch line.Kind {
		case bom.LineMaterial:
			breakdown.Materials = append(breakdown.Materials, scaled)
		case bom.LineProcess:
			breakdown.Processes = append(breakdown.Processes, scaled)
		case bom.LineLabor:
			breakdown.Labor = append(breakdown.Labor, scaled)
		}
	}

	for _, extra := range order.Extras {
		breakdown.ExtrasTotal += extra.Value
	}

	breakdown.Subtotal = breakdown.MaterialsTotal + breakdown.ProcessesTotal +
		breakdown.LaborTotal + breakdown.ExtrasTotal + breakdown.FreightValue
	breakdown.MarginValue = breakdown.Subtotal * breakdown.MarginPercent / 100
	breakdown.TotalWithMargin = breakdown.Subtotal + breakdown.MarginValue

	for _, tax := range order.Taxes {
		breakdown.TaxPercent += tax.Percent
	}
	breakdown.TaxValue = breakdown.TotalWithMargin * breakdown.TaxPercent / 100
	breakdown.FinalTotal = breakdown.TotalWithMargin + breakdown.TaxValue

	return breakdown, nil
}
