package bom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fabriq-erp/fabriq/internal/shared"
)

// Resolver walks the product dependency graph and computes per-unit
// manufacturing cost. Data-integrity gaps (missing products, dangling
// process/labor references) contribute zero; only storage failures abort a
// resolution.
type Resolver struct {
	repo   Repository
	logger *slog.Logger
}

// NewResolver constructs Resolver.
func NewResolver(repo Repository, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{repo: repo, logger: logger}
}

// lineSink accumulates flattened cost lines during an itemized resolution.
type lineSink struct {
	lines []Line
}

func (s *lineSink) add(line Line) {
	if s == nil {
		return
	}
	s.lines = append(s.lines, line)
}

// Resolve computes the per-unit cost breakdown of a product. The visited set
// carries the ids already on the current path; callers normally pass nil.
func (r *Resolver) Resolve(ctx context.Context, productID int64, visited map[int64]struct{}) (Breakdown, error) {
	return r.resolve(ctx, productID, visited, 1, nil)
}

// ResolveItemized computes the breakdown together with the flattened material,
// process and labor lines of the whole subtree.
func (r *Resolver) ResolveItemized(ctx context.Context, productID int64) (Breakdown, []Line, error) {
	sink := &lineSink{}
	b, err := r.resolve(ctx, productID, nil, 1, sink)
	if err != nil {
		return Breakdown{}, nil, err
	}
	return b, sink.lines, nil
}

func (r *Resolver) resolve(ctx context.Context, productID int64, visited map[int64]struct{}, multiplier float64, sink *lineSink) (Breakdown, error) {
	if _, seen := visited[productID]; seen {
		r.logger.Warn("dependency cycle detected, truncating branch",
			slog.Int64("product_id", productID))
		return Breakdown{CyclesDetected: 1}, nil
	}

	product, err := r.repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Dangling reference: contributes zero, never aborts the tree.
			return Breakdown{}, nil
		}
		return Breakdown{}, fmt.Errorf("bom: load product %d: %w", productID, err)
	}

	if product.Kind == KindSimple {
		qty := product.RequiredQuantity
		if qty == 0 {
			qty = 1
		}
		var price float64
		if product.UnitPrice != nil {
			price = *product.UnitPrice
		}
		total := price * qty
		sink.add(Line{
			Kind:      LineMaterial,
			RefID:     product.ID,
			Name:      product.Name,
			Quantity:  qty * multiplier,
			UnitValue: price,
			Total:     total * multiplier,
		})
		return Breakdown{
			Materials:  total,
			Total:      total,
			ComputedAt: time.Now().UTC(),
		}, nil
	}

	// Each branch carries its own copy of the visited set so a cycle only
	// zeroes the offending path, not sibling branches.
	next := make(map[int64]struct{}, len(visited)+1)
	for id := range visited {
		next[id] = struct{}{}
	}
	next[productID] = struct{}{}

	var result Breakdown

	edges, err := r.repo.ListDependencies(ctx, productID)
	if err != nil {
		return Breakdown{}, fmt.Errorf("bom: list dependencies of %d: %w", productID, err)
	}
	for _, edge := range edges {
		child, err := r.resolve(ctx, edge.ChildProductID, next, multiplier*edge.Quantity, sink)
		if err != nil {
			return Breakdown{}, err
		}
		result.Materials += child.Total * edge.Quantity
		result.CyclesDetected += child.CyclesDetected
	}

	processes, err := r.repo.ListProcessAttachments(ctx, productID)
	if err != nil {
		return Breakdown{}, fmt.Errorf("bom: list processes of %d: %w", productID, err)
	}
	for _, att := range processes {
		if att.PricePerUnit == nil {
			continue
		}
		cost := *att.PricePerUnit * att.Quantity
		result.Processes += cost
		sink.add(Line{
			Kind:      LineProcess,
			RefID:     att.ProcessID,
			Name:      att.Name,
			Quantity:  att.Quantity * multiplier,
			UnitValue: *att.PricePerUnit,
			Total:     cost * multiplier,
		})
	}

	labor, err := r.repo.ListLaborAttachments(ctx, productID)
	if err != nil {
		return Breakdown{}, fmt.Errorf("bom: list labor of %d: %w", productID, err)
	}
	for _, att := range labor {
		if att.PricePerHour == nil {
			continue
		}
		cost := *att.PricePerHour * att.Hours
		result.Labor += cost
		sink.add(Line{
			Kind:      LineLabor,
			RefID:     att.LaborTypeID,
			Name:      att.Name,
			Quantity:  att.Hours * multiplier,
			UnitValue: *att.PricePerHour,
			Total:     cost * multiplier,
		})
	}

	result.Total = result.Materials + result.Processes + result.Labor
	result.ComputedAt = time.Now().UTC()

	// Write-through cache on the product record. Best effort: the caller
	// still receives the freshly computed numbers when this fails.
	if err := r.repo.SaveCosts(ctx, productID, result); err != nil {
		r.logger.Warn("persist cost cache failed",
			slog.Int64("product_id", productID), slog.Any("error", err))
	}

	return result, nil
}
