package bom

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fabriq-erp/fabriq/internal/shared"
)

// PgRepository reads the dependency graph from PostgreSQL and writes back the
// cached cost columns.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PgRepository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `SELECT id, code, name, kind, unit_price, required_quantity, is_component,
COALESCE(materials_cost, 0), COALESCE(processes_cost, 0), COALESCE(labor_cost, 0), COALESCE(total_cost, 0), last_computed_at
FROM products WHERE id=$1`, id).Scan(
		&p.ID, &p.Code, &p.Name, &p.Kind, &p.UnitPrice, &p.RequiredQuantity, &p.IsComponent,
		&p.MaterialsCost, &p.ProcessesCost, &p.LaborCost, &p.TotalCost, &p.LastComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PgRepository) ListDependencies(ctx context.Context, parentID int64) ([]DependencyEdge, error) {
	rows, err := r.pool.Query(ctx, `SELECT parent_product_id, child_product_id, quantity_per_unit
FROM product_dependencies WHERE parent_product_id=$1 ORDER BY child_product_id`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []DependencyEdge
	for rows.Next() {
		var e DependencyEdge
		if err := rows.Scan(&e.ParentProductID, &e.ChildProductID, &e.Quantity); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (r *PgRepository) ListProcessAttachments(ctx context.Context, productID int64) ([]ProcessAttachment, error) {
	// LEFT JOIN keeps dangling attachments visible; a nil price marks them.
	rows, err := r.pool.Query(ctx, `SELECT pp.process_id, COALESCE(pr.name, ''), pp.quantity, pr.price_per_unit
FROM product_processes pp
LEFT JOIN processes pr ON pr.id = pp.process_id
WHERE pp.product_id=$1 ORDER BY pp.process_id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var atts []ProcessAttachment
	for rows.Next() {
		var a ProcessAttachment
		if err := rows.Scan(&a.ProcessID, &a.Name, &a.Quantity, &a.PricePerUnit); err != nil {
			return nil, err
		}
		atts = append(atts, a)
	}
	return atts, rows.Err()
}

func (r *PgRepository) ListLaborAttachments(ctx context.Context, productID int64) ([]LaborAttachment, error) {
	rows, err := r.pool.Query(ctx, `SELECT pl.labor_type_id, COALESCE(lt.name, ''), pl.hours, lt.price_per_hour
FROM product_labor pl
LEFT JOIN labor_types lt ON lt.id = pl.labor_type_id
WHERE pl.product_id=$1 ORDER BY pl.labor_type_id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var atts []LaborAttachment
	for rows.Next() {
		var a LaborAttachment
		if err := rows.Scan(&a.LaborTypeID, &a.Name, &a.Hours, &a.PricePerHour); err != nil {
			return nil, err
		}
		atts = append(atts, a)
	}
	return atts, rows.Err()
}

func (r *PgRepository) SaveCosts(ctx context.Context, productID int64, b Breakdown) error {
	_, err := r.pool.Exec(ctx, `UPDATE products
SET materials_cost=$2, processes_cost=$3, labor_cost=$4, total_cost=$5, last_computed_at=$6, updated_at=NOW()
WHERE id=$1`, productID, b.Materials, b.Processes, b.Labor, b.Total, b.ComputedAt)
	return err
}

func (r *PgRepository) ListCalculatedProductIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM products WHERE kind=$1 ORDER BY id`, string(KindCalculated))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
