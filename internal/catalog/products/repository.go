package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fabriq-erp/fabriq/internal/shared"
)

type Repository interface {
	List(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error

	ListComponents(ctx context.Context, parentID int64) ([]Component, error)
	AddComponent(ctx context.Context, parentID, childID int64, quantity float64) error
	RemoveComponent(ctx context.Context, parentID, childID int64) error

	ListProcessLinks(ctx context.Context, productID int64) ([]ProcessLink, error)
	AttachProcess(ctx context.Context, productID, processID int64, quantity float64) error
	DetachProcess(ctx context.Context, productID, processID int64) error

	ListLaborLinks(ctx context.Context, productID int64) ([]LaborLink, error)
	AttachLabor(ctx context.Context, productID, laborTypeID int64, hours float64) error
	DetachLabor(ctx context.Context, productID, laborTypeID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return fmt.Errorf("%w: %s", shared.ErrValidation, pgErr.ConstraintName)
		case "23505":
			return fmt.Errorf("%w: %s", shared.ErrDuplicate, pgErr.ConstraintName)
		}
	}
	return err
}

const productColumns = `id, code, name, kind, unit_price, required_quantity, is_component,
COALESCE(materials_cost, 0), COALESCE(processes_cost, 0), COALESCE(labor_cost, 0), COALESCE(total_cost, 0),
last_computed_at, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Kind, &p.UnitPrice, &p.RequiredQuantity, &p.IsComponent,
		&p.MaterialsCost, &p.ProcessesCost, &p.LaborCost, &p.TotalCost, &p.LastComputedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *repository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM products WHERE 1=1`
	args := []any{}
	argCount := 0

	if req.Search != "" {
		argCount++
		cond := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += cond
		countQuery += cond
		args = append(args, "%"+req.Search+"%")
	}
	if req.Kind != "" {
		argCount++
		cond := ` AND kind = $` + strconv.Itoa(argCount)
		query += cond
		countQuery += cond
		args = append(args, req.Kind)
	}
	if req.IsComponent != nil {
		argCount++
		cond := ` AND is_component = $` + strconv.Itoa(argCount)
		query += cond
		countQuery += cond
		args = append(args, *req.IsComponent)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", argCount+1, argCount+2)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO products (code, name, kind, unit_price, required_quantity, is_component, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW()) RETURNING id`,
		product.Code, product.Name, string(product.Kind), product.UnitPrice,
		product.RequiredQuantity, product.IsComponent).Scan(&id)
	if err != nil {
		return Product{}, mapPgError(err)
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE products SET updated_at = NOW()"
	var args []any
	argPos := 1

	for _, col := range []string{"code", "name", "unit_price", "required_quantity", "is_component"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListComponents(ctx context.Context, parentID int64) ([]Component, error) {
	rows, err := r.db.Query(ctx, `SELECT pd.parent_product_id, pd.child_product_id, COALESCE(p.code,''), COALESCE(p.name,''), pd.quantity_per_unit
FROM product_dependencies pd
LEFT JOIN products p ON p.id = pd.child_product_id
WHERE pd.parent_product_id=$1 ORDER BY pd.child_product_id`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []Component
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.ParentProductID, &c.ChildProductID, &c.ChildCode, &c.ChildName, &c.Quantity); err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func (r *repository) AddComponent(ctx context.Context, parentID, childID int64, quantity float64) error {
	// No insertion-time cycle check: the resolver tolerates cycles and flags them.
	_, err := r.db.Exec(ctx, `INSERT INTO product_dependencies (parent_product_id, child_product_id, quantity_per_unit)
VALUES ($1,$2,$3)
ON CONFLICT (parent_product_id, child_product_id) DO UPDATE SET quantity_per_unit = EXCLUDED.quantity_per_unit`,
		parentID, childID, quantity)
	return mapPgError(err)
}

func (r *repository) RemoveComponent(ctx context.Context, parentID, childID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM product_dependencies WHERE parent_product_id=$1 AND child_product_id=$2`, parentID, childID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListProcessLinks(ctx context.Context, productID int64) ([]ProcessLink, error) {
	rows, err := r.db.Query(ctx, `SELECT pp.product_id, pp.process_id, COALESCE(pr.name,''), pp.quantity, COALESCE(pr.price_per_unit, 0)
FROM product_processes pp
LEFT JOIN processes pr ON pr.id = pp.process_id
WHERE pp.product_id=$1 ORDER BY pp.process_id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []ProcessLink
	for rows.Next() {
		var l ProcessLink
		if err := rows.Scan(&l.ProductID, &l.ProcessID, &l.ProcessName, &l.Quantity, &l.PricePerUnit); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *repository) AttachProcess(ctx context.Context, productID, processID int64, quantity float64) error {
	_, err := r.db.Exec(ctx, `INSERT INTO product_processes (product_id, process_id, quantity)
VALUES ($1,$2,$3)
ON CONFLICT (product_id, process_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		productID, processID, quantity)
	return mapPgError(err)
}

func (r *repository) DetachProcess(ctx context.Context, productID, processID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM product_processes WHERE product_id=$1 AND process_id=$2`, productID, processID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListLaborLinks(ctx context.Context, productID int64) ([]LaborLink, error) {
	rows, err := r.db.Query(ctx, `SELECT pl.product_id, pl.labor_type_id, COALESCE(lt.name,''), pl.hours, COALESCE(lt.price_per_hour, 0)
FROM product_labor pl
LEFT JOIN labor_types lt ON lt.id = pl.labor_type_id
WHERE pl.product_id=$1 ORDER BY pl.labor_type_id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []LaborLink
	for rows.Next() {
		var l LaborLink
		if err := rows.Scan(&l.ProductID, &l.LaborTypeID, &l.LaborName, &l.Hours, &l.PricePerHour); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *repository) AttachLabor(ctx context.Context, productID, laborTypeID int64, hours float64) error {
	_, err := r.db.Exec(ctx, `INSERT INTO product_labor (product_id, labor_type_id, hours)
VALUES ($1,$2,$3)
ON CONFLICT (product_id, labor_type_id) DO UPDATE SET hours = EXCLUDED.hours`,
		productID, laborTypeID, hours)
	return mapPgError(err)
}

func (r *repository) DetachLabor(ctx context.Context, productID, laborTypeID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM product_labor WHERE product_id=$1 AND labor_type_id=$2`, productID, laborTypeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
