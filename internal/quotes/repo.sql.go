package quotes

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fabriq-erp/fabriq/internal/platform/db"
	"github.com/fabriq-erp/fabriq/internal/shared"
)

// PgRepository persists orders in PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PgRepository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", shared.ErrValidation, pgErr.ConstraintName)
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", shared.ErrDuplicate, pgErr.ConstraintName)
		}
	}
	return err
}

func (r *PgRepository) Get(ctx context.Context, id int64) (*Order, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `SELECT id, quote_ref, customer_id, product_id, quantity, freight_value,
margin_percent, status, notes, created_at, updated_at
FROM orders WHERE id=$1`, id).Scan(
		&o.ID, &o.QuoteRef, &o.CustomerID, &o.ProductID, &o.Quantity, &o.FreightValue,
		&o.MarginPercent, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	taxes, err := r.listTaxes(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Taxes = taxes

	extras, err := r.listExtras(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Extras = extras

	return &o, nil
}

func (r *PgRepository) listTaxes(ctx context.Context, orderID int64) ([]TaxEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, label, percent FROM order_taxes WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taxes []TaxEntry
	for rows.Next() {
		var t TaxEntry
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Label, &t.Percent); err != nil {
			return nil, err
		}
		taxes = append(taxes, t)
	}
	return taxes, rows.Err()
}

func (r *PgRepository) listExtras(ctx context.Context, orderID int64) ([]ExtraItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, name, description, value FROM order_extras WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extras []ExtraItem
	for rows.Next() {
		var e ExtraItem
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Name, &e.Description, &e.Value); err != nil {
			return nil, err
		}
		extras = append(extras, e)
	}
	return extras, rows.Err()
}

func (r *PgRepository) List(ctx context.Context, req ListOrdersRequest) ([]OrderWithDetails, int, error) {
	query := `SELECT o.id, o.quote_ref, o.customer_id, o.product_id, o.quantity, o.freight_value,
o.margin_percent, o.status, o.notes, o.created_at, o.updated_at, c.name, p.name
FROM orders o
JOIN customers c ON o.customer_id = c.id
JOIN products p ON o.product_id = p.id
WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM orders o WHERE 1=1`
	args := []any{}
	argCount := 0

	if req.CustomerID != nil {
		argCount++
		query += ` AND o.customer_id = $` + strconv.Itoa(argCount)
		countQuery += ` AND o.customer_id = $` + strconv.Itoa(argCount)
		args = append(args, *req.CustomerID)
	}
	if req.Status != nil {
		argCount++
		query += ` AND o.status = $` + strconv.Itoa(argCount)
		countQuery += ` AND o.status = $` + strconv.Itoa(argCount)
		args = append(args, string(*req.Status))
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY o.created_at DESC, o.id DESC LIMIT $%d OFFSET $%d", argCount+1, argCount+2)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []OrderWithDetails
	for rows.Next() {
		var o OrderWithDetails
		if err := rows.Scan(
			&o.ID, &o.QuoteRef, &o.CustomerID, &o.ProductID, &o.Quantity, &o.FreightValue,
			&o.MarginPercent, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
			&o.CustomerName, &o.ProductName,
		); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

func (r *PgRepository) Create(ctx context.Context, order Order) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO orders (quote_ref, customer_id, product_id, quantity, freight_value, margin_percent, status, notes, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW()) RETURNING id`,
		order.QuoteRef, order.CustomerID, order.ProductID, order.Quantity, order.FreightValue,
		order.MarginPercent, string(order.Status), order.Notes).Scan(&id)
	if err != nil {
		return 0, mapPgError(err)
	}
	return id, nil
}

func (r *PgRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE orders SET updated_at = NOW()"
	var args []any
	argPos := 1

	for _, col := range []string{"quantity", "freight_value", "margin_percent", "status", "notes"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM order_taxes WHERE order_id=$1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM order_extras WHERE order_id=$1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *PgRepository) AddTax(ctx context.Context, entry TaxEntry) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO order_taxes (order_id, label, percent) VALUES ($1,$2,$3) RETURNING id`,
		entry.OrderID, entry.Label, entry.Percent).Scan(&id)
	if err != nil {
		return 0, mapPgError(err)
	}
	return id, nil
}

func (r *PgRepository) RemoveTax(ctx context.Context, orderID, taxID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM order_taxes WHERE id=$1 AND order_id=$2`, taxID, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PgRepository) AddExtra(ctx context.Context, item ExtraItem) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO order_extras (order_id, name, description, value) VALUES ($1,$2,$3,$4) RETURNING id`,
		item.OrderID, item.Name, item.Description, item.Value).Scan(&id)
	if err != nil {
		return 0, mapPgError(err)
	}
	return id, nil
}

func (r *PgRepository) RemoveExtra(ctx context.Context, orderID, extraID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM order_extras WHERE id=$1 AND order_id=$2`, extraID, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
