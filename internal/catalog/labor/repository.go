package labor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fabriq-erp/fabriq/internal/shared"
)

type Repository interface {
	Create(ctx context.Context, req CreateLaborTypeRequest) (*LaborType, error)
	Get(ctx context.Context, id int64) (*LaborType, error)
	List(ctx context.Context, req ListLaborTypesRequest) ([]LaborType, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*LaborType, error)
	Delete(ctx context.Context, id int64) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const laborColumns = `id, name, description, price_per_hour, created_at, updated_at`

func scanLaborType(row pgx.Row) (*LaborType, error) {
	var lt LaborType
	err := row.Scan(&lt.ID, &lt.Name, &lt.Description, &lt.PricePerHour, &lt.CreatedAt, &lt.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("scan labor type: %w", err)
	}
	return &lt, nil
}

func (r *PgRepository) Create(ctx context.Context, req CreateLaborTypeRequest) (*LaborType, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO labor_types (name, description, price_per_hour)
		VALUES ($1, $2, $3)
		RETURNING `+laborColumns,
		req.Name, req.Description, req.PricePerHour)
	return scanLaborType(row)
}

func (r *PgRepository) Get(ctx context.Context, id int64) (*LaborType, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+laborColumns+` FROM labor_types WHERE id = $1`, id)
	return scanLaborType(row)
}

func (r *PgRepository) List(ctx context.Context, req ListLaborTypesRequest) ([]LaborType, error) {
	query := `SELECT ` + laborColumns + ` FROM labor_types`
	args := []any{}
	argCount := 0

	if req.Search != "" {
		argCount++
		query += ` WHERE name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+req.Search+"%")
	}

	query += ` ORDER BY name ASC`

	if req.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, req.Limit)
	}
	if req.Offset > 0 {
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list labor types: %w", err)
	}
	defer rows.Close()

	out := []LaborType{}
	for rows.Next() {
		var lt LaborType
		if err := rows.Scan(&lt.ID, &lt.Name, &lt.Description, &lt.PricePerHour, &lt.CreatedAt, &lt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan labor type row: %w", err)
		}
		out = append(out, lt)
	}
	return out, rows.Err()
}

func (r *PgRepository) Update(ctx context.Context, id int64, updates map[string]any) (*LaborType, error) {
	if len(updates) == 0 {
		return r.Get(ctx, id)
	}

	setClauses := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+1)
	argCount := 0
	for col, val := range updates {
		argCount++
		setClauses = append(setClauses, col+` = $`+strconv.Itoa(argCount))
		args = append(args, val)
	}
	setClauses = append(setClauses, `updated_at = NOW()`)

	argCount++
	args = append(args, id)

	row := r.pool.QueryRow(ctx, `
		UPDATE labor_types SET `+strings.Join(setClauses, ", ")+`
		WHERE id = $`+strconv.Itoa(argCount)+`
		RETURNING `+laborColumns, args...)
	return scanLaborType(row)
}

func (r *PgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM labor_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete labor type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
