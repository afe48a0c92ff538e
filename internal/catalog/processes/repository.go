package processes

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
	Create(ctx context.Context, req CreateProcessRequest) (*Process, error)
	Get(ctx context.Context, id int64) (*Process, error)
	List(ctx context.Context, req ListProcessesRequest) ([]Process, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*Process, error)
	Delete(ctx context.Context, id int64) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const processColumns = `id, name, description, price_per_unit, created_at, updated_at`

func scanProcess(row pgx.Row) (*Process, error) {
	var p Process
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PricePerUnit, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("scan process: %w", err)
	}
	return &p, nil
}

func (r *PgRepository) Create(ctx context.Context, req CreateProcessRequest) (*Process, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO processes (name, description, price_per_unit)
		VALUES ($1, $2, $3)
		RETURNING `+processColumns,
		req.Name, req.Description, req.PricePerUnit)
	return scanProcess(row)
}

func (r *PgRepository) Get(ctx context.Context, id int64) (*Process, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+processColumns+` FROM processes WHERE id = $1`, id)
	return scanProcess(row)
}

func (r *PgRepository) List(ctx context.Context, req ListProcessesRequest) ([]Process, error) {
	query := `SELECT ` + processColumns + ` FROM processes`
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
		return nil, fmt.Errorf("list processes: %w", err)
	}
	defer rows.Close()

	out := []Process{}
	for rows.Next() {
		var p Process
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PricePerUnit, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan process row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PgRepository) Update(ctx context.Context, id int64, updates map[string]any) (*Process, error) {
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
		UPDATE processes SET `+strings.Join(setClauses, ", ")+`
		WHERE id = $`+strconv.Itoa(argCount)+`
		RETURNING `+processColumns, args...)
	return scanProcess(row)
}

func (r *PgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM processes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete process: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
