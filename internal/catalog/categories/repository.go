package categories

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivemart/hivemart/internal/catalog/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, input CategoryInput) (Category, error)
	Update(ctx context.Context, id int64, input CategoryInput) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM categories WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM categories WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countArgs = append(countArgs, "%"+filters.Search+"%")
		countQuery += ` AND name ILIKE $1`
	}

	var total int
	err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, description, created_at, updated_at FROM categories WHERE id=$1`, id)
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, ErrNotFound
		}
		return Category{}, err
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, input CategoryInput) (Category, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO categories (name, description, created_at, updated_at)
VALUES ($1, $2, NOW(), NOW()) RETURNING id, name, description, created_at, updated_at`, input.Name, input.Description)
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if isConstraintViolation(err, "uq_categories_name") {
			return Category{}, ErrAlreadyExists
		}
		return Category{}, err
	}
	return c, nil
}

// isConstraintViolation reports whether err is a postgres error raised
// by the named constraint.
func isConstraintViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == constraint
}

func (r *repository) Update(ctx context.Context, id int64, input CategoryInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE categories SET name=$1, description=$2, updated_at=NOW() WHERE id=$3`, input.Name, input.Description, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
