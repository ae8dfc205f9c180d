package producers

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
	List(ctx context.Context, filters shared.ListFilters) ([]Producer, int, error)
	Get(ctx context.Context, id int64) (Producer, error)
	Create(ctx context.Context, input ProducerInput) (Producer, error)
	Update(ctx context.Context, id int64, input ProducerInput) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Producer, int, error) {
	query := `SELECT id, name, country, description, created_at, updated_at FROM producers WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM producers WHERE 1=1`
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

	var producers []Producer
	for rows.Next() {
		var p Producer
		if err := rows.Scan(&p.ID, &p.Name, &p.Country, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		producers = append(producers, p)
	}
	return producers, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Producer, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, country, description, created_at, updated_at FROM producers WHERE id=$1`, id)
	var p Producer
	if err := row.Scan(&p.ID, &p.Name, &p.Country, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Producer{}, ErrNotFound
		}
		return Producer{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, input ProducerInput) (Producer, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO producers (name, country, description, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id, name, country, description, created_at, updated_at`,
		input.Name, input.Country, input.Description)
	var p Producer
	if err := row.Scan(&p.ID, &p.Name, &p.Country, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if isConstraintViolation(err, "uq_producers_name") {
			return Producer{}, ErrAlreadyExists
		}
		return Producer{}, err
	}
	return p, nil
}

// isConstraintViolation reports whether err is a postgres error raised
// by the named constraint.
func isConstraintViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == constraint
}

func (r *repository) Update(ctx context.Context, id int64, input ProducerInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE producers SET name=$1, country=$2, description=$3, updated_at=NOW() WHERE id=$4`,
		input.Name, input.Country, input.Description, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM producers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
