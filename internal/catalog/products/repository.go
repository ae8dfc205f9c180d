package products

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivemart/hivemart/internal/catalog/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, input ProductInput) (Product, error)
	Update(ctx context.Context, id int64, input ProductInput) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const selectColumns = `p.id, p.name, p.description, p.category_id, c.name, p.producer_id, pr.name,
p.price, p.stock, p.images, p.is_active, p.created_at, p.updated_at`

const fromClause = ` FROM products p
JOIN categories c ON c.id = p.category_id
JOIN producers pr ON pr.id = p.producer_id`

func buildFilterClause(filters shared.ListFilters, args *[]interface{}) string {
	var sb strings.Builder
	sb.WriteString(` WHERE 1=1`)
	if filters.Search != "" {
		*args = append(*args, "%"+filters.Search+"%")
		sb.WriteString(` AND p.name ILIKE $` + strconv.Itoa(len(*args)))
	}
	if filters.CategoryID != nil {
		*args = append(*args, *filters.CategoryID)
		sb.WriteString(` AND p.category_id = $` + strconv.Itoa(len(*args)))
	}
	if filters.ProducerID != nil {
		*args = append(*args, *filters.ProducerID)
		sb.WriteString(` AND p.producer_id = $` + strconv.Itoa(len(*args)))
	}
	if filters.IsActive != nil {
		*args = append(*args, *filters.IsActive)
		sb.WriteString(` AND p.is_active = $` + strconv.Itoa(len(*args)))
	}
	return sb.String()
}

func orderClause(filters shared.ListFilters) string {
	column := "p.name"
	switch filters.SortBy {
	case "price":
		column = "p.price"
	case "created_at":
		column = "p.created_at"
	case "name", "":
	}
	dir := "ASC"
	if strings.EqualFold(filters.SortDir, "desc") {
		dir = "DESC"
	}
	return ` ORDER BY ` + column + ` ` + dir
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	countArgs := []interface{}{}
	countQuery := `SELECT COUNT(*)` + fromClause + buildFilterClause(filters, &countArgs)

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args := []interface{}{}
	query := `SELECT ` + selectColumns + fromClause + buildFilterClause(filters, &args) + orderClause(filters)

	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))

		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+fromClause+` WHERE p.id=$1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, input ProductInput) (Product, error) {
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO products (name, description, category_id, producer_id, price, stock, images, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()) RETURNING id`,
		input.Name, input.Description, input.CategoryID, input.ProducerID, input.Price, input.Stock, input.Images, active).Scan(&id)
	if err != nil {
		if isRelationViolation(err) {
			return Product{}, ErrMissingRelation
		}
		return Product{}, err
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id int64, input ProductInput) error {
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	tag, err := r.pool.Exec(ctx, `UPDATE products SET name=$1, description=$2, category_id=$3, producer_id=$4,
price=$5, stock=$6, images=$7, is_active=$8, updated_at=NOW() WHERE id=$9`,
		input.Name, input.Description, input.CategoryID, input.ProducerID, input.Price, input.Stock, input.Images, active, id)
	if err != nil {
		if isRelationViolation(err) {
			return ErrMissingRelation
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isRelationViolation reports whether err is a foreign-key violation on
// the product's category or producer reference.
func isRelationViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.ConstraintName, "fk_products_")
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.CategoryName, &p.ProducerID, &p.ProducerName,
		&p.Price, &p.Stock, &p.Images, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
