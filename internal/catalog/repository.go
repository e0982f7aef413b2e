package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/productmaster/internal/platform/db"
)

const uniqueViolation = "23505"

// Repository persists products.
type Repository interface {
	Get(ctx context.Context, id int64) (Product, error)
	Search(ctx context.Context, filter SearchFilter) ([]Product, error)
	Create(ctx context.Context, req CreateRequest) (Product, error)
	Update(ctx context.Context, req UpdateRequest) (Product, error)
	SoftDelete(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository returns a Repository backed by pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

// CreateMany inserts reqs in one transaction, skipping codes that already
// exist among live products. It returns the number of inserted rows.
func CreateMany(ctx context.Context, pool *pgxpool.Pool, reqs []CreateRequest) (int, error) {
	inserted := 0
	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		for _, req := range reqs {
			// A unique violation aborts the enclosing transaction, so every
			// insert runs in its own savepoint.
			sp, err := tx.Begin(ctx)
			if err != nil {
				return err
			}
			if _, err := (&repository{db: sp}).Create(ctx, req); err != nil {
				_ = sp.Rollback(ctx)
				if errors.Is(err, ErrDuplicate) {
					continue
				}
				return err
			}
			if err := sp.Commit(ctx); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	return inserted, err
}

const productColumns = `id, name, code, unit, default_price, standard_stock_quantity, created_at, updated_at, deleted_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Unit, &p.DefaultPrice, &p.StandardStockQuantity, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	return p, err
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM m_products WHERE id = $1 AND deleted_at IS NULL`
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (r *repository) Search(ctx context.Context, filter SearchFilter) ([]Product, error) {
	query, args := buildSearchQuery(filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0, filter.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func buildSearchQuery(filter SearchFilter) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(`SELECT ` + productColumns + ` FROM m_products WHERE deleted_at IS NULL`)
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Name != "" {
		b.WriteString(` AND name ILIKE ` + arg("%"+escapeLike(filter.Name)+"%"))
	}
	if filter.Code != "" {
		b.WriteString(` AND code ILIKE ` + arg("%"+escapeLike(filter.Code)+"%"))
	}
	b.WriteString(` ORDER BY id ASC`)
	b.WriteString(` LIMIT ` + arg(filter.Limit))
	b.WriteString(` OFFSET ` + arg(filter.Offset))
	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *repository) Create(ctx context.Context, req CreateRequest) (Product, error) {
	query := `INSERT INTO m_products (name, code, unit, default_price, standard_stock_quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + productColumns
	p, err := scanProduct(r.db.QueryRow(ctx, query, req.Name, req.Code, req.Unit, req.DefaultPrice, req.StandardStockQuantity))
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, ErrDuplicate
		}
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, req UpdateRequest) (Product, error) {
	query := `UPDATE m_products SET
			name = COALESCE($2, name),
			code = COALESCE($3, code),
			unit = COALESCE($4, unit),
			default_price = COALESCE($5, default_price),
			standard_stock_quantity = COALESCE($6, standard_stock_quantity),
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + productColumns
	p, err := scanProduct(r.db.QueryRow(ctx, query, req.ID, req.Name, req.Code, req.Unit, req.DefaultPrice, req.StandardStockQuantity))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return Product{}, ErrNotFound
		case isUniqueViolation(err):
			return Product{}, ErrDuplicate
		}
		return Product{}, fmt.Errorf("update product %d: %w", req.ID, err)
	}
	return p, nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE m_products SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
