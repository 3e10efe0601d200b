package product

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"storefront-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id string, onlyActive bool) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]*Product, int, error)
	Create(ctx context.Context, params CreateParams) (*Product, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Product, error)
	DeleteOrArchive(ctx context.Context, id string) (*Product, bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, description, price, stock, category, status, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.Category,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Images = []Image{}
	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id string, onlyActive bool) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if onlyActive {
		query += ` AND status = 'active'`
	}

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	images, err := r.loadImages(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Images = images[p.ID]
	if p.Images == nil {
		p.Images = []Image{}
	}

	return p, nil
}

// loadImages fetches image references for the given products in one query.
func (r *repository) loadImages(ctx context.Context, productIDs []string) (map[string][]Image, error) {
	if len(productIDs) == 0 {
		return map[string][]Image{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, url, filename
		FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY id
	`, pq.Array(productIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]Image)
	for rows.Next() {
		var productID string
		var img Image
		if err := rows.Scan(&productID, &img.URL, &img.Filename); err != nil {
			return nil, err
		}
		result[productID] = append(result[productID], img)
	}

	return result, rows.Err()
}

// List filters, sorts and paginates the active catalog. Text search runs
// against the full-text index first; when that yields nothing for a query
// longer than 2 characters it retries as a case-insensitive substring
// match on the name.
func (r *repository) List(ctx context.Context, opts ListOptions) ([]*Product, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListProducts"),
	)

	start := time.Now()

	products, total, err := r.list(ctx, opts, false)
	if err != nil {
		log.Error("list query failed", zap.Error(err))
		return nil, 0, err
	}

	if total == 0 && len(opts.Query) > 2 {
		log.Debug("text search empty, retrying as substring match",
			zap.String("query", opts.Query),
		)
		products, total, err = r.list(ctx, opts, true)
		if err != nil {
			log.Error("substring fallback failed", zap.Error(err))
			return nil, 0, err
		}
	}

	log.Info("list query success",
		zap.Int("count", len(products)),
		zap.Int("total", total),
		zap.Duration("duration", time.Since(start)),
	)

	return products, total, nil
}

func (r *repository) list(ctx context.Context, opts ListOptions, substring bool) ([]*Product, int, error) {
	where := []string{"status = 'active'"}
	args := []any{}

	if opts.Query != "" {
		if substring {
			where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)+1))
			args = append(args, "%"+opts.Query+"%")
		} else {
			where = append(where, fmt.Sprintf(
				"to_tsvector('english', name || ' ' || coalesce(description, '') || ' ' || category) @@ plainto_tsquery('english', $%d)",
				len(args)+1,
			))
			args = append(args, opts.Query)
		}
	}

	if opts.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, opts.Category)
	}

	if opts.MinPrice != nil {
		where = append(where, fmt.Sprintf("price >= $%d", len(args)+1))
		args = append(args, *opts.MinPrice)
	}

	if opts.MaxPrice != nil {
		where = append(where, fmt.Sprintf("price <= $%d", len(args)+1))
		args = append(args, *opts.MaxPrice)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE `+whereClause, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	orderBy := "created_at DESC"
	switch opts.Sort {
	case SortPriceAsc:
		orderBy = "price ASC"
	case SortPriceDesc:
		orderBy = "price DESC"
	}

	offset := (opts.Page - 1) * opts.Limit

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + whereClause +
		` ORDER BY ` + orderBy +
		` LIMIT $` + fmt.Sprint(len(args)+1) +
		` OFFSET $` + fmt.Sprint(len(args)+2)
	args = append(args, opts.Limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]*Product, 0, opts.Limit)
	ids := make([]string, 0, opts.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	images, err := r.loadImages(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, p := range products {
		if imgs := images[p.ID]; imgs != nil {
			p.Images = imgs
		}
	}

	return products, total, nil
}

func (r *repository) Create(ctx context.Context, params CreateParams) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateProduct"),
		zap.String("name", params.Name),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := scanProduct(tx.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, stock, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productColumns,
		params.Name,
		params.Description,
		params.Price,
		params.Stock,
		params.Category,
	))
	if err != nil {
		log.Error("failed to insert product", zap.Error(err))
		return nil, err
	}

	for _, img := range params.Images {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO product_images (product_id, url, filename)
			VALUES ($1, $2, $3)
		`, p.ID, img.URL, img.Filename)
		if err != nil {
			log.Error("failed to insert product image", zap.Error(err))
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	p.Images = append([]Image{}, params.Images...)

	log.Info("product created", zap.String("product_id", p.ID))

	return p, nil
}

func (r *repository) Update(ctx context.Context, id string, params UpdateParams) (*Product, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{}

	if params.Name != nil {
		set = append(set, fmt.Sprintf("name = $%d", len(args)+1))
		args = append(args, *params.Name)
	}
	if params.Description != nil {
		set = append(set, fmt.Sprintf("description = $%d", len(args)+1))
		args = append(args, *params.Description)
	}
	if params.Price != nil {
		set = append(set, fmt.Sprintf("price = $%d", len(args)+1))
		args = append(args, *params.Price)
	}
	if params.Stock != nil {
		set = append(set, fmt.Sprintf("stock = $%d", len(args)+1))
		args = append(args, *params.Stock)
	}
	if params.Category != nil {
		set = append(set, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, *params.Category)
	}

	query := `UPDATE products SET ` + strings.Join(set, ", ") +
		` WHERE id = $` + fmt.Sprint(len(args)+1) +
		` RETURNING ` + productColumns
	args = append(args, id)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	images, err := r.loadImages(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	if imgs := images[p.ID]; imgs != nil {
		p.Images = imgs
	}

	return p, nil
}

// DeleteOrArchive hard-deletes a product nothing references; a product
// referenced by at least one order line is archived instead so order
// history stays resolvable. Returns the archived product when archiving.
func (r *repository) DeleteOrArchive(ctx context.Context, id string) (*Product, bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "DeleteOrArchive"),
		zap.String("product_id", id),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var referenced bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM order_items WHERE product_id = $1)`, id,
	).Scan(&referenced)
	if err != nil {
		return nil, false, err
	}

	if referenced {
		p, err := scanProduct(tx.QueryRowContext(ctx, `
			UPDATE products
			SET status = 'archived', updated_at = NOW()
			WHERE id = $1
			RETURNING `+productColumns, id,
		))
		if err == sql.ErrNoRows {
			return nil, false, ErrNotFound
		}
		if err != nil {
			return nil, false, err
		}

		if err := tx.Commit(); err != nil {
			return nil, false, err
		}

		log.Info("product archived")
		return p, true, nil
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if affected == 0 {
		return nil, false, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	log.Info("product deleted")
	return nil, false, nil
}
