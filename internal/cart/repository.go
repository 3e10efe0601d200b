package cart

import (
	"context"
	"database/sql"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetByUser(ctx context.Context, userID string) (*Cart, error)
	Create(ctx context.Context, userID string) (*Cart, error)
	UpsertItem(ctx context.Context, cartID, productID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID string) error
	ClearItems(ctx context.Context, cartID string) error
	GetPricedLines(ctx context.Context, userID string) ([]PricedLine, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// GetByUser loads a user's cart with its items, or (nil, nil) when the
// user has no cart yet.
func (r *repository) GetByUser(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY product_id
	`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Items = []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, item)
	}

	return &c, rows.Err()
}

// Create makes the user's cart; carts are created lazily on first mutation.
func (r *repository) Create(ctx context.Context, userID string) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateCart"),
		zap.String("user_id", userID),
	)

	var c Cart
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO carts (user_id)
		VALUES ($1)
		RETURNING id, user_id, created_at, updated_at
	`, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		log.Error("failed to create cart", zap.Error(err))
		return nil, err
	}

	c.Items = []Item{}

	log.Info("cart created", zap.String("cart_id", c.ID))
	return &c, nil
}

// UpsertItem sets the absolute quantity of a cart line, merging into an
// existing line instead of appending a duplicate.
func (r *repository) UpsertItem(ctx context.Context, cartID, productID string, quantity int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`, cartID, productID, quantity)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID)
	return err
}

func (r *repository) RemoveItem(ctx context.Context, cartID, productID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (r *repository) ClearItems(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

// GetPricedLines joins cart lines against the live catalog. The LEFT
// JOIN keeps lines whose product vanished so the pricing engine can
// report them as warnings instead of failing.
func (r *repository) GetPricedLines(ctx context.Context, userID string) ([]PricedLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			ci.product_id,
			ci.quantity,
			p.id IS NOT NULL,
			COALESCE(p.name, ''),
			COALESCE(p.price, 0),
			COALESCE(p.stock, 0),
			COALESCE(p.status, '')
		FROM cart_items ci
		JOIN carts c ON ci.cart_id = c.id
		LEFT JOIN products p ON ci.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY ci.product_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []PricedLine{}
	for rows.Next() {
		var ln PricedLine
		if err := rows.Scan(
			&ln.ProductID,
			&ln.Quantity,
			&ln.Found,
			&ln.Name,
			&ln.Price,
			&ln.Stock,
			&ln.Status,
		); err != nil {
			return nil, err
		}
		lines = append(lines, ln)
	}

	return lines, rows.Err()
}
