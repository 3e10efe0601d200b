package order

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
	GetCartSnapshot(ctx context.Context, userID string) ([]CartSnapshotLine, error)
	CreateOrderTx(ctx context.Context, o *Order, reserveInventory bool) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, opts ListOptions) ([]*Order, int, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// GetCartSnapshot resolves the user's cart lines against current product
// state. An empty slice means no cart or an empty one; the caller treats
// both as EmptyCart.
func (r *repository) GetCartSnapshot(ctx context.Context, userID string) ([]CartSnapshotLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			ci.product_id,
			ci.quantity,
			p.id IS NOT NULL,
			COALESCE(p.name, ''),
			COALESCE(p.price, 0)
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

	lines := []CartSnapshotLine{}
	for rows.Next() {
		var ln CartSnapshotLine
		if err := rows.Scan(&ln.ProductID, &ln.Quantity, &ln.Found, &ln.Name, &ln.Price); err != nil {
			return nil, err
		}
		lines = append(lines, ln)
	}

	return lines, rows.Err()
}

// CreateOrderTx persists the order, reserves stock and empties the cart
// as one transaction. A failed stock decrement on any line rolls the
// whole order back, so no partial reservation ever survives.
func (r *repository) CreateOrderTx(ctx context.Context, o *Order, reserveInventory bool) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.String("user_id", o.UserID),
		zap.Int("item_count", len(o.Items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			user_id, subtotal, delivery_charge,
			discount_percent, discount_amount, total,
			payment_method, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`,
		o.UserID,
		o.Subtotal,
		o.DeliveryCharge,
		o.DiscountPercent,
		o.DiscountAmount,
		o.Total,
		o.PaymentMethod,
		o.Status,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for _, item := range o.Items {
		if reserveInventory {
			res, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock = stock - $2, updated_at = NOW()
				WHERE id = $1 AND stock >= $2
			`, item.ProductID, item.Qty)
			if err != nil {
				return err
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				log.Warn("stock reservation failed, aborting order",
					zap.String("product_id", item.ProductID),
					zap.Int("qty", item.Qty),
				)
				return fmt.Errorf("%w for product %s", ErrInsufficientStock, item.ProductName)
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, quantity, price_at
			) VALUES ($1, $2, $3, $4, $5)
		`,
			o.ID,
			item.ProductID,
			item.ProductName,
			item.Qty,
			item.PriceAt,
		)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM cart_items
		USING carts
		WHERE cart_items.cart_id = carts.id AND carts.user_id = $1
	`, o.UserID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("order created", zap.String("order_id", o.ID))
	return nil
}

const orderColumns = `id, user_id, subtotal, delivery_charge, discount_percent, discount_amount, total, payment_method, status, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Subtotal,
		&o.DeliveryCharge,
		&o.DiscountPercent,
		&o.DiscountAmount,
		&o.Total,
		&o.PaymentMethod,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Items = []Line{}
	return &o, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	if lines := items[o.ID]; lines != nil {
		o.Items = lines
	}

	return o, nil
}

func (r *repository) loadItems(ctx context.Context, orderIDs []string) (map[string][]Line, error) {
	if len(orderIDs) == 0 {
		return map[string][]Line{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, product_name, quantity, price_at
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY product_id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]Line)
	for rows.Next() {
		var orderID string
		var ln Line
		if err := rows.Scan(&orderID, &ln.ProductID, &ln.ProductName, &ln.Qty, &ln.PriceAt); err != nil {
			return nil, err
		}
		result[orderID] = append(result[orderID], ln)
	}

	return result, rows.Err()
}

// List returns orders newest-first, optionally scoped to one user.
func (r *repository) List(ctx context.Context, opts ListOptions) ([]*Order, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListOrders"),
	)

	start := time.Now()

	where := []string{}
	args := []any{}

	if opts.UserID != nil {
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, *opts.UserID)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders`+whereClause, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (opts.Page - 1) * opts.Limit
	query := `SELECT ` + orderColumns + ` FROM orders` + whereClause +
		` ORDER BY created_at DESC` +
		` LIMIT $` + fmt.Sprint(len(args)+1) +
		` OFFSET $` + fmt.Sprint(len(args)+2)
	args = append(args, opts.Limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]*Order, 0, opts.Limit)
	ids := make([]string, 0, opts.Limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, o := range orders {
		if lines := items[o.ID]; lines != nil {
			o.Items = lines
		}
	}

	log.Info("orders listed",
		zap.Int("count", len(orders)),
		zap.Int("total", total),
		zap.Duration("duration", time.Since(start)),
	)

	return orders, total, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	return nil
}
