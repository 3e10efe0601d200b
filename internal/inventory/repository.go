package inventory

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"

	"go.uber.org/zap"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotFound   = errors.New("product not found")
)

// Repository reserves and releases product stock. Reserve must stay
// race-safe under concurrent callers, so the decrement is a single
// conditional UPDATE rather than a read-then-write.
type Repository interface {
	Reserve(ctx context.Context, productID string, qty int) error
	Release(ctx context.Context, productID string, qty int) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Reserve(ctx context.Context, productID string, qty int) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Reserve"),
		zap.String("product_id", productID),
		zap.Int("qty", qty),
	)

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`, productID, qty)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Nothing matched: either the product is gone or stock was short.
	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrProductNotFound
	}

	metrics.ReservationFailures.Inc()
	log.Warn("reservation rejected, insufficient stock")
	return ErrInsufficientStock
}

// Release returns previously reserved stock. No caller reverses a
// reservation today; this is the remediation primitive for future
// rollback paths.
func (r *repository) Release(ctx context.Context, productID string, qty int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
	`, productID, qty)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}

	return nil
}
