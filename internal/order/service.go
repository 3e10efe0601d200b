package order

import (
	"context"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/pricing"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, userID string, paymentMethod *string) (*Order, error)
	GetDetail(ctx context.Context, orderID string) (*Order, error)
	List(ctx context.Context, page, limit int) ([]*Order, int, error)
	UpdateStatus(ctx context.Context, orderID string, next Status) (*Order, error)
}

type service struct {
	repo             Repository
	engine           *pricing.Engine
	reserveInventory bool
}

// NewService builds the order workflow. reserveInventory controls
// whether order creation decrements stock (default true in wiring).
func NewService(repo Repository, engine *pricing.Engine, reserveInventory bool) Service {
	return &service{
		repo:             repo,
		engine:           engine,
		reserveInventory: reserveInventory,
	}
}

// Create converts the user's cart into an immutable order: resolve
// current prices, price the lines, reserve stock and clear the cart, all
// inside one storage transaction. Unlike cart sync, any single
// insufficient-stock line aborts the entire order.
func (s *service) Create(ctx context.Context, userID string, paymentMethod *string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.String("user_id", userID),
	)

	snapshot, err := s.repo.GetCartSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(snapshot) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]pricing.Line, 0, len(snapshot))
	items := make([]Line, 0, len(snapshot))
	for _, ln := range snapshot {
		pl := pricing.Line{ProductID: ln.ProductID, Qty: ln.Quantity}
		if ln.Found {
			pl.Product = &pricing.Product{ID: ln.ProductID, Name: ln.Name, Price: ln.Price}
			// Freeze the price now; it is never re-derived.
			items = append(items, Line{
				ProductID:   ln.ProductID,
				ProductName: ln.Name,
				Qty:         ln.Quantity,
				PriceAt:     ln.Price,
			})
		}
		lines = append(lines, pl)
	}

	if len(items) == 0 {
		// Every line pointed at a vanished product; nothing to sell.
		return nil, ErrEmptyCart
	}

	// Discount at order time is always randomized; the override path
	// exists only for cart viewing.
	quote := s.engine.Quote(lines, nil)

	o := &Order{
		UserID:          userID,
		Items:           items,
		Subtotal:        quote.Subtotal,
		DeliveryCharge:  quote.DeliveryCharge,
		DiscountPercent: quote.DiscountPercent,
		DiscountAmount:  quote.DiscountAmount,
		Total:           quote.TotalPayable,
		PaymentMethod:   paymentMethod,
		Status:          StatusPending,
	}

	if err := s.repo.CreateOrderTx(ctx, o, s.reserveInventory); err != nil {
		metrics.OrderFailures.Inc()
		log.Warn("order creation failed", zap.Error(err))
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("total", o.Total.String()),
	)

	return o, nil
}

// GetDetail loads one order, enforcing ownership: a user-role caller may
// only read their own orders, admin and seller may read any.
func (s *service) GetDetail(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, ErrForbidden
	}
	if !id.Role.SeesAllOrders() && o.UserID != id.UserID {
		return nil, ErrForbidden
	}

	return o, nil
}

// List pages orders newest-first, scoped to the caller unless the role
// sees all orders.
func (s *service) List(ctx context.Context, page, limit int) ([]*Order, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	} else if limit > 100 {
		limit = 100
	}

	opts := ListOptions{Page: page, Limit: limit}

	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, 0, ErrForbidden
	}
	if !id.Role.SeesAllOrders() {
		opts.UserID = &id.UserID
	}

	return s.repo.List(ctx, opts)
}

// UpdateStatus advances an order along the forward-only lifecycle.
func (s *service) UpdateStatus(ctx context.Context, orderID string, next Status) (*Order, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok || !id.Role.CanManageOrders() {
		return nil, ErrForbidden
	}

	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	if !o.Status.CanAdvanceTo(next) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, err
	}

	o.Status = next
	return o, nil
}
