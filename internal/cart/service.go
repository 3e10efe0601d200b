package cart

import (
	"context"
	"errors"
	"fmt"

	"storefront-be/internal/inventory"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/pricing"
	"storefront-be/internal/product"

	"go.uber.org/zap"
)

type AddItemParams struct {
	UserID    string
	ProductID string
	Qty       int
	Reserve   bool
}

// AddItemResult carries the recomputed quote plus whether the mutation
// produced the cart's first line (the transport answers 201 for that).
type AddItemResult struct {
	Quote     pricing.Quote
	FirstLine bool
	Reserved  bool
}

type SyncItem struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type SyncParams struct {
	UserID  string
	Items   []SyncItem
	Reserve bool
}

type SyncResult struct {
	Quote    pricing.Quote
	Warnings []string
	Reserved bool
}

// Service owns cart mutations. Every mutating operation re-derives the
// full pricing breakdown over the resulting cart state before returning.
type Service interface {
	Get(ctx context.Context, userID string, discountOverride *int) (*pricing.Quote, error)
	AddItem(ctx context.Context, params AddItemParams) (*AddItemResult, error)
	Sync(ctx context.Context, params SyncParams) (*SyncResult, error)
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*pricing.Quote, error)
	RemoveItem(ctx context.Context, userID, productID string) (*pricing.Quote, error)
	Clear(ctx context.Context, userID string) (*pricing.Quote, error)
}

type service struct {
	repo        Repository
	productRepo product.Repository
	invRepo     inventory.Repository
	engine      *pricing.Engine
}

func NewService(
	repo Repository,
	productRepo product.Repository,
	invRepo inventory.Repository,
	engine *pricing.Engine,
) Service {
	return &service{
		repo:        repo,
		productRepo: productRepo,
		invRepo:     invRepo,
		engine:      engine,
	}
}

// quote re-derives the pricing breakdown over the user's current lines.
func (s *service) quote(ctx context.Context, userID string, override *int) (*pricing.Quote, error) {
	priced, err := s.repo.GetPricedLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(priced) == 0 {
		q := pricing.ZeroQuote()
		return &q, nil
	}

	lines := make([]pricing.Line, 0, len(priced))
	for _, pl := range priced {
		ln := pricing.Line{ProductID: pl.ProductID, Qty: pl.Quantity}
		if pl.Found {
			ln.Product = &pricing.Product{ID: pl.ProductID, Name: pl.Name, Price: pl.Price}
		}
		lines = append(lines, ln)
	}

	q := s.engine.Quote(lines, override)
	return &q, nil
}

func (s *service) Get(ctx context.Context, userID string, discountOverride *int) (*pricing.Quote, error) {
	c, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil || len(c.Items) == 0 {
		q := pricing.ZeroQuote()
		return &q, nil
	}

	return s.quote(ctx, userID, discountOverride)
}

// getOrCreate loads the user's cart, creating it lazily on first mutation.
func (s *service) getOrCreate(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return s.repo.Create(ctx, userID)
	}
	return c, nil
}

func (s *service) AddItem(ctx context.Context, params AddItemParams) (*AddItemResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.String("user_id", params.UserID),
		zap.String("product_id", params.ProductID),
		zap.Int("qty", params.Qty),
	)

	if params.Qty < 1 {
		return nil, ErrInvalidQuantity
	}

	prod, err := s.productRepo.GetByID(ctx, params.ProductID, true)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, ErrProductNotFound
	}

	c, err := s.getOrCreate(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	existingQty := 0
	exists := false
	for _, item := range c.Items {
		if item.ProductID == params.ProductID {
			existingQty = item.Quantity
			exists = true
			break
		}
	}

	finalQty := existingQty + params.Qty
	if finalQty > prod.Stock {
		log.Warn("add rejected, exceeds stock",
			zap.Int("final_qty", finalQty),
			zap.Int("stock", prod.Stock),
		)
		return nil, ErrInsufficientStock
	}

	// Soft-reserve before the cart write: decrement only the newly
	// requested quantity, never the merged total.
	if params.Reserve {
		if err := s.invRepo.Reserve(ctx, params.ProductID, params.Qty); err != nil {
			if errors.Is(err, inventory.ErrInsufficientStock) {
				return nil, ErrInsufficientStock
			}
			return nil, err
		}
	}

	if err := s.repo.UpsertItem(ctx, c.ID, params.ProductID, finalQty); err != nil {
		return nil, err
	}
	metrics.CartMutations.Inc()

	q, err := s.quote(ctx, params.UserID, nil)
	if err != nil {
		return nil, err
	}

	log.Info("item added to cart", zap.Int("final_qty", finalQty))

	// Creating the cart's first line answers 201; incrementing an
	// existing line, even in a one-line cart, answers 200.
	return &AddItemResult{
		Quote:     *q,
		FirstLine: !exists && len(c.Items) == 0,
		Reserved:  params.Reserve,
	}, nil
}

// Sync merges a batch of client-side lines into the cart. One bad line
// never aborts the batch: unknown products and stock caps become
// warnings, and the rest of the batch proceeds.
func (s *service) Sync(ctx context.Context, params SyncParams) (*SyncResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Sync"),
		zap.String("user_id", params.UserID),
		zap.Int("item_count", len(params.Items)),
	)

	c, err := s.getOrCreate(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]int, len(c.Items))
	for _, item := range c.Items {
		existing[item.ProductID] = item.Quantity
	}

	warnings := []string{}

	for _, in := range params.Items {
		if in.Qty < 1 {
			warnings = append(warnings, fmt.Sprintf("invalid quantity for product %s, skipped", in.ProductID))
			continue
		}

		prod, err := s.productRepo.GetByID(ctx, in.ProductID, true)
		if err != nil {
			return nil, err
		}
		if prod == nil {
			warnings = append(warnings, fmt.Sprintf("Product %s not found", in.ProductID))
			continue
		}

		existingQty := existing[in.ProductID]
		finalQty := existingQty + in.Qty
		if finalQty > prod.Stock {
			finalQty = prod.Stock
			warnings = append(warnings, fmt.Sprintf("Product %s quantity capped at %d", prod.Name, prod.Stock))
		}

		if err := s.repo.UpsertItem(ctx, c.ID, in.ProductID, finalQty); err != nil {
			return nil, err
		}

		// Reserve only what this merge actually added to the line.
		newlyAdded := finalQty - existingQty
		if params.Reserve && newlyAdded > 0 {
			if err := s.invRepo.Reserve(ctx, in.ProductID, newlyAdded); err != nil {
				if errors.Is(err, inventory.ErrInsufficientStock) || errors.Is(err, inventory.ErrProductNotFound) {
					warnings = append(warnings, fmt.Sprintf("could not reserve stock for product %s", prod.Name))
				} else {
					return nil, err
				}
			}
		}

		existing[in.ProductID] = finalQty
	}
	metrics.CartMutations.Inc()

	q, err := s.quote(ctx, params.UserID, nil)
	if err != nil {
		return nil, err
	}

	log.Info("cart synced", zap.Int("warnings", len(warnings)))

	return &SyncResult{
		Quote:    *q,
		Warnings: warnings,
		Reserved: params.Reserve,
	}, nil
}

// UpdateQuantity replaces a line's quantity verbatim; zero or negative
// removes the line. The absolute value is trusted to the caller, so no
// stock check happens here.
func (s *service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*pricing.Quote, error) {
	c, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartNotFound
	}

	found := false
	for _, item := range c.Items {
		if item.ProductID == productID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrItemNotFound
	}

	if quantity <= 0 {
		if err := s.repo.RemoveItem(ctx, c.ID, productID); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.UpsertItem(ctx, c.ID, productID, quantity); err != nil {
			return nil, err
		}
	}
	metrics.CartMutations.Inc()

	return s.quote(ctx, userID, nil)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID string) (*pricing.Quote, error) {
	c, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartNotFound
	}

	if err := s.repo.RemoveItem(ctx, c.ID, productID); err != nil {
		return nil, err
	}
	metrics.CartMutations.Inc()

	return s.quote(ctx, userID, nil)
}

func (s *service) Clear(ctx context.Context, userID string) (*pricing.Quote, error) {
	c, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartNotFound
	}

	if err := s.repo.ClearItems(ctx, c.ID); err != nil {
		return nil, err
	}
	metrics.CartMutations.Inc()

	q := pricing.ZeroQuote()
	return &q, nil
}
