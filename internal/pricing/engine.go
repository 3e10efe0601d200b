package pricing

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
)

// Product is the price snapshot a quote is computed against.
type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Line pairs a cart quantity with the product it was resolved to.
// Product is nil when the catalog no longer has it; such lines are
// skipped with a warning rather than failing the whole quote.
type Line struct {
	ProductID string
	Product   *Product
	Qty       int
}

type QuotedItem struct {
	Product   Product         `json:"product"`
	Qty       int             `json:"qty"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Quote is the full pricing breakdown returned by every cart read and
// mutation.
type Quote struct {
	Items           []QuotedItem    `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryCharge  decimal.Decimal `json:"deliveryCharge"`
	DiscountPercent int             `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	TotalPayable    decimal.Decimal `json:"totalPayable"`
	Warnings        []string        `json:"warnings"`
}

type Config struct {
	DeliveryCharge        decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		DeliveryCharge:        decimal.NewFromInt(50),
		FreeDeliveryThreshold: decimal.NewFromInt(1000),
	}
}

// Engine computes quotes. It does no I/O; callers resolve products first.
type Engine struct {
	cfg  Config
	intn func(n int) int
}

type Option func(*Engine)

// WithIntn replaces the randomness source used for promotional discounts.
func WithIntn(intn func(n int) int) Option {
	return func(e *Engine) { e.intn = intn }
}

func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, intn: rand.Intn}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// randomDiscount picks the promotional discount percent, uniform in [5,15].
func (e *Engine) randomDiscount() int {
	return e.intn(11) + 5
}

// ZeroQuote is the breakdown for an absent or empty cart.
func ZeroQuote() Quote {
	return Quote{
		Items:          []QuotedItem{},
		Subtotal:       decimal.Zero,
		DeliveryCharge: decimal.Zero,
		DiscountAmount: decimal.Zero,
		TotalPayable:   decimal.Zero,
		Warnings:       []string{},
	}
}

// Quote prices the given lines. override, when inside [0,100], pins the
// discount percent; otherwise a random promotional percent is drawn.
// Every monetary step is rounded to 2 decimal places, half away from zero,
// in the order stated here; cumulative rounding is accepted as-is.
func (e *Engine) Quote(lines []Line, override *int) Quote {
	items := make([]QuotedItem, 0, len(lines))
	warnings := []string{}
	subtotal := decimal.Zero

	for _, ln := range lines {
		if ln.Product == nil {
			warnings = append(warnings, fmt.Sprintf("product %s not found, skipped", ln.ProductID))
			continue
		}

		lineTotal := ln.Product.Price.Mul(decimal.NewFromInt(int64(ln.Qty))).Round(2)
		items = append(items, QuotedItem{
			Product:   *ln.Product,
			Qty:       ln.Qty,
			LineTotal: lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	subtotal = subtotal.Round(2)

	deliveryCharge := e.cfg.DeliveryCharge
	if subtotal.GreaterThanOrEqual(e.cfg.FreeDeliveryThreshold) {
		deliveryCharge = decimal.Zero
	}

	var discountPercent int
	if override != nil && *override >= 0 && *override <= 100 {
		discountPercent = *override
	} else {
		discountPercent = e.randomDiscount()
	}

	discountAmount := subtotal.
		Mul(decimal.NewFromInt(int64(discountPercent))).
		Div(decimal.NewFromInt(100)).
		Round(2)

	totalPayable := subtotal.Add(deliveryCharge).Sub(discountAmount)
	if totalPayable.IsNegative() {
		totalPayable = decimal.Zero
	}
	totalPayable = totalPayable.Round(2)

	return Quote{
		Items:           items,
		Subtotal:        subtotal,
		DeliveryCharge:  deliveryCharge,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		TotalPayable:    totalPayable,
		Warnings:        warnings,
	}
}
