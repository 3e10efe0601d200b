package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
)

var statusRank = map[Status]int{
	StatusPending:   0,
	StatusShipped:   1,
	StatusDelivered: 2,
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo enforces the forward-only lifecycle
// pending → shipped → delivered.
func (s Status) CanAdvanceTo(next Status) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return statusRank[next] > statusRank[s]
}

// Line is a frozen order line: the price captured at order time is never
// re-derived from the catalog. This is deliberately a different type from
// a cart item, which carries no price at all.
type Line struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Qty         int             `json:"qty"`
	PriceAt     decimal.Decimal `json:"priceAt"`
}

// LineTotal recomputes the display total from the frozen snapshot price.
func (l Line) LineTotal() decimal.Decimal {
	return l.PriceAt.Mul(decimal.NewFromInt(int64(l.Qty))).Round(2)
}

// Order is immutable once created, except for Status which only moves
// forward.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []Line          `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryCharge  decimal.Decimal `json:"deliveryCharge"`
	DiscountPercent int             `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	Total           decimal.Decimal `json:"total"`
	PaymentMethod   *string         `json:"paymentMethod"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CartSnapshotLine is a cart line resolved against the live catalog at
// the moment of order creation; Price becomes the line's frozen PriceAt.
type CartSnapshotLine struct {
	ProductID string
	Quantity  int
	Found     bool
	Name      string
	Price     decimal.Decimal
}

type ListOptions struct {
	UserID *string
	Page   int
	Limit  int
}
