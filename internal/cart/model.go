package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is a quantity ledger: it never stores prices. Pricing is
// re-derived from live product state on every read and mutation.
type Cart struct {
	ID        string
	UserID    string
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is one unpriced cart line. ProductID is unique within a cart.
type Item struct {
	ProductID string
	Quantity  int
}

// PricedLine is a cart line joined against the live catalog. Found is
// false when the product has been hard-deleted out from under the cart.
type PricedLine struct {
	ProductID string
	Quantity  int
	Found     bool
	Name      string
	Price     decimal.Decimal
	Stock     int
	Status    string
}
