package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Image is a reference pair returned by the external upload service.
type Image struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
	Images      []Image         `json:"images"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type CreateParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Images      []Image
}

// UpdateParams carries the PATCH-partial fields; nil means untouched.
type UpdateParams struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
}

func (p UpdateParams) HasAnyField() bool {
	return p.Name != nil ||
		p.Description != nil ||
		p.Price != nil ||
		p.Stock != nil ||
		p.Category != nil
}

const (
	SortPriceAsc  = "price:asc"
	SortPriceDesc = "price:desc"
	SortNewest    = "newest"
)

type ListOptions struct {
	Query    string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
	Page     int
	Limit    int
}

type ListResult struct {
	Products []*Product `json:"products"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	Pages    int        `json:"pages"`
}
