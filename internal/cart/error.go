package cart

import "errors"

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("not enough stock")
	ErrInvalidQuantity   = errors.New("quantity must be >= 1")
)
