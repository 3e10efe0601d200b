package product

import "errors"

var (
	ErrNotFound   = errors.New("product not found")
	ErrForbidden  = errors.New("only admin or seller can manage products")
	ErrNoFields   = errors.New("no fields to update")
	ErrValidation = errors.New("invalid product input")
)
