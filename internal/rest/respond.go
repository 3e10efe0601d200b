package rest

import (
	"errors"
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/inventory"
	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/product"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondError maps domain sentinels onto the HTTP taxonomy. Anything
// unrecognized is logged and surfaced as a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, inventory.ErrProductNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		writeError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, product.ErrNoFields),
		errors.Is(err, product.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, product.ErrForbidden),
		errors.Is(err, order.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())

	default:
		logger.FromCtx(c.Request.Context()).Error("unexpected error", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal server error")
	}
}

func validUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
