package rest

import (
	"net/http"
	"strconv"

	"storefront-be/internal/auth"
	"storefront-be/internal/cart"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	service cart.Service
}

func NewCartHandler(service cart.Service) *CartHandler {
	return &CartHandler{service: service}
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Qty       int    `json:"qty" binding:"required,min=1"`
}

type syncItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Qty       int    `json:"qty"`
}

type syncRequest struct {
	Items []syncItemRequest `json:"items" binding:"required"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// AddItem handles POST /api/cart/items. It replies 201 when the add
// produced the cart's first line, 200 otherwise.
func (h *CartHandler) AddItem(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "productId and a positive qty are required")
		return
	}
	if !validUUID(req.ProductID) {
		writeError(c, http.StatusBadRequest, "invalid product id")
		return
	}

	res, err := h.service.AddItem(c.Request.Context(), cart.AddItemParams{
		UserID:    id.UserID,
		ProductID: req.ProductID,
		Qty:       req.Qty,
		Reserve:   c.Query("reserve") == "true",
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if res.FirstLine {
		status = http.StatusCreated
	}
	body := gin.H{"cart": res.Quote}
	if res.Reserved {
		body["reserved"] = true
	}
	c.JSON(status, body)
}

// Sync handles POST /api/cart/sync, replacing the cart with the posted
// line set. Per-line problems become warnings, never request failures.
func (h *CartHandler) Sync(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "items array is required")
		return
	}
	for _, item := range req.Items {
		if !validUUID(item.ProductID) {
			writeError(c, http.StatusBadRequest, "invalid product id in items")
			return
		}
	}

	lines := make([]cart.SyncItem, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, cart.SyncItem{ProductID: item.ProductID, Qty: item.Qty})
	}

	res, err := h.service.Sync(c.Request.Context(), cart.SyncParams{
		UserID:  id.UserID,
		Items:   lines,
		Reserve: c.Query("reserve") == "true",
	})
	if err != nil {
		respondError(c, err)
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	body := gin.H{"merged": true, "cart": res.Quote, "warnings": warnings}
	if res.Reserved {
		body["reserved"] = true
	}
	c.JSON(http.StatusOK, body)
}

// Get handles GET /api/cart. An optional ?discount= override is honored
// only when it parses as an integer; range checks happen downstream.
func (h *CartHandler) Get(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var override *int
	if raw := c.Query("discount"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			override = &v
		}
	}

	quote, err := h.service.Get(c.Request.Context(), id.UserID, override)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": quote})
}

// UpdateQuantity handles PATCH /api/cart/items/:productId. A quantity
// of zero or less removes the line.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	productID := c.Param("productId")
	if !validUUID(productID) {
		writeError(c, http.StatusBadRequest, "invalid product id")
		return
	}

	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "quantity is required")
		return
	}

	quote, err := h.service.UpdateQuantity(c.Request.Context(), id.UserID, productID, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": quote})
}

// RemoveItem handles DELETE /api/cart/items/:productId.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	productID := c.Param("productId")
	if !validUUID(productID) {
		writeError(c, http.StatusBadRequest, "invalid product id")
		return
	}

	quote, err := h.service.RemoveItem(c.Request.Context(), id.UserID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": quote})
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	quote, err := h.service.Clear(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": quote})
}

func identityOrAbort(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(c.Request.Context())
	if !ok {
		writeError(c, http.StatusUnauthorized, "authentication required")
		return auth.Identity{}, false
	}
	return id, true
}
