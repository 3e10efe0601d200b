package rest

import (
	"net/http"
	"strconv"

	"storefront-be/internal/order"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	service order.Service
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{service: service}
}

type createOrderRequest struct {
	PaymentMethod *string `json:"paymentMethod"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type orderLineView struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Qty         int             `json:"qty"`
	PriceAt     decimal.Decimal `json:"priceAt"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type orderView struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []orderLineView `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryCharge  decimal.Decimal `json:"deliveryCharge"`
	DiscountPercent int             `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	TotalPayable    decimal.Decimal `json:"totalPayable"`
	PaymentMethod   *string         `json:"paymentMethod"`
	Status          order.Status    `json:"status"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

func toOrderView(o *order.Order) orderView {
	items := make([]orderLineView, 0, len(o.Items))
	for _, l := range o.Items {
		items = append(items, orderLineView{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Qty:         l.Qty,
			PriceAt:     l.PriceAt,
			LineTotal:   l.LineTotal(),
		})
	}
	return orderView{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		Subtotal:        o.Subtotal,
		DeliveryCharge:  o.DeliveryCharge,
		DiscountPercent: o.DiscountPercent,
		DiscountAmount:  o.DiscountAmount,
		TotalPayable:    o.Total,
		PaymentMethod:   o.PaymentMethod,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		UpdatedAt:       o.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

// Create handles POST /api/orders. The whole cart converts in one
// transaction; any failure leaves cart and stock untouched.
func (h *OrderHandler) Create(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req createOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	o, err := h.service.Create(c.Request.Context(), id.UserID, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order created", "order": toOrderView(o)})
}

// GetDetail handles GET /api/orders/:id. Ownership is enforced by the
// service, so a foreign order surfaces as 403 even when it exists.
func (h *OrderHandler) GetDetail(c *gin.Context) {
	if _, ok := identityOrAbort(c); !ok {
		return
	}

	orderID := c.Param("id")
	if !validUUID(orderID) {
		writeError(c, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.service.GetDetail(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": toOrderView(o)})
}

// List handles GET /api/orders, scoped to the caller unless their role
// sees all orders.
func (h *OrderHandler) List(c *gin.Context) {
	if _, ok := identityOrAbort(c); !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	orders, total, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toOrderView(o))
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	pages := (total + limit - 1) / limit
	c.JSON(http.StatusOK, gin.H{
		"orders":      views,
		"page":        page,
		"limit":       limit,
		"totalOrders": total,
		"totalPages":  pages,
	})
}

// UpdateStatus handles PATCH /api/orders/:id/status. Status only moves
// forward through pending, shipped, delivered.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	if _, ok := identityOrAbort(c); !ok {
		return
	}

	orderID := c.Param("id")
	if !validUUID(orderID) {
		writeError(c, http.StatusBadRequest, "invalid order id")
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "status is required")
		return
	}

	o, err := h.service.UpdateStatus(c.Request.Context(), orderID, order.Status(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": toOrderView(o)})
}
