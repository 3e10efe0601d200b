package rest

import (
	"net/http"
	"strconv"

	"storefront-be/internal/product"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	service product.Service
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{service: service}
}

type imageRequest struct {
	URL      string `json:"url" binding:"required"`
	Filename string `json:"filename"`
}

type createProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category" binding:"required"`
	Images      []imageRequest  `json:"images"`
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
}

// List handles GET /api/products with free-text search, category and
// price-range filters and sorting. Unpriceable filters are a 400, not a
// silent empty result.
func (h *ProductHandler) List(c *gin.Context) {
	opts := product.ListOptions{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	}
	opts.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	opts.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if raw := c.Query("price_min"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid price_min")
			return
		}
		opts.MinPrice = &v
	}
	if raw := c.Query("price_max"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid price_max")
			return
		}
		opts.MaxPrice = &v
	}

	res, err := h.service.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Get handles GET /api/products/:id. Archived products stay readable
// here so order history keeps resolving; only listings hide them.
func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !validUUID(id) {
		writeError(c, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

// Create handles POST /api/products for seller and admin roles.
func (h *ProductHandler) Create(c *gin.Context) {
	if _, ok := identityOrAbort(c); !ok {
		return
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "name and category are required")
		return
	}

	images := make([]product.Image, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, product.Image{URL: img.URL, Filename: img.Filename})
	}

	p, err := h.service.Create(c.Request.Context(), product.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Images:      images,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": p})
}

// Update handles PATCH /api/products/:id with partial fields.
func (h *ProductHandler) Update(c *gin.Context) {
	if _, ok := identityOrAbort(c); !ok {
		return
	}

	id := c.Param("id")
	if !validUUID(id) {
		writeError(c, http.StatusBadRequest, "invalid product id")
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, product.UpdateParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

// Delete handles DELETE /api/products/:id. Products referenced by past
// orders are archived instead of removed so order history stays intact.
func (h *ProductHandler) Delete(c *gin.Context) {
	if _, ok := identityOrAbort(c); !ok {
		return
	}

	id := c.Param("id")
	if !validUUID(id) {
		writeError(c, http.StatusBadRequest, "invalid product id")
		return
	}

	p, archived, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if archived {
		c.JSON(http.StatusOK, gin.H{
			"message": "Product archived because existing orders reference it",
			"product": p,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
