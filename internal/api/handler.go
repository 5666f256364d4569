package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/checkout"
	"storefront-service/internal/coupon"
	"storefront-service/internal/models"
	"storefront-service/internal/money"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers. It performs no business computation
// itself: it calls into the components and reflects their output.
type Handler struct {
	catalog     *catalog.Store
	ledger      *cart.Ledger
	coupons     *coupon.Resolver
	processor   *checkout.Processor
	formatter   *money.Formatter
	shippingFee int64
}

// NewHandler creates a new HTTP handler
func NewHandler(
	cat *catalog.Store,
	ledger *cart.Ledger,
	coupons *coupon.Resolver,
	processor *checkout.Processor,
	formatter *money.Formatter,
	shippingFee int64,
) *Handler {
	return &Handler{
		catalog:     cat,
		ledger:      ledger,
		coupons:     coupons,
		processor:   processor,
		formatter:   formatter,
		shippingFee: shippingFee,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.POST("/products", h.addProduct)
		v1.GET("/categories", h.listCategories)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PUT("/cart/items/:id", h.updateCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)

		v1.POST("/coupon", h.applyCoupon)
		v1.DELETE("/coupon", h.clearCoupon)

		v1.POST("/checkout", h.checkout)
		v1.GET("/orders", h.listOrders)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// productView decorates a product with presentation fields: the stock
// still available beyond what the cart already holds, and the
// formatted price
type productView struct {
	models.Product
	Remaining      int    `json:"remaining"`
	PriceFormatted string `json:"price_formatted"`
}

func (h *Handler) productViews(products []models.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		remaining := p.Stock - h.ledger.QuantityInCart(p.ID)
		if remaining < 0 {
			remaining = 0
		}
		views = append(views, productView{
			Product:        p,
			Remaining:      remaining,
			PriceFormatted: h.formatter.Format(p.Price),
		})
	}
	return views
}

// listProducts returns the catalog, optionally filtered by search text
// and category
func (h *Handler) listProducts(c *gin.Context) {
	query := c.Query("q")
	category := c.Query("category")

	var products []models.Product
	if query == "" && category == "" {
		products = h.catalog.All()
	} else {
		products = h.catalog.Search(query, category)
	}

	c.JSON(http.StatusOK, gin.H{"products": h.productViews(products)})
}

// getProduct returns a single product by id
func (h *Handler) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product := h.catalog.FindByID(id)
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, h.productViews([]models.Product{*product})[0])
}

// addProduct creates a user-added catalog entry
func (h *Handler) addProduct(c *gin.Context) {
	var req catalog.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalog.Add(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// listCategories returns the distinct catalog categories
func (h *Handler) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.catalog.Categories()})
}

type cartItemView struct {
	ProductID      int64  `json:"product_id"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	UnitPrice      int64  `json:"unit_price"`
	Quantity       int    `json:"quantity"`
	LineTotal      int64  `json:"line_total"`
	LineTotalLabel string `json:"line_total_formatted"`
}

func (h *Handler) cartResponse() gin.H {
	coupon := h.ledger.AppliedCoupon()
	totals := h.ledger.ComputeTotals(h.shippingFee, coupon)

	var items []cartItemView
	for productID, qty := range h.ledger.Lines() {
		product := h.catalog.FindByID(productID)
		if product == nil {
			continue
		}
		lineTotal := product.Price * int64(qty)
		items = append(items, cartItemView{
			ProductID:      productID,
			Title:          product.Title,
			Category:       product.Category,
			UnitPrice:      product.Price,
			Quantity:       qty,
			LineTotal:      lineTotal,
			LineTotalLabel: h.formatter.Format(lineTotal),
		})
	}

	resp := gin.H{
		"items":  items,
		"totals": totals,
		"totals_formatted": gin.H{
			"subtotal": h.formatter.Format(totals.Subtotal),
			"shipping": h.formatter.Format(totals.Shipping),
			"discount": h.formatter.Format(totals.Discount),
			"total":    h.formatter.Format(totals.Total),
		},
	}
	if coupon != nil {
		resp["coupon"] = coupon
	}
	return resp
}

// getCart returns the cart lines joined with product data plus totals
func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartResponse())
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// addCartItem adds a quantity of a product to the cart, reporting
// partial fulfillment when the request was clamped to stock
func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	added, err := h.ledger.Add(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := gin.H{
		"added":    added,
		"quantity": h.ledger.QuantityInCart(req.ProductID),
	}
	if added < req.Quantity {
		resp["message"] = "Only part of the requested quantity was available"
	}
	c.JSON(http.StatusOK, resp)
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// updateCartItem sets a line's quantity, clamped to available stock
func (h *Handler) updateCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	h.ledger.SetQuantity(c.Request.Context(), id, req.Quantity)
	c.JSON(http.StatusOK, h.cartResponse())
}

// removeCartItem deletes a cart line
func (h *Handler) removeCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	h.ledger.Remove(c.Request.Context(), id)
	c.JSON(http.StatusOK, h.cartResponse())
}

// clearCart empties the cart
func (h *Handler) clearCart(c *gin.Context) {
	h.ledger.Clear(c.Request.Context())
	c.JSON(http.StatusOK, h.cartResponse())
}

type applyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// applyCoupon resolves a coupon code and applies it to the session
func (h *Handler) applyCoupon(c *gin.Context) {
	var req applyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resolved, err := h.coupons.Resolve(req.Code)
	if err != nil {
		util.CouponsRejectedTotal.Inc()
		h.writeError(c, err)
		return
	}

	h.ledger.ApplyCoupon(c.Request.Context(), resolved)
	c.JSON(http.StatusOK, h.cartResponse())
}

// clearCoupon removes the applied coupon
func (h *Handler) clearCoupon(c *gin.Context) {
	h.ledger.ClearCoupon(c.Request.Context())
	c.JSON(http.StatusOK, h.cartResponse())
}

// checkout processes the cart into an order
func (h *Handler) checkout(c *gin.Context) {
	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.processor.Process(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":           order,
		"total_formatted": h.formatter.Format(order.Totals.Total),
	})
}

// listOrders returns the persisted order history
func (h *Handler) listOrders(c *gin.Context) {
	history, err := h.processor.History(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load order history",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": history})
}

// writeError maps the error taxonomy to HTTP statuses
func (h *Handler) writeError(c *gin.Context, err error) {
	if ve, ok := models.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Validation failed",
			"violations": ve.Violations,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Not enough stock available"})
	case errors.Is(err, models.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": "Cart is empty"})
	case errors.Is(err, models.ErrCheckoutInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "A checkout is already in progress"})
	case errors.Is(err, models.ErrInvalidCoupon):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid coupon code"})
	case errors.Is(err, models.ErrInvalidPayment):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Card number failed validation"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal error",
			"details": err.Error(),
		})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
