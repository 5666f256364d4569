// Package cart implements the ledger of requested quantities for the
// current session, including the applied coupon and total computation.
package cart

import (
	"context"
	"math"
	"sync"

	"storefront-service/internal/catalog"
	"storefront-service/internal/kvstore"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Persistence keys
const (
	KeyLines  = "cart:lines"
	KeyCoupon = "cart:coupon"
)

// Config carries the cart business rules resolved at startup
type Config struct {
	// ClearCouponOnClear controls whether emptying the cart also drops
	// the applied coupon
	ClearCouponOnClear bool
}

// Ledger maps product id to requested quantity and owns the applied
// coupon for the session. Quantities never exceed the product's current
// stock.
type Ledger struct {
	mu      sync.Mutex
	lines   map[int64]int
	coupon  *models.Coupon
	catalog *catalog.Store
	kv      kvstore.Store
	cfg     Config
	logger  *zap.Logger
}

// NewLedger restores the persisted cart and coupon, falling back to an
// empty ledger on missing or malformed data
func NewLedger(ctx context.Context, cat *catalog.Store, kv kvstore.Store, cfg Config) (*Ledger, error) {
	l := &Ledger{
		lines:   make(map[int64]int),
		catalog: cat,
		kv:      kv,
		cfg:     cfg,
		logger:  util.GetLogger(),
	}

	var lines map[int64]int
	found, err := kv.Get(ctx, KeyLines, &lines)
	if err != nil {
		return nil, err
	}
	if found {
		l.lines = lines
	}

	var c models.Coupon
	if found, err := kv.Get(ctx, KeyCoupon, &c); err != nil {
		return nil, err
	} else if found {
		l.coupon = &c
	}

	l.logger.Info("Cart restored", zap.Int("lines", len(l.lines)))
	return l, nil
}

// QuantityInCart returns the requested quantity for a product, 0 if absent
func (l *Ledger) QuantityInCart(productID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lines[productID]
}

// Lines returns a copy of the quantity mapping
func (l *Ledger) Lines() map[int64]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[int64]int, len(l.lines))
	for id, qty := range l.lines {
		out[id] = qty
	}
	return out
}

// IsEmpty reports whether the ledger has no lines
func (l *Ledger) IsEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines) == 0
}

// Add requests qty more units of a product. An unknown product is a
// no-op. When the product has no remaining stock beyond what is already
// in the cart, Add fails with ErrOutOfStock. Otherwise the request is
// clamped to the available stock and the number of units actually added
// is returned, so the caller can report partial fulfillment.
func (l *Ledger) Add(ctx context.Context, productID int64, qty int) (int, error) {
	ctx, span := util.StartSpan(ctx, "Cart.Add")
	defer span.End()

	product := l.catalog.FindByID(productID)
	if product == nil {
		return 0, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.lines[productID]
	if product.Stock <= 0 || product.Stock-current <= 0 {
		util.CartAddsRejectedTotal.Inc()
		return 0, models.ErrOutOfStock
	}

	available := product.Stock - current
	requested := qty
	if requested < 1 {
		requested = 1
	}
	toAdd := requested
	if toAdd > available {
		toAdd = available
		util.CartAddsClampedTotal.Inc()
	}

	l.lines[productID] = current + toAdd
	l.persist(ctx)

	util.CartAddsTotal.Inc()
	l.logger.Info("Added to cart",
		zap.Int64("product_id", productID),
		zap.Int("requested", qty),
		zap.Int("added", toAdd))
	return toAdd, nil
}

// SetQuantity sets a line's quantity, clamped to [1, product.stock].
// Absent lines and unknown products are a no-op; use Remove to drop a
// line.
func (l *Ledger) SetQuantity(ctx context.Context, productID int64, qty int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.lines[productID]; !ok {
		return
	}
	product := l.catalog.FindByID(productID)
	if product == nil || product.Stock < 1 {
		return
	}

	if qty < 1 {
		qty = 1
	}
	if qty > product.Stock {
		qty = product.Stock
	}
	l.lines[productID] = qty
	l.persist(ctx)
}

// Remove deletes a line unconditionally
func (l *Ledger) Remove(ctx context.Context, productID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.lines, productID)
	l.persist(ctx)
}

// Clear empties the ledger. Depending on configuration it also drops
// the applied coupon.
func (l *Ledger) Clear(ctx context.Context) {
	l.mu.Lock()
	l.lines = make(map[int64]int)
	l.persist(ctx)
	l.mu.Unlock()
	if l.cfg.ClearCouponOnClear {
		l.ClearCoupon(ctx)
	}
}

// ApplyCoupon replaces any previously applied coupon; discounts never stack
func (l *Ledger) ApplyCoupon(ctx context.Context, c *models.Coupon) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.coupon = c
	if err := l.kv.Set(ctx, KeyCoupon, c); err != nil {
		l.logger.Error("Failed to persist coupon", zap.Error(err))
	}
	util.CouponsAppliedTotal.WithLabelValues(c.Code).Inc()
}

// ClearCoupon removes the applied coupon
func (l *Ledger) ClearCoupon(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.coupon = nil
	if err := l.kv.Delete(ctx, KeyCoupon); err != nil {
		l.logger.Error("Failed to delete persisted coupon", zap.Error(err))
	}
}

// AppliedCoupon returns the coupon applied to the session, or nil
func (l *Ledger) AppliedCoupon() *models.Coupon {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.coupon
}

// ComputeTotals computes subtotal, shipping, discount and total for the
// current lines. Lines whose product no longer resolves contribute
// nothing. Shipping is zero for an empty cart and under a FreeShipping
// coupon; a PercentOff discount is rounded half-up to a whole unit;
// the total never goes below zero.
func (l *Ledger) ComputeTotals(shippingFee int64, c *models.Coupon) models.Totals {
	l.mu.Lock()
	defer l.mu.Unlock()
	var subtotal int64
	for productID, qty := range l.lines {
		product := l.catalog.FindByID(productID)
		if product == nil {
			continue
		}
		subtotal += product.Price * int64(qty)
	}

	var shipping int64
	if len(l.lines) > 0 {
		shipping = shippingFee
	}

	var discount int64
	if c != nil {
		switch c.Kind {
		case models.CouponPercentOff:
			discount = int64(math.Round(float64(subtotal) * c.Value))
		case models.CouponFreeShipping:
			shipping = 0
		}
	}

	total := subtotal + shipping - discount
	if total < 0 {
		total = 0
	}

	return models.Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Total:    total,
	}
}

func (l *Ledger) persist(ctx context.Context) {
	// persistence failures are fatal to the write only: logged, the
	// in-memory ledger stays authoritative
	if err := l.kv.Set(ctx, KeyLines, l.lines); err != nil {
		l.logger.Error("Failed to persist cart", zap.Error(err))
	}
}
