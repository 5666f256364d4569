// Package checkout turns the current cart into an immutable order:
// validate, simulate the payment, commit stock, persist the receipt.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/kvstore"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KeyOrderHistory is the persistence key for the order history
const KeyOrderHistory = "orders:history"

// Config carries the checkout business rules resolved at startup
type Config struct {
	ShippingFee int64
	// RequireCardCheck enables the mod-10 card number validation
	RequireCardCheck bool
	// PaymentDelay is the simulated payment pause before the result is
	// reported. Zero in tests.
	PaymentDelay time.Duration
}

// Processor validates checkout requests and commits orders
type Processor struct {
	catalog   *catalog.Store
	ledger    *cart.Ledger
	kv        kvstore.Store
	publisher *broker.EventPublisher
	cfg       Config
	logger    *zap.Logger
	inFlight  atomic.Bool
}

// NewProcessor creates a checkout processor. publisher may be nil when
// event publishing is disabled.
func NewProcessor(cat *catalog.Store, ledger *cart.Ledger, kv kvstore.Store, publisher *broker.EventPublisher, cfg Config) *Processor {
	return &Processor{
		catalog:   cat,
		ledger:    ledger,
		kv:        kv,
		publisher: publisher,
		cfg:       cfg,
		logger:    util.GetLogger(),
	}
}

// Request carries the checkout form fields
type Request struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Country    string `json:"country"`
	Zip        string `json:"zip"`
	CardNumber string `json:"card_number"`
	CardExpiry string `json:"card_expiry"`
	CardCVV    string `json:"card_cvv"`
}

// Process runs a checkout. Validation failures (empty cart, bad form
// input, failed card check) leave every product's stock and the order
// history untouched; stock is decremented and state cleared only after
// all validation passed.
func (p *Processor) Process(ctx context.Context, req *Request) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Checkout.Process")
	defer span.End()

	if !p.inFlight.CompareAndSwap(false, true) {
		util.CheckoutsFailedTotal.WithLabelValues("in_progress").Inc()
		return nil, models.ErrCheckoutInProgress
	}
	defer p.inFlight.Store(false)

	start := time.Now()
	defer func() {
		util.CheckoutProcessingLatency.Observe(time.Since(start).Seconds())
	}()

	// lines referencing deleted products are skipped, not fatal
	lines := p.snapshotLines()
	if len(lines) == 0 {
		util.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, models.ErrEmptyCart
	}

	if err := p.validateForm(req); err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("invalid_form").Inc()
		return nil, err
	}

	if p.cfg.RequireCardCheck && !ValidCardNumber(req.CardNumber) {
		util.CheckoutsFailedTotal.WithLabelValues("invalid_payment").Inc()
		return nil, models.ErrInvalidPayment
	}

	coupon := p.ledger.AppliedCoupon()
	totals := p.ledger.ComputeTotals(p.cfg.ShippingFee, coupon)

	if err := p.simulatePayment(ctx); err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	order := &models.Order{
		ID: newOrderID(),
		Customer: models.Customer{
			Name:    strings.TrimSpace(req.Name),
			Email:   strings.TrimSpace(req.Email),
			Country: strings.TrimSpace(req.Country),
			Zip:     strings.TrimSpace(req.Zip),
		},
		Lines:     lines,
		Totals:    totals,
		CreatedAt: time.Now(),
	}
	if coupon != nil {
		order.CouponCode = coupon.Code
	}

	// commit point: everything from here on must happen, failures are
	// logged and do not roll the order back
	for _, line := range order.Lines {
		p.catalog.DecrementStock(ctx, line.ProductID, line.Quantity)
	}

	if err := p.appendHistory(ctx, order); err != nil {
		p.logger.Error("Failed to persist order history",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}

	if p.publisher != nil {
		if err := p.publisher.PublishOrderPlaced(ctx, orderPlacedEvent(order)); err != nil {
			p.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
		}
	}

	p.ledger.Clear(ctx)
	p.ledger.ClearCoupon(ctx)

	util.CheckoutsTotal.Inc()
	p.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.Int("items", order.ItemCount()),
		zap.Int64("total", order.Totals.Total))
	return order, nil
}

// snapshotLines joins the ledger with current product data into
// immutable receipt lines
func (p *Processor) snapshotLines() []models.OrderLine {
	var lines []models.OrderLine
	for productID, qty := range p.ledger.Lines() {
		product := p.catalog.FindByID(productID)
		if product == nil {
			continue
		}
		lines = append(lines, models.OrderLine{
			ProductID: productID,
			Title:     product.Title,
			UnitPrice: product.Price,
			Quantity:  qty,
			LineTotal: product.Price * int64(qty),
		})
	}
	return lines
}

func (p *Processor) validateForm(req *Request) error {
	var violations []string
	if strings.TrimSpace(req.Name) == "" {
		violations = append(violations, "name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		violations = append(violations, "email is required")
	} else if !strings.Contains(req.Email, "@") {
		violations = append(violations, "email is not valid")
	}
	return models.NewValidationError(violations)
}

// simulatePayment waits out the configured payment delay, honoring
// cancellation so callers never block on wall-clock time
func (p *Processor) simulatePayment(ctx context.Context) error {
	if p.cfg.PaymentDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(p.cfg.PaymentDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// History returns the persisted order history, oldest first
func (p *Processor) History(ctx context.Context) ([]models.Order, error) {
	var history []models.Order
	if _, err := p.kv.Get(ctx, KeyOrderHistory, &history); err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	return history, nil
}

func (p *Processor) appendHistory(ctx context.Context, order *models.Order) error {
	history, err := p.History(ctx)
	if err != nil {
		return err
	}
	history = append(history, *order)
	return p.kv.Set(ctx, KeyOrderHistory, history)
}

func newOrderID() string {
	return fmt.Sprintf("ORD-%s", strings.ToUpper(uuid.New().String()[:8]))
}

func orderPlacedEvent(order *models.Order) *models.OrderPlacedEvent {
	return &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		ItemCount:  order.ItemCount(),
		Total:      order.Totals.Total,
		CouponCode: order.CouponCode,
	}
}
