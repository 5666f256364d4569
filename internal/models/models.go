package models

import "time"

// Product represents a purchasable item in the catalog
type Product struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
}

// CouponKind is the discount policy of a coupon
type CouponKind string

const (
	CouponPercentOff   CouponKind = "PERCENT_OFF"
	CouponFreeShipping CouponKind = "FREE_SHIPPING"
)

// Coupon maps a code to a discount policy. Value is the discount
// fraction (0-1) for PercentOff and unused for FreeShipping.
type Coupon struct {
	Code  string     `json:"code"`
	Kind  CouponKind `json:"kind"`
	Value float64    `json:"value"`
}

// Totals is the financial breakdown of a cart or order, in whole
// currency units
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

// OrderLine is an immutable snapshot of a cart line at checkout time.
// Later catalog mutation must not change a completed receipt.
type OrderLine struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

// Customer holds the checkout form identity fields
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Country string `json:"country,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// Order is the receipt produced by a successful checkout, appended to
// order history and never mutated afterward
type Order struct {
	ID         string      `json:"id"`
	Customer   Customer    `json:"customer"`
	Lines      []OrderLine `json:"lines"`
	Totals     Totals      `json:"totals"`
	CouponCode string      `json:"coupon_code,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ItemCount returns the total quantity across all order lines
func (o *Order) ItemCount() int {
	var count int
	for _, l := range o.Lines {
		count += l.Quantity
	}
	return count
}
