// Package coupon resolves discount codes against a fixed in-memory
// table. Codes are not persisted and not user-editable.
package coupon

import (
	"strings"

	"storefront-service/internal/models"
)

// Resolver validates coupon codes case-insensitively
type Resolver struct {
	table map[string]models.Coupon
}

// NewResolver creates a resolver with the built-in coupon table
func NewResolver() *Resolver {
	return &Resolver{
		table: map[string]models.Coupon{
			"BIENVENIDO": {
				Code:  "BIENVENIDO",
				Kind:  models.CouponPercentOff,
				Value: 0.10,
			},
			"ENVIOGRATIS": {
				Code: "ENVIOGRATIS",
				Kind: models.CouponFreeShipping,
			},
		},
	}
}

// Resolve trims and uppercases codeRaw and looks it up. It returns
// models.ErrInvalidCoupon when the code is unknown; the caller decides
// how to surface that.
func (r *Resolver) Resolve(codeRaw string) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(codeRaw))
	found, ok := r.table[code]
	if !ok {
		return nil, models.ErrInvalidCoupon
	}
	return &found, nil
}
