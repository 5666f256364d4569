package coupon

import (
	"testing"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIsCaseInsensitiveAndTrims(t *testing.T) {
	r := NewResolver()

	for _, raw := range []string{"BIENVENIDO", "bienvenido", "  Bienvenido  "} {
		c, err := r.Resolve(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "BIENVENIDO", c.Code)
		assert.Equal(t, models.CouponPercentOff, c.Kind)
		assert.Equal(t, 0.10, c.Value)
	}
}

func TestResolveFreeShipping(t *testing.T) {
	r := NewResolver()

	c, err := r.Resolve("enviogratis")
	require.NoError(t, err)
	assert.Equal(t, models.CouponFreeShipping, c.Kind)
}

func TestResolveUnknownCode(t *testing.T) {
	r := NewResolver()

	for _, raw := range []string{"", "   ", "NOPE", "BIENVENIDOS"} {
		_, err := r.Resolve(raw)
		assert.ErrorIs(t, err, models.ErrInvalidCoupon, raw)
	}
}
