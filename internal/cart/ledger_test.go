package cart

import (
	"context"
	"testing"

	"storefront-service/internal/catalog"
	"storefront-service/internal/kvstore"
	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T) (*catalog.Store, *Ledger, *kvstore.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	kv := kvstore.NewMemoryStore()
	cat, err := catalog.NewStore(ctx, kv)
	require.NoError(t, err)

	ledger, err := NewLedger(ctx, cat, kv, Config{ClearCouponOnClear: true})
	require.NoError(t, err)

	return cat, ledger, kv
}

func addProduct(t *testing.T, cat *catalog.Store, price int64, stock int) int64 {
	t.Helper()
	p, err := cat.Add(context.Background(), &catalog.AddProductRequest{
		Title:       "Yerba mate 500g",
		Description: "Yerba mate tradicional",
		Category:    "Despensa",
		Price:       price,
		Stock:       stock,
	})
	require.NoError(t, err)
	return p.ID
}

func TestAddClampsToAvailableStock(t *testing.T) {
	cat, ledger, _ := newTestEnv(t)
	ctx := context.Background()

	id := addProduct(t, cat, 1000, 2)

	added, err := ledger.Add(ctx, id, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, ledger.QuantityInCart(id))

	// nothing left to add
	_, err = ledger.Add(ctx, id, 1)
	assert.ErrorIs(t, err, models.ErrOutOfStock)
	assert.Equal(t, 2, ledger.QuantityInCart(id))
}

func TestAddUnknownProductIsNoOp(t *testing.T) {
	_, ledger, _ := newTestEnv(t)

	added, err := ledger.Add(context.Background(), 99999, 3)
	assert.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.True(t, ledger.IsEmpty())
}

func TestAddZeroStockFails(t *testing.T) {
	cat, ledger, _ := newTestEnv(t)

	id := addProduct(t, cat, 1000, 0)

	_, err := ledger.Add(context.Background(), id, 1)
	assert.ErrorIs(t, err, models.ErrOutOfStock)
}

func TestQuantityNeverExceedsStock(t *testing.T) {
	cat, ledger, _ := newTestEnv(t)
	ctx := context.Background()

	id := addProduct(t, cat, 500, 7)

	for _, req := range []int{3, 3, 3, 10} {
		_, _ = ledger.Add(ctx, id, req)
		assert.LessOrEqual(t, ledger.QuantityInCart(id), 7)
	}
	ledger.SetQuantity(ctx, id, 100)
	assert.Equal(t, 7, ledger.QuantityInCart(id))
	ledger.SetQuantity(ctx, id, -4)
	assert.Equal(t, 1, ledger.QuantityInCart(id))
}

func TestSetQuantityAbsentLineIsNoOp(t *testing.T) {
	cat, ledger, _ := newTestEnv(t)

	id := addProduct(t, cat, 500, 5)
	ledger.SetQuantity(context.Background(), id, 3)
	assert.Equal(t, 0, ledger.QuantityInCart(id))
}

func TestRemoveDeletesLine(t *testing.T) {
	cat, ledger, _ := newTestEnv(t)
	ctx := context.Background()

	id := addProduct(t, cat, 500, 5)
	_, err := ledger.Add(ctx, id, 2)
	require.NoError(t, err)

	ledger.Remove(ctx, id)
	assert.Equal(t, 0, ledger.QuantityInCart(id))
	assert.True(t, ledger.IsEmpty())
}

func TestComputeTotalsScenario(t *testing.T) {
	cat, ledger, _ := newTestEnv(t)
	ctx := context.Background()

	id := addProduct(t, cat, 1000, 2)

	added, err := ledger.Add(ctx, id, 5)
	require.NoError(t, err)
	require.Equal(t, 2, added)

	totals := ledger.ComputeTotals(2500, nil)
	assert.Equal(t, models.Totals{Subtotal: 2000, Shipping: 2500, Discount: 0, Total: 4500}, totals)

	percent := &models.Coupon{Code: "BIENVENIDO", Kind: models.CouponPercentOff, Value: 0.10}
	totals = ledger.ComputeTotals(2500, percent)
	assert.Equal(t, models.Totals{Subtotal: 2000, Shipping: 2500, Discount: 200, Total: 4300}, totals)
}

func TestComputeTotalsIsIdempotent(t *testing.T) {
	cat, ledger, _ := newTestEnv(t)
	ctx := context.Background()

	id := addProduct(t, cat, 1400, 10)
	_, err := ledger.Add(ctx, id, 3)
	require.NoError(t, err)

	percent := &models.Coupon{Kind: models.CouponPercentOff, Value: 0.10}
	first := ledger.ComputeTotals(2500, percent)
	second := ledger.ComputeTotals(2500, percent)
	assert.Equal(t, first, second)
}

func TestComputeTotalsEmptyCartHasNoShipping(t *testing.T) {
	_, ledger, _ := newTestEnv(t)

	totals := ledger.ComputeTotals(2500, nil)
	assert.Equal(t, models.Totals{}, totals)
}

func TestCouponReplacementDoesNotStack(t *testing.T) {
	cat, ledger, _ := newTestEnv(t)
	ctx := context.Background()

	id := addProduct(t, cat, 1000, 10)
	_, err := ledger.Add(ctx, id, 2)
	require.NoError(t, err)

	percent := &models.Coupon{Code: "BIENVENIDO", Kind: models.CouponPercentOff, Value: 0.10}
	freeship := &models.Coupon{Code: "ENVIOGRATIS", Kind: models.CouponFreeShipping}

	ledger.ApplyCoupon(ctx, percent)
	totals := ledger.ComputeTotals(2500, ledger.AppliedCoupon())
	assert.Equal(t, int64(200), totals.Discount)
	assert.Equal(t, int64(2500), totals.Shipping)

	ledger.ApplyCoupon(ctx, freeship)
	totals = ledger.ComputeTotals(2500, ledger.AppliedCoupon())
	assert.Equal(t, int64(0), totals.Discount)
	assert.Equal(t, int64(0), totals.Shipping)

	ledger.ClearCoupon(ctx)
	totals = ledger.ComputeTotals(2500, ledger.AppliedCoupon())
	assert.Equal(t, int64(0), totals.Discount)
	assert.Equal(t, int64(2500), totals.Shipping)
}

func TestDiscountRoundsHalfUp(t *testing.T) {
	cat, ledger, _ := newTestEnv(t)
	ctx := context.Background()

	// 10% of 1005 is 100.5, which rounds to 101
	id := addProduct(t, cat, 1005, 5)
	_, err := ledger.Add(ctx, id, 1)
	require.NoError(t, err)

	percent := &models.Coupon{Kind: models.CouponPercentOff, Value: 0.10}
	totals := ledger.ComputeTotals(0, percent)
	assert.Equal(t, int64(101), totals.Discount)
}

func TestClearAlsoClearsCouponWhenConfigured(t *testing.T) {
	cat, ledger, _ := newTestEnv(t)
	ctx := context.Background()

	id := addProduct(t, cat, 1000, 5)
	_, err := ledger.Add(ctx, id, 1)
	require.NoError(t, err)
	ledger.ApplyCoupon(ctx, &models.Coupon{Code: "BIENVENIDO", Kind: models.CouponPercentOff, Value: 0.10})

	ledger.Clear(ctx)
	assert.True(t, ledger.IsEmpty())
	assert.Nil(t, ledger.AppliedCoupon())
}

func TestClearKeepsCouponWhenNotConfigured(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	cat, err := catalog.NewStore(ctx, kv)
	require.NoError(t, err)
	ledger, err := NewLedger(ctx, cat, kv, Config{ClearCouponOnClear: false})
	require.NoError(t, err)

	id := addProduct(t, cat, 1000, 5)
	_, err = ledger.Add(ctx, id, 1)
	require.NoError(t, err)
	ledger.ApplyCoupon(ctx, &models.Coupon{Code: "BIENVENIDO", Kind: models.CouponPercentOff, Value: 0.10})

	ledger.Clear(ctx)
	assert.True(t, ledger.IsEmpty())
	assert.NotNil(t, ledger.AppliedCoupon())
}

func TestLedgerRoundTrip(t *testing.T) {
	cat, ledger, kv := newTestEnv(t)
	ctx := context.Background()

	id := addProduct(t, cat, 1200, 8)
	_, err := ledger.Add(ctx, id, 3)
	require.NoError(t, err)
	ledger.ApplyCoupon(ctx, &models.Coupon{Code: "ENVIOGRATIS", Kind: models.CouponFreeShipping})

	restored, err := NewLedger(ctx, cat, kv, Config{ClearCouponOnClear: true})
	require.NoError(t, err)

	assert.Equal(t, ledger.Lines(), restored.Lines())
	require.NotNil(t, restored.AppliedCoupon())
	assert.Equal(t, "ENVIOGRATIS", restored.AppliedCoupon().Code)
}

func TestLedgerMalformedPersistedCartFallsBackToEmpty(t *testing.T) {
	cat, _, kv := newTestEnv(t)

	kv.SetRaw(KeyLines, []byte(`"not a mapping"`))
	ledger, err := NewLedger(context.Background(), cat, kv, Config{ClearCouponOnClear: true})
	require.NoError(t, err)
	assert.True(t, ledger.IsEmpty())
}
