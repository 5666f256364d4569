package catalog

import (
	"context"
	"testing"

	"storefront-service/internal/kvstore"
	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *kvstore.MemoryStore) {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	s, err := NewStore(context.Background(), kv)
	require.NoError(t, err)
	return s, kv
}

func TestBaseCatalogLoads(t *testing.T) {
	s, _ := newTestStore(t)

	products := s.All()
	assert.NotEmpty(t, products)
	for _, p := range products {
		assert.GreaterOrEqual(t, p.Price, int64(0))
		assert.GreaterOrEqual(t, p.Stock, 0)
	}
}

func TestPersistedEntryNeverOverwritesBase(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()

	baseTitle := func() string {
		s, err := NewStore(ctx, kvstore.NewMemoryStore())
		require.NoError(t, err)
		return s.FindByID(1).Title
	}()

	require.NoError(t, kv.Set(ctx, KeyCustomProducts, []models.Product{
		{ID: 1, Title: "Impostor", Description: "x", Category: "x", Price: 1, Stock: 1},
		{ID: 100, Title: "Te verde 20u", Description: "Te en bolsitas", Category: "Despensa", Price: 2100, Stock: 4},
	}))

	s, err := NewStore(ctx, kv)
	require.NoError(t, err)

	assert.Equal(t, baseTitle, s.FindByID(1).Title)
	require.NotNil(t, s.FindByID(100))
	assert.Equal(t, "Te verde 20u", s.FindByID(100).Title)
}

func TestAddMintsIDGreaterThanMax(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, KeyCustomProducts, []models.Product{
		{ID: 100, Title: "Te verde 20u", Description: "Te en bolsitas", Category: "Despensa", Price: 2100, Stock: 4},
	}))
	s, err := NewStore(ctx, kv)
	require.NoError(t, err)

	p, err := s.Add(ctx, &AddProductRequest{
		Title:       "Galletas de agua",
		Description: "Paquete 200g",
		Category:    "Snacks",
		Price:       990,
		Stock:       10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(101), p.ID)
}

func TestAddValidationListsEveryViolation(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Add(context.Background(), &AddProductRequest{
		Title:       "  ",
		Description: "",
		Category:    "",
		Price:       -1,
		Stock:       -1,
	})
	ve, ok := models.AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Violations, 5)
}

func TestAddPersistsCustomProducts(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	p, err := s.Add(ctx, &AddProductRequest{
		Title:       "Miel 500g",
		Description: "Miel de ulmo",
		Category:    "Despensa",
		Price:       6500,
		Stock:       3,
	})
	require.NoError(t, err)

	reloaded, err := NewStore(ctx, kv)
	require.NoError(t, err)
	found := reloaded.FindByID(p.ID)
	require.NotNil(t, found)
	assert.Equal(t, "Miel 500g", found.Title)
	assert.Equal(t, 3, found.Stock)
}

func TestSearch(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, &AddProductRequest{
		Title:       "Chocolate amargo 70%",
		Description: "Barra de 100g",
		Category:    "Snacks",
		Price:       2490,
		Stock:       6,
	})
	require.NoError(t, err)

	byText := s.Search("chocolate", "")
	require.Len(t, byText, 1)
	assert.Equal(t, "Chocolate amargo 70%", byText[0].Title)

	byCategory := s.Search("", "Snacks")
	require.Len(t, byCategory, 1)

	none := s.Search("chocolate", "Lacteos")
	assert.Empty(t, none)
}

func TestDecrementStockFloorsAtZero(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	p, err := s.Add(ctx, &AddProductRequest{
		Title:       "Huevos docena",
		Description: "Huevos de campo",
		Category:    "Despensa",
		Price:       3500,
		Stock:       2,
	})
	require.NoError(t, err)

	s.DecrementStock(ctx, p.ID, 5)
	assert.Equal(t, 0, s.FindByID(p.ID).Stock)
}

func TestFindByIDReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)

	p := s.FindByID(1)
	require.NotNil(t, p)
	p.Stock = -99

	assert.GreaterOrEqual(t, s.FindByID(1).Stock, 0)
}

func TestCategories(t *testing.T) {
	s, _ := newTestStore(t)

	cats := s.Categories()
	assert.NotEmpty(t, cats)
	seen := make(map[string]bool)
	for _, c := range cats {
		assert.False(t, seen[c])
		seen[c] = true
	}
}
