// Package catalog holds the purchasable product list: an embedded base
// set merged with user-added entries persisted through the kvstore
// collaborator.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"storefront-service/internal/kvstore"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

//go:embed products.json
var baseProductsJSON []byte

// KeyCustomProducts is the persistence key for user-added products
const KeyCustomProducts = "catalog:custom"

// Store is the catalog of products for one storefront session
type Store struct {
	mu        sync.RWMutex
	products  []*models.Product
	customIDs map[int64]bool
	kv        kvstore.Store
	logger    *zap.Logger
}

// AddProductRequest carries the add-product form fields, pre-trimmed by
// the presentation layer
type AddProductRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
}

// NewStore loads the base catalog and merges the persisted user-added
// products. A persisted entry never overwrites a base entry sharing its
// id. Malformed persisted data falls back to the base set alone.
func NewStore(ctx context.Context, kv kvstore.Store) (*Store, error) {
	var base []*models.Product
	if err := json.Unmarshal(baseProductsJSON, &base); err != nil {
		return nil, fmt.Errorf("failed to decode base catalog: %w", err)
	}

	s := &Store{
		products:  base,
		customIDs: make(map[int64]bool),
		kv:        kv,
		logger:    util.GetLogger(),
	}

	var custom []*models.Product
	if _, err := kv.Get(ctx, KeyCustomProducts, &custom); err != nil {
		return nil, fmt.Errorf("failed to load custom products: %w", err)
	}
	for _, p := range custom {
		if s.findLocked(p.ID) != nil {
			s.logger.Warn("Skipping persisted product shadowing a base entry",
				zap.Int64("product_id", p.ID))
			continue
		}
		s.products = append(s.products, p)
		s.customIDs[p.ID] = true
	}

	s.logger.Info("Catalog loaded",
		zap.Int("base", len(base)),
		zap.Int("custom", len(s.customIDs)))
	return s, nil
}

func (s *Store) findLocked(id int64) *models.Product {
	for _, p := range s.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// FindByID returns the product with the given id, or nil when absent
func (s *Store) FindByID(id int64) *models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.findLocked(id); p != nil {
		dup := *p
		return &dup
	}
	return nil
}

// All returns a snapshot of every product in catalog order
func (s *Store) All() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out
}

// Categories returns the distinct product categories, sorted
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var cats []string
	for _, p := range s.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	sort.Strings(cats)
	return cats
}

// Search filters by free-text query (title, description, category) and
// by exact category. Empty arguments match everything.
func (s *Store) Search(query, category string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Product
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		if q != "" && !matches(p, q) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

func matches(p *models.Product, q string) bool {
	for _, s := range []string{p.Title, p.Description, p.Category} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// Add validates the request, mints an id strictly greater than the
// current maximum, appends the product, and persists the user-added set.
// Validation reports every violated rule.
func (s *Store) Add(ctx context.Context, req *AddProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "Catalog.Add")
	defer span.End()

	var violations []string
	if strings.TrimSpace(req.Title) == "" {
		violations = append(violations, "title is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		violations = append(violations, "description is required")
	}
	if strings.TrimSpace(req.Category) == "" {
		violations = append(violations, "category is required")
	}
	if req.Price < 0 {
		violations = append(violations, "price must be >= 0")
	}
	if req.Stock < 0 {
		violations = append(violations, "stock must be >= 0")
	}
	if err := models.NewValidationError(violations); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, p := range s.products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	product := &models.Product{
		ID:          maxID + 1,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Price:       req.Price,
		Stock:       req.Stock,
	}
	s.products = append(s.products, product)
	s.customIDs[product.ID] = true

	if err := s.persistCustomLocked(ctx); err != nil {
		s.logger.Error("Failed to persist custom products", zap.Error(err))
	}

	util.ProductsAddedTotal.Inc()
	s.logger.Info("Product added",
		zap.Int64("product_id", product.ID),
		zap.String("title", product.Title))

	dup := *product
	return &dup, nil
}

// DecrementStock reduces a product's stock by qty, floored at 0. Only
// checkout calls this; browsing never mutates stock. User-added entries
// are re-persisted so their stock survives a restart.
func (s *Store) DecrementStock(ctx context.Context, id int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findLocked(id)
	if p == nil {
		return
	}
	p.Stock -= qty
	if p.Stock < 0 {
		p.Stock = 0
	}

	if s.customIDs[id] {
		if err := s.persistCustomLocked(ctx); err != nil {
			s.logger.Error("Failed to persist custom products", zap.Error(err))
		}
	}
}

func (s *Store) persistCustomLocked(ctx context.Context) error {
	custom := make([]*models.Product, 0, len(s.customIDs))
	for _, p := range s.products {
		if s.customIDs[p.ID] {
			custom = append(custom, p)
		}
	}
	return s.kv.Set(ctx, KeyCustomProducts, custom)
}
