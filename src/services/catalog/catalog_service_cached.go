package catalog

import (
	"context"
	"encoding/json"
	"time"

	"go-clothing-store/src/infrastructure/cache"
	"go-clothing-store/src/infrastructure/log"
	"go-clothing-store/src/services/identifier"
)

const productCacheTTL = 10 * time.Minute

// cachedCatalogService reads products through the cache and invalidates on
// every write. Cache failures are logged and never fail the request.
type cachedCatalogService struct {
	next   CatalogService
	cache  cache.Cache
	logger log.Logger
	ttl    time.Duration
}

func NewCachedCatalogService(next CatalogService, c cache.Cache, logger log.Logger) CatalogService {
	return &cachedCatalogService{
		next:   next,
		cache:  c,
		logger: logger,
		ttl:    productCacheTTL,
	}
}

func (s *cachedCatalogService) key(id identifier.ID) string {
	return s.cache.GenerateKey("product", id.Hex())
}

func (s *cachedCatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error) {
	return s.next.CreateProduct(ctx, input)
}

func (s *cachedCatalogService) ListProducts(ctx context.Context) ([]Product, error) {
	return s.next.ListProducts(ctx)
}

func (s *cachedCatalogService) GetProduct(ctx context.Context, rawProductID string) (*Product, error) {
	id, err := identifier.Parse(rawProductID)
	if err != nil {
		return nil, err
	}
	key := s.key(id)

	val, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "Product cache read failed: "+err.Error())
	}
	if val != "" {
		var product Product
		if err := json.Unmarshal([]byte(val), &product); err == nil {
			return &product, nil
		}
	}

	product, err := s.next.GetProduct(ctx, rawProductID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn(ctx, "Product cache write failed: "+err.Error())
		}
	}
	return product, nil
}

func (s *cachedCatalogService) UpdateProduct(ctx context.Context, rawProductID string, update ProductUpdate) (bool, error) {
	updated, err := s.next.UpdateProduct(ctx, rawProductID, update)
	if err != nil {
		return false, err
	}
	if updated {
		s.invalidate(ctx, rawProductID)
	}
	return updated, nil
}

func (s *cachedCatalogService) DeleteProduct(ctx context.Context, rawProductID string) error {
	if err := s.next.DeleteProduct(ctx, rawProductID); err != nil {
		return err
	}
	s.invalidate(ctx, rawProductID)
	return nil
}

func (s *cachedCatalogService) invalidate(ctx context.Context, rawProductID string) {
	id, err := identifier.Parse(rawProductID)
	if err != nil {
		return
	}
	if err := s.cache.Delete(ctx, s.key(id)); err != nil {
		s.logger.Warn(ctx, "Product cache invalidation failed: "+err.Error())
	}
}
