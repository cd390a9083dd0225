package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"go-clothing-store/src/infrastructure/log"
	"go-clothing-store/src/services/identifier"
)

type CreateProductInput struct {
	Title       string
	Description *string
	Price       float64
	Category    *string
	ImageURL    *string
	InStock     bool
}

type CatalogService interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, rawProductID string) (*Product, error)
	// UpdateProduct applies the non-nil fields and reports whether anything was
	// requested. An empty update is not an error and touches nothing.
	UpdateProduct(ctx context.Context, rawProductID string, update ProductUpdate) (bool, error)
	DeleteProduct(ctx context.Context, rawProductID string) error
}

type catalogService struct {
	logger     log.Logger
	repository ProductRepository
	now        func() time.Time
}

func NewCatalogService(logger log.Logger, repository ProductRepository, now func() time.Time) CatalogService {
	if now == nil {
		now = time.Now
	}
	return &catalogService{
		logger:     logger,
		repository: repository,
		now:        now,
	}
}

func (s *catalogService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *catalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error) {
	now := s.timestamp()
	product := &Product{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		InStock:     input.InStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.repository.Insert(ctx, product)
	if err != nil {
		s.logger.Exception(ctx, "Failed to insert product", err)
		return nil, errors.Wrap(err, "insert product")
	}
	product.ID = id

	s.logger.Info(ctx, "Product created: "+id.Hex())
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]Product, error) {
	products, err := s.repository.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, rawProductID string) (*Product, error) {
	id, err := identifier.Parse(rawProductID)
	if err != nil {
		return nil, err
	}

	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "find product")
	}
	if product == nil {
		return nil, errors.Wrapf(ErrProductNotFound, "id %s", id.Hex())
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, rawProductID string, update ProductUpdate) (bool, error) {
	if update.IsEmpty() {
		return false, nil
	}

	id, err := identifier.Parse(rawProductID)
	if err != nil {
		return false, err
	}

	matched, err := s.repository.Update(ctx, id, update, s.timestamp())
	if err != nil {
		s.logger.Exception(ctx, "Failed to update product "+id.Hex(), err)
		return false, errors.Wrap(err, "update product")
	}
	if !matched {
		return false, errors.Wrapf(ErrProductNotFound, "id %s", id.Hex())
	}
	return true, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, rawProductID string) error {
	id, err := identifier.Parse(rawProductID)
	if err != nil {
		return err
	}

	deleted, err := s.repository.Delete(ctx, id)
	if err != nil {
		s.logger.Exception(ctx, "Failed to delete product "+id.Hex(), err)
		return errors.Wrap(err, "delete product")
	}
	if !deleted {
		return errors.Wrapf(ErrProductNotFound, "id %s", id.Hex())
	}

	s.logger.Info(ctx, "Product deleted: "+id.Hex())
	return nil
}

// SeedProducts adds the starter catalogue, skipping titles already present.
func SeedProducts(ctx context.Context, repository ProductRepository, logger log.Logger) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	category := func(name string) *string { return &name }

	products := []Product{
		{Title: "Linen Shirt", Price: 39.90, Category: category("shirts"), InStock: true},
		{Title: "Denim Jacket", Price: 89.00, Category: category("outerwear"), InStock: true},
		{Title: "Wool Scarf", Price: 24.50, Category: category("accessories"), InStock: true},
		{Title: "Chino Trousers", Price: 54.99, Category: category("trousers"), InStock: true},
		{Title: "Cotton Socks", Price: 5.50, Category: category("accessories"), InStock: false},
	}

	for _, product := range products {
		product.CreatedAt = now
		product.UpdatedAt = now
		if err := repository.SeedProduct(ctx, product); err != nil {
			logger.Exception(ctx, "Failed to seed product: "+product.Title, err)
			return err
		}
	}

	logger.Info(ctx, "Products seeded successfully")
	return nil
}
