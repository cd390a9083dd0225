// Package catalog manages the products offered by the store.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"go-clothing-store/src/services/identifier"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID          identifier.ID
	Title       string
	Description *string
	Price       float64
	Category    *string
	ImageURL    *string
	InStock     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductUpdate carries the fields to overwrite. Nil fields are left as they are.
type ProductUpdate struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *string
	ImageURL    *string
	InStock     *bool
}

func (u ProductUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Price == nil &&
		u.Category == nil && u.ImageURL == nil && u.InStock == nil
}

type ProductRepository interface {
	Insert(ctx context.Context, product *Product) (identifier.ID, error)
	// FindByID returns nil, nil when no product has the id.
	FindByID(ctx context.Context, id identifier.ID) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	// Update reports whether a product matched.
	Update(ctx context.Context, id identifier.ID, update ProductUpdate, at time.Time) (bool, error)
	// Delete reports whether a product was removed.
	Delete(ctx context.Context, id identifier.ID) (bool, error)
	SeedProduct(ctx context.Context, product Product) error
}
