package models

import (
	"time"

	"go-clothing-store/src/services/catalog"
)

type ProductRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"image_url"`
	InStock     *bool   `json:"in_stock"`
}

func (r ProductRequest) ToInput() catalog.CreateProductInput {
	inStock := true
	if r.InStock != nil {
		inStock = *r.InStock
	}
	return catalog.CreateProductInput{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		InStock:     inStock,
	}
}

// ProductUpdateRequest only overwrites the fields present in the body.
type ProductUpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"image_url"`
	InStock     *bool    `json:"in_stock"`
}

func (r ProductUpdateRequest) ToUpdate() catalog.ProductUpdate {
	return catalog.ProductUpdate{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		InStock:     r.InStock,
	}
}

type DeletedResponse struct {
	Deleted bool `json:"deleted"`
}

type ProductResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	Category    *string   `json:"category"`
	ImageURL    *string   `json:"image_url"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID.Hex(),
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		ImageURL:    product.ImageURL,
		InStock:     product.InStock,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func NewProductListResponse(products []catalog.Product) []ProductResponse {
	resp := make([]ProductResponse, len(products))
	for i := range products {
		resp[i] = NewProductResponse(&products[i])
	}
	return resp
}
