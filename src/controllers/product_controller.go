package controllers

import (
	"github.com/gofiber/fiber/v2"

	"go-clothing-store/src/controllers/models"
	"go-clothing-store/src/services/catalog"
)

type ProductController struct {
	catalogService catalog.CatalogService
}

func NewProductController(catalogService catalog.CatalogService) *ProductController {
	return &ProductController{
		catalogService: catalogService,
	}
}

func (c *ProductController) Route(app *fiber.App) {
	api := app.Group("/products")
	api.Post("/", c.CreateProduct)
	api.Get("/", c.GetAllProducts)
	api.Get("/:id", c.GetProduct)
	api.Put("/:id", c.UpdateProduct)
	api.Delete("/:id", c.DeleteProduct)
}

// CreateProduct godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        product  body  models.ProductRequest  true  "Product payload"
// @Success      200  {object}  models.ProductResponse
// @Failure      422  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /products [post]
func (c *ProductController) CreateProduct(ctx *fiber.Ctx) error {
	var req models.ProductRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	product, err := c.catalogService.CreateProduct(ctx.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return ctx.JSON(models.NewProductResponse(product))
}

// GetAllProducts godoc
// @Summary      Get all products
// @Description  Retrieves all products, newest first
// @Tags         products
// @Produce      json
// @Success      200  {array}   models.ProductResponse
// @Failure      500  {object}  map[string]interface{}
// @Router       /products [get]
func (c *ProductController) GetAllProducts(ctx *fiber.Ctx) error {
	products, err := c.catalogService.ListProducts(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(models.NewProductListResponse(products))
}

// GetProduct godoc
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  models.ProductResponse
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /products/{id} [get]
func (c *ProductController) GetProduct(ctx *fiber.Ctx) error {
	product, err := c.catalogService.GetProduct(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(models.NewProductResponse(product))
}

// UpdateProduct godoc
// @Summary      Update a product
// @Description  Overwrites only the fields present in the body. An empty body returns updated=false
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id       path  string                       true  "Product ID"
// @Param        product  body  models.ProductUpdateRequest  true  "Fields to change"
// @Success      200  {object}  models.UpdatedResponse
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      422  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /products/{id} [put]
func (c *ProductController) UpdateProduct(ctx *fiber.Ctx) error {
	var req models.ProductUpdateRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	updated, err := c.catalogService.UpdateProduct(ctx.UserContext(), ctx.Params("id"), req.ToUpdate())
	if err != nil {
		return err
	}
	return ctx.JSON(models.UpdatedResponse{Updated: updated})
}

// DeleteProduct godoc
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  models.DeletedResponse
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /products/{id} [delete]
func (c *ProductController) DeleteProduct(ctx *fiber.Ctx) error {
	if err := c.catalogService.DeleteProduct(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(models.DeletedResponse{Deleted: true})
}
