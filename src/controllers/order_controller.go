package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"go-clothing-store/src/controllers/models"
	"go-clothing-store/src/services/order/domain"
)

// EventReplayer republishes order events that never reached the broker.
type EventReplayer interface {
	ReplayFailedEvents(ctx context.Context) error
}

type OrderController struct {
	domain.OrderService
	replayer EventReplayer
}

func NewOrderController(orderService domain.OrderService, replayer EventReplayer) *OrderController {
	return &OrderController{
		OrderService: orderService,
		replayer:     replayer,
	}
}

func (c *OrderController) Route(app *fiber.App) {
	api := app.Group("/orders")
	api.Post("/", c.CreateOrder)
	api.Get("/", c.ListOrders)
	api.Post("/mark-paid", c.MarkPaid)
	api.Post("/replay-failed-events", c.ReplayFailedEvents)
	api.Get("/:id", c.GetOrder)
}

// CreateOrder godoc
// @Summary      Create a new order
// @Description  Prices the items and stores a pending QR-payment order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        order  body  models.OrderRequest  true  "Order payload"
// @Success      200  {object}  models.OrderResponse
// @Failure      422  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /orders [post]
func (c *OrderController) CreateOrder(ctx *fiber.Ctx) error {
	var req models.OrderRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	order, err := c.OrderService.CreateOrder(ctx.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusOK).JSON(models.NewOrderResponse(order))
}

// ListOrders godoc
// @Summary      List orders
// @Description  Returns every order, newest first
// @Tags         orders
// @Produce      json
// @Success      200  {array}   models.OrderResponse
// @Failure      500  {object}  map[string]interface{}
// @Router       /orders [get]
func (c *OrderController) ListOrders(ctx *fiber.Ctx) error {
	orders, err := c.OrderService.ListOrders(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(models.NewOrderListResponse(orders))
}

// GetOrder godoc
// @Summary      Get order by ID
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  models.OrderResponse
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /orders/{id} [get]
func (c *OrderController) GetOrder(ctx *fiber.Ctx) error {
	order, err := c.OrderService.GetOrder(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(models.NewOrderResponse(order))
}

// MarkPaid godoc
// @Summary      Confirm payment of an order
// @Description  Sets the order status to paid. Repeating the call succeeds and refreshes paid_at
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        payload  body  models.MarkPaidRequest  true  "Order to mark as paid"
// @Success      200  {object}  models.UpdatedResponse
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      422  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /orders/mark-paid [post]
func (c *OrderController) MarkPaid(ctx *fiber.Ctx) error {
	var req models.MarkPaidRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	if err := c.OrderService.MarkPaid(ctx.UserContext(), req.RawOrderID()); err != nil {
		return err
	}
	return ctx.JSON(models.UpdatedResponse{Updated: true})
}

// ReplayFailedEvents godoc
// @Summary      Replay failed order events
// @Description  Replays failed order events that have not been successfully published
// @Tags         orders
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /orders/replay-failed-events [post]
func (c *OrderController) ReplayFailedEvents(ctx *fiber.Ctx) error {
	if err := c.replayer.ReplayFailedEvents(ctx.UserContext()); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "Replay complete"})
}
