package models

import (
	"time"

	"go-clothing-store/src/services/order/domain"
)

// OrderItemRequest requires a price to be present; an omitted price would
// otherwise decode as 0 and price the line for free.
type OrderItemRequest struct {
	ProductID string   `json:"product_id" validate:"required"`
	Title     string   `json:"title" validate:"required"`
	Price     *float64 `json:"price" validate:"required,gte=0"`
	Quantity  int      `json:"quantity" validate:"gt=0"`
}

// OrderRequest checks presence only: customer strings are opaque and may be
// empty. items must be present but may be an empty array, in which case the
// order is stored with subtotal 0.
type OrderRequest struct {
	CustomerName    *string            `json:"customer_name" validate:"required"`
	CustomerEmail   *string            `json:"customer_email" validate:"required"`
	ShippingAddress *string            `json:"shipping_address" validate:"required"`
	Items           []OrderItemRequest `json:"items" validate:"required,dive"`
}

func (r OrderRequest) ToInput() domain.CreateOrderInput {
	items := make([]domain.OrderItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     deref(item.Price),
			Quantity:  item.Quantity,
		}
	}
	return domain.CreateOrderInput{
		CustomerName:    deref(r.CustomerName),
		CustomerEmail:   deref(r.CustomerEmail),
		ShippingAddress: deref(r.ShippingAddress),
		Items:           items,
	}
}

// MarkPaidRequest leaves the format of order_id to the identifier codec, so
// an empty id is reported as an invalid identifier.
type MarkPaidRequest struct {
	OrderID *string `json:"order_id" validate:"required"`
}

func (r MarkPaidRequest) RawOrderID() string {
	return deref(r.OrderID)
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

type UpdatedResponse struct {
	Updated bool `json:"updated"`
}

type OrderItemResponse struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email"`
	ShippingAddress string              `json:"shipping_address"`
	Items           []OrderItemResponse `json:"items"`
	Subtotal        float64             `json:"subtotal"`
	Status          string              `json:"status"`
	PaymentMethod   string              `json:"payment_method"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
}

func NewOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}
	return OrderResponse{
		ID:              order.ID.Hex(),
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		ShippingAddress: order.ShippingAddress,
		Items:           items,
		Subtotal:        order.Subtotal,
		Status:          string(order.Status),
		PaymentMethod:   order.PaymentMethod,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		PaidAt:          order.PaidAt,
	}
}

func NewOrderListResponse(orders []domain.Order) []OrderResponse {
	resp := make([]OrderResponse, len(orders))
	for i := range orders {
		resp[i] = NewOrderResponse(&orders[i])
	}
	return resp
}
