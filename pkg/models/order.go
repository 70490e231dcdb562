package models

import (
	"time"
)

// OrderStatus is the closed order state machine. Transitions move forward in
// rank or to cancelled; delivered and cancelled are terminal.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

func (s OrderStatus) rank() int {
	switch s {
	case OrderPending:
		return 0
	case OrderProcessing:
		return 1
	case OrderShipped:
		return 2
	case OrderDelivered:
		return 3
	}
	return -1
}

// CanTransitionTo reports whether the status may move to next. Forward skips
// (pending to shipped) are allowed; backward moves are not.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	return next.rank() > s.rank()
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

type DeliveryMethod string

const (
	DeliveryMethodDelivery DeliveryMethod = "delivery"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryMethodDelivery || m == DeliveryMethodPickup
}

// OrderItem is an order-time snapshot of a product. Name and price are copied
// at creation so later catalog edits do not alter historical orders.
type OrderItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Total     float64 `bson:"total" json:"total"`
}

type DeliveryInfo struct {
	Method     DeliveryMethod `bson:"method" json:"method"`
	Address    string         `bson:"address,omitempty" json:"address,omitempty"`
	City       string         `bson:"city,omitempty" json:"city,omitempty"`
	State      string         `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string         `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	Country    string         `bson:"country,omitempty" json:"country,omitempty"`
	Fee        float64        `bson:"delivery_fee" json:"delivery_fee"`
}

// Order is immutable after creation except for Status.
type Order struct {
	ID            string        `bson:"id" json:"id"`
	ShopID        string        `bson:"shop_id" json:"shop_id"`
	UserID        string        `bson:"user_id" json:"user_id"`
	Items         []OrderItem   `bson:"items" json:"items"`
	Subtotal      float64       `bson:"subtotal" json:"subtotal"`
	DeliveryInfo  DeliveryInfo  `bson:"delivery_info" json:"delivery_info"`
	Total         float64       `bson:"total" json:"total"`
	PaymentMethod string        `bson:"payment_method" json:"payment_method"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"payment_status"`
	Status        OrderStatus   `bson:"status" json:"status"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updated_at"`
}
