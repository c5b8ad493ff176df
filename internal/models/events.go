package models

import "time"

// Event types
const (
	EventTypeProductCreated     = "PRODUCT_CREATED"
	EventTypeProductUpdated     = "PRODUCT_UPDATED"
	EventTypeProductDeleted     = "PRODUCT_DELETED"
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductEvent is published on catalog mutations
type ProductEvent struct {
	BaseEvent
	ProductID  int64   `json:"product_id"`
	Name       string  `json:"name,omitempty"`
	Price      float64 `json:"price,omitempty"`
	CategoryID int64   `json:"category_id,omitempty"`
	ColorIDs   []int64 `json:"color_ids,omitempty"`
}

// OrderCreatedEvent published when an order and its items are stored
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       int64           `json:"order_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	TotalAmount   float64         `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Items         []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published when an admin moves an order
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
}
