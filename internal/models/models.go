package models

import (
	"time"

	"github.com/lib/pq"
)

// CreatedAtLayout is the fixed layout orders store their creation time in
const CreatedAtLayout = "2006-01-02 15:04:05"

// VisitDateLayout is the day-granularity layout of Visitor.VisitDate
const VisitDateLayout = "2006-01-02"

// Category groups products
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Color is a product color option, Value holds a hex string
type Color struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Value string `db:"value" json:"value"`
}

// Product represents a product in the catalog
type Product struct {
	ID            int64          `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Description   string         `db:"description" json:"description"`
	Price         float64        `db:"price" json:"price"`
	OriginalPrice *float64       `db:"original_price" json:"original_price"`
	Images        pq.StringArray `db:"images" json:"images"`
	Sizes         pq.StringArray `db:"sizes" json:"sizes"`
	Features      pq.StringArray `db:"features" json:"features"`
	IsNew         bool           `db:"is_new" json:"is_new"`
	IsSale        bool           `db:"is_sale" json:"is_sale"`
	CategoryID    int64          `db:"category_id" json:"category_id"`
	Category      Category       `db:"category" json:"category"`
	Colors        []Color        `db:"-" json:"colors"`
}

// Order represents a customer order
type Order struct {
	ID            int64       `db:"id" json:"id"`
	CustomerName  string      `db:"customer_name" json:"customer_name"`
	CustomerEmail string      `db:"customer_email" json:"customer_email"`
	CustomerPhone string      `db:"customer_phone" json:"customer_phone"`
	Address       string      `db:"address" json:"address"`
	City          string      `db:"city" json:"city"`
	PostalCode    *string     `db:"postal_code" json:"postal_code"`
	TotalAmount   float64     `db:"total_amount" json:"total_amount"`
	PaymentMethod string      `db:"payment_method" json:"payment_method"`
	Status        string      `db:"status" json:"status"`
	CreatedAt     string      `db:"created_at" json:"created_at"`
	UserID        *string     `db:"user_id" json:"user_id"`
	Items         []OrderItem `db:"-" json:"items"`
}

// OrderItem is a line of an order. Price is the unit price at order time,
// Size and Color are free-text labels copied from the cart.
type OrderItem struct {
	ID        int64   `db:"id" json:"id"`
	OrderID   int64   `db:"order_id" json:"order_id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Quantity  int     `db:"quantity" json:"quantity"`
	Price     float64 `db:"price" json:"price"`
	Size      *string `db:"size" json:"size"`
	Color     *string `db:"color" json:"color"`
}

// OrderTotal is the slice of an order the stats aggregation needs
type OrderTotal struct {
	TotalAmount float64 `db:"total_amount"`
	CreatedAt   string  `db:"created_at"`
}

// Visitor is one visit-day of an address
type Visitor struct {
	ID        int64     `db:"id" json:"id"`
	IPAddress string    `db:"ip_address" json:"ip_address"`
	VisitDate string    `db:"visit_date" json:"visit_date"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// User is a registered shop customer
type User struct {
	ID             int64     `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	Name           string    `db:"name" json:"name"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// AdminStats is the dashboard snapshot
type AdminStats struct {
	Revenue       float64     `json:"revenue"`
	OrdersCount   int64       `json:"orders_count"`
	ProductsCount int64       `json:"products_count"`
	VisitorsCount int64       `json:"visitors_count"`
	RecentOrders  []Order     `json:"recent_orders"`
	SalesActivity [12]float64 `json:"sales_activity"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// CategoryAll is the listing sentinel that disables the category filter
const CategoryAll = "Todos"
