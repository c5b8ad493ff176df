package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the persistence OrderService needs
type OrderStore interface {
	CreateOrderWithItems(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error)
	ListOrders(ctx context.Context, skip, limit int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error)
}

// OrderService handles order business logic
type OrderService struct {
	store     OrderStore
	publisher EventPublisher
	cache     StatsCache
	now       Clock
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, publisher EventPublisher, cache StatsCache) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		cache:     orDefaultCache(cache),
		now:       time.Now,
		logger:    util.GetLogger(),
	}
}

// WithClock replaces the time source used to stamp created_at
func (s *OrderService) WithClock(now Clock) *OrderService {
	s.now = now
	return s
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	CustomerName  string             `json:"customer_name" binding:"required"`
	CustomerEmail string             `json:"customer_email" binding:"required"`
	CustomerPhone string             `json:"customer_phone" binding:"required"`
	Address       string             `json:"address" binding:"required"`
	City          string             `json:"city" binding:"required"`
	PostalCode    string             `json:"postal_code"`
	TotalAmount   float64            `json:"total_amount" binding:"gte=0"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
	UserID        *string            `json:"user_id"`
	Items         []OrderItemRequest `json:"items" binding:"dive"`
}

// OrderItemRequest represents an item in an order
type OrderItemRequest struct {
	ProductID int64   `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Price     float64 `json:"price" binding:"gte=0"`
	Size      *string `json:"size"`
	Color     *string `json:"color"`
}

// CreateOrder stores an order and its items as one unit, status pending
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	order := &models.Order{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Address:       req.Address,
		City:          req.City,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderStatusPending,
		CreatedAt:     s.now().Format(models.CreatedAtLayout),
		UserID:        req.UserID,
		Items:         make([]models.OrderItem, 0, len(req.Items)),
	}
	if req.PostalCode != "" {
		postalCode := req.PostalCode
		order.PostalCode = &postalCode
	}

	for _, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Size:      item.Size,
			Color:     item.Color,
		})
	}

	if err := s.store.CreateOrderWithItems(ctx, order); err != nil {
		if errors.Is(err, store.ErrReferenced) {
			util.OrdersFailedTotal.WithLabelValues("unknown_product").Inc()
			return nil, fmt.Errorf("%w: order references an unknown product", ErrInvalidInput)
		}
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int("items", len(order.Items)))

	invalidateStats(ctx, s.cache, s.logger)
	s.publishCreated(ctx, order)

	return order, nil
}

func (s *OrderService) publishCreated(ctx context.Context, order *models.Order) {
	items := make([]models.OrderItemData, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, models.OrderItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Size:      deref(item.Size),
			Color:     deref(item.Color),
		})
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		Items:         items,
	}

	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
}

// GetOrderForCustomer returns an order only when email matches the stored
// customer email, ignoring case
func (s *OrderService) GetOrderForCustomer(ctx context.Context, orderID int64, email string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrderForCustomer")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(order.CustomerEmail, email) {
		s.logger.Warn("Order lookup with mismatched email", zap.Int64("order_id", orderID))
		return nil, fmt.Errorf("order %d: %w", orderID, ErrPermissionDenied)
	}

	return order, nil
}

// ListUserOrders lists the orders placed by a user, newest first
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.store.GetOrdersByUserID(ctx, userID)
}

// ListOrders lists all orders for the admin, newest first
func (s *OrderService) ListOrders(ctx context.Context, skip, limit int) ([]models.Order, error) {
	skip, limit = pageBounds(skip, limit)
	return s.store.ListOrders(ctx, skip, limit)
}

// UpdateOrderStatus sets any non-empty status on an order
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	if status == "" {
		return nil, fmt.Errorf("%w: status is required", ErrInvalidInput)
	}

	order, err := s.store.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}

	util.OrderStatusChangesTotal.WithLabelValues(statusLabel(status)).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("status", status))

	invalidateStats(ctx, s.cache, s.logger)

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID: orderID,
		Status:  status,
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event",
			zap.Int64("order_id", orderID),
			zap.Error(err))
	}

	return order, nil
}

// statusLabel keeps the metric label set bounded, statuses are free text
func statusLabel(status string) string {
	switch status {
	case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusDelivered, models.OrderStatusCancelled:
		return status
	}
	return "other"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
