package api

import (
	"context"
	"io"

	"shop-service/internal/models"
	"shop-service/internal/service"

	"github.com/stretchr/testify/mock"
)

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) CreateProduct(ctx context.Context, in *service.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *mockCatalog) UpdateProduct(ctx context.Context, id int64, in *service.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, id, in)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *mockCatalog) DeleteProduct(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalog) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *mockCatalog) ListProducts(ctx context.Context, skip, limit int, category string) ([]models.Product, error) {
	args := m.Called(ctx, skip, limit, category)
	p, _ := args.Get(0).([]models.Product)
	return p, args.Error(1)
}

func (m *mockCatalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]models.Category)
	return c, args.Error(1)
}

func (m *mockCatalog) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(*models.Category)
	return c, args.Error(1)
}

func (m *mockCatalog) ListColors(ctx context.Context) ([]models.Color, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]models.Color)
	return c, args.Error(1)
}

func (m *mockCatalog) CreateColor(ctx context.Context, name, value string) (*models.Color, error) {
	args := m.Called(ctx, name, value)
	c, _ := args.Get(0).(*models.Color)
	return c, args.Error(1)
}

type mockOrders struct{ mock.Mock }

func (m *mockOrders) CreateOrder(ctx context.Context, req *service.CreateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, req)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *mockOrders) GetOrderForCustomer(ctx context.Context, orderID int64, email string) (*models.Order, error) {
	args := m.Called(ctx, orderID, email)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *mockOrders) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	o, _ := args.Get(0).([]models.Order)
	return o, args.Error(1)
}

func (m *mockOrders) ListOrders(ctx context.Context, skip, limit int) ([]models.Order, error) {
	args := m.Called(ctx, skip, limit)
	o, _ := args.Get(0).([]models.Order)
	return o, args.Error(1)
}

func (m *mockOrders) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	args := m.Called(ctx, orderID, status)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

type mockStats struct{ mock.Mock }

func (m *mockStats) ComputeStats(ctx context.Context) (*models.AdminStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*models.AdminStats)
	return s, args.Error(1)
}

type mockVisitors struct{ mock.Mock }

func (m *mockVisitors) RecordVisit(ctx context.Context, ipAddress string) (bool, error) {
	args := m.Called(ctx, ipAddress)
	return args.Bool(0), args.Error(1)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Register(ctx context.Context, req *service.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	args := m.Called(ctx, skip, limit)
	u, _ := args.Get(0).([]models.User)
	return u, args.Error(1)
}

type mockUploads struct{ mock.Mock }

func (m *mockUploads) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	data, _ := io.ReadAll(body)
	args := m.Called(ctx, filename, string(data))
	return args.String(0), args.Error(1)
}

type mockSeed struct{ mock.Mock }

func (m *mockSeed) SeedCategoriesAndColors(ctx context.Context) (*service.SeedResult, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*service.SeedResult)
	return r, args.Error(1)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
