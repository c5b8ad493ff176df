package service

import (
	"context"
	"encoding/json"
	"io"

	"shop-service/internal/models"
	"shop-service/internal/store"

	"github.com/stretchr/testify/mock"
)

type mockProductTx struct{ mock.Mock }

func (m *mockProductTx) InsertProduct(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductTx) LockProduct(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockProductTx) UpdateProduct(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductTx) ResolveColorIDs(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	found, _ := args.Get(0).([]int64)
	return found, args.Error(1)
}

func (m *mockProductTx) AttachColors(ctx context.Context, productID int64, colorIDs []int64) error {
	return m.Called(ctx, productID, colorIDs).Error(0)
}

func (m *mockProductTx) ReplaceColors(ctx context.Context, productID int64, colorIDs []int64) error {
	return m.Called(ctx, productID, colorIDs).Error(0)
}

type mockCatalogStore struct {
	mock.Mock
	tx *mockProductTx
}

func (m *mockCatalogStore) WithProductTx(_ context.Context, fn func(tx store.ProductTx) error) error {
	return fn(m.tx)
}

func (m *mockCatalogStore) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *mockCatalogStore) ListProducts(ctx context.Context, skip, limit int, category string) ([]models.Product, error) {
	args := m.Called(ctx, skip, limit, category)
	p, _ := args.Get(0).([]models.Product)
	return p, args.Error(1)
}

func (m *mockCatalogStore) DeleteProduct(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]models.Category)
	return c, args.Error(1)
}

func (m *mockCatalogStore) CreateCategory(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockCatalogStore) ListColors(ctx context.Context) ([]models.Color, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]models.Color)
	return c, args.Error(1)
}

func (m *mockCatalogStore) CreateColor(ctx context.Context, color *models.Color) error {
	return m.Called(ctx, color).Error(0)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	products      []*models.ProductEvent
	ordersCreated []*models.OrderCreatedEvent
	statusChanges []*models.OrderStatusChangedEvent
	err           error
}

func (p *recordingPublisher) PublishProductEvent(_ context.Context, event *models.ProductEvent) error {
	p.products = append(p.products, event)
	return p.err
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, event *models.OrderCreatedEvent) error {
	p.ordersCreated = append(p.ordersCreated, event)
	return p.err
}

func (p *recordingPublisher) PublishOrderStatusChanged(_ context.Context, event *models.OrderStatusChangedEvent) error {
	p.statusChanges = append(p.statusChanges, event)
	return p.err
}

// memoryCache is a StatsCache backed by a JSON blob
type memoryCache struct {
	data          []byte
	generation    int64
	invalidations int
	gets          int
}

func (c *memoryCache) Get(_ context.Context, dst interface{}) (bool, error) {
	c.gets++
	if c.data == nil {
		return false, nil
	}
	return true, json.Unmarshal(c.data, dst)
}

func (c *memoryCache) Generation(context.Context) (int64, error) {
	return c.generation, nil
}

func (c *memoryCache) SetIfGeneration(_ context.Context, generation int64, value interface{}) (bool, error) {
	if generation != c.generation {
		return false, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	c.data = data
	return true, nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.invalidations++
	c.generation++
	c.data = nil
	return nil
}

type mockOrderStore struct{ mock.Mock }

func (m *mockOrderStore) CreateOrderWithItems(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *mockOrderStore) GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	o, _ := args.Get(0).([]models.Order)
	return o, args.Error(1)
}

func (m *mockOrderStore) ListOrders(ctx context.Context, skip, limit int) ([]models.Order, error) {
	args := m.Called(ctx, skip, limit)
	o, _ := args.Get(0).([]models.Order)
	return o, args.Error(1)
}

func (m *mockOrderStore) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	args := m.Called(ctx, id, status)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

type mockVisitStore struct{ mock.Mock }

func (m *mockVisitStore) InsertVisit(ctx context.Context, ipAddress, visitDate string) (bool, error) {
	args := m.Called(ctx, ipAddress, visitDate)
	return args.Bool(0), args.Error(1)
}

type mockVisitGuard struct{ mock.Mock }

func (m *mockVisitGuard) MarkVisit(ctx context.Context, ipAddress, visitDate string) (bool, error) {
	args := m.Called(ctx, ipAddress, visitDate)
	return args.Bool(0), args.Error(1)
}

func (m *mockVisitGuard) UnmarkVisit(ctx context.Context, ipAddress, visitDate string) error {
	return m.Called(ctx, ipAddress, visitDate).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserStore) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	args := m.Called(ctx, skip, limit)
	u, _ := args.Get(0).([]models.User)
	return u, args.Error(1)
}

type fakeFileStore struct {
	names  []string
	bodies []string
	err    error
}

func (f *fakeFileStore) Save(_ context.Context, name, _ string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.names = append(f.names, name)
	f.bodies = append(f.bodies, string(data))
	return "http://cdn.test/" + name, nil
}

func (f *fakeFileStore) Backend() string { return "fake" }
