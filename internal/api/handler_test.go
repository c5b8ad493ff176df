package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"shop-service/internal/models"
	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router   *gin.Engine
	catalog  *mockCatalog
	orders   *mockOrders
	stats    *mockStats
	visitors *mockVisitors
	users    *mockUsers
	uploads  *mockUploads
	seed     *mockSeed
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		router:   gin.New(),
		catalog:  new(mockCatalog),
		orders:   new(mockOrders),
		stats:    new(mockStats),
		visitors: new(mockVisitors),
		users:    new(mockUsers),
		uploads:  new(mockUploads),
		seed:     new(mockSeed),
	}

	h := NewHandler(Services{
		Catalog:  ts.catalog,
		Orders:   ts.orders,
		Stats:    ts.stats,
		Visitors: ts.visitors,
		Users:    ts.users,
		Uploads:  ts.uploads,
		Seed:     ts.seed,
	}, opts)
	require.NoError(t, h.SetupRoutes(ts.router))

	t.Cleanup(func() {
		ts.catalog.AssertExpectations(t)
		ts.orders.AssertExpectations(t)
		ts.stats.AssertExpectations(t)
		ts.visitors.AssertExpectations(t)
		ts.users.AssertExpectations(t)
		ts.uploads.AssertExpectations(t)
		ts.seed.AssertExpectations(t)
	})
	return ts
}

func (ts *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	return ts.doWithHeaders(method, path, body, nil)
}

func (ts *testServer) doWithHeaders(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:5555"
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, Options{})

	w := ts.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

func TestReadinessCheck(t *testing.T) {
	ts := newTestServer(t, Options{Readiness: map[string]Pinger{
		"database": pingerFunc(func(context.Context) error { return nil }),
		"redis":    pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
	}})

	w := ts.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	failures := decode(t, w)["failures"].(map[string]interface{})
	assert.Equal(t, "connection refused", failures["redis"])
	assert.NotContains(t, failures, "database")
}

func TestGetProduct(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.catalog.On("GetProduct", mock.Anything, int64(3)).
		Return(&models.Product{ID: 3, Name: "Body Midnight Velvet", Colors: []models.Color{}}, nil)
	ts.catalog.On("GetProduct", mock.Anything, int64(404)).
		Return(nil, fmt.Errorf("product 404: %w", service.ErrNotFound))

	w := ts.do(http.MethodGet, "/api/products/3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Body Midnight Velvet", decode(t, w)["name"])

	w = ts.do(http.MethodGet, "/api/products/404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decode(t, w)["error"])

	w = ts.do(http.MethodGet, "/api/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListProductsPassesPaging(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.catalog.On("ListProducts", mock.Anything, 10, 5, "Bodies").Return([]models.Product{}, nil)

	w := ts.do(http.MethodGet, "/api/products?skip=10&limit=5&category=Bodies", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = ts.do(http.MethodGet, "/api/products?limit=many", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProduct(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.catalog.On("CreateProduct", mock.Anything, mock.MatchedBy(func(in *service.ProductInput) bool {
		return in.Name == "Kimono" && in.CategoryID == 4 && assert.ObjectsAreEqual([]int64{5, 999}, in.ColorIDs)
	})).Return(&models.Product{ID: 12, Name: "Kimono", Colors: []models.Color{{ID: 5, Name: "Negro"}}}, nil)

	w := ts.do(http.MethodPost, "/api/products", gin.H{
		"name":        "Kimono",
		"price":       120000,
		"category_id": 4,
		"color_ids":   []int64{5, 999},
	})
	require.Equal(t, http.StatusOK, w.Code)
	colors := decode(t, w)["colors"].([]interface{})
	assert.Len(t, colors, 1)
}

func TestCreateProductValidation(t *testing.T) {
	ts := newTestServer(t, Options{})

	w := ts.do(http.MethodPost, "/api/products", gin.H{"price": 10, "category_id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decode(t, w)["error"])

	w = ts.do(http.MethodPost, "/api/products", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.catalog.On("CreateProduct", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: category 77 does not exist", service.ErrInvalidInput))

	w := ts.do(http.MethodPost, "/api/products", gin.H{"name": "X", "price": 1, "category_id": 77})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["details"], "category 77")
}

func TestUpdateProductNotFound(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.catalog.On("UpdateProduct", mock.Anything, int64(9), mock.Anything).
		Return(nil, fmt.Errorf("product 9: %w", service.ErrNotFound))

	w := ts.do(http.MethodPut, "/api/admin/products/9", gin.H{"name": "X", "price": 1, "category_id": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateProductClearsColors(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.catalog.On("UpdateProduct", mock.Anything, int64(2), mock.MatchedBy(func(in *service.ProductInput) bool {
		return in.ColorIDs != nil && len(in.ColorIDs) == 0
	})).Return(&models.Product{ID: 2, Colors: []models.Color{}}, nil)

	w := ts.do(http.MethodPut, "/api/admin/products/2", gin.H{
		"name": "X", "price": 1, "category_id": 1, "color_ids": []int64{},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteProduct(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.catalog.On("DeleteProduct", mock.Anything, int64(1)).Return(nil)
	ts.catalog.On("DeleteProduct", mock.Anything, int64(2)).
		Return(fmt.Errorf("product 2: %w", service.ErrProductInUse))

	w := ts.do(http.MethodDelete, "/api/admin/products/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Product deleted successfully", decode(t, w)["message"])

	w = ts.do(http.MethodDelete, "/api/admin/products/2", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateCategoryConflict(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.catalog.On("CreateCategory", mock.Anything, "Bodies").Return(nil, service.ErrConflict)

	w := ts.do(http.MethodPost, "/api/admin/categories", gin.H{"name": "Bodies"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Category already exists", decode(t, w)["error"])
}

func TestGetOrder(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.orders.On("GetOrderForCustomer", mock.Anything, int64(5), "ANA@example.com").
		Return(&models.Order{ID: 5, CustomerEmail: "ana@example.com", Items: []models.OrderItem{}}, nil)
	ts.orders.On("GetOrderForCustomer", mock.Anything, int64(5), "eve@example.com").
		Return(nil, fmt.Errorf("order 5: %w", service.ErrPermissionDenied))

	w := ts.do(http.MethodGet, "/api/orders/5?email=ANA@example.com", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/api/orders/5?email=eve@example.com", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodGet, "/api/orders/5", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUserOrdersRoute(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.orders.On("ListUserOrders", mock.Anything, "user-1").Return([]models.Order{{ID: 1}}, nil)

	w := ts.do(http.MethodGet, "/api/orders/user/user-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateOrder(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req *service.CreateOrderRequest) bool {
		return req.TotalAmount == 100 && len(req.Items) == 1 && req.Items[0].ProductID == 3
	})).Return(&models.Order{ID: 1, Status: models.OrderStatusPending}, nil)

	w := ts.do(http.MethodPost, "/api/orders", gin.H{
		"customer_name":  "Ana",
		"customer_email": "ana@example.com",
		"customer_phone": "300",
		"address":        "Calle 1",
		"city":           "Bogotá",
		"total_amount":   100,
		"payment_method": "cash",
		"items":          []gin.H{{"product_id": 3, "quantity": 1, "price": 100}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", decode(t, w)["status"])
}

func TestUpdateOrderStatus(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.orders.On("UpdateOrderStatus", mock.Anything, int64(4), "paid").
		Return(&models.Order{ID: 4, Status: "paid"}, nil)
	ts.orders.On("UpdateOrderStatus", mock.Anything, int64(4), "").
		Return(nil, fmt.Errorf("%w: status is required", service.ErrInvalidInput))
	ts.orders.On("UpdateOrderStatus", mock.Anything, int64(99), "paid").
		Return(nil, fmt.Errorf("order 99: %w", service.ErrNotFound))

	w := ts.do(http.MethodPatch, "/api/admin/orders/4/status", gin.H{"status": "paid"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodPatch, "/api/admin/orders/4/status", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPatch, "/api/admin/orders/99/status", gin.H{"status": "paid"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminStats(t *testing.T) {
	ts := newTestServer(t, Options{})
	stats := &models.AdminStats{Revenue: 250, OrdersCount: 3, RecentOrders: []models.Order{}}
	stats.SalesActivity[2] = 250
	ts.stats.On("ComputeStats", mock.Anything).Return(stats, nil)

	w := ts.do(http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, 250.0, body["revenue"])
	activity := body["sales_activity"].([]interface{})
	assert.Len(t, activity, 12)
	assert.Equal(t, 250.0, activity[2])
}

func TestRecordVisitUsesClientIP(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.visitors.On("RecordVisit", mock.Anything, "203.0.113.7").Return(false, nil)

	w := ts.do(http.MethodPost, "/api/record-visit", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestRecordVisitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.visitors.On("RecordVisit", mock.Anything, "203.0.113.7").Return(true, nil).Once()
	ts.visitors.On("RecordVisit", mock.Anything, "203.0.113.7").Return(false, nil).Once()

	for _, forwarded := range []string{"1.1.1.1", "2.2.2.2"} {
		w := ts.doWithHeaders(http.MethodPost, "/api/record-visit", nil, map[string]string{
			"X-Forwarded-For": forwarded,
			"X-Real-IP":       forwarded,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	}
	ts.visitors.AssertNumberOfCalls(t, "RecordVisit", 2)
}

func TestRecordVisitHonorsForwardedForFromTrustedProxy(t *testing.T) {
	ts := newTestServer(t, Options{TrustedProxies: []string{"203.0.113.0/24"}})
	ts.visitors.On("RecordVisit", mock.Anything, "198.51.100.20").Return(true, nil)

	w := ts.doWithHeaders(http.MethodPost, "/api/record-visit", nil, map[string]string{
		"X-Forwarded-For": "198.51.100.20",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRoutesRejectsInvalidTrustedProxy(t *testing.T) {
	h := NewHandler(Services{}, Options{TrustedProxies: []string{"not-an-ip"}})
	assert.Error(t, h.SetupRoutes(gin.New()))
}

func TestRegisterAndListUsers(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.users.On("Register", mock.Anything, mock.Anything).
		Return(&models.User{ID: 1, Email: "ana@example.com", HashedPassword: "secret-hash"}, nil)
	ts.users.On("ListUsers", mock.Anything, 0, 100).Return([]models.User{}, nil)

	w := ts.do(http.MethodPost, "/api/users", gin.H{"email": "ana@example.com", "name": "Ana", "password": "hunter22"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-hash")

	w = ts.do(http.MethodPost, "/api/users", gin.H{"email": "not-an-email", "name": "Ana", "password": "hunter22"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/api/admin/users", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t, Options{MaxUploadBytes: 1 << 20})
	ts.uploads.On("Upload", mock.Anything, "photo.JPG", "image-bytes").
		Return("http://localhost:8000/uploads/abc.jpg", nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "photo.JPG")
	require.NoError(t, err)
	_, err = part.Write([]byte("image-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:8000/uploads/abc.jpg", decode(t, w)["url"])
}

func TestUploadRequiresFile(t *testing.T) {
	ts := newTestServer(t, Options{})

	w := ts.do(http.MethodPost, "/api/upload", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSeedCatalog(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.seed.On("SeedCategoriesAndColors", mock.Anything).
		Return(&service.SeedResult{Categories: 9, Colors: 12}, nil)

	w := ts.do(http.MethodPost, "/api/seed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 9.0, decode(t, w)["categories"])
}

func TestInternalErrorsAre500(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.catalog.On("ListColors", mock.Anything).Return(nil, errors.New("connection reset"))

	w := ts.do(http.MethodGet, "/api/colors", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "connection reset", decode(t, w)["details"])
}
