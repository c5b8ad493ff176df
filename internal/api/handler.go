package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/service"
	"shop-service/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// CatalogService is the product, category and color logic the API exposes
type CatalogService interface {
	CreateProduct(ctx context.Context, in *service.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in *service.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, skip, limit int, category string) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	ListColors(ctx context.Context) ([]models.Color, error)
	CreateColor(ctx context.Context, name, value string) (*models.Color, error)
}

// OrderService is the order logic the API exposes
type OrderService interface {
	CreateOrder(ctx context.Context, req *service.CreateOrderRequest) (*models.Order, error)
	GetOrderForCustomer(ctx context.Context, orderID int64, email string) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]models.Order, error)
	ListOrders(ctx context.Context, skip, limit int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*models.Order, error)
}

// StatsService computes the admin dashboard
type StatsService interface {
	ComputeStats(ctx context.Context) (*models.AdminStats, error)
}

// VisitorService records storefront visits
type VisitorService interface {
	RecordVisit(ctx context.Context, ipAddress string) (bool, error)
}

// UserService registers and lists users
type UserService interface {
	Register(ctx context.Context, req *service.RegisterRequest) (*models.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]models.User, error)
}

// UploadService stores uploaded images
type UploadService interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// SeedService loads starter categories and colors
type SeedService interface {
	SeedCategoriesAndColors(ctx context.Context) (*service.SeedResult, error)
}

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the business logic behind the routes
type Services struct {
	Catalog  CatalogService
	Orders   OrderService
	Stats    StatsService
	Visitors VisitorService
	Users    UserService
	Uploads  UploadService
	Seed     SeedService
}

// Options tunes routing. An empty UploadDir disables static file serving.
// With no TrustedProxies the client address is always the direct peer.
type Options struct {
	AllowedOrigins []string
	TrustedProxies []string
	UploadDir      string
	MaxUploadBytes int64
	Readiness      map[string]Pinger
}

// Handler contains HTTP handlers
type Handler struct {
	catalog  CatalogService
	orders   OrderService
	stats    StatsService
	visitors VisitorService
	users    UserService
	uploads  UploadService
	seed     SeedService
	opts     Options
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		catalog:  svc.Catalog,
		orders:   svc.Orders,
		stats:    svc.Stats,
		visitors: svc.Visitors,
		users:    svc.Users,
		uploads:  svc.Uploads,
		seed:     svc.Seed,
		opts:     opts,
		logger:   util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) error {
	if err := router.SetTrustedProxies(h.opts.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}

	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(corsMiddleware(h.opts.AllowedOrigins))
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if h.opts.UploadDir != "" {
		router.Static("/uploads", h.opts.UploadDir)
	}

	api := router.Group("/api")
	{
		api.GET("/products", h.listProducts)
		api.GET("/products/:id", h.getProduct)
		api.POST("/products", h.createProduct)
		api.GET("/categories", h.listCategories)
		api.GET("/colors", h.listColors)

		api.POST("/orders", h.createOrder)
		api.GET("/orders/:id", h.getOrder)
		api.GET("/orders/user/:user_id", h.listUserOrders)

		api.POST("/record-visit", h.recordVisit)
		api.POST("/upload", h.upload)
		api.POST("/users", h.registerUser)
		api.POST("/seed", h.seedCatalog)
	}

	admin := api.Group("/admin")
	{
		admin.GET("/stats", h.adminStats)
		admin.GET("/orders", h.listOrders)
		admin.PATCH("/orders/:id/status", h.updateOrderStatus)
		admin.PUT("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)
		admin.POST("/categories", h.createCategory)
		admin.POST("/colors", h.createColor)
		admin.GET("/users", h.listUsers)
	}

	return nil
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every registered dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failures := gin.H{}
	for name, p := range h.opts.Readiness {
		if err := p.Ping(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not ready",
			"failures": failures,
			"time":     time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps service errors onto HTTP statuses
func (h *Handler) respondError(c *gin.Context, err error, resource string) {
	status := http.StatusInternalServerError
	message := "Failed to process " + resource

	switch {
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, resource+" not found"
	case errors.Is(err, service.ErrPermissionDenied):
		status, message = http.StatusForbidden, "Permission denied"
	case errors.Is(err, service.ErrInvalidInput):
		status, message = http.StatusBadRequest, "Invalid request"
	case errors.Is(err, service.ErrProductInUse):
		status, message = http.StatusConflict, "Product is referenced by existing orders"
	case errors.Is(err, service.ErrConflict):
		status, message = http.StatusConflict, resource+" already exists"
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{"error": message}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

// parseID reads an int64 path parameter, writing 400 when malformed
func parseID(c *gin.Context, name, resource string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, "Invalid "+resource+" ID", nil)
		return 0, false
	}
	return id, true
}

// parsePage reads skip and limit, defaulting to 0 and 100
func parsePage(c *gin.Context) (int, int, bool) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil {
		badRequest(c, "Invalid skip", err)
		return 0, 0, false
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		badRequest(c, "Invalid limit", err)
		return 0, 0, false
	}
	return skip, limit, true
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
