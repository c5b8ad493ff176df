package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// CatalogStore is the persistence CatalogService needs
type CatalogStore interface {
	WithProductTx(ctx context.Context, fn func(tx store.ProductTx) error) error
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, skip, limit int, category string) ([]models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	ListColors(ctx context.Context) ([]models.Color, error)
	CreateColor(ctx context.Context, color *models.Color) error
}

// CatalogService creates and mutates products and their color sets
type CatalogService struct {
	store     CatalogStore
	publisher EventPublisher
	cache     StatsCache
	logger    *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store CatalogStore, publisher EventPublisher, cache StatsCache) *CatalogService {
	return &CatalogService{
		store:     store,
		publisher: publisher,
		cache:     orDefaultCache(cache),
		logger:    util.GetLogger(),
	}
}

// ProductInput carries the full set of writable product fields
type ProductInput struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"gte=0"`
	OriginalPrice *float64 `json:"original_price"`
	Images        []string `json:"images"`
	CategoryID    int64    `json:"category_id" binding:"required"`
	Sizes         []string `json:"sizes"`
	IsNew         bool     `json:"is_new"`
	IsSale        bool     `json:"is_sale"`
	Features      []string `json:"features"`
	ColorIDs      []int64  `json:"color_ids"`
}

func (in *ProductInput) toProduct() *models.Product {
	return &models.Product{
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Images:        stringArray(in.Images),
		CategoryID:    in.CategoryID,
		Sizes:         stringArray(in.Sizes),
		IsNew:         in.IsNew,
		IsSale:        in.IsSale,
		Features:      stringArray(in.Features),
	}
}

func stringArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}

// CreateProduct stores a new product. Colors are attached only when
// ColorIDs is non-empty; ids that match no color are dropped.
func (s *CatalogService) CreateProduct(ctx context.Context, in *ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	product := in.toProduct()
	attached := []int64{}

	err := s.store.WithProductTx(ctx, func(tx store.ProductTx) error {
		if err := tx.InsertProduct(ctx, product); err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}

		if len(in.ColorIDs) == 0 {
			return nil
		}

		colorIDs, err := tx.ResolveColorIDs(ctx, in.ColorIDs)
		if err != nil {
			return fmt.Errorf("failed to resolve colors: %w", err)
		}
		attached = colorIDs

		return tx.AttachColors(ctx, product.ID, colorIDs)
	})
	if err != nil {
		return nil, s.mapWriteError(err, in)
	}

	util.CatalogMutationsTotal.WithLabelValues("create").Inc()
	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.Int("colors", len(attached)))
	s.afterMutation(ctx, models.EventTypeProductCreated, product, attached)

	return s.store.GetProduct(ctx, product.ID)
}

// UpdateProduct overwrites every field of an existing product and always
// replaces its color set, an empty ColorIDs clears it. Returns ErrNotFound
// without touching anything when the product does not exist.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, in *ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	product := in.toProduct()
	product.ID = id
	var replaced []int64

	err := s.store.WithProductTx(ctx, func(tx store.ProductTx) error {
		found, err := tx.LockProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load product: %w", err)
		}
		if !found {
			return fmt.Errorf("product %d: %w", id, ErrNotFound)
		}

		if err := tx.UpdateProduct(ctx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		colorIDs, err := tx.ResolveColorIDs(ctx, in.ColorIDs)
		if err != nil {
			return fmt.Errorf("failed to resolve colors: %w", err)
		}
		replaced = colorIDs

		return tx.ReplaceColors(ctx, id, colorIDs)
	})
	if err != nil {
		return nil, s.mapWriteError(err, in)
	}

	util.CatalogMutationsTotal.WithLabelValues("update").Inc()
	s.logger.Info("Product updated",
		zap.Int64("product_id", id),
		zap.Int("colors", len(replaced)))
	s.afterMutation(ctx, models.EventTypeProductUpdated, product, replaced)

	return s.store.GetProduct(ctx, id)
}

// DeleteProduct removes a product and its color links
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteProduct")
	defer span.End()

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrReferenced) {
			return fmt.Errorf("product %d: %w", id, ErrProductInUse)
		}
		return err
	}

	util.CatalogMutationsTotal.WithLabelValues("delete").Inc()
	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	s.afterMutation(ctx, models.EventTypeProductDeleted, &models.Product{ID: id}, nil)
	return nil
}

// GetProduct retrieves one product with category and colors
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// ListProducts lists products; an empty category or "Todos" disables the filter
func (s *CatalogService) ListProducts(ctx context.Context, skip, limit int, category string) ([]models.Product, error) {
	if category == models.CategoryAll {
		category = ""
	}
	skip, limit = pageBounds(skip, limit)
	return s.store.ListProducts(ctx, skip, limit, category)
}

// ListCategories lists all categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateCategory adds a category, ErrConflict when the name exists
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{Name: name}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListColors lists all colors
func (s *CatalogService) ListColors(ctx context.Context) ([]models.Color, error) {
	return s.store.ListColors(ctx)
}

// CreateColor adds a color
func (s *CatalogService) CreateColor(ctx context.Context, name, value string) (*models.Color, error) {
	color := &models.Color{Name: name, Value: value}
	if err := s.store.CreateColor(ctx, color); err != nil {
		return nil, err
	}
	return color, nil
}

// mapWriteError turns a dangling category reference into ErrInvalidInput
func (s *CatalogService) mapWriteError(err error, in *ProductInput) error {
	if errors.Is(err, store.ErrReferenced) {
		return fmt.Errorf("%w: category %d does not exist", ErrInvalidInput, in.CategoryID)
	}
	return err
}

func (s *CatalogService) afterMutation(ctx context.Context, eventType string, product *models.Product, colorIDs []int64) {
	invalidateStats(ctx, s.cache, s.logger)

	event := &models.ProductEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now(),
		},
		ProductID:  product.ID,
		Name:       product.Name,
		Price:      product.Price,
		CategoryID: product.CategoryID,
		ColorIDs:   colorIDs,
	}

	if err := s.publisher.PublishProductEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish product event",
			zap.String("event_type", eventType),
			zap.Int64("product_id", product.ID),
			zap.Error(err))
	}
}
