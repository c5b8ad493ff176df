package service

import (
	"context"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/seed"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// SeedStore is the persistence SeedService needs
type SeedStore interface {
	EnsureCategory(ctx context.Context, name string) (*models.Category, error)
	EnsureColor(ctx context.Context, name, value string) (*models.Color, error)
	CountProducts(ctx context.Context) (int64, error)
}

// ProductCreator creates products through the catalog rules
type ProductCreator interface {
	CreateProduct(ctx context.Context, in *ProductInput) (*models.Product, error)
}

// SeedService loads the starter catalog
type SeedService struct {
	store    SeedStore
	products ProductCreator
	catalog  *seed.Catalog
	logger   *zap.Logger
}

// SeedResult reports what a seeding run touched
type SeedResult struct {
	Categories int `json:"categories"`
	Colors     int `json:"colors"`
	Products   int `json:"products"`
}

// NewSeedService creates a seed service over a parsed catalog
func NewSeedService(store SeedStore, products ProductCreator, catalog *seed.Catalog) *SeedService {
	return &SeedService{
		store:    store,
		products: products,
		catalog:  catalog,
		logger:   util.GetLogger(),
	}
}

// SeedCategoriesAndColors creates every missing category and color by name
func (s *SeedService) SeedCategoriesAndColors(ctx context.Context) (*SeedResult, error) {
	ctx, span := util.StartSpan(ctx, "SeedService.SeedCategoriesAndColors")
	defer span.End()

	_, _, result, err := s.ensureReferences(ctx)
	return result, err
}

// SeedAll seeds categories and colors, then products when none exist yet
func (s *SeedService) SeedAll(ctx context.Context) (*SeedResult, error) {
	ctx, span := util.StartSpan(ctx, "SeedService.SeedAll")
	defer span.End()

	categoryIDs, colorIDs, result, err := s.ensureReferences(ctx)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		s.logger.Info("Products already present, skipping product seed", zap.Int64("products", count))
		return result, nil
	}

	for _, p := range s.catalog.Products {
		in := &ProductInput{
			Name:          p.Name,
			Description:   p.Description,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			Images:        p.Images,
			CategoryID:    categoryIDs[p.Category],
			Sizes:         p.Sizes,
			IsNew:         p.IsNew,
			IsSale:        p.IsSale,
			Features:      p.Features,
		}
		for _, name := range p.Colors {
			in.ColorIDs = append(in.ColorIDs, colorIDs[name])
		}

		if _, err := s.products.CreateProduct(ctx, in); err != nil {
			return nil, fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
		result.Products++
	}

	s.logger.Info("Catalog seeded", zap.Int("products", result.Products))
	return result, nil
}

func (s *SeedService) ensureReferences(ctx context.Context) (map[string]int64, map[string]int64, *SeedResult, error) {
	result := &SeedResult{}

	categoryIDs := make(map[string]int64, len(s.catalog.Categories))
	for _, name := range s.catalog.Categories {
		category, err := s.store.EnsureCategory(ctx, name)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to seed category %q: %w", name, err)
		}
		categoryIDs[name] = category.ID
		result.Categories++
	}

	colorIDs := make(map[string]int64, len(s.catalog.Colors))
	for _, c := range s.catalog.Colors {
		color, err := s.store.EnsureColor(ctx, c.Name, c.Value)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to seed color %q: %w", c.Name, err)
		}
		colorIDs[c.Name] = color.ID
		result.Colors++
	}

	s.logger.Info("Categories and colors seeded",
		zap.Int("categories", result.Categories),
		zap.Int("colors", result.Colors))
	return categoryIDs, colorIDs, result, nil
}
