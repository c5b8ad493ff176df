package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const productColumns = `
	p.id, p.name, p.description, p.price, p.original_price, p.images, p.sizes,
	p.features, p.is_new, p.is_sale, p.category_id,
	c.id AS "category.id", c.name AS "category.name"`

// ProductTx is the write side of a catalog transaction
type ProductTx interface {
	InsertProduct(ctx context.Context, p *models.Product) error
	LockProduct(ctx context.Context, id int64) (bool, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	ResolveColorIDs(ctx context.Context, ids []int64) ([]int64, error)
	AttachColors(ctx context.Context, productID int64, colorIDs []int64) error
	ReplaceColors(ctx context.Context, productID int64, colorIDs []int64) error
}

type productTx struct {
	tx *sqlx.Tx
}

// WithProductTx runs fn inside one transaction
func (s *Store) WithProductTx(ctx context.Context, fn func(tx ProductTx) error) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&productTx{tx: tx})
	})
}

// InsertProduct inserts the scalar columns of a product and sets its ID
func (t *productTx) InsertProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, original_price, images,
			category_id, sizes, is_new, is_sale, features)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := t.tx.GetContext(ctx, &p.ID, query,
		p.Name, p.Description, p.Price, p.OriginalPrice, p.Images,
		p.CategoryID, p.Sizes, p.IsNew, p.IsSale, p.Features)
	return translateError(err)
}

// LockProduct reports whether the product exists, locking its row
func (t *productTx) LockProduct(ctx context.Context, id int64) (bool, error) {
	var found int64
	err := t.tx.GetContext(ctx, &found, "SELECT id FROM products WHERE id = $1 FOR UPDATE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateProduct overwrites every scalar column of a product
func (t *productTx) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products SET name = $1, description = $2, price = $3,
			original_price = $4, images = $5, category_id = $6, sizes = $7,
			is_new = $8, is_sale = $9, features = $10
		WHERE id = $11`

	_, err := t.tx.ExecContext(ctx, query,
		p.Name, p.Description, p.Price, p.OriginalPrice, p.Images,
		p.CategoryID, p.Sizes, p.IsNew, p.IsSale, p.Features, p.ID)
	return translateError(err)
}

// ResolveColorIDs returns the subset of ids that name existing colors
func (t *productTx) ResolveColorIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}

	query, args, err := sqlx.In("SELECT id FROM colors WHERE id IN (?) ORDER BY id", ids)
	if err != nil {
		return nil, err
	}
	query = t.tx.Rebind(query)

	var found []int64
	if err := t.tx.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, err
	}
	return found, nil
}

// AttachColors links colors to a freshly inserted product
func (t *productTx) AttachColors(ctx context.Context, productID int64, colorIDs []int64) error {
	for _, colorID := range colorIDs {
		_, err := t.tx.ExecContext(ctx,
			"INSERT INTO product_colors (product_id, color_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			productID, colorID)
		if err != nil {
			return translateError(err)
		}
	}
	return nil
}

// ReplaceColors swaps the whole color set of a product, an empty set clears it
func (t *productTx) ReplaceColors(ctx context.Context, productID int64, colorIDs []int64) error {
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM product_colors WHERE product_id = $1", productID); err != nil {
		return err
	}
	return t.AttachColors(ctx, productID, colorIDs)
}

// GetProduct retrieves a product with its category and colors
func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT"+productColumns+" FROM products p JOIN categories c ON c.id = p.category_id WHERE p.id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	products := []models.Product{product}
	if err := s.loadColors(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// ListProducts lists products, filtered by category name when one is given
func (s *Store) ListProducts(ctx context.Context, skip, limit int, category string) ([]models.Product, error) {
	query := "SELECT" + productColumns + " FROM products p JOIN categories c ON c.id = p.category_id"
	args := []interface{}{}
	if category != "" {
		query += " WHERE c.name = $1"
		args = append(args, category)
	}
	query += fmt.Sprintf(" ORDER BY p.id OFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
	args = append(args, skip, limit)

	products := []models.Product{}
	if err := s.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, err
	}
	if err := s.loadColors(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// DeleteProduct deletes a product, its color links go with it
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountProducts returns the number of products
func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	return s.countRows(ctx, "products")
}

type productColorRow struct {
	ProductID int64 `db:"product_id"`
	models.Color
}

// loadColors fills Colors on every product with one query
func (s *Store) loadColors(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, len(products))
	for i := range products {
		ids[i] = products[i].ID
		products[i].Colors = []models.Color{}
	}

	query, args, err := sqlx.In(`
		SELECT pc.product_id, co.id, co.name, co.value
		FROM product_colors pc JOIN colors co ON co.id = pc.color_id
		WHERE pc.product_id IN (?)
		ORDER BY co.id`, ids)
	if err != nil {
		return err
	}
	query = s.db.Rebind(query)

	var rows []productColorRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return err
	}

	index := make(map[int64]int, len(products))
	for i := range products {
		index[products[i].ID] = i
	}
	for _, row := range rows {
		if i, ok := index[row.ProductID]; ok {
			products[i].Colors = append(products[i].Colors, row.Color)
		}
	}
	return nil
}

// ListCategories retrieves all categories
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.db.SelectContext(ctx, &categories, "SELECT id, name FROM categories ORDER BY id")
	return categories, err
}

// CreateCategory inserts a category, ErrConflict when the name is taken
func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	err := s.db.GetContext(ctx, &category.ID,
		"INSERT INTO categories (name) VALUES ($1) RETURNING id", category.Name)
	return translateError(err)
}

// EnsureCategory returns the category with the given name, creating it if absent
func (s *Store) EnsureCategory(ctx context.Context, name string) (*models.Category, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
	if err != nil {
		return nil, err
	}

	var category models.Category
	err = s.db.GetContext(ctx, &category, "SELECT id, name FROM categories WHERE name = $1", name)
	return &category, err
}

// ListColors retrieves all colors
func (s *Store) ListColors(ctx context.Context) ([]models.Color, error) {
	colors := []models.Color{}
	err := s.db.SelectContext(ctx, &colors, "SELECT id, name, value FROM colors ORDER BY id")
	return colors, err
}

// CreateColor inserts a color
func (s *Store) CreateColor(ctx context.Context, color *models.Color) error {
	return s.db.GetContext(ctx, &color.ID,
		"INSERT INTO colors (name, value) VALUES ($1, $2) RETURNING id", color.Name, color.Value)
}

// EnsureColor returns the first color with the given name, creating it if absent
func (s *Store) EnsureColor(ctx context.Context, name, value string) (*models.Color, error) {
	var color models.Color
	err := s.db.GetContext(ctx, &color,
		"SELECT id, name, value FROM colors WHERE name = $1 ORDER BY id LIMIT 1", name)
	if err == nil {
		return &color, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	color = models.Color{Name: name, Value: value}
	if err := s.CreateColor(ctx, &color); err != nil {
		return nil, err
	}
	return &color, nil
}
