package api

import (
	"net/http"

	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listProducts(c *gin.Context) {
	skip, limit, ok := parsePage(c)
	if !ok {
		return
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), skip, limit, c.Query("category"))
	if err != nil {
		h.respondError(c, err, "Products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &in)
	if err != nil {
		h.respondError(c, err, "Product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, &in)
	if err != nil {
		h.respondError(c, err, "Product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		h.respondError(c, err, "Category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) listColors(c *gin.Context) {
	colors, err := h.catalog.ListColors(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Colors")
		return
	}
	c.JSON(http.StatusOK, colors)
}

type colorRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
}

func (h *Handler) createColor(c *gin.Context) {
	var req colorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	color, err := h.catalog.CreateColor(c.Request.Context(), req.Name, req.Value)
	if err != nil {
		h.respondError(c, err, "Color")
		return
	}
	c.JSON(http.StatusCreated, color)
}
