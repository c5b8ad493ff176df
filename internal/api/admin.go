package api

import (
	"errors"
	"net/http"

	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) adminStats(c *gin.Context) {
	stats, err := h.stats.ComputeStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) listUsers(c *gin.Context) {
	skip, limit, ok := parsePage(c)
	if !ok {
		return
	}

	users, err := h.users.ListUsers(c.Request.Context(), skip, limit)
	if err != nil {
		h.respondError(c, err, "Users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) registerUser(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "User")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) recordVisit(c *gin.Context) {
	if _, err := h.visitors.RecordVisit(c.Request.Context(), c.ClientIP()); err != nil {
		h.respondError(c, err, "Visit")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		badRequest(c, "file is required", err)
		return
	}

	file, err := header.Open()
	if err != nil {
		badRequest(c, "Unreadable file", err)
		return
	}
	defer file.Close()

	url, err := h.uploads.Upload(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.respondError(c, err, "Upload")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) seedCatalog(c *gin.Context) {
	result, err := h.seed.SeedCategoriesAndColors(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Seed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Categories and colors seeded successfully",
		"categories": result.Categories,
		"colors":     result.Colors,
	})
}
