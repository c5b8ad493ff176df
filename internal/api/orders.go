package api

import (
	"net/http"

	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
)

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// getOrder returns an order to a customer who knows its email
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	email := c.Query("email")
	if email == "" {
		badRequest(c, "email query parameter is required", nil)
		return
	}

	order, err := h.orders.GetOrderForCustomer(c.Request.Context(), id, email)
	if err != nil {
		h.respondError(c, err, "Order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) listUserOrders(c *gin.Context) {
	orders, err := h.orders.ListUserOrders(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.respondError(c, err, "Orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) listOrders(c *gin.Context) {
	skip, limit, ok := parsePage(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), skip, limit)
	if err != nil {
		h.respondError(c, err, "Orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.respondError(c, err, "Order")
		return
	}
	c.JSON(http.StatusOK, order)
}
