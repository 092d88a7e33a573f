package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/visioneers/marketplace-api/internal/dto"
	"github.com/visioneers/marketplace-api/internal/middleware"
	"github.com/visioneers/marketplace-api/internal/services"
)

type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	buyerID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.OrderCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	order, err := h.orders.CreateOrder(buyerID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Product not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	buyerID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	orders, err := h.orders.ListOrders(buyerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load orders",
		})
	}
	return c.JSON(fiber.Map{"orders": orders})
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	buyerID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid order id",
		})
	}

	order, err := h.orders.GetOrder(buyerID, uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Order not found",
		})
	}
	return c.JSON(order)
}
