package handler

import (
	"errors"

	"retail-inventory-ws/internal/middleware"
	"retail-inventory-ws/internal/service"
	"retail-inventory-ws/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// engineStatus maps the inventory engine's error taxonomy onto HTTP.
// Conflicts (would-go-negative, same-store) are 409, validation 400,
// missing references 404, denials 403, anything else 500.
func engineStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		return 403
	case errors.Is(err, service.ErrInvalidDelta),
		errors.Is(err, service.ErrEmptyReason),
		errors.Is(err, service.ErrInvalidQuantity):
		return 400
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrSameStoreTransfer):
		return 409
	case errors.Is(err, service.ErrStoreNotFound),
		errors.Is(err, service.ErrProductNotFound):
		return 404
	default:
		return 500
	}
}

// UpdateStock applies a signed delta to one store's stock of a product
// POST /api/v1/inventory/update
func (h *InventoryHandler) UpdateStock(c *fiber.Ctx) error {
	var req service.AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "store_id and product_id are required"})
	}

	result, err := h.service.AdjustStock(middleware.GetActor(c), &req)
	if err != nil {
		return c.Status(engineStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(result)
}

// TransferStock moves stock between two stores atomically
// POST /api/v1/inventory/transfer
func (h *InventoryHandler) TransferStock(c *fiber.Ctx) error {
	var req service.TransferStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "from_store, to_store and product_id are required"})
	}

	result, err := h.service.TransferStock(middleware.GetActor(c), &req)
	if err != nil {
		return c.Status(engineStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(result)
}

// GetInventory lists inventory rows, optionally filtered by store
// GET /api/v1/inventory?store_id=
func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	var storeID *uuid.UUID
	if raw := c.Query("store_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid store_id"})
		}
		storeID = &id
	}

	items, err := h.service.GetInventory(storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(items)
}
