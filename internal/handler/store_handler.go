package handler

import (
	"retail-inventory-ws/internal/middleware"
	"retail-inventory-ws/internal/model"
	"retail-inventory-ws/internal/repository"
	"retail-inventory-ws/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type StoreHandler struct {
	storeRepo repository.StoreRepository
}

func NewStoreHandler(storeRepo repository.StoreRepository) *StoreHandler {
	return &StoreHandler{storeRepo: storeRepo}
}

// GetStores lists all stores
// GET /api/v1/stores
func (h *StoreHandler) GetStores(c *fiber.Ctx) error {
	stores, err := h.storeRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch stores"})
	}
	return c.JSON(stores)
}

// CreateStore adds a store location; admin role only
// POST /api/v1/stores
func (h *StoreHandler) CreateStore(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor.Role != model.RoleAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "Insufficient permissions"})
	}

	var store model.Store
	if err := c.BodyParser(&store); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if errs := validator.ValidateStruct(&store); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Name and location are required"})
	}

	store.CreatedBy = actor.Username
	store.UpdatedBy = actor.Username
	if err := h.storeRepo.Create(&store); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create store"})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Store created", "data": store})
}
