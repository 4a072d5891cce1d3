package handler

import (
	"errors"

	"retail-inventory-ws/internal/middleware"
	"retail-inventory-ws/internal/model"
	"retail-inventory-ws/internal/service"
	"retail-inventory-ws/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// GetUsers lists all users
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAllUsers()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	responses := make([]model.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return c.JSON(responses)
}

// GetUser fetches one user
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	user, err := h.service.GetUserByID(userID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(user.ToResponse())
}

// CreateUser creates a user with the role's default permission set
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		firstErr := errs[0]
		return c.Status(400).JSON(fiber.Map{
			"error": "Validation failed: field '" + firstErr.Field + "' failed on rule '" + firstErr.Rule + "'",
		})
	}

	user, err := h.service.CreateUser(&req, middleware.GetActor(c).Username)
	if err != nil {
		if errors.Is(err, service.ErrUsernameExists) || errors.Is(err, service.ErrUnknownRole) {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create user"})
	}

	return c.Status(201).JSON(fiber.Map{"message": "User created", "data": user.ToResponse()})
}

// UpdatePermissionsRequest carries the replacement permission codes
type UpdatePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// UpdateUserPermissions replaces a user's stored permission set
// PUT /api/v1/users/:id/permissions
func (h *UserHandler) UpdateUserPermissions(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var req UpdatePermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Permissions == nil {
		return c.Status(400).JSON(fiber.Map{"error": "permissions field required"})
	}

	user, err := h.service.UpdatePermissions(userID, req.Permissions)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update permissions"})
	}

	return c.JSON(fiber.Map{"message": "Permissions updated", "data": user.ToResponse()})
}

// GetPermissions lists all assignable permissions
// GET /api/v1/permissions
func (h *UserHandler) GetPermissions(c *fiber.Ctx) error {
	permissions, err := h.service.ListPermissions()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch permissions"})
	}
	return c.JSON(permissions)
}
