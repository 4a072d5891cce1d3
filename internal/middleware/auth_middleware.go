package middleware

import (
	"strings"

	"retail-inventory-ws/internal/model"
	"retail-inventory-ws/internal/repository"
	"retail-inventory-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the JWT and rebuilds the request principal from
// the database, so permission changes apply on the very next request.
// Nothing from the token besides the user identity is trusted.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}
		if !user.IsActive {
			return c.Status(401).JSON(fiber.Map{"error": "User account is inactive"})
		}

		c.Locals("actor", user.ToActor())
		c.Locals("user", user)

		return c.Next()
	}
}

// GetActor returns the authenticated principal set by RequireAuth.
func GetActor(c *fiber.Ctx) model.Actor {
	if actor, ok := c.Locals("actor").(model.Actor); ok {
		return actor
	}
	return model.Actor{}
}

// RequireCapability rejects the request before any handler runs unless
// the actor passes the permission gate for the capability.
func RequireCapability(capability string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := GetActor(c)
		if !actor.Can(capability) {
			return c.Status(403).JSON(fiber.Map{"error": "Insufficient permissions"})
		}
		return c.Next()
	}
}
