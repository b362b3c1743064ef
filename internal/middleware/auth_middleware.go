package middleware

import (
	"strings"

	"go-pos-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAdmin validates the bearer token and requires the admin role.
func RequireAdmin(tokens *jwt.Manager) fiber.Handler {
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

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}
		if claims.Role != jwt.RoleAdmin {
			return c.Status(403).JSON(fiber.Map{"error": "Forbidden: requires admin access"})
		}

		c.Locals("role", claims.Role)
		c.Locals("subject", claims.Subject)
		return c.Next()
	}
}
