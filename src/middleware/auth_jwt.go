package middleware

import (
	"strings"

	"Backend-PMS/src/models"
	"Backend-PMS/src/utils"

	"github.com/gofiber/fiber/v2"
)

// TokenParser validates a session token. *utils.JWTManager implements it.
type TokenParser interface {
	ParseJWT(tokenStr string) (*utils.JWTClaims, error)
}

// AuthJWT rejects requests without a valid Bearer session and stores the
// account id and role in c.Locals("userId") / c.Locals("role").
func AuthJWT(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Message: "Missing or invalid Authorization header",
			})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := parser.ParseJWT(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Message: "Invalid or expired token",
				Error:   err.Error(),
			})
		}

		c.Locals("userId", claims.ID)
		c.Locals("role", models.Role(claims.Role))

		return c.Next()
	}
}

// SessionRole returns the role stored by AuthJWT.
func SessionRole(c *fiber.Ctx) models.Role {
	role, _ := c.Locals("role").(models.Role)
	return role
}
