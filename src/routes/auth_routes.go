package routes

import (
	"Backend-PMS/src/controllers"

	"github.com/gofiber/fiber/v2"
)

// authRoutes role-agnostic login
func authRoutes(api fiber.Router, ac *controllers.AccountController) {
	api.Post("/login", ac.ResolveLogin)
}
